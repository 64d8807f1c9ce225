package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCap(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		opponent int
		expected int
	}{
		{"opening rally", 0, 0, GamePoint},
		{"game point without deuce", 21, 15, GamePoint},
		{"overshoot without deuce", 25, 19, GamePoint},
		{"deuce extends cap", 20, 20, MaxPoint},
		{"inside deuce", 24, 23, MaxPoint},
		{"hard cap", 30, 29, MaxPoint},
		{"trailing side before deuce", 19, 20, GamePoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Cap(tt.score, tt.opponent))
		})
	}
}

func TestIsWinning(t *testing.T) {
	tests := []struct {
		score1, score2 int
		expected       bool
	}{
		{21, 10, true},
		{21, 19, true},
		{20, 21, false},
		{22, 20, true},
		{29, 30, true},
		{30, 29, true},
		{29, 28, false},
		{15, 15, false},
		{0, 0, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsWinning(tt.score1, tt.score2), "%d-%d", tt.score1, tt.score2)
	}
}

func TestWinnerSide(t *testing.T) {
	assert.Equal(t, 1, WinnerSide(21, 14))
	assert.Equal(t, 2, WinnerSide(28, 30))
	assert.Equal(t, 0, WinnerSide(20, 20))
}

func TestSettle(t *testing.T) {
	t.Run("clamps overshoot to the cap", func(t *testing.T) {
		s1, s2, winner, err := Settle(25, 12)
		require.NoError(t, err)
		assert.Equal(t, 21, s1)
		assert.Equal(t, 12, s2)
		assert.Equal(t, 1, winner)
	})

	t.Run("deuce keeps the game open", func(t *testing.T) {
		s1, s2, winner, err := Settle(21, 20)
		require.NoError(t, err)
		assert.Equal(t, 21, s1)
		assert.Equal(t, 20, s2)
		assert.Zero(t, winner)
	})

	t.Run("golden point needs twenty all", func(t *testing.T) {
		tests := []struct {
			score1, score2 int
			want1, want2   int
			winner         int
		}{
			{30, 10, 21, 10, 1},
			{30, 19, 21, 19, 1},
			{30, 28, 30, 28, 1},
			{29, 10, 21, 10, 1},
			{10, 30, 10, 21, 2},
			{30, 29, 30, 29, 1},
		}
		for _, tt := range tests {
			s1, s2, winner, err := Settle(tt.score1, tt.score2)
			require.NoError(t, err)
			assert.Equal(t, tt.want1, s1, "%d-%d", tt.score1, tt.score2)
			assert.Equal(t, tt.want2, s2, "%d-%d", tt.score1, tt.score2)
			assert.Equal(t, tt.winner, winner, "%d-%d", tt.score1, tt.score2)
		}
	})

	t.Run("settled scores stay within the cap", func(t *testing.T) {
		for a := 0; a <= MaxPoint; a++ {
			for b := 0; b <= MaxPoint; b++ {
				s1, s2, _, err := Settle(a, b)
				if err != nil {
					continue
				}
				if s1 > GamePoint {
					assert.GreaterOrEqual(t, s2, DeucePoint, "%d-%d settled to %d-%d", a, b, s1, s2)
				}
				if s2 > GamePoint {
					assert.GreaterOrEqual(t, s1, DeucePoint, "%d-%d settled to %d-%d", a, b, s1, s2)
				}
				assert.Equal(t, s1, Clamp(s1, s2))
				assert.Equal(t, s2, Clamp(s2, s1))
			}
		}
	})

	t.Run("rejects out of range", func(t *testing.T) {
		_, _, _, err := Settle(-1, 3)
		assert.ErrorIs(t, err, ErrNegativeScore)

		_, _, _, err = Settle(31, 3)
		assert.ErrorIs(t, err, ErrScoreTooHigh)

		_, _, _, err = Settle(30, 30)
		assert.ErrorIs(t, err, ErrBothAtMax)
	})
}
