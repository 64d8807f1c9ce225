// Package scoring holds the badminton rally-point rules used to validate and
// settle game scores.
package scoring

import (
	"errors"
	"fmt"
)

const (
	GamePoint  = 21
	DeucePoint = 20
	MaxPoint   = 30
)

var (
	ErrNegativeScore = errors.New("score cannot be negative")
	ErrScoreTooHigh  = fmt.Errorf("score cannot exceed %d", MaxPoint)
	ErrBothAtMax     = fmt.Errorf("both sides cannot reach %d", MaxPoint)
)

// Cap returns the highest score a side may hold while its opponent has opponent points.
func Cap(score, opponent int) int {
	if score >= MaxPoint {
		return MaxPoint
	}
	if score >= GamePoint && opponent < DeucePoint {
		return GamePoint
	}
	if score >= DeucePoint && opponent >= DeucePoint {
		return MaxPoint
	}
	return GamePoint
}

// Clamp limits score to what the opponent's score allows. Play only goes past
// 21 after 20-all, so an opponent below 20 holds the score to 21 even at 30.
func Clamp(score, opponent int) int {
	if opponent < DeucePoint {
		return min(score, GamePoint)
	}
	return min(score, Cap(score, opponent))
}

// ClampPair clamps side 1 against side 2 and then side 2 against the clamped side 1.
func ClampPair(score1, score2 int) (int, int) {
	score1 = Clamp(score1, score2)
	score2 = Clamp(score2, score1)
	return score1, score2
}

// IsWinning reports whether the pair is a finished game: 21 with a two point
// lead, or the golden point at 30.
func IsWinning(score1, score2 int) bool {
	if score1 == score2 {
		return false
	}
	high, low := max(score1, score2), min(score1, score2)
	if high == MaxPoint {
		return true
	}
	return high >= GamePoint && high-low >= 2
}

// WinnerSide returns 1 or 2 for a finished game and 0 otherwise.
func WinnerSide(score1, score2 int) int {
	if !IsWinning(score1, score2) {
		return 0
	}
	if score1 > score2 {
		return 1
	}
	return 2
}

// Validate rejects scores that no clamping can repair.
func Validate(score1, score2 int) error {
	if score1 < 0 || score2 < 0 {
		return ErrNegativeScore
	}
	if score1 > MaxPoint || score2 > MaxPoint {
		return ErrScoreTooHigh
	}
	if score1 == MaxPoint && score2 == MaxPoint {
		return ErrBothAtMax
	}
	return nil
}

// Settle validates and clamps a requested score pair, returning the pair to
// persist and the winning side (0 while the game is still open).
func Settle(score1, score2 int) (int, int, int, error) {
	if err := Validate(score1, score2); err != nil {
		return 0, 0, 0, err
	}
	score1, score2 = ClampPair(score1, score2)
	return score1, score2, WinnerSide(score1, score2), nil
}
