package league

import (
	"sort"

	"github.com/google/uuid"
)

type TieStatus string

const (
	TiePending   TieStatus = "pending"
	TieLive      TieStatus = "live"
	TieCompleted TieStatus = "completed"
)

// Tie is a fixture between two teams. Status, scores and the winner are
// derived from its matches on every read.
type Tie struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	TieNo        int        `db:"tie_no" json:"tie_no"`
	Day          int        `db:"day" json:"day"`
	Session      string     `db:"session" json:"session"`
	Court        int        `db:"court" json:"court"`
	Team1ID      uuid.UUID  `db:"team1_id" json:"team1_id"`
	Team2ID      uuid.UUID  `db:"team2_id" json:"team2_id"`
	Team1Name    string     `db:"team1_name" json:"team1"`
	Team2Name    string     `db:"team2_name" json:"team2"`
	Status       TieStatus  `db:"-" json:"status"`
	Score1       int        `db:"-" json:"score1"`
	Score2       int        `db:"-" json:"score2"`
	WinnerTeamID *uuid.UUID `db:"-" json:"winner_team_id"`
	Matches      []Match    `db:"-" json:"matches"`
}

// Result is the aggregate outcome of a set of games played between two sides.
type Result struct {
	Status     TieStatus
	Score1     int
	Score2     int
	WinnerSide int
}

// Aggregate derives the outcome of a tie from its matches. A decider is only
// counted once it has left pending. The tie completes when every counted
// match is completed and the result is not level, or when a level tie has no
// decider to break it.
func Aggregate(matches []Match) Result {
	var res Result
	if len(matches) == 0 {
		res.Status = TiePending
		return res
	}

	var decider *Match
	regularDone := true
	started := false
	for i := range matches {
		m := &matches[i]
		if m.IsDecider {
			decider = m
			continue
		}
		if !m.IsCompleted() {
			regularDone = false
		}
		if m.Status != MatchPending || m.HasPoints() {
			started = true
		}
		res.tally(m)
	}

	deciderCounted := decider != nil && decider.Status != MatchPending
	if deciderCounted {
		started = true
		res.tally(decider)
	}

	var complete bool
	switch {
	case !regularDone:
	case deciderCounted:
		complete = decider.IsCompleted()
	default:
		complete = res.Score1 != res.Score2 || decider == nil
	}

	switch {
	case complete:
		res.Status = TieCompleted
		if res.Score1 > res.Score2 {
			res.WinnerSide = 1
		} else if res.Score2 > res.Score1 {
			res.WinnerSide = 2
		}
	case started:
		res.Status = TieLive
	default:
		res.Status = TiePending
	}
	return res
}

func (r *Result) tally(m *Match) {
	switch m.Winner() {
	case 1:
		r.Score1++
	case 2:
		r.Score2++
	}
}

// DeciderUnlocked reports whether every regular match is completed with the
// sides level, which is the only state a decider may be started from.
func DeciderUnlocked(matches []Match) bool {
	score1, score2 := 0, 0
	hasDecider := false
	for i := range matches {
		m := &matches[i]
		if m.IsDecider {
			hasDecider = true
			continue
		}
		if !m.IsCompleted() {
			return false
		}
		switch m.Winner() {
		case 1:
			score1++
		case 2:
			score2++
		}
	}
	return hasDecider && score1 == score2
}

// Visible drops a decider that is still pending and locked.
func Visible(matches []Match) []Match {
	unlocked := DeciderUnlocked(matches)
	visible := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.IsDecider && m.Status == MatchPending && !unlocked {
			continue
		}
		visible = append(visible, m)
	}
	return visible
}

// Settle attaches the tie's matches and fills in the derived fields.
func (t *Tie) Settle(matches []Match) {
	sortByMatchNo(matches)
	res := Aggregate(matches)
	t.Status = res.Status
	t.Score1, t.Score2 = res.Score1, res.Score2
	t.WinnerTeamID = winnerID(res.WinnerSide, t.Team1ID, t.Team2ID)
	t.Matches = Visible(matches)
}

func winnerID(side int, team1, team2 uuid.UUID) *uuid.UUID {
	switch side {
	case 1:
		return &team1
	case 2:
		return &team2
	}
	return nil
}

func sortByMatchNo(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchNo < matches[j].MatchNo
	})
}
