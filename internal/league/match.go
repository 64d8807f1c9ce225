package league

import (
	"time"

	"github.com/AdamBeresnev/shuttle-league/internal/lineup"
	"github.com/google/uuid"
)

type Stage string

const (
	StageTie   Stage = "tie"
	StageFinal Stage = "final"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchPending, MatchLive, MatchCompleted:
		return true
	}
	return false
}

// Match is one game of a league tie or of the final tie. Exactly one of TieID
// and FinalID is set.
type Match struct {
	ID                      uuid.UUID   `db:"id" json:"id"`
	Stage                   Stage       `db:"stage" json:"stage"`
	TieID                   *uuid.UUID  `db:"tie_id" json:"tie_id"`
	TieNo                   *int        `db:"tie_no" json:"tie_no"`
	FinalID                 *uuid.UUID  `db:"final_id" json:"final_id,omitempty"`
	MatchNo                 int         `db:"match_no" json:"match_no"`
	Discipline              string      `db:"discipline" json:"discipline"`
	IsDecider               bool        `db:"is_decider" json:"is_decider"`
	LineupNeedsRefereeInput *bool       `db:"lineup_needs_referee_input" json:"lineup_needs_referee_input"`
	Court                   int         `db:"court" json:"court"`
	Day                     int         `db:"day" json:"day"`
	Session                 string      `db:"session" json:"session"`
	Time                    string      `db:"scheduled_time" json:"time"`
	Team1ID                 uuid.UUID   `db:"team1_id" json:"team1_id"`
	Team2ID                 uuid.UUID   `db:"team2_id" json:"team2_id"`
	Team1Name               string      `db:"team1_name" json:"team1"`
	Team2Name               string      `db:"team2_name" json:"team2"`
	Team1Lineup             string      `db:"team1_lineup" json:"team1_lineup"`
	Team2Lineup             string      `db:"team2_lineup" json:"team2_lineup"`
	LineupConfirmed         bool        `db:"lineup_confirmed" json:"lineup_confirmed"`
	Team1Score              int         `db:"team1_score" json:"team1_score"`
	Team2Score              int         `db:"team2_score" json:"team2_score"`
	Status                  MatchStatus `db:"status" json:"status"`
	RefereeName             *string     `db:"referee_name" json:"referee_name"`
	WinnerSide              *int        `db:"winner_side" json:"winner_side"`
	UpdatedAt               time.Time   `db:"updated_at" json:"updated_at"`
}

func (m *Match) RequiresStrictLineup() bool {
	return lineup.RequiresStrict(m.Stage == StageTie, m.Discipline, m.LineupNeedsRefereeInput)
}

func (m *Match) HasPoints() bool {
	return m.Team1Score > 0 || m.Team2Score > 0
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchCompleted
}

// Winner returns 1 or 2 for a completed match with a recorded winner, else 0.
func (m *Match) Winner() int {
	if m.Status != MatchCompleted || m.WinnerSide == nil {
		return 0
	}
	return *m.WinnerSide
}

func (m *Match) WinnerTeamID() *uuid.UUID {
	switch m.Winner() {
	case 1:
		id := m.Team1ID
		return &id
	case 2:
		id := m.Team2ID
		return &id
	}
	return nil
}

// ScoringLineups returns the lineups a score update persists. badSide is the
// first side whose lineup cannot be scored, or 0.
func (m *Match) ScoringLineups() (team1, team2 string, badSide int) {
	strict := m.RequiresStrictLineup()
	team1, team2 = m.Team1Lineup, m.Team2Lineup
	if m.IsDecider {
		team1, team2 = lineup.Singles(team1), lineup.Singles(team2)
	}
	team1 = lineup.ForScore(team1, strict)
	team2 = lineup.ForScore(team2, strict)
	switch {
	case team1 == "":
		return "", "", 1
	case team2 == "":
		return "", "", 2
	}
	return team1, team2, 0
}
