package events

import (
	"time"

	"github.com/AdamBeresnev/shuttle-league/internal/league"
)

// EventType is the last segment of the subject a match event is published on.
type EventType string

const (
	EventMatchStarted   EventType = "started"
	EventMatchReverted  EventType = "reverted"
	EventMatchResumed   EventType = "resumed"
	EventLineupUpdated  EventType = "lineup_updated"
	EventScoreUpdated   EventType = "score_updated"
	EventMatchCompleted EventType = "completed"
)

// MatchEvent describes one committed match transition.
type MatchEvent struct {
	Type        EventType `msgpack:"type"`
	MatchID     string    `msgpack:"match_id"`
	Stage       string    `msgpack:"stage"`
	TieNo       *int      `msgpack:"tie_no"`
	MatchNo     int       `msgpack:"match_no"`
	Court       int       `msgpack:"court"`
	Status      string    `msgpack:"status"`
	Team1       string    `msgpack:"team1"`
	Team2       string    `msgpack:"team2"`
	Team1Score  int       `msgpack:"team1_score"`
	Team2Score  int       `msgpack:"team2_score"`
	WinnerSide  *int      `msgpack:"winner_side"`
	RefereeName *string   `msgpack:"referee_name"`
	OccurredAt  time.Time `msgpack:"occurred_at"`
}

func NewMatchEvent(eventType EventType, m *league.Match, at time.Time) MatchEvent {
	return MatchEvent{
		Type:        eventType,
		MatchID:     m.ID.String(),
		Stage:       string(m.Stage),
		TieNo:       m.TieNo,
		MatchNo:     m.MatchNo,
		Court:       m.Court,
		Status:      string(m.Status),
		Team1:       m.Team1Name,
		Team2:       m.Team2Name,
		Team1Score:  m.Team1Score,
		Team2Score:  m.Team2Score,
		WinnerSide:  m.WinnerSide,
		RefereeName: m.RefereeName,
		OccurredAt:  at,
	}
}
