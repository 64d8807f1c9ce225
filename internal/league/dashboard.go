package league

import (
	"sort"
	"time"
)

var RuleHighlights = []string{
	"Round-robin league: every team plays every other team once.",
	"Finals qualification is locked only after all league ties are completed.",
	"Ranking order: tie wins, then games won, then average lead per game.",
	"Top 2 qualify as Finalist 1 and Finalist 2; 3rd place gets Bronze medal.",
	"Final tie winner gets Gold medal; other finalist gets Silver medal.",
	"Each match is played to 21; at 20-all continue to a 2-point lead, capped at 30.",
	"Referee assignment is mandatory before score updates.",
}

type Summary struct {
	TotalGames     int `json:"total_games"`
	PendingGames   int `json:"pending_games"`
	LiveGames      int `json:"live_games"`
	CompletedGames int `json:"completed_games"`
	TotalTies      int `json:"total_ties"`
	CompletedTies  int `json:"completed_ties"`
}

type Dashboard struct {
	Summary        Summary        `json:"summary"`
	Standings      []StandingsRow `json:"standings"`
	LeagueComplete bool           `json:"league_complete"`
	Ties           []Tie          `json:"ties"`
	LiveMatches    []Match        `json:"live_matches"`
	FinalMatch     *FinalTie      `json:"final_match"`
	Medals         Medals         `json:"medals"`
	RuleHighlights []string       `json:"rule_highlights"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// BuildDashboard projects a settled snapshot into the viewer dashboard.
func BuildDashboard(s *Snapshot, now time.Time) Dashboard {
	st := s.Standings()
	games := s.VisibleMatches(MatchFilter{})

	summary := Summary{
		TotalGames:    len(games),
		TotalTies:     st.TotalTies,
		CompletedTies: st.CompletedTies,
	}
	live := make([]Match, 0)
	for _, g := range games {
		switch g.Status {
		case MatchPending:
			summary.PendingGames++
		case MatchLive:
			summary.LiveGames++
			live = append(live, g)
		case MatchCompleted:
			summary.CompletedGames++
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].Court < live[j].Court })

	return Dashboard{
		Summary:        summary,
		Standings:      st.Rows,
		LeagueComplete: st.LeagueComplete,
		Ties:           s.Ties,
		LiveMatches:    live,
		FinalMatch:     s.Final,
		Medals:         ResolveMedals(st, s.Final),
		RuleHighlights: RuleHighlights,
		GeneratedAt:    now,
	}
}

type ScheduleSession struct {
	Session string  `json:"session"`
	Matches []Match `json:"matches"`
}

type ScheduleDay struct {
	Day      int               `json:"day"`
	Sessions []ScheduleSession `json:"sessions"`
}

// BuildSchedule groups league matches by day and then by session, sessions
// ordered by their first start time.
func BuildSchedule(matches []Match) []ScheduleDay {
	sorted := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Stage == StageTie {
			sorted = append(sorted, m)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Court != b.Court {
			return a.Court < b.Court
		}
		return a.MatchNo < b.MatchNo
	})

	days := make([]ScheduleDay, 0)
	for _, m := range sorted {
		if len(days) == 0 || days[len(days)-1].Day != m.Day {
			days = append(days, ScheduleDay{Day: m.Day})
		}
		day := &days[len(days)-1]
		idx := -1
		for i := range day.Sessions {
			if day.Sessions[i].Session == m.Session {
				idx = i
				break
			}
		}
		if idx < 0 {
			day.Sessions = append(day.Sessions, ScheduleSession{Session: m.Session})
			idx = len(day.Sessions) - 1
		}
		day.Sessions[idx].Matches = append(day.Sessions[idx].Matches, m)
	}
	return days
}
