package league

import (
	"sort"

	"github.com/google/uuid"
)

// Snapshot is the whole league read in one consistent pass. Every derived
// view is computed from it without touching storage again.
type Snapshot struct {
	Teams   []Team
	Ties    []Tie
	Matches []Match
	Final   *FinalTie
}

type MatchFilter struct {
	Stage  *Stage
	Status *MatchStatus
	TieID  *uuid.UUID
}

// Settle groups the matches under their ties and the final and derives every
// aggregate. It is safe to call more than once.
func (s *Snapshot) Settle() {
	byTie := make(map[uuid.UUID][]Match, len(s.Ties))
	var finalGames []Match
	for _, m := range s.Matches {
		switch {
		case m.TieID != nil:
			byTie[*m.TieID] = append(byTie[*m.TieID], m)
		case m.FinalID != nil:
			finalGames = append(finalGames, m)
		}
	}

	sort.SliceStable(s.Ties, func(i, j int) bool { return s.Ties[i].TieNo < s.Ties[j].TieNo })
	for i := range s.Ties {
		s.Ties[i].Settle(byTie[s.Ties[i].ID])
	}
	if s.Final != nil {
		s.Final.Settle(finalGames)
	}
}

func (s *Snapshot) Standings() Standings {
	return BuildStandings(s.Teams, s.Ties)
}

// Tie returns the settled tie with the given id.
func (s *Snapshot) Tie(id uuid.UUID) (Tie, bool) {
	for _, t := range s.Ties {
		if t.ID == id {
			return t, true
		}
	}
	return Tie{}, false
}

// VisibleMatches lists league matches in tie order followed by final games,
// skipping locked deciders.
func (s *Snapshot) VisibleMatches(f MatchFilter) []Match {
	var out []Match
	keep := func(m Match) {
		if f.Stage != nil && m.Stage != *f.Stage {
			return
		}
		if f.Status != nil && m.Status != *f.Status {
			return
		}
		if f.TieID != nil && (m.TieID == nil || *m.TieID != *f.TieID) {
			return
		}
		out = append(out, m)
	}
	for _, t := range s.Ties {
		for _, m := range t.Matches {
			keep(m)
		}
	}
	if s.Final != nil {
		for _, g := range s.Final.Games {
			keep(g)
		}
	}
	return out
}
