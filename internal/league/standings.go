package league

import (
	"sort"

	"github.com/google/uuid"
)

type Qualification string

const (
	QualificationNone     Qualification = "none"
	QualificationFinalist Qualification = "finalist"
	QualificationBronze   Qualification = "bronze"
)

const tieWinPoints = 2

type StandingsRow struct {
	Rank             int           `json:"rank"`
	TeamID           uuid.UUID     `json:"team_id"`
	Team             string        `json:"team"`
	TiesPlayed       int           `json:"ties_played"`
	TiesWon          int           `json:"ties_won"`
	TiesLost         int           `json:"ties_lost"`
	TiePoints        int           `json:"tie_points"`
	GamesPlayed      int           `json:"games_played"`
	GamesWon         int           `json:"games_won"`
	GamesLost        int           `json:"games_lost"`
	GameDifference   int           `json:"game_difference"`
	PointsFor        int           `json:"points_for"`
	PointsAgainst    int           `json:"points_against"`
	PointDifference  int           `json:"point_difference"`
	AverageMatchLead float64       `json:"average_match_lead"`
	Qualification    Qualification `json:"qualification"`
}

type Standings struct {
	Rows           []StandingsRow `json:"rows"`
	TotalTies      int            `json:"total_ties"`
	CompletedTies  int            `json:"completed_ties"`
	LeagueComplete bool           `json:"league_complete"`
}

// BuildStandings ranks teams from the completed ties only. Teams are expected
// in insertion order, which settles rows equal on every ranking criterion.
// Ties must already be settled.
func BuildStandings(teams []Team, ties []Tie) Standings {
	rows := make([]StandingsRow, len(teams))
	index := make(map[uuid.UUID]int, len(teams))
	for i, team := range teams {
		rows[i] = StandingsRow{TeamID: team.ID, Team: team.Name, Qualification: QualificationNone}
		index[team.ID] = i
	}

	st := Standings{TotalTies: len(ties)}
	for i := range ties {
		tie := &ties[i]
		if tie.Status != TieCompleted {
			continue
		}
		st.CompletedTies++

		i1, ok1 := index[tie.Team1ID]
		i2, ok2 := index[tie.Team2ID]
		if !ok1 || !ok2 {
			continue
		}
		home, away := &rows[i1], &rows[i2]
		home.TiesPlayed++
		away.TiesPlayed++
		if tie.WinnerTeamID != nil {
			winner, loser := home, away
			if *tie.WinnerTeamID == tie.Team2ID {
				winner, loser = away, home
			}
			winner.TiesWon++
			winner.TiePoints += tieWinPoints
			loser.TiesLost++
		}

		for j := range tie.Matches {
			m := &tie.Matches[j]
			side := m.Winner()
			if side == 0 {
				continue
			}
			home.addGame(m.Team1Score, m.Team2Score, side == 1)
			away.addGame(m.Team2Score, m.Team1Score, side == 2)
		}
	}

	for i := range rows {
		r := &rows[i]
		r.GameDifference = r.GamesWon - r.GamesLost
		r.PointDifference = r.PointsFor - r.PointsAgainst
		if r.GamesPlayed > 0 {
			r.AverageMatchLead = float64(r.PointDifference) / float64(r.GamesPlayed)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TiesWon != b.TiesWon {
			return a.TiesWon > b.TiesWon
		}
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		return a.AverageMatchLead > b.AverageMatchLead
	})

	st.LeagueComplete = st.TotalTies > 0 && st.CompletedTies == st.TotalTies
	for i := range rows {
		rows[i].Rank = i + 1
		if !st.LeagueComplete {
			continue
		}
		switch rows[i].Rank {
		case 1, 2:
			rows[i].Qualification = QualificationFinalist
		case 3:
			rows[i].Qualification = QualificationBronze
		}
	}
	st.Rows = rows
	return st
}

func (r *StandingsRow) addGame(pointsFor, pointsAgainst int, won bool) {
	r.GamesPlayed++
	r.PointsFor += pointsFor
	r.PointsAgainst += pointsAgainst
	if won {
		r.GamesWon++
	} else {
		r.GamesLost++
	}
}

// Qualified returns the rows holding the given qualification, in rank order.
func (s Standings) Qualified(q Qualification) []StandingsRow {
	var out []StandingsRow
	for _, row := range s.Rows {
		if row.Qualification == q {
			out = append(out, row)
		}
	}
	return out
}
