package league

import (
	"time"

	"github.com/google/uuid"
)

// FinalTie is the title decider between the two finalists. Bronze is fixed
// from the standings when the final is created.
type FinalTie struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Team1ID        uuid.UUID  `db:"team1_id" json:"team1_id"`
	Team2ID        uuid.UUID  `db:"team2_id" json:"team2_id"`
	Team1Name      string     `db:"team1_name" json:"team1"`
	Team2Name      string     `db:"team2_name" json:"team2"`
	BronzeTeamID   *uuid.UUID `db:"bronze_team_id" json:"bronze_team_id"`
	BronzeTeamName *string    `db:"bronze_team_name" json:"bronze_team"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	Status         TieStatus  `db:"-" json:"status"`
	Score1         int        `db:"-" json:"score1"`
	Score2         int        `db:"-" json:"score2"`
	WinnerTeamID   *uuid.UUID `db:"-" json:"winner_team_id"`
	Games          []Match    `db:"-" json:"games"`
}

func (f *FinalTie) Settle(games []Match) {
	sortByMatchNo(games)
	res := Aggregate(games)
	f.Status = res.Status
	f.Score1, f.Score2 = res.Score1, res.Score2
	f.WinnerTeamID = winnerID(res.WinnerSide, f.Team1ID, f.Team2ID)
	f.Games = Visible(games)
}

// NextOpenGame returns the first visible game that is not yet completed.
// Games must already be settled.
func (f *FinalTie) NextOpenGame() (Match, bool) {
	if f.Status == TieCompleted {
		return Match{}, false
	}
	for _, g := range f.Games {
		if !g.IsCompleted() {
			return g, true
		}
	}
	return Match{}, false
}

type Medals struct {
	Finalist1  *string `json:"finalist1"`
	Finalist2  *string `json:"finalist2"`
	GoldTeam   *string `json:"gold_team"`
	SilverTeam *string `json:"silver_team"`
	BronzeTeam *string `json:"bronze_team"`
}

// ResolveMedals names the finalists and bronze once the league is complete,
// and gold and silver once the final tie is decided.
func ResolveMedals(st Standings, final *FinalTie) Medals {
	var medals Medals
	if !st.LeagueComplete {
		return medals
	}

	finalists := st.Qualified(QualificationFinalist)
	if len(finalists) > 0 {
		medals.Finalist1 = &finalists[0].Team
	}
	if len(finalists) > 1 {
		medals.Finalist2 = &finalists[1].Team
	}
	if bronze := st.Qualified(QualificationBronze); len(bronze) > 0 {
		medals.BronzeTeam = &bronze[0].Team
	}

	if final == nil {
		return medals
	}
	medals.Finalist1, medals.Finalist2 = &final.Team1Name, &final.Team2Name
	if final.BronzeTeamName != nil {
		medals.BronzeTeam = final.BronzeTeamName
	}
	if final.Status == TieCompleted && final.WinnerTeamID != nil {
		if *final.WinnerTeamID == final.Team1ID {
			medals.GoldTeam, medals.SilverTeam = &final.Team1Name, &final.Team2Name
		} else {
			medals.GoldTeam, medals.SilverTeam = &final.Team2Name, &final.Team1Name
		}
	}
	return medals
}
