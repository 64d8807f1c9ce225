package league

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func game(no int, s1, s2 int) Match {
	m := Match{ID: uuid.New(), Stage: StageTie, MatchNo: no, Team1Score: s1, Team2Score: s2, Status: MatchCompleted}
	side := 1
	if s2 > s1 {
		side = 2
	}
	m.WinnerSide = &side
	return m
}

func pendingGame(no int) Match {
	return Match{ID: uuid.New(), Stage: StageTie, MatchNo: no, Status: MatchPending}
}

func decider(status MatchStatus) Match {
	m := pendingGame(13)
	m.IsDecider = true
	m.Status = status
	return m
}

// regulars returns twelve completed games, the first wins1 won by side 1.
func regulars(wins1 int) []Match {
	out := make([]Match, 0, 13)
	for i := 1; i <= 12; i++ {
		if i <= wins1 {
			out = append(out, game(i, 21, 15))
		} else {
			out = append(out, game(i, 15, 21))
		}
	}
	return out
}

func TestAggregate(t *testing.T) {
	t.Run("no matches is pending", func(t *testing.T) {
		assert.Equal(t, TiePending, Aggregate(nil).Status)
	})

	t.Run("untouched tie is pending", func(t *testing.T) {
		res := Aggregate([]Match{pendingGame(1), pendingGame(2), decider(MatchPending)})
		assert.Equal(t, TiePending, res.Status)
	})

	t.Run("a live game makes the tie live", func(t *testing.T) {
		live := pendingGame(2)
		live.Status = MatchLive
		res := Aggregate([]Match{game(1, 21, 10), live, decider(MatchPending)})
		assert.Equal(t, TieLive, res.Status)
		assert.Equal(t, 1, res.Score1)
	})

	t.Run("decided tie ignores the unused decider", func(t *testing.T) {
		matches := append(regulars(7), decider(MatchPending))
		res := Aggregate(matches)
		assert.Equal(t, TieCompleted, res.Status)
		assert.Equal(t, 7, res.Score1)
		assert.Equal(t, 5, res.Score2)
		assert.Equal(t, 1, res.WinnerSide)

		assert.False(t, DeciderUnlocked(matches))
		assert.Len(t, Visible(matches), 12)
	})

	t.Run("level tie waits for the decider", func(t *testing.T) {
		matches := append(regulars(6), decider(MatchPending))
		res := Aggregate(matches)
		assert.Equal(t, TieLive, res.Status)
		assert.Zero(t, res.WinnerSide)
		assert.True(t, DeciderUnlocked(matches))
		assert.Len(t, Visible(matches), 13)
	})

	t.Run("decider settles a level tie", func(t *testing.T) {
		d := decider(MatchCompleted)
		side := 2
		d.Team1Score, d.Team2Score, d.WinnerSide = 19, 21, &side
		res := Aggregate(append(regulars(6), d))
		assert.Equal(t, TieCompleted, res.Status)
		assert.Equal(t, 6, res.Score1)
		assert.Equal(t, 7, res.Score2)
		assert.Equal(t, 2, res.WinnerSide)
	})

	t.Run("live decider is counted but open", func(t *testing.T) {
		res := Aggregate(append(regulars(6), decider(MatchLive)))
		assert.Equal(t, TieLive, res.Status)
	})

	t.Run("level tie without decider completes drawn", func(t *testing.T) {
		res := Aggregate([]Match{game(1, 21, 10), game(2, 10, 21)})
		assert.Equal(t, TieCompleted, res.Status)
		assert.Zero(t, res.WinnerSide)
	})
}

type fixture struct {
	home, away string
	won, lost  int
	winScore   [2]int
}

func buildLeague(t *testing.T, names []string, fixtures []fixture) *Snapshot {
	t.Helper()
	teams := make(map[string]Team, len(names))
	s := &Snapshot{}
	for i, name := range names {
		team := Team{ID: uuid.New(), Name: name, Position: i + 1}
		teams[name] = team
		s.Teams = append(s.Teams, team)
	}
	for i, f := range fixtures {
		home, ok := teams[f.home]
		require.True(t, ok, f.home)
		away, ok := teams[f.away]
		require.True(t, ok, f.away)

		tie := Tie{ID: uuid.New(), TieNo: i + 1, Team1ID: home.ID, Team2ID: away.ID, Team1Name: home.Name, Team2Name: away.Name}
		s.Ties = append(s.Ties, tie)
		no := 0
		add := func(s1, s2 int) {
			no++
			m := game(no, s1, s2)
			m.TieID = &tie.ID
			m.Team1ID, m.Team2ID = home.ID, away.ID
			s.Matches = append(s.Matches, m)
		}
		win := f.winScore
		if win == [2]int{} {
			win = [2]int{21, 15}
		}
		for range f.won {
			add(win[0], win[1])
		}
		for range f.lost {
			add(win[1], win[0])
		}
	}
	s.Settle()
	return s
}

func TestBuildStandings(t *testing.T) {
	t.Run("ties won outrank games won", func(t *testing.T) {
		s := buildLeague(t, []string{"Owls", "Crows", "Rooks"}, []fixture{
			{home: "Owls", away: "Crows", won: 2, lost: 1},
			{home: "Rooks", away: "Owls", won: 1, lost: 2},
			{home: "Crows", away: "Rooks", won: 3, lost: 0},
		})
		st := s.Standings()
		require.Len(t, st.Rows, 3)
		assert.True(t, st.LeagueComplete)
		assert.Equal(t, "Owls", st.Rows[0].Team)
		assert.Equal(t, 2, st.Rows[0].TiesWon)
		assert.Equal(t, 4, st.Rows[0].TiePoints)
		assert.Equal(t, "Crows", st.Rows[1].Team)
		assert.Equal(t, 4, st.Rows[1].GamesWon)
		assert.Equal(t, "Rooks", st.Rows[2].Team)
	})

	t.Run("games won break equal tie wins", func(t *testing.T) {
		s := buildLeague(t, []string{"A", "B", "C", "D"}, []fixture{
			{home: "A", away: "C", won: 2, lost: 0},
			{home: "B", away: "D", won: 3, lost: 1},
		})
		st := s.Standings()
		assert.Equal(t, "B", st.Rows[0].Team)
		assert.Equal(t, 3, st.Rows[0].GamesWon)
		assert.Equal(t, "A", st.Rows[1].Team)
	})

	t.Run("average lead breaks equal games won", func(t *testing.T) {
		s := buildLeague(t, []string{"B", "A", "D", "C"}, []fixture{
			{home: "A", away: "C", won: 2, lost: 1, winScore: [2]int{21, 5}},
			{home: "B", away: "D", won: 2, lost: 1, winScore: [2]int{22, 20}},
		})
		st := s.Standings()
		var order []string
		for _, row := range st.Rows {
			order = append(order, row.Team)
		}
		assert.Equal(t, []string{"A", "B", "D", "C"}, order)
		assert.InDelta(t, 16.0/3.0, st.Rows[0].AverageMatchLead, 1e-9)
		assert.Equal(t, 1, st.Rows[0].GameDifference)
	})

	t.Run("incomplete league has no qualification", func(t *testing.T) {
		s := buildLeague(t, []string{"A", "B", "C"}, []fixture{{home: "A", away: "B", won: 2, lost: 0}})
		s.Ties = append(s.Ties, Tie{ID: uuid.New(), TieNo: 2, Status: TiePending})
		st := BuildStandings(s.Teams, s.Ties)
		assert.False(t, st.LeagueComplete)
		assert.Equal(t, 1, st.CompletedTies)
		assert.Equal(t, 2, st.TotalTies)
		for _, row := range st.Rows {
			assert.Equal(t, QualificationNone, row.Qualification)
		}
	})

	t.Run("untouched teams keep insertion order", func(t *testing.T) {
		s := buildLeague(t, []string{"Zeta", "Alpha", "Mid"}, nil)
		st := s.Standings()
		assert.False(t, st.LeagueComplete)
		assert.Equal(t, "Zeta", st.Rows[0].Team)
		assert.Equal(t, "Alpha", st.Rows[1].Team)
		assert.Equal(t, "Mid", st.Rows[2].Team)
	})
}

func TestFullLeagueMedals(t *testing.T) {
	s := buildLeague(t, []string{"Owls", "Eagles", "Crows", "Hawks", "Falcons"}, []fixture{
		{home: "Falcons", away: "Hawks", won: 1, lost: 2},
		{home: "Falcons", away: "Eagles", won: 3, lost: 0},
		{home: "Falcons", away: "Owls", won: 3, lost: 0},
		{home: "Falcons", away: "Crows", won: 3, lost: 0},
		{home: "Hawks", away: "Eagles", won: 1, lost: 2},
		{home: "Hawks", away: "Owls", won: 2, lost: 1},
		{home: "Hawks", away: "Crows", won: 2, lost: 1},
		{home: "Eagles", away: "Owls", won: 1, lost: 2},
		{home: "Eagles", away: "Crows", won: 2, lost: 1},
		{home: "Owls", away: "Crows", won: 1, lost: 2},
	})

	st := s.Standings()
	require.True(t, st.LeagueComplete)
	assert.Equal(t, 10, st.CompletedTies)
	assert.Equal(t, "Falcons", st.Rows[0].Team)
	assert.Equal(t, QualificationFinalist, st.Rows[0].Qualification)
	assert.Equal(t, "Hawks", st.Rows[1].Team)
	assert.Equal(t, QualificationFinalist, st.Rows[1].Qualification)
	assert.Equal(t, "Eagles", st.Rows[2].Team)
	assert.Equal(t, QualificationBronze, st.Rows[2].Qualification)
	assert.Equal(t, QualificationNone, st.Rows[3].Qualification)

	medals := ResolveMedals(st, nil)
	require.NotNil(t, medals.Finalist1)
	assert.Equal(t, "Falcons", *medals.Finalist1)
	assert.Equal(t, "Hawks", *medals.Finalist2)
	assert.Equal(t, "Eagles", *medals.BronzeTeam)
	assert.Nil(t, medals.GoldTeam)
	assert.Nil(t, medals.SilverTeam)

	final := &FinalTie{ID: uuid.New(), Team1ID: st.Rows[0].TeamID, Team2ID: st.Rows[1].TeamID, Team1Name: "Falcons", Team2Name: "Hawks"}
	games := []Match{game(1, 21, 14), game(2, 14, 21), game(3, 21, 18)}
	for i := range games {
		games[i].Stage = StageFinal
		games[i].FinalID = &final.ID
	}
	final.Settle(games)
	assert.Equal(t, TieCompleted, final.Status)
	assert.Equal(t, 2, final.Score1)

	medals = ResolveMedals(st, final)
	require.NotNil(t, medals.GoldTeam)
	assert.Equal(t, "Falcons", *medals.GoldTeam)
	assert.Equal(t, "Hawks", *medals.SilverTeam)
	assert.Equal(t, "Eagles", *medals.BronzeTeam)
}

func TestFinalNextOpenGame(t *testing.T) {
	final := &FinalTie{ID: uuid.New()}
	final.Settle([]Match{pendingGame(2), game(1, 21, 14), pendingGame(3)})

	next, ok := final.NextOpenGame()
	require.True(t, ok)
	assert.Equal(t, 2, next.MatchNo)
}

func TestBuildDashboard(t *testing.T) {
	s := buildLeague(t, []string{"A", "B"}, []fixture{{home: "A", away: "B", won: 2, lost: 1}})
	tie := s.Ties[0]
	extra := Tie{ID: uuid.New(), TieNo: 2, Team1ID: tie.Team2ID, Team2ID: tie.Team1ID}
	s.Ties = append(s.Ties, extra)
	live := pendingGame(1)
	live.TieID, live.Status, live.Court = &extra.ID, MatchLive, 2
	pending := pendingGame(2)
	pending.TieID = &extra.ID
	s.Matches = append(s.Matches, live, pending)
	s.Settle()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := BuildDashboard(s, now)
	assert.Equal(t, Summary{TotalGames: 5, PendingGames: 1, LiveGames: 1, CompletedGames: 3, TotalTies: 2, CompletedTies: 1}, d.Summary)
	assert.False(t, d.LeagueComplete)
	require.Len(t, d.LiveMatches, 1)
	assert.Equal(t, live.ID, d.LiveMatches[0].ID)
	assert.Len(t, d.RuleHighlights, 7)
	assert.Equal(t, now, d.GeneratedAt)
	assert.Nil(t, d.Medals.Finalist1)
}

func TestBuildSchedule(t *testing.T) {
	var matches []Match
	for day := 1; day <= 2; day++ {
		for _, slot := range []struct{ session, time string }{{"after lunch", "13:30"}, {"morning", "09:30"}} {
			m := pendingGame(len(matches) + 1)
			m.Day, m.Session, m.Time = day, slot.session, slot.time
			matches = append(matches, m)
		}
	}
	final := pendingGame(1)
	final.Stage = StageFinal
	matches = append(matches, final)

	days := BuildSchedule(matches)
	require.Len(t, days, 2)
	for _, day := range days {
		require.Len(t, day.Sessions, 2, fmt.Sprint("day ", day.Day))
		assert.Equal(t, "morning", day.Sessions[0].Session)
		assert.Equal(t, "after lunch", day.Sessions[1].Session)
	}
}
