package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/shuttle-league/internal/db"
	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.InitDB(db.MemoryPath)
	require.NoError(t, err, "Failed to connect to in-memory DB")
	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	return database
}

func TestDefaultDefinition(t *testing.T) {
	def, err := Default()
	require.NoError(t, err)

	assert.Len(t, def.Teams, 5)
	assert.Len(t, def.Matches, 13)
	assert.Len(t, def.Fixtures, 10)
	assert.Equal(t, "Golden Monks", def.Teams[0].Name)
	assert.Equal(t, "Avinash", def.Teams[0].Lineups[13])

	for _, m := range def.Matches {
		assert.Equal(t, m.MatchNo == 13, m.IsDecider(), "match %d", m.MatchNo)
	}

	assert.Equal(t, "09:30", def.MatchTime("morning", 1))
	assert.Equal(t, "14:00", def.MatchTime("after lunch", 3))
	assert.Equal(t, "20:30", def.MatchTime("after tea", 13))
	assert.Equal(t, "09:45", def.MatchTime("unknown", 2))
}

func TestDeciderInference(t *testing.T) {
	no := false
	assert.True(t, MatchTemplate{MatchNo: 13, Discipline: "Advance"}.IsDecider())
	assert.True(t, MatchTemplate{MatchNo: 7, Discipline: "Open Decider"}.IsDecider())
	assert.False(t, MatchTemplate{MatchNo: 13, Discipline: "Advance", Decider: &no}.IsDecider())
	assert.False(t, MatchTemplate{MatchNo: 2, Discipline: "Set 4 / Set 4"}.IsDecider())
}

func TestParseRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"single team", `
teams: [{name: A}]
matches: [{match_no: 1, discipline: Open}]`},
		{"duplicate team", `
teams: [{name: A}, {name: a}]
matches: [{match_no: 1, discipline: Open}]`},
		{"unknown set level", `
teams: [{name: A, players: {Set-9: [X]}}, {name: B}]
matches: [{match_no: 1, discipline: Open}]`},
		{"no matches", `
teams: [{name: A}, {name: B}]`},
		{"duplicate slot", `
teams: [{name: A}, {name: B}]
matches: [{match_no: 1, discipline: Open}, {match_no: 1, discipline: Other}]`},
		{"two deciders", `
teams: [{name: A}, {name: B}]
matches: [{match_no: 1, discipline: Open, decider: true}, {match_no: 2, discipline: Other, decider: true}]`},
		{"bad session start", `
sessions: [{name: morning, start: "9am"}]
teams: [{name: A}, {name: B}]
matches: [{match_no: 1, discipline: Open}]`},
		{"unknown fixture team", `
teams: [{name: A}, {name: B}]
matches: [{match_no: 1, discipline: Open}]
fixtures: [{tie_no: 1, day: 1, session: morning, court: 1, team1: A, team2: C}]`},
		{"self pairing", `
teams: [{name: A}, {name: B}]
matches: [{match_no: 1, discipline: Open}]
fixtures: [{tie_no: 1, day: 1, session: morning, court: 1, team1: A, team2: a}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}

	_, err := Parse([]byte("teams: ["))
	assert.Error(t, err)
}

func TestRoundRobin(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			pairings := RoundRobin(n)
			assert.Len(t, pairings, n*(n-1)/2)

			seen := make(map[[2]int]bool)
			perRound := make(map[int]map[int]bool)
			for _, p := range pairings {
				require.Less(t, p.Team1, p.Team2)
				key := [2]int{p.Team1, p.Team2}
				assert.False(t, seen[key], "pair %v repeated", key)
				seen[key] = true

				if perRound[p.Round] == nil {
					perRound[p.Round] = make(map[int]bool)
				}
				assert.False(t, perRound[p.Round][p.Team1], "team %d twice in round %d", p.Team1, p.Round)
				assert.False(t, perRound[p.Round][p.Team2], "team %d twice in round %d", p.Team2, p.Round)
				perRound[p.Round][p.Team1] = true
				perRound[p.Round][p.Team2] = true
			}
		})
	}

	assert.Empty(t, RoundRobin(1))
}

func TestGeneratedFixtures(t *testing.T) {
	def, err := Parse([]byte(`
courts: [3, 5]
sessions:
  - {name: morning, start: "09:00"}
  - {name: evening, start: "18:00"}
teams: [{name: A}, {name: B}, {name: C}, {name: D}]
matches: [{match_no: 1, discipline: Open}]
`))
	require.NoError(t, err)
	require.Len(t, def.Fixtures, 6)

	for i, f := range def.Fixtures {
		assert.Equal(t, i+1, f.TieNo)
	}
	first := def.Fixtures[0]
	assert.Equal(t, 1, first.Day)
	assert.Equal(t, "morning", first.Session)
	assert.Equal(t, 3, first.Court)
	assert.Equal(t, 5, def.Fixtures[1].Court)
	assert.Equal(t, "evening", def.Fixtures[2].Session)
	assert.Equal(t, 2, def.Fixtures[4].Day)
}

func TestSeed(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	st := store.NewLeagueStore(database)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 2, 7, 8, 0, 0, 0, time.UTC))
	seeder := NewSeeder(database, st, clock)
	ctx := context.Background()

	def, err := Default()
	require.NoError(t, err)

	res, err := seeder.Seed(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, &Result{Teams: 5, Players: 65, Ties: 10, Matches: 130}, res)

	snap, err := st.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Ties, 10)
	assert.Equal(t, "Golden Monks", snap.Ties[0].Team1Name)
	assert.Equal(t, "Spartans", snap.Ties[0].Team2Name)
	assert.Equal(t, 2, snap.Ties[0].Court)
	assert.Len(t, snap.Ties[0].Matches, 12, "the decider stays hidden until unlocked")

	var first, decider league.Match
	for _, m := range snap.Matches {
		if m.TieNo == nil || *m.TieNo != 1 {
			continue
		}
		switch m.MatchNo {
		case 1:
			first = m
		case 13:
			decider = m
		}
	}

	assert.Equal(t, "09:30", first.Time)
	assert.Equal(t, "Swaroop / Ashutosh", first.Team1Lineup)
	require.NotNil(t, first.LineupNeedsRefereeInput)
	assert.True(t, *first.LineupNeedsRefereeInput)
	assert.False(t, first.IsDecider)

	assert.True(t, decider.IsDecider)
	assert.Equal(t, "12:30", decider.Time)
	require.NotNil(t, decider.LineupNeedsRefereeInput)
	assert.False(t, *decider.LineupNeedsRefereeInput)

	standings := snap.Standings()
	assert.Equal(t, 10, standings.TotalTies)
	assert.False(t, standings.LeagueComplete)

	_, err = seeder.Seed(ctx, def)
	assert.ErrorIs(t, err, ErrNotEmpty)
}
