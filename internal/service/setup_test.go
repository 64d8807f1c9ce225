package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamBeresnev/shuttle-league/internal/db"
	"github.com/AdamBeresnev/shuttle-league/internal/events"
	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/metrics"
	"github.com/AdamBeresnev/shuttle-league/internal/store"
	"github.com/AdamBeresnev/shuttle-league/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.InitDB(db.MemoryPath)
	require.NoError(t, err, "Failed to connect to in-memory DB")
	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

// setupFileDB creates a migrated WAL database in a temporary directory and
// returns its writer and read-only handles.
func setupFileDB(t *testing.T) (*sqlx.DB, *sqlx.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "league.db")
	writer, err := db.InitDB(path)
	require.NoError(t, err, "Failed to open file DB")
	t.Cleanup(func() { writer.Close() })
	require.NoError(t, db.RunMigrations(writer.DB), "Failed to apply migrations")

	reader, err := db.InitReadDB(path)
	require.NoError(t, err, "Failed to open read handle")
	t.Cleanup(func() { reader.Close() })
	return writer, reader
}

type harness struct {
	db        *sqlx.DB
	store     *store.LeagueStore
	clock     *clockwork.FakeClock
	events    *events.Mock
	metrics   *metrics.Mock
	matches   *MatchService
	finals    *FinalsService
	dashboard *DashboardService
	league    *LeagueService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database := setupTestDB(t)
	return newHarnessOn(t, database, database)
}

func newHarnessOn(t *testing.T, database, reader *sqlx.DB) *harness {
	t.Helper()
	h := &harness{
		db:      database,
		store:   store.NewLeagueStore(reader),
		clock:   clockwork.NewFakeClockAt(time.Date(2026, 2, 7, 9, 30, 0, 0, time.UTC)),
		events:  events.NewMock(),
		metrics: metrics.NewMock(),
	}
	h.matches = NewMatchService(database, h.store, h.clock, h.events, h.metrics)
	h.finals = NewFinalsService(database, h.store, h.matches, h.clock, FinalsConfig{Court: 1, GameCount: 12})
	h.dashboard = NewDashboardService(h.store, h.finals, h.clock, h.metrics)
	h.league = NewLeagueService(database, h.store, h.clock)
	return h
}

type matchDef struct {
	no         int
	discipline string
	decider    bool
	strict     *bool
	lineup1    string
	lineup2    string
}

func (h *harness) teams(t *testing.T, names ...string) []league.Team {
	t.Helper()
	out := make([]league.Team, 0, len(names))
	for _, name := range names {
		team, err := h.league.CreateTeam(context.Background(), name)
		require.NoError(t, err)
		out = append(out, *team)
	}
	return out
}

// tie inserts a tie and its matches, returning the match ids in argument order.
func (h *harness) tie(t *testing.T, tieNo, court int, team1, team2 league.Team, defs ...matchDef) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	tx, err := h.db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	tie := &league.Tie{ID: uuid.New(), TieNo: tieNo, Day: 1, Session: "morning", Court: court, Team1ID: team1.ID, Team2ID: team2.ID}
	require.NoError(t, h.store.CreateTie(ctx, tx, tie))

	matches := make([]league.Match, 0, len(defs))
	ids := make([]uuid.UUID, 0, len(defs))
	for _, def := range defs {
		discipline := def.discipline
		if discipline == "" {
			discipline = fmt.Sprintf("Game %d", def.no)
		}
		lineup1, lineup2 := def.lineup1, def.lineup2
		if lineup1 == "" {
			lineup1 = "P1 / P2"
		}
		if lineup2 == "" {
			lineup2 = "Q1 / Q2"
		}
		m := league.Match{
			ID:                      uuid.New(),
			Stage:                   league.StageTie,
			TieID:                   &tie.ID,
			MatchNo:                 def.no,
			Discipline:              discipline,
			IsDecider:               def.decider,
			LineupNeedsRefereeInput: def.strict,
			Court:                   court,
			Day:                     1,
			Session:                 "morning",
			Time:                    fmt.Sprintf("09:%02d", 30+def.no),
			Team1ID:                 team1.ID,
			Team2ID:                 team2.ID,
			Team1Lineup:             lineup1,
			Team2Lineup:             lineup2,
			Status:                  league.MatchPending,
			UpdatedAt:               h.clock.Now(),
		}
		matches = append(matches, m)
		ids = append(ids, m.ID)
	}
	require.NoError(t, h.store.CreateMatches(ctx, tx, matches))
	require.NoError(t, tx.Commit())
	return tie.ID, ids
}

// play starts and finishes a match with the given score.
func (h *harness) play(t *testing.T, id uuid.UUID, score1, score2 int) *league.Match {
	t.Helper()
	ctx := context.Background()
	_, err := h.matches.AssignReferee(ctx, id, "Ref")
	require.NoError(t, err)
	m, err := h.matches.UpdateScore(ctx, id, score1, score2)
	require.NoError(t, err)
	require.Equal(t, league.MatchCompleted, m.Status)
	return m
}

func (h *harness) match(t *testing.T, id uuid.UUID) *league.Match {
	t.Helper()
	m, err := h.store.GetMatch(context.Background(), id)
	require.NoError(t, err)
	return m
}

func games(n int) []matchDef {
	defs := make([]matchDef, n)
	for i := range defs {
		defs[i] = matchDef{no: i + 1, strict: utils.Ptr(false)}
	}
	return defs
}
