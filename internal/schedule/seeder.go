package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/lineup"
	"github.com/AdamBeresnev/shuttle-league/internal/store"
	"github.com/AdamBeresnev/shuttle-league/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

var ErrNotEmpty = errors.New("league already has teams, refusing to seed")

var setLevels = []league.SetLevel{league.Set1, league.Set2, league.Set3, league.Set4, league.Set5}

type Seeder struct {
	db    *sqlx.DB
	store *store.LeagueStore
	clock clockwork.Clock
}

func NewSeeder(db *sqlx.DB, store *store.LeagueStore, clock clockwork.Clock) *Seeder {
	return &Seeder{db: db, store: store, clock: clock}
}

type Result struct {
	Teams   int
	Players int
	Ties    int
	Matches int
}

// Seed writes def into an empty league in a single transaction.
func (s *Seeder) Seed(ctx context.Context, def *Definition) (*Result, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	count, err := s.store.CountTeamsTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams: %w", err)
	}
	if count > 0 {
		return nil, ErrNotEmpty
	}

	now := s.clock.Now()
	res := &Result{}
	teams := make(map[string]league.Team, len(def.Teams))
	entries := make(map[string]TeamEntry, len(def.Teams))
	for i, entry := range def.Teams {
		team := league.Team{ID: uuid.New(), Name: utils.CollapseSpaces(entry.Name), Position: i + 1, CreatedAt: now}
		if err := s.store.CreateTeam(ctx, tx, &team); err != nil {
			return nil, fmt.Errorf("failed to create team %q: %w", team.Name, err)
		}
		key := utils.NameKey(team.Name)
		teams[key] = team
		entries[key] = entry

		players := rosterFor(team.ID, entry)
		if err := s.store.CreatePlayers(ctx, tx, players); err != nil {
			return nil, fmt.Errorf("failed to create players of %q: %w", team.Name, err)
		}
		res.Teams++
		res.Players += len(players)
	}

	for _, f := range def.Fixtures {
		key1, key2 := utils.NameKey(f.Team1), utils.NameKey(f.Team2)
		team1, team2 := teams[key1], teams[key2]

		tie := league.Tie{ID: uuid.New(), TieNo: f.TieNo, Day: f.Day, Session: f.Session, Court: f.Court, Team1ID: team1.ID, Team2ID: team2.ID}
		if err := s.store.CreateTie(ctx, tx, &tie); err != nil {
			return nil, fmt.Errorf("failed to create tie %d: %w", f.TieNo, err)
		}

		matches := make([]league.Match, 0, len(def.Matches))
		for _, tmpl := range def.Matches {
			decider := tmpl.IsDecider()
			strict := lineup.RequiresStrict(true, tmpl.Discipline, tmpl.StrictLineup)
			if decider {
				strict = false
			}
			matches = append(matches, league.Match{
				ID:                      uuid.New(),
				Stage:                   league.StageTie,
				TieID:                   &tie.ID,
				MatchNo:                 tmpl.MatchNo,
				Discipline:              tmpl.Discipline,
				IsDecider:               decider,
				LineupNeedsRefereeInput: &strict,
				Court:                   f.Court,
				Day:                     f.Day,
				Session:                 f.Session,
				Time:                    def.MatchTime(f.Session, tmpl.MatchNo),
				Team1ID:                 team1.ID,
				Team2ID:                 team2.ID,
				Team1Lineup:             lineup.Normalize(entries[key1].Lineups[tmpl.MatchNo]),
				Team2Lineup:             lineup.Normalize(entries[key2].Lineups[tmpl.MatchNo]),
				Status:                  league.MatchPending,
				UpdatedAt:               now,
			})
		}
		if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
			return nil, fmt.Errorf("failed to create matches of tie %d: %w", f.TieNo, err)
		}
		res.Ties++
		res.Matches += len(matches)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed: %w", err)
	}

	slog.Info("league seeded", "teams", res.Teams, "players", res.Players, "ties", res.Ties, "matches", res.Matches)
	return res, nil
}

func rosterFor(teamID uuid.UUID, entry TeamEntry) []league.Player {
	players := make([]league.Player, 0)
	for _, level := range setLevels {
		for _, name := range entry.Players[string(level)] {
			name = utils.CollapseSpaces(name)
			if name == "" {
				continue
			}
			players = append(players, league.Player{ID: uuid.New(), TeamID: teamID, Name: name, SetLevel: level})
		}
	}
	return players
}
