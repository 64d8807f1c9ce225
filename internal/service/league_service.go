package service

import (
	"context"
	"log/slog"

	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/store"
	"github.com/AdamBeresnev/shuttle-league/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

// LeagueService covers the registry and the read side of ties and matches.
type LeagueService struct {
	db    *sqlx.DB
	store *store.LeagueStore
	clock clockwork.Clock
}

func NewLeagueService(db *sqlx.DB, store *store.LeagueStore, clock clockwork.Clock) *LeagueService {
	return &LeagueService{db: db, store: store, clock: clock}
}

func (s *LeagueService) ListTeams(ctx context.Context) ([]league.Team, error) {
	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return nil, storeErr("teams", err)
	}
	return teams, nil
}

func (s *LeagueService) CreateTeam(ctx context.Context, name string) (*league.Team, error) {
	name = utils.CollapseSpaces(name)
	if name == "" {
		return nil, validationf("team name is required")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("team", err)
	}
	defer tx.Rollback()

	position, err := s.store.NextTeamPositionTx(ctx, tx)
	if err != nil {
		return nil, storeErr("team", err)
	}
	team := &league.Team{ID: uuid.New(), Name: name, Position: position, CreatedAt: s.clock.Now()}
	if err := s.store.CreateTeam(ctx, tx, team); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, conflictf("team %q already exists", name)
		}
		return nil, storeErr("team", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("team", err)
	}

	slog.Info("team created", "team_id", team.ID, "name", team.Name)
	return team, nil
}

func (s *LeagueService) ListPlayers(ctx context.Context, teamID *uuid.UUID) ([]league.Player, error) {
	players, err := s.store.ListPlayers(ctx, teamID)
	if err != nil {
		return nil, storeErr("players", err)
	}
	return players, nil
}

func (s *LeagueService) CreatePlayer(ctx context.Context, teamID uuid.UUID, name string, level league.SetLevel) (*league.Player, error) {
	name = utils.CollapseSpaces(name)
	if name == "" {
		return nil, validationf("player name is required")
	}
	if !level.Valid() {
		return nil, validationf("set level must be one of Set-1 to Set-5, got %q", level)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("player", err)
	}
	defer tx.Rollback()

	if _, err := s.store.GetTeamTx(ctx, tx, teamID); err != nil {
		return nil, storeErr("team", err)
	}
	player := league.Player{ID: uuid.New(), TeamID: teamID, Name: name, SetLevel: level}
	if err := s.store.CreatePlayers(ctx, tx, []league.Player{player}); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, conflictf("player %q is already on this team", name)
		}
		return nil, storeErr("player", err)
	}
	created, err := s.store.GetPlayerTx(ctx, tx, player.ID)
	if err != nil {
		return nil, storeErr("player", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("player", err)
	}
	return created, nil
}

func (s *LeagueService) ListTies(ctx context.Context) ([]league.Tie, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, storeErr("ties", err)
	}
	return snap.Ties, nil
}

// ListTieMatches returns the visible matches of one tie.
func (s *LeagueService) ListTieMatches(ctx context.Context, tieID uuid.UUID) ([]league.Match, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, storeErr("tie", err)
	}
	tie, ok := snap.Tie(tieID)
	if !ok {
		return nil, notFoundf("tie not found")
	}
	return tie.Matches, nil
}

func (s *LeagueService) ListMatches(ctx context.Context, filter league.MatchFilter) ([]league.Match, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, validationf("unknown match status %q", *filter.Status)
	}
	if filter.Stage != nil && *filter.Stage != league.StageTie && *filter.Stage != league.StageFinal {
		return nil, validationf("unknown stage %q", *filter.Stage)
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, storeErr("matches", err)
	}
	return snap.VisibleMatches(filter), nil
}

// MatchView is a match together with the lineup hint the referee console uses.
type MatchView struct {
	league.Match
	RequiresStrictLineup bool `json:"requires_strict_lineup"`
}

func (s *LeagueService) GetMatch(ctx context.Context, id uuid.UUID) (*MatchView, error) {
	match, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, storeErr("match", err)
	}
	return &MatchView{Match: *match, RequiresStrictLineup: match.RequiresStrictLineup()}, nil
}

func (s *LeagueService) Schedule(ctx context.Context) ([]league.ScheduleDay, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, storeErr("schedule", err)
	}
	return league.BuildSchedule(snap.VisibleMatches(league.MatchFilter{})), nil
}
