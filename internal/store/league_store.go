package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// LeagueStore writes inside caller-owned transactions on the writer handle.
// Reads outside a transaction go through reader, which must never take the
// write lock.
type LeagueStore struct {
	reader *sqlx.DB
}

func NewLeagueStore(reader *sqlx.DB) *LeagueStore {
	return &LeagueStore{reader: reader}
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func (s *LeagueStore) CreateTeam(ctx context.Context, tx *sqlx.Tx, team *league.Team) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO teams (id, name, position, created_at)
		VALUES (:id, :name, :position, :created_at)`, team)
	return err
}

func (s *LeagueStore) NextTeamPositionTx(ctx context.Context, tx *sqlx.Tx) (int, error) {
	var position int
	err := tx.GetContext(ctx, &position, "SELECT COALESCE(MAX(position), 0) + 1 FROM teams")
	return position, err
}

func (s *LeagueStore) ListTeams(ctx context.Context) ([]league.Team, error) {
	return listTeams(ctx, s.reader)
}

func listTeams(ctx context.Context, q sqlx.QueryerContext) ([]league.Team, error) {
	teams := make([]league.Team, 0)
	err := sqlx.SelectContext(ctx, q, &teams, "SELECT * FROM teams ORDER BY position ASC")
	return teams, err
}

func (s *LeagueStore) GetTeamTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*league.Team, error) {
	var team league.Team
	err := tx.GetContext(ctx, &team, "SELECT * FROM teams WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *LeagueStore) GetTeamByNameTx(ctx context.Context, tx *sqlx.Tx, name string) (*league.Team, error) {
	var team league.Team
	err := tx.GetContext(ctx, &team, "SELECT * FROM teams WHERE name = ?", name)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *LeagueStore) CountTeams(ctx context.Context) (int, error) {
	var n int
	err := s.reader.GetContext(ctx, &n, "SELECT COUNT(*) FROM teams")
	return n, err
}

func (s *LeagueStore) CountTeamsTx(ctx context.Context, tx *sqlx.Tx) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM teams")
	return n, err
}

func (s *LeagueStore) CreatePlayers(ctx context.Context, tx *sqlx.Tx, players []league.Player) error {
	if len(players) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO players (id, team_id, name, set_level)
		VALUES (:id, :team_id, :name, :set_level)`, players)
	return err
}

const playerColumns = `SELECT p.id, p.team_id, p.name, p.set_level, t.name AS team_name
	FROM players p JOIN teams t ON t.id = p.team_id`

// ListPlayers returns every player, or only those of teamID when it is set.
func (s *LeagueStore) ListPlayers(ctx context.Context, teamID *uuid.UUID) ([]league.Player, error) {
	players := make([]league.Player, 0)
	if teamID != nil {
		err := s.reader.SelectContext(ctx, &players, playerColumns+" WHERE p.team_id = ? ORDER BY t.position, p.set_level, p.name", *teamID)
		return players, err
	}
	err := s.reader.SelectContext(ctx, &players, playerColumns+" ORDER BY t.position, p.set_level, p.name")
	return players, err
}

func (s *LeagueStore) GetPlayerTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*league.Player, error) {
	var player league.Player
	if err := tx.GetContext(ctx, &player, playerColumns+" WHERE p.id = ?", id); err != nil {
		return nil, err
	}
	return &player, nil
}

// GetOrCreateRefereeTx looks the referee up case-insensitively and registers
// the name on first use.
func (s *LeagueStore) GetOrCreateRefereeTx(ctx context.Context, tx *sqlx.Tx, name string, now time.Time) (*league.Referee, error) {
	var referee league.Referee
	err := tx.GetContext(ctx, &referee, "SELECT * FROM referees WHERE name = ?", name)
	if err == nil {
		return &referee, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get referee: %w", err)
	}

	referee = league.Referee{ID: uuid.New(), Name: name, CreatedAt: now}
	if _, err := tx.NamedExecContext(ctx, `INSERT INTO referees (id, name, created_at)
		VALUES (:id, :name, :created_at)`, &referee); err != nil {
		return nil, fmt.Errorf("failed to create referee: %w", err)
	}
	return &referee, nil
}
