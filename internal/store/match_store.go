package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const matchColumns = `SELECT m.*, t.tie_no AS tie_no, t1.name AS team1_name, t2.name AS team2_name
	FROM matches m
	LEFT JOIN ties t ON t.id = m.tie_id
	JOIN teams t1 ON t1.id = m.team1_id
	JOIN teams t2 ON t2.id = m.team2_id`

const tieColumns = `SELECT t.id, t.tie_no, t.day, t.session, t.court, t.team1_id, t.team2_id,
		t1.name AS team1_name, t2.name AS team2_name
	FROM ties t
	JOIN teams t1 ON t1.id = t.team1_id
	JOIN teams t2 ON t2.id = t.team2_id`

const finalColumns = `SELECT f.id, f.team1_id, f.team2_id, f.bronze_team_id, f.created_at,
		t1.name AS team1_name, t2.name AS team2_name, b.name AS bronze_team_name
	FROM final_ties f
	JOIN teams t1 ON t1.id = f.team1_id
	JOIN teams t2 ON t2.id = f.team2_id
	LEFT JOIN teams b ON b.id = f.bronze_team_id`

func (s *LeagueStore) CreateTie(ctx context.Context, tx *sqlx.Tx, tie *league.Tie) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO ties (id, tie_no, day, session, court, team1_id, team2_id)
		VALUES (:id, :tie_no, :day, :session, :court, :team1_id, :team2_id)`, tie)
	return err
}

func (s *LeagueStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []league.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, stage, tie_id, final_id, match_no, discipline, is_decider,
			lineup_needs_referee_input, court, day, session, scheduled_time, team1_id, team2_id, team1_lineup, team2_lineup,
			lineup_confirmed, team1_score, team2_score, status, referee_name, winner_side, updated_at)
		VALUES (:id, :stage, :tie_id, :final_id, :match_no, :discipline, :is_decider,
			:lineup_needs_referee_input, :court, :day, :session, :scheduled_time, :team1_id, :team2_id, :team1_lineup, :team2_lineup,
			:lineup_confirmed, :team1_score, :team2_score, :status, :referee_name, :winner_side, :updated_at)`, matches)
	return err
}

// UpdateMatch persists the mutable part of a match.
func (s *LeagueStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, match *league.Match) error {
	res, err := tx.NamedExecContext(ctx, `UPDATE matches SET
			team1_lineup = :team1_lineup,
			team2_lineup = :team2_lineup,
			lineup_confirmed = :lineup_confirmed,
			team1_score = :team1_score,
			team2_score = :team2_score,
			status = :status,
			referee_name = :referee_name,
			winner_side = :winner_side,
			updated_at = :updated_at
		WHERE id = :id`, match)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *LeagueStore) GetMatch(ctx context.Context, id uuid.UUID) (*league.Match, error) {
	return getMatch(ctx, s.reader, id)
}

func (s *LeagueStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*league.Match, error) {
	return getMatch(ctx, tx, id)
}

func getMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*league.Match, error) {
	var match league.Match
	if err := sqlx.GetContext(ctx, q, &match, matchColumns+" WHERE m.id = ?", id); err != nil {
		return nil, err
	}
	return &match, nil
}

// ListSiblingsTx returns every match sharing the tie or final of match.
func (s *LeagueStore) ListSiblingsTx(ctx context.Context, tx *sqlx.Tx, match *league.Match) ([]league.Match, error) {
	matches := make([]league.Match, 0)
	var err error
	switch {
	case match.TieID != nil:
		err = tx.SelectContext(ctx, &matches, matchColumns+" WHERE m.tie_id = ? ORDER BY m.match_no", *match.TieID)
	case match.FinalID != nil:
		err = tx.SelectContext(ctx, &matches, matchColumns+" WHERE m.final_id = ? ORDER BY m.match_no", *match.FinalID)
	}
	return matches, err
}

// LiveOnCourtTx returns the live matches on court other than exclude.
func (s *LeagueStore) LiveOnCourtTx(ctx context.Context, tx *sqlx.Tx, court int, exclude uuid.UUID) ([]league.Match, error) {
	matches := make([]league.Match, 0)
	err := tx.SelectContext(ctx, &matches, matchColumns+" WHERE m.court = ? AND m.status = ? AND m.id <> ? ORDER BY m.updated_at",
		court, league.MatchLive, exclude)
	return matches, err
}

// LiveMatchIDsOnCourt is a lock-free read used to decide which match locks a
// court change needs. The answer is re-checked inside the transaction.
func (s *LeagueStore) LiveMatchIDsOnCourt(ctx context.Context, court int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := s.reader.SelectContext(ctx, &ids, "SELECT id FROM matches WHERE court = ? AND status = ?", court, league.MatchLive)
	return ids, err
}

func (s *LeagueStore) CreateFinal(ctx context.Context, tx *sqlx.Tx, final *league.FinalTie) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO final_ties (id, team1_id, team2_id, bronze_team_id, created_at)
		VALUES (:id, :team1_id, :team2_id, :bronze_team_id, :created_at)`, final)
	return err
}

// GetFinal returns the final tie, or nil when it has not been created yet.
func (s *LeagueStore) GetFinal(ctx context.Context) (*league.FinalTie, error) {
	return getFinal(ctx, s.reader)
}

func (s *LeagueStore) GetFinalTx(ctx context.Context, tx *sqlx.Tx) (*league.FinalTie, error) {
	return getFinal(ctx, tx)
}

func getFinal(ctx context.Context, q sqlx.QueryerContext) (*league.FinalTie, error) {
	var final league.FinalTie
	err := sqlx.GetContext(ctx, q, &final, finalColumns+" LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &final, nil
}

// Snapshot reads teams, ties, matches and the final in one transaction so
// every derived view sees the same committed state.
func (s *LeagueStore) Snapshot(ctx context.Context) (*league.Snapshot, error) {
	tx, err := s.reader.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	snap, err := s.SnapshotTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	return snap, tx.Commit()
}

// SnapshotTx is Snapshot inside a caller-owned transaction. The result is
// already settled.
func (s *LeagueStore) SnapshotTx(ctx context.Context, tx *sqlx.Tx) (*league.Snapshot, error) {
	teams, err := listTeams(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	ties := make([]league.Tie, 0)
	if err := tx.SelectContext(ctx, &ties, tieColumns+" ORDER BY t.tie_no"); err != nil {
		return nil, fmt.Errorf("failed to list ties: %w", err)
	}

	matches := make([]league.Match, 0)
	if err := tx.SelectContext(ctx, &matches, matchColumns+" ORDER BY m.stage DESC, t.tie_no, m.match_no"); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	final, err := getFinal(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to get final: %w", err)
	}

	snap := &league.Snapshot{Teams: teams, Ties: ties, Matches: matches, Final: final}
	snap.Settle()
	return snap, nil
}
