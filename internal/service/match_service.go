package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/AdamBeresnev/shuttle-league/internal/events"
	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/lineup"
	"github.com/AdamBeresnev/shuttle-league/internal/metrics"
	"github.com/AdamBeresnev/shuttle-league/internal/scoring"
	"github.com/AdamBeresnev/shuttle-league/internal/store"
	"github.com/AdamBeresnev/shuttle-league/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

// MatchService owns every match state transition. Each transition runs under
// the match lock, and starting a match also holds its court lock, so that at
// most one match is live per court.
type MatchService struct {
	db      *sqlx.DB
	store   *store.LeagueStore
	locks   *keyedMutex
	clock   clockwork.Clock
	events  events.Publisher
	metrics metrics.Metrics

	leagueProgressed func(ctx context.Context)
}

func NewMatchService(db *sqlx.DB, store *store.LeagueStore, clock clockwork.Clock, publisher events.Publisher, m metrics.Metrics) *MatchService {
	return &MatchService{
		db:      db,
		store:   store,
		locks:   newKeyedMutex(),
		clock:   clock,
		events:  publisher,
		metrics: m,
	}
}

type AssignResult struct {
	Match   *league.Match   `json:"match"`
	Referee *league.Referee `json:"referee"`
}

// transition is a committed change that still has to be announced.
type transition struct {
	event events.EventType
	match league.Match
}

// AssignReferee starts a pending match. Strict lineups are reduced to their
// first two names and confirmed; any other live match on the same court is
// sent back to pending in the same transaction.
func (s *MatchService) AssignReferee(ctx context.Context, matchID uuid.UUID, name string) (*AssignResult, error) {
	name = utils.CollapseSpaces(name)
	if name == "" {
		return nil, validationf("referee name is required")
	}

	unlock, err := s.lockCourtOf(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("match", err)
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, storeErr("match", err)
	}
	switch match.Status {
	case league.MatchCompleted:
		return nil, conflictf("match %d is already completed", match.MatchNo)
	case league.MatchLive:
		return nil, conflictf("match %d is already live", match.MatchNo)
	}
	if err := s.checkDeciderUnlocked(ctx, tx, match); err != nil {
		return nil, err
	}
	if err := applyStartLineups(match); err != nil {
		return nil, err
	}

	referee, err := s.store.GetOrCreateRefereeTx(ctx, tx, name, s.clock.Now())
	if err != nil {
		return nil, storeErr("referee", err)
	}

	reverted, err := s.clearCourt(ctx, tx, match)
	if err != nil {
		return nil, err
	}

	match.RefereeName = &referee.Name
	match.Status = league.MatchLive
	match.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
		return nil, storeErr("match", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("match", err)
	}

	s.metrics.IncRefereeAssignments(string(match.Stage))
	s.recordHandovers(reverted)
	slog.Info("match started", "match_id", match.ID, "court", match.Court, "referee", referee.Name)
	s.announce(ctx, append(reverted, transition{events.EventMatchStarted, *match})...)

	return &AssignResult{Match: match, Referee: referee}, nil
}

// UpdateMatchStatus moves a match between pending and live. Reverting keeps
// scores and referee; resuming needs a referee and follows the court rule.
func (s *MatchService) UpdateMatchStatus(ctx context.Context, matchID uuid.UUID, status league.MatchStatus) (*league.Match, error) {
	switch status {
	case league.MatchPending:
		return s.revertToPending(ctx, matchID)
	case league.MatchLive:
		return s.resume(ctx, matchID)
	case league.MatchCompleted:
		return nil, validationf("a match is completed by recording a winning score")
	}
	return nil, validationf("unknown match status %q", status)
}

func (s *MatchService) revertToPending(ctx context.Context, matchID uuid.UUID) (*league.Match, error) {
	unlock := s.locks.LockAll(matchKey(matchID))
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("match", err)
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, storeErr("match", err)
	}
	switch match.Status {
	case league.MatchCompleted:
		return nil, conflictf("match %d is already completed", match.MatchNo)
	case league.MatchPending:
		return match, nil
	}

	match.Status = league.MatchPending
	match.WinnerSide = nil
	match.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
		return nil, storeErr("match", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("match", err)
	}

	s.metrics.IncMatchReverts(metrics.RevertStopped)
	slog.Info("match reverted to pending", "match_id", match.ID, "court", match.Court)
	s.announce(ctx, transition{events.EventMatchReverted, *match})
	return match, nil
}

func (s *MatchService) resume(ctx context.Context, matchID uuid.UUID) (*league.Match, error) {
	unlock, err := s.lockCourtOf(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("match", err)
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, storeErr("match", err)
	}
	switch match.Status {
	case league.MatchCompleted:
		return nil, conflictf("match %d is already completed", match.MatchNo)
	case league.MatchLive:
		return match, nil
	}
	if match.RefereeName == nil {
		return nil, validationf("assign a referee to match %d before resuming it", match.MatchNo)
	}
	if err := s.checkDeciderUnlocked(ctx, tx, match); err != nil {
		return nil, err
	}

	reverted, err := s.clearCourt(ctx, tx, match)
	if err != nil {
		return nil, err
	}

	match.Status = league.MatchLive
	match.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
		return nil, storeErr("match", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("match", err)
	}

	s.recordHandovers(reverted)
	slog.Info("match resumed", "match_id", match.ID, "court", match.Court)
	s.announce(ctx, append(reverted, transition{events.EventMatchResumed, *match})...)
	return match, nil
}

// UpdateLineup stores normalized lineups for a pending or live match.
func (s *MatchService) UpdateLineup(ctx context.Context, matchID uuid.UUID, team1Lineup, team2Lineup string) (*league.Match, error) {
	unlock := s.locks.LockAll(matchKey(matchID))
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("match", err)
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, storeErr("match", err)
	}
	if match.IsCompleted() {
		return nil, conflictf("match %d is already completed", match.MatchNo)
	}

	match.Team1Lineup = lineup.Normalize(team1Lineup)
	match.Team2Lineup = lineup.Normalize(team2Lineup)
	if match.IsDecider {
		match.Team1Lineup = lineup.Singles(match.Team1Lineup)
		match.Team2Lineup = lineup.Singles(match.Team2Lineup)
	}
	match.LineupConfirmed = true
	match.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
		return nil, storeErr("match", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("match", err)
	}

	s.announce(ctx, transition{events.EventLineupUpdated, *match})
	return match, nil
}

// UpdateScore records the score of a live match. Repeating the current score
// is a no-op, so clients may resend freely. A winning score completes the
// match and locks it.
func (s *MatchService) UpdateScore(ctx context.Context, matchID uuid.UUID, score1, score2 int) (*league.Match, error) {
	match, completed, err := s.applyScore(ctx, matchID, score1, score2)
	if err != nil {
		return nil, err
	}
	if completed && match.Stage == league.StageTie && s.leagueProgressed != nil {
		s.leagueProgressed(ctx)
	}
	return match, nil
}

func (s *MatchService) applyScore(ctx context.Context, matchID uuid.UUID, score1, score2 int) (*league.Match, bool, error) {
	score1, score2, winner, err := scoring.Settle(score1, score2)
	if err != nil {
		return nil, false, validationf("%s", err)
	}

	unlock := s.locks.LockAll(matchKey(matchID))
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, storeErr("match", err)
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, false, storeErr("match", err)
	}
	if match.IsCompleted() {
		return nil, false, conflictf("match %d is already completed", match.MatchNo)
	}
	if match.Status != league.MatchLive {
		return nil, false, conflictf("match %d is not live, assign a referee first", match.MatchNo)
	}
	if match.Team1Score == score1 && match.Team2Score == score2 {
		return match, false, nil
	}

	team1, team2, badSide := match.ScoringLineups()
	switch badSide {
	case 1:
		return nil, false, lineupError(match, 1, match.Team1Name)
	case 2:
		return nil, false, lineupError(match, 2, match.Team2Name)
	}
	if team1 != match.Team1Lineup || team2 != match.Team2Lineup {
		match.Team1Lineup, match.Team2Lineup = team1, team2
		match.LineupConfirmed = true
	}

	match.Team1Score, match.Team2Score = score1, score2
	if winner != 0 {
		match.Status = league.MatchCompleted
		match.WinnerSide = &winner
	}
	match.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
		return nil, false, storeErr("match", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, storeErr("match", err)
	}

	s.metrics.IncScoreUpdates(string(match.Stage))
	completed := match.IsCompleted()
	if completed {
		s.metrics.IncMatchesCompleted(string(match.Stage))
		slog.Info("match completed", "match_id", match.ID, "score", []int{score1, score2}, "winner_side", winner)
		s.announce(ctx, transition{events.EventMatchCompleted, *match})
	} else {
		s.announce(ctx, transition{events.EventScoreUpdated, *match})
	}
	return match, completed, nil
}

func lineupError(match *league.Match, side int, team string) error {
	if match.RequiresStrictLineup() {
		return validationf("team %d (%s) lineup needs two player names for match %d", side, team, match.MatchNo)
	}
	return validationf("team %d (%s) lineup is empty for match %d", side, team, match.MatchNo)
}

// applyStartLineups enforces the lineup rule for a match about to start.
func applyStartLineups(match *league.Match) error {
	if match.IsDecider {
		match.Team1Lineup = lineup.Singles(match.Team1Lineup)
		match.Team2Lineup = lineup.Singles(match.Team2Lineup)
		return nil
	}
	if !match.RequiresStrictLineup() {
		match.Team1Lineup = lineup.Normalize(match.Team1Lineup)
		match.Team2Lineup = lineup.Normalize(match.Team2Lineup)
		return nil
	}

	team1 := lineup.ForScore(match.Team1Lineup, true)
	if team1 == "" {
		return lineupError(match, 1, match.Team1Name)
	}
	team2 := lineup.ForScore(match.Team2Lineup, true)
	if team2 == "" {
		return lineupError(match, 2, match.Team2Name)
	}
	match.Team1Lineup, match.Team2Lineup = team1, team2
	match.LineupConfirmed = true
	return nil
}

func (s *MatchService) checkDeciderUnlocked(ctx context.Context, tx *sqlx.Tx, match *league.Match) error {
	if !match.IsDecider {
		return nil
	}
	siblings, err := s.store.ListSiblingsTx(ctx, tx, match)
	if err != nil {
		return storeErr("tie", err)
	}
	if !league.DeciderUnlocked(siblings) {
		return validationf("the decider can only start once every other match is completed with the score level")
	}
	return nil
}

// clearCourt reverts every other live match on the court of match.
func (s *MatchService) clearCourt(ctx context.Context, tx *sqlx.Tx, match *league.Match) ([]transition, error) {
	live, err := s.store.LiveOnCourtTx(ctx, tx, match.Court, match.ID)
	if err != nil {
		return nil, storeErr("court", err)
	}

	reverted := make([]transition, 0, len(live))
	for i := range live {
		other := &live[i]
		other.Status = league.MatchPending
		other.UpdatedAt = s.clock.Now()
		if err := s.store.UpdateMatch(ctx, tx, other); err != nil {
			return nil, storeErr("match", err)
		}
		reverted = append(reverted, transition{events.EventMatchReverted, *other})
	}
	return reverted, nil
}

// lockCourtOf locks the court of matchID, the match itself and every match
// currently live on that court. Matches only go live under the court lock, so
// the live set cannot grow once it is held; if it grew while waiting, retry.
func (s *MatchService) lockCourtOf(ctx context.Context, matchID uuid.UUID) (func(), error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, storeErr("match", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		live, err := s.store.LiveMatchIDsOnCourt(ctx, match.Court)
		if err != nil {
			return nil, storeErr("court", err)
		}

		keys := []string{courtKey(match.Court), matchKey(matchID)}
		for _, id := range live {
			keys = append(keys, matchKey(id))
		}
		unlock := s.locks.LockAll(keys...)

		current, err := s.store.LiveMatchIDsOnCourt(ctx, match.Court)
		if err != nil {
			unlock()
			return nil, storeErr("court", err)
		}
		covered := true
		for _, id := range current {
			if id != matchID && !slices.Contains(live, id) {
				covered = false
				break
			}
		}
		if covered {
			return unlock, nil
		}
		unlock()
	}
}

func (s *MatchService) recordHandovers(reverted []transition) {
	for _, t := range reverted {
		s.metrics.IncMatchReverts(metrics.RevertCourtHandover)
		slog.Info("match reverted to pending", "match_id", t.match.ID, "court", t.match.Court, "reason", metrics.RevertCourtHandover)
	}
}

// announce publishes committed transitions. Delivery is best effort.
func (s *MatchService) announce(ctx context.Context, transitions ...transition) {
	now := s.clock.Now()
	for _, t := range transitions {
		if err := s.events.Publish(ctx, events.NewMatchEvent(t.event, &t.match, now)); err != nil {
			slog.Warn("failed to publish match event", "event", t.event, "match_id", t.match.ID, "error", err)
		}
	}
}
