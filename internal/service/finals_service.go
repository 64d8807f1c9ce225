package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/store"
	"github.com/AdamBeresnev/shuttle-league/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

const (
	finalSession         = "final"
	finalDeciderName     = "Final Decider"
	defaultFinalGameSize = 12
)

type FinalsConfig struct {
	Court     int
	GameCount int
}

// FinalsService creates the final tie once the league is complete and routes
// final game actions through MatchService.
type FinalsService struct {
	db      *sqlx.DB
	store   *store.LeagueStore
	matches *MatchService
	clock   clockwork.Clock
	cfg     FinalsConfig

	mu sync.Mutex
}

// NewFinalsService also registers itself with matches so that completing the
// last league match schedules the final.
func NewFinalsService(db *sqlx.DB, store *store.LeagueStore, matches *MatchService, clock clockwork.Clock, cfg FinalsConfig) *FinalsService {
	if cfg.GameCount <= 0 {
		cfg.GameCount = defaultFinalGameSize
	}
	s := &FinalsService{db: db, store: store, matches: matches, clock: clock, cfg: cfg}
	matches.leagueProgressed = func(ctx context.Context) {
		if _, err := s.EnsureFinal(ctx); err != nil {
			slog.Error("failed to schedule final tie", "error", err)
		}
	}
	return s
}

// EnsureFinal returns the final tie, creating it the first time it is asked
// for after the league completes. It returns nil while the league is still
// running.
func (s *FinalsService) EnsureFinal(ctx context.Context) (*league.FinalTie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("final tie", err)
	}
	defer tx.Rollback()

	snap, err := s.store.SnapshotTx(ctx, tx)
	if err != nil {
		return nil, storeErr("final tie", err)
	}
	if snap.Final != nil {
		return snap.Final, nil
	}

	st := snap.Standings()
	finalists := st.Qualified(league.QualificationFinalist)
	if !st.LeagueComplete || len(finalists) < 2 {
		return nil, nil
	}

	final := &league.FinalTie{
		ID:        uuid.New(),
		Team1ID:   finalists[0].TeamID,
		Team2ID:   finalists[1].TeamID,
		Team1Name: finalists[0].Team,
		Team2Name: finalists[1].Team,
		CreatedAt: s.clock.Now(),
	}
	if bronze := st.Qualified(league.QualificationBronze); len(bronze) > 0 {
		final.BronzeTeamID = &bronze[0].TeamID
		final.BronzeTeamName = &bronze[0].Team
	}
	games := s.finalGames(final, snap.Matches)

	if err := s.store.CreateFinal(ctx, tx, final); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, conflictf("final tie was created concurrently, please retry")
		}
		return nil, storeErr("final tie", err)
	}
	if err := s.store.CreateMatches(ctx, tx, games); err != nil {
		return nil, storeErr("final games", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("final tie", err)
	}

	slog.Info("final tie scheduled", "final_id", final.ID, "team1", final.Team1Name, "team2", final.Team2Name, "games", len(games))
	final.Settle(games)
	return final, nil
}

// finalGames copies the league disciplines slot by slot and appends a decider.
func (s *FinalsService) finalGames(final *league.FinalTie, leagueMatches []league.Match) []league.Match {
	disciplines := make(map[int]string)
	deciderDiscipline := finalDeciderName
	for _, m := range leagueMatches {
		if m.Stage != league.StageTie {
			continue
		}
		if m.IsDecider {
			deciderDiscipline = m.Discipline
			continue
		}
		if _, ok := disciplines[m.MatchNo]; !ok {
			disciplines[m.MatchNo] = m.Discipline
		}
	}

	now := s.clock.Now()
	newGame := func(no int, discipline string, decider bool) league.Match {
		return league.Match{
			ID:                      uuid.New(),
			Stage:                   league.StageFinal,
			FinalID:                 &final.ID,
			MatchNo:                 no,
			Discipline:              discipline,
			IsDecider:               decider,
			LineupNeedsRefereeInput: utils.Ptr(false),
			Court:                   s.cfg.Court,
			Session:                 finalSession,
			Team1ID:                 final.Team1ID,
			Team2ID:                 final.Team2ID,
			Team1Name:               final.Team1Name,
			Team2Name:               final.Team2Name,
			Team1Lineup:             final.Team1Name,
			Team2Lineup:             final.Team2Name,
			Status:                  league.MatchPending,
			UpdatedAt:               now,
		}
	}

	games := make([]league.Match, 0, s.cfg.GameCount+1)
	for no := 1; no <= s.cfg.GameCount; no++ {
		discipline, ok := disciplines[no]
		if !ok {
			discipline = fmt.Sprintf("Final Game %d", no)
		}
		games = append(games, newGame(no, discipline, false))
	}
	if s.cfg.GameCount%2 == 0 {
		games = append(games, newGame(s.cfg.GameCount+1, deciderDiscipline, true))
	}
	return games
}

// GetFinal returns the final tie or NotFound while the league is running.
func (s *FinalsService) GetFinal(ctx context.Context) (*league.FinalTie, error) {
	final, err := s.EnsureFinal(ctx)
	if err != nil {
		return nil, err
	}
	if final == nil {
		return nil, notFoundf("final tie is not scheduled until every league tie is completed")
	}
	return final, nil
}

// AssignFinalReferee starts the first unfinished final game.
func (s *FinalsService) AssignFinalReferee(ctx context.Context, name string) (*AssignResult, error) {
	game, err := s.nextOpenGame(ctx)
	if err != nil {
		return nil, err
	}
	return s.matches.AssignReferee(ctx, game.ID, name)
}

func (s *FinalsService) AssignFinalGameReferee(ctx context.Context, gameID uuid.UUID, name string) (*AssignResult, error) {
	if err := s.checkFinalGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.matches.AssignReferee(ctx, gameID, name)
}

// UpdateFinalScore scores the first unfinished final game and returns the
// updated final tie.
func (s *FinalsService) UpdateFinalScore(ctx context.Context, score1, score2 int) (*league.FinalTie, error) {
	game, err := s.nextOpenGame(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.matches.UpdateScore(ctx, game.ID, score1, score2); err != nil {
		return nil, err
	}
	return s.GetFinal(ctx)
}

func (s *FinalsService) UpdateFinalGameScore(ctx context.Context, gameID uuid.UUID, score1, score2 int) (*league.FinalTie, error) {
	if err := s.checkFinalGame(ctx, gameID); err != nil {
		return nil, err
	}
	if _, err := s.matches.UpdateScore(ctx, gameID, score1, score2); err != nil {
		return nil, err
	}
	return s.GetFinal(ctx)
}

func (s *FinalsService) nextOpenGame(ctx context.Context) (league.Match, error) {
	final, err := s.GetFinal(ctx)
	if err != nil {
		return league.Match{}, err
	}
	game, ok := final.NextOpenGame()
	if !ok {
		return league.Match{}, conflictf("final tie is already completed")
	}
	return game, nil
}

func (s *FinalsService) checkFinalGame(ctx context.Context, gameID uuid.UUID) error {
	game, err := s.store.GetMatch(ctx, gameID)
	if err != nil {
		return storeErr("final game", err)
	}
	if game.Stage != league.StageFinal {
		return notFoundf("final game not found")
	}
	return nil
}
