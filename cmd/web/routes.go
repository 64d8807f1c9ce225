package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/shuttle-league/internal/httputil"
	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/middleware"
	"github.com/AdamBeresnev/shuttle-league/internal/service"
	"github.com/AdamBeresnev/shuttle-league/internal/utils"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type app struct {
	league    *service.LeagueService
	matches   *service.MatchService
	finals    *service.FinalsService
	dashboard *service.DashboardService
	referees  *middleware.RefereeSession

	sessions       *scs.SessionManager
	metricsHandler http.Handler
	corsOrigins    []string
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(a.sessions.LoadAndSave)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", a.metricsHandler)

	r.Route("/teams", func(r chi.Router) {
		r.Get("/", a.listTeams)
		r.Post("/", a.createTeam)
	})
	r.Route("/players", func(r chi.Router) {
		r.Get("/", a.listPlayers)
		r.Post("/", a.createPlayer)
	})
	r.Route("/ties", func(r chi.Router) {
		r.Get("/", a.listTies)
		r.Get("/{id}/matches", a.listTieMatches)
	})
	r.Route("/matches", func(r chi.Router) {
		r.Get("/", a.listMatches)
		r.Get("/{id}", a.getMatch)
		r.Patch("/{id}/score", a.updateScore)
		r.Post("/score/{id}", a.updateScore)
		r.Post("/{id}", a.updateScoreQuery)
		r.Put("/{id}/lineup", a.updateLineup)
		r.Patch("/{id}/status", a.updateStatus)
	})
	r.Route("/referee", func(r chi.Router) {
		r.Post("/assign", a.assignReferee)
		r.With(a.referees.LoadReferee).Get("/session", a.refereeSession)
	})
	r.Get("/schedule", a.schedule)
	r.Route("/viewer", func(r chi.Router) {
		r.Get("/dashboard", a.viewerDashboard)
		r.Get("/standings", a.viewerStandings)
	})
	r.Route("/finals", func(r chi.Router) {
		r.Get("/", a.getFinal)
		r.Post("/assign", a.assignFinalReferee)
		r.Post("/score", a.updateFinalScore)
		r.Post("/games/{id}/assign", a.assignFinalGameReferee)
		r.Post("/games/{id}/score", a.updateFinalGameScore)
	})

	return r
}

type scoreRequest struct {
	Score1 *int `json:"score1"`
	Score2 *int `json:"score2"`
}

func decodeScore(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid score payload", err)
		return 0, 0, false
	}
	if req.Score1 == nil || req.Score2 == nil {
		httputil.BadRequest(w, "score1 and score2 are required", nil)
		return 0, 0, false
	}
	return *req.Score1, *req.Score2, true
}

func urlID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+what+" ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func (a *app) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := a.league.ListTeams(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, teams)
}

func (a *app) createTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid team payload", err)
		return
	}
	team, err := a.league.CreateTeam(r.Context(), req.Name)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, team)
}

func (a *app) listPlayers(w http.ResponseWriter, r *http.Request) {
	var teamID *uuid.UUID
	if raw := utils.StringOrNil(r.URL.Query().Get("team_id")); raw != nil {
		id, err := uuid.Parse(*raw)
		if err != nil {
			httputil.BadRequest(w, "Invalid team ID", err)
			return
		}
		teamID = &id
	}
	players, err := a.league.ListPlayers(r.Context(), teamID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, players)
}

func (a *app) createPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeamID   uuid.UUID       `json:"team_id"`
		Name     string          `json:"name"`
		SetLevel league.SetLevel `json:"set_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid player payload", err)
		return
	}
	player, err := a.league.CreatePlayer(r.Context(), req.TeamID, req.Name, req.SetLevel)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, player)
}

func (a *app) listTies(w http.ResponseWriter, r *http.Request) {
	ties, err := a.league.ListTies(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ties)
}

func (a *app) listTieMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tie")
	if !ok {
		return
	}
	matches, err := a.league.ListTieMatches(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, matches)
}

func (a *app) listMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter league.MatchFilter
	if stage := utils.StringOrNil(q.Get("stage")); stage != nil {
		filter.Stage = utils.Ptr(league.Stage(*stage))
	}
	if status := utils.StringOrNil(q.Get("status")); status != nil {
		filter.Status = utils.Ptr(league.MatchStatus(*status))
	}
	if raw := utils.StringOrNil(q.Get("tie_id")); raw != nil {
		id, err := uuid.Parse(*raw)
		if err != nil {
			httputil.BadRequest(w, "Invalid tie ID", err)
			return
		}
		filter.TieID = &id
	}
	matches, err := a.league.ListMatches(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, matches)
}

func (a *app) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "match")
	if !ok {
		return
	}
	match, err := a.league.GetMatch(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (a *app) updateScore(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "match")
	if !ok {
		return
	}
	score1, score2, ok := decodeScore(w, r)
	if !ok {
		return
	}
	a.writeScore(w, r, id, score1, score2)
}

// updateScoreQuery accepts the score as s1 and s2 query parameters.
func (a *app) updateScoreQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "match")
	if !ok {
		return
	}
	score1, err1 := strconv.Atoi(r.URL.Query().Get("s1"))
	score2, err2 := strconv.Atoi(r.URL.Query().Get("s2"))
	if err1 != nil || err2 != nil {
		httputil.BadRequest(w, "s1 and s2 must be integers", nil)
		return
	}
	a.writeScore(w, r, id, score1, score2)
}

func (a *app) writeScore(w http.ResponseWriter, r *http.Request, id uuid.UUID, score1, score2 int) {
	match, err := a.matches.UpdateScore(r.Context(), id, score1, score2)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (a *app) updateLineup(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "match")
	if !ok {
		return
	}
	var req struct {
		Team1Lineup string `json:"team1_lineup"`
		Team2Lineup string `json:"team2_lineup"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid lineup payload", err)
		return
	}
	match, err := a.matches.UpdateLineup(r.Context(), id, req.Team1Lineup, req.Team2Lineup)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (a *app) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "match")
	if !ok {
		return
	}
	var req struct {
		Status league.MatchStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid status payload", err)
		return
	}
	match, err := a.matches.UpdateMatchStatus(r.Context(), id, req.Status)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (a *app) assignReferee(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(r.URL.Query().Get("match_id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid match ID", err)
		return
	}
	res, err := a.matches.AssignReferee(r.Context(), matchID, r.URL.Query().Get("name"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	a.referees.Remember(r.Context(), res.Match.Court, res.Referee.Name)
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (a *app) refereeSession(w http.ResponseWriter, r *http.Request) {
	last, _ := middleware.GetRefereeFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"last_referee": utils.StringOrNil(last),
		"courts":       a.referees.Remembered(r.Context()),
	})
}

func (a *app) schedule(w http.ResponseWriter, r *http.Request) {
	days, err := a.league.Schedule(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, days)
}

func (a *app) viewerDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := a.dashboard.Dashboard(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dash)
}

func (a *app) viewerStandings(w http.ResponseWriter, r *http.Request) {
	st, err := a.dashboard.Standings(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st.Rows)
}

// getFinal answers null until the league is complete.
func (a *app) getFinal(w http.ResponseWriter, r *http.Request) {
	final, err := a.finals.EnsureFinal(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, final)
}

func (a *app) assignFinalReferee(w http.ResponseWriter, r *http.Request) {
	res, err := a.finals.AssignFinalReferee(r.Context(), r.URL.Query().Get("name"))
	a.writeFinalAfterAssign(w, r, res, err)
}

func (a *app) assignFinalGameReferee(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "game")
	if !ok {
		return
	}
	res, err := a.finals.AssignFinalGameReferee(r.Context(), id, r.URL.Query().Get("name"))
	a.writeFinalAfterAssign(w, r, res, err)
}

func (a *app) writeFinalAfterAssign(w http.ResponseWriter, r *http.Request, res *service.AssignResult, err error) {
	if err != nil {
		httputil.Error(w, err)
		return
	}
	a.referees.Remember(r.Context(), res.Match.Court, res.Referee.Name)
	final, err := a.finals.GetFinal(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, final)
}

func (a *app) updateFinalScore(w http.ResponseWriter, r *http.Request) {
	score1, score2, ok := decodeScore(w, r)
	if !ok {
		return
	}
	final, err := a.finals.UpdateFinalScore(r.Context(), score1, score2)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, final)
}

func (a *app) updateFinalGameScore(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "game")
	if !ok {
		return
	}
	score1, score2, ok := decodeScore(w, r)
	if !ok {
		return
	}
	final, err := a.finals.UpdateFinalGameScore(r.Context(), id, score1, score2)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, final)
}
