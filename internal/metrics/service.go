package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

type Service struct {
	RefereeAssignments *prometheus.CounterVec
	ScoreUpdates       *prometheus.CounterVec
	MatchesCompleted   *prometheus.CounterVec
	MatchReverts       *prometheus.CounterVec
	DashboardBuilds    *prometheus.HistogramVec
}

// NewMetricsHandler serves the given gatherer, or the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the collectors on registerer, or on the
// default registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RefereeAssignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_referee_assignments_total",
			Help: "Matches started by a referee assignment.",
		}, []string{"stage"}),
		ScoreUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_score_updates_total",
			Help: "Score updates committed.",
		}, []string{"stage"}),
		MatchesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_matches_completed_total",
			Help: "Matches that reached a winning score.",
		}, []string{"stage"}),
		MatchReverts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_match_reverts_total",
			Help: "Live matches sent back to pending.",
		}, []string{"reason"}),
		DashboardBuilds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "league_dashboard_build_duration_seconds",
			Help:    "Time to serve a dashboard or standings read.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"shared"}),
	}

	reg.MustRegister(
		s.RefereeAssignments,
		s.ScoreUpdates,
		s.MatchesCompleted,
		s.MatchReverts,
		s.DashboardBuilds,
	)

	return s
}

func (s *Service) IncRefereeAssignments(stage string) {
	s.RefereeAssignments.WithLabelValues(stage).Inc()
}

func (s *Service) IncScoreUpdates(stage string) {
	s.ScoreUpdates.WithLabelValues(stage).Inc()
}

func (s *Service) IncMatchesCompleted(stage string) {
	s.MatchesCompleted.WithLabelValues(stage).Inc()
}

func (s *Service) IncMatchReverts(reason string) {
	s.MatchReverts.WithLabelValues(reason).Inc()
}

func (s *Service) ObserveDashboardBuild(seconds float64, shared bool) {
	s.DashboardBuilds.WithLabelValues(strconv.FormatBool(shared)).Observe(seconds)
}
