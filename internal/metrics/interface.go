package metrics

// Metrics is what the league services record. Stage labels are "tie" or "final".
type Metrics interface {
	IncRefereeAssignments(stage string)
	IncScoreUpdates(stage string)
	IncMatchesCompleted(stage string)
	IncMatchReverts(reason string)
	ObserveDashboardBuild(seconds float64, shared bool)
}

const (
	RevertStopped       = "stopped"
	RevertCourtHandover = "court_handover"
)
