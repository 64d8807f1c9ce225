package metrics

import "sync"

// Mock counts calls per label. It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	refereeAssignments map[string]int
	scoreUpdates       map[string]int
	matchesCompleted   map[string]int
	matchReverts       map[string]int
	dashboardBuilds    int
}

func NewMock() *Mock {
	return &Mock{
		refereeAssignments: make(map[string]int),
		scoreUpdates:       make(map[string]int),
		matchesCompleted:   make(map[string]int),
		matchReverts:       make(map[string]int),
	}
}

func (m *Mock) IncRefereeAssignments(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refereeAssignments[stage]++
}

func (m *Mock) IncScoreUpdates(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreUpdates[stage]++
}

func (m *Mock) IncMatchesCompleted(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCompleted[stage]++
}

func (m *Mock) IncMatchReverts(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchReverts[reason]++
}

func (m *Mock) ObserveDashboardBuild(float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboardBuilds++
}

func (m *Mock) RefereeAssignments(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refereeAssignments[stage]
}

func (m *Mock) ScoreUpdates(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoreUpdates[stage]
}

func (m *Mock) MatchesCompleted(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCompleted[stage]
}

func (m *Mock) MatchReverts(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchReverts[reason]
}

func (m *Mock) DashboardBuilds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dashboardBuilds
}
