package schedule

// Pairing is one tie of a generated round robin, by team index.
type Pairing struct {
	Round int
	Team1 int
	Team2 int
}

// RoundRobin pairs every team with every other team exactly once using the
// circle method, so no team appears twice in a round. An odd team count adds
// a bye that is dropped from the result.
func RoundRobin(teams int) []Pairing {
	if teams < 2 {
		return nil
	}
	n := teams
	if n%2 == 1 {
		n++
	}
	bye := teams

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	pairings := make([]Pairing, 0, teams*(teams-1)/2)
	for round := 1; round < n; round++ {
		for i := 0; i < n/2; i++ {
			a, b := order[i], order[n-1-i]
			if a == bye || b == bye {
				continue
			}
			if a > b {
				a, b = b, a
			}
			pairings = append(pairings, Pairing{Round: round, Team1: a, Team2: b})
		}
		// Keep the first entry fixed and rotate the rest one step.
		last := order[n-1]
		copy(order[2:], order[1:n-1])
		order[1] = last
	}
	return pairings
}

// generateFixtures lays the round robin out over courts and sessions. Ties of
// one round fill the courts of a session before the next session starts, and
// a new round always starts a new session.
func (d *Definition) generateFixtures() []Fixture {
	pairings := RoundRobin(len(d.Teams))
	fixtures := make([]Fixture, 0, len(pairings))

	slot := -1
	courtIdx := len(d.Courts)
	round := 0
	for i, p := range pairings {
		if p.Round != round || courtIdx == len(d.Courts) {
			slot++
			courtIdx = 0
			round = p.Round
		}
		session := d.Sessions[slot%len(d.Sessions)]
		fixtures = append(fixtures, Fixture{
			TieNo:   i + 1,
			Day:     slot/len(d.Sessions) + 1,
			Session: session.Name,
			Court:   d.Courts[courtIdx],
			Team1:   d.Teams[p.Team1].Name,
			Team2:   d.Teams[p.Team2].Name,
		})
		courtIdx++
	}
	return fixtures
}
