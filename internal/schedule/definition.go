// Package schedule loads league definitions and seeds an empty database with
// teams, rosters, ties and matches.
package schedule

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/utils"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSessionStart = "09:30"
	defaultSlotMinutes  = 15
	clockLayout         = "15:04"
)

var ErrInvalidDefinition = errors.New("invalid league definition")

//go:embed default_league.yaml
var defaultLeague []byte

type Definition struct {
	SlotMinutes int             `yaml:"slot_minutes"`
	Courts      []int           `yaml:"courts"`
	Sessions    []Session       `yaml:"sessions"`
	Matches     []MatchTemplate `yaml:"matches"`
	Teams       []TeamEntry     `yaml:"teams"`
	Fixtures    []Fixture       `yaml:"fixtures"`
}

type Session struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
}

// MatchTemplate describes one match slot played in every tie. Decider and
// StrictLineup are inferred from the discipline when left out.
type MatchTemplate struct {
	MatchNo      int    `yaml:"match_no"`
	Discipline   string `yaml:"discipline"`
	Decider      *bool  `yaml:"decider"`
	StrictLineup *bool  `yaml:"strict_lineup"`
}

type TeamEntry struct {
	Name    string              `yaml:"name"`
	Players map[string][]string `yaml:"players"`
	Lineups map[int]string      `yaml:"lineups"`
}

type Fixture struct {
	TieNo   int    `yaml:"tie_no"`
	Day     int    `yaml:"day"`
	Session string `yaml:"session"`
	Court   int    `yaml:"court"`
	Team1   string `yaml:"team1"`
	Team2   string `yaml:"team2"`
}

// Default returns the built-in five team league.
func Default() (*Definition, error) {
	return Parse(defaultLeague)
}

// LoadOrDefault loads path, or the built-in league when path is empty.
func LoadOrDefault(path string) (*Definition, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read league definition: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a definition. Missing fixtures are generated as
// a single round robin.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse league definition: %w", err)
	}
	if def.SlotMinutes <= 0 {
		def.SlotMinutes = defaultSlotMinutes
	}
	if len(def.Courts) == 0 {
		def.Courts = []int{1}
	}
	if len(def.Sessions) == 0 {
		def.Sessions = []Session{{Name: "morning", Start: DefaultSessionStart}}
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	if len(def.Fixtures) == 0 {
		def.Fixtures = def.generateFixtures()
	}
	if err := def.validateFixtures(); err != nil {
		return nil, err
	}
	return &def, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, args...))
}

func (d *Definition) validate() error {
	if len(d.Teams) < 2 {
		return invalidf("at least two teams are required, got %d", len(d.Teams))
	}
	seen := make(map[string]bool, len(d.Teams))
	for _, team := range d.Teams {
		key := utils.NameKey(team.Name)
		if key == "" {
			return invalidf("team name is required")
		}
		if seen[key] {
			return invalidf("team %q is listed twice", team.Name)
		}
		seen[key] = true
		for level := range team.Players {
			if !league.SetLevel(level).Valid() {
				return invalidf("team %q has unknown set level %q", team.Name, level)
			}
		}
	}

	if len(d.Matches) == 0 {
		return invalidf("at least one match template is required")
	}
	slots := make(map[int]bool, len(d.Matches))
	deciders := 0
	for _, m := range d.Matches {
		if m.MatchNo <= 0 {
			return invalidf("match_no must be positive, got %d", m.MatchNo)
		}
		if slots[m.MatchNo] {
			return invalidf("match_no %d is listed twice", m.MatchNo)
		}
		slots[m.MatchNo] = true
		if strings.TrimSpace(m.Discipline) == "" {
			return invalidf("match %d needs a discipline", m.MatchNo)
		}
		if m.IsDecider() {
			deciders++
		}
	}
	if deciders > 1 {
		return invalidf("a tie may have at most one decider, got %d", deciders)
	}

	for _, s := range d.Sessions {
		if _, err := time.Parse(clockLayout, s.Start); err != nil {
			return invalidf("session %q has start %q, want HH:MM", s.Name, s.Start)
		}
	}
	return nil
}

func (d *Definition) validateFixtures() error {
	teams := make(map[string]bool, len(d.Teams))
	for _, team := range d.Teams {
		teams[utils.NameKey(team.Name)] = true
	}
	tieNos := make(map[int]bool, len(d.Fixtures))
	for _, f := range d.Fixtures {
		if tieNos[f.TieNo] {
			return invalidf("tie_no %d is listed twice", f.TieNo)
		}
		tieNos[f.TieNo] = true
		t1, t2 := utils.NameKey(f.Team1), utils.NameKey(f.Team2)
		if !teams[t1] || !teams[t2] {
			return invalidf("tie %d references an unknown team", f.TieNo)
		}
		if t1 == t2 {
			return invalidf("tie %d pairs %q with itself", f.TieNo, f.Team1)
		}
	}
	return nil
}

// IsDecider falls back to the legacy rule: slot 13 or a discipline naming
// the decider.
func (m MatchTemplate) IsDecider() bool {
	if m.Decider != nil {
		return *m.Decider
	}
	return m.MatchNo == 13 || strings.Contains(strings.ToLower(m.Discipline), "decider")
}

// MatchTime returns the scheduled start of slot matchNo within session.
func (d *Definition) MatchTime(session string, matchNo int) string {
	start := DefaultSessionStart
	for _, s := range d.Sessions {
		if strings.EqualFold(s.Name, session) {
			start = s.Start
			break
		}
	}
	t, err := time.Parse(clockLayout, start)
	if err != nil {
		t, _ = time.Parse(clockLayout, DefaultSessionStart)
	}
	return t.Add(time.Duration((matchNo-1)*d.SlotMinutes) * time.Minute).Format(clockLayout)
}
