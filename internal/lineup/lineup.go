// Package lineup normalizes the free-text player lists entered for each side
// of a match.
package lineup

import "strings"

const Separator = " / "

var strictExemptions = []string{
	"set 3 / womens advance",
	"womens advance / women intermediate",
}

var strictMarkers = []string{" or ", "set-4", "set 4", "set-5", "set 5"}

// Parts splits raw on "/" and returns the non-empty names with inner
// whitespace collapsed.
func Parts(raw string) []string {
	var parts []string
	for _, segment := range strings.Split(raw, "/") {
		name := strings.Join(strings.Fields(segment), " ")
		if name != "" {
			parts = append(parts, name)
		}
	}
	return parts
}

func Normalize(raw string) string {
	return strings.Join(Parts(raw), Separator)
}

// RequiresStrict reports whether a match needs exactly two named players per
// side before it can be scored. A stored flag always wins over the discipline
// text.
func RequiresStrict(tieStage bool, discipline string, flag *bool) bool {
	if flag != nil {
		return *flag
	}
	if !tieStage {
		return false
	}

	d := strings.ToLower(strings.Join(strings.Fields(discipline), " "))
	for _, exempt := range strictExemptions {
		if strings.Contains(d, exempt) {
			return false
		}
	}
	for _, marker := range strictMarkers {
		if strings.Contains(d, marker) {
			return true
		}
	}
	return false
}

// ForScore returns the lineup to persist when a score is recorded, or "" when
// raw cannot satisfy the lineup rule. Strict lineups keep the first two
// distinct names.
func ForScore(raw string, strict bool) string {
	parts := Parts(raw)
	if !strict {
		return strings.Join(parts, Separator)
	}

	picked := make([]string, 0, 2)
	for _, name := range parts {
		if len(picked) > 0 && strings.EqualFold(picked[0], name) {
			continue
		}
		picked = append(picked, name)
		if len(picked) == 2 {
			return strings.Join(picked, Separator)
		}
	}
	return ""
}

// Singles reduces a lineup to its first named player.
func Singles(raw string) string {
	parts := Parts(raw)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
