package utils

import "strings"

func Ptr[T any](v T) *T {
	return &v
}

// OrZero dereferences v, or returns the zero value for a nil pointer.
func OrZero[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// CollapseSpaces trims s and folds every whitespace run to a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NameKey is the case-insensitive identity of a team, player or referee name.
func NameKey(s string) string {
	return strings.ToLower(CollapseSpaces(s))
}

// StringOrNil returns nil for a blank string and the collapsed string otherwise.
func StringOrNil(s string) *string {
	s = CollapseSpaces(s)
	if s == "" {
		return nil
	}
	return &s
}
