package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrZero(t *testing.T) {
	assert.Equal(t, "", OrZero[string](nil))
	assert.Equal(t, "Falcons", OrZero(Ptr("Falcons")))
	assert.Equal(t, 0, OrZero[int](nil))
}

func TestNames(t *testing.T) {
	tests := []struct {
		in        string
		collapsed string
		key       string
	}{
		{"  Red   Hawks ", "Red Hawks", "red hawks"},
		{"Asha\tRao", "Asha Rao", "asha rao"},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.collapsed, CollapseSpaces(tt.in))
			assert.Equal(t, tt.key, NameKey(tt.in))
		})
	}
}

func TestStringOrNil(t *testing.T) {
	assert.Nil(t, StringOrNil(" \t "))
	assert.Equal(t, "live", *StringOrNil(" live "))
}
