package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker(t *testing.T) {
	checker := NewChecker([]string{"+1 (555) 000-1111", "020 7946 0000", "  "}, zap.NewNop())

	tests := []struct {
		caller   string
		expected bool
	}{
		{"+15550001111", true},
		{"+1-555-000-1111", true},
		{"15550001111", false},
		{"02079460000", true},
		{"+442079460000", false},
		{"", false},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.caller, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.IsTrusted(tt.caller))
		})
	}
}

func TestChecker_Empty(t *testing.T) {
	checker := NewChecker(nil, nil)
	assert.False(t, checker.IsTrusted("+15550001111"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "+15550001111", Normalize(" +1 (555) 000-1111 "))
	assert.Equal(t, "5551234", Normalize("555+1234"))
	assert.Equal(t, "", Normalize("+"))
}
