package core

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVerdict(t *testing.T) {
	tests := []struct {
		name               string
		score              float64
		expectedScam       bool
		expectedConfidence float64
	}{
		{name: "clear scam", score: 0.8, expectedScam: true, expectedConfidence: 80},
		{name: "threshold itself is not a scam", score: 0.6, expectedScam: false, expectedConfidence: 40},
		{name: "just above threshold", score: 0.61, expectedScam: true, expectedConfidence: 61},
		{name: "clearly legitimate", score: 0.2, expectedScam: false, expectedConfidence: 80},
		{name: "zero score", score: 0, expectedScam: false, expectedConfidence: 100},
		{name: "certain scam", score: 1, expectedScam: true, expectedConfidence: 100},
		{name: "rounds to two decimals", score: 0.123456, expectedScam: false, expectedConfidence: 87.65},
		{name: "negative score is clamped", score: -3, expectedScam: false, expectedConfidence: 100},
		{name: "score above one is clamped", score: 7, expectedScam: true, expectedConfidence: 100},
		{name: "NaN counts as zero", score: math.NaN(), expectedScam: false, expectedConfidence: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isScam, confidence := NewVerdict(tt.score, DefaultThreshold)

			assert.Equal(t, tt.expectedScam, isScam)
			assert.InDelta(t, tt.expectedConfidence, confidence, 1e-9)
		})
	}
}

func TestNewVerdict_ConfidenceAlwaysInRange(t *testing.T) {
	for i := -10; i <= 110; i++ {
		score := float64(i) / 100
		_, confidence := NewVerdict(score, DefaultThreshold)
		assert.GreaterOrEqual(t, confidence, 0.0)
		assert.LessOrEqual(t, confidence, 100.0)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("Please  verify your\tBank account")
	b := Fingerprint("please verify your bank account")
	c := Fingerprint("please verify your bank")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestRequestIDContext(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}
