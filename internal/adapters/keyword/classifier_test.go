package keyword

import (
	"context"
	"testing"

	"github.com/mikey/scam-call-detector/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	classifier, err := NewClassifier(config.DefaultScamKeywords, 5, zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name          string
		transcript    string
		expectedScore float64
	}{
		{
			name:          "no keywords",
			transcript:    "see you at the game tonight",
			expectedScore: 0,
		},
		{
			name:          "two keywords",
			transcript:    "your bank needs you to act now, it is urgent",
			expectedScore: 0.4,
		},
		{
			name:          "saturates at one",
			transcript:    "Urgent: verify your bank account password and transfer money to claim your prize",
			expectedScore: 1,
		},
		{
			name:          "case and width insensitive",
			transcript:    "ＢＡＮＫ PASSWORD",
			expectedScore: 0.4,
		},
		{
			name:          "substring match",
			transcript:    "we updated the paycheck",
			expectedScore: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := classifier.Classify(context.Background(), tt.transcript)

			require.NoError(t, err)
			assert.InDelta(t, tt.expectedScore, result.Score, 1e-9)
			assert.Equal(t, ModelName, result.ModelUsed)
		})
	}
}

func TestClassify_Explanation(t *testing.T) {
	classifier, err := NewClassifier([]string{"gift card", "Gift Card", "irs"}, 5, zap.NewNop())
	require.NoError(t, err)

	result, err := classifier.Classify(context.Background(), "The IRS accepts gift cards")
	require.NoError(t, err)

	assert.Equal(t, "Matched keywords: gift card, irs", result.Explanation)
	assert.InDelta(t, 0.4, result.Score, 1e-9)
}

func TestNewClassifier_Invalid(t *testing.T) {
	_, err := NewClassifier([]string{"bank"}, 0, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClassifier([]string{"  "}, 5, zap.NewNop())
	assert.Error(t, err)
}
