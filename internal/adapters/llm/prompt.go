// Package llm holds the prompt and response handling shared by the
// chat-model classifiers.
package llm

import (
	"errors"
	"fmt"

	"github.com/mikey/scam-call-detector/internal/utils"
)

// SystemPrompt is sent as the system message where the API supports one
const SystemPrompt = "You are a phone scam detection system. Respond only with JSON."

const promptFormat = `You are a phone scam detection system. Analyze the following transcript of a phone call and determine if the caller is attempting a scam.
Typical scams impersonate banks, government agencies or tech support, create urgency, and ask for passwords, codes, payments, gift cards or transfers.
Respond with a JSON object containing:
- is_scam: boolean (true if the call is a scam, false if not)
- score: number between 0 and 1 (higher means more likely to be a scam)
- explanation: string (brief explanation of your assessment)

Transcript:
%s

Respond only with the JSON object and nothing else.`

// ScamAnalysisResponse is the structured answer expected from the model.
// Score is a pointer so that a reply without one can be rejected.
type ScamAnalysisResponse struct {
	IsScam      bool     `json:"is_scam"`
	Score       *float64 `json:"score"`
	Explanation string   `json:"explanation"`
}

// ScoreValue returns the score, or 0 when the reply had none
func (r *ScamAnalysisResponse) ScoreValue() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// ErrMissingScore is returned when the model's JSON carries no score
var ErrMissingScore = errors.New("LLM response has no score")

// BuildPrompt formats the user prompt for a transcript
func BuildPrompt(transcript string) string {
	return fmt.Sprintf(promptFormat, transcript)
}

// ParseResponse extracts the JSON verdict from the model's answer
func ParseResponse(text string) (*ScamAnalysisResponse, error) {
	var resp ScamAnalysisResponse
	if err := utils.ExtractJSON(text, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	if resp.Score == nil {
		return nil, ErrMissingScore
	}
	return &resp, nil
}
