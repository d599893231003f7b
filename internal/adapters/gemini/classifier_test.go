package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []genai.Part{
					genai.Text(`{"is_scam": false, `),
					genai.Text(`"score": 0.1}`),
				},
			},
		}},
	}

	assert.Equal(t, `{"is_scam": false, "score": 0.1}`, responseText(resp))
}

func TestResponseText_Empty(t *testing.T) {
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}))
}
