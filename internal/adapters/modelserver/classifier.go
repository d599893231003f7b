package modelserver

import (
	"context"
	"fmt"

	"github.com/mikey/scam-call-detector/internal/core"
)

// Classifier adapts Client to the Classifier interface
type Classifier struct {
	client *Client
}

// NewClassifier creates a new model server classifier
func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// Classify scores a transcript with the hosted model
func (c *Classifier) Classify(ctx context.Context, transcript string) (*core.ClassificationResult, error) {
	resp, err := c.client.Predict(ctx, transcript, core.RequestIDFromContext(ctx))
	if err != nil {
		return nil, err
	}

	model := "model-server"
	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}

	return &core.ClassificationResult{
		Score:     *resp.Score,
		ModelUsed: model,
	}, nil
}

// Healthy reports whether the model server is up with its model loaded
func (c *Classifier) Healthy(ctx context.Context) error {
	health, err := c.client.Health(ctx)
	if err != nil {
		return err
	}
	if !health.ModelLoaded {
		return fmt.Errorf("model server is up but no model is loaded")
	}
	return nil
}
