package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
)

// Predictor runs a monthly prediction request.
type Predictor interface {
	PredictMonthly(ctx context.Context, req domain.PredictionRequest) (domain.PredictionResult, error)
}

// PredictionTransformer implements Transformer by decoding a JSON
// PredictionRequest and handing it to a Predictor.
type PredictionTransformer struct {
	predictor Predictor
	logger    *slog.Logger
}

// NewTransformer creates a PredictionTransformer.
func NewTransformer(predictor Predictor, logger *slog.Logger) *PredictionTransformer {
	return &PredictionTransformer{
		predictor: predictor,
		logger:    logger,
	}
}

// Transform decodes msg and predicts. A request without a request_id takes
// the message key.
func (t *PredictionTransformer) Transform(ctx context.Context, msg domain.RequestMessage) (domain.PredictionResult, error) {
	var req domain.PredictionRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return domain.PredictionResult{}, fmt.Errorf("decode prediction request: %w", err)
	}
	if req.RequestID == "" {
		req.RequestID = string(msg.Key)
	}

	result, err := t.predictor.PredictMonthly(ctx, req)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("request %s: %w", req.RequestID, err)
	}
	return result, nil
}
