// Package modelhttp calls a remote model server for rainfall predictions.
package modelhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
)

// Client implements the gateway model interfaces against a model server
// exposing POST /v1/models/{name}:predict.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a model server client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Predict invokes the feature-vector rainfall model.
func (c *Client) Predict(ctx context.Context, features domain.FeatureVector) (float64, error) {
	var resp predictResponse
	if err := c.call(ctx, "rainfall", featuresRequest{Features: features.Values()}, &resp); err != nil {
		return 0, err
	}
	if resp.Prediction == nil {
		return 0, fmt.Errorf("%w: rainfall model response has no prediction", domain.ErrPredictionFailed)
	}
	return *resp.Prediction, nil
}

// PredictLocationYear invokes the location+year rainfall model.
func (c *Client) PredictLocationYear(ctx context.Context, loc domain.LocationYear) (float64, error) {
	var resp predictResponse
	if err := c.call(ctx, "location", loc, &resp); err != nil {
		return 0, err
	}
	if resp.Prediction == nil {
		return 0, fmt.Errorf("%w: location model response has no prediction", domain.ErrPredictionFailed)
	}
	return *resp.Prediction, nil
}

// ClassifyLocationYear invokes the weather-condition classifier.
func (c *Client) ClassifyLocationYear(ctx context.Context, loc domain.LocationYear) (string, error) {
	var resp predictResponse
	if err := c.call(ctx, "condition", loc, &resp); err != nil {
		return "", err
	}
	return resp.Label, nil
}

// Ping checks that the model server answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: model server: %w", domain.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: model server health: status %d", domain.ErrModelUnavailable, resp.StatusCode)
	}
	return nil
}

// call posts body to the named model. 5xx responses mean the model cannot
// serve; 4xx responses mean the input was rejected.
func (c *Client) call(ctx context.Context, model string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", model, err)
	}

	u := fmt.Sprintf("%s/v1/models/%s:predict", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s model request: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		sentinel := domain.ErrPredictionFailed
		if resp.StatusCode >= http.StatusInternalServerError {
			sentinel = domain.ErrModelUnavailable
		}
		c.logger.Debug("model server error", "model", model, "status", resp.StatusCode)
		return fmt.Errorf("%w: %s model: status %d: %s", sentinel, model, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrPredictionFailed, model, err)
	}
	return nil
}

// Model server wire types.

type featuresRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Prediction *float64 `json:"prediction,omitempty"`
	Label      string   `json:"label,omitempty"`
}
