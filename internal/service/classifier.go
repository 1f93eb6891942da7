package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/config"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"go.uber.org/zap"
)

// Features is what the scorer sees of a customer
type Features struct {
	Age             *int    `json:"age"`
	Municipality    *string `json:"municipality"`
	EngagementScore int     `json:"engagementScore"`
}

// FeaturesOf extracts the scorer features from a person
func FeaturesOf(person *domain.Person) Features {
	return Features{
		Age:             person.Age,
		Municipality:    person.Address,
		EngagementScore: person.EngagementScore,
	}
}

// Classifier predicts whether a customer is high potential (1) or not (0)
type Classifier interface {
	Predict(ctx context.Context, features Features) (int, error)
}

// NewClassifier returns an HTTP scorer when a URL is configured and the
// engagement-score threshold rule otherwise.
func NewClassifier(cfg *config.ClassifierConfig, logger *zap.Logger) Classifier {
	if cfg.URL == "" {
		logger.Info("No classifier URL configured, using score threshold",
			zap.Int("threshold", cfg.Threshold))
		return ThresholdClassifier{Threshold: cfg.Threshold}
	}
	return NewHTTPClassifier(cfg.URL, cfg.TimeoutDuration(), logger)
}

// ThresholdClassifier predicts 1 when the engagement score reaches Threshold
type ThresholdClassifier struct {
	Threshold int
}

func (c ThresholdClassifier) Predict(_ context.Context, features Features) (int, error) {
	if features.EngagementScore >= c.Threshold {
		return 1, nil
	}
	return 0, nil
}

// HTTPClassifier calls an external model server
type HTTPClassifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewHTTPClassifier(url string, timeout time.Duration, logger *zap.Logger) *HTTPClassifier {
	return &HTTPClassifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type predictionResponse struct {
	Prediction *int `json:"prediction"`
}

// Predict POSTs the features as JSON and expects {"prediction": 0|1}
func (c *HTTPClassifier) Predict(ctx context.Context, features Features) (int, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return 0, fmt.Errorf("failed to encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Classifier returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(snippet)),
		)
		return 0, fmt.Errorf("%w: status %d", ErrClassifierUnavailable, resp.StatusCode)
	}

	var out predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: invalid response: %v", ErrClassifierUnavailable, err)
	}
	if out.Prediction == nil || (*out.Prediction != 0 && *out.Prediction != 1) {
		return 0, fmt.Errorf("%w: prediction must be 0 or 1", ErrClassifierUnavailable)
	}
	return *out.Prediction, nil
}
