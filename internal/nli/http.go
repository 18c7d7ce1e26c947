package nli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"theo-discovery/internal/domain"
)

var _ domain.Classifier = (*HTTPClassifier)(nil)

// HTTPConfig configures a remote NLI endpoint.
type HTTPConfig struct {
	URL       string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// HTTPClassifier posts premise/hypothesis pairs to a remote NLI service.
// The service answers with the three class probabilities, either as fields
// or as a list of {label, score} objects.
type HTTPClassifier struct {
	url     string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPClassifier creates a client for cfg. The API key is optional; when
// APIKeyEnv is set the variable must be present.
func NewHTTPClassifier(cfg HTTPConfig) (*HTTPClassifier, error) {
	if cfg.URL == "" {
		return nil, errors.New("nli endpoint url is required")
	}
	var key string
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
		}
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &HTTPClassifier{
		url:     strings.TrimRight(cfg.URL, "/"),
		apiKey:  key,
		model:   cfg.Model,
		timeout: t,
		client:  &http.Client{Timeout: t},
	}, nil
}

// Name identifies the classifier.
func (c *HTTPClassifier) Name() string { return "http" }

type predictRequest struct {
	Premise    string `json:"premise"`
	Hypothesis string `json:"hypothesis"`
	Model      string `json:"model,omitempty"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type predictResponse struct {
	Contradiction *float64     `json:"contradiction"`
	Neutral       *float64     `json:"neutral"`
	Entailment    *float64     `json:"entailment"`
	Scores        []labelScore `json:"scores"`
}

// Predict classifies one pair. Transport failures and 5xx responses wrap
// domain.ErrClassifierUnavailable.
func (c *HTTPClassifier) Predict(ctx context.Context, premise, hypothesis string) (domain.Prediction, error) {
	data, err := json.Marshal(predictRequest{Premise: premise, Hypothesis: hypothesis, Model: c.model})
	if err != nil {
		return domain.Prediction{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/predict", bytes.NewReader(data))
	if err != nil {
		return domain.Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("%w: %v", domain.ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return domain.Prediction{}, fmt.Errorf("%w: nli predict failed: %s", domain.ErrClassifierUnavailable, resp.Status)
	}
	if resp.StatusCode >= 300 {
		return domain.Prediction{}, fmt.Errorf("nli predict failed: %s", resp.Status)
	}
	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Prediction{}, fmt.Errorf("decoding nli response: %w", err)
	}
	return out.prediction()
}

func (r predictResponse) prediction() (domain.Prediction, error) {
	if r.Contradiction != nil && r.Neutral != nil && r.Entailment != nil {
		return domain.Prediction{
			Contradiction: *r.Contradiction,
			Neutral:       *r.Neutral,
			Entailment:    *r.Entailment,
		}, nil
	}
	if len(r.Scores) == 0 {
		return domain.Prediction{}, errors.New("nli response carries no scores")
	}
	var p domain.Prediction
	for _, s := range r.Scores {
		switch strings.ToLower(s.Label) {
		case "contradiction":
			p.Contradiction = s.Score
		case "neutral":
			p.Neutral = s.Score
		case "entailment":
			p.Entailment = s.Score
		}
	}
	return p, nil
}
