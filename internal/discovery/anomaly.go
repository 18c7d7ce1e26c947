package discovery

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/isoforest"
	"theo-discovery/internal/logger"
)

// AnomalyOptions configures the anomaly engine.
type AnomalyOptions struct {
	Contamination float64 `validate:"gt=0,lte=0.5"`
	MinDocuments  int     `validate:"gte=2"`
	MaxAnomalies  int     `validate:"gte=1"`
	NEstimators   int     `validate:"gte=1"`
	MaxSamples    int     `validate:"gte=2"`
	Seed          uint64
	Clock         Clock
}

// DefaultAnomalyOptions returns the stock settings.
func DefaultAnomalyOptions() AnomalyOptions {
	return AnomalyOptions{
		Contamination: 0.1,
		MinDocuments:  5,
		MaxAnomalies:  10,
		NEstimators:   100,
		MaxSamples:    256,
		Seed:          42,
	}
}

// AnomalyEngine flags documents whose embeddings sit apart from the rest of
// the corpus.
type AnomalyEngine struct {
	opts AnomalyOptions
	now  Clock
}

// NewAnomalyEngine validates opts and builds the engine.
func NewAnomalyEngine(opts AnomalyOptions) (*AnomalyEngine, error) {
	if err := validateOptions(domain.KindAnomaly, opts); err != nil {
		return nil, err
	}
	return &AnomalyEngine{opts: opts, now: clockOrDefault(opts.Clock)}, nil
}

type anomalyCandidate struct {
	index    int
	decision float64
	severity float64
}

// Detect scores every document with a usable embedding and returns the
// outliers, most anomalous first.
func (e *AnomalyEngine) Detect(documents []domain.DocumentEmbedding) ([]domain.Discovery, error) {
	now := e.now()
	docs := domain.FilterFinite(documents)
	if len(docs) < e.opts.MinDocuments {
		logger.Debug("[Anomaly] Not enough documents", "documents", len(docs), "min", e.opts.MinDocuments)
		return []domain.Discovery{}, nil
	}

	contamination := math.Min(0.5, math.Max(1/float64(len(docs)), e.opts.Contamination))
	x := embeddingMatrix(docs)
	forest, err := isoforest.Fit(x, isoforest.Options{
		NEstimators:   e.opts.NEstimators,
		MaxSamples:    e.opts.MaxSamples,
		Contamination: contamination,
		Seed:          e.opts.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("fitting isolation forest: %w", err)
	}

	decision := forest.DecisionFunction(x)
	labels := forest.Predict(x)

	var candidates []anomalyCandidate
	maxSeverity := 0.0
	for i, label := range labels {
		if label != -1 {
			continue
		}
		severity := -decision[i]
		candidates = append(candidates, anomalyCandidate{index: i, decision: decision[i], severity: severity})
		if severity > maxSeverity {
			maxSeverity = severity
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].decision < candidates[j].decision })
	if len(candidates) > e.opts.MaxAnomalies {
		candidates = candidates[:e.opts.MaxAnomalies]
	}
	logger.Debug("[Anomaly] Scoring finished", "documents", len(docs), "contamination", contamination, "outliers", len(candidates))

	out := make([]domain.Discovery, 0, len(candidates))
	for _, c := range candidates {
		normalised := 0.0
		if maxSeverity > 0 {
			normalised = c.severity / maxSeverity
		}
		out = append(out, anomalyDiscovery(docs[c.index], c, normalised, now))
	}
	return out, nil
}

func anomalyDiscovery(d domain.DocumentEmbedding, c anomalyCandidate, normalised float64, now time.Time) domain.Discovery {
	confidence := math.Min(0.95, 0.5+0.4*normalised)
	relevance := math.Min(0.95, 0.35+0.5*normalised)
	topics := documentTopics(d)

	name := d.Title
	if name == "" {
		name = d.DocumentID
	}
	title := "Unusual document: " + name
	description := fmt.Sprintf("%q differs markedly from the rest of the corpus.", name)
	if len(topics) > 0 {
		description = fmt.Sprintf("%q differs markedly from the rest of the corpus (topics: %s).", name, strings.Join(topics, ", "))
	}

	disc := newDiscovery(domain.KindAnomaly, title, description, confidence, relevance, []string{d.DocumentID}, map[string]any{
		"document_id":    d.DocumentID,
		"anomaly_score":  c.severity,
		"decision_score": c.decision,
		"topics":         topics,
	}, now)
	disc.Anomaly = &domain.AnomalyDetails{
		DocumentID:    d.DocumentID,
		AnomalyScore:  c.severity,
		DecisionScore: c.decision,
		Topics:        topics,
	}
	return disc
}
