package discovery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/logger"
	"theo-discovery/internal/nli"
	"theo-discovery/internal/text"
)

const claimRuneLimit = 500

// contradictionTypeKeywords is checked in order; the first type with a
// keyword among the shared topics wins.
var contradictionTypeKeywords = []struct {
	kind     domain.ContradictionType
	keywords []string
}{
	{domain.ContradictionTheological, []string{
		"theology", "doctrine", "christology", "soteriology", "pneumatology", "ecclesiology",
		"eschatology", "trinity", "salvation", "grace", "atonement", "justification",
		"covenant", "sacraments", "baptism", "resurrection", "incarnation", "sin",
	}},
	{domain.ContradictionHistorical, []string{
		"history", "historical", "chronology", "dating", "date", "authorship", "council",
		"church history", "archaeology", "patristics", "reformation", "exile",
	}},
	{domain.ContradictionTextual, []string{
		"textual", "textual criticism", "manuscript", "manuscripts", "translation", "canon",
		"variant", "septuagint", "masoretic", "scribe", "codex",
	}},
}

// ContradictionOptions configures the contradiction engine.
type ContradictionOptions struct {
	// Threshold is the contradiction probability a pair must reach.
	Threshold float64 `validate:"gte=0,lte=1"`
	// MinConfidence is a second floor applied to the same probability.
	MinConfidence float64 `validate:"gte=0,lte=1"`
	MaxResults    int     `validate:"gte=1"`
	Clock         Clock
}

// DefaultContradictionOptions returns the stock settings.
func DefaultContradictionOptions() ContradictionOptions {
	return ContradictionOptions{Threshold: 0.7, MinConfidence: 0.6, MaxResults: 20}
}

// ContradictionEngine compares the claims of every pair of documents with
// an NLI classifier.
type ContradictionEngine struct {
	opts       ContradictionOptions
	classifier domain.Classifier
	fallback   *nli.RuleClassifier
	now        Clock
}

// NewContradictionEngine validates opts and builds the engine. A nil
// classifier selects the rule-based classifier.
func NewContradictionEngine(classifier domain.Classifier, opts ContradictionOptions) (*ContradictionEngine, error) {
	if err := validateOptions(domain.KindContradiction, opts); err != nil {
		return nil, err
	}
	fallback := nli.NewRuleClassifier()
	if classifier == nil {
		classifier = fallback
	}
	return &ContradictionEngine{
		opts:       opts,
		classifier: classifier,
		fallback:   fallback,
		now:        clockOrDefault(opts.Clock),
	}, nil
}

// Classifier returns the backend in use.
func (e *ContradictionEngine) Classifier() domain.Classifier { return e.classifier }

type claim struct {
	doc    domain.DocumentEmbedding
	text   string
	topics []string
}

// Detect classifies every unordered pair of claims. A classifier reporting
// ErrClassifierUnavailable is replaced by the rule-based scorer for that
// pair; any other classifier error aborts the run.
func (e *ContradictionEngine) Detect(ctx context.Context, documents []domain.DocumentEmbedding) ([]domain.Discovery, error) {
	now := e.now()
	claims := extractClaims(documents)
	if len(claims) < 2 {
		logger.Debug("[Contradiction] Not enough claims", "claims", len(claims))
		return []domain.Discovery{}, nil
	}

	type scored struct {
		a, b  int
		score float64
	}
	var flagged []scored
	fellBack := 0
	for i := 0; i < len(claims); i++ {
		for j := i + 1; j < len(claims); j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pred, err := e.classifier.Predict(ctx, claims[i].text, claims[j].text)
			if errors.Is(err, domain.ErrClassifierUnavailable) {
				fellBack++
				pred, err = e.fallback.Predict(ctx, claims[i].text, claims[j].text)
			}
			if err != nil {
				return nil, fmt.Errorf("classifying %s against %s: %w", claims[i].doc.DocumentID, claims[j].doc.DocumentID, err)
			}
			c := pred.Contradiction
			if c >= e.opts.Threshold && c >= e.opts.MinConfidence {
				flagged = append(flagged, scored{a: i, b: j, score: c})
			}
		}
	}
	if fellBack > 0 {
		logger.Warn("[Contradiction] Classifier unavailable, used rule-based scoring", "classifier", e.classifier.Name(), "pairs", fellBack)
	}

	out := make([]domain.Discovery, 0, len(flagged))
	for _, f := range flagged {
		out = append(out, contradictionDiscovery(claims[f.a], claims[f.b], f.score, now))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > e.opts.MaxResults {
		out = out[:e.opts.MaxResults]
	}
	logger.Debug("[Contradiction] Pairs classified", "claims", len(claims), "flagged", len(flagged), "reported", len(out))
	return out, nil
}

// extractClaims takes the abstract, or the title when there is none, cut to
// claimRuneLimit runes. Documents without either are skipped.
func extractClaims(documents []domain.DocumentEmbedding) []claim {
	out := make([]claim, 0, len(documents))
	for _, d := range documents {
		t := strings.TrimSpace(d.Abstract)
		if t == "" {
			t = strings.TrimSpace(d.Title)
		}
		if t == "" {
			continue
		}
		if r := []rune(t); len(r) > claimRuneLimit {
			t = string(r[:claimRuneLimit])
		}
		out = append(out, claim{doc: d, text: t, topics: documentTopics(d)})
	}
	return out
}

func contradictionDiscovery(a, b claim, score float64, now time.Time) domain.Discovery {
	shared := sharedTopics(a.topics, b.topics)
	kind := contradictionType(shared)
	confidence := math.Min(0.95, score)
	relevance := math.Min(0.95, 0.5+0.1*float64(len(shared)))

	nameA, nameB := displayName(a.doc), displayName(b.doc)
	title := fmt.Sprintf("Contradiction between %s and %s", nameA, nameB)
	description := fmt.Sprintf("%s and %s make conflicting %s claims.", nameA, nameB, kind)
	ids := []string{a.doc.DocumentID, b.doc.DocumentID}

	d := newDiscovery(domain.KindContradiction, title, description, confidence, relevance, ids, map[string]any{
		"document_a_id":       a.doc.DocumentID,
		"document_b_id":       b.doc.DocumentID,
		"claim_a":             a.text,
		"claim_b":             b.text,
		"contradiction_type":  string(kind),
		"contradiction_score": score,
		"shared_topics":       shared,
	}, now)
	d.Contradiction = &domain.ContradictionDetails{
		DocumentAID:        a.doc.DocumentID,
		DocumentBID:        b.doc.DocumentID,
		DocumentATitle:     a.doc.Title,
		DocumentBTitle:     b.doc.Title,
		ClaimA:             a.text,
		ClaimB:             b.text,
		ContradictionType:  kind,
		ContradictionScore: score,
		SharedTopics:       shared,
	}
	return d
}

// sharedTopics keeps the topics of a that also occur in b, in a's order.
func sharedTopics(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, t := range b {
		inB[t] = struct{}{}
	}
	out := []string{}
	for _, t := range a {
		if _, ok := inB[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func contradictionType(shared []string) domain.ContradictionType {
	for _, entry := range contradictionTypeKeywords {
		for _, kw := range entry.keywords {
			for _, t := range shared {
				if t == kw || containsWord(t, kw) {
					return entry.kind
				}
			}
		}
	}
	return domain.ContradictionLogical
}

func containsWord(topic, keyword string) bool {
	for _, w := range text.Words(topic) {
		if w == keyword {
			return true
		}
	}
	return false
}
