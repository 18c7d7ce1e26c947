package discovery

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/logger"
	"theo-discovery/internal/taxonomy"
	"theo-discovery/internal/text"
	"theo-discovery/internal/topicmodel"
)

// GapOptions configures the gap engine.
type GapOptions struct {
	// MinSimilarity is the keyword similarity at which a reference topic
	// counts as covered.
	MinSimilarity float64 `validate:"gt=0,lte=1"`
	MaxResults    int     `validate:"gte=1"`
	// TopicKeywords bounds the keywords read from each discovered topic.
	TopicKeywords int `validate:"gte=1"`
	Clock         Clock
}

// DefaultGapOptions returns the stock settings.
func DefaultGapOptions() GapOptions {
	return GapOptions{MinSimilarity: 0.25, MaxResults: 10, TopicKeywords: 10}
}

// TopicModelFactory returns a fresh, unfitted topic model.
type TopicModelFactory func() domain.TopicModel

// DefaultTopicModel builds the TF-IDF topic model with default options.
func DefaultTopicModel() domain.TopicModel {
	return topicmodel.New(topicmodel.DefaultOptions())
}

// GapEngine reports reference topics the corpus does not cover.
type GapEngine struct {
	opts     GapOptions
	catalog  *taxonomy.Catalog
	newModel TopicModelFactory
	now      Clock
}

// NewGapEngine validates opts and builds the engine. A nil catalog selects
// the embedded default taxonomy; a nil factory selects DefaultTopicModel.
func NewGapEngine(catalog *taxonomy.Catalog, newModel TopicModelFactory, opts GapOptions) (*GapEngine, error) {
	if err := validateOptions(domain.KindGap, opts); err != nil {
		return nil, err
	}
	if catalog == nil {
		catalog = taxonomy.Default()
	}
	if newModel == nil {
		newModel = DefaultTopicModel
	}
	return &GapEngine{opts: opts, catalog: catalog, newModel: newModel, now: clockOrDefault(opts.Clock)}, nil
}

type discoveredTopic struct {
	id       int
	keywords []string
	members  []string
}

// Detect fits a topic model over the corpus and diffs the reference
// taxonomy against the discovered topics.
func (e *GapEngine) Detect(documents []domain.DocumentEmbedding) ([]domain.Discovery, error) {
	now := e.now()
	reference, err := e.catalog.Topics()
	if err != nil {
		return nil, fmt.Errorf("loading reference taxonomy: %w", err)
	}
	if len(reference) == 0 {
		logger.Debug("[Gap] Reference taxonomy is empty")
		return []domain.Discovery{}, nil
	}

	texts, ids := documentTexts(documents)
	if len(texts) == 0 {
		logger.Debug("[Gap] No document text to model", "documents", len(documents))
		return []domain.Discovery{}, nil
	}

	model := e.newModel()
	assignments, err := model.FitTransform(texts)
	if err != nil {
		return nil, fmt.Errorf("fitting topic model: %w", err)
	}
	if len(assignments) != len(texts) {
		return nil, fmt.Errorf("topic model returned %d assignments for %d texts", len(assignments), len(texts))
	}
	topics := e.collectTopics(model, assignments, ids)
	logger.Debug("[Gap] Topic model fitted", "texts", len(texts), "topics", len(topics), "reference_topics", len(reference))

	out := []domain.Discovery{}
	for _, ref := range reference {
		if len(ref.Keywords) == 0 {
			continue
		}
		best, bestSim := -1, 0.0
		for i, t := range topics {
			if sim := keywordJaccard(ref.Keywords, t.keywords); sim > bestSim {
				best, bestSim = i, sim
			}
		}
		if bestSim >= e.opts.MinSimilarity {
			continue
		}
		var matched *discoveredTopic
		if best >= 0 {
			matched = &topics[best]
		}
		out = append(out, e.gapDiscovery(ref, matched, bestSim, now))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > e.opts.MaxResults {
		out = out[:e.opts.MaxResults]
	}
	return out, nil
}

// documentTexts prepares title plus abstract per document, falling back to
// the topic labels. Documents with no text at all are left out.
func documentTexts(documents []domain.DocumentEmbedding) ([]string, []string) {
	texts := make([]string, 0, len(documents))
	ids := make([]string, 0, len(documents))
	for _, d := range documents {
		t := strings.TrimSpace(strings.TrimSpace(d.Title) + " " + strings.TrimSpace(d.Abstract))
		if t == "" {
			t = strings.Join(d.Topics, " ")
		}
		if strings.TrimSpace(t) == "" {
			continue
		}
		texts = append(texts, t)
		ids = append(ids, d.DocumentID)
	}
	return texts, ids
}

// collectTopics lists the fitted topics in order of first assignment.
func (e *GapEngine) collectTopics(model domain.TopicModel, assignments []int, ids []string) []discoveredTopic {
	index := make(map[int]int)
	var topics []discoveredTopic
	for i, id := range assignments {
		if id == domain.OutlierTopic {
			continue
		}
		k, ok := index[id]
		if !ok {
			k = len(topics)
			index[id] = k
			topics = append(topics, discoveredTopic{id: id, keywords: topicKeywords(model.Topic(id), e.opts.TopicKeywords)})
		}
		topics[k].members = append(topics[k].members, ids[i])
	}
	return topics
}

func topicKeywords(weights []domain.KeywordWeight, n int) []string {
	words := make([]string, 0, len(weights))
	for _, kw := range weights {
		words = append(words, kw.Keyword)
	}
	words = text.NormalizeTopics(words)
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func keywordJaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	inter := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, w := range b {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := set[w]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func (e *GapEngine) gapDiscovery(ref taxonomy.Topic, matched *discoveredTopic, similarity float64, now time.Time) domain.Discovery {
	var topicWords map[string]struct{}
	related := []string{}
	if matched != nil {
		topicWords = make(map[string]struct{}, len(matched.keywords))
		for _, w := range matched.keywords {
			topicWords[w] = struct{}{}
		}
		related = append(related, matched.members...)
	}
	shared := []string{}
	missing := []string{}
	for _, kw := range ref.Keywords {
		if _, ok := topicWords[kw]; ok {
			shared = append(shared, kw)
		} else {
			missing = append(missing, kw)
		}
	}

	coverage := float64(len(shared)) / float64(len(ref.Keywords))
	intensity := 1 - coverage
	gapRatio := (e.opts.MinSimilarity - similarity) / e.opts.MinSimilarity
	confidence := clamp(0.4+0.35*intensity+0.2*gapRatio, 0.4, 0.95)
	relevance := clamp(0.3+0.45*intensity+0.2*gapRatio, 0.3, 0.9)

	title := "Under-explored topic: " + ref.Name
	description := fmt.Sprintf("The corpus barely touches %s.", ref.Name)
	if len(missing) > 0 {
		description = fmt.Sprintf("The corpus barely touches %s; missing themes include %s.", ref.Name, strings.Join(missing, ", "))
	}

	d := newDiscovery(domain.KindGap, title, description, confidence, relevance, related, map[string]any{
		"reference_topic":   ref.Name,
		"summary":           ref.Summary,
		"missing_keywords":  missing,
		"shared_keywords":   shared,
		"related_documents": related,
		"scriptures":        ref.Scriptures,
		"similarity":        similarity,
		"coverage_ratio":    coverage,
		"gap_intensity":     intensity,
	}, now)
	d.Gap = &domain.GapDetails{
		ReferenceTopic:   ref.Name,
		MissingKeywords:  missing,
		SharedKeywords:   shared,
		RelatedDocuments: related,
		Scriptures:       ref.Scriptures,
		Similarity:       similarity,
		CoverageRatio:    coverage,
		GapIntensity:     intensity,
	}
	return d
}
