package discovery

import (
	"fmt"
	"math"
	"strings"
	"time"

	"theo-discovery/internal/cluster"
	"theo-discovery/internal/domain"
	"theo-discovery/internal/logger"
	"theo-discovery/internal/text"
)

const (
	patternThemeCount    = 5
	patternVerseLimit    = 20
	snapshotVerseSample  = 20
	snapshotDominantSize = 10
)

// PatternOptions configures the pattern engine.
type PatternOptions struct {
	// Eps is the cosine distance radius of a neighbourhood.
	Eps float64 `validate:"gt=0,lte=2"`
	// MinClusterSize is the neighbourhood size (self included) of a core point.
	MinClusterSize int `validate:"gte=1"`
	Clock          Clock
}

// DefaultPatternOptions returns the stock settings.
func DefaultPatternOptions() PatternOptions {
	return PatternOptions{Eps: 0.35, MinClusterSize: 3}
}

// PatternEngine groups documents into thematic clusters and summarises the
// corpus for later trend analysis.
type PatternEngine struct {
	opts PatternOptions
	now  Clock
}

// NewPatternEngine validates opts and builds the engine.
func NewPatternEngine(opts PatternOptions) (*PatternEngine, error) {
	if err := validateOptions(domain.KindPattern, opts); err != nil {
		return nil, err
	}
	return &PatternEngine{opts: opts, now: clockOrDefault(opts.Clock)}, nil
}

// Detect clusters the documents with usable embeddings. The snapshot is
// built from the same filtered set whether or not any cluster was found.
func (e *PatternEngine) Detect(documents []domain.DocumentEmbedding) ([]domain.Discovery, domain.CorpusSnapshotSummary, error) {
	now := e.now()
	docs := domain.FilterFinite(documents)
	if len(docs) < e.opts.MinClusterSize {
		logger.Debug("[Pattern] Not enough documents to cluster", "documents", len(docs), "min", e.opts.MinClusterSize)
		return []domain.Discovery{}, buildSnapshot(docs, 0, now), nil
	}

	res, err := cluster.DBSCAN(embeddingMatrix(docs), e.opts.Eps, e.opts.MinClusterSize)
	if err != nil {
		return nil, domain.CorpusSnapshotSummary{}, fmt.Errorf("clustering documents: %w", err)
	}

	clusters := res.Clusters()
	discoveries := make([]domain.Discovery, 0, len(clusters))
	for _, members := range clusters {
		discoveries = append(discoveries, e.clusterDiscovery(docs, members, res.Core, now))
	}
	logger.Debug("[Pattern] Clustering finished", "documents", len(docs), "clusters", len(clusters))
	return discoveries, buildSnapshot(docs, len(clusters), now), nil
}

func (e *PatternEngine) clusterDiscovery(docs []domain.DocumentEmbedding, members []int, core []bool, now time.Time) domain.Discovery {
	coreCount := 0
	ids := make([]string, 0, len(members))
	titles := make([]string, 0, len(members))
	var verses []int
	themes := text.NewCounter()
	for _, i := range members {
		if core[i] {
			coreCount++
		}
		d := docs[i]
		ids = append(ids, d.DocumentID)
		titles = append(titles, d.Title)
		verses = append(verses, d.VerseIDs...)
		for _, t := range documentTopics(d) {
			themes.Add(t)
		}
	}

	size := len(members)
	coreRatio := float64(coreCount) / float64(size)
	strength := float64(size) / float64(len(docs))
	confidence := math.Min(0.95, 0.5+0.4*coreRatio+0.1*strength)
	relevance := math.Min(0.95, 0.4+0.6*strength)

	shared := themes.MostCommon(patternThemeCount)
	verseIDs := sortedUniqueInts(verses, patternVerseLimit)

	title := fmt.Sprintf("Thematic cluster of %d documents", size)
	description := fmt.Sprintf("%d documents share closely related content.", size)
	if len(shared) > 0 {
		head := shared
		if len(head) > 3 {
			head = head[:3]
		}
		title = "Pattern: " + strings.Join(head, ", ")
		description = fmt.Sprintf("%d documents form a thematic cluster around %s.", size, strings.Join(shared, ", "))
	}

	d := newDiscovery(domain.KindPattern, title, description, confidence, relevance, ids, map[string]any{
		"related_documents": ids,
		"shared_themes":     shared,
		"verse_ids":         verseIDs,
		"titles":            titles,
		"cluster_size":      size,
		"core_ratio":        coreRatio,
		"cluster_strength":  strength,
	}, now)
	d.Pattern = &domain.PatternDetails{
		RelatedDocuments: ids,
		SharedThemes:     shared,
		VerseIDs:         verseIDs,
		Titles:           titles,
		ClusterSize:      size,
		CoreRatio:        coreRatio,
		ClusterStrength:  strength,
	}
	return d
}

// documentTopics returns the normalised topics and metadata keywords of a
// document, first occurrence kept.
func documentTopics(d domain.DocumentEmbedding) []string {
	all := make([]string, 0, len(d.Topics))
	all = append(all, d.Topics...)
	all = append(all, d.Keywords()...)
	return text.NormalizeTopics(all)
}

func buildSnapshot(docs []domain.DocumentEmbedding, clusterCount int, now time.Time) domain.CorpusSnapshotSummary {
	var verses []int
	topics := text.NewCounter()
	for _, d := range docs {
		verses = append(verses, d.VerseIDs...)
		for _, t := range documentTopics(d) {
			topics.Add(t)
		}
	}
	unique := sortedUniqueInts(verses, 0)
	sample := unique
	if len(sample) > snapshotVerseSample {
		sample = sample[:snapshotVerseSample]
	}

	distribution := make(map[string]float64, topics.Len())
	if total := topics.Total(); total > 0 {
		for _, t := range topics.Keys() {
			distribution[t] = float64(topics.Count(t)) / float64(total)
		}
	}

	return domain.CorpusSnapshotSummary{
		SnapshotDate:  now,
		DocumentCount: len(docs),
		VerseCoverage: domain.VerseCoverage{
			UniqueCount: len(unique),
			Sample:      sample,
		},
		DominantThemes: topics.MostCommon(snapshotDominantSize),
		Metadata: map[string]any{
			domain.MetaPatternClusterCount: clusterCount,
			domain.MetaTopicDistribution:   distribution,
			domain.MetaUniqueTopicCount:    topics.Len(),
		},
	}
}
