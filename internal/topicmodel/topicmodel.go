// Package topicmodel provides the default unsupervised topic model used by
// the gap engine. Texts are embedded with TF-IDF, grouped by single-pass
// leader clustering, and each group is described by its heaviest terms.
package topicmodel

import (
	"sort"

	"theo-discovery/internal/cluster"
	"theo-discovery/internal/domain"
	"theo-discovery/internal/embedding/tfidf"
)

var _ domain.TopicModel = (*Model)(nil)

// Options configures the model.
type Options struct {
	// Similarity is the minimum cosine similarity to join an existing topic.
	Similarity float64
	// MinTopicSize is the smallest group kept as a topic; smaller groups
	// become outliers.
	MinTopicSize int
	// TopN bounds the keywords reported per topic.
	TopN int
}

// DefaultOptions returns the settings used when none are given.
func DefaultOptions() Options {
	return Options{Similarity: 0.2, MinTopicSize: 2, TopN: 10}
}

// Model is a topic model fitted by FitTransform. A Model is not safe for
// concurrent fits; create one per corpus.
type Model struct {
	opts   Options
	topics [][]domain.KeywordWeight
}

// New creates an unfitted model. Zero option fields take defaults.
func New(opts Options) *Model {
	def := DefaultOptions()
	if opts.Similarity <= 0 {
		opts.Similarity = def.Similarity
	}
	if opts.MinTopicSize <= 0 {
		opts.MinTopicSize = def.MinTopicSize
	}
	if opts.TopN <= 0 {
		opts.TopN = def.TopN
	}
	return &Model{opts: opts}
}

type group struct {
	sum     []float64
	members []int
}

// FitTransform assigns a topic id to every text. Texts without usable
// tokens, and texts in groups below MinTopicSize, get domain.OutlierTopic.
func (m *Model) FitTransform(texts []string) ([]int, error) {
	m.topics = nil
	assignments := make([]int, len(texts))
	for i := range assignments {
		assignments[i] = domain.OutlierTopic
	}
	if len(texts) == 0 {
		return assignments, nil
	}

	emb := tfidf.NewEmbedder()
	if err := emb.Prepare(texts); err != nil {
		// Nothing tokenizable: every text is an outlier.
		return assignments, nil
	}
	vocab := emb.Vocabulary()

	var groups []*group
	for i, t := range texts {
		vec, err := emb.Embed(t)
		if err != nil {
			return nil, err
		}
		if isZero(vec) {
			continue
		}
		best, bestSim := -1, m.opts.Similarity
		for g, grp := range groups {
			sim := 1 - cluster.CosineDistance(vec, grp.sum)
			if sim >= bestSim && (best == -1 || sim > bestSim) {
				best, bestSim = g, sim
			}
		}
		if best == -1 {
			groups = append(groups, &group{sum: append([]float64(nil), vec...), members: []int{i}})
			continue
		}
		grp := groups[best]
		for k := range vec {
			grp.sum[k] += vec[k]
		}
		grp.members = append(grp.members, i)
	}

	for _, grp := range groups {
		if len(grp.members) < m.opts.MinTopicSize {
			continue
		}
		id := len(m.topics)
		for _, i := range grp.members {
			assignments[i] = id
		}
		m.topics = append(m.topics, topKeywords(grp, vocab, m.opts.TopN))
	}
	return assignments, nil
}

// Topic returns the keywords of a fitted topic, heaviest first.
func (m *Model) Topic(id int) []domain.KeywordWeight {
	if id < 0 || id >= len(m.topics) {
		return nil
	}
	out := make([]domain.KeywordWeight, len(m.topics[id]))
	copy(out, m.topics[id])
	return out
}

// NumTopics returns the number of fitted topics.
func (m *Model) NumTopics() int { return len(m.topics) }

func topKeywords(grp *group, vocab []string, n int) []domain.KeywordWeight {
	size := float64(len(grp.members))
	var kws []domain.KeywordWeight
	for idx, w := range grp.sum {
		if w <= 0 {
			continue
		}
		kws = append(kws, domain.KeywordWeight{Keyword: vocab[idx], Weight: w / size})
	}
	// vocab is sorted, so a stable sort keeps ties alphabetical.
	sort.SliceStable(kws, func(i, j int) bool { return kws[i].Weight > kws[j].Weight })
	if len(kws) > n {
		kws = kws[:n]
	}
	return kws
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
