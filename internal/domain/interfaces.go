package domain

import "context"

// Prediction holds NLI class probabilities. They sum to roughly one.
type Prediction struct {
	Contradiction float64 `json:"contradiction"`
	Neutral       float64 `json:"neutral"`
	Entailment    float64 `json:"entailment"`
}

// Classifier scores whether hypothesis contradicts, is neutral to, or is
// entailed by premise. Implementations that cannot reach their model return
// an error wrapping ErrClassifierUnavailable.
type Classifier interface {
	Name() string
	Predict(ctx context.Context, premise, hypothesis string) (Prediction, error)
}

// KeywordWeight is one ranked term of a discovered topic.
type KeywordWeight struct {
	Keyword string
	Weight  float64
}

// OutlierTopic is the topic id assigned to texts that fit no topic.
const OutlierTopic = -1

// TopicModel is an unsupervised topic model. FitTransform assigns one topic
// id per input text (OutlierTopic for none); Topic returns the ordered
// keywords of a fitted topic.
type TopicModel interface {
	FitTransform(texts []string) ([]int, error)
	Topic(id int) []KeywordWeight
}

// SnapshotHistory persists corpus snapshots for trend analysis.
type SnapshotHistory interface {
	Append(snapshot CorpusSnapshotSummary) error
	// Recent returns up to limit snapshots, oldest first.
	Recent(limit int) ([]CorpusSnapshotSummary, error)
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}
