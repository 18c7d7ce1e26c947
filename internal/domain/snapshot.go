package domain

import "time"

// Snapshot metadata keys written by the pattern engine and read by the trend engine.
const (
	MetaPatternClusterCount = "pattern_cluster_count"
	MetaTopicDistribution   = "topic_distribution"
	MetaUniqueTopicCount    = "unique_topic_count"
)

// VerseCoverage summarises the scripture references of a corpus.
type VerseCoverage struct {
	UniqueCount int   `json:"unique_count" yaml:"unique_count"`
	Sample      []int `json:"sample" yaml:"sample"`
}

// CorpusSnapshotSummary is the point-in-time aggregate of one corpus.
type CorpusSnapshotSummary struct {
	SnapshotDate   time.Time      `json:"snapshot_date" yaml:"snapshot_date"`
	DocumentCount  int            `json:"document_count" yaml:"document_count"`
	VerseCoverage  VerseCoverage  `json:"verse_coverage" yaml:"verse_coverage"`
	DominantThemes []string       `json:"dominant_themes" yaml:"dominant_themes"`
	Metadata       map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// TopicDistribution returns the explicit topic share map recorded in the
// snapshot metadata, if any. Values decoded from YAML or JSON arrive as
// map[string]any and are converted.
func (s CorpusSnapshotSummary) TopicDistribution() (map[string]float64, bool) {
	raw, ok := s.Metadata[MetaTopicDistribution]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case map[string]float64:
		return v, len(v) > 0
	case map[string]any:
		out := make(map[string]float64, len(v))
		for k, val := range v {
			switch n := val.(type) {
			case float64:
				out[k] = n
			case float32:
				out[k] = float64(n)
			case int:
				out[k] = float64(n)
			case int64:
				out[k] = float64(n)
			}
		}
		return out, len(out) > 0
	}
	return nil, false
}
