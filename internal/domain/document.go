package domain

import "math"

// DocumentEmbedding is one document of a tenant's corpus together with its
// averaged embedding. Engines treat it as read-only.
type DocumentEmbedding struct {
	DocumentID string         `json:"document_id" yaml:"document_id"`
	Title      string         `json:"title" yaml:"title"`
	Abstract   string         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Topics     []string       `json:"topics,omitempty" yaml:"topics,omitempty"`
	VerseIDs   []int          `json:"verse_ids,omitempty" yaml:"verse_ids,omitempty"`
	Embedding  []float64      `json:"embedding,omitempty" yaml:"embedding,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// HasFiniteEmbedding reports whether the document carries a non-empty vector
// whose components are all finite.
func (d DocumentEmbedding) HasFiniteEmbedding() bool {
	if len(d.Embedding) == 0 {
		return false
	}
	for _, v := range d.Embedding {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FilterFinite returns the documents with usable embeddings, in input order.
// Documents are dropped whole; vectors are never repaired.
func FilterFinite(documents []DocumentEmbedding) []DocumentEmbedding {
	out := make([]DocumentEmbedding, 0, len(documents))
	for _, d := range documents {
		if d.HasFiniteEmbedding() {
			out = append(out, d)
		}
	}
	return out
}

// Keywords returns the metadata "keywords" list when present.
func (d DocumentEmbedding) Keywords() []string {
	raw, ok := d.Metadata["keywords"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
