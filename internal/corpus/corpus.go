// Package corpus loads document sets for the discovery engines from YAML or
// JSON files.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/embedding/tfidf"
)

// ErrEmptyCorpus is returned when a corpus file holds no documents.
var ErrEmptyCorpus = errors.New("corpus contains no documents")

type corpusDocument struct {
	Documents []domain.DocumentEmbedding `json:"documents" yaml:"documents"`
}

// Load reads a corpus file. JSON is chosen by the .json extension, anything
// else is parsed as YAML. A bare list of documents and a document with a
// top-level "documents" list are both accepted.
func Load(path string) ([]domain.DocumentEmbedding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []domain.DocumentEmbedding
	if strings.EqualFold(filepath.Ext(path), ".json") {
		docs, err = parseJSON(data)
	} else {
		docs, err = parseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, path)
	}
	if err := validate(docs); err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return docs, nil
}

func parseYAML(data []byte) ([]domain.DocumentEmbedding, error) {
	var docs []domain.DocumentEmbedding
	if err := yaml.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}
	var wrapped corpusDocument
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Documents, nil
}

func parseJSON(data []byte) ([]domain.DocumentEmbedding, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var docs []domain.DocumentEmbedding
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
	var wrapped corpusDocument
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Documents, nil
}

func validate(docs []domain.DocumentEmbedding) error {
	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if strings.TrimSpace(d.DocumentID) == "" {
			return fmt.Errorf("document %d has no document_id", i)
		}
		if _, ok := seen[d.DocumentID]; ok {
			return fmt.Errorf("duplicate document_id %q", d.DocumentID)
		}
		seen[d.DocumentID] = struct{}{}
	}
	return nil
}

// Text returns the text used to embed a document: title, abstract and
// topic labels.
func Text(d domain.DocumentEmbedding) string {
	parts := make([]string, 0, 2+len(d.Topics))
	parts = append(parts, d.Title, d.Abstract)
	parts = append(parts, d.Topics...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// EmbedTFIDF returns copies of docs whose embeddings are replaced by TF-IDF
// vectors over the whole set, so that every vector shares one vocabulary.
// Documents without any token get no embedding.
func EmbedTFIDF(docs []domain.DocumentEmbedding) ([]domain.DocumentEmbedding, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = Text(d)
	}
	vectors, err := tfidf.NewEmbedder().EmbedAll(texts)
	if err != nil {
		return nil, fmt.Errorf("embedding corpus: %w", err)
	}
	out := make([]domain.DocumentEmbedding, len(docs))
	for i, d := range docs {
		out[i] = d
		out[i].Embedding = nil
		if !isZero(vectors[i]) {
			out[i].Embedding = vectors[i]
		}
	}
	return out, nil
}

// NeedsEmbedding reports whether any document lacks a usable embedding.
func NeedsEmbedding(docs []domain.DocumentEmbedding) bool {
	for _, d := range docs {
		if !d.HasFiniteEmbedding() {
			return true
		}
	}
	return false
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
