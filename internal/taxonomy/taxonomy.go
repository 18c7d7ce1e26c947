// Package taxonomy loads the curated reference topics the gap engine
// compares a corpus against.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/text"
)

//go:embed default_taxonomy.yaml
var defaultTaxonomy []byte

// Record is a raw taxonomy entry as written in files or injected by callers.
// Keywords and Tags are synonyms, as are Scriptures and References.
type Record struct {
	Name       string   `yaml:"name"`
	Summary    string   `yaml:"summary"`
	Keywords   []string `yaml:"keywords,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Scriptures []string `yaml:"scriptures,omitempty"`
	References []string `yaml:"references,omitempty"`
}

// Topic is a normalised reference topic: keywords lower-cased and
// de-duplicated, scriptures trimmed and de-duplicated.
type Topic struct {
	Name       string   `yaml:"name"`
	Summary    string   `yaml:"summary"`
	Keywords   []string `yaml:"keywords"`
	Scriptures []string `yaml:"scriptures,omitempty"`
}

// Normalize converts records into topics, dropping records without a name.
func Normalize(records []Record) []Topic {
	out := make([]Topic, 0, len(records))
	for _, r := range records {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		keywords := make([]string, 0, len(r.Keywords)+len(r.Tags))
		keywords = append(keywords, r.Keywords...)
		keywords = append(keywords, r.Tags...)
		refs := make([]string, 0, len(r.Scriptures)+len(r.References))
		refs = append(refs, r.Scriptures...)
		refs = append(refs, r.References...)
		out = append(out, Topic{
			Name:       name,
			Summary:    strings.TrimSpace(r.Summary),
			Keywords:   text.NormalizeTopics(keywords),
			Scriptures: dedupeTrimmed(refs),
		})
	}
	return out
}

func dedupeTrimmed(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Parse decodes a YAML (or JSON) taxonomy. Both a bare list and a document
// with a top-level "topics" list are accepted.
func Parse(data []byte) ([]Topic, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err == nil {
		return Normalize(records), nil
	}
	var doc struct {
		Topics []Record `yaml:"topics"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}
	return Normalize(doc.Topics), nil
}

// LoadFile reads and parses a taxonomy file.
func LoadFile(path string) ([]Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaxonomyNotFound, path)
		}
		return nil, err
	}
	return Parse(data)
}

// Catalog lazily loads a taxonomy once and serves the cached topics until
// Reset is called.
type Catalog struct {
	mu     sync.Mutex
	load   func() ([]Topic, error)
	cached []Topic
	loaded bool
}

// NewCatalog wraps an arbitrary loader.
func NewCatalog(load func() ([]Topic, error)) *Catalog {
	return &Catalog{load: load}
}

// FromRecords serves injected records.
func FromRecords(records []Record) *Catalog {
	return NewCatalog(func() ([]Topic, error) { return Normalize(records), nil })
}

// FromFile serves the taxonomy stored at path.
func FromFile(path string) *Catalog {
	return NewCatalog(func() ([]Topic, error) { return LoadFile(path) })
}

// Default serves the embedded taxonomy of core theological loci.
func Default() *Catalog {
	return NewCatalog(func() ([]Topic, error) { return Parse(defaultTaxonomy) })
}

// Topics returns the cached topics, loading them on first use. A failed
// load is not cached.
func (c *Catalog) Topics() ([]Topic, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.cached, nil
	}
	topics, err := c.load()
	if err != nil {
		return nil, err
	}
	c.cached = topics
	c.loaded = true
	return topics, nil
}

// Reset drops the cache so the next Topics call reloads.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
	c.loaded = false
}
