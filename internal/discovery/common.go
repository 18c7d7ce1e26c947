// Package discovery implements the six discovery engines. Every engine is
// a stateless value built from validated options; Detect may be called from
// any goroutine and engines may run concurrently over the same documents.
package discovery

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator"

	"theo-discovery/internal/domain"
)

var validate = validator.New()

// Clock returns the time stamped on discoveries and snapshots.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}

func validateOptions(kind domain.Kind, opts any) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("%w: %s engine: %v", domain.ErrInvalidOptions, kind, err)
	}
	return nil
}

func newDiscovery(kind domain.Kind, title, description string, confidence, relevance float64, related []string, metadata map[string]any, now time.Time) domain.Discovery {
	return domain.Discovery{
		ID:             domain.DiscoveryID(kind, title, related),
		Kind:           kind,
		Title:          title,
		Description:    description,
		Confidence:     confidence,
		RelevanceScore: relevance,
		Metadata:       metadata,
		CreatedAt:      now,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// sortedUniqueInts returns the distinct values ascending, truncated to limit
// when limit > 0.
func sortedUniqueInts(values []int, limit int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func embeddingMatrix(documents []domain.DocumentEmbedding) [][]float64 {
	m := make([][]float64, len(documents))
	for i, d := range documents {
		m[i] = d.Embedding
	}
	return m
}
