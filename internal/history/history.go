// Package history stores corpus snapshots between runs so the trend engine
// can compare them.
package history

import (
	"sort"

	"theo-discovery/internal/domain"
)

// recent returns up to limit snapshots ordered oldest first. limit <= 0
// returns all of them.
func recent(snapshots []domain.CorpusSnapshotSummary, limit int) []domain.CorpusSnapshotSummary {
	out := make([]domain.CorpusSnapshotSummary, len(snapshots))
	copy(out, snapshots)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SnapshotDate.Before(out[j].SnapshotDate) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
