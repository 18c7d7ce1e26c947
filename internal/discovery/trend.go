package discovery

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/logger"
	"theo-discovery/internal/text"
)

// TrendOptions configures the trend engine.
type TrendOptions struct {
	// HistoryWindow is the number of most recent snapshots considered.
	HistoryWindow int `validate:"gte=2"`
	MinSnapshots  int `validate:"gte=2,ltefield=HistoryWindow"`
	// MinPercentChange is the absolute percent change a topic must reach.
	MinPercentChange float64 `validate:"gte=0"`
	MaxTrends        int     `validate:"gte=1"`
	Clock            Clock
}

// DefaultTrendOptions returns the stock settings.
func DefaultTrendOptions() TrendOptions {
	return TrendOptions{HistoryWindow: 6, MinSnapshots: 3, MinPercentChange: 10, MaxTrends: 10}
}

// TrendEngine compares topic shares across corpus snapshots.
type TrendEngine struct {
	opts TrendOptions
	now  Clock
}

// NewTrendEngine validates opts and builds the engine.
func NewTrendEngine(opts TrendOptions) (*TrendEngine, error) {
	if err := validateOptions(domain.KindTrend, opts); err != nil {
		return nil, err
	}
	return &TrendEngine{opts: opts, now: clockOrDefault(opts.Clock)}, nil
}

type trendCandidate struct {
	topic    string
	shares   []float64
	baseline float64
	latest   float64
	change   float64
}

// Detect sorts the snapshots by date, keeps the most recent HistoryWindow
// and reports topics whose latest share departs from the mean of the
// earlier ones.
func (e *TrendEngine) Detect(history []domain.CorpusSnapshotSummary) []domain.Discovery {
	now := e.now()
	snapshots := make([]domain.CorpusSnapshotSummary, len(history))
	copy(snapshots, history)
	sort.SliceStable(snapshots, func(i, j int) bool { return snapshots[i].SnapshotDate.Before(snapshots[j].SnapshotDate) })
	if len(snapshots) > e.opts.HistoryWindow {
		snapshots = snapshots[len(snapshots)-e.opts.HistoryWindow:]
	}
	if len(snapshots) < e.opts.MinSnapshots {
		logger.Debug("[Trend] Not enough snapshots", "snapshots", len(snapshots), "min", e.opts.MinSnapshots)
		return []domain.Discovery{}
	}

	distributions := make([]map[string]float64, len(snapshots))
	var order []string
	seen := make(map[string]struct{})
	for i, s := range snapshots {
		dist, topics := shareDistribution(s)
		distributions[i] = dist
		for _, t := range topics {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				order = append(order, t)
			}
		}
	}

	last := len(snapshots) - 1
	var candidates []trendCandidate
	for _, topic := range order {
		shares := make([]float64, len(snapshots))
		for i, dist := range distributions {
			shares[i] = dist[topic]
		}
		baseline := stat.Mean(shares[:last], nil)
		latest := shares[last]
		change := latest * 100
		if baseline != 0 {
			change = (latest - baseline) / baseline * 100
		}
		if math.Abs(change) < e.opts.MinPercentChange || change == 0 {
			continue
		}
		candidates = append(candidates, trendCandidate{topic: topic, shares: shares, baseline: baseline, latest: latest, change: change})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return math.Abs(candidates[i].change) > math.Abs(candidates[j].change)
	})
	if len(candidates) > e.opts.MaxTrends {
		candidates = candidates[:e.opts.MaxTrends]
	}
	logger.Debug("[Trend] History analysed", "snapshots", len(snapshots), "topics", len(order), "trends", len(candidates))

	out := make([]domain.Discovery, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, trendDiscovery(c, snapshots, now))
	}
	return out
}

// shareDistribution returns the normalised topic shares of a snapshot and
// its topics in a stable order. The explicit distribution metadata wins;
// otherwise the dominant themes share the corpus equally.
func shareDistribution(s domain.CorpusSnapshotSummary) (map[string]float64, []string) {
	dist := make(map[string]float64)
	var order []string
	add := func(topic string, share float64) {
		t := text.NormalizeTopic(topic)
		if t == "" || share <= 0 {
			return
		}
		if _, ok := dist[t]; !ok {
			order = append(order, t)
		}
		dist[t] += share
	}

	if explicit, ok := s.TopicDistribution(); ok {
		keys := make([]string, 0, len(explicit))
		for k := range explicit {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k, explicit[k])
		}
	} else if len(s.DominantThemes) > 0 {
		share := 1 / float64(len(s.DominantThemes))
		for _, t := range s.DominantThemes {
			add(t, share)
		}
	}

	total := 0.0
	for _, t := range order {
		total += dist[t]
	}
	if total > 0 {
		for _, t := range order {
			dist[t] /= total
		}
	}
	return dist, order
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func trendDiscovery(c trendCandidate, snapshots []domain.CorpusSnapshotSummary, now time.Time) domain.Discovery {
	magnitude := math.Min(math.Abs(c.change)/100, 1)
	confidence := math.Min(0.99, 0.55+0.4*magnitude)
	relevance := math.Min(0.99, 0.4+0.5*magnitude)

	direction := domain.TrendUp
	title := "Rising interest in " + c.topic
	if c.change < 0 {
		direction = domain.TrendDown
		title = "Declining interest in " + c.topic
	}
	description := fmt.Sprintf("%s moved from %.1f%% to %.1f%% of the corpus (%+.1f%%).", c.topic, c.baseline*100, c.latest*100, c.change)

	history := make([]domain.TrendPoint, len(snapshots))
	raw := make([]map[string]any, len(snapshots))
	for i, s := range snapshots {
		share := round2(c.shares[i] * 100)
		history[i] = domain.TrendPoint{Date: s.SnapshotDate, SharePercent: share}
		raw[i] = map[string]any{"date": s.SnapshotDate.Format(time.RFC3339), "share": share}
	}

	d := newDiscovery(domain.KindTrend, title, description, confidence, relevance, nil, map[string]any{
		"topic":          c.topic,
		"change":         c.change,
		"direction":      string(direction),
		"baseline_share": c.baseline,
		"latest_share":   c.latest,
		"history":        raw,
	}, now)
	d.Trend = &domain.TrendDetails{
		Topic:         c.topic,
		Change:        c.change,
		Direction:     direction,
		BaselineShare: c.baseline,
		LatestShare:   c.latest,
		History:       history,
	}
	return d
}
