package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo-discovery/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func distSnapshot(date time.Time, dist map[string]any) domain.CorpusSnapshotSummary {
	return domain.CorpusSnapshotSummary{
		SnapshotDate: date,
		Metadata:     map[string]any{domain.MetaTopicDistribution: dist},
	}
}

func newTestTrendEngine(t *testing.T, opts TrendOptions) *TrendEngine {
	t.Helper()
	opts.Clock = fixedClock
	engine, err := NewTrendEngine(opts)
	require.NoError(t, err)
	return engine
}

func TestTrendRisingTopic(t *testing.T) {
	history := []domain.CorpusSnapshotSummary{
		distSnapshot(day(3), map[string]any{"Grace": 0.9, "law": 0.1}),
		distSnapshot(day(1), map[string]any{"Grace": 0.2, "law": 0.8}),
		distSnapshot(day(2), map[string]any{"Grace": 0.5, "law": 0.5}),
	}
	opts := DefaultTrendOptions()
	opts.MinPercentChange = 5
	found := newTestTrendEngine(t, opts).Detect(history)
	require.Len(t, found, 2)

	up := found[0]
	require.NotNil(t, up.Trend)
	assert.Equal(t, "grace", up.Trend.Topic)
	assert.Equal(t, domain.TrendUp, up.Trend.Direction)
	assert.Greater(t, up.Trend.Change, 0.0)
	assert.InDelta(t, (0.9-0.35)/0.35*100, up.Trend.Change, 1e-9)
	assert.InDelta(t, 0.35, up.Trend.BaselineShare, 1e-12)
	assert.Equal(t, "Rising interest in grace", up.Title)
	assert.InDelta(t, 0.95, up.Confidence, 1e-12)
	assert.InDelta(t, 0.9, up.RelevanceScore, 1e-12)
	require.Len(t, up.Trend.History, 3)
	assert.Equal(t, day(1), up.Trend.History[0].Date)
	assert.InDelta(t, 20.0, up.Trend.History[0].SharePercent, 1e-9)
	assert.InDelta(t, 50.0, up.Trend.History[1].SharePercent, 1e-9)
	assert.InDelta(t, 90.0, up.Trend.History[2].SharePercent, 1e-9)

	down := found[1]
	assert.Equal(t, "law", down.Trend.Topic)
	assert.Equal(t, domain.TrendDown, down.Trend.Direction)
	assert.Less(t, down.Trend.Change, 0.0)
	assert.Equal(t, "Declining interest in law", down.Title)
	assertWithinCaps(t, found, 0.99, 0.99)
}

func TestTrendFallsBackToDominantThemes(t *testing.T) {
	history := []domain.CorpusSnapshotSummary{
		{SnapshotDate: day(1), DominantThemes: []string{"a", "b"}},
		{SnapshotDate: day(2), DominantThemes: []string{"a", "b", "c", "d"}},
		{SnapshotDate: day(3), DominantThemes: []string{"a"}},
	}
	found := newTestTrendEngine(t, DefaultTrendOptions()).Detect(history)
	require.Len(t, found, 4)

	topics := make([]string, len(found))
	for i, d := range found {
		topics[i] = d.Trend.Topic
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, topics)
	assert.InDelta(t, (1-0.375)/0.375*100, found[0].Trend.Change, 1e-9)
	assert.InDelta(t, -100, found[1].Trend.Change, 1e-9)
}

func TestTrendZeroBaseline(t *testing.T) {
	history := []domain.CorpusSnapshotSummary{
		distSnapshot(day(1), map[string]any{"law": 1.0}),
		distSnapshot(day(2), map[string]any{"law": 1.0}),
		distSnapshot(day(3), map[string]any{"law": 0.7, "wisdom": 0.3}),
	}
	found := newTestTrendEngine(t, DefaultTrendOptions()).Detect(history)
	require.Len(t, found, 2)
	byTopic := map[string]float64{}
	for _, d := range found {
		byTopic[d.Trend.Topic] = d.Trend.Change
	}
	assert.InDelta(t, 30.0, byTopic["wisdom"], 1e-9)
	assert.InDelta(t, -30.0, byTopic["law"], 1e-9)
}

func TestTrendThresholdAndCap(t *testing.T) {
	history := []domain.CorpusSnapshotSummary{
		distSnapshot(day(1), map[string]any{"x": 0.4, "y": 0.6}),
		distSnapshot(day(2), map[string]any{"x": 0.4, "y": 0.6}),
		distSnapshot(day(3), map[string]any{"x": 0.42, "y": 0.58}),
	}
	assert.Empty(t, newTestTrendEngine(t, DefaultTrendOptions()).Detect(history))

	opts := DefaultTrendOptions()
	opts.MinPercentChange = 1
	opts.MaxTrends = 1
	found := newTestTrendEngine(t, opts).Detect(history)
	require.Len(t, found, 1)
	assert.Equal(t, "x", found[0].Trend.Topic)
}

func TestTrendWindowAndMinimum(t *testing.T) {
	engine := newTestTrendEngine(t, DefaultTrendOptions())
	two := []domain.CorpusSnapshotSummary{
		distSnapshot(day(1), map[string]any{"x": 1.0}),
		distSnapshot(day(2), map[string]any{"y": 1.0}),
	}
	assert.Empty(t, engine.Detect(two))

	var long []domain.CorpusSnapshotSummary
	for i := 1; i <= 8; i++ {
		share := 0.5
		if i <= 2 {
			share = 0.9
		}
		long = append(long, distSnapshot(day(i), map[string]any{"x": share, "y": 1 - share}))
	}
	assert.Empty(t, engine.Detect(long))
}

func TestTrendDeterministic(t *testing.T) {
	history := []domain.CorpusSnapshotSummary{
		distSnapshot(day(1), map[string]any{"a": 0.2, "b": 0.3, "c": 0.5}),
		distSnapshot(day(2), map[string]any{"a": 0.4, "b": 0.3, "c": 0.3}),
		distSnapshot(day(3), map[string]any{"a": 0.6, "b": 0.1, "c": 0.3}),
	}
	engine := newTestTrendEngine(t, DefaultTrendOptions())
	assert.Equal(t, engine.Detect(history), engine.Detect(history))
}
