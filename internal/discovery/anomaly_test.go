package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo-discovery/internal/domain"
)

func anomalyCorpus() []domain.DocumentEmbedding {
	return []domain.DocumentEmbedding{
		doc("n1", []float64{0.01, 0.02}, "psalms"),
		doc("n2", []float64{-0.02, 0.01}, "psalms"),
		doc("n3", []float64{0.0, -0.01}, "wisdom"),
		doc("far", []float64{5, 5}, "apocalyptic", "Numerology"),
		doc("n4", []float64{0.015, -0.005}, "wisdom"),
		doc("n5", []float64{-0.01, -0.02}, "psalms"),
	}
}

func newTestAnomalyEngine(t *testing.T) *AnomalyEngine {
	t.Helper()
	opts := DefaultAnomalyOptions()
	opts.Clock = fixedClock
	engine, err := NewAnomalyEngine(opts)
	require.NoError(t, err)
	return engine
}

func TestAnomalyFlagsFarOutlier(t *testing.T) {
	found, err := newTestAnomalyEngine(t).Detect(anomalyCorpus())
	require.NoError(t, err)
	require.NotEmpty(t, found)

	top := found[0]
	assert.Equal(t, domain.KindAnomaly, top.Kind)
	require.NotNil(t, top.Anomaly)
	assert.Equal(t, "far", top.Anomaly.DocumentID)
	assert.Greater(t, top.Anomaly.AnomalyScore, 0.0)
	assert.Less(t, top.Anomaly.DecisionScore, 0.0)
	assert.Equal(t, []string{"apocalyptic", "numerology"}, top.Anomaly.Topics)
	assert.InDelta(t, 0.9, top.Confidence, 1e-12)
	assert.InDelta(t, 0.85, top.RelevanceScore, 1e-12)
	assert.Equal(t, []string{"far"}, top.RelatedDocuments())
	assertWithinCaps(t, found, 0.95, 0.95)
}

func TestAnomalyOrderedBySeverity(t *testing.T) {
	found, err := newTestAnomalyEngine(t).Detect(anomalyCorpus())
	require.NoError(t, err)
	for i := 1; i < len(found); i++ {
		assert.LessOrEqual(t, found[i-1].Anomaly.DecisionScore, found[i].Anomaly.DecisionScore)
	}
}

func TestAnomalyNeedsMinDocuments(t *testing.T) {
	found, err := newTestAnomalyEngine(t).Detect(anomalyCorpus()[:4])
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestAnomalyRespectsCap(t *testing.T) {
	opts := DefaultAnomalyOptions()
	opts.Contamination = 0.5
	opts.MaxAnomalies = 1
	engine, err := NewAnomalyEngine(opts)
	require.NoError(t, err)

	found, err := engine.Detect(anomalyCorpus())
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestAnomalyDeterministic(t *testing.T) {
	engine := newTestAnomalyEngine(t)
	first, err := engine.Detect(anomalyCorpus())
	require.NoError(t, err)
	second, err := engine.Detect(anomalyCorpus())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
