package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo-discovery/internal/config"
	"theo-discovery/internal/domain"
	"theo-discovery/internal/history"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	cfg.Pattern.MinClusterSize = 2
	return cfg
}

func testCorpus() []domain.DocumentEmbedding {
	return []domain.DocumentEmbedding{
		{DocumentID: "a", Title: "Doc a", Abstract: "Salvation is by grace alone through faith.", Topics: []string{"grace"}, VerseIDs: []int{1}, Embedding: []float64{1, 0, 0}},
		{DocumentID: "b", Title: "Doc b", Abstract: "Salvation is not by grace alone through faith.", Topics: []string{"grace"}, VerseIDs: []int{1}, Embedding: []float64{0.99, 0.05, 0}},
		{DocumentID: "c", Title: "Doc c", Topics: []string{"grace"}, VerseIDs: []int{1}, Embedding: []float64{0.98, 0.02, 0.01}},
		{DocumentID: "d", Title: "Doc d", Topics: []string{"law"}, VerseIDs: []int{2}, Embedding: []float64{0, 1, 0}},
		{DocumentID: "e", Title: "Doc e", Topics: []string{"law"}, VerseIDs: []int{3}, Embedding: []float64{0, 0.98, 0.05}},
	}
}

func seededHistory() *history.Memory {
	old := func(days int) domain.CorpusSnapshotSummary {
		return domain.CorpusSnapshotSummary{
			SnapshotDate: time.Now().UTC().AddDate(0, 0, -days),
			Metadata: map[string]any{
				domain.MetaTopicDistribution: map[string]float64{"grace": 0.1, "zeal": 0.9},
			},
		}
	}
	return history.NewMemory(old(20), old(10))
}

func TestRunCombinesEngines(t *testing.T) {
	svc, err := NewFromConfig(testConfig(t))
	require.NoError(t, err)

	mem := seededHistory()
	report, err := svc.Run(context.Background(), testCorpus(), mem)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Snapshot.DocumentCount)
	assert.Equal(t, 3, mem.Len())

	counts := report.Counts()
	assert.Equal(t, 2, counts[domain.KindPattern])
	assert.Equal(t, 1, counts[domain.KindConnection])
	assert.Equal(t, 1, counts[domain.KindContradiction])
	assert.GreaterOrEqual(t, counts[domain.KindTrend], 1)

	connection := report.ByKind(domain.KindConnection)[0]
	assert.Equal(t, []string{"a", "b", "c"}, connection.RelatedDocuments())

	rising := report.ByKind(domain.KindTrend)
	var topics []string
	for _, d := range rising {
		topics = append(topics, d.Trend.Topic)
		assert.Len(t, d.Trend.History, 3)
	}
	assert.Contains(t, topics, "grace")

	order := make(map[domain.Kind]int, len(domain.Kinds))
	for i, k := range domain.Kinds {
		order[k] = i
	}
	for i := 1; i < len(report.Discoveries); i++ {
		assert.LessOrEqual(t, order[report.Discoveries[i-1].Kind], order[report.Discoveries[i].Kind])
	}
}

func TestRunWithoutHistory(t *testing.T) {
	svc, err := NewFromConfig(testConfig(t))
	require.NoError(t, err)

	report, err := svc.Run(context.Background(), testCorpus(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.ByKind(domain.KindTrend))
	assert.NotEmpty(t, report.ByKind(domain.KindPattern))
}

func TestRunEmptyCorpus(t *testing.T) {
	svc, err := NewFromConfig(testConfig(t))
	require.NoError(t, err)

	report, err := svc.Run(context.Background(), nil, history.NewMemory())
	require.NoError(t, err)
	assert.Empty(t, report.Discoveries)
	assert.NotNil(t, report.Discoveries)
	assert.Equal(t, 0, report.Snapshot.DocumentCount)
}

func TestRunPropagatesEngineErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Taxonomy.Path = filepath.Join(t.TempDir(), "missing.yaml")
	svc, err := NewFromConfig(cfg)
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), testCorpus(), nil)
	require.ErrorIs(t, err, domain.ErrTaxonomyNotFound)
}

func TestNewFromConfigErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.NLI.Type = "oracle"
	_, err := NewFromConfig(cfg)
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.NLI.Type = "http"
	_, err = NewFromConfig(cfg)
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.Connection.MinDocuments = 1
	_, err = NewFromConfig(cfg)
	require.ErrorIs(t, err, domain.ErrInvalidOptions)
}

func TestNewFromConfigHTTPClassifier(t *testing.T) {
	cfg := testConfig(t)
	cfg.NLI.Type = "http"
	cfg.NLI.HTTP = &config.HTTPNLIConfig{URL: "http://127.0.0.1:1", TimeoutSecs: 1}
	svc, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http", svc.engines.Contradiction.Classifier().Name())

	report, err := svc.Run(context.Background(), testCorpus(), nil)
	require.NoError(t, err)
	assert.Len(t, report.ByKind(domain.KindContradiction), 1)
}
