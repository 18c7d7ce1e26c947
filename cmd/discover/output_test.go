package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/service"
	"theo-discovery/internal/taxonomy"
)

func init() {
	color.NoColor = true
}

func sampleReport() *service.Report {
	return &service.Report{
		Snapshot: domain.CorpusSnapshotSummary{DocumentCount: 4, DominantThemes: []string{"grace", "faith"}},
		Discoveries: []domain.Discovery{
			{
				Kind: domain.KindPattern, Title: "Pattern: grace, faith", Description: "Three documents form a cluster.",
				Confidence: 0.95, RelevanceScore: 0.8,
				Pattern: &domain.PatternDetails{RelatedDocuments: []string{"a", "b", "c"}, SharedThemes: []string{"grace"}},
			},
			{
				Kind: domain.KindGap, Title: "Under-explored topic: Eschatology", Description: "Little coverage.",
				Confidence: 0.7, RelevanceScore: 0.6,
				Gap: &domain.GapDetails{ReferenceTopic: "Eschatology", MissingKeywords: []string{"parousia"}},
			},
		},
	}
}

func TestSummaryLine(t *testing.T) {
	line := summaryLine(sampleReport())
	assert.Equal(t, "4 documents, 2 discoveries (pattern 1, anomaly 0, connection 0, contradiction 0, gap 1, trend 0)", line)
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, sampleReport())
	out := buf.String()

	assert.Contains(t, out, "Dominant themes: grace, faith")
	assert.Contains(t, out, "PATTERN")
	assert.Contains(t, out, " 1. Pattern: grace, faith (confidence 0.95, relevance 0.80)")
	assert.Contains(t, out, "GAP")
	assert.Contains(t, out, "parousia")
	assert.NotContains(t, out, "TREND")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("PATTERN")), bytes.Index(buf.Bytes(), []byte("GAP")))

	buf.Reset()
	printReport(&buf, &service.Report{Discoveries: []domain.Discovery{}})
	assert.Contains(t, buf.String(), "No discoveries.")
}

func TestPrintTaxonomyAndHistory(t *testing.T) {
	var buf bytes.Buffer
	printTaxonomy(&buf, taxonomy.Normalize([]taxonomy.Record{
		{Name: "Eschatology", Summary: "Last things", Keywords: []string{"Resurrection", "judgment"}, Scriptures: []string{"Rev.21.1"}},
	}))
	assert.Contains(t, buf.String(), "Eschatology")
	assert.Contains(t, buf.String(), "keywords: resurrection, judgment")
	assert.Contains(t, buf.String(), "scriptures: Rev.21.1")

	buf.Reset()
	printHistory(&buf, nil)
	assert.Equal(t, "No snapshots recorded.\n", buf.String())

	buf.Reset()
	printHistory(&buf, []domain.CorpusSnapshotSummary{{
		SnapshotDate:   time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC),
		DocumentCount:  3,
		VerseCoverage:  domain.VerseCoverage{UniqueCount: 5},
		DominantThemes: []string{"grace"},
	}})
	assert.Equal(t, "2024-03-01 09:30  3 documents, 5 verses  grace\n", buf.String())
}

func TestRunAndHistoryCommands(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.yaml")
	require.NoError(t, os.WriteFile(corpusPath, []byte(`
- document_id: a
  title: Grace and faith
  abstract: Salvation is by grace alone through faith.
  topics: [grace, faith]
  verse_ids: [1, 2]
  embedding: [1.0, 0.0]
- document_id: b
  title: Faith and grace
  abstract: Salvation is not by grace alone through faith.
  topics: [grace]
  verse_ids: [1, 2]
  embedding: [0.99, 0.01]
- document_id: c
  title: The temple
  abstract: The temple was rebuilt after the exile.
  topics: [temple]
  embedding: [0.0, 1.0]
`), 0o644))
	historyFile := filepath.Join(dir, "history.yaml")
	configFile := filepath.Join(dir, "missing.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", configFile, "run", corpusPath, "--json", "--history", historyFile})
	require.NoError(t, rootCmd.Execute())

	var report service.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 3, report.Snapshot.DocumentCount)
	assert.NotEmpty(t, report.ByKind(domain.KindConnection))
	assert.FileExists(t, historyFile)

	out.Reset()
	rootCmd.SetArgs([]string{"--config", configFile, "history", "--history", historyFile})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "3 documents, 2 verses")
}
