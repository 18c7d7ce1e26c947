package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo-discovery/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAMLShapes(t *testing.T) {
	list := writeFile(t, "list.yaml", `
- document_id: rom
  title: Romans
  abstract: Justification by faith
  topics: [Grace, Faith]
  verse_ids: [45003024, 45005001]
  embedding: [0.1, 0.2]
  metadata:
    keywords: [justification]
- document_id: heb
  title: Hebrews
`)
	wrapped := writeFile(t, "wrapped.yml", `
documents:
  - document_id: rom
    title: Romans
`)

	docs, err := Load(list)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "rom", docs[0].DocumentID)
	assert.Equal(t, []int{45003024, 45005001}, docs[0].VerseIDs)
	assert.Equal(t, []float64{0.1, 0.2}, docs[0].Embedding)
	assert.Equal(t, []string{"justification"}, docs[0].Keywords())

	docs, err = Load(wrapped)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Romans", docs[0].Title)
}

func TestLoadJSONShapes(t *testing.T) {
	list := writeFile(t, "list.json", `[{"document_id": "a", "title": "A", "embedding": [1, 0]}]`)
	wrapped := writeFile(t, "wrapped.JSON", `{"documents": [{"document_id": "b", "verse_ids": [1]}]}`)

	docs, err := Load(list)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, docs[0].Embedding)

	docs, err = Load(wrapped)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, docs[0].VerseIDs)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "empty.yaml", "documents: []\n"))
	require.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Load(writeFile(t, "dup.yaml", "- document_id: a\n- document_id: a\n"))
	require.ErrorContains(t, err, "duplicate")

	_, err = Load(writeFile(t, "noid.yaml", "- title: nameless\n"))
	require.ErrorContains(t, err, "no document_id")

	_, err = Load(writeFile(t, "bad.json", "{"))
	require.Error(t, err)
}

func TestEmbedTFIDF(t *testing.T) {
	docs := []domain.DocumentEmbedding{
		{DocumentID: "a", Title: "Grace and faith", Embedding: []float64{9}},
		{DocumentID: "b", Title: "Faith and works"},
		{DocumentID: "c", Title: "the and of"},
	}
	assert.True(t, NeedsEmbedding(docs))

	out, err := EmbedTFIDF(docs)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Len(t, out[0].Embedding, 3)
	assert.Len(t, out[1].Embedding, 3)
	assert.Nil(t, out[2].Embedding)
	assert.Equal(t, []float64{9}, docs[0].Embedding)
	assert.False(t, NeedsEmbedding(out[:2]))
}

func TestText(t *testing.T) {
	d := domain.DocumentEmbedding{Title: "Romans", Abstract: "On grace", Topics: []string{"faith"}}
	assert.Equal(t, "Romans On grace faith", Text(d))
	assert.Equal(t, "", Text(domain.DocumentEmbedding{}))
}
