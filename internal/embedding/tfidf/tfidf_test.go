package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedderRequiresPrepare(t *testing.T) {
	_, err := NewEmbedder().Embed("grace")
	require.Error(t, err)
}

func TestEmbedderPrepareEmpty(t *testing.T) {
	require.Error(t, NewEmbedder().Prepare(nil))
	require.Error(t, NewEmbedder().Prepare([]string{"the of and"}))
}

func TestEmbedderVectors(t *testing.T) {
	e := NewEmbedder()
	vecs, err := e.EmbedAll([]string{
		"grace and faith",
		"faith and works",
		"covenant theology",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, []string{"covenant", "faith", "grace", "theology", "works"}, e.Vocabulary())
	assert.Equal(t, 5, e.Dimension())

	for _, v := range vecs {
		norm := 0.0
		for _, x := range v {
			norm += x * x
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	}
	// "faith" appears in two documents and is weighted below "grace".
	assert.Greater(t, vecs[0][2], vecs[0][1])
}

func TestEmbedderUnknownTokens(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"grace"}))

	vec, err := e.Embed("unrelated words")
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, vec)
}
