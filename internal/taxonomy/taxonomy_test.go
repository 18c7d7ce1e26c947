package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo-discovery/internal/domain"
)

func TestNormalize(t *testing.T) {
	topics := Normalize([]Record{
		{
			Name:       "  Grace ",
			Summary:    " Unmerited favour ",
			Keywords:   []string{"Grace", " faith", "grace"},
			Tags:       []string{"FAITH", "mercy"},
			Scriptures: []string{"Eph.2.8", " Eph.2.8 "},
			References: []string{"Rom.3.24"},
		},
		{Name: "   ", Keywords: []string{"ignored"}},
	})

	require.Len(t, topics, 1)
	assert.Equal(t, Topic{
		Name:       "Grace",
		Summary:    "Unmerited favour",
		Keywords:   []string{"grace", "faith", "mercy"},
		Scriptures: []string{"Eph.2.8", "Rom.3.24"},
	}, topics[0])
}

func TestParseShapes(t *testing.T) {
	list := []byte(`
- name: Covenant
  tags: [Covenant, Promise]
  references: [Gen.15.1]
`)
	doc := []byte(`
topics:
  - name: Covenant
    keywords: [covenant, promise]
    scriptures: [Gen.15.1]
`)
	a, err := Parse(list)
	require.NoError(t, err)
	b, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, []string{"covenant", "promise"}, a[0].Keywords)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("topics: [unterminated"))
	require.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, domain.ErrTaxonomyNotFound)
}

func TestCatalogCachesUntilReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: First\n  keywords: [one]\n"), 0o644))

	c := FromFile(path)
	first, err := c.Topics()
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, os.WriteFile(path, []byte("- name: First\n- name: Second\n"), 0o644))
	cached, err := c.Topics()
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	c.Reset()
	reloaded, err := c.Topics()
	require.NoError(t, err)
	assert.Len(t, reloaded, 2)
}

func TestCatalogCountsLoads(t *testing.T) {
	calls := 0
	c := NewCatalog(func() ([]Topic, error) {
		calls++
		return []Topic{{Name: "x"}}, nil
	})
	for i := 0; i < 3; i++ {
		_, err := c.Topics()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}

func TestDefaultTaxonomy(t *testing.T) {
	topics, err := Default().Topics()
	require.NoError(t, err)
	require.NotEmpty(t, topics)
	for _, topic := range topics {
		assert.NotEmpty(t, topic.Name)
		assert.NotEmpty(t, topic.Keywords)
	}
}

func TestFromRecords(t *testing.T) {
	topics, err := FromRecords([]Record{{Name: "Trinity", Keywords: []string{"Trinity"}}}).Topics()
	require.NoError(t, err)
	assert.Equal(t, []Topic{{Name: "Trinity", Keywords: []string{"trinity"}}}, topics)
}
