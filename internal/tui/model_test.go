package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo-discovery/internal/domain"
)

func sample() []domain.Discovery {
	return []domain.Discovery{
		{
			Kind: domain.KindPattern, Title: "Pattern: grace, faith", Description: "3 documents form a thematic cluster around grace.",
			Pattern: &domain.PatternDetails{RelatedDocuments: []string{"a", "b", "c"}, SharedThemes: []string{"grace", "faith"}},
		},
		{
			Kind: domain.KindGap, Title: "Under-explored topic: Eschatology", Description: "The corpus barely touches Eschatology.",
			Gap: &domain.GapDetails{ReferenceTopic: "Eschatology", MissingKeywords: []string{"parousia"}, Scriptures: []string{"Rev.21.1"}},
		},
		{
			Kind: domain.KindTrend, Title: "Rising interest in grace", Description: "grace moved from 10.0% to 60.0% of the corpus.",
			Trend: &domain.TrendDetails{Topic: "grace", Change: 500, History: []domain.TrendPoint{
				{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), SharePercent: 10},
			}},
		},
	}
}

func TestFilter(t *testing.T) {
	all := sample()
	assert.Len(t, Filter(all, ""), 3)
	assert.Len(t, Filter(all, "  GAP "), 1)
	assert.Equal(t, domain.KindTrend, Filter(all, "trend")[0].Kind)

	byWords := Filter(all, "grace corpus")
	require.Len(t, byWords, 1)
	assert.Equal(t, domain.KindTrend, byWords[0].Kind)
	assert.Empty(t, Filter(all, "anomaly"))
	assert.Empty(t, Filter(all, "angels"))
}

func TestDetailLines(t *testing.T) {
	lines := DetailLines(sample()[1])
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Eschatology")
	assert.Contains(t, joined, "parousia")
	assert.Contains(t, joined, "Rev.21.1")

	trend := strings.Join(DetailLines(sample()[2]), "\n")
	assert.Contains(t, trend, "+500.0%")
	assert.Contains(t, trend, "2024-01-01 10.00%")

	assert.Empty(t, DetailLines(domain.Discovery{Kind: domain.KindAnomaly}))
}

func TestModelNavigationAndFilter(t *testing.T) {
	m := New(sample(), "3 documents")
	assert.Equal(t, "Loading...", m.View())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)
	assert.Contains(t, m.View(), "Theological Discovery")
	assert.Contains(t, m.renderCurrent(), "Pattern: grace, faith")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	assert.Equal(t, 1, m.cursor)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(Model)
	assert.Equal(t, 2, m.cursor)

	m.input.SetValue("gap")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.Len(t, m.results, 1)
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.status, `1 discoveries match "gap"`)
	assert.Contains(t, m.renderCurrent(), "Eschatology")

	m.input.SetValue("nothing here")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.Equal(t, "No discoveries.", m.renderCurrent())
}

func TestModelQuits(t *testing.T) {
	_, cmd := New(nil, "").Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
