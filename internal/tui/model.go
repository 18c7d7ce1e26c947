package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/text"
)

// Model is the Bubble Tea model for browsing a discovery report.
type Model struct {
	all       []domain.Discovery
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.Discovery
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a browser over discoveries. summary is shown under the header.
func New(discoveries []domain.Discovery, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Filter by kind (gap, trend, ...) or words, then Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		all:      discoveries,
		results:  discoveries,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   fmt.Sprintf("%d discoveries. Up/down to browse.", len(discoveries)),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			m.results = Filter(m.all, q)
			m.cursor = 0
			m.lastQuery = q
			if q == "" {
				m.status = fmt.Sprintf("%d discoveries", len(m.results))
			} else {
				m.status = fmt.Sprintf("%d discoveries match %q", len(m.results), q)
			}
			m.viewport.SetContent(m.renderCurrent())
			m.viewport.GotoTop()
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrent())
				m.viewport.GotoTop()
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrent())
				m.viewport.GotoTop()
				return m, nil
			}
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current discovery.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Theological Discovery")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

// Filter keeps the discoveries of the named kind when query is a kind,
// otherwise those whose title or description contains every query word.
// An empty query keeps everything.
func Filter(discoveries []domain.Discovery, query string) []domain.Discovery {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return discoveries
	}
	for _, k := range domain.Kinds {
		if q == string(k) {
			var out []domain.Discovery
			for _, d := range discoveries {
				if d.Kind == k {
					out = append(out, d)
				}
			}
			return out
		}
	}
	words := text.Words(q)
	var out []domain.Discovery
	for _, d := range discoveries {
		have := make(map[string]struct{})
		for _, w := range text.Words(d.Title + " " + d.Description) {
			have[w] = struct{}{}
		}
		all := true
		for _, w := range words {
			if _, ok := have[w]; !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, d)
		}
	}
	return out
}

func (m Model) renderCurrent() string {
	if len(m.results) == 0 {
		return "No discoveries."
	}
	d := m.results[m.cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d/%d  confidence=%.2f  relevance=%.2f\n\n",
		kindStyle.Render(strings.ToUpper(string(d.Kind))), m.cursor+1, len(m.results), d.Confidence, d.RelevanceScore)
	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n\n")
	b.WriteString(highlightWords(d.Description, m.lastQuery))
	b.WriteString("\n")
	for _, line := range DetailLines(d) {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// DetailLines renders the variant payload of a discovery as text lines.
func DetailLines(d domain.Discovery) []string {
	var lines []string
	add := func(label string, value any) {
		lines = append(lines, fmt.Sprintf("%s: %v", labelStyle.Render(label), value))
	}
	switch {
	case d.Pattern != nil:
		add("documents", strings.Join(d.Pattern.RelatedDocuments, ", "))
		add("themes", strings.Join(d.Pattern.SharedThemes, ", "))
		add("verses", d.Pattern.VerseIDs)
		add("core ratio", fmt.Sprintf("%.2f", d.Pattern.CoreRatio))
	case d.Anomaly != nil:
		add("document", d.Anomaly.DocumentID)
		add("anomaly score", fmt.Sprintf("%.4f", d.Anomaly.AnomalyScore))
		add("topics", strings.Join(d.Anomaly.Topics, ", "))
	case d.Connection != nil:
		add("documents", strings.Join(d.Connection.RelatedDocuments, ", "))
		add("shared verses", d.Connection.SharedVerses)
		add("shared topics", strings.Join(d.Connection.SharedTopics, ", "))
		add("density", fmt.Sprintf("%.2f", d.Connection.Density))
	case d.Contradiction != nil:
		add("type", d.Contradiction.ContradictionType)
		add(d.Contradiction.DocumentAID, d.Contradiction.ClaimA)
		add(d.Contradiction.DocumentBID, d.Contradiction.ClaimB)
		add("score", fmt.Sprintf("%.2f", d.Contradiction.ContradictionScore))
	case d.Gap != nil:
		add("reference topic", d.Gap.ReferenceTopic)
		add("missing", strings.Join(d.Gap.MissingKeywords, ", "))
		add("shared", strings.Join(d.Gap.SharedKeywords, ", "))
		if len(d.Gap.Scriptures) > 0 {
			add("scriptures", strings.Join(d.Gap.Scriptures, ", "))
		}
	case d.Trend != nil:
		add("topic", d.Trend.Topic)
		add("change", fmt.Sprintf("%+.1f%%", d.Trend.Change))
		points := make([]string, len(d.Trend.History))
		for i, p := range d.Trend.History {
			points[i] = fmt.Sprintf("%s %.2f%%", p.Date.Format("2006-01-02"), p.SharePercent)
		}
		add("history", strings.Join(points, " | "))
	}
	return lines
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	kindStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	wordRe         = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// highlightWords emphasises every word of s that occurs in query.
func highlightWords(s, query string) string {
	q := text.TokenSet(query)
	if len(q) == 0 {
		return s
	}
	return wordRe.ReplaceAllStringFunc(s, func(w string) string {
		if _, ok := q[strings.ToLower(w)]; ok {
			return highlightStyle.Render(w)
		}
		return w
	})
}
