package terminal

import (
	"github.com/charmbracelet/glamour"
)

// Markdown renders markdown for the terminal.
type Markdown struct {
	term *glamour.TermRenderer
}

// NewMarkdown creates a markdown renderer wrapping at width.
func NewMarkdown(width int) (*Markdown, error) {
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	return &Markdown{term: term}, nil
}

// Render renders markdown, falling back to the raw text on failure.
func (m *Markdown) Render(markdown string) string {
	if m == nil || m.term == nil {
		return markdown
	}
	out, err := m.term.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
