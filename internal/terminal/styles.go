package terminal

import "github.com/charmbracelet/lipgloss"

// StyleConfig defines visual styles
type StyleConfig struct {
	TitleColor   lipgloss.Color
	SubtleColor  lipgloss.Color
	ErrorColor   lipgloss.Color
	SuccessColor lipgloss.Color
	WarningColor lipgloss.Color
	BorderColor  lipgloss.Color
}

// DefaultStyleConfig returns the default style configuration
func DefaultStyleConfig() *StyleConfig {
	return &StyleConfig{
		TitleColor:   lipgloss.Color("10"),  // Green
		SubtleColor:  lipgloss.Color("241"), // Grey
		ErrorColor:   lipgloss.Color("9"),   // Red
		SuccessColor: lipgloss.Color("10"),  // Green
		WarningColor: lipgloss.Color("11"),  // Yellow
		BorderColor:  lipgloss.Color("8"),   // Dark grey
	}
}

func (s *StyleConfig) title(text string) string {
	return lipgloss.NewStyle().Foreground(s.TitleColor).Bold(true).Render(text)
}

func (s *StyleConfig) subtle(text string) string {
	return lipgloss.NewStyle().Foreground(s.SubtleColor).Render(text)
}

func (s *StyleConfig) success(text string) string {
	return lipgloss.NewStyle().Foreground(s.SuccessColor).Render(text)
}

func (s *StyleConfig) failure(text string) string {
	return lipgloss.NewStyle().Foreground(s.ErrorColor).Bold(true).Render(text)
}

func (s *StyleConfig) warning(text string) string {
	return lipgloss.NewStyle().Foreground(s.WarningColor).Render(text)
}

func (s *StyleConfig) border(width int) string {
	line := make([]rune, width)
	for i := range line {
		line[i] = '─'
	}
	return lipgloss.NewStyle().Foreground(s.BorderColor).Render(string(line))
}
