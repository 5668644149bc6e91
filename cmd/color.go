package cmd

import "github.com/charmbracelet/lipgloss"

var (
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AF00")).Bold(true)
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	dateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CFCF"))
	silentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

func good(text string) string   { return goodStyle.Render(text) }
func bad(text string) string    { return badStyle.Render(text) }
func date(text string) string   { return dateStyle.Render(text) }
func silent(text string) string { return silentStyle.Render(text) }

func enabledText(enabled bool) string {
	if enabled {
		return good("Enabled")
	}
	return bad("Disabled")
}
