package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env)
func colorEnabled() bool {
	if noColor {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

func render(style lipgloss.Style, s string) string {
	if !colorEnabled() {
		return s
	}
	return style.Render(s)
}

func colorGreen(s string) string  { return render(okStyle, s) }
func colorRed(s string) string    { return render(errorStyle, s) }
func colorYellow(s string) string { return render(warnStyle, s) }
func bold(s string) string        { return render(titleStyle, s) }
func faint(s string) string       { return render(dimStyle, s) }

// truncate shortens s to maxLen characters, ending with "..." when there is room
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// enabledLabel renders a mod's enabled state
func enabledLabel(enabled bool) string {
	if enabled {
		return "yes"
	}
	return "no"
}

// statusLabel summarizes a mod's validation errors
func statusLabel(mod *domain.LocalMod) string {
	if !mod.Enabled || !mod.HasErrors() {
		return colorGreen("ok")
	}
	msgs := make([]string, len(mod.Errors))
	for i, e := range mod.Errors {
		msgs[i] = e.String()
	}
	if len(mod.Errors) == 1 && mod.Errors[0].Kind == domain.Outdated {
		return colorYellow(msgs[0])
	}
	return colorRed(strings.Join(msgs, "; "))
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
