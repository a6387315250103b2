// Package render formats build records for terminal output.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"versioning-backend/src/contracts"
)

// Palette holds the colors used by the build table.
type Palette struct {
	Header    lipgloss.Color
	Secondary lipgloss.Color
	Started   lipgloss.Color
	Failed    lipgloss.Color
	Published lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Header:    lipgloss.Color("#8AB4F8"),
		Secondary: lipgloss.Color("#9AA0A6"),
		Started:   lipgloss.Color("#FBBC04"),
		Failed:    lipgloss.Color("#EA4335"),
		Published: lipgloss.Color("#34A853"),
	}
}

func (p Palette) headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Header).Bold(true)
}

func (p Palette) secondaryStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Secondary)
}

// statusStyle must handle every status; unknown values render unstyled.
func (p Palette) statusStyle(status contracts.BuildStatus) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch status {
	case contracts.StatusStarted:
		return style.Foreground(p.Started)
	case contracts.StatusFailed:
		return style.Foreground(p.Failed)
	case contracts.StatusPublished:
		return style.Foreground(p.Published)
	default:
		return lipgloss.NewStyle()
	}
}
