package style

import "github.com/charmbracelet/lipgloss"

// Palette used by the playback view and install hints.
var (
	Mauve    = lipgloss.Color("#cba6f7")
	Lavender = lipgloss.Color("#b4befe")
	Sky      = lipgloss.Color("#89dceb")
	Text     = lipgloss.Color("#cdd6f4")

	AccentColor    = Mauve
	SecondaryColor = Lavender

	// BufferedColor marks the cached span ahead of the playhead.
	BufferedColor = Sky
)
