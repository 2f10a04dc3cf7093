// Package color holds the terminal palette used by the CLI and the playback view.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from a string value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI palette.
var (
	Red      = New("1")
	Green    = New("2")
	Yellow   = New("3")
	Blue     = New("4")
	Purple   = New("5")
	Cyan     = New("6")
	HiRed    = New("9")
	HiPurple = New("13")
	Orange   = New("#ffb703")
)

// Banner colors.
var (
	BannerText  = New("230")
	BannerTitle = New("62")
)

// Playback status colors.
var (
	Playing   = Green
	Paused    = Orange
	Buffering = Cyan
	Completed = Purple
	Failed    = HiRed
)
