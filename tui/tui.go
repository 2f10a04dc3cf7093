// Package tui provides the interactive playback view.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidctl/vidctl/event"
	"github.com/vidctl/vidctl/player"
	"github.com/vidctl/vidctl/source"
)

// Controller is the part of a playback session the view drives.
type Controller interface {
	Descriptor() source.Descriptor
	Attach(l event.Listener)
	Detach()
	State() player.State
	Volume() float64
	Position() int64
	Play() error
	Pause() error
	SetLooping(looping bool) error
	SetVolume(v float64) error
	SetPlaybackSpeed(speed float64) error
	SeekTo(ms int64) error
}

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Controller Controller
	Title      string
	Looping    bool
}

// Run shows the playback view until the user quits or ctx is done.
// The controller's listener is attached for the lifetime of the view.
func Run(ctx context.Context, options *Options) error {
	bubble := newBubble(options)
	defer bubble.stop()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
