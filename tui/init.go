package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidctl/vidctl/event"
	"github.com/vidctl/vidctl/player"
)

// Init attaches the session listener and starts the refresh loop. Events
// queued before the view existed are replayed on attach.
func (b *statefulBubble) Init() tea.Cmd {
	if b.controller.State() == player.StateDisposed {
		b.raiseError(player.ErrDisposed)
		return nil
	}

	return tea.Batch(b.attach(), b.waitForEvent(), b.tick(), b.spinnerC.Tick)
}

func (b *statefulBubble) attach() tea.Cmd {
	return func() tea.Msg {
		b.controller.Attach(event.ListenerFunc(b.push))
		return nil
	}
}
