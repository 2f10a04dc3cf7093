package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/vidctl/vidctl/color"
	"github.com/vidctl/vidctl/icon"
	"github.com/vidctl/vidctl/style"
	"github.com/vidctl/vidctl/util"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	switch b.state {
	case loadingState:
		return b.viewLoading()
	case playbackState:
		return b.viewPlayback()
	case errorState:
		return b.viewError()
	default:
		return "Unknown state"
	}
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title(b.title),
			"",
			b.spinnerC.View() + " Preparing",
		},
	)
}

func (b *statefulBubble) viewPlayback() string {
	lines := []string{
		style.Title(b.title),
		"",
		style.Truncate(b.width)(b.status()),
		"",
		b.progressC.ViewAs(b.percent()),
		style.Faint(fmt.Sprintf("%s / %s", util.FormatMillis(b.position), util.FormatMillis(b.duration))),
		"",
		b.settings(),
	}

	if b.cue != "" {
		lines = append(lines, "", icon.Get(icon.Subtitle)+" "+style.Italic(wrap.String(b.cue, b.width)))
	}

	if b.notice != "" {
		lines = append(lines, "", style.Fg(color.Yellow)(b.notice))
	}

	return b.renderLines(true, lines)
}

// status names what the session is doing right now.
func (b *statefulBubble) status() string {
	switch {
	case b.buffering:
		return fmt.Sprintf("%s %s %s (%s cached)", icon.Get(icon.Buffering), b.spinnerC.View(), style.Fg(color.Buffering)("Buffering"), util.FormatMillis(b.buffered))
	case b.completed:
		return icon.Get(icon.Ended) + " " + style.Fg(color.Completed)("Completed")
	case b.playing:
		return icon.Get(icon.Play) + " " + style.Fg(color.Playing)("Playing")
	default:
		return icon.Get(icon.Pause) + " " + style.Fg(color.Paused)("Paused")
	}
}

func (b *statefulBubble) settings() string {
	parts := []string{
		fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), int(b.volume*100+0.5)),
		fmt.Sprintf("%.2fx", b.speed),
	}

	if b.looping {
		parts = append(parts, icon.Get(icon.Loop)+" loop")
	}

	if b.videoWidth > 0 && b.videoHeight > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", b.videoWidth, b.videoHeight))
	}

	return style.Faint(strings.Join(parts, "  "))
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(b.lastError.Error())
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " Playback stopped:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
