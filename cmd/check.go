package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidctl/vidctl/color"
	"github.com/vidctl/vidctl/constant"
	"github.com/vidctl/vidctl/icon"
	"github.com/vidctl/vidctl/key"
	"github.com/vidctl/vidctl/player"
	"github.com/vidctl/vidctl/style"
)

// engineFactory returns the configured engine factory, exiting with
// install instructions when its executable is missing.
func engineFactory(headless bool) player.EngineFactory {
	if engine := viper.GetString(key.PlayerEngine); engine != "mpv" {
		handleErr(fmt.Errorf("unknown engine %q, available engines: mpv", engine))
	}

	path := lo.CoalesceOrEmpty(viper.GetString(key.PlayerMPVPath), "mpv")
	if _, err := exec.LookPath(path); err != nil {
		printMissingDependencyError(path)
		os.Exit(1)
	}

	return player.MPVFactory(player.MPVOptions{Path: path, Headless: headless})
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The playback engine '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
