package version

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"github.com/vidctl/vidctl/color"
	"github.com/vidctl/vidctl/constant"
	"github.com/vidctl/vidctl/icon"
	"github.com/vidctl/vidctl/key"
	"github.com/vidctl/vidctl/style"
	"github.com/vidctl/vidctl/util"
)

// Notify prints a notice when a newer release than the running one exists.
// It stays silent when the check is disabled or fails.
func Notify(ctx context.Context) {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	version, err := Latest(ctx)
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(version, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint(fmt.Sprintf("https://github.com/%s/releases/tag/v%s", constant.Repository, version)),
	)
}
