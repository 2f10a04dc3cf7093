//go:build !windows

package player

import (
	"os/exec"
	"syscall"
)

// sysProcAttr starts mpv in its own process group so a terminal interrupt
// reaches vidctl only; the session decides how mpv goes down.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcess kills mpv together with any helpers it spawned (ytdl hooks).
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err == nil {
		return nil
	}
	return cmd.Process.Kill()
}
