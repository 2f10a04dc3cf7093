// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback Engine - these keys select and configure the external decoding/rendering engine.
const (
	PlayerEngine  = "player.engine"
	PlayerMPVPath = "player.mpv_path"
)

// Playback Session - these keys seed the options of every new playback session.
const (
	PlayerMixWithOthers = "player.mix_with_others"
	PlayerUserAgent     = "player.user_agent"
	PlayerDefaultVolume = "player.default_volume"
	PlayerDefaultSpeed  = "player.default_speed"
	PlayerLooping       = "player.looping"
	PlayerResume        = "player.resume"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface - these keys tune the interactive playback view.
const (
	TUISeekStep    = "tui.seek_step"
	TUIVolumeStep  = "tui.volume_step"
	TUIRefreshRate = "tui.refresh_rate"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Metrics Exposition - these keys control the optional Prometheus endpoint.
const (
	MetricsAddress = "metrics.address"
)
