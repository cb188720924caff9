// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 12

// Media Playback - these keys drive the controller policy and the mpv engine adapter.
const (
	PlayerAutoPlay      = "player.auto_play"
	PlayerAutoReplay    = "player.auto_replay"
	PlayerTimeInterval  = "player.time_interval"
	PlayerMpvPath       = "player.mpv_path"
	PlayerForceWindow   = "player.force_window"
	PlayerSocketRetries = "player.socket_retries"
)

// History Tracking - these keys configure the persistence of played resources.
const (
	HistorySave = "history.save"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the terminal output.
const (
	CliColored = "cli.colored"
)
