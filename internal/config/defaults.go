package config

const (
	defaultConfigPath      = "~/.config/webpconv/config.toml"
	defaultEncoderBinary   = "cwebp"
	defaultOutputExtension = "webp"
	defaultWorkers         = 1
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultHistoryFile     = "history.db"
	defaultLogDirName      = "logs"

	// Encoder parameter bounds accepted by cwebp.
	MaxQuality  = 100
	MaxMethod   = 6
	MaxLossless = 9
)

// DefaultExtensions lists the source extensions converted when none are configured.
func DefaultExtensions() []string {
	return []string{"jpg", "jpeg", "png"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Encoder: Encoder{
			Binary:          defaultEncoderBinary,
			OutputExtension: defaultOutputExtension,
		},
		Batch: Batch{
			Extensions: DefaultExtensions(),
			Workers:    defaultWorkers,
		},
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			File:   true,
		},
	}
}
