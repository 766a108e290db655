package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" toml:"level" default:"info"`
	// Format is the encoding used for log output (console, json).
	Format string `mapstructure:"format" toml:"format" default:"console"`
}
