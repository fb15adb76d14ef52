package logger

// Default configuration values.
const (
	// DefaultLevel is the default logging level.
	DefaultLevel Level = InfoLevel
	// DefaultEncoding is the default log encoding format.
	DefaultEncoding = "console"
)
