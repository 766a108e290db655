// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different output styles
// (development vs production) for a command-line tool that is usually run by hand
// but may also be scripted.
//
// # Run Correlation
//
// Every invocation gets a run ID. The WithRunID helper attaches it to the logger so
// that console output can be correlated with the text run logs written under the
// configured log directory.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json or console
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log = logger.WithRunID(log, runID)
//	log.Info("Scanning source", zap.String("root", root))
package logger
