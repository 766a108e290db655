// Package config provides configuration management for photo-reconciler.
//
// It utilizes Viper for loading configuration from environment variables, an optional
// .env file, and an optional photo-reconciler.toml file in the config directory.
// Command-line flags override whatever was loaded.
//
// # Configuration Structure
//
// The Config struct is the central repository for all settings, divided into subsections:
//   - Paths: source, destination, backup roots and the run log directory
//   - Policy: dry-run, auto-confirm and the naming rules used by reconciliation actions
//   - Timestamps: the filename pattern used by timestamp matching
//   - Metadata: which metadata backend to use and how to invoke it
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Paths.Source)
package config
