package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"photo-reconciler/core/logger"
	"photo-reconciler/core/metadata"
	"photo-reconciler/core/reconcile"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the base name of the optional config file.
const FileName = "photo-reconciler"

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Paths holds the directory roots the pipeline operates on.
	Paths PathsConfig `mapstructure:"paths" toml:"paths"`
	// Policy holds reconciliation action settings.
	Policy reconcile.Policy `mapstructure:"policy" toml:"policy"`
	// Timestamps holds the filename pattern used for timestamp matching.
	Timestamps TimestampsConfig `mapstructure:"timestamps" toml:"timestamps"`
	// Metadata holds configuration for the metadata extractor.
	Metadata metadata.Config `mapstructure:"metadata" toml:"metadata"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log" toml:"log"`
}

// PathsConfig holds the roots used by every workflow.
type PathsConfig struct {
	// Source is the tree files are reconciled from (legacy sync location).
	Source string `mapstructure:"source" toml:"source" default:""`
	// Destination is the tree files are reconciled into (current sync client).
	Destination string `mapstructure:"destination" toml:"destination" default:""`
	// Backup is where overwritten destination files are moved before replacement.
	Backup string `mapstructure:"backup" toml:"backup" default:""`
	// LogDir is where run logs are written.
	LogDir string `mapstructure:"log_dir" toml:"log_dir" default:"."`
}

// TimestampsConfig describes the filename contract used by timestamp matching:
// an 8-digit date, underscore, 9-digit time, Suffix, then one of Extensions.
type TimestampsConfig struct {
	Suffix     string   `mapstructure:"suffix" toml:"suffix" default:"_iOS"`
	Extensions []string `mapstructure:"extensions" toml:"extensions" default:".mov"`
}

// ErrMissingPath is returned by RequirePaths when a required root is not configured.
var ErrMissingPath = errors.New("required path not configured")

// LoadConfig loads configuration from environment variables, a .env file and an
// optional photo-reconciler.toml located in path.
func LoadConfig(path string) (*Config, error) {
	envPath := filepath.Join(path, ".env")
	if path == "." || path == "" {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	v.SetConfigName(FileName)
	v.SetConfigType("toml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. PATHS_SOURCE -> paths.source)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns a Config populated only from the `default` struct tags.
func Default() *Config {
	v := viper.New()
	bindValues(v, Config{}, "")

	var config Config
	// Defaults are static strings; decoding them cannot fail.
	_ = v.Unmarshal(&config)
	return &config
}

// Init writes cfg as TOML to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// RequirePaths checks that the given roots are configured.
// Names follow the mapstructure keys: "source", "destination", "backup".
func (c *Config) RequirePaths(names ...string) error {
	for _, name := range names {
		var value string
		switch name {
		case "source":
			value = c.Paths.Source
		case "destination":
			value = c.Paths.Destination
		case "backup":
			value = c.Paths.Backup
		default:
			return fmt.Errorf("unknown path %q", name)
		}
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("paths.%s: %w", name, ErrMissingPath)
		}
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
