// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/taskdeck/taskdeck/internal/task"
)

// Default values.
const (
	DefaultTasksFile  = "~/.taskdeck/tasks.json"
	DefaultSchemaFile = ""
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Config holds the full configuration for taskdeck.
type Config struct {
	// Paths
	TasksFile  string `toml:"tasks_file"`
	SchemaFile string `toml:"schema_file"`

	// Behavior
	DefaultPriority string `toml:"default_priority"`

	// Logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskdeck/taskdeck.toml or OS-specific config dir)
// 3. Project config file (taskdeck.toml or .taskdeck.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalize(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.TasksFile = DefaultTasksFile
	cfg.SchemaFile = DefaultSchemaFile
	cfg.DefaultPriority = string(task.DefaultPriority)
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{"taskdeck.toml", ".taskdeck.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.taskdeck/taskdeck.toml first, then falls back to the
// OS-specific config directory.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		path := filepath.Join(home, ".taskdeck", "taskdeck.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if cfgDir := osUserConfigDir(); cfgDir != "" {
		path := filepath.Join(cfgDir, "taskdeck", "taskdeck.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKDECK_FILE"); v != "" {
		cfg.TasksFile = v
	}
	if v := os.Getenv("TASKDECK_SCHEMA"); v != "" {
		cfg.SchemaFile = v
	}
	if v := os.Getenv("TASKDECK_PRIORITY"); v != "" {
		cfg.DefaultPriority = v
	}
	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKDECK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// parseFlags registers global flags on fs and parses args into cfg.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	fs.StringVar(&cfg.TasksFile, "file", cfg.TasksFile, "Tasks file path")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "JSON Schema to validate the tasks file against")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	return fs.Parse(args)
}

// finalize validates and expands derived values.
func finalize(cfg *Config) error {
	cfg.TasksFile = expandPath(cfg.TasksFile)
	cfg.SchemaFile = expandPath(cfg.SchemaFile)

	cfg.DefaultPriority = strings.ToLower(strings.TrimSpace(cfg.DefaultPriority))
	if !task.Priority(cfg.DefaultPriority).Valid() {
		return fmt.Errorf("default_priority %q is not one of: low, medium, high", cfg.DefaultPriority)
	}
	return nil
}

// expandPath expands a leading ~/ to the user's home directory.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	if p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return home
	}
	if strings.HasPrefix(p, "~/") || (runtime.GOOS == "windows" && strings.HasPrefix(p, "~\\")) {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
