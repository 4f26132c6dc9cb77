// Package config loads BlueStorm server configuration from flags,
// environment variables, and an optional .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the full server configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Server   ServerConfig
	Review   ReviewConfig
	Snapshot SnapshotConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local storage settings.
type DataConfig struct {
	// BasePath is the root directory for the document store.
	// Defaults to ~/BlueStorm/data.
	BasePath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Name         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ReviewConfig holds review session defaults. Individual devices can
// override these through their stored settings record.
type ReviewConfig struct {
	// DailyNewLimit caps new cards introduced per session (default: 10).
	DailyNewLimit int
	// DailyReviewLimit caps the total session size (default: 50).
	DailyReviewLimit int
}

// SnapshotConfig holds snapshot exchange settings.
type SnapshotConfig struct {
	// InboxPath is a directory watched for dropped snapshot files.
	// Empty disables the watcher. Defaults to {data}/inbox.
	InboxPath string
	// WatchInbox enables the filesystem watcher on InboxPath.
	WatchInbox bool
}

// Load reads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for the document store")
	serverName := flag.String("server-name", "", "Display name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	newLimit := flag.String("daily-new-limit", "", "New cards per review session (default: 10)")
	reviewLimit := flag.String("daily-review-limit", "", "Total cards per review session (default: 50)")
	inboxPath := flag.String("snapshot-inbox", "", "Directory watched for snapshot files")
	watchInbox := flag.String("watch-inbox", "", "Watch the snapshot inbox directory (default: true)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: pick(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: pick(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: pick(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Name: pick(*serverName, "SERVER_NAME", "BlueStorm Server"),
			Port: pick(*serverPort, "SERVER_PORT", "8080"),
		},
		Review: ReviewConfig{
			DailyNewLimit:    pickInt(*newLimit, "DAILY_NEW_LIMIT", 10),
			DailyReviewLimit: pickInt(*reviewLimit, "DAILY_REVIEW_LIMIT", 50),
		},
		Snapshot: SnapshotConfig{
			InboxPath:  pick(*inboxPath, "SNAPSHOT_INBOX", ""),
			WatchInbox: pickBool(*watchInbox, "WATCH_INBOX", true),
		},
	}

	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"read timeout", pick(*readTimeout, "SERVER_READ_TIMEOUT", "15s"), &cfg.Server.ReadTimeout},
		{"write timeout", pick(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"), &cfg.Server.WriteTimeout},
		{"idle timeout", pick(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"), &cfg.Server.IdleTimeout},
	} {
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, d.raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandInboxPath(); err != nil {
		return nil, fmt.Errorf("invalid snapshot inbox path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Review.DailyNewLimit < 0 {
		return errors.New("daily new limit cannot be negative")
	}
	if c.Review.DailyReviewLimit < 1 {
		return errors.New("daily review limit must be at least 1")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "BlueStorm", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandInboxPath defaults the inbox to {data}/inbox.
func (c *Config) expandInboxPath() error {
	defaultPath := filepath.Join(c.Data.BasePath, "inbox")

	expanded, err := expandPath(c.Snapshot.InboxPath, defaultPath)
	if err != nil {
		return err
	}
	c.Snapshot.InboxPath = expanded
	return nil
}

// pick returns the first non-empty value from flag, env var, or default.
func pick(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// pickBool accepts "true", "1", "yes" (case-insensitive) as true.
func pickBool(flagValue, envKey string, defaultValue bool) bool {
	s := pick(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes"
}

func pickInt(flagValue, envKey string, defaultValue int) int {
	s := pick(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return defaultValue
	}
	return n
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- config file path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
