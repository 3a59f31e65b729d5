package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains filesystem and socket locations used by the daemon.
type Paths struct {
	LogDir        string `toml:"log_dir"`
	ControlSocket string `toml:"control_socket"`
	LockPath      string `toml:"lock_path"`
	AuditDBPath   string `toml:"audit_db_path"`
}

// Transcoder selects and configures the Transcoder backend the controller drives.
type Transcoder struct {
	// Backend is "sim" (internal/transcoder/sim) or "drapto" (internal/transcoder/drapto).
	Backend                  string `toml:"backend"`
	DraptoBinary             string `toml:"drapto_binary"`
	DefaultProcessingSeconds int    `toml:"default_processing_seconds"`
}

// UIDPolicy seeds the static foreground/background UID policy adapter.
type UIDPolicy struct {
	ForegroundUIDs []int32 `toml:"foreground_uids"`
}

// ResourcePolicy seeds the static resource-availability policy adapter.
type ResourcePolicy struct {
	InitiallyAvailable bool `toml:"initially_available"`
}

// Notifications configures ntfy push notifications for daemon-level events
// (distinct from the per-session ClientCallback, which is a direct collaborator
// handle rather than a push channel).
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	SessionFailed         bool   `toml:"session_failed"`
	QueueDrained          bool   `toml:"queue_drained"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for transcodesched.
//
// Configuration sections by subsystem:
//   - Paths: log directory, control socket, daemon lock, audit database
//   - Transcoder: which Transcoder backend to drive and how
//   - UIDPolicy: seed state for the static foreground/background UID policy
//   - ResourcePolicy: seed state for the static resource-availability policy
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths          Paths          `toml:"paths"`
	Logging        Logging        `toml:"logging"`
	Transcoder     Transcoder     `toml:"transcoder"`
	UIDPolicy      UIDPolicy      `toml:"uid_policy"`
	ResourcePolicy ResourcePolicy `toml:"resource_policy"`
	Notifications  Notifications  `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/transcodesched/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/transcodesched/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("transcodesched.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	if c.Paths.LogDir != "" {
		if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
		}
	}
	for _, path := range []string{c.Paths.ControlSocket, c.Paths.LockPath, c.Paths.AuditDBPath} {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create directory %q: %w", dir, err)
			}
		}
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
