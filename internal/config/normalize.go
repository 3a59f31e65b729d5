package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscoder()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ControlSocket) == "" {
		c.Paths.ControlSocket = defaultControlSocket
	}
	if c.Paths.ControlSocket, err = expandPath(c.Paths.ControlSocket); err != nil {
		return fmt.Errorf("paths.control_socket: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = defaultLockPath
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.AuditDBPath) == "" {
		c.Paths.AuditDBPath = defaultAuditDBPath
	}
	if c.Paths.AuditDBPath, err = expandPath(c.Paths.AuditDBPath); err != nil {
		return fmt.Errorf("paths.audit_db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscoder() {
	c.Transcoder.Backend = strings.ToLower(strings.TrimSpace(c.Transcoder.Backend))
	switch c.Transcoder.Backend {
	case "", "sim":
		c.Transcoder.Backend = "sim"
	case "drapto":
	default:
		c.Transcoder.Backend = "sim"
	}
	c.Transcoder.DraptoBinary = strings.TrimSpace(c.Transcoder.DraptoBinary)
	if c.Transcoder.DraptoBinary == "" {
		c.Transcoder.DraptoBinary = defaultDraptoBinary
	}
	if c.Transcoder.DefaultProcessingSeconds <= 0 {
		c.Transcoder.DefaultProcessingSeconds = defaultProcessingSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotifyTimeout
	}
}
