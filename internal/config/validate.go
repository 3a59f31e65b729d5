package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscoder(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscoder() error {
	switch c.Transcoder.Backend {
	case "sim", "drapto":
	default:
		return fmt.Errorf("transcoder.backend must be %q or %q, got %q", "sim", "drapto", c.Transcoder.Backend)
	}
	if c.Transcoder.Backend == "drapto" && c.Transcoder.DraptoBinary == "" {
		return errors.New("transcoder.drapto_binary must be set when transcoder.backend is \"drapto\"")
	}
	if c.Transcoder.DefaultProcessingSeconds <= 0 {
		return errors.New("transcoder.default_processing_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		return errors.New("notifications.request_timeout_seconds must be positive")
	}
	return nil
}
