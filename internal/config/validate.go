package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	if c.Drive.Device == "" {
		return errors.New("drive.device must be set")
	}
	if c.Drive.TOCTimeoutSeconds <= 0 {
		return errors.New("drive.toc_timeout must be positive")
	}
	if c.Drive.PollIntervalSeconds <= 0 {
		return errors.New("drive.poll_interval must be positive")
	}
	if c.Extraction.Binary == "" {
		return errors.New("extraction.binary must be set")
	}
	if c.Extraction.StopGraceSeconds <= 0 || c.Extraction.StopGraceSeconds > 10 {
		return fmt.Errorf("extraction.stop_grace must be between 1 and 10 seconds, got %d", c.Extraction.StopGraceSeconds)
	}
	if c.Extraction.NeverSkipRetries < 0 {
		return errors.New("extraction.never_skip_retries must not be negative")
	}
	if c.Player.InfoCacheSeconds < 0 {
		return errors.New("player.info_cache must not be negative")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
