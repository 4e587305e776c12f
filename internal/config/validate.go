package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q is not a valid host:port: %w", c.Server.Bind, err)
	}
	if err := ensurePositiveMap(map[string]int{
		"server.token_ttl_hours":  c.Server.TokenTTLHours,
		"server.request_timeout":  c.Server.RequestTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	}); err != nil {
		return err
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be positive")
	}
	return nil
}

func (c *Config) validateOCR() error {
	switch c.OCR.Processor {
	case "local":
	case "remote":
		if strings.TrimSpace(c.OCR.RemoteEndpoint) == "" {
			return errors.New("ocr.remote_endpoint must be set when ocr.processor is \"remote\"")
		}
	default:
		return fmt.Errorf("ocr.processor %q is not supported (use \"local\" or \"remote\")", c.OCR.Processor)
	}
	return ensurePositiveMap(map[string]int{
		"ocr.request_timeout": c.OCR.RequestTimeout,
		"ocr.page_workers":    c.OCR.PageWorkers,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
