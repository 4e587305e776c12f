package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeOCR()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.UploadDir) == "" {
		c.Paths.UploadDir = defaultUploadDir
	}
	if c.Paths.UploadDir, err = expandPath(c.Paths.UploadDir); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SessionDir) == "" {
		c.Paths.SessionDir = defaultSessionDir
	}
	if c.Paths.SessionDir, err = expandPath(c.Paths.SessionDir); err != nil {
		return fmt.Errorf("paths.session_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Server.BaseURL == "" {
		if value, ok := os.LookupEnv("BIBLIO_API_URL"); ok {
			c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaultBaseURL
	}
	if c.Server.TokenTTLHours <= 0 {
		c.Server.TokenTTLHours = defaultTokenTTLHours
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	c.Server.SeedAdminEmail = strings.TrimSpace(c.Server.SeedAdminEmail)
	if c.Server.SeedAdminEmail == "" {
		c.Server.SeedAdminEmail = defaultSeedAdminEmail
	}
	c.Server.SeedAdminName = strings.TrimSpace(c.Server.SeedAdminName)
	if c.Server.SeedAdminName == "" {
		c.Server.SeedAdminName = defaultSeedAdminName
	}
	if c.Server.SeedAdminPass == "" {
		if value, ok := os.LookupEnv("BIBLIO_ADMIN_PASSWORD"); ok {
			c.Server.SeedAdminPass = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeOCR() {
	c.OCR.Processor = strings.ToLower(strings.TrimSpace(c.OCR.Processor))
	if c.OCR.Processor == "" {
		c.OCR.Processor = defaultOCRProcessor
	}
	c.OCR.RemoteEndpoint = strings.TrimSpace(c.OCR.RemoteEndpoint)
	c.OCR.RemoteAPIKey = strings.TrimSpace(c.OCR.RemoteAPIKey)
	if c.OCR.RemoteAPIKey == "" {
		if value, ok := os.LookupEnv("BIBLIO_OCR_API_KEY"); ok {
			c.OCR.RemoteAPIKey = strings.TrimSpace(value)
		}
	}
	if c.OCR.RequestTimeout <= 0 {
		c.OCR.RequestTimeout = defaultOCRTimeout
	}
	if c.OCR.PageWorkers <= 0 {
		c.OCR.PageWorkers = defaultOCRPageWorkers
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = 10
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
