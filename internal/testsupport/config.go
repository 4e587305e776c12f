package testsupport

import (
	"path/filepath"
	"testing"

	"biblioaccess/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.UploadDir = filepath.Join(base, "uploads")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SessionDir = filepath.Join(base, "session")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.SeedAdminEmail = "admin@test.local"
	cfgVal.Server.SeedAdminName = "Test Admin"
	cfgVal.Server.SeedAdminPass = "admin-secret"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOCRProcessor selects the OCR processor on the test config.
func WithOCRProcessor(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OCR.Processor = name
	}
}

// WithRemoteOCR points the remote OCR processor at the given endpoint.
func WithRemoteOCR(endpoint, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OCR.Processor = "remote"
		b.cfg.OCR.RemoteEndpoint = endpoint
		b.cfg.OCR.RemoteAPIKey = apiKey
	}
}

// WithTokenTTL overrides the session token lifetime in hours.
func WithTokenTTL(hours int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.TokenTTLHours = hours
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
