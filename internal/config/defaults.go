package config

const (
	defaultDataDir         = "~/.local/share/biblioaccess/data"
	defaultUploadDir       = "~/.local/share/biblioaccess/uploads"
	defaultLogDir          = "~/.local/share/biblioaccess/logs"
	defaultSessionDir      = "~/.local/share/biblioaccess/session"
	defaultBind            = "127.0.0.1:5044"
	defaultBaseURL         = "http://127.0.0.1:5044"
	defaultTokenTTLHours   = 12
	defaultMaxUploadBytes  = 64 << 20
	defaultRequestTimeout  = 30
	defaultShutdownTimeout = 5
	defaultSeedAdminEmail  = "admin@biblioaccess.local"
	defaultSeedAdminName   = "Administrador"
	defaultOCRProcessor    = "local"
	defaultOCRTimeout      = 120
	defaultOCRPageWorkers  = 4
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			UploadDir:  defaultUploadDir,
			LogDir:     defaultLogDir,
			SessionDir: defaultSessionDir,
		},
		Server: Server{
			Bind:            defaultBind,
			BaseURL:         defaultBaseURL,
			TokenTTLHours:   defaultTokenTTLHours,
			MaxUploadBytes:  defaultMaxUploadBytes,
			RequestTimeout:  defaultRequestTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			SeedAdminEmail:  defaultSeedAdminEmail,
			SeedAdminName:   defaultSeedAdminName,
		},
		OCR: OCR{
			Processor:      defaultOCRProcessor,
			RequestTimeout: defaultOCRTimeout,
			PageWorkers:    defaultOCRPageWorkers,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			TaskCreated:    true,
			StatusChanged:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
