package config

const (
	defaultStateDir         = "~/.local/share/discd"
	defaultLogDir           = "~/.local/share/discd/logs"
	defaultAPIBind          = "127.0.0.1:7391"
	defaultDevice           = "/dev/sr0"
	defaultTOCTimeout       = 10
	defaultPollInterval     = 5
	defaultExtractionBinary = "cdparanoia"
	defaultStopGrace        = 2
	defaultNeverSkipRetries = 40
	defaultInfoCache        = 5
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Drive: Drive{
			Device:              defaultDevice,
			TOCTimeoutSeconds:   defaultTOCTimeout,
			PollIntervalSeconds: defaultPollInterval,
		},
		Extraction: Extraction{
			Binary:           defaultExtractionBinary,
			StopGraceSeconds: defaultStopGrace,
			NeverSkipRetries: defaultNeverSkipRetries,
		},
		Player: Player{
			InfoCacheSeconds: defaultInfoCache,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
