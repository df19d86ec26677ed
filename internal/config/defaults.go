package config

const (
	defaultContainerRoot     = "/rec"
	defaultSidecarExt        = ".xml"
	defaultMetadataMode      = ModeSidecar
	defaultTimezone          = "Local"
	defaultMaxErrorLines     = 10
	defaultAPIURL            = "http://localhost:22380/api"
	defaultCheckTimeout      = 10
	defaultCreateTimeout     = 30
	defaultVerifyAttempts    = 3
	defaultVerifyDelayMillis = 1000
	defaultSettleDelayMillis = 500
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

var defaultExtensions = []string{".flv", ".mp4", ".mkv"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Scan: Scan{
			ContainerRoot: defaultContainerRoot,
			Extensions:    append([]string(nil), defaultExtensions...),
			SidecarExt:    defaultSidecarExt,
		},
		Import: Import{
			MetadataMode:  defaultMetadataMode,
			Timezone:      defaultTimezone,
			MaxErrorLines: defaultMaxErrorLines,
		},
		API: API{
			URL:               defaultAPIURL,
			CheckTimeout:      defaultCheckTimeout,
			CreateTimeout:     defaultCreateTimeout,
			VerifyAttempts:    defaultVerifyAttempts,
			VerifyDelayMillis: defaultVerifyDelayMillis,
			SettleDelayMillis: defaultSettleDelayMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
