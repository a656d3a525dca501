package sync

// Config holds configuration for the synchronization engine.
type Config struct {
	// Interval is the scheduled sync interval in minutes ("15", "30", "60")
	// or "manual" to disable the timer.
	Interval string `mapstructure:"interval" default:"30"`
	// ProxyBase overrides the built-in proxy conventions with a single custom
	// proxy base URL. Empty uses the default rotation.
	ProxyBase string `mapstructure:"proxy_base" default:""`
	// TimeoutSeconds bounds each individual HTTP attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"20"`
}
