package config

import (
	"fmt"
	"github.com/spf13/viper"
	"golang.hedera.com/solo-lynx/pkg/logx"
	"golang.hedera.com/solo-lynx/pkg/sampling"
	"golang.hedera.com/solo-lynx/pkg/sniff"
)

// Config holds the global configuration for the profiler host.
type Config struct {
	// Log contains logging-related configuration.
	Log *logx.LoggingConfig
	// Profile contains the measurement-engine configuration.
	Profile *ProfileConfig
	// Sniff contains the self-observation configuration.
	Sniff *sniff.Config
}

// ProfileConfig holds the configuration for the measurement engine.
type ProfileConfig struct {
	// Sampler selects the sampler kind (e.g. "itimer", "tracing").
	Sampler string
	// Timer selects the timer kind ("cpu", "thread", "fiber"); empty runs
	// without a timer.
	Timer string
	// Interval is the sampling interval (e.g. "1ms").
	Interval string
	// IgnoredCodes lists code names or glob patterns excluded from extracted
	// stacks.
	IgnoredCodes []string
}

func defaults() Config {
	return Config{
		Log: &logx.LoggingConfig{
			Level:          "Info",
			ConsoleLogging: true,
			FileLogging:    false,
		},
		Profile: &ProfileConfig{
			Sampler:  sampling.KindTracing,
			Interval: "1ms",
		},
		Sniff: &sniff.Config{},
	}
}

var config = defaults()

// Initialize loads the configuration from the specified file.
//
// Parameters:
//   - path: The path to the configuration file.
//
// Returns:
//   - An error if the configuration cannot be loaded.
func Initialize(path string) error {
	viper.Reset()
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("lynx")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	config = defaults()
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	initializeNestedStructs()

	return nil
}

// initializeNestedStructs ensures all nested structs are initialized.
func initializeNestedStructs() {
	if config.Log == nil {
		config.Log = &logx.LoggingConfig{
			Level:          logx.DefaultLevel,
			ConsoleLogging: true,
		}
	}
	if config.Profile == nil {
		config.Profile = &ProfileConfig{}
	}
	if config.Profile.Sampler == "" {
		config.Profile.Sampler = sampling.KindTracing
	}
	if config.Profile.Interval == "" {
		config.Profile.Interval = "1ms"
	}
	if config.Sniff == nil {
		config.Sniff = &sniff.Config{}
	}
}

// Get returns the loaded configuration.
//
// Returns:
//   - The global configuration.
func Get() Config {
	return config
}
