package config

import (
	"github.com/pkg/errors"
	"golang.hedera.com/solo-lynx/pkg/frames"
	"golang.hedera.com/solo-lynx/pkg/sampling"
	"golang.hedera.com/solo-lynx/pkg/sniff"
	"golang.hedera.com/solo-lynx/pkg/timers"
	"time"
)

// ValidateProfileConfig validates the measurement-engine configuration.
//
// Parameters:
//   - profileConfig: The configuration to validate.
//
// Returns:
//   - An error if any field is missing or malformed, otherwise nil.
func ValidateProfileConfig(profileConfig ProfileConfig) error {
	if profileConfig.Sampler == "" {
		return errors.New("missing Sampler in configuration")
	}

	known := false
	for _, kind := range sampling.Kinds() {
		if kind == profileConfig.Sampler {
			known = true
			break
		}
	}
	if !known {
		return errors.Errorf("unknown sampler kind %s", profileConfig.Sampler)
	}

	switch profileConfig.Timer {
	case "", timers.KindCPU, timers.KindThread, timers.KindFiber:
	default:
		return errors.Errorf("unknown timer kind %s", profileConfig.Timer)
	}

	if profileConfig.Interval != "" {
		d, err := time.ParseDuration(profileConfig.Interval)
		if err != nil {
			return errors.Wrap(err, "invalid sampling interval")
		}
		if d <= 0 {
			return errors.New("sampling interval must be positive")
		}
	}

	if _, err := frames.NewCodeSet(profileConfig.IgnoredCodes...); err != nil {
		return errors.Wrap(err, "invalid ignored code pattern")
	}

	return nil
}

// ValidateSniffConfig validates the self-observation configuration. A
// disabled sniffer passes regardless of the remaining fields.
func ValidateSniffConfig(sniffConfig sniff.Config) error {
	if !sniffConfig.Enabled {
		return nil
	}

	if sniffConfig.Interval == "" {
		return errors.New("missing Interval in configuration")
	}
	if _, err := time.ParseDuration(sniffConfig.Interval); err != nil {
		return errors.Wrap(err, "invalid sniff interval")
	}
	if sniffConfig.Directory == "" {
		return errors.New("missing Directory in configuration")
	}

	return nil
}
