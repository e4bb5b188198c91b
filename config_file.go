package tracklight

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML form of Config. Durations accept either a
// human-readable string ("2.5s", "250ms") or a bare number of
// milliseconds.
type fileConfig struct {
	WriteKey      string    `yaml:"writeKey"`
	Host          string    `yaml:"host"`
	Timeout       *duration `yaml:"timeout"`
	FlushAt       int       `yaml:"flushAt"`
	FlushInterval *duration `yaml:"flushInterval"`
	Enable        *bool     `yaml:"enable"`
	RetryCount    *int      `yaml:"retryCount"`
	Debug         bool      `yaml:"debug"`
}

// duration unmarshals a YAML scalar as a time.Duration.
type duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*d = duration(time.Duration(v) * time.Millisecond)
		return nil
	case float64:
		*d = duration(time.Duration(v * float64(time.Millisecond)))
		return nil
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("tracklight: invalid duration %q: %w", v, err)
		}
		*d = duration(parsed)
		return nil
	default:
		return fmt.Errorf("tracklight: invalid duration value %v", raw)
	}
}

// LoadConfigFile reads a YAML configuration file into a Config. Fields
// absent from the file keep their defaults when the Config is used to
// construct a client.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tracklight: failed to read config file: %w", err)
	}
	return parseConfig(data)
}

// parseConfig parses YAML configuration data into a Config.
func parseConfig(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("tracklight: failed to parse config: %w", err)
	}

	cfg := &Config{
		WriteKey: fc.WriteKey,
		Host:     fc.Host,
		FlushAt:  fc.FlushAt,
		Enabled:  fc.Enable,
		Debug:    fc.Debug,
	}
	if fc.Timeout != nil {
		cfg.Timeout = time.Duration(*fc.Timeout)
	}
	if fc.FlushInterval != nil {
		cfg.FlushInterval = time.Duration(*fc.FlushInterval)
		// An explicit zero in the file disables the periodic flush.
		if cfg.FlushInterval == 0 {
			cfg.FlushInterval = -1
		}
	}
	if fc.RetryCount != nil {
		cfg.RetryCount = *fc.RetryCount
		if cfg.RetryCount <= 0 {
			cfg.RetryCount = -1
		}
	}
	return cfg, nil
}
