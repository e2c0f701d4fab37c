package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"markestedt/stratagem/keys"
	"markestedt/stratagem/macro"
	"markestedt/stratagem/monitor"
)

// ErrInvalidConfig is wrapped by every configuration problem found at load
// time.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Monitor  MonitorConfig   `toml:"monitor" yaml:"monitor"`
	Player   PlayerConfig    `toml:"player" yaml:"player"`
	Input    InputConfig     `toml:"input" yaml:"input"`
	Triggers []TriggerConfig `toml:"trigger" yaml:"triggers"`
}

type MonitorConfig struct {
	PollInterval Duration `toml:"poll_interval" yaml:"poll_interval"`
	// ExitKey stops the monitor when pressed. Empty disables it.
	ExitKey string `toml:"exit_key" yaml:"exit_key"`
}

type PlayerConfig struct {
	StepDelay Duration `toml:"step_delay" yaml:"step_delay"`
}

type InputConfig struct {
	// Devices lists evdev paths to read on Linux. Empty means every keyboard.
	Devices []string `toml:"devices" yaml:"devices"`
}

// TriggerConfig is the file form of monitor.Trigger. Keys are names accepted
// by keys.Parse.
type TriggerConfig struct {
	Label string   `toml:"label" yaml:"label"`
	Keys  []string `toml:"keys" yaml:"keys"`
	Hold  string   `toml:"hold" yaml:"hold"`
	Taps  []string `toml:"taps" yaml:"taps"`
}

// Duration is a time.Duration written as "10ms" in both file formats.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			PollInterval: Duration(monitor.DefaultPollInterval),
			ExitKey:      "",
		},
		Player: PlayerConfig{
			StepDelay: Duration(macro.DefaultStepDelay),
		},
		Input: InputConfig{
			Devices: []string{},
		},
		Triggers: defaultTriggers(),
	}
}

// defaultTriggers is the stock stratagem table. The distinct key comes first
// so every chord has its own primary key.
func defaultTriggers() []TriggerConfig {
	eagle := func(label, key string, taps ...string) TriggerConfig {
		return TriggerConfig{Label: label, Keys: []string{key, "ctrl"}, Hold: "space", Taps: taps}
	}
	turret := func(label, key string, taps ...string) TriggerConfig {
		return TriggerConfig{Label: label, Keys: []string{key, "shift"}, Hold: "space", Taps: taps}
	}

	return []TriggerConfig{
		eagle("Eagle Airstrike", "1", "up", "right", "down", "right"),
		eagle("Eagle Cluster Bomb", "2", "up", "right", "down", "down", "right"),
		eagle("Eagle 500kg Bomb", "3", "up", "right", "down", "down", "down"),
		eagle("Eagle Strafing Run", "4", "up", "right", "right"),
		eagle("Eagle Napalm Airstrike", "q", "up", "right", "down", "up"),
		eagle("Eagle 110mm Rocket Pods", "e", "up", "right", "up", "left"),
		turret("Gatling Sentry", "5", "down", "up", "right", "left"),
		turret("Autocannon Sentry", "6", "down", "up", "right", "up", "left", "up"),
		turret("Rocket Sentry", "7", "down", "up", "right", "right", "left"),
		turret("Mortar Sentry", "r", "down", "up", "right", "right", "down"),
	}
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "stratagem", "config.toml"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads the configuration at path, picking TOML or YAML by extension.
// If the file doesn't exist, it is created with default values. A file
// without any trigger gets the default trigger table.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := defaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := defaultConfig()
	cfg.Triggers = nil
	if isYAML(path) {
		err = decodeYAML(data, cfg)
	} else {
		err = decodeTOML(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if len(cfg.Triggers) == 0 {
		cfg.Triggers = defaultTriggers()
	}

	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		names := make([]string, len(undecoded))
		for i, k := range undecoded {
			names[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(names, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Save writes the configuration to path in the format its extension names.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// ExitKey parses the configured exit key. An empty name yields the zero key.
func (c *Config) ExitKey() (keys.Key, error) {
	if strings.TrimSpace(c.Monitor.ExitKey) == "" {
		return keys.Key{}, nil
	}
	k, err := keys.Parse(c.Monitor.ExitKey)
	if err != nil {
		return keys.Key{}, fmt.Errorf("%w: exit_key: %w", ErrInvalidConfig, err)
	}
	return k, nil
}

// BuildTriggers parses every trigger entry and validates the result as a set.
func (c *Config) BuildTriggers() ([]monitor.Trigger, error) {
	var errs []error
	triggers := make([]monitor.Trigger, 0, len(c.Triggers))

	for i, tc := range c.Triggers {
		name := tc.Label
		if name == "" {
			name = fmt.Sprintf("trigger %d", i)
		}

		t, err := tc.build()
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err))
			continue
		}
		triggers = append(triggers, t)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := monitor.Validate(triggers); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return triggers, nil
}

func (tc TriggerConfig) build() (monitor.Trigger, error) {
	chord, err := keys.ParseList(tc.Keys)
	if err != nil {
		return monitor.Trigger{}, fmt.Errorf("keys: %w", err)
	}
	var hold keys.Key
	if strings.TrimSpace(tc.Hold) != "" {
		hold, err = keys.Parse(tc.Hold)
		if err != nil {
			return monitor.Trigger{}, fmt.Errorf("hold: %w", err)
		}
	}
	taps, err := keys.ParseList(tc.Taps)
	if err != nil {
		return monitor.Trigger{}, fmt.Errorf("taps: %w", err)
	}

	return monitor.Trigger{
		Keys:  chord,
		Hold:  hold,
		Taps:  taps,
		Label: tc.Label,
	}, nil
}

// Validate reports every problem in the configuration, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Monitor.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: poll_interval must be positive, got %s", ErrInvalidConfig, c.Monitor.PollInterval.Std()))
	}
	if c.Player.StepDelay <= 0 {
		errs = append(errs, fmt.Errorf("%w: step_delay must be positive, got %s", ErrInvalidConfig, c.Player.StepDelay.Std()))
	}
	exit, err := c.ExitKey()
	if err != nil {
		errs = append(errs, err)
	}
	triggers, err := c.BuildTriggers()
	if err != nil {
		errs = append(errs, err)
	}
	if !exit.IsZero() {
		for _, t := range triggers {
			for _, k := range t.Keys {
				if k == exit {
					errs = append(errs, fmt.Errorf("%w: exit key %s is part of trigger %q", ErrInvalidConfig, exit, t.Label))
				}
			}
		}
	}
	return errors.Join(errs...)
}
