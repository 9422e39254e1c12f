// Package config loads the msn-node program configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// MSN_* environment variables. Command-line flags are applied by the caller
// before Validate.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/msn-network/msn-go/pkg/addrmap"
	"github.com/msn-network/msn-go/pkg/backoff"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/nwk"
	"github.com/msn-network/msn-go/pkg/secure"
)

// MaxSimulatedPeers bounds the number of background peers.
const MaxSimulatedPeers = 32

// Config is the complete program configuration.
type Config struct {
	Node       NodeConfig       `yaml:"node"`
	Retry      RetryConfig      `yaml:"retry"`
	Security   SecurityConfig   `yaml:"security"`
	Logging    LoggingConfig    `yaml:"logging"`
	Simulation SimulationConfig `yaml:"simulation"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	State      StateConfig      `yaml:"state"`
}

// NodeConfig holds the node identity and join parameters.
type NodeConfig struct {
	ExtendedAddress    string  `yaml:"extendedAddress"`
	Channel            uint8   `yaml:"channel"`
	PanID              string  `yaml:"panId"`
	MaxPeers           int     `yaml:"maxPeers"`
	ScanDuration       uint8   `yaml:"scanDuration"`
	EnergyScanChannels []uint8 `yaml:"energyScanChannels"`
	QueueDepth         int     `yaml:"queueDepth"`
}

// RetryConfig holds the join retry policy.
type RetryConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Max         time.Duration `yaml:"max"`
	Multiplier  float64       `yaml:"multiplier"`
	Jitter      float64       `yaml:"jitter"`
	MaxAttempts int           `yaml:"maxAttempts"`
}

// SecurityConfig enables payload framing.
type SecurityConfig struct {
	Enabled bool `yaml:"enabled"`

	// NetworkKey is the 128-bit network key as 32 hex digits.
	NetworkKey string `yaml:"networkKey"`
}

// LoggingConfig holds operational and protocol log settings.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	ProtocolLog string `yaml:"protocolLog"`
	MaxSizeMB   int    `yaml:"maxSizeMb"`
	MaxBackups  int    `yaml:"maxBackups"`
	MaxAgeDays  int    `yaml:"maxAgeDays"`
	Compress    bool   `yaml:"compress"`
}

// SimulationConfig configures the in-memory medium.
type SimulationConfig struct {
	Peers   int             `yaml:"peers"`
	Latency time.Duration   `yaml:"latency"`
	Energy  map[uint8]uint8 `yaml:"energy"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Listen
// disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// StateConfig configures node state persistence. An empty Dir disables it.
type StateConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	retry := backoff.DefaultConfig()
	return &Config{
		Node: NodeConfig{
			ExtendedAddress: "00:12:4B:00:00:00:00:01",
			Channel:         11,
			PanID:           "0xC0C0",
			MaxPeers:        addrmap.DefaultWidth,
			ScanDuration:    nwk.DefaultScanDuration,
		},
		Retry: RetryConfig{
			Interval:   retry.Initial,
			Max:        retry.Max,
			Multiplier: retry.Multiplier,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Simulation: SimulationConfig{
			Peers: 2,
		},
	}
}

// Load returns the defaults overlaid with the file at path (if path is not
// empty) and the environment.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies MSN_* variables. Unparseable values are errors.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	num := func(name string, bits int, set func(uint64)) {
		if v, ok := lookup(name); ok {
			n, err := strconv.ParseUint(v, 0, bits)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			set(n)
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = d
		}
	}
	flag := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = b
		}
	}

	str("MSN_EXT_ADDR", &cfg.Node.ExtendedAddress)
	num("MSN_CHANNEL", 8, func(n uint64) { cfg.Node.Channel = uint8(n) })
	str("MSN_PAN_ID", &cfg.Node.PanID)
	num("MSN_MAX_PEERS", 8, func(n uint64) { cfg.Node.MaxPeers = int(n) })
	dur("MSN_RETRY_INTERVAL", &cfg.Retry.Interval)
	num("MSN_RETRY_MAX_ATTEMPTS", 16, func(n uint64) { cfg.Retry.MaxAttempts = int(n) })
	flag("MSN_SECURITY", &cfg.Security.Enabled)
	str("MSN_NETWORK_KEY", &cfg.Security.NetworkKey)
	str("MSN_LOG_LEVEL", &cfg.Logging.Level)
	str("MSN_LOG_FILE", &cfg.Logging.File)
	str("MSN_PROTOCOL_LOG", &cfg.Logging.ProtocolLog)
	num("MSN_SIM_PEERS", 8, func(n uint64) { cfg.Simulation.Peers = int(n) })
	dur("MSN_SIM_LATENCY", &cfg.Simulation.Latency)
	str("MSN_METRICS_LISTEN", &cfg.Metrics.Listen)
	str("MSN_STATE_DIR", &cfg.State.Dir)

	return errors.Join(errs...)
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.ExtendedAddress(); err != nil {
		errs = append(errs, err)
	}
	if !mac.Channel(c.Node.Channel).Valid() {
		errs = append(errs, fmt.Errorf("node.channel %d outside %d..%d", c.Node.Channel, mac.MinChannel, mac.MaxChannel))
	}
	if _, err := c.PanID(); err != nil {
		errs = append(errs, err)
	}
	for _, ch := range c.Node.EnergyScanChannels {
		if !mac.Channel(ch).Valid() {
			errs = append(errs, fmt.Errorf("node.energyScanChannels: channel %d outside %d..%d", ch, mac.MinChannel, mac.MaxChannel))
		}
	}
	if c.Retry.Interval <= 0 {
		errs = append(errs, fmt.Errorf("retry.interval must be positive, got %s", c.Retry.Interval))
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry.maxAttempts must not be negative, got %d", c.Retry.MaxAttempts))
	}
	if c.Security.Enabled {
		if _, err := c.NetworkKey(); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Simulation.Peers < 0 || c.Simulation.Peers > MaxSimulatedPeers {
		errs = append(errs, fmt.Errorf("simulation.peers %d outside 0..%d", c.Simulation.Peers, MaxSimulatedPeers))
	}
	if c.Simulation.Latency < 0 {
		errs = append(errs, fmt.Errorf("simulation.latency must not be negative, got %s", c.Simulation.Latency))
	}

	if len(errs) == 0 {
		if _, err := c.Network(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ExtendedAddress parses node.extendedAddress.
func (c *Config) ExtendedAddress() (mac.ExtendedAddress, error) {
	ext, err := mac.ParseExtendedAddress(c.Node.ExtendedAddress)
	if err != nil {
		return 0, fmt.Errorf("node.extendedAddress: %w", err)
	}
	return ext, nil
}

// PanID parses node.panId as a decimal or 0x-prefixed number.
func (c *Config) PanID() (mac.PanID, error) {
	v, err := strconv.ParseUint(c.Node.PanID, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("node.panId %q: %w", c.Node.PanID, err)
	}
	if mac.PanID(v) == mac.UnassignedPanID {
		return 0, fmt.Errorf("node.panId %q is the broadcast PAN", c.Node.PanID)
	}
	return mac.PanID(v), nil
}

// NetworkKey decodes security.networkKey.
func (c *Config) NetworkKey() ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimPrefix(c.Security.NetworkKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("security.networkKey: %w", err)
	}
	if len(key) != secure.KeySize {
		return nil, fmt.Errorf("security.networkKey: got %d bytes, want %d", len(key), secure.KeySize)
	}
	return key, nil
}

// LogLevel parses logging.level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging.level %q: want debug, info, warn or error", c.Logging.Level)
	}
}

// RetryPolicy returns the backoff policy.
func (c *Config) RetryPolicy() backoff.Config {
	return backoff.Config{
		Initial:     c.Retry.Interval,
		Max:         c.Retry.Max,
		Multiplier:  c.Retry.Multiplier,
		Jitter:      c.Retry.Jitter,
		MaxAttempts: c.Retry.MaxAttempts,
	}
}

// StatePath returns the state file for ext, or "" when persistence is off.
func (c *Config) StatePath(ext mac.ExtendedAddress) string {
	if c.State.Dir == "" {
		return ""
	}
	return filepath.Join(c.State.Dir, fmt.Sprintf("%016x.json", uint64(ext)))
}

// Network returns the node library configuration. Runtime collaborators
// (framer, clock, loggers, metrics, store) are left for the caller.
func (c *Config) Network() (nwk.Config, error) {
	cfg := nwk.DefaultConfig()
	cfg.MaxPeers = c.Node.MaxPeers
	cfg.ScanDuration = c.Node.ScanDuration
	cfg.QueueDepth = c.Node.QueueDepth
	cfg.Retry = c.RetryPolicy()
	for _, ch := range c.Node.EnergyScanChannels {
		cfg.EnergyScanChannels |= mac.MaskOf(mac.Channel(ch))
	}
	if err := cfg.Validate(); err != nil {
		return nwk.Config{}, err
	}
	return cfg, nil
}

// Framer returns the payload framer for pan.
func (c *Config) Framer(pan mac.PanID) (secure.Framer, error) {
	if !c.Security.Enabled {
		return secure.NopFramer{}, nil
	}
	key, err := c.NetworkKey()
	if err != nil {
		return nil, err
	}
	return secure.NewAESFramer(key, pan, 0)
}
