package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	duelerrors "github.com/vango-dev/duel/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "duel.json"

	// EnvFileName is the optional dotenv file next to the configuration.
	EnvFileName = ".env"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"

	// DefaultTickRate is the default number of ticks per second.
	DefaultTickRate = 30

	// DefaultURL is the default server URL for clients.
	DefaultURL = "ws://localhost:8080/ws"

	// DefaultFPS is the default client frame rate.
	DefaultFPS = 60

	// DefaultReplayDir is the default local replay directory.
	DefaultReplayDir = "replays"
)

// Config represents the complete duel.json configuration.
type Config struct {
	// Server contains game server settings.
	Server ServerConfig `json:"server"`

	// Client contains bot/client settings.
	Client ClientConfig `json:"client"`

	// Log contains logging settings.
	Log LogConfig `json:"log"`

	// Replay contains match recording settings.
	Replay ReplayConfig `json:"replay"`

	// S3 contains S3 connection settings for replay uploads.
	S3 S3Config `json:"s3"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains game server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// TickRate is the number of simulation ticks per second.
	TickRate int `json:"tickRate,omitempty"`

	// Perspective sends each client its own entity first.
	Perspective bool `json:"perspective,omitempty"`

	// MaxMessageSize is the largest accepted WebSocket message in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty"`

	// ShutdownTimeout is the graceful shutdown limit (e.g., "30s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`
}

// ClientConfig contains client settings.
type ClientConfig struct {
	// URL is the server WebSocket URL.
	URL string `json:"url,omitempty"`

	// FPS is the number of client updates per second.
	FPS int `json:"fps,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// ReplayConfig contains match recording settings.
type ReplayConfig struct {
	// Enabled turns recording on.
	Enabled bool `json:"enabled,omitempty"`

	// Dir is the local replay directory, used when Bucket is empty.
	Dir string `json:"dir,omitempty"`

	// Bucket stores replays in S3 instead of Dir.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix.
	Prefix string `json:"prefix,omitempty"`

	// MaxBytes caps one recording (0 = no limit).
	MaxBytes int `json:"maxBytes,omitempty"`
}

// S3Config contains S3 connection settings.
type S3Config struct {
	Region       string `json:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers the collectors.
	Enabled bool `json:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{
		Metrics: MetricsConfig{Enabled: true},
	}
	c.applyDefaults()
	return c
}

// Load reads duel.json from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return cfg, err
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, duelerrors.New("E100").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, duelerrors.New("E100").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return duelerrors.Newf(duelerrors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return duelerrors.New("E100").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return duelerrors.New("E100").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.TickRate == 0 {
		c.Server.TickRate = DefaultTickRate
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = 64 * 1024
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "30s"
	}
	if c.Client.URL == "" {
		c.Client.URL = DefaultURL
	}
	if c.Client.FPS == 0 {
		c.Client.FPS = DefaultFPS
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Replay.Dir == "" {
		c.Replay.Dir = DefaultReplayDir
	}
	if c.Replay.Prefix == "" {
		c.Replay.Prefix = "replays/"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "duel"
	}
}

// LoadEnv loads dir/.env into the process environment without replacing
// variables that are already set. A missing file is not an error.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, EnvFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return duelerrors.New("E102").WithDetail(path).Wrap(err)
	}
	return nil
}

// ApplyEnv overrides settings from DUEL_* variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("DUEL_ADDR", &c.Server.Addr)
	str("DUEL_SERVER_URL", &c.Client.URL)
	str("DUEL_LOG_LEVEL", &c.Log.Level)
	str("DUEL_LOG_FORMAT", &c.Log.Format)
	str("DUEL_S3_REGION", &c.S3.Region)
	str("DUEL_S3_ENDPOINT", &c.S3.Endpoint)

	if v, ok := lookup("DUEL_REPLAY_DIR"); ok && v != "" {
		c.Replay.Dir = v
		c.Replay.Enabled = true
	}
	if v, ok := lookup("DUEL_REPLAY_BUCKET"); ok && v != "" {
		c.Replay.Bucket = v
		c.Replay.Enabled = true
	}

	if v, ok := lookup("DUEL_TICK_RATE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return duelerrors.New("E101").
				WithDetail(fmt.Sprintf("DUEL_TICK_RATE=%q is not a number", v)).
				Wrap(err)
		}
		c.Server.TickRate = n
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.TickRate < 1 || c.Server.TickRate > 1000 {
		return duelerrors.New("E101").
			WithDetail(fmt.Sprintf("server.tickRate must be between 1 and 1000, got %d", c.Server.TickRate))
	}
	if c.Client.FPS < 1 || c.Client.FPS > 1000 {
		return duelerrors.New("E101").
			WithDetail(fmt.Sprintf("client.fps must be between 1 and 1000, got %d", c.Client.FPS))
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return duelerrors.New("E101").
			WithDetail(fmt.Sprintf("server.shutdownTimeout %q is not a duration", c.Server.ShutdownTimeout)).
			Wrap(err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return duelerrors.New("E101").
			WithDetail(fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return duelerrors.New("E101").
			WithDetail(fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	return nil
}

// ShutdownTimeout parses Server.ShutdownTimeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ShutdownTimeout)
}
