package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcdev12/roulette/go/clients/casino_api_client"
	"github.com/mcdev12/roulette/go/internal/connection"
	"github.com/mcdev12/roulette/go/internal/round"
	"gopkg.in/yaml.v3"
)

// Config holds client settings. Values come from defaults, then the YAML
// file, then ROULETTE_* environment variables.
type Config struct {
	Server struct {
		BaseURL        string        `yaml:"base_url"`
		WebSocketPath  string        `yaml:"websocket_path"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`

	Connection struct {
		HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		PingInterval     time.Duration `yaml:"ping_interval"`
		MaxMessageSize   int64         `yaml:"max_message_size"`
	} `yaml:"connection"`

	Reconnect struct {
		// Strategy is "fixed" or "exponential".
		Strategy    string        `yaml:"strategy"`
		Delay       time.Duration `yaml:"delay"`
		MaxDelay    time.Duration `yaml:"max_delay"`
		Multiplier  float64       `yaml:"multiplier"`
		MaxAttempts int           `yaml:"max_attempts"`
	} `yaml:"reconnect"`

	Round struct {
		RefreshThreshold int           `yaml:"refresh_threshold"`
		WinRefreshDelay  time.Duration `yaml:"win_refresh_delay"`
		BetMessageTTL    time.Duration `yaml:"bet_message_ttl"`
	} `yaml:"round"`

	Betting struct {
		DefaultStake   float64 `yaml:"default_stake"`
		CorrelationIDs bool    `yaml:"correlation_ids"`
	} `yaml:"betting"`

	Credentials struct {
		Path string `yaml:"path"`
	} `yaml:"credentials"`

	Events struct {
		// NATSURL enables mirroring presentation events when set.
		NATSURL       string `yaml:"nats_url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"events"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

const (
	StrategyFixed       = "fixed"
	StrategyExponential = "exponential"
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var c Config
	c.Server.BaseURL = "http://localhost:8000"
	c.Server.WebSocketPath = casino_api_client.GameWebSocketPath
	c.Server.RequestTimeout = 30 * time.Second

	conn := connection.DefaultConfig()
	c.Connection.HandshakeTimeout = conn.HandshakeTimeout
	c.Connection.WriteTimeout = conn.WriteTimeout
	c.Connection.ReadTimeout = conn.ReadTimeout
	c.Connection.PingInterval = conn.PingInterval
	c.Connection.MaxMessageSize = conn.MaxMessageSize

	c.Reconnect.Strategy = StrategyFixed
	c.Reconnect.Delay = time.Second
	c.Reconnect.MaxDelay = 30 * time.Second
	c.Reconnect.Multiplier = 2

	r := round.DefaultConfig()
	c.Round.RefreshThreshold = r.RefreshThreshold
	c.Round.WinRefreshDelay = r.WinRefreshDelay
	c.Round.BetMessageTTL = r.BetMessageTTL

	c.Betting.DefaultStake = 10

	c.Events.SubjectPrefix = "roulette.events"
	c.Log.Level = "info"
	return &c
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	c.Server.BaseURL = getEnv("ROULETTE_SERVER_URL", c.Server.BaseURL)
	c.Credentials.Path = getEnv("ROULETTE_CREDENTIALS_PATH", c.Credentials.Path)
	c.Events.NATSURL = getEnv("ROULETTE_NATS_URL", c.Events.NATSURL)
	c.Log.Level = getEnv("ROULETTE_LOG_LEVEL", c.Log.Level)
	c.Reconnect.Strategy = getEnv("ROULETTE_RECONNECT_STRATEGY", c.Reconnect.Strategy)

	var err error
	if c.Round.RefreshThreshold, err = getEnvAsInt("ROULETTE_REFRESH_THRESHOLD", c.Round.RefreshThreshold); err != nil {
		return err
	}
	if c.Reconnect.Delay, err = getEnvAsDuration("ROULETTE_RECONNECT_DELAY", c.Reconnect.Delay); err != nil {
		return err
	}
	if c.Betting.DefaultStake, err = getEnvAsFloat("ROULETTE_STAKE", c.Betting.DefaultStake); err != nil {
		return err
	}
	if c.Betting.CorrelationIDs, err = getEnvAsBool("ROULETTE_CORRELATION_IDS", c.Betting.CorrelationIDs); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server.base_url must be an http(s) URL, got %q", c.Server.BaseURL))
	}
	if !strings.HasPrefix(c.Server.WebSocketPath, "/") {
		errs = append(errs, fmt.Errorf("server.websocket_path must start with /, got %q", c.Server.WebSocketPath))
	}
	switch c.Reconnect.Strategy {
	case StrategyFixed, StrategyExponential:
	default:
		errs = append(errs, fmt.Errorf("reconnect.strategy must be %q or %q, got %q", StrategyFixed, StrategyExponential, c.Reconnect.Strategy))
	}
	if c.Reconnect.Delay < 0 {
		errs = append(errs, errors.New("reconnect.delay must not be negative"))
	}
	if c.Round.RefreshThreshold <= 0 {
		errs = append(errs, fmt.Errorf("round.refresh_threshold must be positive, got %d", c.Round.RefreshThreshold))
	}
	if c.Betting.DefaultStake < 0 {
		errs = append(errs, fmt.Errorf("betting.default_stake must not be negative, got %v", c.Betting.DefaultStake))
	}
	if c.Connection.WriteTimeout <= 0 || c.Connection.PingInterval <= 0 {
		errs = append(errs, errors.New("connection.write_timeout and connection.ping_interval must be positive"))
	}
	return errors.Join(errs...)
}

// WebSocketURL is the game stream URL derived from the HTTP base URL.
func (c *Config) WebSocketURL() (string, error) {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server.base_url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + c.Server.WebSocketPath
	return u.String(), nil
}

func (c *Config) ConnectionConfig() (connection.Config, error) {
	wsURL, err := c.WebSocketURL()
	if err != nil {
		return connection.Config{}, err
	}
	conn := connection.DefaultConfig()
	conn.URL = wsURL
	conn.HandshakeTimeout = c.Connection.HandshakeTimeout
	conn.WriteTimeout = c.Connection.WriteTimeout
	conn.ReadTimeout = c.Connection.ReadTimeout
	conn.PingInterval = c.Connection.PingInterval
	conn.MaxMessageSize = c.Connection.MaxMessageSize
	return conn, nil
}

func (c *Config) RetryPolicy() connection.RetryPolicy {
	if c.Reconnect.Strategy == StrategyExponential {
		return connection.ExponentialBackoff{
			Base:        c.Reconnect.Delay,
			Max:         c.Reconnect.MaxDelay,
			Multiplier:  c.Reconnect.Multiplier,
			MaxAttempts: c.Reconnect.MaxAttempts,
		}
	}
	return connection.FixedDelay{Delay: c.Reconnect.Delay, MaxAttempts: c.Reconnect.MaxAttempts}
}

func (c *Config) RoundConfig() round.Config {
	return round.Config{
		RefreshThreshold: c.Round.RefreshThreshold,
		WinRefreshDelay:  c.Round.WinRefreshDelay,
		BetMessageTTL:    c.Round.BetMessageTTL,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
