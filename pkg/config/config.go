package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"SignalDesk/pkg/logger"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logger logger.Config `yaml:"logger"`
	Engine struct {
		HistoryCapacity    int           `yaml:"history_capacity" default:"5" validate:"gte=1"`
		TickInterval       time.Duration `yaml:"tick_interval" default:"1s" validate:"gt=0"`
		TimeframeSelection bool          `yaml:"timeframe_selection" default:"true"`
		AllowedTimeframes  []int         `yaml:"allowed_timeframes" default:"[1,2,3,5,10,15]" validate:"min=1,dive,gte=1"`
		DefaultTimeframe   int           `yaml:"default_timeframe" default:"3" validate:"gte=1"`
	} `yaml:"engine"`
	Scorer struct {
		Type          string        `yaml:"type" default:"random" validate:"oneof=random http"`
		MinCall       int           `yaml:"min_call" default:"55" validate:"gte=0,lte=100"`
		MaxCall       int           `yaml:"max_call" default:"94" validate:"gte=0,lte=100"`
		Latency       time.Duration `yaml:"latency" default:"2s"`
		ServiceURL    string        `yaml:"service_url"`
		Timeout       time.Duration `yaml:"timeout" default:"3s"`
		RetryAttempts int           `yaml:"retry_attempts" default:"2" validate:"gte=1"`
	} `yaml:"scorer"`
	Events struct {
		Backend string `yaml:"backend" default:"none" validate:"oneof=none kafka redis"`
		Kafka   struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"signaldesk.signals"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"100ms"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"kafka"`
		Redis struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Channel  string `yaml:"channel" default:"signaldesk:signals"`
		} `yaml:"redis"`
	} `yaml:"events"`
	Settlement struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s" validate:"gt=0"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s" validate:"gt=0"`
	} `yaml:"settlement"`
	RateLimit struct {
		AnalyzeCapacity     float64 `yaml:"analyze_capacity" default:"5" validate:"gt=0"`
		AnalyzeRefillPerSec float64 `yaml:"analyze_refill_per_sec" default:"0.5" validate:"gt=0"`
	} `yaml:"ratelimit"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	// Defaults first so explicit zero values in the file (e.g. `cors: false`) survive.
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SIGNALDESK_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := getenv("SCORER_TYPE"); v != "" {
		c.Scorer.Type = v
	}
	if v := getenv("SCORER_SERVICE_URL"); v != "" {
		c.Scorer.ServiceURL = v
	}
	if v := getenv("EVENTS_BACKEND"); v != "" {
		c.Events.Backend = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Events.Kafka.Topic = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Events.Redis.Addr = v
	}
	if v := getenv("SETTLEMENT_WS_URL"); v != "" {
		c.Settlement.WebSocketURL = v
		c.Settlement.Enabled = true
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Scorer.MinCall > c.Scorer.MaxCall {
		return fmt.Errorf("scorer.min_call (%d) must not exceed scorer.max_call (%d)", c.Scorer.MinCall, c.Scorer.MaxCall)
	}
	if c.Scorer.Type == "http" && c.Scorer.ServiceURL == "" {
		return fmt.Errorf("scorer.service_url is required when scorer.type is 'http'")
	}
	if c.Events.Backend == "kafka" && len(c.Events.Kafka.Brokers) == 0 {
		return fmt.Errorf("events.kafka.brokers cannot be empty when events.backend is 'kafka'")
	}
	if c.Settlement.Enabled && c.Settlement.WebSocketURL == "" {
		return fmt.Errorf("settlement.websocket_url is required when settlement is enabled")
	}
	if !c.Engine.TimeframeSelection {
		return nil
	}
	for _, tf := range c.Engine.AllowedTimeframes {
		if tf == c.Engine.DefaultTimeframe {
			return nil
		}
	}
	return fmt.Errorf("engine.default_timeframe %d is not in engine.allowed_timeframes %v", c.Engine.DefaultTimeframe, c.Engine.AllowedTimeframes)
}
