package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"` // "kafka" or "clickhouse"
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Oanda struct {
		APIKey       string        `yaml:"api_key"`
		BaseURL      string        `yaml:"base_url"`
		Instrument   string        `yaml:"instrument"`
		Granularity  string        `yaml:"granularity"`
		Price        string        `yaml:"price"`
		PollInterval time.Duration `yaml:"poll_interval"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"oanda"`
	Session struct {
		Location string `yaml:"location"` // IANA name of the trading timezone
		Start    string `yaml:"start"`    // "HH:MM"
		End      string `yaml:"end"`
		Quota    int    `yaml:"quota"`
		Windows  []struct {
			Start     string `yaml:"start"`
			End       string `yaml:"end"`
			Direction string `yaml:"direction"` // buy | sell | both
		} `yaml:"windows"`
	} `yaml:"session"`
	Engine struct {
		StopMin        float64 `yaml:"stop_min"`
		StopMax        float64 `yaml:"stop_max"`
		TightStopLimit float64 `yaml:"tight_stop_limit"`
		TargetCount    int     `yaml:"target_count"`
		MinWick        float64 `yaml:"min_wick"`
		TouchTolerance float64 `yaml:"touch_tolerance"`
		MinRejection   float64 `yaml:"min_rejection"`
		ScanLevels     int     `yaml:"scan_levels"`
	} `yaml:"engine"`
	Plan struct {
		Step        float64 `yaml:"step"`
		Proximity   float64 `yaml:"proximity"`
		MinRR       float64 `yaml:"min_rr"`
		CohortMin   int     `yaml:"cohort_min"`
		WinRateBuy  float64 `yaml:"win_rate_buy"`
		WinRateSell float64 `yaml:"win_rate_sell"`
		MeanBias    float64 `yaml:"mean_bias"`
	} `yaml:"plan"`
	Snapshots struct {
		AnchorTime string `yaml:"anchor_time"` // "HH:MM" local open anchor
		UseUTC     bool   `yaml:"use_utc"`
		Years      int    `yaml:"years"`
	} `yaml:"snapshots"`
	Cache struct {
		PlanTTL     time.Duration `yaml:"plan_ttl"`
		PatternsTTL time.Duration `yaml:"patterns_ttl"`
		Redis       struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("OANDA_API_KEY"); v != "" {
		c.Oanda.APIKey = v
	}
	if v := os.Getenv("OANDA_BASE_URL"); v != "" {
		c.Oanda.BaseURL = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	return c, nil
}

// applyDefaults fills the policy constants with their documented defaults.
// They stay visible in the config file; these values are the fallback, not a
// hidden second source of truth.
func (c *Config) applyDefaults() {
	if c.Session.Location == "" {
		c.Session.Location = "Europe/Lisbon"
	}
	if c.Session.Start == "" {
		c.Session.Start = "23:00"
	}
	if c.Session.End == "" {
		c.Session.End = "06:00"
	}
	if c.Session.Quota <= 0 {
		c.Session.Quota = 2
	}
	if c.Engine.StopMin <= 0 {
		c.Engine.StopMin = 35
	}
	if c.Engine.StopMax <= 0 {
		c.Engine.StopMax = 65
	}
	if c.Engine.TightStopLimit <= 0 {
		c.Engine.TightStopLimit = 10
	}
	if c.Engine.TargetCount <= 0 {
		c.Engine.TargetCount = 4
	}
	if c.Engine.MinWick <= 0 {
		c.Engine.MinWick = 2.0
	}
	if c.Engine.TouchTolerance <= 0 {
		c.Engine.TouchTolerance = 0.5
	}
	if c.Engine.MinRejection <= 0 {
		c.Engine.MinRejection = 1.5
	}
	if c.Engine.ScanLevels <= 0 {
		c.Engine.ScanLevels = 5
	}
	if c.Plan.Step <= 0 {
		c.Plan.Step = 10
	}
	if c.Plan.Proximity <= 0 {
		c.Plan.Proximity = 1.5
	}
	if c.Plan.MinRR <= 0 {
		c.Plan.MinRR = 2
	}
	if c.Plan.CohortMin <= 0 {
		c.Plan.CohortMin = 80
	}
	if c.Plan.WinRateBuy <= 0 {
		c.Plan.WinRateBuy = 0.55
	}
	if c.Plan.WinRateSell <= 0 {
		c.Plan.WinRateSell = 0.45
	}
	if c.Plan.MeanBias <= 0 {
		c.Plan.MeanBias = 0.05
	}
	if c.Snapshots.AnchorTime == "" {
		c.Snapshots.AnchorTime = "23:00"
	}
	if c.Snapshots.Years <= 0 {
		c.Snapshots.Years = 5
	}
	if c.Oanda.BaseURL == "" {
		c.Oanda.BaseURL = "https://api-fxpractice.oanda.com"
	}
	if c.Oanda.Instrument == "" {
		c.Oanda.Instrument = "XAU_USD"
	}
	if c.Oanda.Granularity == "" {
		c.Oanda.Granularity = "M5"
	}
	if c.Oanda.Price == "" {
		c.Oanda.Price = "M"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Oanda.Instrument == "" {
		return fmt.Errorf("oanda.instrument is required")
	}
	for _, w := range c.Session.Windows {
		switch strings.ToLower(w.Direction) {
		case "buy", "sell", "both":
		default:
			return fmt.Errorf("session window %s-%s: direction must be buy, sell or both", w.Start, w.End)
		}
	}
	return nil
}
