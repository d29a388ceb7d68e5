package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// APIKey protects the management API. Empty disables authentication.
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type SchedulerConfig struct {
	// CampaignInterval is the cadence of the campaign runner tick.
	CampaignInterval time.Duration `yaml:"campaign_interval"`
	// DeliveryInterval is the cadence of the delivery processor tick.
	DeliveryInterval time.Duration `yaml:"delivery_interval"`
	// SendTimeout bounds a single SMTP delivery so one slow endpoint
	// cannot stall the whole tick.
	SendTimeout time.Duration `yaml:"send_timeout"`
	// RequeueStuckAfter is the grace period after which a message left in
	// "sending" by a crashed process is requeued at startup. Zero disables
	// the sweep.
	RequeueStuckAfter time.Duration `yaml:"requeue_stuck_after"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/var/lib/mailward/mailward.db"
	}
	if cfg.Scheduler.CampaignInterval == 0 {
		cfg.Scheduler.CampaignInterval = 60 * time.Second
	}
	if cfg.Scheduler.DeliveryInterval == 0 {
		cfg.Scheduler.DeliveryInterval = 60 * time.Second
	}
	if cfg.Scheduler.SendTimeout == 0 {
		cfg.Scheduler.SendTimeout = 30 * time.Second
	}
	if cfg.Scheduler.RequeueStuckAfter == 0 {
		cfg.Scheduler.RequeueStuckAfter = 15 * time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.Scheduler.CampaignInterval < time.Second {
		return fmt.Errorf("scheduler.campaign_interval must be at least 1s, got %s", cfg.Scheduler.CampaignInterval)
	}
	if cfg.Scheduler.DeliveryInterval < time.Second {
		return fmt.Errorf("scheduler.delivery_interval must be at least 1s, got %s", cfg.Scheduler.DeliveryInterval)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", cfg.Logging.Level)
	}
	return nil
}
