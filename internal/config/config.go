package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig selects the Postgres lead store. An empty DSN keeps
// processed leads in memory.
type DatabaseConfig struct {
	DSN           string `yaml:"dsn"`
	MigrationsDir string `yaml:"migrationsDir"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	Enabled bool     `yaml:"enabled"`
	APIKeys []string `yaml:"apiKeys"`
}

type RateLimitConfig struct {
	DefaultPerMinute int `yaml:"defaultPerMinute"`
}

// WorkerConfig controls the single lead worker and how long finished
// tasks stay queryable.
type WorkerConfig struct {
	RetentionMinutes int `yaml:"retentionMinutes"`
}

// EnrichmentConfig points at the external enrichment API and sets its
// retry policy. RetryDelayMs of zero retries immediately.
type EnrichmentConfig struct {
	BaseURL      string `yaml:"baseURL"`
	Endpoint     string `yaml:"endpoint"`
	TimeoutMs    int    `yaml:"timeoutMs"`
	MaxAttempts  int    `yaml:"maxAttempts"`
	RetryDelayMs int    `yaml:"retryDelayMs"`
}

// CatalogConfig locates the branch workbook and the car model list.
type CatalogConfig struct {
	BranchFile      string `yaml:"branchFile"`
	ModelFile       string `yaml:"modelFile"`
	DefaultBranchID int    `yaml:"defaultBranchId"`
}

// ValidationConfig holds email domain allow/deny lists applied to
// inbound leads. Domains are matched on their first label, so "gmail"
// covers gmail.com and gmail.co.il.
type ValidationConfig struct {
	ApprovedEmailDomains   []string `yaml:"approvedEmailDomains"`
	UnapprovedEmailDomains []string `yaml:"unapprovedEmailDomains"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`
	Worker     WorkerConfig     `yaml:"worker"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Validation ValidationConfig `yaml:"validation"`
}

func Load(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills unset fields with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = "db/migrations"
	}
	if c.Worker.RetentionMinutes <= 0 {
		c.Worker.RetentionMinutes = 60
	}
	if c.Enrichment.BaseURL == "" {
		c.Enrichment.BaseURL = "http://localhost:8001"
	}
	if c.Enrichment.Endpoint == "" {
		c.Enrichment.Endpoint = "/api/enrich"
	}
	if c.Enrichment.TimeoutMs <= 0 {
		c.Enrichment.TimeoutMs = 5000
	}
	if c.Enrichment.MaxAttempts <= 0 {
		c.Enrichment.MaxAttempts = 3
	}
	if c.Enrichment.RetryDelayMs < 0 {
		c.Enrichment.RetryDelayMs = 0
	}
	if c.Catalog.BranchFile == "" {
		c.Catalog.BranchFile = "data/branch_config.xlsx"
	}
	if c.Catalog.ModelFile == "" {
		c.Catalog.ModelFile = "data/car_models.txt"
	}
	if c.Catalog.DefaultBranchID <= 0 {
		c.Catalog.DefaultBranchID = 400
	}
}
