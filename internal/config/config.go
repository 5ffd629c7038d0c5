package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the catalog pipeline and dashboard
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Catalog  CatalogConfig   `yaml:"catalog"`
	Media    MediaConfig     `yaml:"media"`
	Checker  CheckerConfig   `yaml:"checker"`
	Traits   TraitsConfig    `yaml:"traits"`
	Storage  StorageConfig   `yaml:"storage"`
	Reports  ReportsConfig   `yaml:"reports"`
	Logging  LoggingConfig   `yaml:"logging"`
	Datasets []DatasetConfig `yaml:"datasets"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int    `yaml:"port"`
	Host         string `yaml:"host"`
	DashboardDir string `yaml:"dashboard_dir"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port for the listener
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// CatalogConfig describes where the catalog JSON lives and how it is laid out.
type CatalogConfig struct {
	Path   string `yaml:"path"`
	Layout string `yaml:"layout"` // "object" (keyed by record key) or "array"
}

// MediaConfig holds creative download settings
type MediaConfig struct {
	Dir            string `yaml:"dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRedirects   int    `yaml:"max_redirects"`
	MaxRetries     int    `yaml:"max_retries"`
	DelayMillis    int    `yaml:"delay_millis"`
	DefaultExt     string `yaml:"default_ext"`
	Naming         string `yaml:"naming"` // "name" or "id"
	ThumbnailWidth int    `yaml:"thumbnail_width"`
}

// Timeout returns the per-download timeout as a duration
func (c MediaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Delay returns the pause between consecutive downloads
func (c MediaConfig) Delay() time.Duration {
	return time.Duration(c.DelayMillis) * time.Millisecond
}

// CheckerConfig holds availability probe settings
type CheckerConfig struct {
	Concurrency    int  `yaml:"concurrency"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	FallbackToGet  bool `yaml:"fallback_to_get"`
}

// Timeout returns the per-probe timeout as a duration
func (c CheckerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TraitsConfig holds vision classifier settings
type TraitsConfig struct {
	FrameworkPath      string `yaml:"framework_path"`
	PromptTemplatePath string `yaml:"prompt_template_path"`
	ModelID            string `yaml:"model_id"`
	Region             string `yaml:"region"`
	MaxTokens          int    `yaml:"max_tokens"`
	DelayMillis        int    `yaml:"delay_millis"`
}

// Delay returns the pause between consecutive model calls
func (c TraitsConfig) Delay() time.Duration {
	return time.Duration(c.DelayMillis) * time.Millisecond
}

// StorageConfig holds the optional S3 mirror configuration
type StorageConfig struct {
	S3Bucket     string `yaml:"s3_bucket"`
	S3Prefix     string `yaml:"s3_prefix"`
	AWSRegion    string `yaml:"aws_region"`
	AWSProfile   string `yaml:"aws_profile"` // Empty string uses default credential chain
	MirrorImages bool   `yaml:"mirror_images"`
}

// Enabled reports whether an S3 mirror is configured.
func (c StorageConfig) Enabled() bool {
	return c.S3Bucket != ""
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// ReportsConfig names the flagged-item CSV outputs
type ReportsConfig struct {
	Dir            string `yaml:"dir"`
	MissingMedia   string `yaml:"missing_media"`
	BrokenMedia    string `yaml:"broken_media"`
	Unanalyzed     string `yaml:"unanalyzed"`
	FailedDownload string `yaml:"failed_download"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatasetConfig declares one CSV input and how to read it.
type DatasetConfig struct {
	Name         string `yaml:"name"` // category tag; inferred from the file name when empty
	Path         string `yaml:"path"`
	Kind         string `yaml:"kind"` // "ads", "targeting" or "roas_chart"
	HeaderMarker string `yaml:"header_marker"`
	KeyColumn    string `yaml:"key_column"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, for runs
// without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.DashboardDir == "" {
		cfg.Server.DashboardDir = "public"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "data/catalog.json"
	}
	if cfg.Catalog.Layout == "" {
		cfg.Catalog.Layout = "object"
	}
	if cfg.Media.Dir == "" {
		cfg.Media.Dir = "images"
	}
	if cfg.Media.TimeoutSeconds == 0 {
		cfg.Media.TimeoutSeconds = 10
	}
	if cfg.Media.MaxRedirects == 0 {
		cfg.Media.MaxRedirects = 5
	}
	if cfg.Media.DelayMillis == 0 {
		cfg.Media.DelayMillis = 100
	}
	if cfg.Media.DefaultExt == "" {
		cfg.Media.DefaultExt = ".jpg"
	}
	if cfg.Media.Naming == "" {
		cfg.Media.Naming = "name"
	}
	if cfg.Checker.Concurrency == 0 {
		cfg.Checker.Concurrency = 10
	}
	if cfg.Checker.TimeoutSeconds == 0 {
		cfg.Checker.TimeoutSeconds = 5
	}
	if cfg.Traits.FrameworkPath == "" {
		cfg.Traits.FrameworkPath = "data/creative-framework.json"
	}
	if cfg.Traits.ModelID == "" {
		cfg.Traits.ModelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	}
	if cfg.Traits.Region == "" {
		cfg.Traits.Region = "us-east-1"
	}
	if cfg.Traits.MaxTokens == 0 {
		cfg.Traits.MaxTokens = 1024
	}
	if cfg.Traits.DelayMillis == 0 {
		cfg.Traits.DelayMillis = 1000
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-east-1"
	}
	if cfg.Reports.Dir == "" {
		cfg.Reports.Dir = "."
	}
	if cfg.Reports.MissingMedia == "" {
		cfg.Reports.MissingMedia = "Ads Missing Media.csv"
	}
	if cfg.Reports.BrokenMedia == "" {
		cfg.Reports.BrokenMedia = "Ads With Broken Media.csv"
	}
	if cfg.Reports.Unanalyzed == "" {
		cfg.Reports.Unanalyzed = "Ads Not Analyzed.csv"
	}
	if cfg.Reports.FailedDownload == "" {
		cfg.Reports.FailedDownload = "Failed Downloads.csv"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	for i := range cfg.Datasets {
		if cfg.Datasets[i].Kind == "" {
			cfg.Datasets[i].Kind = "ads"
		}
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file is loaded first when present. An empty path skips the
// config file and starts from defaults.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := os.Getenv("CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("MEDIA_DIR"); v != "" {
		cfg.Media.Dir = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BEDROCK_MODEL_ID"); v != "" {
		cfg.Traits.ModelID = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Traits.Region = v
		cfg.Storage.AWSRegion = v
	}
	if v := os.Getenv("CATALOG_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}
