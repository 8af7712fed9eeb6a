package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFeedURL is the published usage feed
	DefaultFeedURL = "https://raw.githubusercontent.com/hologram-io/carthage/master/usage.tsv"

	// OutlierDeviceID is excluded from every dashboard unless the config says otherwise
	OutlierDeviceID = 5537
)

// Config holds the application configuration
type Config struct {
	Feed   FeedConfig   `yaml:"feed"`
	Chart  ChartConfig  `yaml:"chart,omitempty"`
	Output OutputConfig `yaml:"output,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
	MQTT   MQTTConfig   `yaml:"mqtt,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

// FeedConfig describes where the usage feed lives and how to read it
type FeedConfig struct {
	URL            string        `yaml:"url,omitempty" env:"USAGEGRID_FEED_URL"`
	Timeout        time.Duration `yaml:"timeout,omitempty" env:"USAGEGRID_FEED_TIMEOUT"`
	ExcludeDevices []int         `yaml:"exclude_devices,omitempty" env:"USAGEGRID_EXCLUDE_DEVICES" envSeparator:","`
	AnchorDate     string        `yaml:"anchor_date,omitempty" env:"USAGEGRID_ANCHOR_DATE"` // Calendar date clock strings land on (default: today)
}

// ChartConfig holds chart and grid layout settings
type ChartConfig struct {
	Width        int     `yaml:"width,omitempty" env:"USAGEGRID_CHART_WIDTH"`
	Height       int     `yaml:"height,omitempty" env:"USAGEGRID_CHART_HEIGHT"`
	UsageCeiling float64 `yaml:"usage_ceiling,omitempty" env:"USAGEGRID_USAGE_CEILING"` // Usage at or above this is left out of the Y domain
	GridColumns  int     `yaml:"grid_columns,omitempty" env:"USAGEGRID_GRID_COLUMNS"`
}

// OutputConfig holds file output settings
type OutputConfig struct {
	Path       string `yaml:"path,omitempty" env:"USAGEGRID_OUTPUT"`
	Screenshot string `yaml:"screenshot,omitempty" env:"USAGEGRID_SCREENSHOT"`
}

// ServerConfig holds settings for serve mode
type ServerConfig struct {
	Listen   string        `yaml:"listen,omitempty" env:"USAGEGRID_LISTEN"`
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty" env:"USAGEGRID_CACHE_TTL"`
}

// MQTTConfig holds MQTT broker settings for publishing summaries
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled" env:"USAGEGRID_MQTT_ENABLED"`
	Broker      string `yaml:"broker,omitempty" env:"USAGEGRID_MQTT_BROKER"` // e.g., "localhost:1883"
	TopicPrefix string `yaml:"topic_prefix,omitempty" env:"USAGEGRID_MQTT_TOPIC_PREFIX"`
	Username    string `yaml:"username,omitempty" env:"USAGEGRID_MQTT_USERNAME"`
	Password    string `yaml:"password,omitempty" env:"USAGEGRID_MQTT_PASSWORD"`
}

// LogConfig holds logger settings
type LogConfig struct {
	File string `yaml:"file,omitempty" env:"USAGEGRID_LOG_FILE"`
	Mode string `yaml:"mode,omitempty" env:"USAGEGRID_LOG_MODE"` // "release" for JSON output
}

// Load reads the config file, then applies .env and environment overrides
func Load(configPath string) (*Config, error) {
	cfg, err := loadFile(configPath)
	if err != nil {
		return nil, err
	}

	_ = godotenv.Load() // .env is optional

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Defaults returns a config with every setting spelled out at its default
func Defaults() *Config {
	var c Config
	return &Config{
		Feed: FeedConfig{
			URL:            c.GetFeedURL(),
			Timeout:        c.GetFeedTimeout(),
			ExcludeDevices: c.GetExcludeDevices(),
		},
		Chart: ChartConfig{
			Width:        c.GetChartWidth(),
			Height:       c.GetChartHeight(),
			UsageCeiling: c.GetUsageCeiling(),
			GridColumns:  c.GetGridColumns(),
		},
		Output: OutputConfig{
			Path:       c.GetOutputPath(),
			Screenshot: c.GetScreenshotPath(),
		},
		Server: ServerConfig{
			Listen:   c.GetListenAddr(),
			CacheTTL: c.GetCacheTTL(),
		},
		MQTT: MQTTConfig{
			Broker:      "localhost:1883",
			TopicPrefix: c.GetTopicPrefix(),
		},
		Log: LogConfig{Mode: "development"},
	}
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetFeedURL returns the feed URL, falling back to the published feed
func (c *Config) GetFeedURL() string {
	if c.Feed.URL == "" {
		return DefaultFeedURL
	}
	return c.Feed.URL
}

// GetFeedTimeout returns the fetch timeout with a default of 30 seconds
func (c *Config) GetFeedTimeout() time.Duration {
	if c.Feed.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Feed.Timeout
}

// GetExcludeDevices returns the device ids dropped from every dashboard
func (c *Config) GetExcludeDevices() []int {
	if c.Feed.ExcludeDevices == nil {
		return []int{OutlierDeviceID}
	}
	return c.Feed.ExcludeDevices
}

// GetChartWidth returns the chart width in pixels
func (c *Config) GetChartWidth() int {
	if c.Chart.Width <= 0 {
		return 1200
	}
	return c.Chart.Width
}

// GetChartHeight returns the chart height in pixels
func (c *Config) GetChartHeight() int {
	if c.Chart.Height <= 0 {
		return 700
	}
	return c.Chart.Height
}

// GetUsageCeiling returns the Y domain cutoff
func (c *Config) GetUsageCeiling() float64 {
	if c.Chart.UsageCeiling <= 0 {
		return 200
	}
	return c.Chart.UsageCeiling
}

// GetGridColumns returns the number of legend cells per row
func (c *Config) GetGridColumns() int {
	if c.Chart.GridColumns <= 0 {
		return 4
	}
	return c.Chart.GridColumns
}

// GetOutputPath returns the dashboard file path
func (c *Config) GetOutputPath() string {
	if c.Output.Path == "" {
		return "dashboard.html"
	}
	return c.Output.Path
}

// GetScreenshotPath returns the PNG path used by capture
func (c *Config) GetScreenshotPath() string {
	if c.Output.Screenshot == "" {
		return "dashboard.png"
	}
	return c.Output.Screenshot
}

// GetListenAddr returns the serve address
func (c *Config) GetListenAddr() string {
	if c.Server.Listen == "" {
		return ":8080"
	}
	return c.Server.Listen
}

// GetCacheTTL returns how long a processed dashboard is served before refetching
func (c *Config) GetCacheTTL() time.Duration {
	if c.Server.CacheTTL <= 0 {
		return 10 * time.Minute
	}
	return c.Server.CacheTTL
}

// GetTopicPrefix returns the MQTT topic prefix
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "device_usage"
	}
	return c.MQTT.TopicPrefix
}
