package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the emissions and boundary datasets.
type DataConfig struct {
	CO2URL              string `yaml:"co2_url" mapstructure:"co2_url"`
	BoundariesURL       string `yaml:"boundaries_url" mapstructure:"boundaries_url"`
	BoundariesFormat    string `yaml:"boundaries_format" mapstructure:"boundaries_format"`
	BoundariesNameField string `yaml:"boundaries_name_field" mapstructure:"boundaries_name_field"`
	TempDir             string `yaml:"temp_dir" mapstructure:"temp_dir"`
	TimeoutSecs         int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent           string `yaml:"user_agent" mapstructure:"user_agent"`
}

// DashboardConfig holds the initial selector state.
type DashboardConfig struct {
	DefaultYear int `yaml:"default_year" mapstructure:"default_year"`
	YearStep    int `yaml:"year_step" mapstructure:"year_step"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CO2")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("data.co2_url", "https://raw.githubusercontent.com/owid/co2-data/master/owid-co2-data.csv")
	v.SetDefault("data.boundaries_url", "https://raw.githubusercontent.com/johan/world.geo.json/master/countries.geo.json")
	v.SetDefault("data.boundaries_format", "geojson")
	v.SetDefault("data.boundaries_name_field", "name")
	v.SetDefault("data.temp_dir", "")
	v.SetDefault("data.timeout_secs", 60)
	v.SetDefault("data.user_agent", "co2-dashboard/1.0")
	v.SetDefault("dashboard.default_year", 2010)
	v.SetDefault("dashboard.year_step", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Mode is one of
// "render", "export", "controls" or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "render", "export", "controls", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Data.CO2URL == "" {
		errs = append(errs, "data.co2_url is required")
	}
	if c.Data.TimeoutSecs < 0 {
		errs = append(errs, "data.timeout_secs must be >= 0")
	}
	if c.Dashboard.YearStep <= 0 {
		errs = append(errs, "dashboard.year_step must be > 0")
	}

	// Controls only needs the emissions dataset.
	if mode != "controls" {
		if c.Data.BoundariesURL == "" {
			errs = append(errs, "data.boundaries_url is required")
		}
		switch c.Data.BoundariesFormat {
		case "geojson", "shapefile":
		default:
			errs = append(errs, "data.boundaries_format must be geojson or shapefile")
		}
	}

	if mode == "serve" && c.Server.Port <= 0 {
		errs = append(errs, "server.port must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
