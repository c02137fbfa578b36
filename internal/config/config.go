// Package config loads sandbox settings from an optional YAML file,
// STEERING_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "STEERING"

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Sim    SimConfig    `mapstructure:"sim" yaml:"sim"`
	Viewer ViewerConfig `mapstructure:"viewer" yaml:"viewer"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// SimConfig drives both the headless runner and the viewer.
type SimConfig struct {
	// Scene is a prefab name (scene.yaml) or a path on disk.
	Scene string `mapstructure:"scene" yaml:"scene"`
	// Ticks is the number of frames the headless runner steps.
	Ticks int `mapstructure:"ticks" yaml:"ticks"`
	// DT is the physics step in seconds.
	DT float64 `mapstructure:"dt" yaml:"dt"`
	// Dump, when set, receives a YAML gradient snapshot after the run
	// ("-" for stdout).
	Dump string `mapstructure:"dump" yaml:"dump"`
	// LogEvery logs agent headings every N frames. Zero disables it.
	LogEvery int `mapstructure:"log_every" yaml:"log_every"`
}

type ViewerConfig struct {
	Width  int     `mapstructure:"width" yaml:"width"`
	Height int     `mapstructure:"height" yaml:"height"`
	Scale  float64 `mapstructure:"scale" yaml:"scale"`
	TPS    int     `mapstructure:"tps" yaml:"tps"`
	// Watch reloads the scene when files under the prefab directory change.
	Watch bool `mapstructure:"watch" yaml:"watch"`
	// Dir is the on-disk prefab directory watched for changes.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// SetDefaults initializes default values for every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "steering")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)

	v.SetDefault("sim.scene", "scene.yaml")
	v.SetDefault("sim.ticks", 600)
	v.SetDefault("sim.dt", 1.0/60.0)
	v.SetDefault("sim.dump", "")
	v.SetDefault("sim.log_every", 60)

	v.SetDefault("viewer.width", 1280)
	v.SetDefault("viewer.height", 720)
	v.SetDefault("viewer.scale", 1.0)
	v.SetDefault("viewer.tps", 60)
	v.SetDefault("viewer.watch", true)
	v.SetDefault("viewer.dir", "prefabs")
}

// NewViper returns a viper instance with defaults and environment binding
// applied. cfgFile may be empty, in which case ./steering.yaml is used when
// present.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("steering")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return v, nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Logger.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logger.format %q (want console or json)", ErrInvalidConfig, c.Logger.Format)
	}
	if strings.TrimSpace(c.Sim.Scene) == "" {
		return fmt.Errorf("%w: sim.scene is empty", ErrInvalidConfig)
	}
	if c.Sim.Ticks < 0 {
		return fmt.Errorf("%w: sim.ticks %d is negative", ErrInvalidConfig, c.Sim.Ticks)
	}
	if !(c.Sim.DT > 0) {
		return fmt.Errorf("%w: sim.dt %v must be positive", ErrInvalidConfig, c.Sim.DT)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("%w: viewer size %dx%d", ErrInvalidConfig, c.Viewer.Width, c.Viewer.Height)
	}
	if !(c.Viewer.Scale > 0) {
		return fmt.Errorf("%w: viewer.scale %v must be positive", ErrInvalidConfig, c.Viewer.Scale)
	}
	if c.Viewer.TPS <= 0 {
		return fmt.Errorf("%w: viewer.tps %d must be positive", ErrInvalidConfig, c.Viewer.TPS)
	}
	return nil
}
