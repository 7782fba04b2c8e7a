package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// TemplatesConfig holds template directory configuration
type TemplatesConfig struct {
	Directory string `mapstructure:"directory"`
}

// LocalesConfig holds locale resolution configuration
type LocalesConfig struct {
	Directory string `mapstructure:"directory"`
	Default   string `mapstructure:"default"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	LogFile string `mapstructure:"log_file"`
	Persist bool   `mapstructure:"persist"`
}

// Config represents the application configuration
type Config struct {
	Templates TemplatesConfig `mapstructure:"templates"`
	Locales   LocalesConfig   `mapstructure:"locales"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

var global *Config

// Load reads configuration from the given file (or the default search
// paths when empty), applies environment overrides with the SCRIBE_
// prefix, and stores the result as the global config.
func Load(cfgFile string) error {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("scribe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.scribe")
	}

	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	global = cfg
	return nil
}

// Get returns the global config, loading defaults if Load was never called.
func Get() *Config {
	if global == nil {
		if err := Load(""); err != nil {
			global = defaultConfig()
		}
	}
	return global
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("templates.directory", "templates")
	v.SetDefault("locales.directory", "")
	v.SetDefault("locales.default", "en")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.log_file", "")
	v.SetDefault("logging.persist", false)
}

func defaultConfig() *Config {
	return &Config{
		Templates: TemplatesConfig{Directory: "templates"},
		Locales:   LocalesConfig{Default: "en"},
		Logging:   LoggingConfig{Level: "warn"},
	}
}
