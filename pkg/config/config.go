// Package config loads daemon configuration from an optional YAML file
// with environment overrides.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App      `yaml:"app"`
		Log      `yaml:"logger"`
		Sound    `yaml:"sound"`
		Schedule `yaml:"schedule"`
	}

	App struct {
		Env       string `yaml:"env"        env:"APP_ENV"    env-default:"local"`
		Name      string `yaml:"name"                        env-default:"wakebell"`
		AutoStart bool   `yaml:"auto_start" env:"AUTO_START" env-default:"false"`
	}

	Log struct {
		Level string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	}

	Sound struct {
		AssetDir string `yaml:"asset_dir" env:"SOUND_ASSET_DIR" env-default:"assets/sounds"`
	}

	Schedule struct {
		// RearmInterval is how often the daemon re-runs full
		// reconciliation; fired weekly triggers do not re-arm
		// themselves.
		RearmInterval time.Duration `yaml:"rearm_interval" env:"REARM_INTERVAL" env-default:"6h"`
	}
)

// New reads configuration from path, or from the environment alone
// when path is empty. Every field has a default, so a bare environment
// is a valid configuration.
func New(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}
	return cfg, nil
}
