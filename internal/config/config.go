package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
		Debug   bool   `yaml:"debug"`
		LogJSON bool   `yaml:"log_json"`
	} `yaml:"app"`

	Fetch struct {
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		MaxRetries     int     `yaml:"max_retries"`
		BackoffMillis  int     `yaml:"backoff_millis"`
		UserAgent      string  `yaml:"user_agent"`
		HostReqsSec    float64 `yaml:"host_reqs_per_sec"`
		HostBurst      int     `yaml:"host_burst"`
	} `yaml:"fetch"`

	Cards struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
	} `yaml:"cards"`

	Letters struct {
		Enabled        bool   `yaml:"enabled"`
		Model          string `yaml:"model"`
		KeyringAccount string `yaml:"keyring_account"`
	} `yaml:"letters"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) FetchTimeout() time.Duration {
	if c.Fetch.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

func (c Config) FetchBackoff() time.Duration {
	if c.Fetch.BackoffMillis <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Fetch.BackoffMillis) * time.Millisecond
}
