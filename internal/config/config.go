package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const PlaceholderAPIKey = "YOUR_BLOCKSPAN_API_KEY"

type (
	Config struct {
		App       `yaml:"app" env-prefix:"APP_"`
		HTTP      `yaml:"http" env-prefix:"HTTP_"`
		Blockspan `yaml:"blockspan" env-prefix:"BLOCKSPAN_"`
		Log       `yaml:"log" env-prefix:"LOG_"`
	}

	App struct {
		Name        string `yaml:"name" env:"NAME" env-default:"nft-history"`
		Version     string `yaml:"version" env:"VERSION" env-default:"dev"`
		Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`
	}

	HTTP struct {
		Port string `yaml:"port" env:"PORT" env-default:":8080"`
	}

	Blockspan struct {
		BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:"https://api.blockspan.com/v1"`
		APIKey   string `yaml:"api_key" env:"API_KEY" env-default:"YOUR_BLOCKSPAN_API_KEY"`
		PageSize int    `yaml:"page_size" env:"PAGE_SIZE" env-default:"25"`
	}

	Log struct {
		Level  string `yaml:"level" env:"LEVEL" env-default:"info"`
		Pretty bool   `yaml:"pretty" env:"PRETTY"`
	}
)

var (
	instance *Config
	once     sync.Once
	onceErr  error
)

// GetConfig loads the process-wide config once and returns it on every call.
func GetConfig(path string) (*Config, error) {
	once.Do(func() {
		instance, onceErr = Load(path)
	})

	if onceErr != nil {
		return nil, onceErr
	}
	return instance, nil
}

// Load reads an optional .env file, then the YAML file at path, then
// environment overrides. A missing YAML file falls back to environment and
// defaults only.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	cfg := &Config{}
	if path != "" && fileExists(path) {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if !fileExists(path) {
		return nil
	}
	return godotenv.Load(path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
