package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr       = ":5000"
	DefaultWeatherURL       = "http://api.openweathermap.org"
	DefaultNewsURL          = "https://newsapi.org"
	DefaultCasesURL         = "https://api.coronavirus.data.gov.uk"
	DefaultNewsSources      = "bbc-news"
	DefaultPollInterval     = 300
	DefaultRefreshPerMinute = 6
	DefaultHTTPTimeout      = 10
)

var (
	errWeatherKeyRequired = errors.New("weather_key must be provided")
	errNewsKeyRequired    = errors.New("news_key must be provided")
	errCityRequired       = errors.New("city must be provided")
	errCityCodeRequired   = errors.New("city_code must be provided")
)

// Config хранит ключи API, местоположение и параметры работы будильника.
type Config struct {
	ListenAddr       string   `json:"listen_addr" yaml:"listen_addr"`
	WeatherKey       string   `json:"weather_key" yaml:"weather_key"`
	City             string   `json:"city" yaml:"city"`
	NewsKey          string   `json:"news_key" yaml:"news_key"`
	NewsSources      string   `json:"news_sources" yaml:"news_sources"`
	CityCode         string   `json:"city_code" yaml:"city_code"`
	PollInterval     int      `json:"poll_interval" yaml:"poll_interval"`
	RefreshPerMinute int      `json:"refresh_per_minute" yaml:"refresh_per_minute"`
	TTSCommand       []string `json:"tts_command" yaml:"tts_command"`
	DatabaseURL      string   `json:"database_url" yaml:"database_url"`
	WeatherURL       string   `json:"weather_url" yaml:"weather_url"`
	NewsURL          string   `json:"news_url" yaml:"news_url"`
	CasesURL         string   `json:"cases_url" yaml:"cases_url"`
	HTTPTimeout      int      `json:"http_timeout" yaml:"http_timeout"`
}

// Validate заполняет значения по умолчанию и проверяет обязательные поля,
// интервал опроса (не меньше 5 секунд) и корректность URL.
func (cfg *Config) Validate() error {
	cfg.applyDefaults()

	switch {
	case cfg.WeatherKey == "":
		return errWeatherKeyRequired
	case cfg.City == "":
		return errCityRequired
	case cfg.NewsKey == "":
		return errNewsKeyRequired
	case cfg.CityCode == "":
		return errCityCodeRequired
	}

	if cfg.PollInterval < 5 {
		return errors.New("poll interval must be ≥ 5 seconds")
	}
	if cfg.RefreshPerMinute < 1 {
		return errors.New("refresh_per_minute must be positive")
	}
	for _, u := range []string{cfg.WeatherURL, cfg.NewsURL, cfg.CasesURL} {
		if _, err := url.ParseRequestURI(u); err != nil {
			return fmt.Errorf("invalid API URL: %s", u)
		}
	}
	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.NewsSources == "" {
		cfg.NewsSources = DefaultNewsSources
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RefreshPerMinute == 0 {
		cfg.RefreshPerMinute = DefaultRefreshPerMinute
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.WeatherURL == "" {
		cfg.WeatherURL = DefaultWeatherURL
	}
	if cfg.NewsURL == "" {
		cfg.NewsURL = DefaultNewsURL
	}
	if cfg.CasesURL == "" {
		cfg.CasesURL = DefaultCasesURL
	}
}

// PollEvery возвращает интервал фонового обновления уведомлений.
func (cfg *Config) PollEvery() time.Duration {
	return time.Duration(cfg.PollInterval) * time.Second
}

// Timeout возвращает таймаут HTTP-клиента внешних API.
func (cfg *Config) Timeout() time.Duration {
	return time.Duration(cfg.HTTPTimeout) * time.Second
}

// LoadConfig читает файл по пути path и декодирует его в Config.
// Файлы .yaml и .yml разбираются как YAML, остальные как JSON.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode yaml config: %w", err)
		}
	default:
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode json config: %w", err)
		}
	}
	return &cfg, nil
}
