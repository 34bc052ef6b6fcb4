// Package config содержит логику чтения конфигурации клиента сборщика.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации клиента сборщика.
type Config struct {
	APIBaseURL         string `env:"API_BASE_URL"`
	SocketURL          string `env:"SOCKET_URL"`
	StatePath          string `env:"STATE_PATH"`
	HTTPTimeoutSeconds int    `env:"HTTP_TIMEOUT"`
	EmployeeID         string `env:"PICKER_EMPLOYEE_ID"`
	Password           string `env:"PICKER_PASSWORD"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envAPIBaseURL := cfg.APIBaseURL
	envSocketURL := cfg.SocketURL
	envStatePath := cfg.StatePath
	envHTTPTimeout := cfg.HTTPTimeoutSeconds
	envEmployeeID := cfg.EmployeeID
	envPassword := cfg.Password

	flag.StringVar(&cfg.APIBaseURL, "a", "http://localhost:5000", "base URL of the picker API")
	flag.StringVar(&cfg.SocketURL, "s", "", "URL of the realtime socket endpoint")
	flag.StringVar(&cfg.StatePath, "f", "picker-state.db", "path to the local state database")
	flag.IntVar(&cfg.HTTPTimeoutSeconds, "t", 10, "HTTP request timeout in seconds")
	flag.StringVar(&cfg.EmployeeID, "u", "", "employee id for login")
	flag.StringVar(&cfg.Password, "p", "", "password for login")

	flag.Parse()

	if envAPIBaseURL != "" {
		cfg.APIBaseURL = envAPIBaseURL
	}
	if envSocketURL != "" {
		cfg.SocketURL = envSocketURL
	}
	if envStatePath != "" {
		cfg.StatePath = envStatePath
	}
	if envHTTPTimeout != 0 {
		cfg.HTTPTimeoutSeconds = envHTTPTimeout
	}
	if envEmployeeID != "" {
		cfg.EmployeeID = envEmployeeID
	}
	if envPassword != "" {
		cfg.Password = envPassword
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:5000"
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 10
	}

	return cfg, nil
}
