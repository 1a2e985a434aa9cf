package config

import (
	"fmt"
	"strings"

	"github.com/danmuck/rangephy/internal/numerology"
)

// ServiceConfig configures the capacity HTTP service.
type ServiceConfig struct {
	Name              string   `toml:"name"`
	Addr              string   `toml:"addr"`
	CorsOrigins       []string `toml:"cors_origins"`
	Metrics           bool     `toml:"metrics"`
	DefaultNumerology uint32   `toml:"default_numerology"`
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:    "capacityd",
		Addr:    ":9300",
		Metrics: true,
	}
}

func LoadServiceConfig(path string) (ServiceConfig, error) {
	var cfg ServiceConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServiceConfig{}, err
	}
	if cfg.Name == "" {
		cfg.Name = "capacityd"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9300"
	}
	if err := ValidateServiceConfig(cfg); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

func ValidateServiceConfig(cfg ServiceConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("service config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("service config missing addr")
	}
	if _, err := numerology.Lookup(cfg.DefaultNumerology); err != nil {
		return fmt.Errorf("service config default_numerology: %w", err)
	}
	for i, origin := range cfg.CorsOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors_origins[%d] is empty", i)
		}
	}
	return nil
}
