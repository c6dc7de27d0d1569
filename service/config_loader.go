package service

import (
	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/internal/config"
)

// ConfigurationLoaderImpl resolves the effective configuration for a run
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from an explicit path, or discovers one
// relative to targetPath when path is empty
func (c *ConfigurationLoaderImpl) LoadConfig(path, targetPath string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, targetPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// LoadDefaultConfig returns the discovered configuration or the built-in
// defaults when discovery fails
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *config.Config {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err == nil && cfg.Validate() == nil {
		return cfg
	}
	return config.DefaultConfig()
}
