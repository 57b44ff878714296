package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads a TOML configuration file on top of the defaults, fills
// credentials from the environment and validates the result. Values present
// in the file override defaults; everything else keeps its default.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	fillEnvVars(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// fillEnvVars overlays credentials from the environment, so secrets stay out
// of the config file.
func fillEnvVars(cfg *Config) {
	if v := os.Getenv(EnvSmtpUsername); v != "" {
		cfg.Smtp.Username = v
	}
	if v := os.Getenv(EnvSmtpPassword); v != "" {
		cfg.Smtp.Password = v
	}

	envCredentials := map[string][2]string{
		OAuth2ProviderGoogle: {EnvGoogleClientID, EnvGoogleClientSecret},
		OAuth2ProviderGitHub: {EnvGithubClientID, EnvGithubClientSecret},
	}
	for name, envs := range envCredentials {
		provider, ok := cfg.OAuth2Providers[name]
		if !ok {
			continue
		}
		if v := os.Getenv(envs[0]); v != "" {
			provider.ClientID = v
		}
		if v := os.Getenv(envs[1]); v != "" {
			provider.ClientSecret = v
		}
		cfg.OAuth2Providers[name] = provider
	}
}
