// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/taskdeck/taskdeck/internal/agent"
	"github.com/taskdeck/taskdeck/internal/provider"
	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// Config is the top-level Taskdeck configuration.
type Config struct {
	DefaultProvider string                    `mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `mapstructure:"providers"`
	Retry           RetryConfig               `mapstructure:"retry"`
	Transport       TransportConfig           `mapstructure:"transport"`
	Prompt          PromptConfig              `mapstructure:"prompt"`
	Storage         StorageConfig             `mapstructure:"storage"`
	Skills          SkillsConfig              `mapstructure:"skills"`
}

// ProviderConfig describes one chat-completion endpoint.
type ProviderConfig struct {
	BaseURL     string            `mapstructure:"base_url"`
	Model       string            `mapstructure:"model"`
	APIKeyEnv   string            `mapstructure:"api_key_env"`
	Headers     map[string]string `mapstructure:"headers"`
	RequiresKey bool              `mapstructure:"requires_key"`
}

// RetryConfig tunes the transport's backoff schedule.
type RetryConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
	Multiplier   float64       `mapstructure:"multiplier"`
}

// TransportConfig tunes the HTTP chat transport.
type TransportConfig struct {
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
}

// PromptConfig bounds how much project context is quoted in prompts.
type PromptConfig struct {
	MaxContextFiles int `mapstructure:"max_context_files"`
	MaxFileChars    int `mapstructure:"max_file_chars"`
}

// StorageConfig selects where execution history is persisted.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// SkillsConfig locates the user's skill library.
type SkillsConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix TASKDECK_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("default_provider", "openrouter")
	v.SetDefault("retry.max_retries", 5)
	v.SetDefault("retry.initial_delay", "1s")
	v.SetDefault("retry.max_delay", "60s")
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("transport.attempt_timeout", "60s")
	v.SetDefault("transport.temperature", 0.7)
	v.SetDefault("transport.max_tokens", 8192)
	v.SetDefault("prompt.max_context_files", 8)
	v.SetDefault("prompt.max_file_chars", 5000)
	v.SetDefault("storage.backend", "sqlite")

	// Environment
	v.SetEnvPrefix("TASKDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, tderr.Errorf(tderr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, tderr.Errorf(tderr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, tderr.Errorf(tderr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns all
// validation errors found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateProviders()...)
	errs = append(errs, c.validateRetry()...)
	errs = append(errs, c.validateTransport()...)
	errs = append(errs, c.validatePrompt()...)
	errs = append(errs, c.validateStorage()...)

	return errs
}

func (c *Config) validateProviders() []error {
	var errs []error

	for name, p := range c.Providers {
		if p.BaseURL == "" {
			errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
				"config: providers.%s.base_url must not be empty", name))
		} else if u, err := url.Parse(p.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
				"config: providers.%s.base_url must be an http(s) URL, got %q", name, p.BaseURL))
		}
		if p.Model == "" {
			errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
				"config: providers.%s.model must not be empty", name))
		}
		if p.RequiresKey && p.APIKeyEnv == "" {
			errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
				"config: providers.%s requires a key but sets no api_key_env", name))
		}
	}

	if c.DefaultProvider == "" {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: default_provider must not be empty"))
	} else if c.Providers != nil {
		// Only cross-reference when a providers section exists. A nil map
		// means defaults only (fresh install), where the built-in provider
		// table applies.
		if _, ok := c.Providers[c.DefaultProvider]; !ok && !isBuiltin(c.DefaultProvider) {
			errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
				"config: default_provider %q is not configured", c.DefaultProvider))
		}
	}

	return errs
}

func (c *Config) validateRetry() []error {
	var errs []error

	if c.Retry.MaxRetries < 0 {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: retry.max_retries must not be negative, got %d", c.Retry.MaxRetries))
	}
	if c.Retry.InitialDelay <= 0 {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: retry.initial_delay must be greater than 0, got %s", c.Retry.InitialDelay))
	}
	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: retry.max_delay %s must not be smaller than retry.initial_delay %s",
			c.Retry.MaxDelay, c.Retry.InitialDelay))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: retry.multiplier must be at least 1, got %g", c.Retry.Multiplier))
	}

	return errs
}

func (c *Config) validateTransport() []error {
	var errs []error

	if c.Transport.AttemptTimeout <= 0 {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: transport.attempt_timeout must be greater than 0, got %s", c.Transport.AttemptTimeout))
	}
	if c.Transport.Temperature < 0 || c.Transport.Temperature > 2 {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: transport.temperature must be between 0 and 2, got %g", c.Transport.Temperature))
	}
	if c.Transport.MaxTokens <= 0 {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: transport.max_tokens must be greater than 0, got %d", c.Transport.MaxTokens))
	}

	return errs
}

func (c *Config) validatePrompt() []error {
	var errs []error

	if c.Prompt.MaxContextFiles <= 0 {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: prompt.max_context_files must be greater than 0, got %d", c.Prompt.MaxContextFiles))
	}
	if c.Prompt.MaxFileChars <= 0 {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: prompt.max_file_chars must be greater than 0, got %d", c.Prompt.MaxFileChars))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, tderr.Errorf(tderr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite, memory], got %q", c.Storage.Backend))
	}

	return errs
}

// ProviderTable merges the configured providers over the built-in defaults
// and returns them as registry configs, with the default provider first.
func (c *Config) ProviderTable() []provider.Config {
	byID := make(map[string]provider.Config)
	var order []string

	for _, p := range provider.Defaults() {
		byID[p.ID] = p
		order = append(order, p.ID)
	}
	for name, p := range c.Providers {
		if _, known := byID[name]; !known {
			order = append(order, name)
		}
		byID[name] = provider.Config{
			ID:          name,
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			APIKeyEnv:   p.APIKeyEnv,
			Headers:     p.Headers,
			RequiresKey: p.RequiresKey,
		}
	}

	out := make([]provider.Config, 0, len(order))
	if def, ok := byID[c.DefaultProvider]; ok {
		out = append(out, def)
	}
	for _, id := range order {
		if id == c.DefaultProvider {
			continue
		}
		out = append(out, byID[id])
	}
	return out
}

// RetryPolicy converts the retry section into the transport's policy type.
func (c *Config) RetryPolicy() agent.RetryPolicy {
	return agent.RetryPolicy{
		MaxRetries:   c.Retry.MaxRetries,
		InitialDelay: c.Retry.InitialDelay,
		MaxDelay:     c.Retry.MaxDelay,
		Multiplier:   c.Retry.Multiplier,
	}
}

// PromptLimits converts the prompt section into the agent's context bounds.
func (c *Config) PromptLimits() agent.PromptLimits {
	return agent.PromptLimits{
		MaxContextFiles: c.Prompt.MaxContextFiles,
		MaxFileChars:    c.Prompt.MaxFileChars,
	}
}

// TransportOptions converts the transport section into transport options.
func (c *Config) TransportOptions() agent.TransportOptions {
	return agent.TransportOptions{
		AttemptTimeout: c.Transport.AttemptTimeout,
		Temperature:    c.Transport.Temperature,
		MaxTokens:      c.Transport.MaxTokens,
	}
}

func isBuiltin(id string) bool {
	for _, p := range provider.Defaults() {
		if p.ID == id {
			return true
		}
	}
	return false
}
