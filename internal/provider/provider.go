// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package provider

// Config describes a single LLM provider endpoint. Values are fixed at
// startup and never mutated afterwards.
type Config struct {
	// ID is the stable provider identifier used for credential lookup and
	// circuit-breaker scoping (e.g. "openrouter").
	ID string

	// BaseURL is the API root. The chat transport appends /chat/completions.
	BaseURL string

	// Model is the model name sent in the request body.
	Model string

	// APIKeyEnv names the environment variable consulted when no stored
	// credential exists.
	APIKeyEnv string

	// Headers are extra request headers sent on every call. OpenRouter uses
	// these for app attribution (HTTP-Referer, X-Title).
	Headers map[string]string

	// RequiresKey is false for local endpoints such as Ollama.
	RequiresKey bool
}

// Defaults returns the built-in provider table.
func Defaults() []Config {
	return []Config{
		{
			ID:        "openrouter",
			BaseURL:   "https://openrouter.ai/api/v1",
			Model:     "anthropic/claude-sonnet-4-5",
			APIKeyEnv: "OPENROUTER_API_KEY",
			Headers: map[string]string{
				"HTTP-Referer": "https://taskdeck.dev",
				"X-Title":      "Taskdeck",
			},
			RequiresKey: true,
		},
		{
			ID:          "openai",
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4.1",
			APIKeyEnv:   "OPENAI_API_KEY",
			RequiresKey: true,
		},
		{
			ID:          "ollama",
			BaseURL:     "http://localhost:11434/v1",
			Model:       "qwen2.5-coder",
			APIKeyEnv:   "OLLAMA_API_KEY",
			RequiresKey: false,
		},
	}
}
