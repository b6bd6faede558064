// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/provider"
	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// Message roles in the chat-completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the conversation sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// chatResponse is the subset of the response body the client needs.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// httpError carries the status, body, and rate-limit hint of a non-2xx reply.
type httpError struct {
	status     int
	body       string
	retryAfter string
}

func (e *httpError) Error() string {
	if e.body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.status, e.body)
	}
	return fmt.Sprintf("HTTP %d", e.status)
}

const (
	// DefaultAttemptTimeout bounds a single HTTP attempt so a hung provider
	// cannot stall the serializer indefinitely.
	DefaultAttemptTimeout = 60 * time.Second

	defaultTemperature = 0.7
	defaultMaxTokens   = 8192

	maxResponseBytes = 10 << 20
)

// TransportOptions tunes the chat transport. Zero values select defaults.
type TransportOptions struct {
	AttemptTimeout time.Duration
	Temperature    float64
	MaxTokens      int
	HTTPClient     *http.Client
}

// Transport performs chat-completion calls with retry, backoff, and
// circuit-breaker accounting. All reliability state lives in the breaker;
// the transport itself is stateless between calls.
type Transport struct {
	client         *http.Client
	policy         RetryPolicy
	breaker        *CircuitBreaker
	attemptTimeout time.Duration
	temperature    float64
	maxTokens      int
	sleep          func(ctx context.Context, d time.Duration) error
}

// NewTransport creates a Transport using the given policy and breaker.
func NewTransport(policy RetryPolicy, breaker *CircuitBreaker, opts TransportOptions) *Transport {
	t := &Transport{
		client:         opts.HTTPClient,
		policy:         policy,
		breaker:        breaker,
		attemptTimeout: opts.AttemptTimeout,
		temperature:    opts.Temperature,
		maxTokens:      opts.MaxTokens,
		sleep:          sleepCtx,
	}
	if t.client == nil {
		t.client = &http.Client{}
	}
	if t.attemptTimeout <= 0 {
		t.attemptTimeout = DefaultAttemptTimeout
	}
	if t.temperature == 0 {
		t.temperature = defaultTemperature
	}
	if t.maxTokens <= 0 {
		t.maxTokens = defaultMaxTokens
	}
	return t
}

// Complete sends the conversation to the provider and returns the assistant
// text. It makes up to MaxRetries+1 attempts, honoring Retry-After on 429,
// backing off exponentially on 5xx and network failures, and stopping
// immediately on other 4xx. Every attempt outcome is recorded against the
// circuit breaker; an open breaker fails fast before any network call.
func (t *Transport) Complete(ctx context.Context, cfg provider.Config, apiKey string, msgs []Message) (content string, attempts int, err error) {
	if t.breaker.IsOpen(cfg.ID) {
		return "", 0, tderr.New(
			tderr.CodeProviderCircuitOpen,
			fmt.Sprintf("provider %s is temporarily suspended after repeated failures; retry in about %s",
				cfg.ID, t.breaker.RetryIn(cfg.ID).Round(time.Second)),
			tderr.FieldProvider(cfg.ID),
		)
	}

	var (
		lastErr error
		delay   time.Duration
	)

	for attempt := 0; attempt <= t.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if serr := t.sleep(ctx, delay); serr != nil {
				return "", attempts, tderr.Wrapf(serr, tderr.CodeProviderUpstreamFailure,
					"request to %s canceled while waiting to retry", cfg.ID)
			}
		}

		attempts++
		content, err := t.attempt(ctx, cfg, apiKey, msgs)
		if err == nil {
			t.breaker.RecordSuccess(cfg.ID)
			return content, attempts, nil
		}

		t.breaker.RecordFailure(cfg.ID)
		lastErr = err

		var herr *httpError
		switch {
		case errors.As(err, &herr) && herr.status == http.StatusTooManyRequests:
			delay = t.policy.RetryAfterDelay(herr.retryAfter, attempt)
		case errors.As(err, &herr) && herr.status >= 400 && herr.status < 500:
			// Client errors other than 429 are not retryable.
			return "", attempts, tderr.Wrapf(err, tderr.CodeProviderRequestInvalid,
				"provider %s rejected the request", cfg.ID)
		default:
			delay = t.policy.Delay(attempt)
		}
	}

	var herr *httpError
	if errors.As(lastErr, &herr) && herr.status == http.StatusTooManyRequests {
		return "", attempts, tderr.Wrapf(lastErr, tderr.CodeProviderRateLimited,
			"provider %s rate limited; gave up after %d attempts", cfg.ID, attempts)
	}
	return "", attempts, tderr.Wrapf(lastErr, tderr.CodeProviderUpstreamFailure,
		"provider %s unavailable after %d attempts", cfg.ID, attempts)
}

// attempt performs one HTTP POST. Network errors and malformed 2xx bodies
// come back as plain errors (retryable); non-2xx statuses come back as
// *httpError for classification by the retry loop.
func (t *Transport) attempt(ctx context.Context, cfg provider.Config, apiKey string, msgs []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       cfg.Model,
		Messages:    msgs,
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		return "", tderr.Wrapf(err, tderr.CodeProviderRequestInvalid, "encoding request for %s", cfg.ID)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, t.attemptTimeout)
	defer cancel()

	url := strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", tderr.Wrapf(err, tderr.CodeProviderRequestInvalid, "building request for %s", cfg.ID)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &httpError{
			status:     resp.StatusCode,
			body:       strings.TrimSpace(string(raw)),
			retryAfter: resp.Header.Get("Retry-After"),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// A malformed 2xx body is handled like a network failure so the
		// retry loop gets another attempt at a clean response.
		return "", fmt.Errorf("decoding response from %s: %w", cfg.ID, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response from %s contained no choices", cfg.ID)
	}
	return parsed.Choices[0].Message.Content, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
