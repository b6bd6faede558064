// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent

import (
	"strconv"
	"time"
)

// RetryPolicy governs the retry loop around a single chat call.
type RetryPolicy struct {
	MaxRetries   int           // retries after the initial attempt
	InitialDelay time.Duration // first backoff step
	MaxDelay     time.Duration // backoff and Retry-After cap
	Multiplier   float64       // exponential growth factor
}

// DefaultRetryPolicy returns the standard policy: one initial attempt plus
// five retries, 1s initial delay doubling up to 60s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2,
	}
}

// Delay returns the exponential backoff for the given zero-based attempt,
// capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := float64(p.InitialDelay)
	for i := 0; i < attempt; i++ {
		d *= p.Multiplier
		if time.Duration(d) >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if time.Duration(d) > p.MaxDelay {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// RetryAfterDelay computes the wait before the next attempt after a rate
// limit. A numeric Retry-After header value (integer seconds) wins over
// exponential backoff; anything else falls back to Delay(attempt). The
// result is always capped at MaxDelay.
func (p RetryPolicy) RetryAfterDelay(header string, attempt int) time.Duration {
	if header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
			d := time.Duration(secs) * time.Second
			if d > p.MaxDelay {
				return p.MaxDelay
			}
			return d
		}
	}
	return p.Delay(attempt)
}
