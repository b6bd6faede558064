// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent

import (
	"sync"
	"time"
)

const (
	// breakerFailureThreshold is the consecutive-failure count that opens
	// a provider's circuit.
	breakerFailureThreshold = 5

	// breakerSuccessThreshold force-closes an open circuit early.
	breakerSuccessThreshold = 3

	// breakerResetTimeout is how long an open circuit stays open before a
	// query lets traffic through again.
	breakerResetTimeout = 60 * time.Second
)

// breakerState tracks one provider's failure history.
type breakerState struct {
	open          bool
	failureCount  int
	successCount  int
	lastFailureAt time.Time
}

// CircuitBreaker guards each provider behind a failure counter. It opens
// after breakerFailureThreshold consecutive failures and closes again
// either after breakerResetTimeout has elapsed since the last failure or
// after breakerSuccessThreshold consecutive successes.
//
// The timeout reset is evaluated lazily at query time; an open circuit
// that is never queried again never transitions back on its own.
type CircuitBreaker struct {
	mu           sync.Mutex
	states       map[string]*breakerState
	resetTimeout time.Duration
	nowFunc      func() time.Time // for testing
}

// NewCircuitBreaker creates a CircuitBreaker with the default reset timeout.
func NewCircuitBreaker() *CircuitBreaker {
	return &CircuitBreaker{
		states:       make(map[string]*breakerState),
		resetTimeout: breakerResetTimeout,
		nowFunc:      time.Now,
	}
}

// IsOpen reports whether requests to providerID are currently blocked.
// When the reset timeout has elapsed the circuit closes as a side effect
// and the next request goes through as a normal probe.
func (b *CircuitBreaker) IsOpen(providerID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(providerID)
	if !st.open {
		return false
	}

	if b.nowFunc().Sub(st.lastFailureAt) > b.resetTimeout {
		st.open = false
		st.failureCount = 0
		st.successCount = 0
		return false
	}
	return true
}

// RetryIn returns the approximate time until an open circuit resets.
// Zero when the circuit is closed.
func (b *CircuitBreaker) RetryIn(providerID string) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(providerID)
	if !st.open {
		return 0
	}

	remaining := b.resetTimeout - b.nowFunc().Sub(st.lastFailureAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordFailure counts a failed attempt against providerID, opening the
// circuit at the threshold.
func (b *CircuitBreaker) RecordFailure(providerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(providerID)
	st.failureCount++
	st.successCount = 0
	st.lastFailureAt = b.nowFunc()
	if st.failureCount >= breakerFailureThreshold {
		st.open = true
	}
}

// RecordSuccess counts a successful attempt for providerID. Three in a row
// force-close an open circuit.
func (b *CircuitBreaker) RecordSuccess(providerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(providerID)
	st.successCount++
	st.failureCount = 0
	if st.open && st.successCount >= breakerSuccessThreshold {
		st.open = false
		st.successCount = 0
	}
}

// Reset clears all per-provider state (test teardown).
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = make(map[string]*breakerState)
}

// SetNowFunc overrides the time source (for testing).
func (b *CircuitBreaker) SetNowFunc(fn func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nowFunc = fn
}

// state returns the lazily created entry for providerID.
// Caller must hold b.mu.
func (b *CircuitBreaker) state(providerID string) *breakerState {
	st, ok := b.states[providerID]
	if !ok {
		st = &breakerState{}
		b.states[providerID] = st
	}
	return st
}
