// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent_test

import (
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/agent"
	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_ExponentialDelay(t *testing.T) {
	p := agent.DefaultRetryPolicy()

	assert.Equal(t, 1*time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))
	assert.Equal(t, 16*time.Second, p.Delay(4))
	assert.Equal(t, 32*time.Second, p.Delay(5))
}

func TestRetryPolicy_DelayCappedAtMax(t *testing.T) {
	p := agent.DefaultRetryPolicy()

	assert.Equal(t, 60*time.Second, p.Delay(6))
	assert.Equal(t, 60*time.Second, p.Delay(20))
}

func TestRetryPolicy_RetryAfterNumericWins(t *testing.T) {
	p := agent.DefaultRetryPolicy()

	// A numeric Retry-After overrides the exponential value for any attempt.
	assert.Equal(t, 2*time.Second, p.RetryAfterDelay("2", 0))
	assert.Equal(t, 2*time.Second, p.RetryAfterDelay("2", 4))
	assert.Equal(t, 0*time.Second, p.RetryAfterDelay("0", 3))
}

func TestRetryPolicy_RetryAfterCapped(t *testing.T) {
	p := agent.DefaultRetryPolicy()
	assert.Equal(t, 60*time.Second, p.RetryAfterDelay("3600", 0))
}

func TestRetryPolicy_RetryAfterNonNumericFallsBack(t *testing.T) {
	p := agent.DefaultRetryPolicy()

	assert.Equal(t, p.Delay(2), p.RetryAfterDelay("Wed, 21 Oct 2026 07:28:00 GMT", 2))
	assert.Equal(t, p.Delay(1), p.RetryAfterDelay("", 1))
	assert.Equal(t, p.Delay(0), p.RetryAfterDelay("-5", 0))
}
