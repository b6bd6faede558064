// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent

import (
	"context"
	"time"
)

// SetSleepFunc replaces the retry sleep so tests can record scheduled
// delays without waiting them out.
func (t *Transport) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) {
	t.sleep = fn
}

// Transport exposes the underlying transport for test configuration.
func (c *Client) Transport() *Transport {
	return c.transport
}
