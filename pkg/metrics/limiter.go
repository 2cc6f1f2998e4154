// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package metrics

import "time"

// RateLimiter gates recurring output to at most once per interval. The
// headset repeats signal quality every second; consumers printing it
// straight through would drown everything else.
type RateLimiter struct {
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a limiter allowing one event per interval
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Allow reports whether an event may fire now, consuming the slot when
// it does
func (r *RateLimiter) Allow() bool {
	now := time.Now()
	if now.Sub(r.last) < r.interval {
		return false
	}
	r.last = now
	return true
}
