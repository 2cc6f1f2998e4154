// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

// Package metrics aggregates decoded headset data into session records,
// rolling windows and derived indices. Nothing here touches the wire;
// consumers feed decoded items in and read aggregates out.
package metrics

// Window sizes for rolling views of the stream. Raw EEG arrives at 512 Hz,
// so RawRingSize holds one second of samples; the slower eSense and band
// values arrive at 1 Hz.
const (
	RawRingSize   = 512
	TrendRingSize = 100
)

// Ring is a fixed-capacity overwrite-oldest buffer of float64 readings.
// Not safe for concurrent use.
type Ring struct {
	values []float64
	next   int
	count  int
}

// NewRing creates a ring holding up to size values. Size must be positive.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{values: make([]float64, size)}
}

// Push adds a value, evicting the oldest once the ring is full
func (r *Ring) Push(v float64) {
	r.values[r.next] = v
	r.next = (r.next + 1) % len(r.values)
	if r.count < len(r.values) {
		r.count++
	}
}

// Len returns the number of values currently held
func (r *Ring) Len() int {
	return r.count
}

// Cap returns the ring's capacity
func (r *Ring) Cap() int {
	return len(r.values)
}

// Last returns the most recent value, or false when the ring is empty
func (r *Ring) Last() (float64, bool) {
	if r.count == 0 {
		return 0, false
	}
	idx := (r.next - 1 + len(r.values)) % len(r.values)
	return r.values[idx], true
}

// Values returns the held values oldest first as a fresh slice
func (r *Ring) Values() []float64 {
	out := make([]float64, 0, r.count)
	if r.count < len(r.values) {
		out = append(out, r.values[:r.count]...)
		return out
	}
	out = append(out, r.values[r.next:]...)
	out = append(out, r.values[:r.next]...)
	return out
}

// Reset empties the ring without releasing its storage
func (r *Ring) Reset() {
	r.next = 0
	r.count = 0
}
