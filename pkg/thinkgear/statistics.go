// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

import (
	"fmt"
	"time"
)

// Statistics tracks stream health counters and rates. The framer and stream
// update the counters in place; none of the events they record are surfaced
// as errors anywhere else (the protocol has no negative acknowledgement),
// so these counters are the only visibility into link quality.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	BytesConsumed    uint64
	FramesDecoded    uint64
	ChecksumFailures uint64
	OversizeLengths  uint64
	SyncLosses       uint64 // Discard runs entered while hunting for sync
	DiscardedBytes   uint64 // Bytes dropped during those runs
	DecodeErrors     uint64 // Strict-mode payload decode failures
	ItemsEmitted     uint64 // Data items delivered to the consumer

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // resync + checksum + decode events/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// touch records activity for rate bookkeeping
func (s *Statistics) touch() {
	s.LastUpdateTime = time.Now()
}

// frameAttempts returns the number of complete frame candidates seen
func (s *Statistics) frameAttempts() uint64 {
	return s.FramesDecoded + s.ChecksumFailures + s.OversizeLengths
}

// CalculateRates recalculates FrameRate and ErrorRate from the elapsed time
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.FramesDecoded) / elapsed
		errorCount := s.ChecksumFailures + s.OversizeLengths + s.SyncLosses + s.DecodeErrors
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	attempts := s.frameAttempts()
	var validPercent, checksumPercent, oversizePercent float64
	if attempts > 0 {
		validPercent = float64(s.FramesDecoded) * 100.0 / float64(attempts)
		checksumPercent = float64(s.ChecksumFailures) * 100.0 / float64(attempts)
		oversizePercent = float64(s.OversizeLengths) * 100.0 / float64(attempts)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Stream Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Bytes Consumed:  %8d\n", s.BytesConsumed)
	result += fmt.Sprintf("Frames Decoded:  %8d (%.1f%%)\n", s.FramesDecoded, validPercent)

	if s.ChecksumFailures > 0 {
		result += fmt.Sprintf("Checksum Fails:  %8d (%.1f%%)\n", s.ChecksumFailures, checksumPercent)
	}
	if s.OversizeLengths > 0 {
		result += fmt.Sprintf("Oversize Length: %8d (%.1f%%)\n", s.OversizeLengths, oversizePercent)
	}
	if s.SyncLosses > 0 {
		result += fmt.Sprintf("Sync Losses:     %8d (%d bytes dropped)\n", s.SyncLosses, s.DiscardedBytes)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d\n", s.DecodeErrors)
	}

	result += fmt.Sprintf("Items Emitted:   %8d\n", s.ItemsEmitted)
	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "=====================================\n"

	return result
}

// Reset resets all counters and rates
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.BytesConsumed = 0
	s.FramesDecoded = 0
	s.ChecksumFailures = 0
	s.OversizeLengths = 0
	s.SyncLosses = 0
	s.DiscardedBytes = 0
	s.DecodeErrors = 0
	s.ItemsEmitted = 0
	s.FrameRate = 0
	s.ErrorRate = 0
}
