// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

// PacketHandler receives each checksum-valid packet as it is framed
type PacketHandler func(p *Packet)

// Framer converts an arbitrarily-chunked byte stream into checksum-valid
// packets. Corruption on the link is a steady-state condition: bad sync
// bytes, oversized lengths and checksum mismatches are dropped silently and
// the framer resynchronizes on the next 0xAA 0xAA pair. Drops are recorded
// in Statistics but never surfaced as errors.
//
// A Framer is not safe for concurrent use. Each byte stream needs its own
// instance; Feed mutates internal state non-atomically.
type Framer struct {
	state       int
	declaredLen int
	payload     []byte
	discarding  bool
	handler     PacketHandler
	stats       *Statistics
}

// NewFramer creates a framer that passes each valid packet to handler.
// A nil handler is allowed; packets are then counted and discarded.
func NewFramer(handler PacketHandler) *Framer {
	return &Framer{
		state:   awaitingSync1,
		handler: handler,
		stats:   NewStatistics(),
	}
}

// Stats returns the framer's diagnostic counters
func (f *Framer) Stats() *Statistics {
	return f.stats
}

// Reset discards any partially-accumulated frame and returns to sync
// search. Statistics are retained; use Stats().Reset() to clear those.
func (f *Framer) Reset() {
	f.state = awaitingSync1
	f.declaredLen = 0
	f.payload = nil
	f.discarding = false
}

// Feed appends bytes to the framer and advances the state machine as far as
// the data permits. Partial frames persist across calls: a packet may span
// any number of Feed calls, and a call may complete any number of packets.
// Feed never blocks and never returns an error; see the type comment for
// how corruption is handled.
func (f *Framer) Feed(data []byte) {
	f.stats.BytesConsumed += uint64(len(data))
	for _, b := range data {
		f.feedByte(b)
	}
	f.stats.touch()
}

// feedByte advances the state machine by one byte
func (f *Framer) feedByte(b byte) {
	switch f.state {
	case awaitingSync1:
		if b == SyncByte {
			f.state = awaitingSync2
		} else {
			f.noteDiscard()
		}

	case awaitingSync2:
		if b == SyncByte {
			f.state = awaitingLength
			f.discarding = false
		} else {
			// The byte is consumed without reconsidering it as a new
			// sync candidate. That costs at most one frame of detection
			// latency on pathological input and matches the device's
			// reference parsers.
			f.noteDiscard()
			f.state = awaitingSync1
		}

	case awaitingLength:
		if int(b) > MaxPayloadSize {
			f.stats.OversizeLengths++
			f.state = awaitingSync1
			return
		}
		f.declaredLen = int(b)
		f.payload = make([]byte, 0, f.declaredLen)
		if f.declaredLen == 0 {
			f.state = awaitingChecksum
		} else {
			f.state = awaitingPayload
		}

	case awaitingPayload:
		f.payload = append(f.payload, b)
		if len(f.payload) >= f.declaredLen {
			f.state = awaitingChecksum
		}

	case awaitingChecksum:
		payload := f.payload
		f.payload = nil
		f.state = awaitingSync1
		if VerifyChecksum(payload, b) {
			f.stats.FramesDecoded++
			if f.handler != nil {
				f.handler(NewPacket(payload, b))
			}
		} else {
			f.stats.ChecksumFailures++
		}
	}
}

// noteDiscard counts one dropped byte, opening a new sync-loss run if the
// previous byte was part of a frame
func (f *Framer) noteDiscard() {
	if !f.discarding {
		f.discarding = true
		f.stats.SyncLosses++
	}
	f.stats.DiscardedBytes++
}
