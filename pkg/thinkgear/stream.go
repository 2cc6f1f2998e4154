// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

// ItemHandler receives decoded data items in stream order
type ItemHandler func(item DataItem)

// Stream couples a Framer and a Decoder into the usual consumption shape:
// push bytes in with Feed, receive typed items through the handler. Callers
// that need per-packet access (raw logging, validation batches) use Framer
// and Decoder directly instead.
//
// Like Framer, a Stream is single-goroutine; one instance per byte source.
type Stream struct {
	framer  *Framer
	decoder *Decoder
	stats   *Statistics
	handler ItemHandler
}

// NewStream creates a stream delivering decoded items to handler. Options
// configure the embedded decoder. With WithStrictPayload, payload decode
// failures are counted in Stats and the faulty payload's remaining rows are
// dropped; items decoded before the fault are still delivered.
func NewStream(handler ItemHandler, opts ...Option) *Stream {
	s := &Stream{
		decoder: NewDecoder(opts...),
		handler: handler,
	}
	s.framer = NewFramer(s.handlePacket)
	s.stats = s.framer.Stats()
	return s
}

// Feed pushes raw bytes into the stream; see Framer.Feed for chunking and
// corruption semantics
func (s *Stream) Feed(data []byte) {
	s.framer.Feed(data)
}

// Stats returns the stream's diagnostic counters
func (s *Stream) Stats() *Statistics {
	return s.stats
}

// Reset discards any partial frame; see Framer.Reset
func (s *Stream) Reset() {
	s.framer.Reset()
}

// handlePacket decodes one framed payload and fans items out to the sink
func (s *Stream) handlePacket(p *Packet) {
	items, err := s.decoder.Decode(p.Payload())
	if err != nil {
		s.stats.DecodeErrors++
	}
	for _, item := range items {
		s.stats.ItemsEmitted++
		if s.handler != nil {
			s.handler(item)
		}
	}
}
