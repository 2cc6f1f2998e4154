// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

// Option is a functional option for configuring a Decoder (and the decoder
// inside a Stream).
type Option func(*Decoder)

// WithStrictPayload makes truncated rows a decode error instead of being
// silently tolerated. The default tolerant behavior matches the device's
// reference parsers: a multi-byte row whose declared length exceeds the
// remaining payload is truncated to what remains, and a single-byte row
// with no value byte left reads as zero.
//
// Example:
//
//	dec := thinkgear.NewDecoder(thinkgear.WithStrictPayload())
func WithStrictPayload() Option {
	return func(d *Decoder) {
		d.strict = true
	}
}

// WithHandler registers or replaces the handler for a row code. Codes at or
// below CodeThreshold receive exactly one value byte; codes above it
// receive up to their declared length.
//
// Example:
//
//	dec := thinkgear.NewDecoder(
//	    thinkgear.WithHandler(0x86, decodeRRInterval),
//	)
func WithHandler(code byte, handler RowHandler) Option {
	return func(d *Decoder) {
		if handler != nil {
			d.handlers[code] = handler
		}
	}
}

// WithBlinkDetection enables decoding of blink strength rows (0x16). Blink
// rows are firmware-dependent and absent from many headsets, so they are
// not in the default table.
//
// Example:
//
//	stream := thinkgear.NewStream(sink, thinkgear.WithBlinkDetection())
func WithBlinkDetection() Option {
	return WithHandler(CodeBlinkStrength, decodeBlinkStrength)
}
