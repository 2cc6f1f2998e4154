// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

// Package thinkgear provides a Go implementation of the NeuroSky ThinkGear
// serial stream protocol spoken by TGAM-based EEG headsets.
//
// The package covers framing (sync search, length validation, checksum
// verification), payload decoding into typed data items (raw EEG samples,
// band powers, eSense indices, signal quality), frame construction for
// simulators and tests, and stream diagnostics.
//
// The byte protocol is the device's own: 0xAA 0xAA sync, one length byte
// (maximum 170), the payload, and a one's-complement-of-sum checksum byte.
package thinkgear

// Protocol framing bytes
const (
	SyncByte   = 0xAA // Two consecutive sync bytes start a frame
	ExcodeByte = 0x55 // Extended code level escape, may precede any row code
)

// Packet size limits
const (
	MaxPayloadSize = 170 // Length bytes above this abort the frame
	FrameOverhead  = 4   // 2 sync + 1 length + 1 checksum
)

// Payload row codes. Codes at or below CodeThreshold carry a single value
// byte; codes above it carry a length byte followed by that many value bytes.
const (
	CodeSignalQuality = 0x02 // POOR_SIGNAL, 0 (best) to 200 (no skin contact)
	CodeAttention     = 0x04 // eSense attention, 0-100
	CodeMeditation    = 0x05 // eSense meditation, 0-100
	CodeBlinkStrength = 0x16 // Blink strength, 0-255, firmware-dependent
	CodeRawEEG        = 0x80 // Raw EEG sample, 2 bytes big-endian signed
	CodeEEGPower      = 0x83 // ASIC_EEG_POWER, 8 bands x 3 bytes big-endian

	CodeThreshold = 0x7F // Highest single-byte-value code
)

// Multi-byte row sizes
const (
	RawEEGValueSize   = 2  // Bytes required for a raw EEG sample
	BandValueSize     = 3  // Bytes per band power value
	EEGPowerBlockSize = 24 // BandValueSize * NumBands
)

// Value ranges reported by the device
const (
	MaxEsenseValue    = 100      // Attention/meditation ceiling
	MaxSignalValue    = 200      // Signal quality ceiling, 200 = no contact
	MaxBandPowerValue = 0xFFFFFF // Band power values are 24-bit unsigned
)

// Framer states (internal)
const (
	awaitingSync1 = iota
	awaitingSync2
	awaitingLength
	awaitingPayload
	awaitingChecksum
)

// Band identifies one of the eight EEG frequency bands reported in an
// ASIC_EEG_POWER row. The ordinal value is the band's fixed slot position
// within the 24-byte block.
type Band int

// Band values, in wire order
const (
	BandDelta     Band = iota // 0.5 - 2.75 Hz
	BandTheta                 // 3.5 - 6.75 Hz
	BandLowAlpha              // 7.5 - 9.25 Hz
	BandHighAlpha             // 10 - 11.75 Hz
	BandLowBeta               // 13 - 16.75 Hz
	BandHighBeta              // 18 - 29.75 Hz
	BandLowGamma              // 31 - 39.75 Hz
	BandMidGamma              // 41 - 49.75 Hz

	NumBands = 8
)

var bandNames = [NumBands]string{
	"Delta", "Theta", "Low-Alpha", "High-Alpha",
	"Low-Beta", "High-Beta", "Low-Gamma", "Mid-Gamma",
}

// String returns the band's conventional name
func (b Band) String() string {
	if b < 0 || int(b) >= NumBands {
		return "UNKNOWN"
	}
	return bandNames[b]
}
