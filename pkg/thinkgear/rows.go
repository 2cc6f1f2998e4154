// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

// Row builder functions create payload rows ready for framing. These are
// the write-side counterparts of the decoder's handler table, used by the
// simulator and by tests; a headset itself is the normal producer.

// RowSignalQuality creates a POOR_SIGNAL row (0x02).
// Value range 0 (best contact) to 200 (no skin contact).
func RowSignalQuality(value uint8) []byte {
	return []byte{CodeSignalQuality, value}
}

// RowAttention creates an eSense attention row (0x04).
// Value range 0-100; 0 means "undetectable", not a zero reading.
func RowAttention(value uint8) []byte {
	return []byte{CodeAttention, value}
}

// RowMeditation creates an eSense meditation row (0x05).
// Value range 0-100; 0 means "undetectable", not a zero reading.
func RowMeditation(value uint8) []byte {
	return []byte{CodeMeditation, value}
}

// RowBlinkStrength creates a blink strength row (0x16).
// Value range 0-255.
func RowBlinkStrength(value uint8) []byte {
	return []byte{CodeBlinkStrength, value}
}

// RowRawEEG creates a raw sample row (0x80) carrying one big-endian signed
// 16-bit sample
func RowRawEEG(sample int16) []byte {
	return []byte{CodeRawEEG, RawEEGValueSize, byte(uint16(sample) >> 8), byte(sample)}
}

// RowEEGPower creates an ASIC_EEG_POWER row (0x83) from band values in wire
// order (Delta through Mid-Gamma). Values are masked to their 24-bit range.
func RowEEGPower(bands [NumBands]uint32) []byte {
	row := make([]byte, 0, 2+EEGPowerBlockSize)
	row = append(row, CodeEEGPower, EEGPowerBlockSize)
	for _, v := range bands {
		v &= MaxBandPowerValue
		row = append(row, byte(v>>16), byte(v>>8), byte(v))
	}
	return row
}
