// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

import "fmt"

// ItemKind identifies the type of a decoded data item
type ItemKind int

// Item kinds
const (
	KindSignalQuality ItemKind = iota
	KindRawEEG
	KindAttention
	KindMeditation
	KindBandPower
	KindBlinkStrength
)

var kindNames = map[ItemKind]string{
	KindSignalQuality: "SIGNAL_QUALITY",
	KindRawEEG:        "RAW_EEG",
	KindAttention:     "ATTENTION",
	KindMeditation:    "MEDITATION",
	KindBandPower:     "BAND_POWER",
	KindBlinkStrength: "BLINK_STRENGTH",
}

// String returns the item kind's protocol name
func (k ItemKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// DataItem is one decoded datum from a payload row. Value holds the row's
// numeric reading: 0-200 for signal quality, 0-100 for attention and
// meditation, a signed 16-bit sample for raw EEG, a 24-bit unsigned power
// for bands, 0-255 for blink strength. Band is meaningful only when Kind is
// KindBandPower.
type DataItem struct {
	Kind  ItemKind
	Band  Band
	Value int32
}

// RowHandler decodes one payload row into zero or more items. The value
// slice holds the row's value bytes: exactly one byte for single-byte codes
// (zero-filled when the payload ran out in tolerant mode), and up to the
// declared length for multi-byte codes. excode is the row's extended code
// level, the count of leading 0x55 bytes; no current device firmware uses
// levels above zero, so the shipped handlers ignore it.
type RowHandler func(excode int, value []byte) []DataItem

// Decoder interprets validated payload buffers as sequences of code-tagged
// rows and emits typed data items. Decoding is a pure function of the
// payload and the decoder's fixed configuration; a Decoder may be shared by
// callers that do not mutate it after construction.
//
// The code-to-handler table drives all row interpretation. The default
// table recognizes signal quality (0x02), attention (0x04), meditation
// (0x05), raw EEG (0x80) and the eight-band power block (0x83). Unknown
// codes are consumed without emitting items so that one unrecognized row
// never desynchronizes the rest of the payload.
type Decoder struct {
	strict   bool
	handlers map[byte]RowHandler
}

// NewDecoder creates a payload decoder with the default handler table,
// then applies any options
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{handlers: defaultHandlers()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// defaultHandlers builds the stock code-to-handler table
func defaultHandlers() map[byte]RowHandler {
	return map[byte]RowHandler{
		CodeSignalQuality: decodeSignalQuality,
		CodeAttention:     decodeAttention,
		CodeMeditation:    decodeMeditation,
		CodeRawEEG:        decodeRawEEG,
		CodeEEGPower:      decodeEEGPower,
	}
}

// Decode scans one payload and returns the decoded items in row order.
//
// In the default tolerant mode the error is always nil: short rows are
// truncated or zero-filled and unknown codes are skipped, matching device
// behavior on a lossy link. With WithStrictPayload a truncated row stops
// decoding and returns an error alongside the items decoded before the
// fault.
func (d *Decoder) Decode(payload []byte) ([]DataItem, error) {
	var items []DataItem
	i := 0
	for i < len(payload) {
		// Count and skip the extended code level run. The count only has
		// to be tracked to keep the offset aligned.
		excode := 0
		for i < len(payload) && payload[i] == ExcodeByte {
			excode++
			i++
		}
		if i >= len(payload) {
			break
		}

		code := payload[i]
		i++

		var value []byte
		if code > CodeThreshold {
			// Multi-byte row: length byte, then value bytes
			if i >= len(payload) {
				if d.strict {
					return items, fmt.Errorf("truncated payload: code 0x%02X has no length byte", code)
				}
				break
			}
			vlen := int(payload[i])
			i++
			end := i + vlen
			if end > len(payload) {
				if d.strict {
					return items, fmt.Errorf("truncated payload: code 0x%02X declares %d value bytes, %d remain",
						code, vlen, len(payload)-i)
				}
				end = len(payload)
			}
			value = payload[i:end]
			i = end
		} else {
			// Single-byte row
			if i >= len(payload) {
				if d.strict {
					return items, fmt.Errorf("truncated payload: code 0x%02X has no value byte", code)
				}
				value = []byte{0}
			} else {
				value = payload[i : i+1]
				i++
			}
		}

		if handler, ok := d.handlers[code]; ok {
			items = append(items, handler(excode, value)...)
		}
	}
	return items, nil
}

// decodeSignalQuality handles POOR_SIGNAL rows (0x02)
func decodeSignalQuality(_ int, value []byte) []DataItem {
	return []DataItem{{Kind: KindSignalQuality, Value: int32(value[0])}}
}

// decodeAttention handles eSense attention rows (0x04)
func decodeAttention(_ int, value []byte) []DataItem {
	return []DataItem{{Kind: KindAttention, Value: int32(value[0])}}
}

// decodeMeditation handles eSense meditation rows (0x05)
func decodeMeditation(_ int, value []byte) []DataItem {
	return []DataItem{{Kind: KindMeditation, Value: int32(value[0])}}
}

// decodeBlinkStrength handles blink strength rows (0x16). Not in the
// default table; enable with WithBlinkDetection.
func decodeBlinkStrength(_ int, value []byte) []DataItem {
	return []DataItem{{Kind: KindBlinkStrength, Value: int32(value[0])}}
}

// decodeRawEEG handles raw sample rows (0x80). The sample is the first two
// value bytes, big-endian signed; shorter rows emit nothing.
func decodeRawEEG(_ int, value []byte) []DataItem {
	if len(value) < RawEEGValueSize {
		return nil
	}
	sample := int16(uint16(value[0])<<8 | uint16(value[1]))
	return []DataItem{{Kind: KindRawEEG, Value: int32(sample)}}
}

// decodeEEGPower handles ASIC_EEG_POWER rows (0x83): eight 3-byte
// big-endian unsigned band powers in fixed band order. Rows shorter than
// the full block emit nothing.
func decodeEEGPower(_ int, value []byte) []DataItem {
	if len(value) < EEGPowerBlockSize {
		return nil
	}
	items := make([]DataItem, 0, NumBands)
	for band := 0; band < NumBands; band++ {
		off := band * BandValueSize
		v := uint32(value[off])<<16 | uint32(value[off+1])<<8 | uint32(value[off+2])
		items = append(items, DataItem{Kind: KindBandPower, Band: Band(band), Value: int32(v)})
	}
	return items
}
