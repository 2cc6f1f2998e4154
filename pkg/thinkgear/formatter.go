// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

import "fmt"

// FormatPacket formats a framed packet into a human-readable string
func FormatPacket(p *Packet) string {
	timestamp := p.timestamp.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] len=%d checksum=0x%02X payload=% X", timestamp, p.Length(), p.checksum, p.payload)
	if !p.valid {
		result += " INVALID"
	}
	return result
}

// FormatDataItem formats a decoded item into a human-readable string
func FormatDataItem(item DataItem) string {
	switch item.Kind {
	case KindSignalQuality:
		return fmt.Sprintf("SIGNAL_QUALITY: %d (%s)", item.Value, ClassifySignal(uint8(item.Value)))
	case KindAttention:
		return fmt.Sprintf("ATTENTION: %d", item.Value)
	case KindMeditation:
		return fmt.Sprintf("MEDITATION: %d", item.Value)
	case KindRawEEG:
		return fmt.Sprintf("RAW_EEG: %d", item.Value)
	case KindBandPower:
		return fmt.Sprintf("BAND_POWER: %s = %d", item.Band, item.Value)
	case KindBlinkStrength:
		return fmt.Sprintf("BLINK_STRENGTH: %d", item.Value)
	default:
		return fmt.Sprintf("UNKNOWN: %d", item.Value)
	}
}
