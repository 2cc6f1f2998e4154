// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

import "fmt"

// BuildPayload concatenates rows into one frame payload
func BuildPayload(rows ...[]byte) ([]byte, error) {
	total := 0
	for _, row := range rows {
		total += len(row)
	}
	if total > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", total, MaxPayloadSize)
	}
	payload := make([]byte, 0, total)
	for _, row := range rows {
		payload = append(payload, row...)
	}
	return payload, nil
}

// BuildFrame wraps a payload in wire framing: sync pair, length byte,
// payload, checksum
func BuildFrame(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}
	frame := make([]byte, 0, len(payload)+FrameOverhead)
	frame = append(frame, SyncByte, SyncByte, byte(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, Checksum(payload))
	return frame, nil
}
