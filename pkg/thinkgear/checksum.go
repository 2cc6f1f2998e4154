// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

// Checksum computes the ThinkGear payload checksum: the one's complement of
// the low byte of the sum of all payload bytes
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return ^sum
}

// VerifyChecksum reports whether checksum matches the payload
func VerifyChecksum(payload []byte, checksum byte) bool {
	return Checksum(payload) == checksum
}
