// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

import "time"

// Packet represents one framed ThinkGear payload. Packets handed out by the
// Framer always have a verified checksum; NewPacket computes validity for
// packets built directly in tests or tooling.
type Packet struct {
	payload   []byte
	checksum  byte
	valid     bool
	timestamp time.Time
}

// NewPacket creates a packet from a payload and its checksum byte
func NewPacket(payload []byte, checksum byte) *Packet {
	return &Packet{
		payload:   payload,
		checksum:  checksum,
		valid:     VerifyChecksum(payload, checksum),
		timestamp: time.Now(),
	}
}

// Payload returns the packet's payload bytes
func (p *Packet) Payload() []byte {
	return p.payload
}

// Length returns the payload length in bytes
func (p *Packet) Length() int {
	return len(p.payload)
}

// Checksum returns the checksum byte received with the packet
func (p *Packet) Checksum() byte {
	return p.checksum
}

// Valid reports whether the checksum matched the payload
func (p *Packet) Valid() bool {
	return p.valid
}

// Timestamp returns the packet's framing timestamp
func (p *Packet) Timestamp() time.Time {
	return p.timestamp
}
