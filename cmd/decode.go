// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

// decodingFramer composes a framer with a payload decoder so the stream
// statistics stay current: every decoded item bumps ItemsEmitted and every
// decode failure bumps DecodeErrors. The sink receives the packet, its
// decoded items and the decode error, if any.
func decodingFramer(decoder *thinkgear.Decoder, sink func(pkt *thinkgear.Packet, items []thinkgear.DataItem, err error)) *thinkgear.Framer {
	var framer *thinkgear.Framer
	framer = thinkgear.NewFramer(func(pkt *thinkgear.Packet) {
		items, err := decoder.Decode(pkt.Payload())
		stats := framer.Stats()
		if err != nil {
			stats.DecodeErrors++
		}
		stats.ItemsEmitted += uint64(len(items))
		sink(pkt, items, err)
	})
	return framer
}
