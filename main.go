// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks
//
// Mindstream - NeuroSky ThinkGear Stream Toolkit
//
// A CLI tool for framing, decoding and analyzing ThinkGear EEG byte
// streams from serial headsets, ThinkGear Connector sockets and
// WebSocket bridges.

package main

import (
	"os"

	"github.com/SynapseWorks/mindstream/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
