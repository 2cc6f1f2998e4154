// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package config

const (
	ConfigDir  = ".mindstream"
	ConfigFile = "config"

	// TGAM headsets ship fixed at 115200 baud 8N1
	DefaultSerialPort = "/dev/ttyUSB0"
	DefaultBaudRate   = 115200

	// ThinkGear Connector's conventional TCP port
	DefaultTCPAddress = "localhost:13854"

	DefaultDashboardAddress = ":13855"
	DefaultLogLevel         = "info"
)
