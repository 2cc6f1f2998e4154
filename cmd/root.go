// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SynapseWorks/mindstream/pkg/config"
	"github.com/SynapseWorks/mindstream/pkg/log"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// ThinkGear Connector flag
	tcpAddress string

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Config and logging flags
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mindstream",
	Short: "NeuroSky ThinkGear Stream Analyzer",
	Long: `Mindstream - A CLI tool for decoding and analyzing NeuroSky ThinkGear EEG streams.

Frames the raw TGAM byte stream, decodes eSense, signal quality, raw wave
and band power rows, and provides live monitoring, session recording, a
headset simulator and a web dashboard.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  TCP:       --tcp localhost:13854 (ThinkGear Connector)
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the MINDSTREAM_WS_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.2.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.NewDefaultConfig()
		cfg.SetFilepath(configPath)
		if err := cfg.LoadConfig(); err != nil && !os.IsNotExist(err) {
			return err
		}

		// Flags win over the config file; the config file wins over
		// built-in defaults.
		if !cmd.Flags().Changed("port") {
			portName = cfg.Port
		}
		if !cmd.Flags().Changed("baud") {
			baudRate = cfg.Baud
		}
		if !cmd.Flags().Changed("tcp") && cfg.TCPAddress != "" {
			tcpAddress = cfg.TCPAddress
		}
		if !cmd.Flags().Changed("url") && cfg.WSURL != "" {
			wsURL = cfg.WSURL
		}
		if !cmd.Flags().Changed("log-level") {
			logLevel = cfg.LogLevel
		}

		if err := log.SetLevel(logLevel); err != nil {
			return err
		}
		log.Init(cmd.ErrOrStderr(), logLevel)
		return nil
	},
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", config.DefaultSerialPort, "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", config.DefaultBaudRate, "Baud rate (serial only)")

	// ThinkGear Connector flag
	rootCmd.PersistentFlags().StringVarP(&tcpAddress, "tcp", "t", "", "ThinkGear Connector TCP address (e.g. localhost:13854)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Config and logging flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $HOME/.mindstream/config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level. "+log.HelpLevels)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
