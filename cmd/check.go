// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

var (
	checkTimeout int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test connection by waiting for a valid ThinkGear frame",
	Long: `Wait for a valid ThinkGear frame on the connection until timeout.

This command connects to a headset source and waits for any complete frame
that passes checksum verification, silently discarding noise while hunting
for sync.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for testing a serial adapter, Bluetooth pairing or a ThinkGear
Connector relay.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVar(&checkTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runCheck(cmd *cobra.Command, args []string) error {
	// Open connection (serial, TCP or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Mindstream - Connection Check\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", checkTimeout)
	fmt.Printf("Waiting for valid ThinkGear frame...\n\n")

	// Channel for frame reception
	packetChan := make(chan *thinkgear.Packet, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		var got bool
		framer := thinkgear.NewFramer(func(p *thinkgear.Packet) {
			if !got {
				got = true
				packetChan <- p
			}
		})

		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}

			framer.Feed(buf[:n])
			if got {
				if dropped := framer.Stats().DiscardedBytes; dropped > 0 {
					fmt.Printf("(discarded %d bytes before sync)\n", dropped)
				}
				return
			}
		}
	}()

	// Wait for frame or timeout
	select {
	case packet := <-packetChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Length: %d bytes\n", packet.Length())
		fmt.Printf("  Checksum: 0x%02X\n", packet.Checksum())

		items, _ := thinkgear.NewDecoder().Decode(packet.Payload())
		fmt.Printf("  Items: %d\n", len(items))
		for _, item := range items {
			fmt.Printf("    %s\n", thinkgear.FormatDataItem(item))
		}
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(checkTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", checkTimeout)
		os.Exit(1)
	}

	return nil
}
