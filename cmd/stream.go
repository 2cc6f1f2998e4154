// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SynapseWorks/mindstream/pkg/log"
	"github.com/SynapseWorks/mindstream/pkg/metrics"
	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

var (
	streamShowRaw  bool
	streamValidate bool
	streamStrict   bool
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Display decoded data items in human-readable format",
	Long: `Continuously frame and decode the ThinkGear stream, printing one line
per decoded data item.

Signal quality repeats every second and is printed at most once per second
to keep the eSense lines readable. Raw EEG arrives at 512 Hz and is
suppressed unless --raw is given.

Supports serial, TCP and WebSocket connections.`,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)
	streamCmd.Flags().BoolVar(&streamShowRaw, "raw", false, "Include 512 Hz raw EEG samples in the output")
	streamCmd.Flags().BoolVar(&streamValidate, "validate", false, "Check decoded items against documented value ranges")
	streamCmd.Flags().BoolVar(&streamStrict, "strict", false, "Treat truncated payload rows as decode errors")
}

func runStream(cmd *cobra.Command, args []string) error {
	// Open connection (serial, TCP or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Mindstream - Live Decode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	opts := []thinkgear.Option{thinkgear.WithBlinkDetection()}
	if streamStrict {
		opts = append(opts, thinkgear.WithStrictPayload())
	}
	decoder := thinkgear.NewDecoder(opts...)
	qualityGate := metrics.NewRateLimiter(time.Second)

	framer := decodingFramer(decoder, func(_ *thinkgear.Packet, items []thinkgear.DataItem, err error) {
		if err != nil {
			log.Warning("Decode error: %v", err)
		}
		for _, item := range items {
			switch item.Kind {
			case thinkgear.KindRawEEG:
				if !streamShowRaw {
					continue
				}
			case thinkgear.KindSignalQuality:
				if !qualityGate.Allow() {
					continue
				}
			}
			fmt.Println(thinkgear.FormatDataItem(item))
		}
		if streamValidate {
			for _, verr := range thinkgear.ValidateItems(items) {
				fmt.Printf("[ANOMALY] %s\n", verr.Error())
			}
		}
	})

	// Ctrl+C ends the loop but still reaches the statistics summary
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	streamLoop(ctx, conn, framer)
	fmt.Print(framer.Stats().String())
	return nil
}

// streamLoop feeds connection reads to the framer until the peer closes
// the stream or ctx is canceled
func streamLoop(ctx context.Context, conn Connection, framer *thinkgear.Framer) {
	data := make(chan []byte, 10)
	closed := make(chan struct{})
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				// TCP peers close with EOF, WebSockets with
				// ErrConnectionClosed
				if err == ErrConnectionClosed || err == io.EOF {
					close(closed)
					return
				}
				log.Error("Read error: %v", err)
				continue
			}
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			data <- chunk
		}
	}()

	for {
		select {
		case chunk := <-data:
			framer.Feed(chunk)

		case <-closed:
			log.Info("Connection closed")
			return

		case <-ctx.Done():
			fmt.Println()
			return
		}
	}
}
