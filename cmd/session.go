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
	sessionDuration int
	sessionChart    string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Record a timed session and report aggregates",
	Long: `Record decoded headset data for a fixed duration, printing readings as
they arrive and a session summary at the end.

Attention, meditation and blink events print as they arrive; signal
quality is limited to one line per second and the stress index prints
once per band block. Raw EEG is counted but not printed.

With --chart the attention/meditation trend, stress trend and mean band
powers are also rendered to a standalone HTML file.

Ctrl+C ends the session early; the summary still prints. The command
fails when the session ends without a single decoded item.`,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.Flags().IntVar(&sessionDuration, "duration", 60, "Recording duration in seconds (0 records until the stream closes)")
	sessionCmd.Flags().StringVar(&sessionChart, "chart", "", "Write an HTML chart report to this file")
}

func runSession(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Mindstream - Session Recorder\n")
	fmt.Printf("Source: %s\n", connInfo)
	if sessionDuration > 0 {
		fmt.Printf("Duration: %d seconds\n", sessionDuration)
	} else {
		fmt.Printf("Duration: until the stream closes\n")
	}
	fmt.Printf("Press Ctrl+C to stop early\n\n")

	session := metrics.NewSession()
	qualityGate := metrics.NewRateLimiter(time.Second)
	decoder := thinkgear.NewDecoder(thinkgear.WithBlinkDetection())

	framer := decodingFramer(decoder, func(_ *thinkgear.Packet, items []thinkgear.DataItem, _ error) {
		for _, item := range items {
			session.Record(item)
			switch item.Kind {
			case thinkgear.KindRawEEG:
				// Counted by the session, not printed.
			case thinkgear.KindSignalQuality:
				if qualityGate.Allow() {
					fmt.Println(thinkgear.FormatDataItem(item))
				}
			case thinkgear.KindBandPower:
				if item.Band == thinkgear.BandMidGamma {
					stress := session.Stress()
					fmt.Printf("STRESS: %.1f (%s)\n", stress.Score(), stress.Level())
				}
			default:
				fmt.Println(thinkgear.FormatDataItem(item))
			}
		}
	})

	// Ctrl+C ends the recording loop but still reaches the summary
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data := make(chan []byte, 10)
	closed := make(chan struct{})
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
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

	// A nil deadline channel blocks forever, so duration 0 records until
	// the stream closes.
	var deadline <-chan time.Time
	if sessionDuration > 0 {
		timer := time.NewTimer(time.Duration(sessionDuration) * time.Second)
		defer timer.Stop()
		deadline = timer.C
	}

recording:
	for {
		select {
		case chunk := <-data:
			framer.Feed(chunk)

		case <-closed:
			log.Info("Connection closed")
			break recording

		case <-deadline:
			break recording

		case <-ctx.Done():
			fmt.Println()
			break recording
		}
	}

	summary := session.Summarize()
	fmt.Println()
	fmt.Print(summary.String())
	fmt.Println()
	fmt.Print(framer.Stats().String())

	if summary.Items == 0 {
		return fmt.Errorf("no data received from %s", connInfo)
	}

	if sessionChart != "" {
		if err := writeSessionChart(sessionChart, session); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		fmt.Printf("\nChart written to %s\n", sessionChart)
	}
	return nil
}
