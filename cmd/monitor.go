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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SynapseWorks/mindstream/pkg/log"
	"github.com/SynapseWorks/mindstream/pkg/metrics"
	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

var (
	monitorUseTUI        bool
	monitorStatsInterval int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Full-screen live view of the decoded headset state",
	Long: `Watch the decoded headset state update live in a full-screen terminal UI.

The monitor shows:
  - Signal quality with electrode contact classification
  - Attention and meditation gauges
  - Relative power for all eight EEG bands
  - The last second of raw EEG as a waveform
  - The beta/alpha stress index
  - Anomalous values and blink events

Press 's' to start or stop a recording session; each session summary is
printed once the monitor exits. Press 'q' to quit.

With --tui=false the monitor runs in plain text mode instead, printing
eSense values and anomalies as they arrive plus periodic statistics.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorUseTUI, "tui", true, "Use terminal UI (false for text mode)")
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 10, "Statistics interval in text mode (seconds)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if monitorUseTUI {
		return runMonitorTUI(conn, connInfo)
	}
	return runMonitorText(conn, connInfo)
}

// runMonitorTUI runs the monitor as a Bubble Tea program with a reader
// goroutine pumping decoded batches into it
func runMonitorTUI(conn Connection, connInfo string) error {
	p := tea.NewProgram(newMonitorModel(connInfo))

	go func() {
		decoder := thinkgear.NewDecoder(thinkgear.WithBlinkDetection())

		var batch monitorBatchMsg
		framer := decodingFramer(decoder, func(_ *thinkgear.Packet, items []thinkgear.DataItem, _ error) {
			batch.frames++
			batch.items = append(batch.items, items...)
			batch.anomalies = append(batch.anomalies, thinkgear.ValidateItems(items)...)
		})

		synchronized := false
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed || err == io.EOF {
					p.Send(monitorConnLostMsg{})
					return
				}
				// The alt screen owns the terminal, so transient read
				// errors cannot be logged here. Pause briefly and retry.
				time.Sleep(10 * time.Millisecond)
				continue
			}

			// One batch per read keeps message pressure at the read rate
			// rather than the 512 Hz item rate.
			batch = monitorBatchMsg{}
			framer.Feed(buf[:n])

			stats := framer.Stats()
			if !synchronized && stats.FramesDecoded > 0 {
				synchronized = true
				batch.sync = &monitorSyncMsg{discarded: int(stats.DiscardedBytes)}
			}
			if batch.frames > 0 || batch.sync != nil {
				batch.stats = *stats
				p.Send(batch)
			}
		}
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	// Session summaries are printed after the alt screen is torn down so
	// they land in the scrollback.
	if m, ok := finalModel.(monitorModel); ok {
		for _, summary := range m.summaries {
			fmt.Println()
			fmt.Print(summary.String())
		}
	}
	return nil
}

// runMonitorText runs the monitor in plain text mode
func runMonitorText(conn Connection, connInfo string) error {
	fmt.Printf("Mindstream - Live Monitor (text mode)\n")
	fmt.Printf("Source: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", monitorStatsInterval)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := thinkgear.NewDecoder(thinkgear.WithBlinkDetection())
	stress := metrics.NewStressIndex()
	qualityGate := metrics.NewRateLimiter(time.Second)

	framer := decodingFramer(decoder, func(_ *thinkgear.Packet, items []thinkgear.DataItem, _ error) {
		for _, item := range items {
			blockDone := stress.Update(item)
			switch item.Kind {
			case thinkgear.KindRawEEG:
				// 512 Hz; the stream command prints these.
			case thinkgear.KindBandPower:
				if blockDone {
					fmt.Printf("STRESS: %.1f (%s)\n", stress.Score(), stress.Level())
				}
			case thinkgear.KindSignalQuality:
				if qualityGate.Allow() {
					fmt.Println(thinkgear.FormatDataItem(item))
				}
			default:
				fmt.Println(thinkgear.FormatDataItem(item))
			}
		}
		for _, verr := range thinkgear.ValidateItems(items) {
			fmt.Printf("[ANOMALY] %s\n", verr.Message)
		}
	})

	// Ctrl+C ends the loop but still reaches the final statistics
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	statsTicker := time.NewTicker(time.Duration(monitorStatsInterval) * time.Second)
	defer statsTicker.Stop()

	// Reads happen on their own goroutine so statistics keep printing
	// while the line is idle.
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

	for {
		select {
		case chunk := <-data:
			framer.Feed(chunk)

		case <-closed:
			log.Info("Connection closed")
			fmt.Println()
			fmt.Print(framer.Stats().String())
			return nil

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(framer.Stats().String())
			fmt.Println()

		case <-ctx.Done():
			fmt.Println()
			fmt.Print(framer.Stats().String())
			return nil
		}
	}
}
