// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imroc/req"
	"github.com/spf13/cobra"

	"github.com/SynapseWorks/mindstream/pkg/config"
	"github.com/SynapseWorks/mindstream/pkg/metrics"
)

var statusServer string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running dashboard",
	Long: `Fetch live metrics and session aggregates from a running "mindstream serve"
instance and print them.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusServer, "server", "", "Dashboard base URL (default derived from the dashboard address)")
}

// dashboardBaseURL resolves the dashboard URL from the --server flag or
// the configured listen address
func dashboardBaseURL() string {
	if statusServer != "" {
		return strings.TrimSuffix(statusServer, "/")
	}
	address := config.DefaultDashboardAddress
	if cfg != nil && cfg.Address != "" {
		address = cfg.Address
	}
	if strings.HasPrefix(address, ":") {
		address = "localhost" + address
	}
	return "http://" + address
}

func fetchDashboardMetrics(base string) (*apiMetrics, error) {
	r, err := req.Get(base + "/api/metrics")
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	m := &apiMetrics{}
	if err = r.ToJSON(m); err != nil {
		return nil, err
	}
	return m, nil
}

func fetchDashboardSummary(base string) (*metrics.Summary, error) {
	r, err := req.Get(base + "/api/session")
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	summary := &metrics.Summary{}
	if err = r.ToJSON(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	base := dashboardBaseURL()

	m, err := fetchDashboardMetrics(base)
	if err != nil {
		return fmt.Errorf("cannot reach dashboard at %s: %v", base, err)
	}

	connected := "yes"
	if !m.Connected {
		connected = "no (stream closed)"
	}

	fmt.Printf("Dashboard:       %s\n", base)
	fmt.Printf("Source:          %s\n", m.Source)
	fmt.Printf("Connected:       %s\n", connected)
	fmt.Printf("Uptime:          %.0f seconds\n", m.Uptime)
	fmt.Printf("Signal Quality:  %d (%s)\n", m.Signal, m.SignalText)
	fmt.Printf("Attention:       %d\n", m.Attention)
	fmt.Printf("Meditation:      %d\n", m.Meditation)
	fmt.Printf("Stress:          %.1f (%s)\n", m.Stress, m.StressText)
	fmt.Println()
	fmt.Printf("Frames Decoded:  %d (%.1f/s)\n", m.Stream.FramesDecoded, m.Stream.FrameRate)
	fmt.Printf("Items Emitted:   %d\n", m.Stream.ItemsEmitted)
	if m.Stream.ChecksumFailures > 0 {
		fmt.Printf("Checksum Fails:  %d\n", m.Stream.ChecksumFailures)
	}
	if m.Stream.SyncLosses > 0 {
		fmt.Printf("Sync Losses:     %d (%d bytes)\n", m.Stream.SyncLosses, m.Stream.DiscardedBytes)
	}

	summary, err := fetchDashboardSummary(base)
	if err != nil {
		return fmt.Errorf("cannot fetch session summary: %v", err)
	}
	fmt.Println()
	fmt.Print(summary.String())
	return nil
}
