// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SynapseWorks/mindstream/pkg/config"
)

func TestDashboardBaseURL(t *testing.T) {
	// Not parallel, this test swaps package-level state
	oldServer, oldCfg := statusServer, cfg
	defer func() { statusServer, cfg = oldServer, oldCfg }()

	statusServer = "http://dash.example.com:9000/"
	assert.Equal(t, "http://dash.example.com:9000", dashboardBaseURL())

	statusServer = ""
	cfg = nil
	assert.Equal(t, "http://localhost"+config.DefaultDashboardAddress, dashboardBaseURL())

	cfg = &config.Config{DashboardConfig: &config.DashboardConfig{Address: ":9013"}}
	assert.Equal(t, "http://localhost:9013", dashboardBaseURL())

	cfg = &config.Config{DashboardConfig: &config.DashboardConfig{Address: "dash.local:80"}}
	assert.Equal(t, "http://dash.local:80", dashboardBaseURL())
}
