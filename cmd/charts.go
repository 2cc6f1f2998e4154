// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/SynapseWorks/mindstream/pkg/metrics"
	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

// Chart builders shared by the session recorder and the dashboard. eSense
// and stress values arrive at 1 Hz, so the sample index doubles as a
// seconds axis.

func secondsAxis(n int) []string {
	axis := make([]string, n)
	for i := range axis {
		axis[i] = strconv.Itoa(i + 1)
	}
	return axis
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

// esenseTrendChart builds an attention/meditation trend line chart
func esenseTrendChart(attention, meditation []float64) *charts.Line {
	n := len(attention)
	if len(meditation) > n {
		n = len(meditation)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Mindstream eSense", Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "eSense Trend", Subtitle: fmt.Sprintf("attention=%d meditation=%d readings", len(attention), len(meditation))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "seconds"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "eSense", Min: 0, Max: thinkgear.MaxEsenseValue}),
	)
	line.SetXAxis(secondsAxis(n)).
		AddSeries("attention", lineData(attention), charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)})).
		AddSeries("meditation", lineData(meditation), charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

// stressTrendChart builds a stress score trend line chart, one point per
// band block
func stressTrendChart(stress []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Mindstream Stress", Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stress Index", Subtitle: fmt.Sprintf("%d band blocks", len(stress))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "band blocks"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score", Min: 0, Max: metrics.MaxStressScore}),
	)
	line.SetXAxis(secondsAxis(len(stress))).
		AddSeries("stress", lineData(stress), charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

// bandPowerChart builds a mean band power bar chart
func bandPowerChart(means [thinkgear.NumBands]float64) *charts.Bar {
	x := make([]string, thinkgear.NumBands)
	y := make([]opts.BarData, thinkgear.NumBands)
	for i := 0; i < thinkgear.NumBands; i++ {
		x[i] = thinkgear.Band(i).String()
		y[i] = opts.BarData{Value: means[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Mindstream Band Power", Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Mean Band Power", Subtitle: "session mean per ASIC_EEG_POWER band"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("power", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// writeSessionChart renders the session's charts to a standalone HTML file
func writeSessionChart(path string, session *metrics.Session) error {
	page := components.NewPage()
	page.PageTitle = "Mindstream Session Report"
	page.AddCharts(
		esenseTrendChart(session.AttentionSeries(), session.MeditationSeries()),
		stressTrendChart(session.StressSeries()),
		bandPowerChart(session.BandMeans()),
	)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}
