// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"

	"github.com/SynapseWorks/mindstream/pkg/metrics"
	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

// Event log entry
type monitorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Messages
type monitorTickMsg time.Time

type monitorSyncMsg struct {
	discarded int
}

type monitorBatchMsg struct {
	items     []thinkgear.DataItem
	anomalies []thinkgear.ValidationError
	frames    int
	stats     thinkgear.Statistics
	sync      *monitorSyncMsg
}

type monitorConnLostMsg struct{}

// monitorModel is the Bubble Tea model for the live monitor
type monitorModel struct {
	connInfo string

	// Latest decoded state
	stats      thinkgear.Statistics
	signal     uint8
	hasSignal  bool
	attention  uint8
	meditation uint8
	bands      [thinkgear.NumBands]uint32
	hasBands   bool
	rawRing    *metrics.Ring
	stress     *metrics.StressIndex
	blinkCount int

	// Recording
	session   *metrics.Session
	summaries []metrics.Summary

	// Widgets
	attentionBar  progress.Model
	meditationBar progress.Model

	// Event log
	eventLog      []monitorLogEntry
	maxLogEntries int

	// UI state
	width          int
	height         int
	synchronized   bool
	discarded      int
	connectionLost bool
	quitting       bool
}

func newMonitorModel(connInfo string) monitorModel {
	attentionBar := progress.New(progress.WithSolidFill("9"), progress.WithoutPercentage())
	meditationBar := progress.New(progress.WithSolidFill("12"), progress.WithoutPercentage())
	attentionBar.Width = 40
	meditationBar.Width = 40

	return monitorModel{
		connInfo:      connInfo,
		rawRing:       metrics.NewRing(metrics.RawRingSize),
		stress:        metrics.NewStressIndex(),
		eventLog:      make([]monitorLogEntry, 0),
		maxLogEntries: 100,
		attentionBar:  attentionBar,
		meditationBar: meditationBar,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// A still-running session is stopped so its summary is
			// not lost with the alt screen
			if m.session != nil {
				m.toggleSession()
			}
			m.quitting = true
			return m, tea.Quit
		case "s":
			m.toggleSession()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := m.width - 30
		if barWidth < 10 {
			barWidth = 10
		}
		if barWidth > 50 {
			barWidth = 50
		}
		m.attentionBar.Width = barWidth
		m.meditationBar.Width = barWidth

	case monitorTickMsg:
		m.stats.CalculateRates()
		return m, monitorTickCmd()

	case monitorConnLostMsg:
		m.connectionLost = true
		m.addLogEntry("Connection lost", true)

	case monitorBatchMsg:
		if msg.sync != nil {
			m.synchronized = true
			m.discarded = msg.sync.discarded
			if msg.sync.discarded > 0 {
				m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d bytes", msg.sync.discarded), false)
			} else {
				m.addLogEntry("Synchronized", false)
			}
		}
		m.stats = msg.stats
		for _, item := range msg.items {
			m.applyItem(item)
		}
		for _, verr := range msg.anomalies {
			m.addLogEntry(fmt.Sprintf("ANOMALY: %s", verr.Message), true)
		}
	}

	return m, nil
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	entry := monitorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

// toggleSession starts a recording session, or stops the running one and
// queues its summary for printing after the TUI exits
func (m *monitorModel) toggleSession() {
	if m.session == nil {
		m.session = metrics.NewSession()
		m.addLogEntry(fmt.Sprintf("Session started: %s", m.session.ID), false)
		return
	}

	summary := m.session.Summarize()
	m.summaries = append(m.summaries, summary)
	m.session = nil
	m.addLogEntry(fmt.Sprintf("Session stopped after %.0f seconds (%d items)",
		summary.Duration.Seconds(), summary.Items), false)
}

// applyItem folds one decoded item into the display state
func (m *monitorModel) applyItem(item thinkgear.DataItem) {
	if m.session != nil {
		m.session.Record(item)
	}
	m.stress.Update(item)

	switch item.Kind {
	case thinkgear.KindSignalQuality:
		m.signal = uint8(item.Value)
		m.hasSignal = true
	case thinkgear.KindAttention:
		m.attention = uint8(item.Value)
	case thinkgear.KindMeditation:
		m.meditation = uint8(item.Value)
	case thinkgear.KindRawEEG:
		m.rawRing.Push(float64(item.Value))
	case thinkgear.KindBandPower:
		if item.Band >= 0 && int(item.Band) < thinkgear.NumBands {
			m.bands[item.Band] = uint32(item.Value)
			m.hasBands = true
		}
	case thinkgear.KindBlinkStrength:
		m.blinkCount++
		m.addLogEntry(fmt.Sprintf("Blink detected (strength %d)", item.Value), false)
	}
}

var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// sparkline renders values as one row of block glyphs, newest on the right
func sparkline(values []float64, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}

	lo := floats.Min(values)
	hi := floats.Max(values)
	span := hi - lo

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkGlyphs)-1))
		}
		b.WriteRune(sparkGlyphs[idx])
	}
	return b.String()
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("MINDSTREAM - LIVE MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Source: %s | Press 's' to start/stop a session, 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	// Connection and sync status
	switch {
	case m.connectionLost:
		s.WriteString(errorStyle.Render("✗ Connection lost"))
		s.WriteString("\n\n")
	case !m.synchronized:
		s.WriteString(warningStyle.Render("⏳ Waiting for synchronization..."))
		s.WriteString("\n\n")
	default:
		s.WriteString(valueStyle.Render("✓ Synchronized"))
		if m.discarded > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d bytes)", m.discarded)))
		}
		s.WriteString("\n\n")
	}

	// Signal quality, eSense gauges, stress
	vitals := strings.Builder{}

	if m.hasSignal {
		level := thinkgear.ClassifySignal(m.signal)
		levelStyle := valueStyle
		switch level {
		case thinkgear.QualityFair:
			levelStyle = warningStyle
		case thinkgear.QualityPoor, thinkgear.QualityNoContact:
			levelStyle = errorStyle
		}
		vitals.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Signal:    "),
			levelStyle.Render(fmt.Sprintf("%3d (%s)", m.signal, level)),
		))
	} else {
		vitals.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Signal:    "),
			headerStyle.Render("waiting for data..."),
		))
	}

	vitals.WriteString(fmt.Sprintf("%s %s %s\n",
		labelStyle.Render("Attention: "),
		m.attentionBar.ViewAs(float64(m.attention)/float64(thinkgear.MaxEsenseValue)),
		valueStyle.Render(fmt.Sprintf("%3d", m.attention)),
	))
	vitals.WriteString(fmt.Sprintf("%s %s %s\n",
		labelStyle.Render("Meditation:"),
		m.meditationBar.ViewAs(float64(m.meditation)/float64(thinkgear.MaxEsenseValue)),
		valueStyle.Render(fmt.Sprintf("%3d", m.meditation)),
	))

	if m.stress.Ready() {
		stressStyle := valueStyle
		switch m.stress.Level() {
		case metrics.StressMedium:
			stressStyle = warningStyle
		case metrics.StressHigh:
			stressStyle = errorStyle
		}
		vitals.WriteString(fmt.Sprintf("%s %s",
			labelStyle.Render("Stress:    "),
			stressStyle.Render(fmt.Sprintf("%5.1f (%s)", m.stress.Score(), m.stress.Level())),
		))
	} else {
		vitals.WriteString(fmt.Sprintf("%s %s",
			labelStyle.Render("Stress:    "),
			headerStyle.Render("waiting for a band block..."),
		))
	}
	if m.blinkCount > 0 {
		vitals.WriteString(fmt.Sprintf("   %s %s",
			labelStyle.Render("Blinks:"),
			valueStyle.Render(fmt.Sprintf("%d", m.blinkCount)),
		))
	}

	s.WriteString(boxStyle.Render(vitals.String()))
	s.WriteString("\n\n")

	// Band powers, scaled against the strongest band in the latest block
	if m.hasBands {
		var maxPower uint32
		for _, v := range m.bands {
			if v > maxPower {
				maxPower = v
			}
		}

		barWidth := m.width - 32
		if barWidth < 10 {
			barWidth = 10
		}
		if barWidth > 48 {
			barWidth = 48
		}

		bandContent := strings.Builder{}
		for band := thinkgear.Band(0); int(band) < thinkgear.NumBands; band++ {
			value := m.bands[band]
			filled := 0
			if maxPower > 0 {
				filled = int(uint64(value) * uint64(barWidth) / uint64(maxPower))
			}
			bandContent.WriteString(fmt.Sprintf("%s %s %s",
				labelStyle.Render(fmt.Sprintf("%-10s", band)),
				valueStyle.Render(strings.Repeat("█", filled)+strings.Repeat(" ", barWidth-filled)),
				headerStyle.Render(fmt.Sprintf("%8d", value)),
			))
			if int(band) < thinkgear.NumBands-1 {
				bandContent.WriteString("\n")
			}
		}
		s.WriteString(boxStyle.Render(bandContent.String()))
		s.WriteString("\n\n")
	}

	// Raw EEG, most recent second of samples
	if m.rawRing.Len() > 0 {
		waveWidth := m.width - 8
		if waveWidth < 20 {
			waveWidth = 20
		}
		last, _ := m.rawRing.Last()
		rawContent := fmt.Sprintf("%s\n%s %s",
			valueStyle.Render(sparkline(m.rawRing.Values(), waveWidth)),
			labelStyle.Render("Raw EEG:"),
			headerStyle.Render(fmt.Sprintf("%d samples buffered, last %+.0f", m.rawRing.Len(), last)),
		)
		s.WriteString(boxStyle.Render(rawContent))
		s.WriteString("\n\n")
	}

	// Live session panel
	if m.session != nil {
		summary := m.session.Summarize()
		sessionContent := strings.Builder{}
		sessionContent.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Recording:"),
			valueStyle.Render(m.session.ID),
		))
		sessionContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
			labelStyle.Render("Elapsed:"),
			valueStyle.Render(summary.Duration.Truncate(time.Second).String()),
			labelStyle.Render("Items:"),
			valueStyle.Render(fmt.Sprintf("%d", summary.Items)),
			labelStyle.Render("Attention mean:"),
			valueStyle.Render(fmt.Sprintf("%.1f", summary.Attention.Mean)),
		))
		s.WriteString(boxStyle.Render(sessionContent.String()))
		s.WriteString("\n\n")
	}

	// Stream statistics
	m.stats.CalculateRates()
	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Frames:"),
		valueStyle.Render(fmt.Sprintf("%d", m.stats.FramesDecoded)),
		labelStyle.Render("Items:"),
		valueStyle.Render(fmt.Sprintf("%d", m.stats.ItemsEmitted)),
		labelStyle.Render("Frame Rate:"),
		valueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.FrameRate)),
	))
	if m.stats.ChecksumFailures > 0 || m.stats.SyncLosses > 0 {
		statsContent.WriteString(fmt.Sprintf("\n%s %s   %s %s",
			labelStyle.Render("Checksum Fails:"),
			errorStyle.Render(fmt.Sprintf("%d", m.stats.ChecksumFailures)),
			labelStyle.Render("Sync Losses:"),
			errorStyle.Render(fmt.Sprintf("%d (%d bytes)", m.stats.SyncLosses, m.stats.DiscardedBytes)),
		))
	}
	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Reserve space for the panels above
	logHeight := m.height - 30
	if logHeight < 4 {
		logHeight = 4
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
