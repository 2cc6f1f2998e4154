// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/SynapseWorks/mindstream/pkg/config"
	"github.com/SynapseWorks/mindstream/pkg/log"
	"github.com/SynapseWorks/mindstream/pkg/metrics"
	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a live dashboard over HTTP",
	Long: `Decode the headset stream into a rolling session and serve it over HTTP.

Routes:
  /               overview page, refreshes every two seconds
  /charts/esense  attention/meditation and stress trend charts
  /charts/bands   mean band power chart
  /api/metrics    live stream and eSense metrics as JSON
  /api/session    session aggregates as JSON

The session starts when the server starts and runs until it stops. If the
headset stream closes the server keeps serving the data recorded so far.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddress, "address", config.DefaultDashboardAddress, "HTTP listen address")
}

// apiStreamStats mirrors the framer statistics for the JSON API. The
// protocol package stays JSON-agnostic.
type apiStreamStats struct {
	BytesConsumed    uint64  `json:"bytesConsumed"`
	FramesDecoded    uint64  `json:"framesDecoded"`
	ChecksumFailures uint64  `json:"checksumFailures"`
	OversizeLengths  uint64  `json:"oversizeLengths"`
	SyncLosses       uint64  `json:"syncLosses"`
	DiscardedBytes   uint64  `json:"discardedBytes"`
	DecodeErrors     uint64  `json:"decodeErrors"`
	ItemsEmitted     uint64  `json:"itemsEmitted"`
	FrameRate        float64 `json:"frameRate"`
	ErrorRate        float64 `json:"errorRate"`
}

// apiMetrics is the /api/metrics response shape
type apiMetrics struct {
	Source     string         `json:"source"`
	Connected  bool           `json:"connected"`
	Uptime     float64        `json:"uptimeSeconds"`
	Signal     int            `json:"signalQuality"`
	SignalText string         `json:"signalLevel"`
	Attention  int            `json:"attention"`
	Meditation int            `json:"meditation"`
	Stress     float64        `json:"stressScore"`
	StressText string         `json:"stressLevel"`
	Stream     apiStreamStats `json:"stream"`
}

// dashboard holds the decode state shared between the reader goroutine
// and the HTTP handlers
type dashboard struct {
	connInfo string
	started  time.Time

	mu         sync.Mutex
	session    *metrics.Session
	stats      thinkgear.Statistics
	signal     uint8
	attention  uint8
	meditation uint8
	connected  bool
}

func newDashboard(connInfo string) *dashboard {
	return &dashboard{
		connInfo:  connInfo,
		started:   time.Now(),
		session:   metrics.NewSession(),
		connected: true,
	}
}

// consume reads the connection and folds decoded items into the shared
// state until the stream closes
func (d *dashboard) consume(ctx context.Context, conn Connection) {
	decoder := thinkgear.NewDecoder(thinkgear.WithBlinkDetection())

	var items []thinkgear.DataItem
	framer := decodingFramer(decoder, func(_ *thinkgear.Packet, decoded []thinkgear.DataItem, _ error) {
		items = append(items, decoded...)
	})

	buf := make([]byte, 128)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := conn.Read(buf)
		if err != nil {
			if err == ErrConnectionClosed || err == io.EOF {
				log.Info("Stream closed, serving recorded data")
				d.mu.Lock()
				d.connected = false
				d.mu.Unlock()
				return
			}
			log.Error("Read error: %v", err)
			continue
		}

		items = items[:0]
		framer.Feed(buf[:n])

		d.mu.Lock()
		for _, item := range items {
			d.session.Record(item)
			switch item.Kind {
			case thinkgear.KindSignalQuality:
				d.signal = uint8(item.Value)
			case thinkgear.KindAttention:
				d.attention = uint8(item.Value)
			case thinkgear.KindMeditation:
				d.meditation = uint8(item.Value)
			}
		}
		d.stats = *framer.Stats()
		d.mu.Unlock()
	}
}

// metricsSnapshot builds the /api/metrics payload under the lock
func (d *dashboard) metricsSnapshot() apiMetrics {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.stats
	stats.CalculateRates()

	stress := d.session.Stress()
	return apiMetrics{
		Source:     d.connInfo,
		Connected:  d.connected,
		Uptime:     time.Since(d.started).Seconds(),
		Signal:     int(d.signal),
		SignalText: thinkgear.ClassifySignal(d.signal).String(),
		Attention:  int(d.attention),
		Meditation: int(d.meditation),
		Stress:     stress.Score(),
		StressText: stress.Level().String(),
		Stream: apiStreamStats{
			BytesConsumed:    stats.BytesConsumed,
			FramesDecoded:    stats.FramesDecoded,
			ChecksumFailures: stats.ChecksumFailures,
			OversizeLengths:  stats.OversizeLengths,
			SyncLosses:       stats.SyncLosses,
			DiscardedBytes:   stats.DiscardedBytes,
			DecodeErrors:     stats.DecodeErrors,
			ItemsEmitted:     stats.ItemsEmitted,
			FrameRate:        stats.FrameRate,
			ErrorRate:        stats.ErrorRate,
		},
	}
}

func (d *dashboard) configureRouter() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", d.handleOverview()).Methods("GET")
	router.HandleFunc("/charts/esense", d.handleEsenseChart()).Methods("GET")
	router.HandleFunc("/charts/bands", d.handleBandChart()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/metrics", d.handleMetrics()).Methods("GET")
	api.HandleFunc("/session", d.handleSession()).Methods("GET")
	return router
}

const overviewHTML = `<!DOCTYPE html>
<html>
<head>
<title>Mindstream Dashboard</title>
<meta http-equiv="refresh" content="2">
<style>
 body { font-family: monospace; background: #1a1a1a; color: #d0d0d0; margin: 2em; }
 h1 { color: #7aa2f7; }
 table { border-collapse: collapse; }
 td { padding: 0.2em 1em 0.2em 0; }
 a { color: #9ece6a; }
</style>
</head>
<body>
<h1>Mindstream Dashboard</h1>
<table>
<tr><td>Source</td><td>%s</td></tr>
<tr><td>Connected</td><td>%t</td></tr>
<tr><td>Uptime</td><td>%.0f s</td></tr>
<tr><td>Signal</td><td>%d (%s)</td></tr>
<tr><td>Attention</td><td>%d</td></tr>
<tr><td>Meditation</td><td>%d</td></tr>
<tr><td>Stress</td><td>%.1f (%s)</td></tr>
<tr><td>Frames</td><td>%d (%.1f/s)</td></tr>
<tr><td>Items</td><td>%d</td></tr>
</table>
<p>
<a href="/charts/esense">eSense + stress trends</a> |
<a href="/charts/bands">band powers</a> |
<a href="/api/metrics">metrics JSON</a> |
<a href="/api/session">session JSON</a>
</p>
</body>
</html>
`

func (d *dashboard) handleOverview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := d.metricsSnapshot()
		doc := fmt.Sprintf(overviewHTML,
			m.Source, m.Connected, m.Uptime,
			m.Signal, m.SignalText,
			m.Attention, m.Meditation,
			m.Stress, m.StressText,
			m.Stream.FramesDecoded, m.Stream.FrameRate,
			m.Stream.ItemsEmitted,
		)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(doc))
	}
}

func (d *dashboard) handleEsenseChart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		attention := d.session.AttentionSeries()
		meditation := d.session.MeditationSeries()
		stress := d.session.StressSeries()
		d.mu.Unlock()

		page := components.NewPage()
		page.PageTitle = "Mindstream eSense"
		page.AddCharts(
			esenseTrendChart(attention, meditation),
			stressTrendChart(stress),
		)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Render(w); err != nil {
			d.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		}
	}
}

func (d *dashboard) handleBandChart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		means := d.session.BandMeans()
		d.mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := bandPowerChart(means).Render(w); err != nil {
			d.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		}
	}
}

func (d *dashboard) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.writeJSON(w, http.StatusOK, d.metricsSnapshot())
	}
}

func (d *dashboard) handleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		summary := d.session.Summarize()
		d.mu.Unlock()

		d.writeJSON(w, http.StatusOK, summary)
	}
}

func (d *dashboard) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response: %v", err)
	}
}

func (d *dashboard) writeJSONError(w http.ResponseWriter, status int, message string) {
	d.writeJSON(w, status, map[string]string{"error": message})
}

func runServe(cmd *cobra.Command, args []string) error {
	// Flags win over the config file here as well
	if !cmd.Flags().Changed("address") && cfg.Address != "" {
		serveAddress = cfg.Address
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	d := newDashboard(connInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go d.consume(ctx, conn)

	server := &http.Server{
		Handler: d.configureRouter(),
		Addr:    serveAddress,
	}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	log.Info("Dashboard listening on %s (source %s)", serveAddress, connInfo)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
