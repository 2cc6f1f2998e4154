// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/SynapseWorks/mindstream/pkg/config"
	"github.com/SynapseWorks/mindstream/pkg/log"
	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

var (
	simListen  string
	simWS      string
	simStdout  bool
	simCorrupt int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Serve a synthetic headset byte stream",
	Long: `Generate a synthetic ThinkGear byte stream and serve it to clients.

The simulator emits what a real module does: 512 raw EEG frames per second
carrying a 10 Hz sine wave with noise, plus one frame per second bundling
signal quality, attention, meditation, a full band power block and the
occasional blink.

By default the stream is served over TCP, so any other command can consume
it with --tcp:

  mindstream simulate &
  mindstream stream --tcp localhost:13854

--ws additionally serves the stream as binary WebSocket messages for --url
consumers. --stdout writes the raw bytes to standard output instead of
listening; logs stay on stderr.

--corrupt flips one byte in the given percentage of frames so consumers
can be tested against checksum rejection and resynchronization.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simListen, "listen", config.DefaultTCPAddress, "TCP listen address")
	simulateCmd.Flags().StringVar(&simWS, "ws", "", "WebSocket listen address (empty disables)")
	simulateCmd.Flags().BoolVar(&simStdout, "stdout", false, "Write the byte stream to stdout instead of listening")
	simulateCmd.Flags().IntVar(&simCorrupt, "corrupt", 0, "Percent of frames to corrupt for resync testing (0-100)")
}

// simulator generates plausible headset values and builds wire frames
// from them
type simulator struct {
	rng        *rand.Rand
	t          float64
	attention  int
	meditation int
	quality    int
	corrupt    int
}

// Rough magnitudes per band, strongest at delta like a resting trace
var simBandScale = [thinkgear.NumBands]uint32{
	400000, 30000, 15000, 12000, 9000, 7000, 5000, 3500,
}

// rawSample advances the waveform clock and returns the next sample:
// a 10 Hz sine with uniform noise
func (s *simulator) rawSample() int16 {
	s.t += 1.0 / 512.0
	v := 200*math.Sin(2*math.Pi*10*s.t) + (s.rng.Float64()-0.5)*100
	return int16(v)
}

// walk moves an eSense value by a small random step within [0, 100]
func (s *simulator) walk(v int) int {
	v += s.rng.Intn(11) - 5
	if v < 0 {
		v = 0
	}
	if v > thinkgear.MaxEsenseValue {
		v = thinkgear.MaxEsenseValue
	}
	return v
}

func (s *simulator) bandBlock() [thinkgear.NumBands]uint32 {
	var bands [thinkgear.NumBands]uint32
	for i, base := range simBandScale {
		bands[i] = uint32(float64(base) * (0.5 + s.rng.Float64()))
	}
	return bands
}

// maybeCorrupt flips one byte in the frame on a --corrupt roll, leaving
// the consumer's checksum to reject it
func (s *simulator) maybeCorrupt(frame []byte) []byte {
	if s.corrupt <= 0 || s.rng.Intn(100) >= s.corrupt {
		return frame
	}
	i := s.rng.Intn(len(frame))
	frame[i] ^= 1 << s.rng.Intn(8)
	return frame
}

// rawFrame builds one RAW_WAVE frame
func (s *simulator) rawFrame() []byte {
	frame, err := thinkgear.BuildFrame(thinkgear.RowRawEEG(s.rawSample()))
	if err != nil {
		log.Error("Failed to build raw frame: %v", err)
		return nil
	}
	return s.maybeCorrupt(frame)
}

// statusFrame builds the 1 Hz frame bundling quality, eSense values,
// a band power block and the occasional blink
func (s *simulator) statusFrame() []byte {
	s.attention = s.walk(s.attention)
	s.meditation = s.walk(s.meditation)

	// Clean contact most of the time, with brief degradations
	if s.rng.Intn(20) == 0 {
		s.quality = s.rng.Intn(201)
	} else {
		s.quality = 0
	}

	rows := [][]byte{
		thinkgear.RowSignalQuality(uint8(s.quality)),
		thinkgear.RowAttention(uint8(s.attention)),
		thinkgear.RowMeditation(uint8(s.meditation)),
		thinkgear.RowEEGPower(s.bandBlock()),
	}
	if s.rng.Intn(8) == 0 {
		rows = append(rows, thinkgear.RowBlinkStrength(uint8(40+s.rng.Intn(120))))
	}

	payload, err := thinkgear.BuildPayload(rows...)
	if err != nil {
		log.Error("Failed to build status payload: %v", err)
		return nil
	}
	frame, err := thinkgear.BuildFrame(payload)
	if err != nil {
		log.Error("Failed to build status frame: %v", err)
		return nil
	}
	return s.maybeCorrupt(frame)
}

// byteHub fans generated stream chunks out to every connected consumer.
// Slow consumers drop chunks rather than stalling the generator.
type byteHub struct {
	mu   sync.Mutex
	subs map[int]chan []byte
	next int
}

func newByteHub() *byteHub {
	return &byteHub{subs: make(map[int]chan []byte)}
}

func (h *byteHub) Subscribe() (int, chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan []byte, 64)
	h.subs[id] = ch
	return id, ch
}

func (h *byteHub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *byteHub) Publish(chunk []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- chunk:
		default:
		}
	}
}

// runGenerator produces the byte stream: eight raw frames per 64 Hz tick
// reaches the 512 Hz sample rate, and every 64th tick adds the 1 Hz
// status frame
func runGenerator(ctx context.Context, hub *byteHub, sim *simulator) {
	ticker := time.NewTicker(time.Second / 64)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			chunk := make([]byte, 0, 104)
			for i := 0; i < 8; i++ {
				if frame := sim.rawFrame(); frame != nil {
					chunk = append(chunk, frame...)
				}
			}
			tick++
			if tick%64 == 0 {
				if frame := sim.statusFrame(); frame != nil {
					chunk = append(chunk, frame...)
				}
			}
			hub.Publish(chunk)
		}
	}
}

// serveTCP accepts TCP clients and writes the stream to each
func serveTCP(ctx context.Context, hub *byteHub, address string) error {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Info("Serving TCP byte stream on %s", address)
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				log.Error("Accept error: %v", err)
				continue
			}
		}

		go func(conn net.Conn) {
			defer conn.Close()
			log.Info("TCP client connected: %s", conn.RemoteAddr())

			id, ch := hub.Subscribe()
			defer hub.Unsubscribe(id)
			for {
				select {
				case <-ctx.Done():
					return
				case chunk, ok := <-ch:
					if !ok {
						return
					}
					if _, err := conn.Write(chunk); err != nil {
						log.Info("TCP client disconnected: %s", conn.RemoteAddr())
						return
					}
				}
			}
		}(conn)
	}
}

var simUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// serveWS serves the stream as binary WebSocket messages, the framing the
// --url client expects
func serveWS(ctx context.Context, hub *byteHub, address string) error {
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ws, err := simUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("WebSocket upgrade failed: %v", err)
			return
		}
		defer ws.Close()
		log.Info("WebSocket client connected: %s", r.RemoteAddr)

		id, ch := hub.Subscribe()
		defer hub.Unsubscribe(id)
		for {
			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-ch:
				if !ok {
					return
				}
				if err := ws.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
					log.Info("WebSocket client disconnected: %s", r.RemoteAddr)
					return
				}
			}
		}
	})

	server := &http.Server{Addr: address, Handler: router}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	log.Info("Serving WebSocket byte stream on ws://%s/", address)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// streamToStdout writes the stream to standard output
func streamToStdout(ctx context.Context, hub *byteHub) error {
	id, ch := hub.Subscribe()
	defer hub.Unsubscribe(id)
	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := os.Stdout.Write(chunk); err != nil {
				return err
			}
		}
	}
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simCorrupt < 0 || simCorrupt > 100 {
		return fmt.Errorf("--corrupt must be between 0 and 100, got %d", simCorrupt)
	}

	sim := &simulator{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		attention:  50,
		meditation: 50,
		corrupt:    simCorrupt,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := newByteHub()
	go runGenerator(ctx, hub, sim)

	if simStdout {
		return streamToStdout(ctx, hub)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := serveTCP(ctx, hub, simListen); err != nil {
			errCh <- err
		}
	}()

	if simWS != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serveWS(ctx, hub, simWS); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Wait()
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
