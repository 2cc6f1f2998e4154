// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package cmd

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

// scriptedConn serves each chunk in one Read call, then blocks on release
// (when set) before reporting end of stream.
type scriptedConn struct {
	mu      sync.Mutex
	chunks  [][]byte
	release chan struct{}
}

func (c *scriptedConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	if len(c.chunks) == 0 {
		c.mu.Unlock()
		if c.release != nil {
			<-c.release
		}
		return 0, io.EOF
	}
	chunk := c.chunks[0]
	c.chunks = c.chunks[1:]
	c.mu.Unlock()
	return copy(p, chunk), nil
}

func (c *scriptedConn) Write(p []byte) (int, error) { return len(p), nil }

func (c *scriptedConn) Close() error { return nil }

func TestStreamLoop_PeerCloseKeepsStatistics(t *testing.T) {
	t.Parallel()

	frame, err := thinkgear.BuildFrame([]byte{thinkgear.CodeAttention, 0x28})
	require.NoError(t, err)

	// End of stream is held back until the frame has been decoded, so
	// the final chunk cannot race the close notification.
	conn := &scriptedConn{chunks: [][]byte{frame}, release: make(chan struct{})}
	var once sync.Once
	framer := decodingFramer(thinkgear.NewDecoder(), func(_ *thinkgear.Packet, _ []thinkgear.DataItem, err error) {
		require.NoError(t, err)
		once.Do(func() { close(conn.release) })
	})

	streamLoop(context.Background(), conn, framer)

	stats := framer.Stats()
	assert.Equal(t, uint64(1), stats.FramesDecoded)
	assert.Equal(t, uint64(1), stats.ItemsEmitted)
}

func TestStreamLoop_CancelReturnsForSummary(t *testing.T) {
	t.Parallel()

	frame, err := thinkgear.BuildFrame([]byte{thinkgear.CodeMeditation, 0x3C})
	require.NoError(t, err)

	conn := &scriptedConn{chunks: [][]byte{frame}, release: make(chan struct{})}
	t.Cleanup(func() { close(conn.release) })

	// Cancel once the frame lands, the way Ctrl+C interrupts a live
	// stream mid-decode. The loop must return so the summary prints.
	ctx, cancel := context.WithCancel(context.Background())
	framer := decodingFramer(thinkgear.NewDecoder(), func(_ *thinkgear.Packet, _ []thinkgear.DataItem, _ error) {
		cancel()
	})

	streamLoop(ctx, conn, framer)

	stats := framer.Stats()
	assert.Equal(t, uint64(1), stats.FramesDecoded)
	assert.Equal(t, uint64(1), stats.ItemsEmitted)
	assert.Zero(t, stats.DecodeErrors)
}
