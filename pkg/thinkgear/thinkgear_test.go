// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

import (
	"strings"
	"testing"
	"time"
)

// ============================================================
// Test Helpers
// ============================================================

// mustBuildFrame frames a payload, failing the test on builder errors
func mustBuildFrame(t *testing.T, payload []byte) []byte {
	t.Helper()
	frame, err := BuildFrame(payload)
	if err != nil {
		t.Fatalf("BuildFrame error: %v", err)
	}
	return frame
}

// collectingFramer returns a framer appending every packet to the returned slice
func collectingFramer() (*Framer, *[]*Packet) {
	packets := &[]*Packet{}
	f := NewFramer(func(p *Packet) {
		*packets = append(*packets, p)
	})
	return f, packets
}

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if cks := Checksum([]byte{}); cks != 0xFF {
		t.Errorf("Checksum of empty payload: expected 0xFF, got 0x%02X", cks)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		expected byte
	}{
		{"single signal quality row", []byte{0x02, 0x00}, 0xFD},
		{"attention row", []byte{0x04, 0x3C}, 0xBF},
		{"sum wraps past 0xFF", []byte{0xFF, 0x01}, 0xFF},
		{"raw EEG row", []byte{0x80, 0x02, 0x00, 0x0A}, 0x73},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cks := Checksum(tt.payload); cks != tt.expected {
				t.Errorf("Checksum mismatch: expected 0x%02X, got 0x%02X", tt.expected, cks)
			}
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	payload := []byte{0x04, 0x3C, 0x05, 0x2D}
	cks := Checksum(payload)

	if !VerifyChecksum(payload, cks) {
		t.Error("VerifyChecksum should accept the computed checksum")
	}
	if VerifyChecksum(payload, cks^0x01) {
		t.Error("VerifyChecksum should reject a corrupted checksum")
	}
}

// ============================================================
// Packet Tests
// ============================================================

func TestNewPacket_Valid(t *testing.T) {
	payload := []byte{0x02, 0x1A}
	p := NewPacket(payload, Checksum(payload))

	if !p.Valid() {
		t.Error("Packet with matching checksum should be valid")
	}
	if p.Length() != 2 {
		t.Errorf("Length mismatch: expected 2, got %d", p.Length())
	}
	if p.Checksum() != Checksum(payload) {
		t.Errorf("Checksum mismatch: expected 0x%02X, got 0x%02X", Checksum(payload), p.Checksum())
	}
	if p.Timestamp().IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestNewPacket_Invalid(t *testing.T) {
	payload := []byte{0x02, 0x1A}
	p := NewPacket(payload, Checksum(payload)^0xFF)

	if p.Valid() {
		t.Error("Packet with mismatched checksum should be invalid")
	}
}

// ============================================================
// Framer Tests
// ============================================================

func TestFramer_SingleFrame(t *testing.T) {
	f, packets := collectingFramer()

	payload := []byte{0x04, 0x3C}
	f.Feed(mustBuildFrame(t, payload))

	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet, got %d", len(*packets))
	}
	p := (*packets)[0]
	if !p.Valid() {
		t.Error("Framed packet should be valid")
	}
	if p.Length() != len(payload) {
		t.Errorf("Length mismatch: expected %d, got %d", len(payload), p.Length())
	}
	for i, b := range payload {
		if p.Payload()[i] != b {
			t.Errorf("Payload byte %d mismatch: expected 0x%02X, got 0x%02X", i, b, p.Payload()[i])
		}
	}
}

func TestFramer_ByteAtATime(t *testing.T) {
	f, packets := collectingFramer()

	frame := mustBuildFrame(t, []byte{0x02, 0x00, 0x04, 0x50})
	for _, b := range frame {
		f.Feed([]byte{b})
	}

	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet from byte-at-a-time feed, got %d", len(*packets))
	}
}

func TestFramer_ChunkSizes(t *testing.T) {
	payloads := [][]byte{
		{0x02, 0x00},
		{0x04, 0x3C, 0x05, 0x2D},
		{0x80, 0x02, 0x00, 0x0A},
	}
	var stream []byte
	for _, p := range payloads {
		stream = append(stream, mustBuildFrame(t, p)...)
	}

	for chunkSize := 1; chunkSize <= len(stream); chunkSize++ {
		f, packets := collectingFramer()
		for off := 0; off < len(stream); off += chunkSize {
			end := off + chunkSize
			if end > len(stream) {
				end = len(stream)
			}
			f.Feed(stream[off:end])
		}
		if len(*packets) != len(payloads) {
			t.Errorf("Chunk size %d: expected %d packets, got %d", chunkSize, len(payloads), len(*packets))
		}
	}
}

func TestFramer_EmptyFeed(t *testing.T) {
	f, packets := collectingFramer()

	f.Feed(nil)
	f.Feed([]byte{})

	if len(*packets) != 0 {
		t.Errorf("Expected no packets from empty feeds, got %d", len(*packets))
	}
}

func TestFramer_ZeroLengthPayload(t *testing.T) {
	f, packets := collectingFramer()

	f.Feed([]byte{SyncByte, SyncByte, 0x00, 0xFF})

	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet for zero-length payload, got %d", len(*packets))
	}
	if (*packets)[0].Length() != 0 {
		t.Errorf("Expected empty payload, got %d bytes", (*packets)[0].Length())
	}
}

func TestFramer_ChecksumRejection_AllBits(t *testing.T) {
	payload := []byte{0x04, 0x3C, 0x05, 0x2D}
	frame := mustBuildFrame(t, payload)

	for bit := 0; bit < 8; bit++ {
		f, packets := collectingFramer()
		corrupted := make([]byte, len(frame))
		copy(corrupted, frame)
		corrupted[len(corrupted)-1] ^= 1 << bit

		f.Feed(corrupted)

		if len(*packets) != 0 {
			t.Errorf("Bit %d: corrupted checksum should frame no packets, got %d", bit, len(*packets))
		}
		if f.Stats().ChecksumFailures != 1 {
			t.Errorf("Bit %d: expected 1 checksum failure, got %d", bit, f.Stats().ChecksumFailures)
		}

		// Framer must be back in sync search and accept the next frame
		f.Feed(frame)
		if len(*packets) != 1 {
			t.Errorf("Bit %d: expected recovery after checksum failure, got %d packets", bit, len(*packets))
		}
	}
}

func TestFramer_ResyncThroughNoise(t *testing.T) {
	f, packets := collectingFramer()

	noise := []byte{0x01, 0x52, 0x9F, 0x00, 0x13}
	frame := mustBuildFrame(t, []byte{0x02, 0x19})

	f.Feed(append(append([]byte{}, noise...), frame...))

	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet after leading noise, got %d", len(*packets))
	}
	if f.Stats().DiscardedBytes != uint64(len(noise)) {
		t.Errorf("Expected %d discarded bytes, got %d", len(noise), f.Stats().DiscardedBytes)
	}
	if f.Stats().SyncLosses != 1 {
		t.Errorf("Expected 1 sync loss run, got %d", f.Stats().SyncLosses)
	}
}

func TestFramer_SyncByteInsideNoise(t *testing.T) {
	f, packets := collectingFramer()

	// An isolated 0xAA inside noise opens a sync attempt that the next
	// byte cancels; the real frame after the noise must still lock.
	noise := []byte{0x01, SyncByte, 0x02, 0x03}
	frame := mustBuildFrame(t, []byte{0x05, 0x2D})

	f.Feed(append(append([]byte{}, noise...), frame...))

	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet after noise with stray sync byte, got %d", len(*packets))
	}
	if f.Stats().SyncLosses != 1 {
		t.Errorf("Expected a single sync loss run, got %d", f.Stats().SyncLosses)
	}
	// The stray sync byte is consumed by the aborted attempt, not counted
	// as discarded
	if f.Stats().DiscardedBytes != 3 {
		t.Errorf("Expected 3 discarded bytes, got %d", f.Stats().DiscardedBytes)
	}
}

func TestFramer_Sync2FailureConsumesByte(t *testing.T) {
	f, packets := collectingFramer()

	// 0xAA then a non-sync byte aborts the attempt; the following complete
	// frame must still be recognized.
	frame := mustBuildFrame(t, []byte{0x04, 0x62})
	f.Feed(append([]byte{SyncByte, 0x00}, frame...))

	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet after failed sync attempt, got %d", len(*packets))
	}
}

func TestFramer_OversizeLengthRejectedImmediately(t *testing.T) {
	f, packets := collectingFramer()

	// Length byte 171 exceeds the maximum; the framer returns to sync
	// search without consuming payload bytes, so a frame that follows
	// immediately is recognized in full.
	frame := mustBuildFrame(t, []byte{0x05, 0x2D})
	input := append([]byte{SyncByte, SyncByte, MaxPayloadSize + 1}, frame...)
	f.Feed(input)

	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet after oversize length, got %d", len(*packets))
	}
	if f.Stats().OversizeLengths != 1 {
		t.Errorf("Expected 1 oversize length, got %d", f.Stats().OversizeLengths)
	}
}

func TestFramer_MaxPayloadAccepted(t *testing.T) {
	f, packets := collectingFramer()

	payload := make([]byte, MaxPayloadSize)
	for i := range payload {
		payload[i] = byte(i)
	}
	f.Feed(mustBuildFrame(t, payload))

	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet at max payload size, got %d", len(*packets))
	}
	if (*packets)[0].Length() != MaxPayloadSize {
		t.Errorf("Length mismatch: expected %d, got %d", MaxPayloadSize, (*packets)[0].Length())
	}
}

func TestFramer_AccumulatorPersistsAcrossFeeds(t *testing.T) {
	f, packets := collectingFramer()

	frame := mustBuildFrame(t, []byte{0x80, 0x02, 0x01, 0xF4})
	f.Feed(frame[:3])
	if len(*packets) != 0 {
		t.Fatal("Packet should not complete before all bytes arrive")
	}
	f.Feed(frame[3:5])
	if len(*packets) != 0 {
		t.Fatal("Packet should not complete before all bytes arrive")
	}
	f.Feed(frame[5:])

	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet after split feeds, got %d", len(*packets))
	}
}

func TestFramer_BackToBackFrames(t *testing.T) {
	f, packets := collectingFramer()

	var stream []byte
	for i := 0; i < 5; i++ {
		stream = append(stream, mustBuildFrame(t, []byte{0x04, byte(10 * i)})...)
	}
	f.Feed(stream)

	if len(*packets) != 5 {
		t.Fatalf("Expected 5 packets, got %d", len(*packets))
	}
	for i, p := range *packets {
		if p.Payload()[1] != byte(10*i) {
			t.Errorf("Packet %d: expected value %d, got %d", i, 10*i, p.Payload()[1])
		}
	}
}

func TestFramer_NilHandler(t *testing.T) {
	f := NewFramer(nil)

	f.Feed(mustBuildFrame(t, []byte{0x02, 0x00}))

	if f.Stats().FramesDecoded != 1 {
		t.Errorf("Expected frame counted with nil handler, got %d", f.Stats().FramesDecoded)
	}
}

func TestFramer_Reset(t *testing.T) {
	f, packets := collectingFramer()

	frame := mustBuildFrame(t, []byte{0x04, 0x3C})
	f.Feed(frame[:4]) // Mid-payload
	f.Reset()

	// The partial frame is gone; a fresh complete frame still decodes
	f.Feed(frame)
	if len(*packets) != 1 {
		t.Fatalf("Expected 1 packet after reset, got %d", len(*packets))
	}
}

func TestFramer_StatsCounting(t *testing.T) {
	f, _ := collectingFramer()

	noise := []byte{0x01, 0x02, 0x03}
	good := mustBuildFrame(t, []byte{0x02, 0x00})
	bad := mustBuildFrame(t, []byte{0x04, 0x3C})
	bad[len(bad)-1] ^= 0x40

	var stream []byte
	stream = append(stream, noise...)
	stream = append(stream, good...)
	stream = append(stream, bad...)
	f.Feed(stream)

	stats := f.Stats()
	if stats.BytesConsumed != uint64(len(stream)) {
		t.Errorf("BytesConsumed: expected %d, got %d", len(stream), stats.BytesConsumed)
	}
	if stats.FramesDecoded != 1 {
		t.Errorf("FramesDecoded: expected 1, got %d", stats.FramesDecoded)
	}
	if stats.ChecksumFailures != 1 {
		t.Errorf("ChecksumFailures: expected 1, got %d", stats.ChecksumFailures)
	}
	if stats.SyncLosses != 1 {
		t.Errorf("SyncLosses: expected 1, got %d", stats.SyncLosses)
	}
	if stats.DiscardedBytes != uint64(len(noise)) {
		t.Errorf("DiscardedBytes: expected %d, got %d", len(noise), stats.DiscardedBytes)
	}
}

// ============================================================
// Stream Tests
// ============================================================

func TestStream_EndToEnd(t *testing.T) {
	var items []DataItem
	s := NewStream(func(item DataItem) {
		items = append(items, item)
	})

	payload, err := BuildPayload(
		RowSignalQuality(0x1A),
		RowAttention(60),
		RowMeditation(45),
		RowRawEEG(-512),
	)
	if err != nil {
		t.Fatalf("BuildPayload error: %v", err)
	}
	s.Feed(mustBuildFrame(t, payload))

	expected := []DataItem{
		{Kind: KindSignalQuality, Value: 0x1A},
		{Kind: KindAttention, Value: 60},
		{Kind: KindMeditation, Value: 45},
		{Kind: KindRawEEG, Value: -512},
	}
	if len(items) != len(expected) {
		t.Fatalf("Expected %d items, got %d", len(expected), len(items))
	}
	for i, want := range expected {
		if items[i] != want {
			t.Errorf("Item %d mismatch: expected %+v, got %+v", i, want, items[i])
		}
	}
	if s.Stats().ItemsEmitted != uint64(len(expected)) {
		t.Errorf("ItemsEmitted: expected %d, got %d", len(expected), s.Stats().ItemsEmitted)
	}
}

func TestStream_CorruptFrameEmitsNothing(t *testing.T) {
	var items []DataItem
	s := NewStream(func(item DataItem) {
		items = append(items, item)
	})

	frame := mustBuildFrame(t, RowAttention(77))
	frame[len(frame)-1] ^= 0x01
	s.Feed(frame)

	if len(items) != 0 {
		t.Errorf("Corrupt frame should emit no items, got %d", len(items))
	}
}

func TestStream_StrictDecodeErrorCounted(t *testing.T) {
	var items []DataItem
	s := NewStream(func(item DataItem) {
		items = append(items, item)
	}, WithStrictPayload())

	// Valid row followed by a truncated multi-byte row
	payload := []byte{0x04, 0x3C, 0x80, 0x04, 0x00}
	s.Feed(mustBuildFrame(t, payload))

	if s.Stats().DecodeErrors != 1 {
		t.Errorf("Expected 1 decode error in strict mode, got %d", s.Stats().DecodeErrors)
	}
	if len(items) != 1 || items[0].Kind != KindAttention {
		t.Errorf("Items decoded before the fault should be delivered, got %+v", items)
	}
}

func TestStream_Reset(t *testing.T) {
	var items []DataItem
	s := NewStream(func(item DataItem) {
		items = append(items, item)
	})

	frame := mustBuildFrame(t, RowAttention(50))
	s.Feed(frame[:3])
	s.Reset()
	s.Feed(frame)

	if len(items) != 1 {
		t.Fatalf("Expected 1 item after reset, got %d", len(items))
	}
}

// ============================================================
// Statistics Tests
// ============================================================

func TestStatistics_CalculateRates(t *testing.T) {
	s := NewStatistics()
	s.StartTime = time.Now().Add(-10 * time.Second)
	s.FramesDecoded = 100
	s.ChecksumFailures = 5

	s.CalculateRates()

	if s.FrameRate < 9.0 || s.FrameRate > 11.0 {
		t.Errorf("FrameRate out of expected range: %f", s.FrameRate)
	}
	if s.ErrorRate <= 0 {
		t.Errorf("ErrorRate should be positive, got %f", s.ErrorRate)
	}
}

func TestStatistics_String(t *testing.T) {
	s := NewStatistics()
	s.FramesDecoded = 42
	s.ChecksumFailures = 2
	s.ItemsEmitted = 84

	out := s.String()

	for _, want := range []string{"Frames Decoded", "42", "Checksum Fails", "Items Emitted", "Frame Rate"} {
		if !strings.Contains(out, want) {
			t.Errorf("Statistics string missing %q:\n%s", want, out)
		}
	}
}

func TestStatistics_Reset(t *testing.T) {
	s := NewStatistics()
	s.FramesDecoded = 10
	s.ChecksumFailures = 3
	s.BytesConsumed = 1000
	s.ItemsEmitted = 20

	s.Reset()

	if s.FramesDecoded != 0 || s.ChecksumFailures != 0 || s.BytesConsumed != 0 || s.ItemsEmitted != 0 {
		t.Error("Reset should zero all counters")
	}
}

// ============================================================
// Quality Classification Tests
// ============================================================

func TestClassifySignal(t *testing.T) {
	tests := []struct {
		value    uint8
		expected QualityLevel
	}{
		{0, QualityExcellent},
		{1, QualityGood},
		{25, QualityGood},
		{49, QualityGood},
		{50, QualityFair},
		{99, QualityFair},
		{100, QualityPoor},
		{199, QualityPoor},
		{200, QualityNoContact},
	}

	for _, tt := range tests {
		if level := ClassifySignal(tt.value); level != tt.expected {
			t.Errorf("ClassifySignal(%d): expected %s, got %s", tt.value, tt.expected, level)
		}
	}
}

func TestQualityLevel_String(t *testing.T) {
	if QualityExcellent.String() != "Excellent" {
		t.Errorf("Expected 'Excellent', got %q", QualityExcellent.String())
	}
	if QualityNoContact.String() != "No Contact" {
		t.Errorf("Expected 'No Contact', got %q", QualityNoContact.String())
	}
	if QualityLevel(99).String() != "Unknown" {
		t.Errorf("Expected 'Unknown' for out-of-range level, got %q", QualityLevel(99).String())
	}
}

// ============================================================
// Validator Tests
// ============================================================

func TestValidateItem_InRange(t *testing.T) {
	items := []DataItem{
		{Kind: KindSignalQuality, Value: 0},
		{Kind: KindSignalQuality, Value: 200},
		{Kind: KindAttention, Value: 100},
		{Kind: KindMeditation, Value: 0},
		{Kind: KindRawEEG, Value: -32768},
		{Kind: KindBandPower, Band: BandDelta, Value: 0xFFFFFF},
		{Kind: KindBlinkStrength, Value: 255},
	}

	for _, item := range items {
		if errs := ValidateItem(item); len(errs) != 0 {
			t.Errorf("Item %+v should validate clean, got %d errors", item, len(errs))
		}
	}
}

func TestValidateItem_OutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		item     DataItem
		expected AnomalyType
	}{
		{"attention above 100", DataItem{Kind: KindAttention, Value: 101}, AnomalyInvalidEsense},
		{"meditation above 100", DataItem{Kind: KindMeditation, Value: 255}, AnomalyInvalidEsense},
		{"signal above 200", DataItem{Kind: KindSignalQuality, Value: 201}, AnomalyInvalidSignal},
		{"band power above 24 bits", DataItem{Kind: KindBandPower, Band: BandTheta, Value: 0x1000000}, AnomalyInvalidBandPower},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateItem(tt.item)
			if len(errs) != 1 {
				t.Fatalf("Expected 1 validation error, got %d", len(errs))
			}
			if errs[0].Type != tt.expected {
				t.Errorf("Expected anomaly type %d, got %d", tt.expected, errs[0].Type)
			}
			if errs[0].Error() == "" {
				t.Error("ValidationError message should not be empty")
			}
		})
	}
}

func TestValidateItems_BlinkWithoutContact(t *testing.T) {
	items := []DataItem{
		{Kind: KindSignalQuality, Value: 200},
		{Kind: KindBlinkStrength, Value: 80},
	}

	errs := ValidateItems(items)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 validation error, got %d", len(errs))
	}
	if errs[0].Type != AnomalyBlinkNoContact {
		t.Errorf("Expected AnomalyBlinkNoContact, got %d", errs[0].Type)
	}

	// Same blink with good contact is clean
	items[0].Value = 10
	if errs := ValidateItems(items); len(errs) != 0 {
		t.Errorf("Blink with contact should validate clean, got %d errors", len(errs))
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestFormatDataItem(t *testing.T) {
	tests := []struct {
		item     DataItem
		expected string
	}{
		{DataItem{Kind: KindSignalQuality, Value: 25}, "SIGNAL_QUALITY: 25 (Good)"},
		{DataItem{Kind: KindAttention, Value: 60}, "ATTENTION: 60"},
		{DataItem{Kind: KindMeditation, Value: 45}, "MEDITATION: 45"},
		{DataItem{Kind: KindRawEEG, Value: -512}, "RAW_EEG: -512"},
		{DataItem{Kind: KindBandPower, Band: BandLowAlpha, Value: 12345}, "BAND_POWER: Low-Alpha = 12345"},
		{DataItem{Kind: KindBlinkStrength, Value: 55}, "BLINK_STRENGTH: 55"},
	}

	for _, tt := range tests {
		if out := FormatDataItem(tt.item); out != tt.expected {
			t.Errorf("FormatDataItem: expected %q, got %q", tt.expected, out)
		}
	}
}

func TestFormatPacket(t *testing.T) {
	payload := []byte{0x04, 0x3C}
	p := NewPacket(payload, Checksum(payload))

	out := FormatPacket(p)
	if !strings.Contains(out, "len=2") {
		t.Errorf("FormatPacket missing length: %q", out)
	}
	if !strings.Contains(out, "04 3C") {
		t.Errorf("FormatPacket missing payload hex: %q", out)
	}
	if strings.Contains(out, "INVALID") {
		t.Errorf("Valid packet should not be marked INVALID: %q", out)
	}

	bad := NewPacket(payload, Checksum(payload)^0x01)
	if !strings.Contains(FormatPacket(bad), "INVALID") {
		t.Error("Invalid packet should be marked INVALID")
	}
}

func TestBandString(t *testing.T) {
	expected := []string{
		"Delta", "Theta", "Low-Alpha", "High-Alpha",
		"Low-Beta", "High-Beta", "Low-Gamma", "Mid-Gamma",
	}
	for i, want := range expected {
		if Band(i).String() != want {
			t.Errorf("Band(%d): expected %q, got %q", i, want, Band(i).String())
		}
	}
	if Band(8).String() != "UNKNOWN" {
		t.Errorf("Out-of-range band should be UNKNOWN, got %q", Band(8).String())
	}
}
