// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package metrics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

// Aggregate summarizes a series of readings
type Aggregate struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func aggregate(values []float64) Aggregate {
	if len(values) == 0 {
		return Aggregate{}
	}
	return Aggregate{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
}

// String renders the aggregate as a one-line summary
func (a Aggregate) String() string {
	if a.Count == 0 {
		return "no data"
	}
	return fmt.Sprintf("n=%d mean=%.1f min=%.0f max=%.0f", a.Count, a.Mean, a.Min, a.Max)
}

// Session accumulates decoded items into per-kind series and counters for
// one recording run. Raw EEG is counted rather than stored; at 512 Hz the
// samples themselves belong in a Ring, not a session record.
// Not safe for concurrent use.
type Session struct {
	ID        string
	StartTime time.Time

	attention  []float64
	meditation []float64
	signal     []float64

	bandSums   [thinkgear.NumBands]float64
	bandBlocks int

	rawCount   uint64
	blinkCount int
	itemCount  uint64

	stress       *StressIndex
	stressSeries []float64
}

// NewSession starts a new recording session
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
		stress:    NewStressIndex(),
	}
}

// Record folds one decoded item into the session
func (s *Session) Record(item thinkgear.DataItem) {
	s.itemCount++
	switch item.Kind {
	case thinkgear.KindAttention:
		s.attention = append(s.attention, float64(item.Value))
	case thinkgear.KindMeditation:
		s.meditation = append(s.meditation, float64(item.Value))
	case thinkgear.KindSignalQuality:
		s.signal = append(s.signal, float64(item.Value))
	case thinkgear.KindRawEEG:
		s.rawCount++
	case thinkgear.KindBlinkStrength:
		s.blinkCount++
	case thinkgear.KindBandPower:
		if item.Band < 0 || int(item.Band) >= thinkgear.NumBands {
			return
		}
		s.bandSums[item.Band] += float64(item.Value)
		if s.stress.Update(item) {
			s.bandBlocks++
			s.stressSeries = append(s.stressSeries, s.stress.Score())
		}
	}
}

// Stress returns the session's live stress index
func (s *Session) Stress() *StressIndex {
	return s.stress
}

// AttentionSeries returns a copy of the recorded attention values
func (s *Session) AttentionSeries() []float64 {
	return append([]float64{}, s.attention...)
}

// MeditationSeries returns a copy of the recorded meditation values
func (s *Session) MeditationSeries() []float64 {
	return append([]float64{}, s.meditation...)
}

// StressSeries returns a copy of the per-block stress scores
func (s *Session) StressSeries() []float64 {
	return append([]float64{}, s.stressSeries...)
}

// BandMeans returns the mean power per band across all recorded blocks
func (s *Session) BandMeans() [thinkgear.NumBands]float64 {
	var means [thinkgear.NumBands]float64
	if s.bandBlocks == 0 {
		return means
	}
	for i, sum := range s.bandSums {
		means[i] = sum / float64(s.bandBlocks)
	}
	return means
}

// Summary is a point-in-time rollup of a session
type Summary struct {
	SessionID   string                      `json:"sessionId"`
	Duration    time.Duration               `json:"duration"`
	Attention   Aggregate                   `json:"attention"`
	Meditation  Aggregate                   `json:"meditation"`
	Signal      Aggregate                   `json:"signalQuality"`
	RawSamples  uint64                      `json:"rawSamples"`
	BandBlocks  int                         `json:"bandBlocks"`
	Blinks      int                         `json:"blinks"`
	Items       uint64                      `json:"items"`
	BandMeans   [thinkgear.NumBands]float64 `json:"bandMeans"`
	StressScore float64                     `json:"stressScore"`
	StressLevel StressLevel                 `json:"stressLevel"`
}

// Summarize rolls the session up as of now. The session stays live;
// summarizing does not end it.
func (s *Session) Summarize() Summary {
	return Summary{
		SessionID:   s.ID,
		Duration:    time.Since(s.StartTime),
		Attention:   aggregate(s.attention),
		Meditation:  aggregate(s.meditation),
		Signal:      aggregate(s.signal),
		RawSamples:  s.rawCount,
		BandBlocks:  s.bandBlocks,
		Blinks:      s.blinkCount,
		Items:       s.itemCount,
		BandMeans:   s.BandMeans(),
		StressScore: s.stress.Score(),
		StressLevel: s.stress.Level(),
	}
}

// String returns a formatted session summary
func (s Summary) String() string {
	result := fmt.Sprintf("=== Session Summary (%.0f seconds) ===\n", s.Duration.Seconds())
	result += fmt.Sprintf("Session:       %s\n", s.SessionID)
	result += fmt.Sprintf("Attention:     %s\n", s.Attention)
	result += fmt.Sprintf("Meditation:    %s\n", s.Meditation)
	result += fmt.Sprintf("Signal:        %s\n", s.Signal)
	result += fmt.Sprintf("Raw Samples:   %d\n", s.RawSamples)
	result += fmt.Sprintf("Band Blocks:   %d\n", s.BandBlocks)

	if s.Blinks > 0 {
		result += fmt.Sprintf("Blinks:        %d\n", s.Blinks)
	}
	if s.BandBlocks > 0 {
		result += fmt.Sprintf("Stress:        %.1f (%s)\n", s.StressScore, s.StressLevel)
	}

	result += "=====================================\n"
	return result
}
