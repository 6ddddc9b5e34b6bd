// ABOUTME: Tests for the gated sine oscillator
// ABOUTME: Covers phase continuity, release tails, and the silence invariant
package keyer

import (
	"math"
	"testing"
)

const tolerance = 1e-9

// expectedSine returns the analytic sample value n samples into the tone.
func expectedSine(cfg Config, n int) float64 {
	return cfg.Amplitude * math.Sin(twoPi*cfg.Frequency*float64(n)/float64(cfg.SampleRate))
}

func newTestKeyer(t *testing.T, cfg Config) (*Oscillator, *KeySet) {
	t.Helper()
	osc, err := NewOscillator(cfg)
	if err != nil {
		t.Fatalf("NewOscillator: %v", err)
	}
	return osc, NewKeySet([]string{"k"}, osc)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Frequency: 700, SampleRate: 48000, Amplitude: 0.5}, false},
		{"zero frequency", Config{Frequency: 0, SampleRate: 48000, Amplitude: 0.5}, true},
		{"negative frequency", Config{Frequency: -440, SampleRate: 48000, Amplitude: 0.5}, true},
		{"zero sample rate", Config{Frequency: 700, SampleRate: 0, Amplitude: 0.5}, true},
		{"negative sample rate", Config{Frequency: 700, SampleRate: -1, Amplitude: 0.5}, true},
		{"amplitude too high", Config{Frequency: 700, SampleRate: 48000, Amplitude: 1.5}, true},
		{"amplitude negative", Config{Frequency: 700, SampleRate: 48000, Amplitude: -0.1}, true},
		{"amplitude zero", Config{Frequency: 700, SampleRate: 48000, Amplitude: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOscillator(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewOscillator(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
		})
	}
}

func TestSilentByDefault(t *testing.T) {
	osc, _ := newTestKeyer(t, Config{Frequency: 700, SampleRate: 48000, Amplitude: 1.0})

	buf := make([]float64, 480)
	osc.Fill(buf)

	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %g, want exactly 0 while silent", i, s)
		}
	}
}

func TestActiveToneMatchesSine(t *testing.T) {
	// The 10ms scenario: 600Hz at 48kHz, keyed from the start.
	cfg := Config{Frequency: 600, SampleRate: 48000, Amplitude: 1.0}
	osc, keys := newTestKeyer(t, cfg)

	keys.KeyDown("k")
	buf := make([]float64, 480)
	osc.Fill(buf)

	for n, s := range buf {
		want := expectedSine(cfg, n)
		if math.Abs(s-want) > tolerance {
			t.Fatalf("sample %d = %g, want %g", n, s, want)
		}
	}
}

func TestPhaseContinuityAcrossFills(t *testing.T) {
	cfg := Config{Frequency: 600, SampleRate: 48000, Amplitude: 1.0}

	oscA, keysA := newTestKeyer(t, cfg)
	oscB, keysB := newTestKeyer(t, cfg)
	keysA.KeyDown("k")
	keysB.KeyDown("k")

	// Many small fills must produce the identical sample stream as one
	// large fill: the phase carries across buffer boundaries.
	var chunked []float64
	for i := 0; i < 8; i++ {
		buf := make([]float64, 60)
		oscA.Fill(buf)
		chunked = append(chunked, buf...)
	}

	whole := make([]float64, 480)
	oscB.Fill(whole)

	for n := range whole {
		if chunked[n] != whole[n] {
			t.Fatalf("sample %d: chunked %g != whole %g", n, chunked[n], whole[n])
		}
	}
}

func TestReleaseFinishesCycle(t *testing.T) {
	// 200Hz at 48kHz: 240 samples per cycle. Release 60 samples into a
	// cycle, so the tail must run 180 more samples to the next
	// zero-crossing before silence.
	cfg := Config{Frequency: 200, SampleRate: 48000, Amplitude: 1.0}
	osc, keys := newTestKeyer(t, cfg)

	keys.KeyDown("k")
	head := make([]float64, 300)
	osc.Fill(head)

	keys.KeyUp("k")
	tail := make([]float64, 480)
	osc.Fill(tail)

	const tailLen = 180
	for k := 0; k < tailLen; k++ {
		want := expectedSine(cfg, 300+k)
		if math.Abs(tail[k]-want) > tolerance {
			t.Fatalf("tail sample %d = %g, want %g (sine must continue to the zero-crossing)", k, tail[k], want)
		}
	}
	for k := tailLen; k < len(tail); k++ {
		if tail[k] != 0 {
			t.Fatalf("sample %d after cycle completion = %g, want exactly 0", k, tail[k])
		}
	}

	// The last audible sample sits just before the zero-crossing.
	last := math.Abs(tail[tailLen-1])
	if last >= 0.05*cfg.Amplitude {
		t.Errorf("last tail sample magnitude = %g, want < %g", last, 0.05*cfg.Amplitude)
	}
}

func TestReleaseAfterWholeCycles(t *testing.T) {
	// Second half of the spec scenario: key up after exactly six cycles.
	// The tail is at most one full cycle (80 samples at 600Hz/48kHz),
	// after which every sample is exactly zero.
	cfg := Config{Frequency: 600, SampleRate: 48000, Amplitude: 1.0}
	osc, keys := newTestKeyer(t, cfg)

	keys.KeyDown("k")
	osc.Fill(make([]float64, 480))

	keys.KeyUp("k")
	buf := make([]float64, 480)
	osc.Fill(buf)

	// Find where unbroken exact silence begins.
	silentFrom := len(buf)
	for silentFrom > 0 && buf[silentFrom-1] == 0 {
		silentFrom--
	}

	if silentFrom > 80 {
		t.Fatalf("silence begins at sample %d, want within one cycle (80 samples)", silentFrom)
	}
	for k := 0; k < silentFrom; k++ {
		want := expectedSine(cfg, 480+k)
		if math.Abs(buf[k]-want) > tolerance {
			t.Fatalf("tail sample %d = %g, want %g", k, buf[k], want)
		}
	}

	// Once silent, the oscillator stays silent.
	next := make([]float64, 480)
	osc.Fill(next)
	for i, s := range next {
		if s != 0 {
			t.Fatalf("post-release sample %d = %g, want exactly 0", i, s)
		}
	}
}

func TestResumeDuringRelease(t *testing.T) {
	// A key press during the release tail cancels it: the tone must
	// continue at full amplitude without ever passing through silence.
	cfg := Config{Frequency: 200, SampleRate: 48000, Amplitude: 1.0}
	osc, keys := newTestKeyer(t, cfg)

	keys.KeyDown("k")
	a := make([]float64, 300)
	osc.Fill(a)

	keys.KeyUp("k")
	b := make([]float64, 60) // release tail is 180 samples, still mid-tail
	osc.Fill(b)

	keys.KeyDown("k")
	c := make([]float64, 240)
	osc.Fill(c)

	stream := append(append(a, b...), c...)
	for n, s := range stream {
		want := expectedSine(cfg, n)
		if math.Abs(s-want) > tolerance {
			t.Fatalf("sample %d = %g, want %g (resume must not break the waveform)", n, s, want)
		}
	}
}

func TestPhaseAdvancesDuringSilence(t *testing.T) {
	// Phase keeps moving while silent, so a later press resumes on the
	// waveform position the oscillator would have reached anyway.
	cfg := Config{Frequency: 200, SampleRate: 48000, Amplitude: 1.0}
	osc, keys := newTestKeyer(t, cfg)

	osc.Fill(make([]float64, 100))

	keys.KeyDown("k")
	buf := make([]float64, 240)
	osc.Fill(buf)

	for n, s := range buf {
		want := expectedSine(cfg, 100+n)
		if math.Abs(s-want) > tolerance {
			t.Fatalf("sample %d = %g, want %g", n, s, want)
		}
	}
}

func TestAmplitudeScaling(t *testing.T) {
	cfg := Config{Frequency: 600, SampleRate: 48000, Amplitude: 0.25}
	osc, keys := newTestKeyer(t, cfg)

	keys.KeyDown("k")
	buf := make([]float64, 480)
	osc.Fill(buf)

	var peak float64
	for n, s := range buf {
		want := expectedSine(cfg, n)
		if math.Abs(s-want) > tolerance {
			t.Fatalf("sample %d = %g, want %g", n, s, want)
		}
		if math.Abs(s) > peak {
			peak = math.Abs(s)
		}
	}
	if peak > cfg.Amplitude+tolerance {
		t.Errorf("peak %g exceeds amplitude %g", peak, cfg.Amplitude)
	}
}

func TestFillEmptyBuffer(t *testing.T) {
	osc, keys := newTestKeyer(t, Config{Frequency: 600, SampleRate: 48000, Amplitude: 1.0})
	keys.KeyDown("k")

	osc.Fill(nil) // zero-length fills are valid and must not panic

	buf := make([]float64, 1)
	osc.Fill(buf)
	if buf[0] != 0 {
		t.Errorf("first sample = %g, want 0 (phase must not advance on empty fill)", buf[0])
	}
}
