// ABOUTME: Tests for trigger-key tracking
// ABOUTME: Covers idempotent presses, unknown keys, and multi-key gating
package keyer

import (
	"math"
	"reflect"
	"testing"
)

func newTestKeySet(t *testing.T, keys ...string) (*Oscillator, *KeySet) {
	t.Helper()
	osc, err := NewOscillator(Config{Frequency: 600, SampleRate: 48000, Amplitude: 1.0})
	if err != nil {
		t.Fatalf("NewOscillator: %v", err)
	}
	return osc, NewKeySet(keys, osc)
}

// toneLive fills a buffer and reports whether the oscillator produced
// any non-zero signal.
func toneLive(osc *Oscillator) bool {
	buf := make([]float64, 480)
	osc.Fill(buf)
	for _, s := range buf {
		if math.Abs(s) > 0.01 {
			return true
		}
	}
	return false
}

func TestUnknownKeysIgnored(t *testing.T) {
	osc, keys := newTestKeySet(t, "space")

	keys.KeyDown("x")
	if keys.Pressed() {
		t.Error("unknown key press must not activate the tone")
	}
	if toneLive(osc) {
		t.Error("oscillator produced signal after unknown key press")
	}

	keys.KeyUp("x")
	if keys.Pressed() {
		t.Error("unknown key release must not change state")
	}
}

func TestSingleKeyGating(t *testing.T) {
	osc, keys := newTestKeySet(t, "space")

	keys.KeyDown("space")
	if !keys.Pressed() {
		t.Fatal("trigger key down, expected Pressed")
	}
	if !toneLive(osc) {
		t.Fatal("trigger key down, expected tone")
	}

	keys.KeyUp("space")
	if keys.Pressed() {
		t.Fatal("trigger key up, expected not Pressed")
	}
	// Drain the release tail, then confirm silence.
	osc.Fill(make([]float64, 480))
	if toneLive(osc) {
		t.Fatal("tone still live after release tail")
	}
}

func TestIdempotentKeyTracking(t *testing.T) {
	_, keys := newTestKeySet(t, "space")

	keys.KeyDown("space")
	keys.KeyDown("space") // repeat press of a held key
	if !keys.Pressed() {
		t.Fatal("expected Pressed after repeated downs")
	}

	keys.KeyUp("space")
	if keys.Pressed() {
		t.Error("single up must release despite repeated downs")
	}

	keys.KeyUp("space") // release of a key that is not held
	if keys.Pressed() {
		t.Error("stray up must not change state")
	}
}

func TestAnyHeldKeyKeepsToneActive(t *testing.T) {
	_, keys := newTestKeySet(t, "space", "f8")

	keys.KeyDown("space")
	keys.KeyDown("f8")
	keys.KeyUp("space")
	if !keys.Pressed() {
		t.Fatal("tone must stay active while another trigger key is held")
	}

	keys.KeyUp("f8")
	if keys.Pressed() {
		t.Fatal("expected inactive after all keys released")
	}
}

func TestKeysSortedAndContains(t *testing.T) {
	_, keys := newTestKeySet(t, "f8", "space", "b")

	want := []string{"b", "f8", "space"}
	if got := keys.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	if !keys.Contains("space") {
		t.Error("Contains(space) = false, want true")
	}
	if keys.Contains("x") {
		t.Error("Contains(x) = true, want false")
	}
}
