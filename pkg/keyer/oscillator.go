// ABOUTME: Gated sine oscillator generating the keyer tone
// ABOUTME: Keeps phase across buffer fills and finishes the cycle on release
package keyer

import (
	"fmt"
	"math"
	"sync/atomic"
)

const twoPi = 2 * math.Pi

// Config holds the fixed oscillator parameters for a run.
type Config struct {
	Frequency  float64 // tone frequency in Hz
	SampleRate int     // output sample rate in Hz
	Amplitude  float64 // peak amplitude, 0.0-1.0
}

// Validate checks the configuration preconditions.
func (c Config) Validate() error {
	if c.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive, got %g", c.Frequency)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Amplitude < 0 || c.Amplitude > 1 {
		return fmt.Errorf("amplitude must be in [0,1], got %g", c.Amplitude)
	}
	return nil
}

// oscState is the oscillator's gate state machine.
//
// Transitions:
//
//	silent    -> active    key down
//	active    -> releasing key up mid-cycle
//	active    -> silent    key up exactly at a cycle boundary
//	releasing -> silent    current cycle completes
//	releasing -> active    key down before the cycle completes
type oscState int

const (
	stateSilent oscState = iota
	stateActive
	stateReleasing
)

// Oscillator produces a sine tone while its gate is open. When the gate
// closes it plays out the remainder of the current wave cycle before going
// silent, so the tone never cuts at a non-zero sample (which would click).
//
// Fill is intended to be called from an audio callback thread while the gate
// is flipped from key-event handlers; the gate is a single atomic flag and
// Fill never blocks.
type Oscillator struct {
	frequency  float64
	sampleRate int
	amplitude  float64

	phaseInc float64 // radians per sample
	phase    float64 // current position in the cycle, [0, 2pi)

	state oscState    // owned exclusively by Fill
	gate  atomic.Bool // written by key events, read per sample by Fill
}

// NewOscillator creates an oscillator in the silent state at phase zero.
func NewOscillator(cfg Config) (*Oscillator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid oscillator config: %w", err)
	}

	return &Oscillator{
		frequency:  cfg.Frequency,
		sampleRate: cfg.SampleRate,
		amplitude:  cfg.Amplitude,
		phaseInc:   twoPi * cfg.Frequency / float64(cfg.SampleRate),
	}, nil
}

// Frequency returns the configured tone frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// SampleRate returns the configured sample rate in Hz.
func (o *Oscillator) SampleRate() int { return o.sampleRate }

// Amplitude returns the configured peak amplitude.
func (o *Oscillator) Amplitude() float64 { return o.amplitude }

// setGate opens or closes the tone gate. Safe to call from any goroutine.
func (o *Oscillator) setGate(open bool) {
	o.gate.Store(open)
}

// Fill writes the next len(dst) samples. It always succeeds, always fills
// the whole buffer, and never blocks.
//
// The phase advances on every sample regardless of state, including during
// silence, so a later key press resumes on a continuous waveform instead of
// restarting mid-buffer with a jump.
func (o *Oscillator) Fill(dst []float64) {
	for i := range dst {
		switch {
		case o.gate.Load():
			// Key held: full tone. Also cancels an in-progress release.
			o.state = stateActive
			dst[i] = o.amplitude * math.Sin(o.phase)

		case o.state == stateActive:
			// Key just released. At an exact cycle boundary there is
			// nothing to play out; otherwise finish the current cycle.
			if o.phase == 0 {
				o.state = stateSilent
				dst[i] = 0
			} else {
				o.state = stateReleasing
				dst[i] = o.amplitude * math.Sin(o.phase)
			}

		case o.state == stateReleasing:
			dst[i] = o.amplitude * math.Sin(o.phase)

		default:
			dst[i] = 0
		}

		o.phase += o.phaseInc
		if o.phase >= twoPi {
			o.phase -= twoPi
			// The cycle is complete; the release tail ends here.
			if o.state == stateReleasing {
				o.state = stateSilent
			}
		}
	}
}
