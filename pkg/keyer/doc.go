// ABOUTME: Package documentation for the keyer core
// ABOUTME: Describes the oscillator/key-set producer-consumer pair

// Package keyer implements the tone-generation core of keytone: a gated
// sine oscillator pulled by an audio sink, and a trigger-key set fed by
// key press/release events.
//
// The two halves meet at a single atomic gate flag. Key events (from any
// goroutine) flip the gate; the audio thread reads it per sample inside
// Oscillator.Fill and runs the Silent/Active/Releasing state machine that
// keeps the tone click-free: a release plays out the remainder of the
// current wave cycle so the signal reaches a zero-crossing before silence.
package keyer
