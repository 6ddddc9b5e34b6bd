// ABOUTME: Audio output using the oto library
// ABOUTME: Pulls samples from the oscillator and plays them with software volume
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// SampleSource produces the next chunk of mono float64 samples on demand.
// Fill must never block; it runs on the audio pull path.
type SampleSource interface {
	Fill(dst []float64)
}

// Output manages the audio device. Samples are pulled from a SampleSource
// through oto's player reader, converted to 32-bit float PCM, and scaled by
// the software volume. Volume and mute are atomics because the reader runs
// on oto's audio goroutine and must not contend with the UI.
type Output struct {
	otoCtx     *oto.Context
	player     *oto.Player
	sampleRate int
	volume     atomic.Int32 // 0-100
	muted      atomic.Bool
	ready      bool
}

// NewOutput creates an audio output at full volume.
func NewOutput() *Output {
	o := &Output{}
	o.volume.Store(100)
	return o
}

// Initialize sets up the oto context for mono float32 playback.
func (o *Output) Initialize(sampleRate int) error {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.ready = true

	log.Printf("Audio output initialized: %dHz, mono float32", sampleRate)

	return nil
}

// Start begins continuous playback from src.
func (o *Output) Start(src SampleSource) error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}

	o.player = o.otoCtx.NewPlayer(&sourceReader{src: src, out: o})
	o.player.Play()

	return nil
}

// SetVolume sets the volume (0-100).
func (o *Output) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	o.volume.Store(int32(volume))
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state.
func (o *Output) SetMuted(muted bool) {
	o.muted.Store(muted)
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume.
func (o *Output) GetVolume() int {
	return int(o.volume.Load())
}

// IsMuted returns mute state.
func (o *Output) IsMuted() bool {
	return o.muted.Load()
}

// Close stops playback and releases the device.
func (o *Output) Close() {
	if o.player != nil {
		_ = o.player.Close()
	}
	if o.otoCtx != nil {
		o.otoCtx.Suspend()
		o.ready = false
	}
}

// volumeMultiplier returns the linear gain for the current volume state.
func (o *Output) volumeMultiplier() float64 {
	if o.muted.Load() {
		return 0
	}
	return float64(o.volume.Load()) / 100.0
}

// sourceReader adapts a SampleSource to the io.Reader oto pulls from,
// converting float64 samples to little-endian float32 bytes.
type sourceReader struct {
	src     SampleSource
	out     *Output
	scratch []float64
}

func (r *sourceReader) Read(p []byte) (int, error) {
	numSamples := len(p) / 4
	if numSamples == 0 {
		return 0, nil
	}

	if cap(r.scratch) < numSamples {
		r.scratch = make([]float64, numSamples)
	}
	buf := r.scratch[:numSamples]
	r.src.Fill(buf)

	mult := r.out.volumeMultiplier()
	for i, s := range buf {
		bits := math.Float32bits(float32(s * mult))
		binary.LittleEndian.PutUint32(p[i*4:], bits)
	}

	return numSamples * 4, nil
}
