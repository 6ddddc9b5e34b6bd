// ABOUTME: Trigger-key tracking that gates the oscillator
// ABOUTME: Tone is active while any configured trigger key is held
package keyer

import (
	"sort"
	"sync"
)

// KeySet tracks which trigger keys are currently held and opens the
// oscillator gate while at least one is down. Keys outside the configured
// set never affect the tone.
//
// KeyDown and KeyUp are safe to call from any goroutine; the lock guards
// only the set bookkeeping and is never held during sample generation.
type KeySet struct {
	mu      sync.Mutex
	keys    map[string]struct{}
	pressed map[string]struct{}
	osc     *Oscillator
}

// NewKeySet creates a key set controlling osc. keys are logical key
// identifiers as delivered by the input source (e.g. "space", "f8").
func NewKeySet(keys []string, osc *Oscillator) *KeySet {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}

	return &KeySet{
		keys:    set,
		pressed: make(map[string]struct{}),
		osc:     osc,
	}
}

// KeyDown records a key press. Pressing an already-held key is a no-op;
// the first held trigger key opens the gate.
func (s *KeySet) KeyDown(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; !ok {
		return
	}
	s.pressed[key] = struct{}{}
	s.osc.setGate(true)
}

// KeyUp records a key release. Releasing a key that is not held is a
// no-op; releasing the last held trigger key closes the gate.
func (s *KeySet) KeyUp(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pressed[key]; !ok {
		return
	}
	delete(s.pressed, key)
	if len(s.pressed) == 0 {
		s.osc.setGate(false)
	}
}

// Pressed reports whether any trigger key is currently held.
func (s *KeySet) Pressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pressed) > 0
}

// Keys returns the configured trigger keys, sorted.
func (s *KeySet) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Contains reports whether key is one of the configured trigger keys.
func (s *KeySet) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}
