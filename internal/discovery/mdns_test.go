// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager construction and lifecycle
package discovery

import (
	"testing"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "Test Keyer",
		Port:        8473,
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}

	if mgr.Keyers() == nil {
		t.Error("expected keyers channel to be initialized")
	}
}

func TestStopIsIdempotentEnough(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test Keyer", Port: 8473})

	mgr.Stop()

	select {
	case <-mgr.ctx.Done():
	default:
		t.Error("expected context to be cancelled after Stop")
	}
}
