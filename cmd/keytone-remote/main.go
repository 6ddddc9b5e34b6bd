// ABOUTME: Remote keying client for a keytone keyer
// ABOUTME: Finds a keyer via mDNS or -server and keys it from the local terminal
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/keytone/keytone-go/internal/discovery"
	"github.com/keytone/keytone-go/internal/remote"
	"github.com/keytone/keytone-go/internal/ui"
)

var (
	serverAddr = flag.String("server", "", "Keyer address (skip mDNS discovery)")
	name       = flag.String("name", "", "Client name (default: hostname-remote)")
	keysFlag   = flag.String("keys", "space", "Comma-separated trigger keys")
	holdMs     = flag.Int("hold-ms", 500, "Terminal keying hold window in milliseconds")
	logFile    = flag.String("log-file", "keytone-remote.log", "Log file path")
)

func main() {
	flag.Parse()

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()
	log.SetOutput(f)

	clientName := *name
	if clientName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		clientName = fmt.Sprintf("%s-remote", hostname)
	}

	triggerKeys := parseKeys(*keysFlag)
	if len(triggerKeys) == 0 {
		log.Fatalf("no trigger keys configured")
	}

	// Find a keyer
	addr := *serverAddr
	if addr == "" {
		log.Printf("Browsing for keyers...")
		disc := discovery.NewManager(discovery.Config{ServiceName: clientName})
		disc.Browse()

		select {
		case keyerInfo := <-disc.Keyers():
			addr = fmt.Sprintf("%s:%d", keyerInfo.Host, keyerInfo.Port)
			log.Printf("Discovered keyer at %s", addr)
		case <-time.After(10 * time.Second):
			log.Fatalf("No keyer found after 10 seconds")
		}
		disc.Stop()
	}

	client := remote.NewClient(remote.ClientConfig{
		ServerAddr: addr,
		Name:       clientName,
	})
	if err := client.Connect(); err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	keyerHello := client.Keyer()

	prog, err := ui.Run(ui.Config{
		Title:      "KeyTone Remote",
		Keys:       triggerKeys,
		Frequency:  keyerHello.Frequency,
		SampleRate: keyerHello.SampleRate,
		HoldWindow: time.Duration(*holdMs) * time.Millisecond,
		Keyer:      &remoteKeyer{client: client, held: make(map[string]struct{})},
		KeyerName:  keyerHello.Name,
	})
	if err != nil {
		log.Fatalf("failed to start TUI: %v", err)
	}

	if _, err := prog.Run(); err != nil {
		log.Fatalf("TUI error: %v", err)
	}
}

// remoteKeyer forwards key transitions over the WebSocket and mirrors the
// held state locally for display.
type remoteKeyer struct {
	client *remote.Client
	mu     sync.Mutex
	held   map[string]struct{}
}

func (r *remoteKeyer) KeyDown(key string) {
	if err := r.client.SendKeyDown(key); err != nil {
		log.Printf("failed to send key down: %v", err)
		return
	}
	r.mu.Lock()
	r.held[key] = struct{}{}
	r.mu.Unlock()
}

func (r *remoteKeyer) KeyUp(key string) {
	if err := r.client.SendKeyUp(key); err != nil {
		log.Printf("failed to send key up: %v", err)
	}
	r.mu.Lock()
	delete(r.held, key)
	r.mu.Unlock()
}

func (r *remoteKeyer) Pressed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.held) > 0
}

// parseKeys splits the -keys flag into trigger key identifiers.
func parseKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
