// ABOUTME: Entry point for the keytone keyer
// ABOUTME: Parses CLI flags, wires the oscillator to the audio output, and runs the TUI
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/keytone/keytone-go/internal/discovery"
	"github.com/keytone/keytone-go/internal/output"
	"github.com/keytone/keytone-go/internal/remote"
	"github.com/keytone/keytone-go/internal/ui"
	"github.com/keytone/keytone-go/internal/version"
	"github.com/keytone/keytone-go/pkg/keyer"
)

var (
	freq       = flag.Float64("freq", 700, "Tone frequency in Hz")
	amplitude  = flag.Float64("amplitude", 0.5, "Tone amplitude (0-1)")
	sampleRate = flag.Int("samplerate", 48000, "Sample rate in Hz")
	keysFlag   = flag.String("keys", "space", "Comma-separated trigger keys")
	holdMs     = flag.Int("hold-ms", 500, "Terminal keying hold window in milliseconds")
	port       = flag.Int("port", 8473, "Port for the remote keying server")
	name       = flag.String("name", "", "Keyer name (default: hostname-keytone)")
	noRemote   = flag.Bool("no-remote", false, "Disable the remote keying server")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	logFile    = flag.String("log-file", "keytone.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	keyerName := *name
	if keyerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		keyerName = fmt.Sprintf("%s-keytone", hostname)
	}

	log.Printf("Starting %s %s: %s", version.Product, version.Version, keyerName)

	triggerKeys := parseKeys(*keysFlag)
	if len(triggerKeys) == 0 {
		log.Fatalf("no trigger keys configured")
	}

	// Core: oscillator + trigger-key set
	osc, err := keyer.NewOscillator(keyer.Config{
		Frequency:  *freq,
		SampleRate: *sampleRate,
		Amplitude:  *amplitude,
	})
	if err != nil {
		log.Fatalf("invalid tone configuration: %v", err)
	}
	keySet := keyer.NewKeySet(triggerKeys, osc)

	// Audio output
	out := output.NewOutput()
	if err := out.Initialize(*sampleRate); err != nil {
		log.Fatalf("failed to initialize audio output: %v", err)
	}
	defer out.Close()

	if err := out.Start(osc); err != nil {
		log.Fatalf("failed to start audio output: %v", err)
	}

	// TUI
	var tuiProg *tea.Program
	if useTUI {
		tuiProg, err = ui.Run(ui.Config{
			Title:      "KeyTone Keyer",
			Keys:       triggerKeys,
			Frequency:  *freq,
			SampleRate: *sampleRate,
			HoldWindow: time.Duration(*holdMs) * time.Millisecond,
			Keyer:      keySet,
			Volume:     out,
		})
		if err != nil {
			log.Fatalf("failed to start TUI: %v", err)
		}
	}

	// Remote keying server
	if !*noRemote {
		srv := remote.NewServer(remote.Config{
			Port:       *port,
			Name:       keyerName,
			Frequency:  *freq,
			SampleRate: *sampleRate,
			OnClients: func(n int) {
				if tuiProg != nil {
					tuiProg.Send(ui.StatusMsg{RemoteClients: &n})
				}
			},
		}, keySet)
		if err := srv.Start(); err != nil {
			log.Fatalf("failed to start remote keying server: %v", err)
		}
		defer srv.Stop()

		if !*noMDNS {
			disc := discovery.NewManager(discovery.Config{
				ServiceName: keyerName,
				Port:        *port,
			})
			if err := disc.Advertise(); err != nil {
				log.Printf("mDNS advertisement failed: %v", err)
			} else {
				defer disc.Stop()
			}
		}
	}

	if useTUI {
		if _, err := tuiProg.Run(); err != nil {
			log.Fatalf("TUI error: %v", err)
		}
		return
	}

	// Headless: keying comes from remote clients only.
	log.Printf("Running headless; hold %s via a remote client to beep", strings.Join(triggerKeys, " or "))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Printf("Shutting down")
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
