// ABOUTME: Bubbletea model for the keyer TUI
// ABOUTME: Handles trigger-key keying with a hold window, volume, and status
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Keyer receives key transitions from the TUI: the local key set, or a
// remote-client adapter when this TUI keys another machine.
type Keyer interface {
	KeyDown(key string)
	KeyUp(key string)
	Pressed() bool
}

// VolumeControl adjusts playback volume. Nil when the UI drives a remote
// keyer and has no local audio.
type VolumeControl interface {
	SetVolume(volume int)
	SetMuted(muted bool)
}

// Config holds TUI configuration.
type Config struct {
	Title      string
	Keys       []string // trigger keys, bubbletea key-name strings
	Frequency  float64
	SampleRate int
	HoldWindow time.Duration
	Keyer      Keyer
	Volume     VolumeControl
	KeyerName  string // name of the remote keyer being driven, if any
}

// StatusMsg updates TUI state from outside the event loop.
type StatusMsg struct {
	RemoteClients *int
	Connected     *bool
	KeyerName     string
}

// keyCheckMsg asks the model to expire trigger keys whose hold window
// passed without an auto-repeat.
type keyCheckMsg struct{}

// Model represents the TUI state.
type Model struct {
	config   Config
	triggers map[string]struct{}

	// Trigger keys currently considered held, with their expiry times.
	// Terminals report presses (and auto-repeats) but never releases, so
	// a key is released when its hold window lapses without a repeat.
	held map[string]time.Time

	volume int
	muted  bool

	remoteClients int
	connected     bool
	keyerName     string

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(config Config) Model {
	triggers := make(map[string]struct{}, len(config.Keys))
	for _, k := range config.Keys {
		triggers[k] = struct{}{}
	}

	return Model{
		config:    config,
		triggers:  triggers,
		held:      make(map[string]time.Time),
		volume:    100,
		connected: true,
		keyerName: config.KeyerName,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case keyCheckMsg:
		return m.expireKeys()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := normalizeKey(msg.String())

	if _, ok := m.triggers[key]; ok {
		return m.pressTrigger(key)
	}

	switch key {
	case "q", "ctrl+c":
		m.releaseAll()
		return m, tea.Quit
	case "up":
		if m.config.Volume != nil {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.config.Volume.SetVolume(m.volume)
		}
	case "down":
		if m.config.Volume != nil {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.config.Volume.SetVolume(m.volume)
		}
	case "m":
		if m.config.Volume != nil {
			m.muted = !m.muted
			m.config.Volume.SetMuted(m.muted)
		}
	}

	return m, nil
}

// pressTrigger marks a trigger key held and arms its hold window. The
// first press keys down; auto-repeats only push the expiry forward.
func (m Model) pressTrigger(key string) (tea.Model, tea.Cmd) {
	_, alreadyHeld := m.held[key]
	m.held[key] = time.Now().Add(m.config.HoldWindow)

	if !alreadyHeld {
		m.config.Keyer.KeyDown(key)
	}

	return m, tea.Tick(m.config.HoldWindow+20*time.Millisecond, func(time.Time) tea.Msg {
		return keyCheckMsg{}
	})
}

// expireKeys releases trigger keys whose hold window has lapsed.
func (m Model) expireKeys() (tea.Model, tea.Cmd) {
	now := time.Now()
	for key, deadline := range m.held {
		if now.After(deadline) {
			delete(m.held, key)
			m.config.Keyer.KeyUp(key)
		}
	}

	if len(m.held) > 0 {
		return m, tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
			return keyCheckMsg{}
		})
	}

	return m, nil
}

// releaseAll keys up everything still held, used before quitting.
func (m Model) releaseAll() {
	for key := range m.held {
		delete(m.held, key)
		m.config.Keyer.KeyUp(key)
	}
}

// applyStatus updates model from a status message.
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.RemoteClients != nil {
		m.remoteClients = *msg.RemoteClients
	}
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.KeyerName != "" {
		m.keyerName = msg.KeyerName
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderTone()
	s += m.renderControls()
	s += m.renderHelp()

	return s
}

// renderHeader renders the title and connection line.
func (m Model) renderHeader() string {
	status := "Ready"
	if !m.connected {
		status = "Disconnected"
	} else if m.keyerName != "" {
		status = fmt.Sprintf("Keying %s", m.keyerName)
	}

	return fmt.Sprintf(`┌─ %s ─────────────────────────────────────┐
│ Status: %-41s │
├───────────────────────────────────────────────────┤
`, pad(m.config.Title, 8), status)
}

// renderTone renders the tone state and parameters.
func (m Model) renderTone() string {
	tone := "· idle"
	if m.config.Keyer.Pressed() {
		tone = "● KEYED"
	}

	s := fmt.Sprintf("│ Tone:   %-41s │\n", tone)
	s += fmt.Sprintf("│ Signal: %-41s │\n",
		fmt.Sprintf("%.0fHz sine @ %dHz", m.config.Frequency, m.config.SampleRate))
	s += fmt.Sprintf("│ Keys:   %-41s │\n", truncate(strings.Join(m.config.Keys, " "), 41))

	return s
}

// renderControls renders volume and remote-client status.
func (m Model) renderControls() string {
	s := ""

	if m.config.Volume != nil {
		muteIcon := ""
		if m.muted {
			muteIcon = " (muted)"
		}
		s += fmt.Sprintf("│ Volume: [%s] %d%%%-24s │\n",
			renderBar(m.volume, 100, 10), m.volume, muteIcon)
		s += fmt.Sprintf("│ Remote: %-41s │\n",
			fmt.Sprintf("%d client(s)", m.remoteClients))
	}

	return s
}

// renderHelp renders keyboard shortcuts.
func (m Model) renderHelp() string {
	help := "hold key:Tone  q:Quit"
	if m.config.Volume != nil {
		help = "hold key:Tone  ↑/↓:Volume  m:Mute  q:Quit"
	}
	return fmt.Sprintf(`├───────────────────────────────────────────────────┤
│ %-49s │
└───────────────────────────────────────────────────┘
`, help)
}

// normalizeKey maps bubbletea key strings to the identifiers used in
// trigger-key configuration.
func normalizeKey(s string) string {
	if s == " " {
		return "space"
	}
	return s
}

// renderBar renders a progress bar.
func renderBar(value, max, width int) string {
	filled := value * width / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

// truncate shortens a string to maxLen.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// pad right-pads a string to at least width.
func pad(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}
