package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

type Capability string

const (
	CapabilityNotify Capability = "notify"
	CapabilitySound  Capability = "sound"
)

var (
	ErrPluginDisabled    = errors.New("notifier plugin is disabled")
	ErrChecksumMismatch  = errors.New("notifier plugin checksum mismatch")
	ErrCapabilityMissing = errors.New("notifier plugin capability missing")
	ErrPluginTimeout     = errors.New("notifier plugin timeout")
	ErrUnknownEvent      = errors.New("unknown notification event")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest describes one installed notifier plugin. The binary's checksum
// is verified before every launch.
type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Binary       string       `json:"binary"`
	SHA256       string       `json:"sha256"`
	Enabled      bool         `json:"enabled"`
	Capabilities []Capability `json:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("plugin sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("plugin capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityNotify, CapabilitySound:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type EventKind string

const (
	EventSessionStarted   EventKind = "session_started"
	EventActionCompleted  EventKind = "action_completed"
	EventSessionCompleted EventKind = "session_completed"
	EventBreakSuggested   EventKind = "break_suggested"
)

func (k EventKind) Validate() error {
	switch k {
	case EventSessionStarted, EventActionCompleted, EventSessionCompleted, EventBreakSuggested:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, k)
	}
}

// Event is what plugins receive. Minutes is event-specific: actual time
// for completions, suggested length for breaks, zero otherwise.
type Event struct {
	Kind       EventKind
	Goal       string
	ActionText string
	Minutes    int
	At         time.Time
}

func (e Event) Validate() error {
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if e.At.IsZero() {
		return fmt.Errorf("event timestamp is required")
	}
	return nil
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

// DispatchResult is the per-plugin outcome of one event fan-out. Delivery
// is best effort; one failing plugin never blocks the others.
type DispatchResult struct {
	Plugin    string
	Delivered bool
	Error     string
}
