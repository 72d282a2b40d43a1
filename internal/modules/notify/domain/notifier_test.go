package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validManifest() Manifest {
	return Manifest{
		Name:         "chime",
		Version:      "1.0.0",
		Binary:       "/opt/focusdo/plugins/chime",
		SHA256:       strings.Repeat("ab", 32),
		Enabled:      true,
		Capabilities: []Capability{CapabilityNotify},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("valid manifest rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Manifest)
	}{
		{"missing name", func(m *Manifest) { m.Name = "" }},
		{"missing version", func(m *Manifest) { m.Version = "" }},
		{"missing binary", func(m *Manifest) { m.Binary = "" }},
		{"short sha", func(m *Manifest) { m.SHA256 = "abc123" }},
		{"uppercase sha", func(m *Manifest) { m.SHA256 = strings.Repeat("AB", 32) }},
		{"no capabilities", func(m *Manifest) { m.Capabilities = nil }},
		{"unknown capability", func(m *Manifest) { m.Capabilities = []Capability{"teleport"} }},
		{"duplicate capability", func(m *Manifest) {
			m.Capabilities = []Capability{CapabilityNotify, CapabilityNotify}
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := validManifest()
			tc.mutate(&m)
			if err := m.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestHasCapability(t *testing.T) {
	t.Parallel()
	m := validManifest()
	if !m.HasCapability(CapabilityNotify) {
		t.Fatalf("expected notify capability")
	}
	if m.HasCapability(CapabilitySound) {
		t.Fatalf("unexpected sound capability")
	}
}

func TestEventValidate(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC)
	if err := (Event{Kind: EventActionCompleted, At: at}).Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}
	if err := (Event{Kind: "poke", At: at}).Validate(); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
	if err := (Event{Kind: EventBreakSuggested}).Validate(); err == nil {
		t.Fatalf("zero timestamp must be rejected")
	}
}
