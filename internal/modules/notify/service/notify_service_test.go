package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"focusdo/internal/modules/notify/domain"
	"focusdo/internal/modules/notify/service"
)

type fakeStore struct {
	manifests []domain.Manifest
	err       error
}

func (f *fakeStore) Load(_ context.Context) ([]domain.Manifest, error) {
	return f.manifests, f.err
}

type fakeHost struct {
	delivered []string
	failFor   map[string]error
}

func (f *fakeHost) CheckLifecycle(_ context.Context, _ domain.Manifest) error {
	return nil
}

func (f *fakeHost) GetMetadata(_ context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: manifest.Name, Version: manifest.Version, Capabilities: manifest.Capabilities}, nil
}

func (f *fakeHost) Notify(_ context.Context, manifest domain.Manifest, _ domain.Event) error {
	if err := f.failFor[manifest.Name]; err != nil {
		return err
	}
	f.delivered = append(f.delivered, manifest.Name)
	return nil
}

// writePluginBinary drops a dummy binary on disk and returns its path and
// real checksum, so manifest verification passes.
func writePluginBinary(t *testing.T, name string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	payload := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(path, payload, 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256(payload)
	return path, hex.EncodeToString(hash[:])
}

func manifestFor(t *testing.T, name string, enabled bool, caps ...domain.Capability) domain.Manifest {
	t.Helper()
	binary, checksum := writePluginBinary(t, name)
	if len(caps) == 0 {
		caps = []domain.Capability{domain.CapabilityNotify}
	}
	return domain.Manifest{
		Name:         name,
		Version:      "1.0.0",
		Binary:       binary,
		SHA256:       checksum,
		Enabled:      enabled,
		Capabilities: caps,
	}
}

func testEvent() domain.Event {
	return domain.Event{
		Kind:    domain.EventActionCompleted,
		Goal:    "Write report",
		Minutes: 12,
		At:      time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestDispatchFansOutToEnabledNotifiers(t *testing.T) {
	t.Parallel()
	host := &fakeHost{}
	store := &fakeStore{manifests: []domain.Manifest{
		manifestFor(t, "chime", true),
		manifestFor(t, "silent", false),
		manifestFor(t, "speaker", true, domain.CapabilitySound),
	}}
	svc := service.NewNotifyService(store, host)

	results, err := svc.Dispatch(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 1 || results[0].Plugin != "chime" || !results[0].Delivered {
		t.Fatalf("expected only chime to receive the event, got %+v", results)
	}
	if len(host.delivered) != 1 {
		t.Fatalf("host calls = %v", host.delivered)
	}
}

func TestDispatchCollectsPerPluginFailures(t *testing.T) {
	t.Parallel()
	host := &fakeHost{failFor: map[string]error{"flaky": errors.New("socket closed")}}
	store := &fakeStore{manifests: []domain.Manifest{
		manifestFor(t, "flaky", true),
		manifestFor(t, "chime", true),
	}}
	svc := service.NewNotifyService(store, host)

	results, err := svc.Dispatch(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both plugins attempted, got %+v", results)
	}
	if results[0].Delivered || results[0].Error == "" {
		t.Fatalf("flaky plugin must report its failure: %+v", results[0])
	}
	if !results[1].Delivered {
		t.Fatalf("one failing plugin must not block the rest: %+v", results[1])
	}
}

func TestDispatchRejectsBadEvent(t *testing.T) {
	t.Parallel()
	svc := service.NewNotifyService(&fakeStore{}, &fakeHost{})
	event := testEvent()
	event.Kind = "poke"
	if _, err := svc.Dispatch(context.Background(), event); !errors.Is(err, domain.ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestDispatchVerifiesChecksum(t *testing.T) {
	t.Parallel()
	host := &fakeHost{}
	tampered := manifestFor(t, "chime", true)
	tampered.SHA256 = strings.Repeat("00", 32)
	svc := service.NewNotifyService(&fakeStore{manifests: []domain.Manifest{tampered}}, host)

	results, err := svc.Dispatch(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 1 || results[0].Delivered {
		t.Fatalf("tampered binary must not launch: %+v", results)
	}
	if !strings.Contains(results[0].Error, "checksum mismatch") {
		t.Fatalf("expected checksum error, got %q", results[0].Error)
	}
	if len(host.delivered) != 0 {
		t.Fatalf("host must never see a tampered plugin: %v", host.delivered)
	}
}

func TestListRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	store := &fakeStore{manifests: []domain.Manifest{
		manifestFor(t, "chime", true),
		manifestFor(t, "chime", true),
	}}
	svc := service.NewNotifyService(store, &fakeHost{})
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatalf("duplicate plugin names must be rejected")
	}
}

func TestDoctorReportsMissingBinary(t *testing.T) {
	t.Parallel()
	missing := manifestFor(t, "chime", true)
	missing.Binary = filepath.Join(t.TempDir(), "gone")
	svc := service.NewNotifyService(&fakeStore{manifests: []domain.Manifest{missing}}, &fakeHost{})

	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 || results[0].BinaryReachable || results[0].Error == "" {
		t.Fatalf("missing binary must be diagnosed: %+v", results)
	}
}
