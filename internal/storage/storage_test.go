package storage

import (
	"testing"
	"time"

	"campscore/internal/engine"
	"campscore/internal/schema"
)

func testBundle(version string, createdAt time.Time) *engine.Bundle {
	return &engine.Bundle{
		SchemaVersion: schema.Version,
		Version:       version,
		CreatedAt:     createdAt,
		Report:        &engine.Report{Rows: 500, Positives: 250},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadActive(t *testing.T) {
	s := openTestStore(t)

	b := testBundle("20260101-120000", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	if err := s.SaveBundle(b); err != nil {
		t.Fatalf("SaveBundle: %v", err)
	}

	got, err := s.LoadActive()
	if err != nil {
		t.Fatalf("LoadActive: %v", err)
	}
	if got.Version != b.Version || got.SchemaVersion != b.SchemaVersion {
		t.Errorf("loaded %s/%s, want %s/%s", got.Version, got.SchemaVersion, b.Version, b.SchemaVersion)
	}
	if got.Report == nil || got.Report.Rows != 500 {
		t.Errorf("report not round-tripped: %+v", got.Report)
	}
}

func TestLoadActiveEmptyStore(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadActive(); err == nil {
		t.Fatal("expected error for empty store")
	}
}

func TestLoadVersionNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadVersion("20990101-000000"); err == nil {
		t.Fatal("expected error for unknown version")
	}
}

func TestSaveMarksNewestActive(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range []string{"20260101-000000", "20260102-000000", "20260103-000000"} {
		if err := s.SaveBundle(testBundle(v, base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("SaveBundle %s: %v", v, err)
		}
	}

	infos, err := s.ListVersions()
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("got %d versions, want 3", len(infos))
	}
	// Newest first, and the newest is active.
	if infos[0].Version != "20260103-000000" || !infos[0].Active {
		t.Errorf("infos[0] = %+v, want newest active", infos[0])
	}
	for _, info := range infos[1:] {
		if info.Active {
			t.Errorf("stale version %s marked active", info.Version)
		}
	}
}

func TestActivateOlderVersion(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SaveBundle(testBundle("20260101-000000", base))
	s.SaveBundle(testBundle("20260102-000000", base.AddDate(0, 0, 1)))

	if err := s.Activate("20260101-000000"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	got, err := s.LoadActive()
	if err != nil {
		t.Fatalf("LoadActive: %v", err)
	}
	if got.Version != "20260101-000000" {
		t.Errorf("active = %s, want 20260101-000000", got.Version)
	}

	if err := s.Activate("20990101-000000"); err == nil {
		t.Error("activating unknown version should fail")
	}
}

func TestRollback(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SaveBundle(testBundle("20260101-000000", base))
	s.SaveBundle(testBundle("20260102-000000", base.AddDate(0, 0, 1)))

	target, err := s.Rollback()
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if target != "20260101-000000" {
		t.Errorf("rolled back to %s, want 20260101-000000", target)
	}
	got, err := s.LoadActive()
	if err != nil {
		t.Fatalf("LoadActive: %v", err)
	}
	if got.Version != "20260101-000000" {
		t.Errorf("active = %s after rollback", got.Version)
	}

	// The oldest version has nothing before it.
	if _, err := s.Rollback(); err == nil {
		t.Error("rollback past the oldest version should fail")
	}
}

func TestRollbackSingleVersion(t *testing.T) {
	s := openTestStore(t)
	s.SaveBundle(testBundle("20260101-000000", time.Now().UTC()))
	if _, err := s.Rollback(); err == nil {
		t.Fatal("rollback with one version should fail")
	}
}
