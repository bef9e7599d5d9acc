package store

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spat/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testLogger())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := os.Stat(filepath.Join(dir, DBFile)); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
	if s.Path() != filepath.Join(dir, DBFile) {
		t.Errorf("unexpected path %s", s.Path())
	}

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("expected schema version %d, got %d", schemaVersion, version)
	}
}

func TestOpenExistingDatabaseKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testLogger())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if _, err := s.Upsert(&Record{URL: "https://github.com/org/a", Owner: "org", Name: "a"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	reopened, err := Open(dir, testLogger())
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	count, err := reopened.Count()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 record after reopen, got %d", count)
	}
}

func TestUpsertCreateThenRefresh(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Upsert(&Record{
		URL:   "https://github.com/org/pkg",
		Owner: "org",
		Name:  "pkg",
		Stars: 10,
	})
	if err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if !created {
		t.Error("expected first upsert to create")
	}

	created, err = s.Upsert(&Record{
		URL:   "https://github.com/org/pkg",
		Owner: "org",
		Name:  "pkg",
		Stars: 42,
	})
	if err != nil {
		t.Fatalf("failed to re-upsert: %v", err)
	}
	if created {
		t.Error("expected second upsert to update")
	}

	record, err := s.GetByURL("https://github.com/org/pkg")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if record == nil {
		t.Fatal("expected record")
	}
	if record.Stars != 42 {
		t.Errorf("expected refreshed stars 42, got %d", record.Stars)
	}
	if record.State != StateTracking {
		t.Errorf("expected default state tracking, got %s", record.State)
	}
	if record.ProcessingStatus != ProcessingPending {
		t.Errorf("expected default processing status pending, got %s", record.ProcessingStatus)
	}
}

func TestUpsertPreservesCuratedState(t *testing.T) {
	s := newTestStore(t)

	url := "https://github.com/org/pkg"
	if _, err := s.Upsert(&Record{URL: url, Owner: "org", Name: "pkg"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if _, err := s.TransitionState(url, StateInProgress, "port started", "tester"); err != nil {
		t.Fatalf("failed to transition: %v", err)
	}

	// a metadata refresh must not reset the curated state
	if _, err := s.Upsert(&Record{URL: url, Owner: "org", Name: "pkg", Stars: 7}); err != nil {
		t.Fatalf("failed to re-upsert: %v", err)
	}

	record, err := s.GetByURL(url)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if record.State != StateInProgress {
		t.Errorf("expected state in_progress after refresh, got %s", record.State)
	}
	if record.Stars != 7 {
		t.Errorf("expected refreshed stars 7, got %d", record.Stars)
	}
}

func TestUpsertValidation(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Upsert(&Record{Owner: "org", Name: "pkg"}); err == nil {
		t.Error("expected error for missing url")
	}
	if _, err := s.Upsert(&Record{URL: "https://github.com/org/pkg", State: "bogus"}); err == nil {
		t.Error("expected error for invalid state")
	}
}

func TestSetManifestRoundTrip(t *testing.T) {
	s := newTestStore(t)

	url := "https://github.com/org/pkg"
	if _, err := s.Upsert(&Record{URL: url, Owner: "org", Name: "pkg"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	manifest := `// swift-tools-version:5.9
import PackageDescription
let package = Package(
    dependencies: [
        .package(url: "https://github.com/org/dep", from: "1.0.0"),
    ]
)` + strings.Repeat("\n// padding line to make compression worthwhile", 50)

	if err := s.SetManifest(url, manifest, "5.9", 1); err != nil {
		t.Fatalf("failed to set manifest: %v", err)
	}

	record, err := s.GetByURL(url)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !record.HasManifest {
		t.Error("expected hasManifest after attach")
	}
	if record.ManifestText != manifest {
		t.Error("manifest text did not round-trip through compression")
	}
	if record.ToolsVersion != "5.9" {
		t.Errorf("expected tools version 5.9, got %q", record.ToolsVersion)
	}
	if record.DependenciesCount != 1 {
		t.Errorf("expected dependencies count 1, got %d", record.DependenciesCount)
	}

	if err := s.SetManifest("https://github.com/org/absent", "x", "", 0); err == nil {
		t.Error("expected error attaching manifest to unknown record")
	}
}

func TestSetProcessingStatus(t *testing.T) {
	s := newTestStore(t)

	url := "https://github.com/org/pkg"
	if _, err := s.Upsert(&Record{URL: url, Owner: "org", Name: "pkg"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := s.SetProcessingStatus(url, ProcessingCompleted); err != nil {
		t.Fatalf("failed to set status: %v", err)
	}

	record, err := s.GetByURL(url)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if record.ProcessingStatus != ProcessingCompleted {
		t.Errorf("expected completed, got %s", record.ProcessingStatus)
	}

	if err := s.SetProcessingStatus("https://github.com/org/absent", ProcessingFailed); err == nil {
		t.Error("expected error for unknown record")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)

	record, err := s.GetByURL("https://github.com/org/absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Error("expected nil record for unknown url")
	}

	record, err = s.GetByOwnerRepo("org", "absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Error("expected nil record for unknown owner/repo")
	}
}

func TestGetByOwnerRepo(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Upsert(&Record{URL: "https://github.com/org/pkg", Owner: "org", Name: "pkg", Stars: 3}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	record, err := s.GetByOwnerRepo("org", "pkg")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if record == nil || record.Stars != 3 {
		t.Fatalf("expected record with 3 stars, got %+v", record)
	}
	if got := record.PackageID().String(); got != "org/pkg" {
		t.Errorf("expected package id org/pkg, got %s", got)
	}
}

func TestListInsertionOrderAndFilter(t *testing.T) {
	s := newTestStore(t)

	urls := []string{
		"https://github.com/org/a",
		"https://github.com/org/b",
		"https://github.com/org/c",
	}
	for i, url := range urls {
		status := ProcessingPending
		if i == 1 {
			status = ProcessingCompleted
		}
		if _, err := s.Upsert(&Record{
			URL: url, Owner: "org", Name: filepath.Base(url), ProcessingStatus: status,
		}); err != nil {
			t.Fatalf("failed to upsert %s: %v", url, err)
		}
	}

	all, err := s.List(false)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i, record := range all {
		if record.URL != urls[i] {
			t.Errorf("expected insertion order, got %s at %d", record.URL, i)
		}
	}

	completed, err := s.List(true)
	if err != nil {
		t.Fatalf("failed to list completed: %v", err)
	}
	if len(completed) != 1 || completed[0].URL != urls[1] {
		t.Errorf("expected only org/b completed, got %d records", len(completed))
	}
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)

	records := []*Record{
		{URL: "https://github.com/org/a", Owner: "org", Name: "a"},
		{URL: "https://github.com/org/b", Owner: "org", Name: "b", State: StateBlocked},
		{URL: "https://github.com/org/c", Owner: "org", Name: "c", ProcessingStatus: ProcessingFailed},
	}
	for _, r := range records {
		if _, err := s.Upsert(r); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}

	byState, err := s.CountByState()
	if err != nil {
		t.Fatalf("failed to count by state: %v", err)
	}
	if byState[StateTracking] != 2 || byState[StateBlocked] != 1 {
		t.Errorf("unexpected state counts: %v", byState)
	}

	byStatus, err := s.CountByProcessingStatus()
	if err != nil {
		t.Fatalf("failed to count by status: %v", err)
	}
	if byStatus[ProcessingPending] != 2 || byStatus[ProcessingFailed] != 1 {
		t.Errorf("unexpected status counts: %v", byStatus)
	}
}

func TestRevisionTracksChanges(t *testing.T) {
	s := newTestStore(t)

	initial, err := s.Revision()
	if err != nil {
		t.Fatalf("failed to fingerprint: %v", err)
	}

	same, err := s.Revision()
	if err != nil {
		t.Fatalf("failed to fingerprint: %v", err)
	}
	if same != initial {
		t.Error("expected stable revision without changes")
	}

	url := "https://github.com/org/pkg"
	if _, err := s.Upsert(&Record{URL: url, Owner: "org", Name: "pkg"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	afterUpsert, _ := s.Revision()
	if afterUpsert == initial {
		t.Error("expected revision change after upsert")
	}

	if err := s.SetManifest(url, "dependencies: []", "5.9", 2); err != nil {
		t.Fatalf("failed to set manifest: %v", err)
	}
	afterManifest, _ := s.Revision()
	if afterManifest == afterUpsert {
		t.Error("expected revision change after manifest attach")
	}

	if _, err := s.TransitionState(url, StateArchived, "", ""); err != nil {
		t.Fatalf("failed to transition: %v", err)
	}
	afterTransition, _ := s.Revision()
	if afterTransition == afterManifest {
		t.Error("expected revision change after state transition")
	}
}

func TestAppendAndRecentLogs(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		err := s.AppendLog(&ProcessingLog{
			Action:         "import",
			Status:         ProcessingCompleted,
			ItemsProcessed: i,
			CreatedAt:      at,
		})
		if err != nil {
			t.Fatalf("failed to append log: %v", err)
		}
	}

	logs, err := s.RecentLogs(2)
	if err != nil {
		t.Fatalf("failed to list logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].ItemsProcessed != 2 || logs[1].ItemsProcessed != 1 {
		t.Errorf("expected newest first, got %d then %d",
			logs[0].ItemsProcessed, logs[1].ItemsProcessed)
	}
	if logs[0].ID == "" {
		t.Error("expected generated log id")
	}
}
