package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"remedy/internal/source"
)

const scenarioTemplate = `
title = "numeric widening"

[[mismatch]]
expected = "i64"
actual = "u8"
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDiagnoseAllKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeScenario(t, dir, "a.toml", scenarioTemplate),
		writeScenario(t, dir, "b.toml", scenarioTemplate),
		writeScenario(t, dir, "c.toml", scenarioTemplate),
	}

	fs := source.NewFileSet()
	metrics := &Metrics{}
	results, err := DiagnoseAll(context.Background(), fs, paths, Options{Jobs: 4}, metrics, nil)
	if err != nil {
		t.Fatalf("DiagnoseAll: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("results = %d, want %d", len(results), len(paths))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Fatalf("results[%d].Path = %q, want %q", i, res.Path, paths[i])
		}
		if res.Err != nil {
			t.Fatalf("results[%d] failed: %v", i, res.Err)
		}
		if res.Title != "numeric widening" {
			t.Fatalf("results[%d].Title = %q", i, res.Title)
		}
		if res.Bag.Len() != 1 {
			t.Fatalf("results[%d] diagnostics = %d, want 1", i, res.Bag.Len())
		}
		if !res.Bag.HasErrors() {
			t.Fatalf("mismatch must report an error diagnostic")
		}
	}
	if metrics.Requests() != 3 {
		t.Fatalf("requests = %d, want 3", metrics.Requests())
	}
	if metrics.Candidates() != 3 {
		t.Fatalf("candidates = %d, want 3 (one cast per file)", metrics.Candidates())
	}
}

func TestDiagnoseAllReportsLoadFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeScenario(t, dir, "good.toml", scenarioTemplate)
	missing := filepath.Join(dir, "missing.toml")

	fs := source.NewFileSet()
	metrics := &Metrics{}
	results, err := DiagnoseAll(context.Background(), fs, []string{missing, good}, Options{}, metrics, nil)
	if err != nil {
		t.Fatalf("DiagnoseAll: %v", err)
	}
	if results[0].Err == nil {
		t.Fatalf("missing file must carry its load error")
	}
	if results[1].Err != nil {
		t.Fatalf("healthy file must still be diagnosed: %v", results[1].Err)
	}
	if metrics.Failures() != 1 {
		t.Fatalf("failures = %d, want 1", metrics.Failures())
	}
}

func TestDiagnoseAllEmitsEventsPerFile(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeScenario(t, dir, "a.toml", scenarioTemplate),
		writeScenario(t, dir, "b.toml", scenarioTemplate),
	}

	var mu sync.Mutex
	byStage := make(map[Stage]int)
	observe := func(ev Event) {
		mu.Lock()
		byStage[ev.Stage]++
		mu.Unlock()
	}

	fs := source.NewFileSet()
	if _, err := DiagnoseAll(context.Background(), fs, paths, Options{Jobs: 2}, nil, observe); err != nil {
		t.Fatalf("DiagnoseAll: %v", err)
	}
	if byStage[StageLoad] != 2 || byStage[StageDiagnose] != 2 || byStage[StageDone] != 2 {
		t.Fatalf("stage counts = %v", byStage)
	}
	if byStage[StageFailed] != 0 {
		t.Fatalf("no file should fail: %v", byStage)
	}
}

func TestDiskCacheRoundtrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("remedy-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	dir := t.TempDir()
	path := writeScenario(t, dir, "cached.toml", scenarioTemplate)
	opts := Options{Cache: cache}

	first, err := DiagnoseAll(context.Background(), source.NewFileSet(), []string{path}, opts, nil, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first[0].FromCache {
		t.Fatalf("first run cannot hit the cache")
	}

	metrics := &Metrics{}
	fs := source.NewFileSet()
	second, err := DiagnoseAll(context.Background(), fs, []string{path}, opts, metrics, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	res := second[0]
	if !res.FromCache {
		t.Fatalf("second run should hit the cache")
	}
	if res.Title != "numeric widening" {
		t.Fatalf("cached title = %q", res.Title)
	}
	if res.Bag.Len() != first[0].Bag.Len() {
		t.Fatalf("cached diagnostics = %d, want %d", res.Bag.Len(), first[0].Bag.Len())
	}

	// Spans must be rebound to the FileID of the current load.
	orig := first[0].Bag.Items()[0]
	got := res.Bag.Items()[0]
	if got.Primary.File != res.FileID {
		t.Fatalf("cached span file = %d, want %d", got.Primary.File, res.FileID)
	}
	if got.Primary.Start != orig.Primary.Start || got.Primary.End != orig.Primary.End {
		t.Fatalf("cached span offsets changed: %v vs %v", got.Primary, orig.Primary)
	}
	if len(got.Fixes) != len(orig.Fixes) || got.Message != orig.Message {
		t.Fatalf("cached record diverged: %+v vs %+v", got, orig)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	third, err := DiagnoseAll(context.Background(), source.NewFileSet(), []string{path}, opts, nil, nil)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third[0].FromCache {
		t.Fatalf("cleared cache must miss")
	}
}

func TestDiagnoseAllRespectsMaxDiagnostics(t *testing.T) {
	content := scenarioTemplate + `
[[mismatch]]
expected = "u8"
actual = "i64"

[[mismatch]]
expected = "f64"
actual = "u8"
`
	dir := t.TempDir()
	path := writeScenario(t, dir, "many.toml", content)

	results, err := DiagnoseAll(context.Background(), source.NewFileSet(), []string{path}, Options{MaxDiagnostics: 2}, nil, nil)
	if err != nil {
		t.Fatalf("DiagnoseAll: %v", err)
	}
	if results[0].Requests != 3 {
		t.Fatalf("requests = %d, want 3", results[0].Requests)
	}
	if results[0].Bag.Len() != 2 {
		t.Fatalf("bag len = %d, want the cap of 2", results[0].Bag.Len())
	}
}
