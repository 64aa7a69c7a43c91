package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"benchd/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun(id string, started int64) types.Run {
	return types.Run{
		ID:           id,
		Backend:      types.BackendVLLM,
		Model:        "opt-125m",
		StartedUnix:  started,
		TotalSeconds: 12.5,
		NumRequests:  2,
		RequestRate:  4.0,
		Seed:         7,
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	results := []types.Result{
		{PromptTokens: 10, OutputTokens: 20, LatencySeconds: 1.5},
		{PromptTokens: 5, OutputTokens: 5, Err: "backend exploded"},
	}
	if err := s.SaveRun(ctx, sampleRun("run-1", time.Now().Unix()), results); err != nil {
		t.Fatalf("save: %v", err)
	}

	run, got, err := s.LoadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if run.Backend != types.BackendVLLM || run.Model != "opt-125m" || run.NumRequests != 2 || run.Seed != 7 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].LatencySeconds != 1.5 || got[0].PromptTokens != 10 {
		t.Fatalf("unexpected result: %+v", got[0])
	}
	if got[1].Err != "backend exploded" {
		t.Fatalf("error column lost: %+v", got[1])
	}
}

func TestListRunsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("older", 100), nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveRun(ctx, sampleRun("newer", 200), nil); err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "newer" || runs[1].ID != "older" {
		t.Fatalf("wrong order: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestLoadRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.LoadRun(context.Background(), "missing")
	if !IsRunNotFound(err) {
		t.Fatalf("expected run-not-found, got %v", err)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "dir", "runs.db")
	s, err := Open(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.Close()
}
