package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"benchd/pkg/types"
)

func TestDefaultOutputPath(t *testing.T) {
	if got := DefaultOutputPath(types.BackendTriton); got != "outputs-triton.jsonl" {
		t.Fatalf("got %q", got)
	}
}

func TestWriteAndReadOutputs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "outputs-vllm.jsonl")
	results := []types.Result{
		{Prompt: "p1", Added: "a1", LatencySeconds: 1},
		{Prompt: "p2", Err: "backend exploded"},
		{Prompt: "p3", Added: "line with \"quotes\""},
	}
	if err := WriteOutputs(p, results); err != nil {
		t.Fatalf("write: %v", err)
	}

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines (failure skipped), got %d", len(lines))
	}

	back, err := ReadOutputs(p)
	if err != nil {
		t.Fatalf("read outputs: %v", err)
	}
	if len(back) != 2 || back[0].Prompt != "p1" || back[0].Added != "a1" {
		t.Fatalf("roundtrip mismatch: %+v", back)
	}
	if back[1].Added != "line with \"quotes\"" {
		t.Fatalf("quoting lost: %q", back[1].Added)
	}
}

func TestWriteOutputsEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "outputs-tgi.jsonl")
	if err := WriteOutputs(p, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := ReadOutputs(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(back) != 0 {
		t.Fatalf("expected empty file, got %d rows", len(back))
	}
}
