package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"benchd/pkg/types"
)

// fakeSender records concurrency and can fail selected prompts.
type fakeSender struct {
	mu        sync.Mutex
	inflight  int32
	peak      int32
	delay     time.Duration
	failWhen  func(types.Request) bool
	sendCount int32
}

func (f *fakeSender) Send(ctx context.Context, req types.Request) (types.Result, error) {
	atomic.AddInt32(&f.sendCount, 1)
	cur := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)
	f.mu.Lock()
	if cur > f.peak {
		f.peak = cur
	}
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return types.Result{}, ctx.Err()
		}
	}
	if f.failWhen != nil && f.failWhen(req) {
		return types.Result{}, errors.New("backend exploded")
	}
	return types.Result{Prompt: req.Prompt, Added: "out", PromptTokens: req.PromptTokens, OutputTokens: req.OutputTokens, LatencySeconds: 0.01}, nil
}

func makeRequests(n int) []types.Request {
	reqs := make([]types.Request, n)
	for i := range reqs {
		reqs[i] = types.Request{Prompt: string(rune('a' + i%26)), PromptTokens: 5, OutputTokens: 5}
	}
	return reqs
}

func TestRunBurstAllRequests(t *testing.T) {
	s := &fakeSender{}
	r := New(s, Options{Logger: zerolog.Nop()})
	out, err := r.Run(context.Background(), makeRequests(20))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Results) != 20 {
		t.Fatalf("expected 20 results, got %d", len(out.Results))
	}
	if out.RunID == "" {
		t.Fatalf("missing run id")
	}
	if out.Total <= 0 {
		t.Fatalf("total not measured")
	}
}

func TestRunConcurrencyCap(t *testing.T) {
	s := &fakeSender{delay: 20 * time.Millisecond}
	r := New(s, Options{Concurrency: 3, Logger: zerolog.Nop()})
	out, err := r.Run(context.Background(), makeRequests(12))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Results) != 12 {
		t.Fatalf("expected 12 results, got %d", len(out.Results))
	}
	s.mu.Lock()
	peak := s.peak
	s.mu.Unlock()
	if peak > 3 {
		t.Fatalf("concurrency cap exceeded: peak %d", peak)
	}
}

func TestRunRecordsFailuresWithoutAborting(t *testing.T) {
	s := &fakeSender{failWhen: func(req types.Request) bool { return req.Prompt == "b" }}
	r := New(s, Options{Logger: zerolog.Nop()})
	out, err := r.Run(context.Background(), makeRequests(5))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(out.Results))
	}
	failed := 0
	for _, res := range out.Results {
		if res.Err != "" {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected 1 failed result, got %d", failed)
	}
}

func TestRunPacedSlowerThanBurst(t *testing.T) {
	// At 50 rps the 10 inter-arrival gaps average 20ms, so a paced run
	// takes measurably longer than a burst of instant sends.
	s := &fakeSender{}
	paced := New(s, Options{RequestRate: 50, Seed: 1, Logger: zerolog.Nop()})
	out, err := paced.Run(context.Background(), makeRequests(11))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Total < 50*time.Millisecond {
		t.Fatalf("paced run finished implausibly fast: %v", out.Total)
	}
}

func TestRunContextCancel(t *testing.T) {
	s := &fakeSender{delay: time.Second}
	r := New(s, Options{Logger: zerolog.Nop()})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := r.Run(ctx, makeRequests(4)); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestRunEmptyInput(t *testing.T) {
	s := &fakeSender{}
	r := New(s, Options{Logger: zerolog.Nop()})
	out, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Results) != 0 {
		t.Fatalf("expected no results")
	}
	if atomic.LoadInt32(&s.sendCount) != 0 {
		t.Fatalf("sender should not be called")
	}
}
