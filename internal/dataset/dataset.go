// Package dataset loads ShareGPT-format conversation dumps and turns them
// into benchmark requests.
package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"benchd/internal/fsutil"
	"benchd/internal/token"
	"benchd/pkg/types"
)

// Pruning thresholds. Sequences under minTokens break TGI; sequences over
// the upper bounds exceed common context windows and would skew latency.
const (
	minTokens       = 4
	maxPromptTokens = 1024
	maxTotalTokens  = 2048
)

type turn struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

type record struct {
	Conversations []turn `json:"conversations"`
}

// Load reads a ShareGPT JSON file and returns the filtered request pool.
// Each usable record contributes one request: the first turn is the prompt,
// the second turn's token count becomes the output budget.
func Load(path string, counter token.Counter) ([]types.Request, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var records []record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	var pool []types.Request
	for _, rec := range records {
		if len(rec.Conversations) < 2 {
			continue
		}
		prompt := rec.Conversations[0].Value
		completion := rec.Conversations[1].Value
		promptTokens := counter.Count(prompt)
		outputTokens := counter.Count(completion)
		if promptTokens < minTokens || outputTokens < minTokens {
			continue
		}
		if promptTokens > maxPromptTokens || promptTokens+outputTokens > maxTotalTokens {
			continue
		}
		pool = append(pool, types.Request{
			Prompt:       prompt,
			PromptTokens: promptTokens,
			OutputTokens: outputTokens,
		})
	}
	return pool, nil
}

// Sample draws n requests uniformly without replacement from the pool.
func Sample(pool []types.Request, n int, rng *rand.Rand) ([]types.Request, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", n)
	}
	if n > len(pool) {
		return nil, fmt.Errorf("sample size %d exceeds filtered pool of %d requests", n, len(pool))
	}
	idx := rng.Perm(len(pool))[:n]
	out := make([]types.Request, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out, nil
}
