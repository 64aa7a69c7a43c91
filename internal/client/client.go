// Package client sends benchmark requests to LLM generate endpoints and
// measures their end-to-end latency.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"benchd/pkg/types"
)

const userAgent = "Benchmark Client"

// DefaultTimeout bounds a single measured request including retries.
// Long output budgets on loaded servers legitimately take hours.
const DefaultTimeout = 3 * time.Hour

// Options configures a Client.
type Options struct {
	Backend types.Backend
	// BaseURL is the scheme://host:port of the endpoint.
	BaseURL string
	// Model is required for the Triton URL scheme.
	Model  string
	BestOf int
	// Timeout bounds one measured request, retries included. Zero uses DefaultTimeout.
	Timeout time.Duration
	// MaxRetries caps re-sends on error-body responses. Zero retries until
	// the timeout or context expires.
	MaxRetries int
	// HTTPClient overrides the transport; nil uses a dedicated http.Client.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client sends requests to one backend endpoint.
type Client struct {
	backend    types.Backend
	url        string
	bestOf     int
	timeout    time.Duration
	maxRetries int
	httpc      *http.Client
	log        zerolog.Logger
}

// New validates the options and builds a Client.
func New(opts Options) (*Client, error) {
	if !opts.Backend.Valid() {
		return nil, unknownBackendError{backend: string(opts.Backend)}
	}
	url, err := endpointURL(opts.Backend, opts.BaseURL, opts.Model)
	if err != nil {
		return nil, err
	}
	if opts.BestOf <= 0 {
		opts.BestOf = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	return &Client{
		backend:    opts.Backend,
		url:        url,
		bestOf:     opts.BestOf,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		httpc:      httpc,
		log:        opts.Logger,
	}, nil
}

// URL returns the resolved endpoint URL.
func (c *Client) URL() string { return c.url }

// Send issues one benchmark request and measures its latency. Responses whose
// body carries an "error" field are re-sent and the retries count toward the
// single measured latency. The returned Result is valid whenever err is nil.
func (c *Client) Send(ctx context.Context, req types.Request) (types.Result, error) {
	payload, err := encodePayload(c.backend, req, c.bestOf)
	if err != nil {
		return types.Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var resp generateResponse
	for attempt := 0; ; attempt++ {
		resp, err = c.sendOnce(ctx, payload)
		if err != nil {
			return types.Result{}, err
		}
		if len(resp.Error) == 0 {
			break
		}
		if c.maxRetries > 0 && attempt+1 >= c.maxRetries {
			return types.Result{}, malformedResponseError{msg: "error response after " + fmt.Sprint(attempt+1) + " attempts: " + string(resp.Error)}
		}
		c.log.Debug().Int("attempt", attempt+1).RawJSON("error", resp.Error).Msg("endpoint returned error body, retrying")
		if ctx.Err() != nil {
			return types.Result{}, ctx.Err()
		}
	}
	latency := time.Since(start)

	text, err := extractText(resp)
	if err != nil {
		return types.Result{}, err
	}
	return types.Result{
		Prompt:         req.Prompt,
		Added:          stripPrompt(text, req.Prompt),
		PromptTokens:   req.PromptTokens,
		OutputTokens:   req.OutputTokens,
		LatencySeconds: latency.Seconds(),
	}, nil
}

func (c *Client) sendOnce(ctx context.Context, payload []byte) (generateResponse, error) {
	var out generateResponse
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return out, err
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("%s request: %w", c.backend, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return out, fmt.Errorf("%s read body: %w", c.backend, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		// Some servers report transient failures as JSON error bodies with a
		// non-2xx status; those flow through the retry loop instead.
		if json.Unmarshal(body, &out) == nil && len(out.Error) > 0 {
			return out, nil
		}
		return out, badStatusError{status: httpResp.StatusCode, url: c.url}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, malformedResponseError{msg: err.Error()}
	}
	return out, nil
}
