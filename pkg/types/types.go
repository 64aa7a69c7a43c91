package types

// Backend identifies the wire format of the target generate endpoint.
type Backend string

const (
	BackendVLLM   Backend = "vllm"
	BackendTGI    Backend = "tgi"
	BackendTriton Backend = "triton"
)

// Valid reports whether b is a known backend.
func (b Backend) Valid() bool {
	switch b {
	case BackendVLLM, BackendTGI, BackendTriton:
		return true
	}
	return false
}

// Request is a single benchmark request sampled from the dataset.
type Request struct {
	// Prompt text sent to the endpoint.
	Prompt string `json:"prompt"`
	// Token count of the prompt.
	PromptTokens int `json:"prompt_tokens"`
	// Token count of the reference completion; used as max_tokens.
	OutputTokens int `json:"output_tokens"`
}

// Result is the measured outcome of one benchmark request.
type Result struct {
	// Prompt that was sent.
	Prompt string `json:"prompt"`
	// Completion text with the echoed prompt stripped.
	Added string `json:"added"`
	// Token count of the prompt.
	PromptTokens int `json:"prompt_tokens"`
	// Requested output token budget.
	OutputTokens int `json:"output_tokens"`
	// End-to-end request latency in seconds, retries included.
	LatencySeconds float64 `json:"latency_seconds"`
	// Error message when the request ultimately failed; empty on success.
	Err string `json:"error,omitempty"`
}

// Summary aggregates latency and throughput over a finished run.
type Summary struct {
	// Number of requests measured.
	NumRequests int `json:"num_requests"`
	// Wall-clock duration of the whole run in seconds.
	TotalSeconds float64 `json:"total_seconds"`
	// Requests per second over the run.
	Throughput float64 `json:"throughput_rps"`
	// Mean end-to-end latency in seconds.
	AvgLatency float64 `json:"avg_latency_seconds"`
	// Mean latency normalized by prompt+output tokens.
	AvgPerTokenLatency float64 `json:"avg_per_token_latency_seconds"`
	// Mean latency normalized by output tokens only.
	AvgPerOutputTokenLatency float64 `json:"avg_per_output_token_latency_seconds"`
	// Fastest single request in seconds.
	MinLatency float64 `json:"min_latency_seconds"`
	// Slowest single request in seconds.
	MaxLatency float64 `json:"max_latency_seconds"`
	// Nearest-rank latency quantiles in seconds.
	P50Latency float64 `json:"p50_latency_seconds"`
	P90Latency float64 `json:"p90_latency_seconds"`
	P99Latency float64 `json:"p99_latency_seconds"`
}

// Run records one persisted benchmark run.
type Run struct {
	// Run identifier (UUID).
	ID string `json:"id"`
	// Backend wire format used.
	Backend Backend `json:"backend"`
	// Model name the endpoint served.
	Model string `json:"model"`
	// Run start time in unix seconds.
	StartedUnix int64 `json:"started_unix"`
	// Wall-clock duration of the run in seconds.
	TotalSeconds float64 `json:"total_seconds"`
	// Number of requests sent.
	NumRequests int `json:"num_requests"`
	// Poisson arrival rate in requests/sec; 0 means burst mode.
	RequestRate float64 `json:"request_rate"`
	// RNG seed used for sampling and pacing.
	Seed int64 `json:"seed"`
}
