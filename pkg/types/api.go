package types

// GenerateRequest is the vLLM-compatible payload accepted by /generate and,
// with the same shape, by the Triton generate extension endpoint.
type GenerateRequest struct {
	// Prompt text to complete.
	Prompt string `json:"prompt"`
	// Number of completions to generate.
	N int `json:"n"`
	// Generate best_of sequences and return the best one.
	BestOf int `json:"best_of"`
	// Sampling temperature; 0 forces greedy decoding.
	Temperature float64 `json:"temperature"`
	// Nucleus sampling probability.
	TopP float64 `json:"top_p"`
	// Maximum number of new tokens to generate.
	MaxTokens int `json:"max_tokens"`
	// Keep generating past EOS until max_tokens is reached.
	IgnoreEOS bool `json:"ignore_eos"`
	// Stream tokens as they are produced.
	Stream bool `json:"stream"`
}

// TGIParameters mirrors the text-generation-inference parameters object.
type TGIParameters struct {
	BestOf       int  `json:"best_of"`
	MaxNewTokens int  `json:"max_new_tokens"`
	DoSample     bool `json:"do_sample"`
}

// TGIRequest is the text-generation-inference payload shape.
type TGIRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters TGIParameters `json:"parameters"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	Error string `json:"error"`
	// HTTP status code.
	Code int `json:"code"`
}
