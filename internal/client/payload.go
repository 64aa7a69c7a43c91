package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"benchd/pkg/types"
)

// endpointURL builds the generate URL for a backend. Triton exposes the
// generate extension under the model's name with dashes mapped to underscores.
func endpointURL(backend types.Backend, baseURL, model string) (string, error) {
	base := strings.TrimSuffix(baseURL, "/")
	switch backend {
	case types.BackendVLLM, types.BackendTGI:
		return base + "/generate", nil
	case types.BackendTriton:
		name := strings.ReplaceAll(model, "-", "_")
		return fmt.Sprintf("%s/v2/models/%s/generate", base, name), nil
	default:
		return "", unknownBackendError{backend: string(backend)}
	}
}

// encodePayload marshals the request body for a backend.
// Temperature 0 and top_p 1 force greedy decoding so repeated runs produce
// identical completions.
func encodePayload(backend types.Backend, req types.Request, bestOf int) ([]byte, error) {
	switch backend {
	case types.BackendVLLM, types.BackendTriton:
		return json.Marshal(types.GenerateRequest{
			Prompt:      req.Prompt,
			N:           1,
			BestOf:      bestOf,
			Temperature: 0.0,
			TopP:        1.0,
			MaxTokens:   req.OutputTokens,
			IgnoreEOS:   true,
			Stream:      false,
		})
	case types.BackendTGI:
		return json.Marshal(types.TGIRequest{
			Inputs: req.Prompt,
			Parameters: types.TGIParameters{
				BestOf:       bestOf,
				MaxNewTokens: req.OutputTokens,
				DoSample:     true,
			},
		})
	default:
		return nil, unknownBackendError{backend: string(backend)}
	}
}

// generateResponse covers the responses of all three backends. Text may be a
// bare string or a one-element list (Triton wraps it).
type generateResponse struct {
	Text          json.RawMessage `json:"text"`
	GeneratedText string          `json:"generated_text"`
	Error         json.RawMessage `json:"error"`
}

// extractText returns the completion text from a decoded response.
func extractText(resp generateResponse) (string, error) {
	if len(resp.Text) > 0 {
		var s string
		if err := json.Unmarshal(resp.Text, &s); err == nil {
			return s, nil
		}
		var list []string
		if err := json.Unmarshal(resp.Text, &list); err == nil {
			if len(list) == 0 {
				return "", malformedResponseError{msg: "empty text list"}
			}
			return list[0], nil
		}
		return "", malformedResponseError{msg: "text is neither string nor list"}
	}
	if resp.GeneratedText != "" {
		return resp.GeneratedText, nil
	}
	return "", malformedResponseError{msg: "no text field"}
}

// stripPrompt removes the echoed prompt prefix from the completion.
func stripPrompt(text, prompt string) string {
	return strings.TrimPrefix(text, prompt)
}
