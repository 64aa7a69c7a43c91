package client

import "fmt"

// unknownBackendError signals a backend string outside the supported set.
type unknownBackendError struct{ backend string }

func (e unknownBackendError) Error() string { return "unknown backend: " + e.backend }

// IsUnknownBackend reports whether err indicates an unsupported backend.
func IsUnknownBackend(err error) bool {
	_, ok := err.(unknownBackendError)
	return ok
}

// badStatusError signals a non-2xx response from the endpoint.
type badStatusError struct {
	status int
	url    string
}

func (e badStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.status, e.url)
}

// IsBadStatus reports whether err indicates a non-2xx HTTP response.
func IsBadStatus(err error) bool {
	_, ok := err.(badStatusError)
	return ok
}

// malformedResponseError signals a response body we could not interpret.
type malformedResponseError struct{ msg string }

func (e malformedResponseError) Error() string { return "malformed response: " + e.msg }

// IsMalformedResponse reports whether err indicates an unparseable body.
func IsMalformedResponse(err error) bool {
	_, ok := err.(malformedResponseError)
	return ok
}
