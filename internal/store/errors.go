package store

// runNotFoundError signals an unknown run id.
type runNotFoundError struct{ id string }

func (e runNotFoundError) Error() string { return "run not found: " + e.id }

// IsRunNotFound reports whether err indicates a missing run id.
func IsRunNotFound(err error) bool {
	_, ok := err.(runNotFoundError)
	return ok
}
