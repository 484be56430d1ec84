package platzi

import "errors"

var (
	// ErrInvalidConfig is returned by NewClient for unusable settings
	ErrInvalidConfig = errors.New("invalid catalog client config")

	// ErrNotFound is returned when the requested product does not exist
	ErrNotFound = errors.New("catalog: not found")

	// ErrNetwork is returned when the catalog cannot be reached
	ErrNetwork = errors.New("catalog: network error")

	// ErrUnexpectedStatus is returned for non-2xx responses other than not-found
	ErrUnexpectedStatus = errors.New("catalog: unexpected status")

	// ErrDecode is returned when a response body is not the expected JSON
	ErrDecode = errors.New("catalog: malformed response")
)
