package kobo

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned before any request is issued
	// when the client is constructed without a server url or token.
	ErrMissingCredentials = errors.New("missing server url or api token")

	// ErrNoSubmissions marks a form that paginated cleanly but held
	// zero submissions. It is a "nothing to show" signal, not a fetch
	// failure.
	ErrNoSubmissions = errors.New("no submissions found")
)

// FetchError is a failed page or detail request. It aborts the
// enclosing fetch; records accumulated before it are discarded.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
