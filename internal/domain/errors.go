package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scrape pipeline. Handlers and reports match on these
// instead of string-comparing wrapped causes.
var (
	// ErrNoTitle means no usable headline was found in the document.
	ErrNoTitle = errors.New("no title found")
	// ErrEmptyBody means the document yielded no body text above the minimum length.
	ErrEmptyBody = errors.New("empty article body")
	// ErrFetchTimeout means the page did not respond within the request deadline.
	ErrFetchTimeout = errors.New("fetch timed out")
	// ErrUnreachable means the host could not be resolved or connected to.
	ErrUnreachable = errors.New("host unreachable")
	// ErrInvalidURL means the input could not be parsed as an http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrNotFound is returned by repositories when a document does not exist.
	ErrNotFound = errors.New("article not found")
)

// BlockedError reports a response status that indicates the site is refusing
// automated access (401, 403 or 429).
type BlockedError struct {
	Status int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("request blocked with status %d", e.Status)
}

// StatusError reports any other non-success response status.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// FailureReason converts a pipeline error into the short classified label shown
// to admin panel users. Raw error text never leaks through here.
func FailureReason(err error) string {
	var blocked *BlockedError
	var status *StatusError
	switch {
	case errors.As(err, &blocked):
		return fmt.Sprintf("Blocked (%d)", blocked.Status)
	case errors.As(err, &status):
		return fmt.Sprintf("HTTP %d", status.Status)
	case errors.Is(err, ErrFetchTimeout):
		return "Timeout"
	case errors.Is(err, ErrInvalidURL):
		return "Invalid URL"
	case errors.Is(err, ErrUnreachable):
		return "Unreachable"
	case errors.Is(err, ErrNoTitle):
		return "No title found"
	case errors.Is(err, ErrEmptyBody):
		return "Empty body"
	default:
		return "Internal error"
	}
}
