package harvest

import "context"

// Fetcher retrieves raw documents from URLs.
// Implementations do not execute JavaScript; they return the document as
// served. Non-2xx responses are reported as EUNAVAILABLE errors.
type Fetcher interface {
	// Fetch returns the response body of url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
