// Package tokens keeps one opaque bearer token per client, the server-side
// stand-in for the browser's local storage slot. It intentionally has no
// richer semantics than store, retrieve and clear a string.
package tokens

import "context"

type Store interface {
	Set(ctx context.Context, clientID, token string) error
	Get(ctx context.Context, clientID string) (string, error)
	Clear(ctx context.Context, clientID string) error
}
