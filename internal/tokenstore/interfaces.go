package tokenstore

import "context"

// TokenStore reads a refresh token from a credential backend.
type TokenStore interface {
	// Read returns the stored refresh token. Returns error if it is missing or empty.
	Read(ctx context.Context) (string, error)
}
