package ports

import "context"

// TokenStore persists the bearer token across restarts under a fixed key.
// An absent token loads as "" without error.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
