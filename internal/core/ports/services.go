package ports

import (
	"context"

	"github.com/tavernchat/dicechat/internal/core/domain"
)

// AuthSession owns the bearer credential and its lifecycle.
type AuthSession interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (string, error)
	// Logout clears the in-memory credential and any persisted copy. Idempotent.
	Logout(ctx context.Context) error
	// IsAuthenticated reports credential presence without a network call.
	IsAuthenticated() bool
	// Restore loads a persisted credential, reporting whether one was found.
	Restore(ctx context.Context) (bool, error)
}

// RoomClient owns room identity and the join handshake.
type RoomClient interface {
	SetIdentity(username string, role domain.Role) error
	Identity() domain.Identity
	SetRoomID(id string)
	RoomID() string
	GenerateRoomID() string
	// Join creates the room first when the identity is a DM, then joins.
	Join(ctx context.Context) error
}

// MessageSync polls the message store and delivers batches to a callback.
type MessageSync interface {
	// Start begins polling the room. Calling Start while already polling is
	// a no-op.
	Start(roomID string, onMessages func([]domain.ChatMessage))
	// Stop halts polling and cancels any pending tick. At most one batch
	// already in flight may still be delivered after Stop returns.
	Stop()
}
