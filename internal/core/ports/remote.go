package ports

import (
	"context"

	"github.com/tavernchat/dicechat/internal/core/domain"
)

// AuthAPI is the remote identity endpoint.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username, password string) (string, error)
	// Register creates an account and returns a bearer token.
	Register(ctx context.Context, username, password string) (string, error)
}

// ChatAPI is the remote room and message store.
type ChatAPI interface {
	// CreateRoom creates a room. Returns domain.ErrRoomExists when the room
	// is already present.
	CreateRoom(ctx context.Context, roomID string) error
	// JoinRoom registers the identity as a participant of the room.
	JoinRoom(ctx context.Context, roomID string, identity domain.Identity) error
	// SendMessage appends a message to the room and returns the stored copy.
	SendMessage(ctx context.Context, roomID, content string, identity domain.Identity) (*domain.ChatMessage, error)
	// FetchMessages returns up to limit messages starting at offset, plus the
	// total message count for the room.
	FetchMessages(ctx context.Context, roomID string, limit, offset int) ([]domain.ChatMessage, int, error)
}

// DiceAPI is the remote dice roller.
type DiceAPI interface {
	// Roll performs the roll server-side and returns the full result.
	Roll(ctx context.Context, req domain.DiceRollRequest) (*domain.DiceRollResult, error)
	// Health probes the dice service, treated as a plain boolean.
	Health(ctx context.Context) bool
}

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty string means no Authorization header is sent.
type TokenSource interface {
	Token() string
}
