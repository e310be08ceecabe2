package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tavernchat/dicechat/internal/core/domain"
	"github.com/tavernchat/dicechat/internal/core/ports"
)

const (
	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIDLength   = 8
)

// RoomClient owns the room identity and the create-then-join handshake.
type RoomClient struct {
	chat   ports.ChatAPI
	auth   ports.AuthSession
	logger zerolog.Logger

	mu       sync.RWMutex
	roomID   string
	identity domain.Identity
}

func NewRoomClient(chat ports.ChatAPI, auth ports.AuthSession, logger zerolog.Logger) *RoomClient {
	return &RoomClient{
		chat:   chat,
		auth:   auth,
		logger: logger,
		roomID: domain.DefaultRoomID,
	}
}

// SetIdentity fixes who the user is for the upcoming session. Changing it
// later requires leaving and re-joining.
func (c *RoomClient) SetIdentity(username string, role domain.Role) error {
	if strings.TrimSpace(username) == "" || !role.Valid() {
		return domain.ErrInvalidIdentity
	}
	c.mu.Lock()
	c.identity = domain.Identity{Username: strings.TrimSpace(username), Role: role}
	c.mu.Unlock()
	return nil
}

// Identity returns the current identity.
func (c *RoomClient) Identity() domain.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// SetRoomID sets the target room. An empty id falls back to the default room.
func (c *RoomClient) SetRoomID(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = domain.DefaultRoomID
	}
	c.mu.Lock()
	c.roomID = id
	c.mu.Unlock()
}

// RoomID returns the target room id.
func (c *RoomClient) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// GenerateRoomID returns a fresh 8-character uppercase alphanumeric room id.
// Collision handling is the server's responsibility.
func (c *RoomClient) GenerateRoomID() string {
	b := make([]byte, roomIDLength)
	for i := range b {
		b[i] = roomIDAlphabet[rand.IntN(len(roomIDAlphabet))]
	}
	return string(b)
}

// Join performs the room handshake. A DM first attempts to create the room;
// "already exists" counts as success and any other creation failure is
// logged and swallowed, since the room may exist for reasons outside this
// client's knowledge. The join itself fails with *domain.JoinError on a
// rejected response, tagged when the server refused the bearer token.
func (c *RoomClient) Join(ctx context.Context) error {
	if !c.auth.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	c.mu.RLock()
	roomID, identity := c.roomID, c.identity
	c.mu.RUnlock()

	if identity.Username == "" || !identity.Role.Valid() {
		return domain.ErrInvalidIdentity
	}

	if identity.Role == domain.RoleDM {
		if err := c.chat.CreateRoom(ctx, roomID); err != nil && !errors.Is(err, domain.ErrRoomExists) {
			c.logger.Warn().Err(err).Str("room_id", roomID).Msg("room creation failed, attempting join anyway")
		}
	}

	if err := c.chat.JoinRoom(ctx, roomID, identity); err != nil {
		var re *domain.RemoteError
		if errors.As(err, &re) {
			return &domain.JoinError{
				Status:       re.Status,
				Body:         re.Message,
				InvalidToken: domain.IsInvalidTokenMessage(re.Message),
			}
		}
		return err
	}

	c.logger.Info().
		Str("room_id", roomID).
		Str("username", identity.Username).
		Str("role", string(identity.Role)).
		Msg("joined room")
	return nil
}
