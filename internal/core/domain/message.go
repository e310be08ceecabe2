package domain

import "time"

// Role is the part a user plays in a room.
type Role string

const (
	RoleDM     Role = "dm"
	RolePlayer Role = "player"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleDM || r == RolePlayer
}

// DefaultRoomID is the well-known room joined when no id was supplied.
const DefaultRoomID = "main"

// Identity is who the user is inside a room. It is set once before joining
// and stays fixed until the user leaves.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"user_role"`
}

// ChatMessage is a single message as produced by the remote store. Messages
// are append-only; the client never mutates an existing one.
type ChatMessage struct {
	ID        int64      `json:"id,omitempty"`
	RoomID    string     `json:"room_id"`
	Content   string     `json:"content"`
	Username  string     `json:"username"`
	Role      Role       `json:"user_role"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	IsSystem  bool       `json:"is_system,omitempty"`
}
