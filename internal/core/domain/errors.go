package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotAuthenticated is returned when an authenticated operation runs
	// without a credential. No network call is made in that case.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotJoined is returned when a room-scoped operation runs outside a
	// joined session.
	ErrNotJoined = errors.New("not joined to a room")

	// ErrInvalidIdentity is returned for an empty username or unknown role.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrRoomExists signals the room is already present on the server. Room
	// creation treats it as success.
	ErrRoomExists = errors.New("room already exists")

	// ErrInvalidCredentials covers bad login input or a failed password check.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists signals a registration against a taken username.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound signals a login against an unknown username.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoomNotFound signals an operation against an unknown room.
	ErrRoomNotFound = errors.New("room not found")
)

// AuthError is a server-side authentication failure. Message carries the
// server-provided reason verbatim for user-visible display.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Message
}

// JoinError is a room creation or join failure. InvalidToken is set when the
// server rejected the bearer credential, which callers convert into a forced
// logout instead of a generic join failure.
type JoinError struct {
	Status       int
	Body         string
	InvalidToken bool
}

func (e *JoinError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("join failed (%d): %s", e.Status, e.Body)
	}
	return "join failed: " + e.Body
}

// NetworkError is a transport-level failure: the request never produced an
// HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx HTTP response with its decoded error message.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsInvalidTokenMessage reports whether a server error message indicates an
// invalid or expired bearer credential.
func IsInvalidTokenMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "invalid token") ||
		strings.Contains(m, "token expired") ||
		strings.Contains(m, "token is expired")
}
