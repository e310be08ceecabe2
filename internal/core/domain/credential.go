package domain

import "sync"

// Credential holds the bearer token for the current session. It is written
// only by the auth session and read by every component that talks to the
// server, so access is guarded. An empty token means logged out.
type Credential struct {
	mu    sync.RWMutex
	token string
}

// Token returns the current bearer token, or "" when absent.
func (c *Credential) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Present reports whether a token is held.
func (c *Credential) Present() bool {
	return c.Token() != ""
}

// Set replaces the held token.
func (c *Credential) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Clear drops the held token. Safe to call when already absent.
func (c *Credential) Clear() {
	c.Set("")
}
