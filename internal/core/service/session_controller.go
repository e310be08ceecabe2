package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tavernchat/dicechat/internal/core/domain"
	"github.com/tavernchat/dicechat/internal/core/ports"
	"github.com/tavernchat/dicechat/internal/metrics"
)

// Callbacks is the host-facing notification surface. The UI registers these
// once at construction; the core never holds a reference back into widgets.
// Nil callbacks are skipped.
type Callbacks struct {
	OnAuthError             func(error)
	OnJoinError             func(*domain.JoinError)
	OnMessagesUpdated       func([]domain.ChatMessage)
	OnDiceRequestRecognized func(domain.RollRequestPrompt)
	OnRollComplete          func(*domain.DiceRollResult)
}

// SessionController sequences authentication, the room handshake, and
// message synchronization, and owns the session state machine.
type SessionController struct {
	auth      ports.AuthSession
	room      ports.RoomClient
	sync      ports.MessageSync
	chat      ports.ChatAPI
	dice      ports.DiceAPI
	callbacks Callbacks
	logger    zerolog.Logger

	mu    sync.RWMutex
	state domain.SessionState
}

func NewSessionController(auth ports.AuthSession, room ports.RoomClient, msgSync ports.MessageSync, chat ports.ChatAPI, dice ports.DiceAPI, callbacks Callbacks, logger zerolog.Logger) *SessionController {
	return &SessionController{
		auth:      auth,
		room:      room,
		sync:      msgSync,
		chat:      chat,
		dice:      dice,
		callbacks: callbacks,
		logger:    logger,
		state:     domain.StateUnauthenticated,
	}
}

// State returns the current session state.
func (c *SessionController) State() domain.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *SessionController) setState(next domain.SessionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == next {
		return
	}
	if !c.state.CanTransitionTo(next) {
		c.logger.Error().
			Str("from", string(c.state)).
			Str("to", string(next)).
			Msg("refusing invalid session transition")
		return
	}
	c.logger.Debug().Str("from", string(c.state)).Str("to", string(next)).Msg("session transition")
	c.state = next
}

// Startup restores a persisted credential, if any, and moves the session to
// Authenticated when one is found.
func (c *SessionController) Startup(ctx context.Context) error {
	restored, err := c.auth.Restore(ctx)
	if err != nil {
		return err
	}
	if restored {
		c.setState(domain.StateAuthenticated)
		c.logger.Info().Msg("restored persisted credential")
	}
	return nil
}

// Login authenticates and transitions to Authenticated on success. Failures
// surface through OnAuthError and the returned error.
func (c *SessionController) Login(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, username, password, c.auth.Login)
}

// Register creates an account; otherwise the same contract as Login.
func (c *SessionController) Register(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, username, password, c.auth.Register)
}

func (c *SessionController) authenticate(ctx context.Context, username, password string, call func(context.Context, string, string) (string, error)) error {
	if _, err := call(ctx, username, password); err != nil {
		if c.callbacks.OnAuthError != nil {
			c.callbacks.OnAuthError(err)
		}
		return err
	}
	c.setState(domain.StateAuthenticated)
	return nil
}

// Join runs the room handshake and starts message sync on success. A join
// rejected for an invalid token is converted into a forced logout instead of
// a generic failure.
func (c *SessionController) Join(ctx context.Context) error {
	if c.State() == domain.StateUnauthenticated {
		return domain.ErrNotAuthenticated
	}

	if !c.dice.Health(ctx) {
		// Non-fatal: chat still works, the dice service may come back.
		c.logger.Warn().Msg("dice service unhealthy before join")
	}

	if err := c.room.Join(ctx); err != nil {
		var je *domain.JoinError
		if errors.As(err, &je) {
			if je.InvalidToken {
				c.forceLogout(ctx)
			}
			if c.callbacks.OnJoinError != nil {
				c.callbacks.OnJoinError(je)
			}
		}
		return err
	}

	c.setState(domain.StateJoined)
	c.sync.Start(c.room.RoomID(), c.handleMessages)
	return nil
}

// Disconnect leaves the room but keeps the credential: sync stops and the
// session drops back to Authenticated.
func (c *SessionController) Disconnect() {
	c.sync.Stop()
	c.setState(domain.StateAuthenticated)
}

// Logout works from any state: stops sync if running, clears the credential,
// and returns to Unauthenticated.
func (c *SessionController) Logout(ctx context.Context) error {
	c.sync.Stop()
	err := c.auth.Logout(ctx)
	c.setState(domain.StateUnauthenticated)
	return err
}

// forceLogout handles the server rejecting a previously valid credential.
func (c *SessionController) forceLogout(ctx context.Context) {
	c.logger.Warn().Msg("credential rejected by server, forcing logout")
	metrics.ForcedLogoutsTotal.Inc()
	c.sync.Stop()
	if err := c.auth.Logout(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to clear persisted credential")
	}
	c.setState(domain.StateUnauthenticated)
}

// SendChat appends a free-text message to the joined room.
func (c *SessionController) SendChat(ctx context.Context, content string) error {
	if c.State() != domain.StateJoined {
		return domain.ErrNotJoined
	}
	_, err := c.chat.SendMessage(ctx, c.room.RoomID(), content, c.room.Identity())
	return err
}

// RequestRoll posts a roll request into chat using the shared protocol
// template, asking other participants to roll.
func (c *SessionController) RequestRoll(ctx context.Context, expression, description string) error {
	content := domain.BuildRollRequest(c.room.Identity().Username, expression, description)
	return c.SendChat(ctx, content)
}

// Roll performs a roll on the dice service, relays the result into chat via
// the result template, and fires OnRollComplete.
func (c *SessionController) Roll(ctx context.Context, req domain.DiceRollRequest) (*domain.DiceRollResult, error) {
	if c.State() != domain.StateJoined {
		return nil, domain.ErrNotJoined
	}

	result, err := c.dice.Roll(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.SendChat(ctx, domain.BuildRollResult(*result)); err != nil {
		c.logger.Warn().Err(err).Msg("failed to relay roll result into chat")
	}

	metrics.RollsCompletedTotal.Inc()
	if c.callbacks.OnRollComplete != nil {
		c.callbacks.OnRollComplete(result)
	}
	return result, nil
}

// handleMessages is the sync callback: recognised roll requests are surfaced
// individually, then the whole batch goes to the display callback.
func (c *SessionController) handleMessages(msgs []domain.ChatMessage) {
	if c.callbacks.OnDiceRequestRecognized != nil {
		for _, m := range msgs {
			if prompt, ok := domain.ParseRollRequest(m.Content); ok {
				c.callbacks.OnDiceRequestRecognized(prompt)
			}
		}
	}
	if c.callbacks.OnMessagesUpdated != nil {
		c.callbacks.OnMessagesUpdated(msgs)
	}
}
