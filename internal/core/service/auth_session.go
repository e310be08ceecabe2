package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tavernchat/dicechat/internal/core/domain"
	"github.com/tavernchat/dicechat/internal/core/ports"
)

// AuthSession owns the bearer credential: it obtains one via login or
// registration, keeps it in the shared holder for outgoing requests, and
// mirrors it into the persistent store.
type AuthSession struct {
	api        ports.AuthAPI
	store      ports.TokenStore
	credential *domain.Credential
	logger     zerolog.Logger
}

func NewAuthSession(api ports.AuthAPI, store ports.TokenStore, credential *domain.Credential, logger zerolog.Logger) *AuthSession {
	return &AuthSession{api: api, store: store, credential: credential, logger: logger}
}

// Login exchanges credentials for a bearer token, stores it, and persists it.
// A rejected login surfaces as *domain.AuthError with the server's message.
func (s *AuthSession) Login(ctx context.Context, username, password string) (string, error) {
	return s.authenticate(ctx, username, password, s.api.Login)
}

// Register creates an account; otherwise the same contract as Login.
func (s *AuthSession) Register(ctx context.Context, username, password string) (string, error) {
	return s.authenticate(ctx, username, password, s.api.Register)
}

func (s *AuthSession) authenticate(ctx context.Context, username, password string, call func(context.Context, string, string) (string, error)) (string, error) {
	if username == "" || password == "" {
		return "", &domain.AuthError{Message: "username and password are required"}
	}

	token, err := call(ctx, username, password)
	if err != nil {
		var re *domain.RemoteError
		if errors.As(err, &re) {
			return "", &domain.AuthError{Message: re.Message}
		}
		return "", err
	}

	s.credential.Set(token)
	if err := s.store.Save(ctx, token); err != nil {
		// The session still works from memory; it just won't survive a restart.
		s.logger.Warn().Err(err).Msg("failed to persist credential")
	}

	s.logger.Info().Str("username", username).Msg("authenticated")
	return token, nil
}

// Logout clears the in-memory credential and removes the persisted copy.
// Idempotent: logging out while logged out is a no-op.
func (s *AuthSession) Logout(ctx context.Context) error {
	s.credential.Clear()
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("logged out")
	return nil
}

// IsAuthenticated reports credential presence. Never touches the network.
func (s *AuthSession) IsAuthenticated() bool {
	return s.credential.Present()
}

// Restore loads a persisted credential from the store into memory. Returns
// true when one was found.
func (s *AuthSession) Restore(ctx context.Context) (bool, error) {
	token, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	s.credential.Set(token)
	return true, nil
}
