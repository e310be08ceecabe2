// Package devserver is a self-contained reference implementation of the
// dicechat remote API. It exists so the client session layer can be
// developed and integration-tested without any external service: auth,
// rooms, messages, and dice rolling all run in one process over SQLite.
package devserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/tavernchat/dicechat/internal/core/domain"
	"github.com/tavernchat/dicechat/internal/pkg/config"
)

// New builds the Echo instance with all routes registered.
func New(cfg *config.Server, storage *Storage, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = newHTTPErrorHandler(log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("dicechat_server"))

	authHandler := NewAuthHandler(storage, cfg.JWTSecret, cfg.TokenTTL)
	chatHandler := NewChatHandler(storage)
	diceHandler := NewDiceHandler()
	authRequired := Auth(cfg.JWTSecret)

	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)

	chat := e.Group("/api/chat", authRequired)
	chat.POST("/rooms", chatHandler.CreateRoom)
	chat.POST("/rooms/:roomId/join", chatHandler.JoinRoom)
	chat.POST("/rooms/:roomId/messages", chatHandler.PostMessage)
	chat.GET("/rooms/:roomId/messages", chatHandler.ListMessages)

	e.POST("/api/dice/roll", diceHandler.Roll, authRequired)
	e.GET("/api/dice/health", diceHandler.Health)

	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// newHTTPErrorHandler maps known domain errors to deterministic HTTP codes,
// logs unexpected errors, and renders the {"error": "<message>"} envelope
// the client's session layer decodes.
func newHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrRoomExists):
		return http.StatusConflict, "room already exists"
	case errors.Is(err, domain.ErrRoomNotFound):
		return http.StatusNotFound, "room not found"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
