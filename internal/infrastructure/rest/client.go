// Package rest implements the remote API ports over plain HTTP/JSON.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tavernchat/dicechat/internal/core/domain"
	"github.com/tavernchat/dicechat/internal/core/ports"
)

const requestTimeout = 15 * time.Second

// Client talks to the dicechat server. It implements ports.AuthAPI,
// ports.ChatAPI, and ports.DiceAPI, attaching the bearer token from the
// token source whenever one is present.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  ports.TokenSource
	logger  zerolog.Logger
}

func NewClient(baseURL string, tokens ports.TokenSource, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		tokens:  tokens,
		logger:  logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login implements ports.AuthAPI.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", credentialsRequest{username, password}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// Register implements ports.AuthAPI.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", credentialsRequest{username, password}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

type createRoomRequest struct {
	RoomID string `json:"room_id"`
}

// CreateRoom implements ports.ChatAPI. A 409 maps to domain.ErrRoomExists.
func (c *Client) CreateRoom(ctx context.Context, roomID string) error {
	err := c.do(ctx, http.MethodPost, "/api/chat/rooms", createRoomRequest{roomID}, nil)
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Status == http.StatusConflict {
		return domain.ErrRoomExists
	}
	return err
}

// JoinRoom implements ports.ChatAPI.
func (c *Client) JoinRoom(ctx context.Context, roomID string, identity domain.Identity) error {
	path := fmt.Sprintf("/api/chat/rooms/%s/join", url.PathEscape(roomID))
	return c.do(ctx, http.MethodPost, path, identity, nil)
}

type sendMessageRequest struct {
	Content  string      `json:"content"`
	Username string      `json:"username"`
	Role     domain.Role `json:"user_role"`
}

// SendMessage implements ports.ChatAPI.
func (c *Client) SendMessage(ctx context.Context, roomID, content string, identity domain.Identity) (*domain.ChatMessage, error) {
	path := fmt.Sprintf("/api/chat/rooms/%s/messages", url.PathEscape(roomID))
	var out domain.ChatMessage
	err := c.do(ctx, http.MethodPost, path, sendMessageRequest{content, identity.Username, identity.Role}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type messagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
	Count    int                  `json:"count"`
}

// FetchMessages implements ports.ChatAPI.
func (c *Client) FetchMessages(ctx context.Context, roomID string, limit, offset int) ([]domain.ChatMessage, int, error) {
	path := fmt.Sprintf("/api/chat/rooms/%s/messages?limit=%d&offset=%d", url.PathEscape(roomID), limit, offset)
	var out messagesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Messages, out.Count, nil
}

// Roll implements ports.DiceAPI.
func (c *Client) Roll(ctx context.Context, req domain.DiceRollRequest) (*domain.DiceRollResult, error) {
	var out domain.DiceRollResult
	if err := c.do(ctx, http.MethodPost, "/api/dice/roll", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health implements ports.DiceAPI. Any failure reads as unhealthy.
func (c *Client) Health(ctx context.Context) bool {
	var out healthResponse
	if err := c.do(ctx, http.MethodGet, "/api/dice/health", nil, &out); err != nil {
		c.logger.Debug().Err(err).Msg("dice health probe failed")
		return false
	}
	return out.Status == "ok"
}

// do runs one JSON request. Transport failures come back as
// *domain.NetworkError, non-2xx responses as *domain.RemoteError with the
// server's error envelope decoded.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.RemoteError{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeErrorMessage extracts the {"error": "..."} envelope, falling back to
// the raw body when the server returned something else.
func decodeErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error response"
	}
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(raw))
}
