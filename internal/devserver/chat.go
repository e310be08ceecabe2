package devserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tavernchat/dicechat/internal/core/domain"
)

// ChatHandler implements room management and the message store.
type ChatHandler struct {
	storage *Storage
}

func NewChatHandler(storage *Storage) *ChatHandler {
	return &ChatHandler{storage: storage}
}

type createRoomRequest struct {
	RoomID string `json:"room_id" validate:"required,max=64"`
}

// CreateRoom creates a room; 409 when it already exists.
func (h *ChatHandler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.storage.CreateRoom(c.Request().Context(), req.RoomID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"room_id": req.RoomID})
}

type joinRoomRequest struct {
	Username string `json:"username"  validate:"required"`
	UserRole string `json:"user_role" validate:"required,oneof=dm player"`
}

// JoinRoom registers a participant and announces the join as a system message.
func (h *ChatHandler) JoinRoom(c echo.Context) error {
	roomID := c.Param("roomId")

	var req joinRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	exists, err := h.storage.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrRoomNotFound
	}

	identity := domain.Identity{Username: req.Username, Role: domain.Role(req.UserRole)}
	if err := h.storage.AddMember(ctx, roomID, identity); err != nil {
		return err
	}

	_, err = h.storage.InsertMessage(ctx, domain.ChatMessage{
		RoomID:   roomID,
		Content:  fmt.Sprintf("%s joined the room as %s", req.Username, req.UserRole),
		Username: "system",
		Role:     domain.RolePlayer,
		IsSystem: true,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"room_id": roomID, "username": req.Username})
}

type postMessageRequest struct {
	Content  string `json:"content"   validate:"required,max=4000"`
	Username string `json:"username"  validate:"required"`
	UserRole string `json:"user_role" validate:"required,oneof=dm player"`
}

// PostMessage appends a message to the room and returns the stored copy.
func (h *ChatHandler) PostMessage(c echo.Context) error {
	roomID := c.Param("roomId")

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	exists, err := h.storage.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrRoomNotFound
	}

	msg, err := h.storage.InsertMessage(ctx, domain.ChatMessage{
		RoomID:   roomID,
		Content:  req.Content,
		Username: req.Username,
		Role:     domain.Role(req.UserRole),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

type messagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
	Count    int                  `json:"count"`
}

// ListMessages returns a window of messages plus the room's total count.
func (h *ChatHandler) ListMessages(c echo.Context) error {
	roomID := c.Param("roomId")

	limit, offset := 50, 0
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).Int("offset", &offset).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "limit and offset must be integers")
	}

	msgs, count, err := h.storage.ListMessages(c.Request().Context(), roomID, limit, offset)
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return c.JSON(http.StatusOK, messagesResponse{Messages: msgs, Count: count})
}
