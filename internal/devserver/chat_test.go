package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tavernchat/dicechat/internal/core/domain"
)

func joinTestRoom(t *testing.T, e *echo.Echo, h *ChatHandler, roomID, username, role string) {
	t.Helper()
	c, rec := newJSONContext(e, http.MethodPost, "/api/chat/rooms/"+roomID+"/join",
		`{"username":"`+username+`","user_role":"`+role+`"}`)
	setRoomParam(c, roomID)
	if err := h.JoinRoom(c); err != nil {
		t.Fatalf("JoinRoom returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
}

func postTestMessage(t *testing.T, e *echo.Echo, h *ChatHandler, roomID, content string) {
	t.Helper()
	c, rec := newJSONContext(e, http.MethodPost, "/api/chat/rooms/"+roomID+"/messages",
		`{"content":`+strconv.Quote(content)+`,"username":"alice","user_role":"player"}`)
	setRoomParam(c, roomID)
	if err := h.PostMessage(c); err != nil {
		t.Fatalf("PostMessage returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusCreated)
}

func listTestMessages(t *testing.T, e *echo.Echo, h *ChatHandler, roomID, query string) messagesResponse {
	t.Helper()
	c, rec := newJSONContext(e, http.MethodGet, "/api/chat/rooms/"+roomID+"/messages"+query, "")
	setRoomParam(c, roomID)
	if err := h.ListMessages(c); err != nil {
		t.Fatalf("ListMessages returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)

	var resp messagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestChatHandler_CreateRoom(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	c, rec := newJSONContext(e, http.MethodPost, "/api/chat/rooms", `{"room_id":"TABLE42"}`)
	if err := h.CreateRoom(c); err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusCreated)

	c, _ = newJSONContext(e, http.MethodPost, "/api/chat/rooms", `{"room_id":"TABLE42"}`)
	if err := h.CreateRoom(c); !errors.Is(err, domain.ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
}

func TestChatHandler_DefaultRoomIsSeeded(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	// Players can join the default room with no DM having created it.
	joinTestRoom(t, e, h, domain.DefaultRoomID, "alice", "player")
}

func TestChatHandler_JoinUnknownRoom(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	c, _ := newJSONContext(e, http.MethodPost, "/api/chat/rooms/NOWHERE/join",
		`{"username":"alice","user_role":"player"}`)
	setRoomParam(c, "NOWHERE")
	if err := h.JoinRoom(c); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestChatHandler_JoinAnnouncesSystemMessage(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	joinTestRoom(t, e, h, domain.DefaultRoomID, "gm", "dm")

	resp := listTestMessages(t, e, h, domain.DefaultRoomID, "")
	if resp.Count != 1 || len(resp.Messages) != 1 {
		t.Fatalf("messages = %+v", resp)
	}
	msg := resp.Messages[0]
	if !msg.IsSystem || msg.Content != "gm joined the room as dm" {
		t.Fatalf("announcement = %+v", msg)
	}
}

func TestChatHandler_JoinRoleValidation(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	c, _ := newJSONContext(e, http.MethodPost, "/api/chat/rooms/main/join",
		`{"username":"alice","user_role":"wizard"}`)
	setRoomParam(c, "main")
	err := h.JoinRoom(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %v", err)
	}
}

func TestChatHandler_PostToUnknownRoom(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	c, _ := newJSONContext(e, http.MethodPost, "/api/chat/rooms/NOWHERE/messages",
		`{"content":"hi","username":"alice","user_role":"player"}`)
	setRoomParam(c, "NOWHERE")
	if err := h.PostMessage(c); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestChatHandler_PostAndListMessages(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	for i := 1; i <= 5; i++ {
		postTestMessage(t, e, h, domain.DefaultRoomID, fmt.Sprintf("message %d", i))
	}

	resp := listTestMessages(t, e, h, domain.DefaultRoomID, "")
	if resp.Count != 5 || len(resp.Messages) != 5 {
		t.Fatalf("count = %d, messages = %d, want 5/5", resp.Count, len(resp.Messages))
	}
	// Chronological order for display.
	if resp.Messages[0].Content != "message 1" || resp.Messages[4].Content != "message 5" {
		t.Fatalf("order = %q .. %q", resp.Messages[0].Content, resp.Messages[4].Content)
	}
}

func TestChatHandler_ListMessagesWindow(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	for i := 1; i <= 5; i++ {
		postTestMessage(t, e, h, domain.DefaultRoomID, fmt.Sprintf("message %d", i))
	}

	// limit takes the newest window; offset counts back from the newest.
	resp := listTestMessages(t, e, h, domain.DefaultRoomID, "?limit=2")
	if len(resp.Messages) != 2 || resp.Count != 5 {
		t.Fatalf("window = %+v", resp)
	}
	if resp.Messages[0].Content != "message 4" || resp.Messages[1].Content != "message 5" {
		t.Fatalf("newest window = %q, %q", resp.Messages[0].Content, resp.Messages[1].Content)
	}

	resp = listTestMessages(t, e, h, domain.DefaultRoomID, "?limit=2&offset=2")
	if resp.Messages[0].Content != "message 2" || resp.Messages[1].Content != "message 3" {
		t.Fatalf("offset window = %q, %q", resp.Messages[0].Content, resp.Messages[1].Content)
	}
}

func TestChatHandler_ListMessagesRejectsBadQuery(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	for _, query := range []string{"?limit=abc", "?offset=1.5", "?limit=10&offset=x"} {
		c, _ := newJSONContext(e, http.MethodGet, "/api/chat/rooms/main/messages"+query, "")
		setRoomParam(c, "main")
		err := h.ListMessages(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400, got %v", query, err)
		}
	}
}

func TestChatHandler_ListEmptyRoom(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(newTestStorage(t))

	resp := listTestMessages(t, e, h, domain.DefaultRoomID, "")
	if resp.Messages == nil {
		t.Fatalf("messages should be an empty list, not null")
	}
	if resp.Count != 0 {
		t.Fatalf("count = %d, want 0", resp.Count)
	}
}
