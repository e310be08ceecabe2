package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tavernchat/dicechat/internal/core/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, staticToken(token), zerolog.Nop()), srv
}

func TestClient_LoginDecodesToken(t *testing.T) {
	var gotPath, gotAuth string
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["username"] != "alice" || body["password"] != "pw" {
			t.Fatalf("body = %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-1", "user": map[string]string{"username": "alice"}})
	})

	token, err := c.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("token = %q, want tok-1", token)
	}
	if gotPath != "/api/auth/login" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "" {
		t.Fatalf("Authorization sent without a credential: %q", gotAuth)
	}
}

func TestClient_BearerHeaderAttached(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, "tok-xyz", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []any{}, "count": 0})
	})

	if _, _, err := c.FetchMessages(context.Background(), "main", 50, 0); err != nil {
		t.Fatalf("FetchMessages returned error: %v", err)
	}
	if gotAuth != "Bearer tok-xyz" {
		t.Fatalf("Authorization = %q, want Bearer tok-xyz", gotAuth)
	}
}

func TestClient_ErrorEnvelopeBecomesRemoteError(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
	})

	err := c.JoinRoom(context.Background(), "main", domain.Identity{Username: "alice", Role: domain.RolePlayer})
	var re *domain.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	if re.Status != http.StatusUnauthorized || re.Message != "invalid token" {
		t.Fatalf("RemoteError = %+v", re)
	}
}

func TestClient_CreateRoomConflict(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "room already exists"})
	})

	if err := c.CreateRoom(context.Background(), "main"); !errors.Is(err, domain.ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
}

func TestClient_FetchMessagesQueryAndDecode(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/rooms/TABLE42/messages" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "25" || q.Get("offset") != "5" {
			t.Fatalf("query = %v", q)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]any{
				{"id": 1, "room_id": "TABLE42", "content": "hi", "username": "alice", "user_role": "player"},
			},
			"count": 7,
		})
	})

	msgs, count, err := c.FetchMessages(context.Background(), "TABLE42", 25, 5)
	if err != nil {
		t.Fatalf("FetchMessages returned error: %v", err)
	}
	if count != 7 || len(msgs) != 1 || msgs[0].Content != "hi" {
		t.Fatalf("result = (%v, %d)", msgs, count)
	}
}

func TestClient_RollDecodesResult(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/dice/roll" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "roll-1",
			"expression": "2d6+3",
			"raw_rolls":  map[string][]int{"d6": {4, 5}},
			"modifiers":  []map[string]any{{"label": "modifier", "value": 3}},
			"total":      12,
			"breakdown":  "2d6 [4, 5] +3 = 12",
		})
	})

	result, err := c.Roll(context.Background(), domain.DiceRollRequest{Expression: "2d6+3"})
	if err != nil {
		t.Fatalf("Roll returned error: %v", err)
	}
	if result.Total != 12 || len(result.RawRolls["d6"]) != 2 {
		t.Fatalf("result = %+v", result)
	}
}

func TestClient_Health(t *testing.T) {
	healthy, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if !healthy.Health(context.Background()) {
		t.Fatalf("healthy service reported unhealthy")
	}

	broken, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if broken.Health(context.Background()) {
		t.Fatalf("broken service reported healthy")
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewClient(srv.URL, staticToken(""), zerolog.Nop())
	srv.Close() // connection refused from here on

	_, err := c.Login(context.Background(), "alice", "pw")
	var ne *domain.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
}
