package service

import (
	"context"
	"time"

	"github.com/tavernchat/dicechat/internal/core/domain"
)

// --- remote API stubs ---

type stubAuthAPI struct {
	token         string
	err           error
	loginCalls    int
	registerCalls int
}

func (s *stubAuthAPI) Login(_ context.Context, _, _ string) (string, error) {
	s.loginCalls++
	return s.token, s.err
}

func (s *stubAuthAPI) Register(_ context.Context, _, _ string) (string, error) {
	s.registerCalls++
	return s.token, s.err
}

type stubChatAPI struct {
	createErr error
	joinErr   error
	sendErr   error
	fetchMsgs []domain.ChatMessage
	fetchErr  error

	createCalls  int
	joinCalls    int
	sendCalls    int
	fetchCalls   int
	lastRoomID   string
	lastIdentity domain.Identity
	sent         []string
}

func (s *stubChatAPI) CreateRoom(_ context.Context, roomID string) error {
	s.createCalls++
	s.lastRoomID = roomID
	return s.createErr
}

func (s *stubChatAPI) JoinRoom(_ context.Context, roomID string, identity domain.Identity) error {
	s.joinCalls++
	s.lastRoomID = roomID
	s.lastIdentity = identity
	return s.joinErr
}

func (s *stubChatAPI) SendMessage(_ context.Context, roomID, content string, identity domain.Identity) (*domain.ChatMessage, error) {
	s.sendCalls++
	s.lastRoomID = roomID
	s.lastIdentity = identity
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.sent = append(s.sent, content)
	return &domain.ChatMessage{RoomID: roomID, Content: content, Username: identity.Username, Role: identity.Role}, nil
}

func (s *stubChatAPI) FetchMessages(_ context.Context, roomID string, _, _ int) ([]domain.ChatMessage, int, error) {
	s.fetchCalls++
	s.lastRoomID = roomID
	if s.fetchErr != nil {
		return nil, 0, s.fetchErr
	}
	return s.fetchMsgs, len(s.fetchMsgs), nil
}

type stubDiceAPI struct {
	healthy bool
	result  *domain.DiceRollResult
	err     error
	rolls   int
}

func (s *stubDiceAPI) Roll(_ context.Context, _ domain.DiceRollRequest) (*domain.DiceRollResult, error) {
	s.rolls++
	return s.result, s.err
}

func (s *stubDiceAPI) Health(_ context.Context) bool { return s.healthy }

// --- persistence stub ---

type stubTokenStore struct {
	token    string
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (s *stubTokenStore) Load(_ context.Context) (string, error) {
	return s.token, s.loadErr
}

func (s *stubTokenStore) Save(_ context.Context, token string) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token = token
	return nil
}

func (s *stubTokenStore) Clear(_ context.Context) error {
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.token = ""
	return nil
}

// --- manual scheduler: ticks run only when the test fires them ---

type manualScheduler struct {
	pending   []func()
	cancelled int
}

func (m *manualScheduler) Schedule(_ time.Duration, fn func()) (cancel func()) {
	m.pending = append(m.pending, fn)
	idx := len(m.pending) - 1
	return func() {
		if idx < len(m.pending) && m.pending[idx] != nil {
			m.pending[idx] = nil
			m.cancelled++
		}
	}
}

// fire runs every pending tick once, synchronously.
func (m *manualScheduler) fire() {
	fns := m.pending
	m.pending = nil
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}

func (m *manualScheduler) pendingCount() int {
	n := 0
	for _, fn := range m.pending {
		if fn != nil {
			n++
		}
	}
	return n
}

// --- session-level stubs for the controller ---

type stubAuthSession struct {
	loginErr      error
	restoreFound  bool
	restoreErr    error
	authenticated bool
	logouts       int
	loginCalls    int
}

func (s *stubAuthSession) Login(_ context.Context, _, _ string) (string, error) {
	s.loginCalls++
	if s.loginErr != nil {
		return "", s.loginErr
	}
	s.authenticated = true
	return "token", nil
}

func (s *stubAuthSession) Register(ctx context.Context, u, p string) (string, error) {
	return s.Login(ctx, u, p)
}

func (s *stubAuthSession) Logout(_ context.Context) error {
	s.logouts++
	s.authenticated = false
	return nil
}

func (s *stubAuthSession) IsAuthenticated() bool { return s.authenticated }

func (s *stubAuthSession) Restore(_ context.Context) (bool, error) {
	if s.restoreErr != nil {
		return false, s.restoreErr
	}
	if s.restoreFound {
		s.authenticated = true
	}
	return s.restoreFound, nil
}

type stubRoomClient struct {
	joinErr  error
	roomID   string
	identity domain.Identity
	joins    int
}

func (s *stubRoomClient) SetIdentity(username string, role domain.Role) error {
	s.identity = domain.Identity{Username: username, Role: role}
	return nil
}

func (s *stubRoomClient) Identity() domain.Identity { return s.identity }
func (s *stubRoomClient) SetRoomID(id string)       { s.roomID = id }
func (s *stubRoomClient) RoomID() string            { return s.roomID }
func (s *stubRoomClient) GenerateRoomID() string    { return "ABCD1234" }

func (s *stubRoomClient) Join(_ context.Context) error {
	s.joins++
	return s.joinErr
}

type stubMessageSync struct {
	starts   int
	stops    int
	lastRoom string
	callback func([]domain.ChatMessage)
}

func (s *stubMessageSync) Start(roomID string, onMessages func([]domain.ChatMessage)) {
	s.starts++
	s.lastRoom = roomID
	s.callback = onMessages
}

func (s *stubMessageSync) Stop() { s.stops++ }
