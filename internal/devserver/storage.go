package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tavernchat/dicechat/internal/core/domain"
)

// User is a registered account on the development server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Storage is the SQLite persistence layer for the development server.
type Storage struct {
	db *sql.DB
}

// OpenStorage prepares the database at path, ensures the schema, and seeds
// the default room so players can join it without a DM creating it first.
func OpenStorage(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.CreateRoom(context.Background(), domain.DefaultRoomID); err != nil && !errors.Is(err, domain.ErrRoomExists) {
		db.Close()
		return nil, fmt.Errorf("seed default room: %w", err)
	}

	return s, nil
}

func (s *Storage) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS room_members (
			room_id TEXT NOT NULL,
			username TEXT NOT NULL,
			role TEXT NOT NULL,
			joined_at TIMESTAMP NOT NULL,
			PRIMARY KEY (room_id, username),
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id TEXT NOT NULL,
			content TEXT NOT NULL,
			username TEXT NOT NULL,
			user_role TEXT NOT NULL,
			is_system INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room_id ON messages(room_id, id DESC);`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new account. Returns domain.ErrUserExists when the
// username is taken.
func (s *Storage) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrUserExists
	}
	return u, nil
}

// FindUser looks a user up by username.
func (s *Storage) FindUser(ctx context.Context, username string) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// CreateRoom inserts a room. Returns domain.ErrRoomExists when already present.
func (s *Storage) CreateRoom(ctx context.Context, roomID string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO rooms (id, created_at) VALUES (?, ?)`, roomID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRoomExists
	}
	return nil
}

// RoomExists reports whether the room is present.
func (s *Storage) RoomExists(ctx context.Context, roomID string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM rooms WHERE id = ?`, roomID).Scan(&n); err != nil {
		return false, fmt.Errorf("room exists: %w", err)
	}
	return n > 0, nil
}

// AddMember records a participant. Re-joining refreshes the role.
func (s *Storage) AddMember(ctx context.Context, roomID string, identity domain.Identity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO room_members (room_id, username, role, joined_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(room_id, username) DO UPDATE SET role = excluded.role, joined_at = excluded.joined_at`,
		roomID, identity.Username, string(identity.Role), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// InsertMessage appends a message and returns the stored copy with its id
// and timestamp filled in.
func (s *Storage) InsertMessage(ctx context.Context, msg domain.ChatMessage) (*domain.ChatMessage, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (room_id, content, username, user_role, is_system, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.RoomID, msg.Content, msg.Username, string(msg.Role), msg.IsSystem, now)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}
	msg.ID = id
	msg.Timestamp = &now
	return &msg, nil
}

// ListMessages returns the newest `limit` messages of the room in
// chronological order, with offset counting back from the newest, plus the
// total message count.
func (s *Storage) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]domain.ChatMessage, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM messages WHERE room_id = ?`, roomID).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, content, username, user_role, is_system, created_at
		 FROM messages WHERE room_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
		roomID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var ts time.Time
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Content, &m.Username, &m.Role, &m.IsSystem, &ts); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		m.Timestamp = &ts
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate messages: %w", err)
	}

	// Flip back to oldest-first for display.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, count, nil
}

// Close releases database resources.
func (s *Storage) Close() error {
	return s.db.Close()
}
