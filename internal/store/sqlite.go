package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a MessageStore backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ MessageStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at dbPath, creating the schema if it does
// not exist yet.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		message_id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		username VARCHAR(50) NOT NULL,
		room_id VARCHAR(50) NOT NULL DEFAULT 'general',
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_room_timestamp ON messages(room_id, timestamp);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// CreateMessage inserts a new message with a generated UUID and the current
// time as its timestamp.
func (s *SQLiteStore) CreateMessage(ctx context.Context, content, username, roomID string) (Message, error) {
	msg := Message{
		MessageID: uuid.NewString(),
		Content:   content,
		Username:  username,
		RoomID:    roomID,
		Timestamp: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (message_id, content, username, room_id, timestamp) VALUES (?, ?, ?, ?, ?)",
		msg.MessageID, msg.Content, msg.Username, msg.RoomID, msg.Timestamp,
	)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

// RecentMessages returns up to limit of the newest messages in a room, oldest
// first. The rowid tiebreak keeps the order stable when timestamps collide.
func (s *SQLiteStore) RecentMessages(ctx context.Context, roomID string, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, content, username, room_id, timestamp
		 FROM messages
		 WHERE room_id = ?
		 ORDER BY timestamp DESC, rowid DESC
		 LIMIT ?`,
		roomID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var newestFirst []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.MessageID, &msg.Content, &msg.Username, &msg.RoomID, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		newestFirst = append(newestFirst, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Reverse into chronological order for delivery.
	messages := make([]Message, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		messages = append(messages, newestFirst[i])
	}
	return messages, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
