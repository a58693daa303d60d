package archive

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/parley-chat/parley/internal/domain"
)

// Store is a SQLite-backed message archive. The cache writes fetched and
// live messages through to it so history survives restarts.
type Store struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at the given path.
// Use ":memory:" for an in-memory database.
func NewSQLite(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages(room_id, created_at);
	`)
	return err
}

// SaveMessages persists a batch of messages in one transaction. Messages
// are immutable, so an already-stored id is ignored.
func (s *Store) SaveMessages(msgs []domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO messages (id, room_id, author_id, body, created_at) VALUES (?, ?, ?, ?, ?)",
			m.ID, m.ChatRoomID, m.AuthorID, m.Body, m.CreatedAt.UTC(),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// History returns up to `limit` archived messages for a room, newest first,
// matching the cache's per-room order.
func (s *Store) History(roomID string, limit int) ([]domain.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, room_id, author_id, body, created_at FROM messages
		WHERE room_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatRoomID, &m.AuthorID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
