// Package sessiondb persists session records in PostgreSQL.
package sessiondb

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// ErrSessionNotFound is returned when a session lookup matches no rows.
var ErrSessionNotFound = errors.New("session not found")

// SessionRecord is one authenticated request captured by the tracking
// middleware.
type SessionRecord struct {
	ID        int64
	UserID    string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// Store writes and reads session records. The connection string is held and a
// connection is opened per call.
type Store struct {
	dbConnStr string
}

// NewStore creates a new Store instance with the provided connection string.
//
// Parameters:
// - connStr: the database connection string.
//
// Returns:
// - *Store: a pointer to the newly created Store instance.
func NewStore(connStr string) *Store {
	return &Store{dbConnStr: connStr}
}

// InsertSession writes one session record.
//
// Parameters:
// - ctx: the context for managing the request.
// - record: the session record to persist; ID and CreatedAt are assigned by
//   the database.
//
// Returns:
// - error: an error if the write fails.
func (s *Store) InsertSession(ctx context.Context, record *SessionRecord) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
        INSERT INTO sessions (
            user_id,
            ip_address,
            user_agent,
            created_at
        ) VALUES ($1, $2, $3, NOW())
    `, record.UserID, record.IPAddress, record.UserAgent)
	if err != nil {
		return errors.Wrap(err, "failed to insert session")
	}

	return nil
}

// RecentSessions returns a user's most recent sessions, newest first.
//
// Parameters:
// - ctx: the context for managing the request.
// - userID: the user whose sessions to return.
// - limit: the maximum number of rows to return.
//
// Returns:
// - []SessionRecord: the user's sessions, newest first.
// - error: ErrSessionNotFound if the user has no sessions.
func (s *Store) RecentSessions(ctx context.Context, userID string, limit int) ([]SessionRecord, error) {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
        SELECT
            id,
            user_id,
            ip_address,
            user_agent,
            created_at
        FROM sessions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sessions")
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		var record SessionRecord
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.IPAddress,
			&record.UserAgent,
			&record.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan session row")
		}
		sessions = append(sessions, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate session rows")
	}

	if len(sessions) == 0 {
		return nil, ErrSessionNotFound
	}
	return sessions, nil
}
