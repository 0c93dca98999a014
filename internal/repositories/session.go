package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/shared"
)

// SessionRepository persists login sessions. Rows are keyed by the raw
// (unencrypted) session token together with the owning user's uuid.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert stores a new session row.
func (r *SessionRepository) Insert(row models.SessionRow) error {
	if row.UUID == "" {
		row.UUID = shared.GenerateID()
	}

	_, err := r.db.Exec(
		"INSERT INTO sessions (uuid, user_uuid, session_token, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		row.UUID, row.UserUUID, row.SessionToken, row.CreatedAt, row.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert session: %v", shared.ErrQueryFailed, err)
	}

	return nil
}

// GetByTokenAndUser retrieves a session by exact (raw token, user uuid) match.
func (r *SessionRepository) GetByTokenAndUser(rawToken, userUUID string) (*models.SessionRow, error) {
	var row models.SessionRow
	var createdAt, expiresAt time.Time

	err := r.db.QueryRow(
		"SELECT uuid, user_uuid, session_token, created_at, expires_at FROM sessions WHERE session_token = ? AND user_uuid = ?",
		rawToken, userUUID,
	).Scan(&row.UUID, &row.UserUUID, &row.SessionToken, &createdAt, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: session", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query session: %v", shared.ErrQueryFailed, err)
	}

	if row.UUID == "" || row.UserUUID == "" {
		return nil, fmt.Errorf("%w: session row is missing identifiers", shared.ErrMalformedRow)
	}

	row.CreatedAt = createdAt
	row.ExpiresAt = expiresAt
	return &row, nil
}

// DeleteByTokenAndUser removes the session matching the raw token and user
// uuid, returning the number of rows removed. Deleting an absent session is
// not an error; callers that care inspect the count.
func (r *SessionRepository) DeleteByTokenAndUser(rawToken, userUUID string) (int64, error) {
	res, err := r.db.Exec(
		"DELETE FROM sessions WHERE session_token = ? AND user_uuid = ?",
		rawToken, userUUID,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to delete session: %v", shared.ErrQueryFailed, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get affected rows: %v", shared.ErrQueryFailed, err)
	}

	return rows, nil
}
