package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/shared"
)

// UserRepository persists magic-link accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with a generated uuid and returns the stored record.
func (r *UserRepository) Create(email, clientInfo string) (*models.User, error) {
	user := &models.User{
		UUID:       shared.GenerateID(),
		Email:      email,
		ClientInfo: clientInfo,
	}

	_, err := r.db.Exec(
		"INSERT INTO users (uuid, email, client_info) VALUES (?, ?, ?)",
		user.UUID, user.Email, user.ClientInfo,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert user: %v", shared.ErrQueryFailed, err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email. A missing user surfaces as
// [shared.ErrNotFound], distinct from query failures.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	var clientInfo sql.NullString

	err := r.db.QueryRow(
		"SELECT uuid, email, client_info FROM users WHERE email = ?",
		email,
	).Scan(&user.UUID, &user.Email, &clientInfo)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query user: %v", shared.ErrQueryFailed, err)
	}

	user.ClientInfo = clientInfo.String
	return &user, nil
}
