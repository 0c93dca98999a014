package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/shared"
)

// AdminRepository persists the single admin identity. The system supports
// exactly 0 or 1 admin rows; more than one is a fatal misconfiguration.
type AdminRepository struct {
	db *sql.DB
}

// NewAdminRepository creates a new [AdminRepository] with the given database connection.
func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Count returns the number of admin rows.
func (r *AdminRepository) Count() (int, error) {
	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) AS total FROM admin").Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: failed to count admin users: %v", shared.ErrQueryFailed, err)
	}
	return total, nil
}

// Insert stores the admin row, enforcing the 0-or-1 invariant at write time.
func (r *AdminRepository) Insert(cred models.AdminCredential) error {
	total, err := r.Count()
	if err != nil {
		return err
	}
	if total != 0 {
		return shared.ErrAdminExists
	}

	_, err = r.db.Exec(
		"INSERT INTO admin (email, refresh_token) VALUES (?, ?)",
		cred.Email, cred.RefreshToken,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert admin: %v", shared.ErrQueryFailed, err)
	}

	return nil
}

// Get loads the single admin row. Missing rows and rows without a refresh
// token are distinct failures.
func (r *AdminRepository) Get() (*models.AdminCredential, error) {
	var cred models.AdminCredential

	err := r.db.QueryRow("SELECT email, refresh_token FROM admin LIMIT 1").Scan(&cred.Email, &cred.RefreshToken)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: admin", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query admin: %v", shared.ErrQueryFailed, err)
	}

	if cred.Email == "" || cred.RefreshToken == "" {
		return nil, fmt.Errorf("%w: admin row is incomplete", shared.ErrMalformedRow)
	}

	return &cred, nil
}
