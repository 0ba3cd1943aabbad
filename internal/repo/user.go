package repo

import (
	"context"
	"database/sql"

	"github.com/agripulse/agripulse/internal/models"
)

const userColumns = `id, username, password_hash, phone_number, language, notify_frequency, created_at`

// UserRepo persists owners.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo returns a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// Create inserts a user. passwordHash may be empty (viewer-style login) and
// phone may be empty until the owner links WhatsApp.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash, phone, language string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, phone_number, language)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		username, passwordHash, phone, language)
	return scanUser(row)
}

// GetByUsername returns a user by username, or nil if not found.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetByID returns a user by id, or nil if not found.
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetByPhone returns the owner of a WhatsApp number, or nil if unknown.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// SetNotifyFrequency updates the owner's default notification preference
// (set by the STOP/START/WEEKLY webhook commands).
func (r *UserRepo) SetNotifyFrequency(ctx context.Context, id int, frequency string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET notify_frequency = $1 WHERE id = $2`, frequency, id)
	return err
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PhoneNumber,
		&u.Language, &u.NotifyFrequency, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
