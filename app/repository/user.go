package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-webauth/app/entity"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateEmail is returned by Create when the unique index on users.email rejects the insert.
var ErrDuplicateEmail = errors.New("email already registered")

const mysqlErrDuplicateEntry = 1062

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const selectUserColumns = `
		SELECT id, email, password_hash, reset_token, reset_token_expires_at, created_at, updated_at
		FROM users`

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = uint64(id)
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, selectUserColumns+` WHERE email = ?`, email)
}

// FindByResetToken returns the user holding token, provided it expires after now.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	return r.findOne(ctx, selectUserColumns+` WHERE reset_token = ? AND reset_token_expires_at > ?`, token, now)
}

// FindByIDAndResetToken applies the same predicate as FindByResetToken, keyed by user id.
func (r *UserRepository) FindByIDAndResetToken(ctx context.Context, id uint64, token string, now time.Time) (*entity.User, error) {
	return r.findOne(ctx, selectUserColumns+` WHERE id = ? AND reset_token = ? AND reset_token_expires_at > ?`, id, token, now)
}

// SetResetToken stores a new token for the user only if the stored token still
// equals previous (NULL when previous is not valid). It reports whether the row was updated.
func (r *UserRepository) SetResetToken(ctx context.Context, userID uint64, previous sql.NullString, token string, expiresAt, now time.Time) (bool, error) {
	query := `
		UPDATE users SET
			reset_token = ?,
			reset_token_expires_at = ?,
			updated_at = ?
		WHERE id = ? AND reset_token <=> ?
	`
	result, err := r.db.ExecContext(ctx, query,
		token,
		expiresAt,
		now,
		userID,
		previous,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// ResetPassword replaces the password hash and clears both reset columns in a
// single statement guarded by the token predicate. It reports whether the token was consumed.
func (r *UserRepository) ResetPassword(ctx context.Context, userID uint64, token, passwordHash string, now time.Time) (bool, error) {
	query := `
		UPDATE users SET
			password_hash = ?,
			reset_token = NULL,
			reset_token_expires_at = NULL,
			updated_at = ?
		WHERE id = ? AND reset_token = ? AND reset_token_expires_at > ?
	`
	result, err := r.db.ExecContext(ctx, query,
		passwordHash,
		now,
		userID,
		token,
		now,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	user, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

type rowScanner func(dest ...interface{}) error

func scanUser(scan rowScanner) (*entity.User, error) {
	user := &entity.User{}
	if err := scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.ResetToken,
		&user.ResetTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return user, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}
