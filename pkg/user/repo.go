package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"authgateway/internal/database"
)

const userColumns = "id, name, email, email_verified, image, password_hash, created_at, updated_at"

type SQLRepo struct {
	DB      *sql.DB
	Dialect database.Dialect
}

func NewSQLRepo(db *sql.DB, dialect database.Dialect) *SQLRepo {
	return &SQLRepo{DB: db, Dialect: dialect}
}

func (r *SQLRepo) Create(ctx context.Context, user *User) error {
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		user.ID, user.Name, user.Email, user.EmailVerified, user.Image,
		user.PasswordHash, user.CreatedAt.UTC(), user.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

func (r *SQLRepo) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r *SQLRepo) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var (
		u     User
		image sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.EmailVerified, &image,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	if image.Valid {
		u.Image = &image.String
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
