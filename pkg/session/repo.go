package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"authgateway/internal/database"
)

type SQLRepo struct {
	DB      *sql.DB
	Dialect database.Dialect
}

func NewSQLRepo(db *sql.DB, dialect database.Dialect) *SQLRepo {
	return &SQLRepo{DB: db, Dialect: dialect}
}

func (r *SQLRepo) Create(ctx context.Context, s *Session) error {
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`
		INSERT INTO sessions (id, user_id, expires_at, ip_address, user_agent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), s.ID, s.UserID, s.ExpiresAt.UTC(), s.IPAddress, s.UserAgent, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SQLRepo) FindByID(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`
		SELECT id, user_id, expires_at, ip_address, user_agent, created_at, updated_at
		FROM sessions WHERE id = ?
	`), id).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &s, nil
}

func (r *SQLRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SQLRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
