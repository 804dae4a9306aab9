package user_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgateway/internal/database"
	"authgateway/pkg/user"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))
	return db
}

func setupTestBadDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func TestSQLRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := user.NewSQLRepo(setupTestDB(t), database.SQLite)

	image := "https://cdn.x.com/ann.png"
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ann := &user.User{
		ID:           "u1",
		Name:         "Ann",
		Email:        "a@x.com",
		Image:        &image,
		PasswordHash: "hashed_pass",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, repo.Create(ctx, ann))

	err := repo.Create(ctx, &user.User{ID: "u2", Name: "Other", Email: "a@x.com", PasswordHash: "x", CreatedAt: created, UpdatedAt: created})
	assert.ErrorIs(t, err, user.ErrAlreadyExists)

	u, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "Ann", u.Name)
	require.NotNil(t, u.Image)
	assert.Equal(t, image, *u.Image)
	assert.True(t, created.Equal(u.CreatedAt))

	byID, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &user.User{ID: "u3", Name: "NoImage", Email: "n@x.com", PasswordHash: "x", CreatedAt: created, UpdatedAt: created}))
	noImage, err := repo.FindByEmail(ctx, "n@x.com")
	require.NoError(t, err)
	assert.Nil(t, noImage.Image)
}

func TestSQLRepo_BrokenSchema(t *testing.T) {
	ctx := context.Background()
	db := setupTestBadDB(t)
	repo := user.NewSQLRepo(db, database.SQLite)

	_, err := db.Exec("INSERT INTO users (id, email) VALUES (?, ?)", "u123", "who@x.com")
	require.NoError(t, err)

	_, err = repo.FindByEmail(ctx, "who@x.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, user.ErrNotFound)
}
