package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"authgateway/pkg/user"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(email)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(id)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, u *user.User) error {
	return m.Called(u).Error(0)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := user.NewService(repo)
		svc.Cost = bcrypt.MinCost

		repo.On("FindByEmail", "ann@x.com").Return(nil, user.ErrNotFound)
		repo.On("Create", mock.AnythingOfType("*user.User")).Return(nil)

		u, err := svc.Register(ctx, user.RegisterForm{Name: " Ann ", Email: " Ann@X.com", Password: "secret-password"})

		assert.NoError(t, err)
		assert.NotNil(t, u)
		assert.Equal(t, "Ann", u.Name)
		assert.Equal(t, "ann@x.com", u.Email)
		assert.NotEmpty(t, u.ID)
		assert.NotEqual(t, "secret-password", u.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret-password")))
		repo.AssertExpectations(t)
	})

	t.Run("user already exists", func(t *testing.T) {
		repo := new(mockRepo)
		svc := user.NewService(repo)

		repo.On("FindByEmail", "existing@x.com").Return(&user.User{Email: "existing@x.com"}, nil)

		u, err := svc.Register(ctx, user.RegisterForm{Email: "existing@x.com", Password: "password1"})

		assert.ErrorIs(t, err, user.ErrAlreadyExists)
		assert.Nil(t, u)
		repo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		repo := new(mockRepo)
		svc := user.NewService(repo)
		svc.Cost = bcrypt.MinCost

		repo.On("FindByEmail", "a@x.com").Return(nil, user.ErrNotFound)

		u, err := svc.Register(ctx, user.RegisterForm{Email: "a@x.com", Password: strings.Repeat("p", 100)})

		assert.ErrorIs(t, err, user.ErrPasswordTooLong)
		assert.Nil(t, u)
		repo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("lookup error", func(t *testing.T) {
		repo := new(mockRepo)
		svc := user.NewService(repo)

		repo.On("FindByEmail", "a@x.com").Return(nil, errors.New("db down"))

		u, err := svc.Register(ctx, user.RegisterForm{Email: "a@x.com", Password: "password1"})

		assert.EqualError(t, err, "db down")
		assert.Nil(t, u)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	assert.NoError(t, err)

	repo := new(mockRepo)
	svc := user.NewService(repo)

	repo.On("FindByEmail", "valid@x.com").Return(&user.User{
		ID:           "uid",
		Email:        "valid@x.com",
		PasswordHash: string(hashed),
	}, nil)
	repo.On("FindByEmail", "ghost@x.com").Return(nil, user.ErrNotFound)
	repo.On("FindByEmail", "broken@x.com").Return(&user.User{ID: "uid", PasswordHash: "oops"}, nil)
	repo.On("FindByEmail", "down@x.com").Return(nil, errors.New("db down"))

	t.Run("success", func(t *testing.T) {
		u, err := svc.Login(ctx, "Valid@x.com", "correct")

		assert.NoError(t, err)
		assert.Equal(t, "uid", u.ID)
	})

	t.Run("not found", func(t *testing.T) {
		u, err := svc.Login(ctx, "ghost@x.com", "any")

		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
		assert.Nil(t, u)
	})

	t.Run("wrong password", func(t *testing.T) {
		u, err := svc.Login(ctx, "valid@x.com", "wrong")

		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
		assert.Nil(t, u)
	})

	t.Run("broken hash", func(t *testing.T) {
		u, err := svc.Login(ctx, "broken@x.com", "wrong")

		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
		assert.Nil(t, u)
	})

	t.Run("repository error", func(t *testing.T) {
		u, err := svc.Login(ctx, "down@x.com", "wrong")

		assert.EqualError(t, err, "db down")
		assert.Nil(t, u)
	})
}
