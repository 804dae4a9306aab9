package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ServiceInterface interface {
	Register(ctx context.Context, form RegisterForm) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
}

type RegisterForm struct {
	Name     string
	Email    string
	Password string
	Image    *string
}

type Service struct {
	Repo Repository
	Cost int
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{Repo: repo, Cost: bcrypt.DefaultCost, now: time.Now}
}

// NormalizeEmail lower-cases and trims an address; lookups and inserts both
// go through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, form RegisterForm) (*User, error) {
	email := NormalizeEmail(form.Email)

	exist, err := s.Repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if exist != nil {
		return nil, ErrAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hashing password error: %w", err)
	}

	now := s.now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(form.Name),
		Email:        email,
		Image:        form.Image,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.Repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// same answer for unknown email and wrong password
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
