package gateway_test

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"authgateway/pkg/authengine"
	"authgateway/pkg/fetch"
	"authgateway/pkg/session"
	"authgateway/pkg/user"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) GetSession(ctx context.Context, h fetch.Headers) (*authengine.SessionResult, error) {
	args := m.Called(h)
	res, _ := args.Get(0).(*authengine.SessionResult)
	return res, args.Error(1)
}

func (m *mockEngine) Handler(ctx context.Context, req *fetch.Request) (*fetch.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*fetch.Response)
	return resp, args.Error(1)
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func annSession() *authengine.SessionResult {
	return &authengine.SessionResult{
		Session: &session.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		User:    &user.User{ID: "u1", Name: "Ann", Email: "a@x.com"},
	}
}
