package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finledger/internal/dto"
	"finledger/internal/models"
	"finledger/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memUsers struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	cp := *user
	m.byEmail[user.Email] = &cp
	m.byID[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.byEmail[email], nil
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.byID[id], nil
}

func newTestAuth(t *testing.T) (*AuthService, *memUsers) {
	t.Helper()
	users := newMemUsers()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(users, jwtManager, zap.NewNop()), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users := newTestAuth(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("tokens missing from register response")
	}
	if resp.User.Email != "alice@example.com" {
		t.Errorf("user email = %q", resp.User.Email)
	}
	if users.byEmail["alice@example.com"].Password == "s3cret-pass" {
		t.Error("password stored unhashed")
	}

	if _, err := svc.Register(ctx, &dto.RegisterRequest{Email: "alice@example.com", Password: "x"}); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate register: got %v, want ErrUserExists", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "s3cret-pass"}); err != nil {
		t.Errorf("Login: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestRefreshToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("no access token after refresh")
	}

	if _, err := svc.RefreshToken(ctx, "garbage"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}
