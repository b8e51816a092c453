package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ninahidul9/connect-chat/internal/models"
)

// memRepository keeps accounts in a map, enough for service-level tests.
type memRepository struct {
	accounts map[string]models.Account
}

func newMemRepository() *memRepository {
	return &memRepository{accounts: make(map[string]models.Account)}
}

func (r *memRepository) CreateAccount(_ context.Context, acct *models.Account, _ *models.Profile) error {
	if _, ok := r.accounts[acct.Email]; ok {
		return errors.New("email already registered")
	}
	r.accounts[acct.Email] = *acct
	return nil
}

func (r *memRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	acct, ok := r.accounts[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &acct, nil
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService(newMemRepository(), "test-secret", time.Hour)

	token, err := svc.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	userID, err := ParseUserID(token, "test-secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID = %q, want user-123", userID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	svc := NewService(newMemRepository(), "test-secret", time.Hour)
	token, err := svc.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := ParseUserID(token, "other-secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := ParseUserID("not-a-token", "test-secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	svc := NewService(newMemRepository(), "test-secret", -time.Minute)
	token, err := svc.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := ParseUserID(token, "test-secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemRepository()
	svc := NewService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	profile, err := svc.Register(ctx, RegisterRequest{
		Email:       "anna@example.com",
		Username:    "anna",
		DisplayName: "Anna",
		Password:    "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if profile.ID == "" || profile.Username != "anna" {
		t.Fatalf("profile = %+v", profile)
	}

	// Credentials are stored hashed, never verbatim.
	acct := repo.accounts["anna@example.com"]
	if acct.PasswordHash == "hunter22" {
		t.Fatal("password stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("hunter22")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	token, err := svc.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	userID, err := ParseUserID(token, "test-secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != profile.ID {
		t.Fatalf("token subject = %q, want %q", userID, profile.ID)
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "hunter22"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}
