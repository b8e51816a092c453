package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ninahidul9/connect-chat/internal/models"
)

var ErrInvalidCredentials = errors.New("auth: invalid credentials")

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

type Service struct {
	repo      Repository
	jwtSecret string
	jwtExpire time.Duration
}

func NewService(repo Repository, secret string, expire time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: secret, jwtExpire: expire}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	acct := &models.Account{
		ID:           id,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	profile := &models.Profile{
		ID:          id,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		LastSeen:    time.Now().UTC(),
	}
	if err := s.repo.CreateAccount(ctx, acct, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	acct, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.GenerateToken(acct.ID)
}

// GenerateToken signs an HS256 token carrying the profile id.
func (s *Service) GenerateToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(s.jwtExpire).Unix(),
		"iat": time.Now().Unix(),
	})
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseUserID validates a token and extracts the profile id.
func ParseUserID(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidCredentials
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidCredentials
	}
	return sub, nil
}
