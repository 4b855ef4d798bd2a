// Package auth はログインセッション（APIトークン）の発行と失効を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/partyup/internal/model"
	"github.com/hitoshi/partyup/internal/repository"
	"github.com/hitoshi/partyup/internal/security"
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	hasher    security.PasswordHasher
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		hasher:    hasher,
	}
}

// Login はemailとパスワードを検証し、新しいAPIトークンを発行する。
// emailの不存在とパスワード不一致はユーザー列挙を防ぐため同一エラーで返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *model.APIToken, error) {
	if email == "" || password == "" {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil || !s.hasher.Verify(user.Password, password) {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	value, err := generateToken()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate api token: %w", err)
	}

	token := &model.APIToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     value,
		CreatedAt: time.Now(),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, nil, fmt.Errorf("failed to save api token: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))

	return user, token, nil
}

// Logout はAPIトークンを失効させる。
// 未知のトークンの失効はエラーにしない（外部契約として冪等）。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.tokenRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// Authenticate はトークンから現在のユーザーを解決する。
// トークンが不明な場合や紐付くユーザーが存在しない場合は401相当のエラーを返す。
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.NewUnauthorizedError()
	}

	t, err := s.tokenRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find api token: %w", err)
	}
	if t == nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, t.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}

// generateToken は暗号的に安全な不透明トークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
