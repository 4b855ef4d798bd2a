// Package user はユーザー登録とプロフィール更新のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/partyup/internal/model"
	"github.com/hitoshi/partyup/internal/repository"
	"github.com/hitoshi/partyup/internal/security"
)

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email    string
	Username string
	Password string
	Avatar   string
}

// UpdateInput はプロフィール更新の入力。
// emailとpasswordは必須、avatarは省略可能（省略時は既存値を維持）。
type UpdateInput struct {
	Email    string
	Password string
	Avatar   string
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	hasher    security.PasswordHasher
	sanitizer security.TextSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		sanitizer: sanitizer,
	}
}

// Register は新規ユーザーを作成する。
// email/usernameの重複はどのフィールドが重複したかを示すConflictを返す。
// パスワードは保存前に必ずハッシュ化され、平文は以後どこにも残らない。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validateAvatar(in.Avatar); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, model.NewConflictError("email already in use")
	}

	existing, err = s.userRepo.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, model.NewConflictError("username already in use")
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     in.Email,
		Username:  s.sanitizer.Sanitize(in.Username),
		Password:  digest,
		Avatar:    in.Avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			// 事前チェックを追い越した同時登録はユニーク制約が弾く
			return nil, model.NewConflictError("email or username already in use")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", slog.String("user_id", user.ID))

	return user, nil
}

// Update はユーザー自身のemail/password/avatarを更新する。
// 呼び出しユーザーと対象ユーザーが一致しない場合はForbiddenを返す。
func (s *Service) Update(ctx context.Context, callerID, targetID string, in UpdateInput) (*model.User, error) {
	if callerID != targetID {
		return nil, model.NewForbiddenError("you can only update your own profile")
	}

	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validateAvatar(in.Avatar); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("user")
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Email = in.Email
	user.Password = digest
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch err {
		case repository.ErrDuplicate:
			return nil, model.NewConflictError("email already in use")
		case repository.ErrNotFound:
			return nil, model.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("user updated", slog.String("user_id", user.ID))

	return user, nil
}
