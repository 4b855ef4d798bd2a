// Package password はパスワードリセットトークンのライフサイクルを提供する。
package password

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/partyup/internal/mailer"
	"github.com/hitoshi/partyup/internal/model"
	"github.com/hitoshi/partyup/internal/repository"
	"github.com/hitoshi/partyup/internal/security"
)

// DefaultTokenTTL はリセットトークンの有効期間。
// 期限は保存されたcreated_atから消費時に遅延評価され、定期的な掃除は行わない。
const DefaultTokenTTL = 2 * time.Hour

// minPasswordLength は再設定時に許容するパスワードの最小文字数。
const minPasswordLength = 8

// MailEnqueuer はリセットメールの非同期投入インターフェース。
// worker/maildispatch.Dispatcherの部分集合として定義する。
type MailEnqueuer interface {
	Enqueue(msg mailer.Message) bool
}

// Service はパスワードリセットのビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.ResetTokenRepository
	hasher    security.PasswordHasher
	mail      MailEnqueuer
	tokenTTL  time.Duration
}

// NewService はServiceを生成する。
// tokenTTLが0以下の場合はDefaultTokenTTLを使用する。
func NewService(
	userRepo repository.UserRepository,
	tokenRepo repository.ResetTokenRepository,
	hasher security.PasswordHasher,
	mail MailEnqueuer,
	tokenTTL time.Duration,
) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		hasher:    hasher,
		mail:      mail,
		tokenTTL:  tokenTTL,
	}
}

// RequestReset はリセットトークンを発行し、再設定メールの送信をキューに投入する。
// 既存トークンがあれば新しいトークンで置き換える（ユーザーごとに高々1件）。
// メール送信はfire-and-forgetで、失敗しても呼び出し元にエラーは返らない。
func (s *Service) RequestReset(ctx context.Context, email, resetURLBase string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return model.NewNotFoundError("user")
	}

	value, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	token := &model.ResetToken{
		UserID:    user.ID,
		Token:     value,
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.Upsert(ctx, token); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	resetURL := resetURLBase + "?token=" + value
	msg, err := mailer.BuildResetPasswordMessage(user.Email, user.Username, resetURL)
	if err != nil {
		// メールを組み立てられなくてもトークンは発行済みなので失敗にしない
		slog.Error("failed to build reset password mail",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	s.mail.Enqueue(msg)

	slog.Info("password reset requested", slog.String("user_id", user.ID))
	return nil
}

// ConsumeReset はトークンを検証し、パスワードを再設定する。
// トークン不明（消費済み含む）はNotFound、期限切れはTokenExpiredで区別する。
// 期限切れの場合はトークン行を残し、再試行しても同じエラーを返し続ける。
// パスワード更新とトークン削除は単一トランザクションでコミットされる。
func (s *Service) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return model.NewValidationError("token is required")
	}
	if len(newPassword) < minPasswordLength {
		return model.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	t, err := s.tokenRepo.FindByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to find reset token: %w", err)
	}
	if t == nil {
		return model.NewNotFoundError("token")
	}

	age := time.Since(t.CreatedAt)
	if age < 0 {
		age = -age
	}
	if age > s.tokenTTL {
		return model.NewTokenExpiredError()
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.tokenRepo.Consume(ctx, token, t.UserID, digest); err != nil {
		if err == repository.ErrNotFound {
			// 並行する消費に追い越された場合も使用済みとして扱う
			return model.NewNotFoundError("token")
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	slog.Info("password reset completed", slog.String("user_id", t.UserID))
	return nil
}

// generateResetToken は24バイトのエントロピーを持つhexトークンを生成する。
func generateResetToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
