// Package security はパスワードハッシュとユーザー入力テキストの
// サニタイズ機能を提供する。
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はパスワードのハッシュ化と検証のインターフェースを定義する。
// 平文パスワードは永続化前に必ずこのインターフェースを通過する。
type PasswordHasher interface {
	// Hash は平文パスワードからソルト付きダイジェストを生成する。
	Hash(plaintext string) (string, error)
	// Verify はダイジェストと平文パスワードの一致を検証する。
	// bcryptの比較は定数時間で行われる。
	Verify(digest, plaintext string) bool
}

// bcryptHasher はbcryptによるPasswordHasherの実装。
type bcryptHasher struct {
	cost int
}

// NewPasswordHasher はbcryptベースのPasswordHasherを生成する。
// costが範囲外の場合はbcrypt.DefaultCostを使用する。
func NewPasswordHasher(cost int) *bcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

// Hash は平文パスワードからソルト付きダイジェストを生成する。
// ソルトはbcryptが内部で生成するため、同じ平文でも毎回異なるダイジェストになる。
func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify はダイジェストと平文パスワードの一致を検証する。
func (h *bcryptHasher) Verify(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// compile-time interface check
var _ PasswordHasher = (*bcryptHasher)(nil)
