// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Passwordにはbcryptダイジェストのみを保持し、APIレスポンスには決して含めない。
type User struct {
	ID        string
	Email     string
	Username  string
	Password  string
	Avatar    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicProfile はUserの公開プロフィール部分を表す。
// グループのロスターやマスター情報として外部に返す形。
type PublicProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// Public はUserから公開プロフィールを生成する。
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

// APIToken はログインセッションに発行される不透明ベアラートークンを表す。
// 有効期限は持たず、明示的なログアウト（失効）によってのみ無効になる。
type APIToken struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
}

// ResetToken はパスワードリセット用のワンタイムトークンを表す。
// ユーザーごとに1行のみ保持し、再発行時は既存行を置き換える。
type ResetToken struct {
	UserID    string
	Token     string
	CreatedAt time.Time
}
