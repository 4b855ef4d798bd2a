package user

import (
	"net/url"
	"regexp"

	"github.com/hitoshi/partyup/internal/model"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

// emailPattern はemail形式の簡易チェック。ドメインにドットを要求する。
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateEmail はemailの形式を検証する。
func validateEmail(email string) error {
	if email == "" {
		return model.NewValidationError("email is required")
	}
	if !emailPattern.MatchString(email) {
		return model.NewValidationError("email is invalid")
	}
	return nil
}

// validateUsername はusernameの長さを検証する。
func validateUsername(username string) error {
	if username == "" {
		return model.NewValidationError("username is required")
	}
	if len(username) < minUsernameLength {
		return model.NewValidationError("username must be at least 3 characters")
	}
	return nil
}

// validatePassword はパスワードの長さを検証する。
func validatePassword(password string) error {
	if password == "" {
		return model.NewValidationError("password is required")
	}
	if len(password) < minPasswordLength {
		return model.NewValidationError("password must be at least 8 characters")
	}
	return nil
}

// validateAvatar はavatarが指定された場合にURLとして妥当かを検証する。
// 未指定（空文字列）は許容する。
func validateAvatar(avatar string) error {
	if avatar == "" {
		return nil
	}
	u, err := url.Parse(avatar)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.NewValidationError("avatar must be a valid URL")
	}
	return nil
}
