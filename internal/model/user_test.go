package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestUser_Public は公開プロフィールにパスワードダイジェストが
// 含まれないことを検証する。
func TestUser_Public(t *testing.T) {
	u := &User{
		ID:       "user-1",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "$2a$10$digest",
		Avatar:   "https://cdn.example.com/a.png",
	}

	p := u.Public()

	if p.ID != u.ID || p.Email != u.Email || p.Username != u.Username || p.Avatar != u.Avatar {
		t.Errorf("Public() = %+v, want fields copied from %+v", p, u)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("failed to marshal public profile: %v", err)
	}
	if strings.Contains(string(data), "digest") {
		t.Error("public profile JSON must not contain the password digest")
	}
}

// TestPublicProfile_OmitsEmptyAvatar は未設定のavatarがJSONに
// 現れないことを検証する。
func TestPublicProfile_OmitsEmptyAvatar(t *testing.T) {
	p := PublicProfile{ID: "user-1", Username: "alice", Email: "alice@example.com"}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("failed to marshal public profile: %v", err)
	}
	if strings.Contains(string(data), "avatar") {
		t.Errorf("JSON = %s, want avatar omitted when empty", data)
	}
}
