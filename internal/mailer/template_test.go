package mailer

import (
	"strings"
	"testing"
)

// TestBuildResetPasswordMessage は再設定メールの組み立てを検証する。
func TestBuildResetPasswordMessage(t *testing.T) {
	msg, err := BuildResetPasswordMessage(
		"test@example.com",
		"tester",
		"https://app.example.com/reset?token=abc123",
	)
	if err != nil {
		t.Fatalf("BuildResetPasswordMessage returned error: %v", err)
	}

	if msg.To != "test@example.com" {
		t.Errorf("To = %q, want %q", msg.To, "test@example.com")
	}
	if msg.Subject != resetPasswordSubject {
		t.Errorf("Subject = %q, want %q", msg.Subject, resetPasswordSubject)
	}
	if !strings.Contains(msg.Body, "Hi tester,") {
		t.Error("body should greet the user by name")
	}
	if !strings.Contains(msg.Body, "https://app.example.com/reset?token=abc123") {
		t.Error("body should contain the reset URL")
	}
}
