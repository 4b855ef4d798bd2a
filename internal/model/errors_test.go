package model

import (
	"errors"
	"fmt"
	"testing"
)

// TestAPIError_Error はエラー文字列のフォーマットを検証する。
func TestAPIError_Error(t *testing.T) {
	err := NewValidationError("name is required")
	want := "[VALIDATION_FAILED] name is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// TestAsAPIError はエラーチェーンからのAPIError抽出を検証する。
func TestAsAPIError(t *testing.T) {
	apiErr := NewNotFoundError("group")

	got, ok := AsAPIError(apiErr)
	if !ok {
		t.Fatal("AsAPIError should match a direct APIError")
	}
	if got.Status != 404 {
		t.Errorf("Status = %d, want 404", got.Status)
	}

	wrapped := fmt.Errorf("service: %w", apiErr)
	got, ok = AsAPIError(wrapped)
	if !ok {
		t.Fatal("AsAPIError should match a wrapped APIError")
	}
	if got.Code != ErrCodeNotFound {
		t.Errorf("Code = %q, want %q", got.Code, ErrCodeNotFound)
	}

	if _, ok := AsAPIError(errors.New("plain")); ok {
		t.Error("AsAPIError should not match a plain error")
	}
}

// TestErrorConstructors は各コンストラクターのコードとステータスを検証する。
func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidationError("x"), ErrCodeValidationFailed, 422},
		{"unauthorized", NewUnauthorizedError(), ErrCodeUnauthorized, 401},
		{"forbidden", NewForbiddenError("x"), ErrCodeForbidden, 403},
		{"not found", NewNotFoundError("x"), ErrCodeNotFound, 404},
		{"conflict", NewConflictError("x"), ErrCodeConflict, 409},
		{"token expired", NewTokenExpiredError(), ErrCodeTokenExpired, 410},
		{"bad request", NewBadRequestError("x"), ErrCodeBadRequest, 400},
		{"invalid credentials", NewInvalidCredentialsError(), ErrCodeBadRequest, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.wantStatus)
			}
		})
	}
}

// TestInvalidCredentialsMessage は認証情報不一致のメッセージが
// 原因を区別しないことを検証する。
func TestInvalidCredentialsMessage(t *testing.T) {
	if got := NewInvalidCredentialsError().Message; got != "invalid credentials" {
		t.Errorf("Message = %q, want %q", got, "invalid credentials")
	}
}
