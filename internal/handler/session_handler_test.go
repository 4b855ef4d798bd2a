package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/partyup/internal/model"
)

// mockAuthService は認証サービスのモック。
type mockAuthService struct {
	loginFn  func(ctx context.Context, email, password string) (*model.User, *model.APIToken, error)
	logoutFn func(ctx context.Context, token string) error
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, *model.APIToken, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.logoutFn(ctx, token)
}

// mockLoginMetrics はログイン失敗カウンターのモック。
type mockLoginMetrics struct {
	failures int
}

func (m *mockLoginMetrics) RecordLoginFailure() {
	m.failures++
}

// TestSessionHandler_Login はログイン成功で201とトークンが返ることを検証する。
func TestSessionHandler_Login(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.User, *model.APIToken, error) {
			if email != "alice@example.com" || password != "secret123" {
				t.Errorf("credentials = (%q, %q)", email, password)
			}
			return &model.User{ID: "user-1", Username: "alice", Email: email},
				&model.APIToken{Token: "opaque-token"}, nil
		},
	}
	handler := NewSessionHandler(service, nil)

	body := `{"email":"alice@example.com","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token.Type != "bearer" {
		t.Errorf("Token.Type = %q, want bearer", resp.Token.Type)
	}
	if resp.Token.Token != "opaque-token" {
		t.Errorf("Token.Token = %q, want opaque-token", resp.Token.Token)
	}
	if resp.User.ID != "user-1" {
		t.Errorf("User.ID = %q, want user-1", resp.User.ID)
	}
}

// TestSessionHandler_Login_InvalidCredentials は認証失敗で400と
// メトリクス記録を検証する。
func TestSessionHandler_Login_InvalidCredentials(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.User, *model.APIToken, error) {
			return nil, nil, model.NewInvalidCredentialsError()
		},
	}
	metrics := &mockLoginMetrics{}
	handler := NewSessionHandler(service, metrics)

	body := `{"email":"alice@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assertErrorBody(t, rec, http.StatusBadRequest, model.ErrCodeBadRequest)
	if metrics.failures != 1 {
		t.Errorf("login failures = %d, want 1", metrics.failures)
	}
}

// TestSessionHandler_Login_InvalidBody は不正なJSONで400になることを検証する。
func TestSessionHandler_Login_InvalidBody(t *testing.T) {
	handler := NewSessionHandler(&mockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("{invalid"))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assertErrorBody(t, rec, http.StatusBadRequest, model.ErrCodeBadRequest)
}

// TestSessionHandler_Logout はトークン失効で204が返ることを検証する。
func TestSessionHandler_Logout(t *testing.T) {
	var gotToken string
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	}
	handler := NewSessionHandler(service, nil)

	req := httptest.NewRequest(http.MethodDelete, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer opaque-token")
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gotToken != "opaque-token" {
		t.Errorf("token passed to Logout = %q, want opaque-token", gotToken)
	}
}
