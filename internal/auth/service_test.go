package auth

import (
	"context"
	"testing"

	"github.com/hitoshi/partyup/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	createFn         func(ctx context.Context, user *model.User) error
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	updateFn         func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}
func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

type mockTokenRepo struct {
	createFn        func(ctx context.Context, token *model.APIToken) error
	findByTokenFn   func(ctx context.Context, token string) (*model.APIToken, error)
	deleteByTokenFn func(ctx context.Context, token string) error
}

func (m *mockTokenRepo) Create(ctx context.Context, token *model.APIToken) error {
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	return nil
}
func (m *mockTokenRepo) FindByToken(ctx context.Context, token string) (*model.APIToken, error) {
	if m.findByTokenFn != nil {
		return m.findByTokenFn(ctx, token)
	}
	return nil, nil
}
func (m *mockTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	if m.deleteByTokenFn != nil {
		return m.deleteByTokenFn(ctx, token)
	}
	return nil
}

// mockHasher は平文比較だけを行うPasswordHasher。
type mockHasher struct{}

func (m *mockHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}
func (m *mockHasher) Verify(digest, plaintext string) bool {
	return digest == "hashed:"+plaintext
}

// --- テスト ---

// TestService_Login は正しい認証情報でトークンが発行されることを検証する。
func TestService_Login(t *testing.T) {
	var savedToken *model.APIToken
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, Password: "hashed:secret123"}, nil
		},
	}
	tokenRepo := &mockTokenRepo{
		createFn: func(ctx context.Context, token *model.APIToken) error {
			savedToken = token
			return nil
		},
	}

	svc := NewService(userRepo, tokenRepo, &mockHasher{})

	user, token, err := svc.Login(context.Background(), "test@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}
	if token.Token == "" {
		t.Error("expected non-empty token value")
	}
	if len(token.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token.Token))
	}
	if savedToken == nil || savedToken.Token != token.Token {
		t.Error("expected token to be persisted")
	}
	if savedToken.UserID != "user-1" {
		t.Errorf("savedToken.UserID = %q, want %q", savedToken.UserID, "user-1")
	}
}

// TestService_Login_UnknownEmail は不明なemailで認証情報エラーになることを検証する。
func TestService_Login_UnknownEmail(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, nil
		},
	}

	svc := NewService(userRepo, &mockTokenRepo{}, &mockHasher{})

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
	assertInvalidCredentials(t, err)
}

// TestService_Login_WrongPassword はパスワード不一致が不明なemailと
// 同一のエラーになることを検証する。
func TestService_Login_WrongPassword(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, Password: "hashed:secret123"}, nil
		},
	}

	svc := NewService(userRepo, &mockTokenRepo{}, &mockHasher{})

	_, _, err := svc.Login(context.Background(), "test@example.com", "wrong-password")
	assertInvalidCredentials(t, err)
}

// TestService_Login_EmptyCredentials は空の認証情報が即座に拒否されることを検証する。
func TestService_Login_EmptyCredentials(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockTokenRepo{}, &mockHasher{})

	_, _, err := svc.Login(context.Background(), "", "")
	assertInvalidCredentials(t, err)
}

// TestService_Login_TokensAreUnique は連続ログインで毎回異なるトークンが
// 発行されることを検証する。
func TestService_Login_TokensAreUnique(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, Password: "hashed:secret123"}, nil
		},
	}

	svc := NewService(userRepo, &mockTokenRepo{}, &mockHasher{})

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		_, token, err := svc.Login(context.Background(), "test@example.com", "secret123")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if seen[token.Token] {
			t.Fatal("expected unique token per login")
		}
		seen[token.Token] = true
	}
}

// TestService_Logout はトークン行が削除されることを検証する。
func TestService_Logout(t *testing.T) {
	var deletedToken string
	tokenRepo := &mockTokenRepo{
		deleteByTokenFn: func(ctx context.Context, token string) error {
			deletedToken = token
			return nil
		},
	}

	svc := NewService(&mockUserRepo{}, tokenRepo, &mockHasher{})

	if err := svc.Logout(context.Background(), "some-token"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if deletedToken != "some-token" {
		t.Errorf("deleted token = %q, want %q", deletedToken, "some-token")
	}
}

// TestService_Logout_EmptyToken は空トークンのログアウトがno-opで成功することを検証する。
func TestService_Logout_EmptyToken(t *testing.T) {
	deleteCalled := false
	tokenRepo := &mockTokenRepo{
		deleteByTokenFn: func(ctx context.Context, token string) error {
			deleteCalled = true
			return nil
		},
	}

	svc := NewService(&mockUserRepo{}, tokenRepo, &mockHasher{})

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if deleteCalled {
		t.Error("expected DeleteByToken not to be called for empty token")
	}
}

// TestService_Authenticate はトークンからユーザーが解決されることを検証する。
func TestService_Authenticate(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "test@example.com"}, nil
		},
	}
	tokenRepo := &mockTokenRepo{
		findByTokenFn: func(ctx context.Context, token string) (*model.APIToken, error) {
			return &model.APIToken{ID: "token-1", UserID: "user-1", Token: token}, nil
		},
	}

	svc := NewService(userRepo, tokenRepo, &mockHasher{})

	user, err := svc.Authenticate(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}
}

// TestService_Authenticate_UnknownToken は不明なトークンが401エラーになることを検証する。
func TestService_Authenticate_UnknownToken(t *testing.T) {
	tokenRepo := &mockTokenRepo{
		findByTokenFn: func(ctx context.Context, token string) (*model.APIToken, error) {
			return nil, nil
		},
	}

	svc := NewService(&mockUserRepo{}, tokenRepo, &mockHasher{})

	_, err := svc.Authenticate(context.Background(), "revoked-token")
	assertStatus(t, err, 401)
}

// TestService_Authenticate_EmptyToken は空トークンが401エラーになることを検証する。
func TestService_Authenticate_EmptyToken(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockTokenRepo{}, &mockHasher{})

	_, err := svc.Authenticate(context.Background(), "")
	assertStatus(t, err, 401)
}

// TestService_Authenticate_OrphanToken はユーザーが消えたトークンが
// 401エラーになることを検証する。
func TestService_Authenticate_OrphanToken(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	tokenRepo := &mockTokenRepo{
		findByTokenFn: func(ctx context.Context, token string) (*model.APIToken, error) {
			return &model.APIToken{ID: "token-1", UserID: "gone", Token: token}, nil
		},
	}

	svc := NewService(userRepo, tokenRepo, &mockHasher{})

	_, err := svc.Authenticate(context.Background(), "orphan-token")
	assertStatus(t, err, 401)
}

// --- ヘルパー ---

func assertInvalidCredentials(t *testing.T, err error) {
	t.Helper()
	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 400 {
		t.Errorf("Status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "invalid credentials")
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != status {
		t.Errorf("Status = %d, want %d", apiErr.Status, status)
	}
}
