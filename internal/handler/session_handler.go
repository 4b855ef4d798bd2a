package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/hitoshi/partyup/internal/model"
)

// AuthServiceInterface はセッションハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は認証情報を検証し、新しいAPIトークンを発行する。
	Login(ctx context.Context, email, password string) (*model.User, *model.APIToken, error)
	// Logout はトークンを失効させる。未知のトークンもエラーにしない。
	Logout(ctx context.Context, token string) error
}

// LoginMetricsRecorder はログイン失敗の計測に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type LoginMetricsRecorder interface {
	RecordLoginFailure()
}

// SessionHandler はセッション管理のHTTPハンドラー。
type SessionHandler struct {
	service AuthServiceInterface
	metrics LoginMetricsRecorder
}

// NewSessionHandler はSessionHandlerを生成する。metricsはnilでもよい。
func NewSessionHandler(service AuthServiceInterface, metrics LoginMetricsRecorder) *SessionHandler {
	return &SessionHandler{
		service: service,
		metrics: metrics,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログイン成功時のAPIレスポンス。
type loginResponse struct {
	Token tokenResponse       `json:"token"`
	User  model.PublicProfile `json:"user"`
}

// tokenResponse は発行されたベアラートークンの表現。
type tokenResponse struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Login は認証情報を検証し、新しいベアラートークンを発行する。
// POST /sessions
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLoginFailure()
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, loginResponse{
		Token: tokenResponse{
			Type:  "bearer",
			Token: token.Token,
		},
		User: user.Public(),
	})
}

// Logout は現在のトークンを失効させる。
// DELETE /sessions
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerTokenFromHeader(r)

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// bearerTokenFromHeader はAuthorizationヘッダーからベアラートークンを取り出す。
func bearerTokenFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
