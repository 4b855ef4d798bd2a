package handler

import (
	"context"
	"net/http"
)

// PasswordServiceInterface はパスワードリセットハンドラーが必要とするサービスインターフェース。
type PasswordServiceInterface interface {
	// RequestReset はリセットトークンを発行し、再設定メールの送信をキューに投入する。
	RequestReset(ctx context.Context, email, resetURLBase string) error
	// ConsumeReset はトークンを検証し、パスワードを再設定する。
	ConsumeReset(ctx context.Context, token, newPassword string) error
}

// PasswordHandler はパスワードリセットのHTTPハンドラー。
type PasswordHandler struct {
	service PasswordServiceInterface

	// defaultResetURLBase はリクエストでURLが指定されない場合の
	// リセットページのベースURL。
	defaultResetURLBase string
}

// NewPasswordHandler はPasswordHandlerを生成する。
func NewPasswordHandler(service PasswordServiceInterface, defaultResetURLBase string) *PasswordHandler {
	return &PasswordHandler{
		service:             service,
		defaultResetURLBase: defaultResetURLBase,
	}
}

// forgotPasswordRequest はリセット要求リクエストのボディ。
type forgotPasswordRequest struct {
	Email            string `json:"email"`
	ResetPasswordURL string `json:"resetPasswordUrl"`
}

// resetPasswordRequest はパスワード再設定リクエストのボディ。
type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ForgotPassword はリセットトークンを発行し、再設定メールを送信する。
// POST /forgot-password
func (h *PasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	resetURLBase := req.ResetPasswordURL
	if resetURLBase == "" {
		resetURLBase = h.defaultResetURLBase
	}

	if err := h.service.RequestReset(r.Context(), req.Email, resetURLBase); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword はトークンを検証し、パスワードを再設定する。
// POST /reset-password
func (h *PasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	if err := h.service.ConsumeReset(r.Context(), req.Token, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
