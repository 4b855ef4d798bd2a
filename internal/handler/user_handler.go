package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/partyup/internal/middleware"
	"github.com/hitoshi/partyup/internal/model"
	"github.com/hitoshi/partyup/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, in user.RegisterInput) (*model.User, error)
	// Update はユーザー自身のプロフィールを更新する。
	Update(ctx context.Context, callerID, targetID string, in user.UpdateInput) (*model.User, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// updateRequest はプロフィール更新リクエストのボディ。
type updateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	User model.PublicProfile `json:"user"`
}

// Register は新規ユーザーを登録する。
// POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	created, err := h.service.Register(r.Context(), user.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{User: created.Public()})
}

// Update はユーザー自身のプロフィールを更新する。
// PUT /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, model.NewUnauthorizedError())
		return
	}

	targetID := chi.URLParam(r, "id")

	var req updateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	updated, err := h.service.Update(r.Context(), callerID, targetID, user.UpdateInput{
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: updated.Public()})
}
