package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/partyup/internal/middleware"
	"github.com/hitoshi/partyup/internal/model"
)

// RequestServiceInterface は参加リクエストハンドラーが必要とするサービスインターフェース。
type RequestServiceInterface interface {
	// Create はグループへの参加リクエストを作成する。
	Create(ctx context.Context, userID, groupID string) (*model.GroupRequest, error)
	// ListPending はグループのPENDINGリクエストを申請者情報付きで返す。
	ListPending(ctx context.Context, groupID, masterID string) ([]model.GroupRequestWithUser, error)
	// Accept はリクエストを承認し、申請者をロスターに追加する。マスターのみ。
	Accept(ctx context.Context, callerID, groupID, requestID string) (*model.GroupRequest, error)
	// Reject はリクエストを却下（行を削除）する。マスターか申請者本人のみ。
	Reject(ctx context.Context, callerID, groupID, requestID string) error
}

// RequestMetricsRecorder は参加リクエストの状態遷移計測に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type RequestMetricsRecorder interface {
	RecordRequestTransition(transition string)
}

// RequestHandler は参加リクエストのHTTPハンドラー。
type RequestHandler struct {
	service RequestServiceInterface
	metrics RequestMetricsRecorder
}

// NewRequestHandler はRequestHandlerを生成する。metricsはnilでもよい。
func NewRequestHandler(service RequestServiceInterface, metrics RequestMetricsRecorder) *RequestHandler {
	return &RequestHandler{
		service: service,
		metrics: metrics,
	}
}

// requestResponse は参加リクエストのAPIレスポンス。
type requestResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GroupID   string    `json:"group_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// requestWithUserResponse は申請者情報付きの参加リクエストのAPIレスポンス。
type requestWithUserResponse struct {
	requestResponse
	User model.PublicProfile `json:"user"`
}

// requestListResponse は参加リクエスト一覧のAPIレスポンス。
type requestListResponse struct {
	Data []requestWithUserResponse `json:"data"`
}

// toRequestResponse はGroupRequestをAPIレスポンスに変換する。
func toRequestResponse(req *model.GroupRequest) requestResponse {
	return requestResponse{
		ID:        req.ID,
		UserID:    req.UserID,
		GroupID:   req.GroupID,
		Status:    string(req.Status),
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
}

// recordTransition はメトリクスが設定されている場合に状態遷移を記録する。
func (h *RequestHandler) recordTransition(transition string) {
	if h.metrics != nil {
		h.metrics.RecordRequestTransition(transition)
	}
}

// Create はグループへの参加リクエストを作成する。
// POST /groups/{id}/requests
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, model.NewUnauthorizedError())
		return
	}

	groupID := chi.URLParam(r, "id")

	created, err := h.service.Create(r.Context(), userID, groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTransition("created")
	writeJSON(w, http.StatusCreated, toRequestResponse(created))
}

// List はグループのPENDINGリクエスト一覧を返す。
// GET /groups/{id}/requests?master=
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeAPIErrorResponse(w, model.NewUnauthorizedError())
		return
	}

	groupID := chi.URLParam(r, "id")
	masterID := r.URL.Query().Get("master")

	requests, err := h.service.ListPending(r.Context(), groupID, masterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := make([]requestWithUserResponse, 0, len(requests))
	for i := range requests {
		data = append(data, requestWithUserResponse{
			requestResponse: toRequestResponse(&requests[i].GroupRequest),
			User:            requests[i].User,
		})
	}

	writeJSON(w, http.StatusOK, requestListResponse{Data: data})
}

// Accept は参加リクエストを承認する。
// POST /groups/{id}/requests/{requestId}/accept
func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, model.NewUnauthorizedError())
		return
	}

	groupID := chi.URLParam(r, "id")
	requestID := chi.URLParam(r, "requestId")

	accepted, err := h.service.Accept(r.Context(), userID, groupID, requestID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTransition("accepted")
	writeJSON(w, http.StatusOK, toRequestResponse(accepted))
}

// Reject は参加リクエストを却下する。
// DELETE /groups/{id}/requests/{requestId}
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, model.NewUnauthorizedError())
		return
	}

	groupID := chi.URLParam(r, "id")
	requestID := chi.URLParam(r, "requestId")

	if err := h.service.Reject(r.Context(), userID, groupID, requestID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTransition("rejected")
	writeJSON(w, http.StatusOK, map[string]string{"message": "request rejected"})
}
