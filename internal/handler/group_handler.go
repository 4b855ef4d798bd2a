package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/partyup/internal/group"
	"github.com/hitoshi/partyup/internal/middleware"
	"github.com/hitoshi/partyup/internal/model"
	"github.com/hitoshi/partyup/internal/repository"
)

// GroupServiceInterface はグループハンドラーが必要とするサービスインターフェース。
type GroupServiceInterface interface {
	// Create は新しいグループを作成する。作成者がマスターになる。
	Create(ctx context.Context, masterID string, fields group.Fields) (*model.GroupWithRoster, error)
	// Update はグループのテキストフィールドを更新する。マスターのみ。
	Update(ctx context.Context, callerID, groupID string, fields group.Fields) (*model.GroupWithRoster, error)
	// Delete はグループを削除する。マスターのみ。
	Delete(ctx context.Context, callerID, groupID string) error
	// List は条件に合致するグループをページネーション付きで返す。
	List(ctx context.Context, filter repository.GroupFilter, page, perPage int) (*group.ListResult, error)
	// RemovePlayer はロスターから参加者を外す。マスターのみ。
	RemovePlayer(ctx context.Context, callerID, groupID, userID string) error
}

// GroupHandler はグループ管理のHTTPハンドラー。
type GroupHandler struct {
	service GroupServiceInterface
}

// NewGroupHandler はGroupHandlerを生成する。
func NewGroupHandler(service GroupServiceInterface) *GroupHandler {
	return &GroupHandler{
		service: service,
	}
}

// groupRequestBody はグループ作成・更新リクエストのボディ。
type groupRequestBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schedule    string `json:"schedule"`
	Location    string `json:"location"`
	Chronic     string `json:"chronic"`
}

// groupResponse はグループ情報のAPIレスポンス。
// マスターとロスターの公開プロフィールを含む。
type groupResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Schedule    string                `json:"schedule"`
	Location    string                `json:"location"`
	Chronic     string                `json:"chronic"`
	Master      model.PublicProfile   `json:"master"`
	Players     []model.PublicProfile `json:"players"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// groupListResponse はグループ一覧のAPIレスポンス。
type groupListResponse struct {
	Data []groupResponse `json:"data"`
	Meta groupListMeta   `json:"meta"`
}

// groupListMeta はページネーション情報。
type groupListMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	LastPage int `json:"last_page"`
}

// toGroupResponse はGroupWithRosterをAPIレスポンスに変換する。
func toGroupResponse(g *model.GroupWithRoster) groupResponse {
	players := g.Players
	if players == nil {
		players = []model.PublicProfile{}
	}
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Schedule:    g.Schedule,
		Location:    g.Location,
		Chronic:     g.Chronic,
		Master:      g.Master,
		Players:     players,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// fieldsFromBody はリクエストボディをサービス層の入力に変換する。
func fieldsFromBody(req groupRequestBody) group.Fields {
	return group.Fields{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		Location:    req.Location,
		Chronic:     req.Chronic,
	}
}

// Create は新しいグループを作成する。
// POST /groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, model.NewUnauthorizedError())
		return
	}

	var req groupRequestBody
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	created, err := h.service.Create(r.Context(), userID, fieldsFromBody(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGroupResponse(created))
}

// List は条件に合致するグループの一覧を返す。
// GET /groups?user=&text=&page=&perPage=
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.GroupFilter{
		UserID: q.Get("user"),
		Text:   q.Get("text"),
	}

	page := parseIntParam(q.Get("page"), 1)
	perPage := parseIntParam(q.Get("perPage"), 0)

	result, err := h.service.List(r.Context(), filter, page, perPage)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := make([]groupResponse, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, toGroupResponse(&result.Data[i]))
	}

	writeJSON(w, http.StatusOK, groupListResponse{
		Data: data,
		Meta: groupListMeta{
			Total:    result.Total,
			Page:     result.Page,
			PerPage:  result.PerPage,
			LastPage: result.LastPage,
		},
	})
}

// Update はグループのテキストフィールドを更新する。
// PATCH /groups/{id}
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, model.NewUnauthorizedError())
		return
	}

	groupID := chi.URLParam(r, "id")

	var req groupRequestBody
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, groupID, fieldsFromBody(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGroupResponse(updated))
}

// Delete はグループを削除する。
// DELETE /groups/{id}
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, model.NewUnauthorizedError())
		return
	}

	groupID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, groupID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "group deleted"})
}

// RemovePlayer はロスターから参加者を外す。
// DELETE /groups/{id}/players/{playerId}
func (h *GroupHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, model.NewUnauthorizedError())
		return
	}

	groupID := chi.URLParam(r, "id")
	playerID := chi.URLParam(r, "playerId")

	if err := h.service.RemovePlayer(r.Context(), userID, groupID, playerID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "player removed"})
}

// parseIntParam はクエリパラメータを整数として解析する。
// 空文字や不正な値はdefaultValを返す。
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return n
}
