// Package handler はHTTP APIのハンドラー層を提供する。
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/partyup/internal/model"
)

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
func decodeJSONBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// errorResponseBody はAPIエラーレスポンスの統一フォーマット。
type errorResponseBody struct {
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	writeJSON(w, apiErr.Status, errorResponseBody{
		Code:    apiErr.Code,
		Status:  apiErr.Status,
		Message: apiErr.Message,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
// APIError以外のエラーは詳細をログに記録し、一般的な500レスポンスを返す。
func handleServiceError(w http.ResponseWriter, err error) {
	if apiErr, ok := model.AsAPIError(err); ok {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	slog.Error("unexpected service error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, &model.APIError{
		Code:    model.ErrCodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "an internal error occurred",
	})
}

// writeInvalidBodyError はリクエストボディの解析失敗を400で返す。
func writeInvalidBodyError(w http.ResponseWriter) {
	writeAPIErrorResponse(w, model.NewBadRequestError("failed to parse request body"))
}
