package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/partyup/internal/model"
)

// TestWriteErrorResponse は統一エラーフォーマットの出力を検証する。
func TestWriteErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteErrorResponse(rec, model.NewNotFoundError("group"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != model.ErrCodeNotFound {
		t.Errorf("Code = %q, want %q", body.Code, model.ErrCodeNotFound)
	}
	if body.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", body.Status)
	}
	if body.Message != "group not found" {
		t.Errorf("Message = %q, want %q", body.Message, "group not found")
	}
}

// TestWriteInternalServerError は内部エラーレスポンスが詳細を
// 含まないことを検証する。
func TestWriteInternalServerError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteInternalServerError(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != model.ErrCodeInternal {
		t.Errorf("Code = %q, want %q", body.Code, model.ErrCodeInternal)
	}
	if body.Message != "an internal error occurred" {
		t.Errorf("Message = %q, want generic message", body.Message)
	}
}
