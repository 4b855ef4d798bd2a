// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// 機械可読なコード、HTTPステータス、人間向けメッセージを持ち、
// ストア内部のエラー詳細は決して含めない。
type APIError struct {
	Code    string // エラーコード
	Status  int    // HTTPステータスコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// AsAPIError はエラーチェーンからAPIErrorを取り出す。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewValidationError は入力検証エラー（422）を生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Status:  422,
		Message: message,
	}
}

// NewUnauthorizedError は認証エラー（401）を生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Status:  401,
		Message: "authentication required",
	}
}

// NewForbiddenError は認可エラー（403）を生成する。
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Status:  403,
		Message: message,
	}
}

// NewNotFoundError は対象リソース不在エラー（404）を生成する。
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewConflictError は重複状態エラー（409）を生成する。
// 重複した参加リクエストやemail/username重複に使用する。
func NewConflictError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeConflict,
		Status:  409,
		Message: message,
	}
}

// NewTokenExpiredError は期限切れリセットトークンのエラー（410）を生成する。
// NotFoundとは区別されるエラー種別。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenExpired,
		Status:  410,
		Message: "token has expired",
	}
}

// NewBadRequestError は意味的に不正な操作のエラー（400）を生成する。
// 認証情報の不一致やマスターの削除要求に使用する。
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Status:  400,
		Message: message,
	}
}

// NewInvalidCredentialsError は認証情報不一致のエラー（400）を生成する。
// emailの不存在とパスワード不一致を区別せず、同一のエラーを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Status:  400,
		Message: "invalid credentials",
	}
}
