// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/partyup/internal/model"
)

// ErrNotFound は対象行が存在しない（あるいは既に消費済みの）ことを示す。
// サービス層でmodel.APIErrorへ変換する。
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate はストアのユニーク制約違反を示す。
// 同時実行下の重複PENDINGリクエストやemail/username重複の最終防衛線。
var ErrDuplicate = errors.New("repository: duplicate")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。email/username重複時はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はemailでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsername はusernameでユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Update はユーザーのemail/password/avatarを更新する。
	Update(ctx context.Context, user *model.User) error
}

// TokenRepository はAPIトークン（セッション）の永続化インターフェース。
type TokenRepository interface {
	// Create はAPIトークンを作成する。
	Create(ctx context.Context, token *model.APIToken) error

	// FindByToken はトークン文字列でAPIトークンを検索する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.APIToken, error)

	// DeleteByToken はトークン行を削除する。存在しないトークンでもエラーにしない。
	DeleteByToken(ctx context.Context, token string) error
}

// ResetTokenRepository はパスワードリセットトークンの永続化インターフェース。
type ResetTokenRepository interface {
	// Upsert はユーザーのリセットトークンを作成または置き換える。
	// ユーザーごとに1行のみ保持する。
	Upsert(ctx context.Context, token *model.ResetToken) error

	// FindByToken はトークン文字列でリセットトークンを検索する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.ResetToken, error)

	// Consume はパスワード更新とトークン削除を同一トランザクションで行う。
	// トークン行が既に存在しない場合はErrNotFoundを返し、パスワードは変更しない。
	Consume(ctx context.Context, token, userID, passwordDigest string) error
}

// GroupFilter はグループ一覧の絞り込み条件。ゼロ値のフィールドは無視される。
type GroupFilter struct {
	UserID string // ロスターに含まれるユーザーで絞り込む
	Text   string // name または description の部分一致で絞り込む
}

// GroupRepository はグループと参加者ロスターの永続化インターフェース。
type GroupRepository interface {
	// Create はグループとマスターのロスター行を同一トランザクションで作成する。
	Create(ctx context.Context, group *model.Group) error

	// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Group, error)

	// FindByIDWithRoster はグループをマスター・ロスターの公開プロフィール付きで取得する。
	FindByIDWithRoster(ctx context.Context, id string) (*model.GroupWithRoster, error)

	// Update はグループのテキストフィールドを更新する。masterは変更しない。
	Update(ctx context.Context, group *model.Group) error

	// Delete はグループを削除する。ロスター行と参加リクエストはCASCADE削除される。
	Delete(ctx context.Context, id string) error

	// List は条件に合致するグループをロスター付きで取得し、総件数も返す。
	List(ctx context.Context, filter GroupFilter, page, perPage int) ([]model.GroupWithRoster, int, error)

	// IsPlayer は指定ユーザーがロスターに含まれるかを返す。
	IsPlayer(ctx context.Context, groupID, userID string) (bool, error)

	// AddPlayer はロスターに参加者を追加する。既に存在する場合は何もしない。
	AddPlayer(ctx context.Context, groupID, userID string) error

	// RemovePlayer はロスターから参加者を削除する。存在しない場合は何もしない。
	RemovePlayer(ctx context.Context, groupID, userID string) error
}

// GroupRequestRepository は参加リクエストの永続化インターフェース。
type GroupRequestRepository interface {
	// Create はPENDINGの参加リクエストを作成する。
	// 同一(user, group)ペアのPENDINGが既に存在する場合はErrDuplicateを返す
	// （部分ユニーク制約により同時実行下でも保証される）。
	Create(ctx context.Context, req *model.GroupRequest) error

	// FindByID は指定IDの参加リクエストを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.GroupRequest, error)

	// ListPendingByGroupAndMaster はグループのPENDINGリクエストを、
	// グループの実際のマスターがmasterIDと一致する場合に限り返す。
	// 申請者の公開プロフィールを付加する。
	ListPendingByGroupAndMaster(ctx context.Context, groupID, masterID string) ([]model.GroupRequestWithUser, error)

	// Accept はリクエストをACCEPTEDへ遷移させ、申請者をロスターに追加する。
	// 両者は同一トランザクションでコミットされる。
	// PENDINGのリクエストが存在しない場合はErrNotFoundを返す。
	Accept(ctx context.Context, requestID string) (*model.GroupRequest, error)

	// Delete はリクエスト行を削除する（拒否・取り下げ）。
	Delete(ctx context.Context, id string) error
}
