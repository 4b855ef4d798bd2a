package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/partyup/internal/model"
)

// PostgresGroupRequestRepo はPostgreSQLを使用した参加リクエストリポジトリ。
type PostgresGroupRequestRepo struct {
	db *sql.DB
}

// NewPostgresGroupRequestRepo はPostgresGroupRequestRepoを生成する。
func NewPostgresGroupRequestRepo(db *sql.DB) *PostgresGroupRequestRepo {
	return &PostgresGroupRequestRepo{db: db}
}

// Create はPENDINGの参加リクエストを作成する。
// 同一(user, group)ペアのPENDING重複は部分ユニーク制約が弾くため、
// 読み取り後の追い越しがあってもErrDuplicateになる。
func (r *PostgresGroupRequestRepo) Create(ctx context.Context, req *model.GroupRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_requests (id, user_id, group_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.UserID, req.GroupID, req.Status, req.CreatedAt, req.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert group request: %w", err)
	}
	return nil
}

// FindByID は指定IDの参加リクエストを取得する。見つからない場合はnilを返す。
func (r *PostgresGroupRequestRepo) FindByID(ctx context.Context, id string) (*model.GroupRequest, error) {
	req := &model.GroupRequest{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, group_id, status, created_at, updated_at
		 FROM group_requests WHERE id = $1`,
		id,
	).Scan(&req.ID, &req.UserID, &req.GroupID, &req.Status, &req.CreatedAt, &req.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group request: %w", err)
	}

	return req, nil
}

// ListPendingByGroupAndMaster はグループのPENDINGリクエストを返す。
// 呼び出し側の自己申告ではなくgroupsテーブルの実際のmaster_idで絞り込む。
func (r *PostgresGroupRequestRepo) ListPendingByGroupAndMaster(ctx context.Context, groupID, masterID string) ([]model.GroupRequestWithUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT gr.id, gr.user_id, gr.group_id, gr.status, gr.created_at, gr.updated_at,
		        u.id, u.username, u.email, u.avatar,
		        g.master_id
		 FROM group_requests gr
		 JOIN users u ON u.id = gr.user_id
		 JOIN groups g ON g.id = gr.group_id
		 WHERE gr.group_id = $1 AND g.master_id = $2 AND gr.status = $3
		 ORDER BY gr.created_at, gr.id`,
		groupID, masterID, model.RequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group requests: %w", err)
	}
	defer rows.Close()

	results := []model.GroupRequestWithUser{}
	for rows.Next() {
		rec := model.GroupRequestWithUser{}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.GroupID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.User.ID, &rec.User.Username, &rec.User.Email, &rec.User.Avatar,
			&rec.GroupMasterID); err != nil {
			return nil, fmt.Errorf("failed to scan group request: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group requests: %w", err)
	}

	return results, nil
}

// Accept はリクエストをACCEPTEDへ遷移させ、申請者をロスターに追加する。
// ステータス更新とロスター追加は同一トランザクションでコミットされるため、
// ACCEPTED行だけが残ってロスターに反映されない状態は生じない。
func (r *PostgresGroupRequestRepo) Accept(ctx context.Context, requestID string) (*model.GroupRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req := &model.GroupRequest{}
	err = tx.QueryRowContext(ctx,
		`UPDATE group_requests SET status = $2, updated_at = now()
		 WHERE id = $1 AND status = $3
		 RETURNING id, user_id, group_id, status, created_at, updated_at`,
		requestID, model.RequestStatusAccepted, model.RequestStatusPending,
	).Scan(&req.ID, &req.UserID, &req.GroupID, &req.Status, &req.CreatedAt, &req.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept group request: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups_players (group_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		req.GroupID, req.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add requester to roster: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return req, nil
}

// Delete はリクエスト行を削除する。
func (r *PostgresGroupRequestRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM group_requests WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete group request: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ GroupRequestRepository = (*PostgresGroupRequestRepo)(nil)
