package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/partyup/internal/model"
)

// PostgresResetTokenRepo はPostgreSQLを使用したリセットトークンリポジトリ。
type PostgresResetTokenRepo struct {
	db *sql.DB
}

// NewPostgresResetTokenRepo はPostgresResetTokenRepoを生成する。
func NewPostgresResetTokenRepo(db *sql.DB) *PostgresResetTokenRepo {
	return &PostgresResetTokenRepo{db: db}
}

// Upsert はユーザーのリセットトークンを作成または置き換える。
// user_idが主キーのため、再発行は既存行の上書きになる。
func (r *PostgresResetTokenRepo) Upsert(ctx context.Context, token *model.ResetToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reset_tokens (user_id, token, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET token = $2, created_at = $3`,
		token.UserID, token.Token, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert reset token: %w", err)
	}
	return nil
}

// FindByToken はトークン文字列でリセットトークンを検索する。見つからない場合はnilを返す。
func (r *PostgresResetTokenRepo) FindByToken(ctx context.Context, token string) (*model.ResetToken, error) {
	t := &model.ResetToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, token, created_at FROM reset_tokens WHERE token = $1`,
		token,
	).Scan(&t.UserID, &t.Token, &t.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}

	return t, nil
}

// Consume はパスワード更新とトークン削除を同一トランザクションで行う。
// 途中で失敗した場合は両方ロールバックされ、パスワード変更済みで
// トークンが残る・トークン消費済みでパスワード未変更のどちらの状態も残らない。
func (r *PostgresResetTokenRepo) Consume(ctx context.Context, token, userID, passwordDigest string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// トークン行を先に削除し、既に消費済みならパスワードに触れない
	result, err := tx.ExecContext(ctx,
		`DELETE FROM reset_tokens WHERE token = $1 AND user_id = $2`,
		token, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET password = $2, updated_at = now() WHERE id = $1`,
		userID, passwordDigest,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ ResetTokenRepository = (*PostgresResetTokenRepo)(nil)
