package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/partyup/internal/model"
)

// PostgresTokenRepo はPostgreSQLを使用したAPIトークンリポジトリ。
type PostgresTokenRepo struct {
	db *sql.DB
}

// NewPostgresTokenRepo はPostgresTokenRepoを生成する。
func NewPostgresTokenRepo(db *sql.DB) *PostgresTokenRepo {
	return &PostgresTokenRepo{db: db}
}

// Create はAPIトークンを作成する。
func (r *PostgresTokenRepo) Create(ctx context.Context, token *model.APIToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_tokens (id, user_id, token, created_at)
		 VALUES ($1, $2, $3, $4)`,
		token.ID, token.UserID, token.Token, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create api token: %w", err)
	}
	return nil
}

// FindByToken はトークン文字列でAPIトークンを検索する。見つからない場合はnilを返す。
func (r *PostgresTokenRepo) FindByToken(ctx context.Context, token string) (*model.APIToken, error) {
	t := &model.APIToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token, created_at FROM api_tokens WHERE token = $1`,
		token,
	).Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find api token: %w", err)
	}

	return t, nil
}

// DeleteByToken はトークン行を削除する。存在しないトークンでもエラーにしない。
func (r *PostgresTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM api_tokens WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TokenRepository = (*PostgresTokenRepo)(nil)
