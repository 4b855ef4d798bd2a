package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/partyup/internal/model"
)

// PostgresGroupRepo はPostgreSQLを使用したグループリポジトリ。
type PostgresGroupRepo struct {
	db *sql.DB
}

// NewPostgresGroupRepo はPostgresGroupRepoを生成する。
func NewPostgresGroupRepo(db *sql.DB) *PostgresGroupRepo {
	return &PostgresGroupRepo{db: db}
}

// Create はグループとマスターのロスター行を同一トランザクションで作成する。
// マスターは常に最初の参加者としてロスターに含まれる。
func (r *PostgresGroupRepo) Create(ctx context.Context, group *model.Group) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, description, schedule, location, chronic, master_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		group.ID, group.Name, group.Description, group.Schedule, group.Location, group.Chronic,
		group.MasterID, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups_players (group_id, user_id) VALUES ($1, $2)`,
		group.ID, group.MasterID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert master into roster: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByID(ctx context.Context, id string) (*model.Group, error) {
	group := &model.Group{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, schedule, location, chronic, master_id, created_at, updated_at
		 FROM groups WHERE id = $1`,
		id,
	).Scan(&group.ID, &group.Name, &group.Description, &group.Schedule, &group.Location,
		&group.Chronic, &group.MasterID, &group.CreatedAt, &group.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	return group, nil
}

// FindByIDWithRoster はグループをマスター・ロスターの公開プロフィール付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByIDWithRoster(ctx context.Context, id string) (*model.GroupWithRoster, error) {
	g := &model.GroupWithRoster{}
	err := r.db.QueryRowContext(ctx,
		`SELECT g.id, g.name, g.description, g.schedule, g.location, g.chronic,
		        g.master_id, g.created_at, g.updated_at,
		        u.id, u.username, u.email, u.avatar
		 FROM groups g
		 JOIN users u ON u.id = g.master_id
		 WHERE g.id = $1`,
		id,
	).Scan(&g.ID, &g.Name, &g.Description, &g.Schedule, &g.Location, &g.Chronic,
		&g.MasterID, &g.CreatedAt, &g.UpdatedAt,
		&g.Master.ID, &g.Master.Username, &g.Master.Email, &g.Master.Avatar)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group with roster: %w", err)
	}

	rosters, err := r.loadRosters(ctx, []string{g.ID})
	if err != nil {
		return nil, err
	}
	g.Players = rosters[g.ID]

	return g, nil
}

// Update はグループのテキストフィールドを更新する。master_idは変更しない。
func (r *PostgresGroupRepo) Update(ctx context.Context, group *model.Group) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE groups
		 SET name = $2, description = $3, schedule = $4, location = $5, chronic = $6, updated_at = now()
		 WHERE id = $1`,
		group.ID, group.Name, group.Description, group.Schedule, group.Location, group.Chronic,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
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

// Delete はグループを削除する。ロスター行と参加リクエストはFKのCASCADEで削除される。
func (r *PostgresGroupRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM groups WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
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

// List は条件に合致するグループをロスター付きで取得し、総件数も返す。
// UserIDフィルタはロスター所属、Textフィルタはname/descriptionの部分一致。
// 両方指定された場合はANDで結合する。
func (r *PostgresGroupRepo) List(ctx context.Context, filter GroupFilter, page, perPage int) ([]model.GroupWithRoster, int, error) {
	where := ""
	args := []interface{}{}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM groups_players gp WHERE gp.group_id = g.id AND gp.user_id = $%d)`, len(args))
	}
	if filter.Text != "" {
		args = append(args, "%"+filter.Text+"%")
		where += fmt.Sprintf(` AND (g.name ILIKE $%d OR g.description ILIKE $%d)`, len(args), len(args))
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM groups g WHERE true`+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	offset := (page - 1) * perPage
	args = append(args, perPage, offset)
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT g.id, g.name, g.description, g.schedule, g.location, g.chronic,
		        g.master_id, g.created_at, g.updated_at,
		        u.id, u.username, u.email, u.avatar
		 FROM groups g
		 JOIN users u ON u.id = g.master_id
		 WHERE true%s
		 ORDER BY g.created_at, g.id
		 LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []model.GroupWithRoster{}
	ids := []string{}
	for rows.Next() {
		g := model.GroupWithRoster{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Schedule, &g.Location, &g.Chronic,
			&g.MasterID, &g.CreatedAt, &g.UpdatedAt,
			&g.Master.ID, &g.Master.Username, &g.Master.Email, &g.Master.Avatar); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate groups: %w", err)
	}

	rosters, err := r.loadRosters(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range groups {
		groups[i].Players = rosters[groups[i].ID]
	}

	return groups, total, nil
}

// loadRosters は複数グループのロスターを1クエリでまとめて取得する。
func (r *PostgresGroupRepo) loadRosters(ctx context.Context, groupIDs []string) (map[string][]model.PublicProfile, error) {
	rosters := make(map[string][]model.PublicProfile, len(groupIDs))
	if len(groupIDs) == 0 {
		return rosters, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT gp.group_id, u.id, u.username, u.email, u.avatar
		 FROM groups_players gp
		 JOIN users u ON u.id = gp.user_id
		 WHERE gp.group_id = ANY($1)
		 ORDER BY gp.created_at, u.id`,
		pq.Array(groupIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load rosters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID string
		p := model.PublicProfile{}
		if err := rows.Scan(&groupID, &p.ID, &p.Username, &p.Email, &p.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		rosters[groupID] = append(rosters[groupID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster rows: %w", err)
	}

	return rosters, nil
}

// IsPlayer は指定ユーザーがロスターに含まれるかを返す。
func (r *PostgresGroupRepo) IsPlayer(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM groups_players WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check roster membership: %w", err)
	}
	return exists, nil
}

// AddPlayer はロスターに参加者を追加する。既に存在する場合は何もしない。
func (r *PostgresGroupRepo) AddPlayer(ctx context.Context, groupID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups_players (group_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add player: %w", err)
	}
	return nil
}

// RemovePlayer はロスターから参加者を削除する。存在しない場合は何もしない。
func (r *PostgresGroupRepo) RemovePlayer(ctx context.Context, groupID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM groups_players WHERE group_id = $1 AND user_id = $2`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove player: %w", err)
	}
	return nil
}

// compile-time interface check
var _ GroupRepository = (*PostgresGroupRepo)(nil)
