// Package group はグループ登録・更新・検索とロスター管理のドメインロジックを提供する。
package group

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/partyup/internal/model"
	"github.com/hitoshi/partyup/internal/repository"
	"github.com/hitoshi/partyup/internal/security"
)

const (
	defaultPerPage = 10
	maxPerPage     = 50
)

// Fields はグループのテキストフィールド一式。作成と更新で共用する。
type Fields struct {
	Name        string
	Description string
	Schedule    string
	Location    string
	Chronic     string
}

// ListResult はページネーション付きのグループ一覧。
type ListResult struct {
	Data     []model.GroupWithRoster
	Total    int
	Page     int
	PerPage  int
	LastPage int
}

// Service はグループ管理のサービス層。
type Service struct {
	groupRepo repository.GroupRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceを生成する。
func NewService(groupRepo repository.GroupRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		groupRepo: groupRepo,
		sanitizer: sanitizer,
	}
}

// validateFields は全テキストフィールドが空でないことを検証する。
func validateFields(f Fields) error {
	required := map[string]string{
		"name":        f.Name,
		"description": f.Description,
		"schedule":    f.Schedule,
		"location":    f.Location,
		"chronic":     f.Chronic,
	}
	for field, value := range required {
		if value == "" {
			return model.NewValidationError(field + " is required")
		}
	}
	return nil
}

// sanitizeFields は自由記述フィールドをサニタイズして返す。
func (s *Service) sanitizeFields(f Fields) Fields {
	return Fields{
		Name:        s.sanitizer.Sanitize(f.Name),
		Description: s.sanitizer.Sanitize(f.Description),
		Schedule:    s.sanitizer.Sanitize(f.Schedule),
		Location:    s.sanitizer.Sanitize(f.Location),
		Chronic:     s.sanitizer.Sanitize(f.Chronic),
	}
}

// Create は新しいグループを作成する。
// 作成者がマスターとなり、最初の参加者としてロスターに追加される。
func (s *Service) Create(ctx context.Context, masterID string, fields Fields) (*model.GroupWithRoster, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	fields = s.sanitizeFields(fields)
	if err := validateFields(fields); err != nil {
		// サニタイズでタグのみのフィールドが空になった場合もエラーにする
		return nil, err
	}

	now := time.Now()
	g := &model.Group{
		ID:          uuid.New().String(),
		Name:        fields.Name,
		Description: fields.Description,
		Schedule:    fields.Schedule,
		Location:    fields.Location,
		Chronic:     fields.Chronic,
		MasterID:    masterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.groupRepo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("group created",
		slog.String("group_id", g.ID),
		slog.String("master_id", masterID),
	)

	created, err := s.groupRepo.FindByIDWithRoster(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created group: %w", err)
	}
	if created == nil {
		return nil, model.NewNotFoundError("group")
	}

	return created, nil
}

// Update はグループのテキストフィールドを更新する。マスターは変更できない。
// 更新はマスターのみに許可する。
func (s *Service) Update(ctx context.Context, callerID, groupID string, fields Fields) (*model.GroupWithRoster, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	fields = s.sanitizeFields(fields)

	g, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	if g == nil {
		return nil, model.NewNotFoundError("group")
	}
	if g.MasterID != callerID {
		return nil, model.NewForbiddenError("only the master can update the group")
	}

	g.Name = fields.Name
	g.Description = fields.Description
	g.Schedule = fields.Schedule
	g.Location = fields.Location
	g.Chronic = fields.Chronic

	if err := s.groupRepo.Update(ctx, g); err != nil {
		if err == repository.ErrNotFound {
			return nil, model.NewNotFoundError("group")
		}
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	updated, err := s.groupRepo.FindByIDWithRoster(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated group: %w", err)
	}
	if updated == nil {
		return nil, model.NewNotFoundError("group")
	}

	return updated, nil
}

// Delete はグループを削除する。削除はマスターのみに許可する。
// ロスター行と参加リクエストはストアのCASCADEで一緒に削除される。
func (s *Service) Delete(ctx context.Context, callerID, groupID string) error {
	g, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to find group: %w", err)
	}
	if g == nil {
		return model.NewNotFoundError("group")
	}
	if g.MasterID != callerID {
		return model.NewForbiddenError("only the master can delete the group")
	}

	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		if err == repository.ErrNotFound {
			return model.NewNotFoundError("group")
		}
		return fmt.Errorf("failed to delete group: %w", err)
	}

	slog.Info("group deleted",
		slog.String("group_id", groupID),
		slog.String("master_id", callerID),
	)

	return nil
}

// List は条件に合致するグループをロスター・マスター情報付きで返す。
// userフィルタはロスター所属、textフィルタはname/descriptionの部分一致で、
// 両方指定された場合はANDで絞り込む。
func (s *Service) List(ctx context.Context, filter repository.GroupFilter, page, perPage int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	groups, total, err := s.groupRepo.List(ctx, filter, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	return &ListResult{
		Data:     groups,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: lastPage,
	}, nil
}

// RemovePlayer はロスターから参加者を外す。マスターのみが実行できる。
// マスター自身はグループを保持する限りロスターから外せない。
// ロスターにいないユーザーの指定はno-opとして成功を返す。
func (s *Service) RemovePlayer(ctx context.Context, callerID, groupID, userID string) error {
	g, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to find group: %w", err)
	}
	if g == nil {
		return model.NewNotFoundError("group")
	}
	if g.MasterID != callerID {
		return model.NewForbiddenError("only the master can remove players")
	}
	if g.MasterID == userID {
		return model.NewBadRequestError("the master cannot be removed from the group")
	}

	if err := s.groupRepo.RemovePlayer(ctx, groupID, userID); err != nil {
		return fmt.Errorf("failed to remove player: %w", err)
	}

	slog.Info("player removed",
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
	)

	return nil
}
