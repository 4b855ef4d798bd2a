// Package grouprequest はグループ参加リクエストの申請・承認・却下フローを提供する。
package grouprequest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/partyup/internal/model"
	"github.com/hitoshi/partyup/internal/repository"
)

// Service は参加リクエストのサービス層。
type Service struct {
	requestRepo repository.GroupRequestRepository
	groupRepo   repository.GroupRepository
}

// NewService はServiceを生成する。
func NewService(requestRepo repository.GroupRequestRepository, groupRepo repository.GroupRepository) *Service {
	return &Service{
		requestRepo: requestRepo,
		groupRepo:   groupRepo,
	}
}

// Create はグループへの参加リクエストを作成する。
// 既にロスターに所属するユーザー(マスターを含む)は申請できない。
// 同一ユーザー・同一グループのPENDINGリクエストは重複して作成できない。
func (s *Service) Create(ctx context.Context, userID, groupID string) (*model.GroupRequest, error) {
	g, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	if g == nil {
		return nil, model.NewNotFoundError("group")
	}

	isPlayer, err := s.groupRepo.IsPlayer(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check roster: %w", err)
	}
	if isPlayer {
		return nil, model.NewValidationError("user is already in the group")
	}

	now := time.Now()
	req := &model.GroupRequest{
		ID:        uuid.New().String(),
		UserID:    userID,
		GroupID:   groupID,
		Status:    model.RequestStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		if err == repository.ErrDuplicate {
			return nil, model.NewConflictError("a pending request already exists for this group")
		}
		return nil, fmt.Errorf("failed to create group request: %w", err)
	}

	slog.Info("group request created",
		slog.String("request_id", req.ID),
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
	)

	return req, nil
}

// ListPending はグループのPENDINGリクエストを申請者情報付きで返す。
// masterIDが指定グループのマスターと一致しない場合は空のリストになる。
func (s *Service) ListPending(ctx context.Context, groupID, masterID string) ([]model.GroupRequestWithUser, error) {
	if masterID == "" {
		return nil, model.NewValidationError("master is required")
	}

	requests, err := s.requestRepo.ListPendingByGroupAndMaster(ctx, groupID, masterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group requests: %w", err)
	}

	return requests, nil
}

// Accept は参加リクエストを承認し、申請者をロスターに追加する。
// 承認できるのはグループのマスターのみ。ステータス更新とロスター追加は
// ストア側で単一トランザクションとして実行される。
func (s *Service) Accept(ctx context.Context, callerID, groupID, requestID string) (*model.GroupRequest, error) {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group request: %w", err)
	}
	if req == nil || req.GroupID != groupID {
		return nil, model.NewNotFoundError("group request")
	}

	g, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	if g == nil {
		return nil, model.NewNotFoundError("group")
	}
	if g.MasterID != callerID {
		return nil, model.NewForbiddenError("only the master can accept requests")
	}

	accepted, err := s.requestRepo.Accept(ctx, requestID)
	if err != nil {
		if err == repository.ErrNotFound {
			// 並行して承認・却下済みだった場合
			return nil, model.NewNotFoundError("group request")
		}
		return nil, fmt.Errorf("failed to accept group request: %w", err)
	}

	slog.Info("group request accepted",
		slog.String("request_id", requestID),
		slog.String("group_id", groupID),
		slog.String("user_id", accepted.UserID),
	)

	return accepted, nil
}

// Reject は参加リクエストを却下する。却下は行の削除として表現され、
// 同じユーザーが後で再申請できる。グループのマスターか申請者本人のみが実行できる。
func (s *Service) Reject(ctx context.Context, callerID, groupID, requestID string) error {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to find group request: %w", err)
	}
	if req == nil || req.GroupID != groupID {
		return model.NewNotFoundError("group request")
	}

	g, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to find group: %w", err)
	}
	if g == nil {
		return model.NewNotFoundError("group")
	}
	if callerID != g.MasterID && callerID != req.UserID {
		return model.NewForbiddenError("only the master or the requester can reject the request")
	}

	if err := s.requestRepo.Delete(ctx, requestID); err != nil {
		if err == repository.ErrNotFound {
			return model.NewNotFoundError("group request")
		}
		return fmt.Errorf("failed to reject group request: %w", err)
	}

	slog.Info("group request rejected",
		slog.String("request_id", requestID),
		slog.String("group_id", groupID),
		slog.String("user_id", req.UserID),
	)

	return nil
}
