package model

import "time"

// Group は募集グループを表す。
// MasterIDは作成時に設定され、以後変更されない。
type Group struct {
	ID          string
	Name        string
	Description string
	Schedule    string
	Location    string
	Chronic     string
	MasterID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GroupWithRoster はグループにマスターとロスターの公開プロフィールを
// eager loadした形を表す。一覧・詳細レスポンスに使用する。
type GroupWithRoster struct {
	Group
	Master  PublicProfile
	Players []PublicProfile
}

// RequestStatus は参加リクエストの状態を表す。
// 拒否・取り下げは行の削除で表現するため、永続化される状態は2つのみ。
type RequestStatus string

const (
	// RequestStatusPending は未処理の参加リクエスト。
	RequestStatusPending RequestStatus = "PENDING"
	// RequestStatusAccepted は承諾済みの参加リクエスト。行は保持される。
	RequestStatusAccepted RequestStatus = "ACCEPTED"
)

// GroupRequest はユーザーからグループへの参加リクエストを表す。
// (UserID, GroupID) につきPENDINGは高々1件（部分ユニーク制約で保証）。
type GroupRequest struct {
	ID        string
	UserID    string
	GroupID   string
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GroupRequestWithUser は参加リクエストに申請者の公開プロフィールと
// グループのマスターIDを付加した形を表す。マスター向け一覧に使用する。
type GroupRequestWithUser struct {
	GroupRequest
	User          PublicProfile
	GroupMasterID string
}
