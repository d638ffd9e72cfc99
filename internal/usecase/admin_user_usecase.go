package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 管理者のユーザー・出品者操作。
type AdminUserUsecase struct {
	userRepo          repo.UserRepository
	sellerProfileRepo repo.SellerProfileRepository
	auditRepo         repo.AuditLogRepository
}

// DI
func NewAdminUserUsecase(
	userRepo repo.UserRepository,
	sellerProfileRepo repo.SellerProfileRepository,
	auditRepo repo.AuditLogRepository,
) *AdminUserUsecase {
	return &AdminUserUsecase{
		userRepo:          userRepo,
		sellerProfileRepo: sellerProfileRepo,
		auditRepo:         auditRepo,
	}
}

type UserListOutput struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// ユーザー一覧
func (u *AdminUserUsecase) ListUsers(ctx context.Context, page int, limit int) (UserListOutput, error) {
	if page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.userRepo.List(ctx, page, limit)
	if err != nil {
		return UserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return UserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// アカウントの有効/無効を切り替える
func (u *AdminUserUsecase) SetUserActive(ctx context.Context, actorAdminUserID int64, userID int64, active bool) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if userID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	//自分自身を無効化すると詰むので禁止
	if userID == actorAdminUserID && !active {
		return NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if user.IsActive == active {
		return nil
	}

	user.IsActive = active
	if err := u.userRepo.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 出品者プロフィールを確認済みにする。監査ログも残す。
func (u *AdminUserUsecase) VerifySeller(ctx context.Context, actorAdminUserID int64, sellerUserID int64) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if sellerUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	profile, err := u.sellerProfileRepo.FindByUserID(ctx, sellerUserID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if profile.IsVerified {
		return nil
	}

	if err := u.sellerProfileRepo.SetVerified(ctx, profile.ID, true); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//★監査ログ（VERIFY_SELLER）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionVerifySeller,
		ResourceType: model.AuditResourceSeller,
		ResourceID:   profile.ID,
		BeforeJSON:   `{"is_verified":false}`,
		AfterJSON:    `{"is_verified":true}`,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 監査ログの一覧（管理画面用）
func (u *AdminUserUsecase) ListAuditLogs(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	if filter.Limit < 1 || filter.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if filter.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
