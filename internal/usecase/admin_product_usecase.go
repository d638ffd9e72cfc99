package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/tealeg/xlsx"
)

// 管理者の商品操作（承認・在庫設定・一覧・エクスポート）。
type AdminProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
	cache         ProductCache
}

// DI
func NewAdminProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
	cache ProductCache,
) *AdminProductUsecase {
	return &AdminProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		cache:         cache,
	}
}

// 全件一覧（未承認含む）
func (u *AdminProductUsecase) List(ctx context.Context, page int, limit int) (ProductListOutput, error) {
	if page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.productRepo.ListAll(ctx, page, limit)
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 商品を承認する。監査ログも残す。
func (u *AdminProductUsecase) Approve(ctx context.Context, actorAdminUserID int64, productID int64) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//すでに承認済みなら何もしない（200）
	if p.IsApproved {
		return nil
	}

	if err := u.productRepo.SetApproved(ctx, productID, true); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cache.Delete(ctx, productID); err != nil {
		log.Printf("product cache delete failed: %v", err)
	}

	//★監査ログ（APPROVE_PRODUCT）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionApproveProduct,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   `{"is_approved":false}`,
		AfterJSON:    `{"is_approved":true}`,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

type AdminSetStockInput struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// 在庫を「現在値」に設定する。
func (u *AdminProductUsecase) SetStock(ctx context.Context, actorAdminUserID int64, productID int64, in AdminSetStockInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "reason is required")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.inventoryRepo.SetStock(ctx, productID, in.Stock); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cache.Delete(ctx, productID); err != nil {
		log.Printf("product cache delete failed: %v", err)
	}

	//★監査ログ（UPDATE_STOCK）
	beforeJSON := fmt.Sprintf(`{"stock":%d}`, p.Stock)
	afterJSON := fmt.Sprintf(`{"stock":%d,"reason":%q}`, in.Stock, in.Reason)
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// 全商品をxlsxに書き出す（管理画面のダウンロード用）。
func (u *AdminProductUsecase) Export(ctx context.Context) ([]byte, error) {
	const exportLimit = 10000

	items, _, err := u.productRepo.ListAll(ctx, 1, exportLimit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "export failed")
	}

	// Header row
	headers := []string{
		"ID", "SellerID", "Name", "Category", "Price", "Stock",
		"IsApproved", "CreatedAt", "UpdatedAt",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	// Data rows
	for _, p := range items {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.SellerID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(string(p.Category))
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.IsApproved)
		row.AddCell().SetValue(p.CreatedAt.Format(time.RFC3339))
		row.AddCell().SetValue(p.UpdatedAt.Format(time.RFC3339))
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "export failed")
	}

	return buf.Bytes(), nil
}
