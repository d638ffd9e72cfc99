package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者の商品管理 /admin/products。
type AdminProductHandler struct {
	uc *usecase.AdminProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.AdminProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

type AdminSetStockRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin/products")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("", h.list)
	admin.POST("/:id/approve", h.approve)
	admin.PATCH("/:id/stock", h.setStock)
	admin.GET("/export", h.export)
}

func (h *AdminProductHandler) list(c echo.Context) error {
	page, limit, err := parsePageLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out, err := h.uc.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) approve(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Approve(c.Request().Context(), adminID, productID); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminProductHandler) setStock(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AdminSetStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetStock(c.Request().Context(), adminID, productID, usecase.AdminSetStockInput{
		Stock:  req.Stock,
		Reason: req.Reason,
	}); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// xlsxをダウンロードさせる
func (h *AdminProductHandler) export(c echo.Context) error {
	data, err := h.uc.Export(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	filename := fmt.Sprintf("products_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
