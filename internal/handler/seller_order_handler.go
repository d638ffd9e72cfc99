package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 出品者の受注管理 /seller/orders。
type SellerOrderHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewSellerOrderHandler(uc *usecase.OrderUsecase) *SellerOrderHandler {
	return &SellerOrderHandler{uc: uc}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *SellerOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/seller/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.SellerRoleGuard())

	g.GET("", h.list)
	g.PATCH("/:id/status", h.updateStatus)
}

func (h *SellerOrderHandler) list(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, limit, err := parsePageLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out, err := h.uc.ListSellerOrders(c.Request().Context(), sellerID, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *SellerOrderHandler) updateStatus(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	role, ok := getRoleFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateStatus(c.Request().Context(), sellerID, role, orderID, usecase.UpdateOrderStatusInput{
		Status: req.Status,
	}); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
