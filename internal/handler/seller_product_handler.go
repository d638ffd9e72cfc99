package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 出品者の商品管理 /seller/products。
type SellerProductHandler struct {
	uc *usecase.SellerProductUsecase
}

// DI
func NewSellerProductHandler(uc *usecase.SellerProductUsecase) *SellerProductHandler {
	return &SellerProductHandler{uc: uc}
}

func (h *SellerProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/seller/products")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.SellerRoleGuard())

	g.POST("", h.create)
	g.GET("", h.listMine)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *SellerProductHandler) create(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.SellerProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.Create(c.Request().Context(), sellerID, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *SellerProductHandler) listMine(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items, err := h.uc.ListMine(c.Request().Context(), sellerID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, items)
}

func (h *SellerProductHandler) update(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.SellerProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.Update(c.Request().Context(), sellerID, productID, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *SellerProductHandler) delete(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), sellerID, productID); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
