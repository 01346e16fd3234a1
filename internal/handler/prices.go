package handler

import (
	"net/http"
	"strconv"

	"pricedesk/internal/apierror"
	"pricedesk/internal/dto"
	"pricedesk/internal/middleware"
	"pricedesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PricesHandler serves the price-management listing, per-part price patches,
// server-side bulk revisions and the revision history.
type PricesHandler struct{ svc service.PriceService }

func NewPricesHandler(svc service.PriceService) *PricesHandler {
	return &PricesHandler{svc: svc}
}

// List godoc
// @Summary      Priceable parts with on-hand quantity
// @Tags         prices
// @Security     BearerAuth
// @Param        search    query    string  false "Part number / description substring"
// @Param        category  query    string  false "Category name, or all"
// @Param        page      query    int     false "Page (default 1)"
// @Param        limit     query    int     false "Rows per page (default 1000, max 5000)"
// @Success      200 {object} dto.PriceItemListResponse
// @Router       /v1/parts/price-management [get]
func (h *PricesHandler) List(c *gin.Context) {
	var filter dto.PriceItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid pagination: "+err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to fetch parts")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePrices godoc
// @Summary      Patch the prices of one part
// @Description  Only the fields present in the body are written. One history row per changed field.
// @Tags         prices
// @Security     BearerAuth
// @Param        id    path     string                   true "Part UUID"
// @Param        body  body     dto.UpdatePricesRequest  true "Patch"
// @Success      200   {object} dto.UpdatePricesResponse
// @Failure      400   {object} apierror.APIError
// @Failure      404   {object} apierror.APIError
// @Router       /v1/parts/{id}/prices [put]
func (h *PricesHandler) UpdatePrices(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid part ID"))
		return
	}
	var req dto.UpdatePricesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdatePrices(c.Request.Context(), id, req, middleware.Actor(c))
	if err != nil {
		respondError(c, err, "Failed to update part prices")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BulkUpdatePrices godoc
// @Summary      Apply a percentage or fixed revision to many parts
// @Tags         prices
// @Security     BearerAuth
// @Param        body  body     dto.BulkUpdatePricesRequest  true "Revision"
// @Success      200   {object} dto.BulkUpdatePricesResponse
// @Failure      404   {object} apierror.APIError
// @Failure      422   {object} apierror.ValidationError
// @Router       /v1/parts/bulk-update-prices [post]
func (h *PricesHandler) BulkUpdatePrices(c *gin.Context) {
	var req dto.BulkUpdatePricesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.BulkUpdatePrices(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		respondError(c, err, "Failed to bulk update prices")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary      Price revision history, newest first
// @Tags         prices
// @Security     BearerAuth
// @Param        page  query    int     false "Page (default 1)"
// @Param        limit query    int     false "Rows per page (default 50, max 500)"
// @Success      200   {object} dto.PriceHistoryListResponse
// @Router       /v1/parts/price-history [get]
func (h *PricesHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.ListHistory(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err, "Failed to fetch price history")
		return
	}
	c.JSON(http.StatusOK, resp)
}
