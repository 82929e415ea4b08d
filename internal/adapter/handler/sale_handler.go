package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/mestakip/internal/core/service"
)

func (h *HTTPHandler) registerSaleRoutes(router gin.IRouter) {
	sales := router.Group("/sales")
	{
		sales.POST("", h.Checkout)
		sales.GET("", h.ListSales)
		sales.GET("/:id", h.GetSale)
		sales.DELETE("/:id", h.RemoveSale)
	}
}

// Checkout reserves stock and queues the sale. The sale is persisted by the
// worker pool, so the response is 202 with the pending sale.
func (h *HTTPHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if !h.bind(c, &req) {
		return
	}

	sale, err := h.sales.Checkout(c.Request.Context(), actor(c), req)
	if err != nil {
		h.fail(c, "check out", err)
		return
	}
	SuccessResponse(c, http.StatusAccepted, "sale accepted", sale)
}

func (h *HTTPHandler) ListSales(c *gin.Context) {
	sales, err := h.sales.ListSales(c.Request.Context(), actor(c), intQuery(c, "limit", 0), intQuery(c, "offset", 0))
	if err != nil {
		h.fail(c, "list sales", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Sales retrieved successfully", sales)
}

func (h *HTTPHandler) GetSale(c *gin.Context) {
	sale, err := h.sales.GetSale(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		h.fail(c, "get sale", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Sale retrieved successfully", sale)
}

func (h *HTTPHandler) RemoveSale(c *gin.Context) {
	id := c.Param("id")
	if err := h.sales.RemoveSale(c.Request.Context(), actor(c), id); err != nil {
		h.fail(c, "remove sale", err)
		return
	}
	h.log.Infof("Sale removed: %s", id)
	SuccessResponse(c, http.StatusOK, "Sale removed successfully", nil)
}
