package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/mestakip/internal/core/service"
)

func (h *HTTPHandler) registerPurchaseRoutes(router gin.IRouter) {
	purchases := router.Group("/purchases")
	{
		purchases.POST("", h.CreatePurchase)
		purchases.GET("", h.ListPurchases)
		purchases.GET("/:id", h.GetPurchase)
		purchases.PUT("/:id", h.UpdatePurchase)
		purchases.DELETE("/:id", h.RemovePurchase)
	}
}

func (h *HTTPHandler) CreatePurchase(c *gin.Context) {
	var in service.PurchaseInput
	if !h.bind(c, &in) {
		return
	}
	p, err := h.purchases.CreatePurchase(c.Request.Context(), actor(c), in)
	if err != nil {
		h.fail(c, "create purchase", err)
		return
	}
	h.log.Infof("Purchase created successfully: ID %d, quantity %d", p.ID, p.Quantity)
	SuccessResponse(c, http.StatusCreated, "Purchase created successfully", p)
}

func (h *HTTPHandler) ListPurchases(c *gin.Context) {
	ps, err := h.purchases.ListPurchases(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, "list purchases", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Purchases retrieved successfully", ps)
}

func (h *HTTPHandler) GetPurchase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.purchases.GetPurchase(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, "get purchase", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Purchase retrieved successfully", p)
}

func (h *HTTPHandler) UpdatePurchase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.PurchaseInput
	if !h.bind(c, &in) {
		return
	}
	p, err := h.purchases.UpdatePurchase(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.fail(c, "update purchase", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Purchase updated successfully", p)
}

func (h *HTTPHandler) RemovePurchase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.purchases.RemovePurchase(c.Request.Context(), actor(c), id); err != nil {
		h.fail(c, "remove purchase", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Purchase removed successfully", nil)
}
