package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/mestakip/internal/core/service"
)

func (h *HTTPHandler) registerDeliveryRoutes(router gin.IRouter) {
	deliveries := router.Group("/deliveries")
	{
		deliveries.POST("", h.CreateDelivery)
		deliveries.GET("", h.ListDeliveries)
		deliveries.GET("/:id", h.GetDelivery)
		deliveries.PUT("/:id", h.UpdateDelivery)
		deliveries.DELETE("/:id", h.DeleteDelivery)
	}
}

func (h *HTTPHandler) CreateDelivery(c *gin.Context) {
	var in service.DeliveryInput
	if !h.bind(c, &in) {
		return
	}
	d, err := h.deliveries.CreateDelivery(c.Request.Context(), actor(c), in)
	if err != nil {
		h.fail(c, "create delivery", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Delivery created successfully", d)
}

// ListDeliveries searches customer name and location with q.
func (h *HTTPHandler) ListDeliveries(c *gin.Context) {
	ds, err := h.deliveries.ListDeliveries(c.Request.Context(), actor(c), c.Query("q"))
	if err != nil {
		h.fail(c, "list deliveries", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Deliveries retrieved successfully", ds)
}

func (h *HTTPHandler) GetDelivery(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	d, err := h.deliveries.GetDelivery(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, "get delivery", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Delivery retrieved successfully", d)
}

func (h *HTTPHandler) UpdateDelivery(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.DeliveryInput
	if !h.bind(c, &in) {
		return
	}
	d, err := h.deliveries.UpdateDelivery(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.fail(c, "update delivery", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Delivery updated successfully", d)
}

func (h *HTTPHandler) DeleteDelivery(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.deliveries.DeleteDelivery(c.Request.Context(), actor(c), id); err != nil {
		h.fail(c, "delete delivery", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Delivery deleted successfully", nil)
}
