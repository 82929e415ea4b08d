package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/mestakip/internal/core/service"
)

func (h *HTTPHandler) registerPartyRoutes(router gin.IRouter) {
	vendors := router.Group("/vendors")
	{
		vendors.POST("", h.CreateVendor)
		vendors.GET("", h.ListVendors)
		vendors.GET("/:id", h.GetVendor)
		vendors.PUT("/:id", h.UpdateVendor)
		vendors.DELETE("/:id", h.RemoveVendor)
	}
	customers := router.Group("/customers")
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.RemoveCustomer)
	}
}

func (h *HTTPHandler) CreateVendor(c *gin.Context) {
	var in service.VendorInput
	if !h.bind(c, &in) {
		return
	}
	v, err := h.parties.CreateVendor(c.Request.Context(), actor(c), in)
	if err != nil {
		h.fail(c, "create vendor", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Vendor created successfully", v)
}

func (h *HTTPHandler) ListVendors(c *gin.Context) {
	vs, err := h.parties.ListVendors(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, "list vendors", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Vendors retrieved successfully", vs)
}

func (h *HTTPHandler) GetVendor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	v, err := h.parties.GetVendor(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, "get vendor", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Vendor retrieved successfully", v)
}

func (h *HTTPHandler) UpdateVendor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.VendorInput
	if !h.bind(c, &in) {
		return
	}
	v, err := h.parties.UpdateVendor(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.fail(c, "update vendor", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Vendor updated successfully", v)
}

func (h *HTTPHandler) RemoveVendor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.parties.RemoveVendor(c.Request.Context(), actor(c), id); err != nil {
		h.fail(c, "remove vendor", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Vendor removed successfully", nil)
}

func (h *HTTPHandler) CreateCustomer(c *gin.Context) {
	var in service.CustomerInput
	if !h.bind(c, &in) {
		return
	}
	cust, err := h.parties.CreateCustomer(c.Request.Context(), actor(c), in)
	if err != nil {
		h.fail(c, "create customer", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Customer created successfully", cust)
}

func (h *HTTPHandler) ListCustomers(c *gin.Context) {
	cs, err := h.parties.ListCustomers(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, "list customers", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Customers retrieved successfully", cs)
}

func (h *HTTPHandler) GetCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cust, err := h.parties.GetCustomer(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, "get customer", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Customer retrieved successfully", cust)
}

func (h *HTTPHandler) UpdateCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.CustomerInput
	if !h.bind(c, &in) {
		return
	}
	cust, err := h.parties.UpdateCustomer(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.fail(c, "update customer", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Customer updated successfully", cust)
}

func (h *HTTPHandler) RemoveCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.parties.RemoveCustomer(c.Request.Context(), actor(c), id); err != nil {
		h.fail(c, "remove customer", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Customer removed successfully", nil)
}
