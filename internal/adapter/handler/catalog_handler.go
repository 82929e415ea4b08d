package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
)

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *HTTPHandler) registerCatalogRoutes(router gin.IRouter) {
	categories := router.Group("/categories")
	{
		categories.POST("", h.CreateCategory)
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
	items := router.Group("/items")
	{
		items.POST("", h.CreateItem)
		items.GET("", h.ListItems)
		items.GET("/search", h.SearchItems)
		items.GET("/:slug", h.GetItem)
		items.PUT("/:slug", h.UpdateItem)
		items.DELETE("/:slug", h.DeleteItem)
	}
}

func (h *HTTPHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !h.bind(c, &req) {
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), actor(c), req.Name)
	if err != nil {
		h.fail(c, "create category", err)
		return
	}
	h.log.Infof("Category created successfully: ID %d, Slug %s", cat.ID, cat.Slug)
	SuccessResponse(c, http.StatusCreated, "Category created successfully", cat)
}

func (h *HTTPHandler) ListCategories(c *gin.Context) {
	cats, err := h.catalog.ListCategories(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, "list categories", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", cats)
}

func (h *HTTPHandler) GetCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cat, err := h.catalog.GetCategory(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, "get category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", cat)
}

func (h *HTTPHandler) UpdateCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if !h.bind(c, &req) {
		return
	}
	cat, err := h.catalog.UpdateCategory(c.Request.Context(), actor(c), id, req.Name)
	if err != nil {
		h.fail(c, "update category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category updated successfully", cat)
}

func (h *HTTPHandler) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), actor(c), id); err != nil {
		h.fail(c, "delete category", err)
		return
	}
	h.log.Infof("Category deleted: ID %d", id)
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *HTTPHandler) CreateItem(c *gin.Context) {
	var in service.ItemInput
	if !h.bind(c, &in) {
		return
	}
	item, err := h.catalog.CreateItem(c.Request.Context(), actor(c), in)
	if err != nil {
		h.fail(c, "create item", err)
		return
	}
	h.log.Infof("Item created successfully: ID %d, Slug %s", item.ID, item.Slug)
	SuccessResponse(c, http.StatusCreated, "Item created successfully", item)
}

// ListItems accepts category_id, q, limit and offset.
func (h *HTTPHandler) ListItems(c *gin.Context) {
	filter := domain.ItemFilter{
		CategoryID: int64(intQuery(c, "category_id", 0)),
		Query:      c.Query("q"),
		Limit:      intQuery(c, "limit", 0),
		Offset:     intQuery(c, "offset", 0),
	}
	items, err := h.catalog.ListItems(c.Request.Context(), actor(c), filter)
	if err != nil {
		h.fail(c, "list items", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Items retrieved successfully", items)
}

func (h *HTTPHandler) SearchItems(c *gin.Context) {
	results, err := h.catalog.SearchItems(c.Request.Context(), actor(c), c.Query("term"))
	if err != nil {
		h.fail(c, "search items", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Items retrieved successfully", results)
}

func (h *HTTPHandler) GetItem(c *gin.Context) {
	item, err := h.catalog.GetItem(c.Request.Context(), actor(c), c.Param("slug"))
	if err != nil {
		h.fail(c, "get item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item retrieved successfully", item)
}

func (h *HTTPHandler) UpdateItem(c *gin.Context) {
	var in service.ItemInput
	if !h.bind(c, &in) {
		return
	}
	item, err := h.catalog.UpdateItem(c.Request.Context(), actor(c), c.Param("slug"), in)
	if err != nil {
		h.fail(c, "update item", err)
		return
	}
	h.log.Infof("Item updated successfully: ID %d, version %d", item.ID, item.Version)
	SuccessResponse(c, http.StatusOK, "Item updated successfully", item)
}

func (h *HTTPHandler) DeleteItem(c *gin.Context) {
	slug := c.Param("slug")
	if err := h.catalog.DeleteItem(c.Request.Context(), actor(c), slug); err != nil {
		h.fail(c, "delete item", err)
		return
	}
	h.log.Infof("Item deleted: %s", slug)
	SuccessResponse(c, http.StatusOK, "Item deleted successfully", nil)
}
