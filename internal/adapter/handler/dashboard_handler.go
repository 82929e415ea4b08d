package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Build(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, "build dashboard", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Dashboard", d)
}
