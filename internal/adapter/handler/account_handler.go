package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, "log in", err)
		return
	}
	token, expires, err := h.tokens.Issue(*user)
	if err != nil {
		h.fail(c, "issue token", err)
		return
	}

	h.log.Infof("User %s logged in", user.Username)
	SuccessResponse(c, http.StatusOK, "Logged in", LoginResponse{Token: token, ExpiresAt: expires, User: *user})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Current user", actor(c))
}

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, "list users", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Users retrieved successfully", users)
}

func (h *HTTPHandler) CreateUser(c *gin.Context) {
	if !actor(c).IsAdmin() {
		ErrorResponse(c, http.StatusForbidden, "administrator role required")
		return
	}
	var in service.NewUser
	if !h.bind(c, &in) {
		return
	}

	user, err := h.accounts.CreateUser(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create user", err)
		return
	}
	h.log.Infof("User created: ID %d, Username %s", user.ID, user.Username)
	SuccessResponse(c, http.StatusCreated, "User created successfully", user)
}
