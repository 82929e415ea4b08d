package handler

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rl1809/mestakip/internal/core/domain"
)

const actorKey = "actor"

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
		})
		if u, ok := c.Get(actorKey); ok {
			entry = entry.WithField("user", u.(domain.User).Username)
		}

		switch {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case statusCode >= 500:
			entry.Error("Request completed with server error")
		case statusCode >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// authenticate resolves the bearer token to a user. The user is reloaded on
// every request so deactivation takes effect before the token expires.
func (h *HTTPHandler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			ErrorResponse(c, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		userID, err := h.tokens.Verify(parts[1])
		if err != nil {
			h.log.WithError(err).Debug("Token validation failed")
			ErrorResponse(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		user, err := h.accounts.GetUser(c.Request.Context(), userID)
		if err != nil || !user.IsActive || user.Status == domain.ProfileInactive {
			ErrorResponse(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(actorKey, *user)
		c.Next()
	}
}

func actor(c *gin.Context) domain.User {
	u, _ := c.Get(actorKey)
	user, _ := u.(domain.User)
	return user
}

// limiterSet hands out one token bucket per client key.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLimiterSet(r rate.Limit, burst int) *limiterSet {
	return &limiterSet{limiters: make(map[string]*rate.Limiter), rate: r, burst: burst}
}

func (s *limiterSet) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[key]
	if !ok {
		if len(s.limiters) > 10000 {
			s.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(s.rate, s.burst)
		s.limiters[key] = limiter
	}
	return limiter.Allow()
}

func (h *HTTPHandler) rateLimit(set *limiterSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !set.allow(c.ClientIP()) {
			h.log.WithField("remote_ip", c.ClientIP()).Warn("Login rate limit exceeded")
			ErrorResponse(c, http.StatusTooManyRequests, "too many login attempts, try again later")
			return
		}
		c.Next()
	}
}
