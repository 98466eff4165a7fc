package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Message is the error returned for writes blocked in demo mode.
const Message = "This action is disabled in demo mode"

// Middleware blocks write operations in demo mode.
// Safe methods are always allowed, and a few paths stay writable so visitors
// can still sign in and preview snippets.
type Middleware struct {
	enabled bool
	allowed []string
}

// NewMiddleware creates a demo mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{
		enabled: enabled,
		allowed: []string{
			"/api/auth/",
			"/api/run",
		},
	}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that rejects writes with 403.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled || isSafeMethod(c.Request.Method) || m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.Header("X-Demo-Mode", "true")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": Message,
			"code":  "DEMO_MODE",
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (m *Middleware) isAllowedPath(path string) bool {
	for _, allowed := range m.allowed {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}
