package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type" // "session", "bearer", or "none"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// Middleware resolves the caller identity for HTTP requests.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	tokens         *TokenService
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, tokens *TokenService) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		tokens:         tokens,
	}
}

// Handler identifies the caller from a bearer token or the session cookie and
// stores the result in the context. It never rejects a request; protected
// routes add RequireAuth.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyAuthType, AuthTypeNone)

		if userID := m.tryBearerAuth(c); userID != "" {
			m.setUserContext(c, userID, AuthTypeBearer)
		} else if userID := m.trySessionAuth(c); userID != "" {
			m.setUserContext(c, userID, AuthTypeSession)
		}

		c.Next()
	}
}

// tryBearerAuth returns the user ID of a valid bearer token whose user still exists.
func (m *Middleware) tryBearerAuth(c *gin.Context) string {
	if m.tokens == nil {
		return ""
	}
	token, ok := bearerToken(c)
	if !ok {
		return ""
	}
	userID, err := m.tokens.Validate(token)
	if err != nil {
		return ""
	}
	return m.existingUser(c, userID)
}

// trySessionAuth returns the session's user ID when that user still exists.
func (m *Middleware) trySessionAuth(c *gin.Context) string {
	if m.sessionManager == nil {
		return ""
	}
	userID := m.sessionManager.UserID(c.Request.Context())
	if userID == "" {
		return ""
	}
	return m.existingUser(c, userID)
}

func (m *Middleware) existingUser(c *gin.Context, userID string) string {
	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return ""
	}
	c.Set(ContextKeyUsername, user.Username)
	return user.ID
}

func (m *Middleware) setUserContext(c *gin.Context, userID string, authType AuthType) {
	c.Set(ContextKeyUserID, userID)
	c.Set(ContextKeyAuthType, authType)
}

// RequireAuth aborts anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// Helper functions to extract auth data from Gin context

// GetUserID retrieves the authenticated user's ID, or "" for anonymous callers.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := v.(string); ok {
			return userID
		}
	}
	return ""
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := v.(string); ok {
			return username
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if v, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := v.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

// IsAuthenticated returns true if the request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != ""
}
