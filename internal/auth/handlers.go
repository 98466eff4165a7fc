package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/audit"
	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/logging"
)

// Audit actions recorded by the controller.
const (
	ActionLogin    = "login"
	ActionRegister = "register"
	ActionLogout   = "logout"
	ActionToken    = "token_issue"
)

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	tokens         *TokenService
	rateLimiter    *RateLimiter
	audit          *audit.Service
	logger         *zap.Logger
}

// NewAuthController creates a new authentication controller. The audit
// service may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, tokens *TokenService,
	auditService *audit.Service, logger *zap.Logger, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		tokens:         tokens,
		rateLimiter:    rateLimiter,
		audit:          auditService,
		logger:         logger,
	}
}

// RegisterRoutes registers authentication routes under group (normally /api/auth).
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/login", ac.Login)
	group.POST("/register", ac.Register)
	group.POST("/logout", ac.Logout)
	group.GET("/session", ac.Session)
	group.GET("/csrf", ac.CSRF)
	group.POST("/token", RequireAuth(), ac.Token)
}

// Stop releases the rate limiter state.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Login checks credentials, creating the account first when auto-registration
// is on, and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Too many login attempts. Please try again later.",
			"code":  "rate_limited",
		})
		return
	}

	user, created, err := ac.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidLogin) || errors.Is(err, ErrAccountLocked) {
			ac.rateLimiter.RecordFailure(clientIP, req.Email)
		}
		ac.logAuth(c, "", ActionLogin, err)
		ac.respondAuthError(c, err)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Email)
	if err := ac.sessionManager.SignIn(c.Request.Context(), user); err != nil {
		ac.logger.Error("Failed to create session", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if created {
		ac.logAuth(c, user.ID, ActionRegister, nil)
	}
	ac.logAuth(c, user.ID, ActionLogin, nil)
	c.JSON(http.StatusOK, gin.H{"user": user, "created": created})
}

// Register creates an account and signs it in.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := ac.service.Register(RegisterInput(req))
	if err != nil {
		ac.logAuth(c, "", ActionRegister, err)
		ac.respondAuthError(c, err)
		return
	}

	if err := ac.sessionManager.SignIn(c.Request.Context(), user); err != nil {
		ac.logger.Error("Failed to create session", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ac.logAuth(c, user.ID, ActionRegister, nil)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if err := ac.sessionManager.SignOut(c.Request.Context()); err != nil {
		ac.logger.Warn("Failed to destroy session", zap.Error(err))
	}
	if userID != "" {
		ac.logAuth(c, userID, ActionLogout, nil)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session returns the current user or null.
func (ac *AuthController) Session(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	user, err := ac.service.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	resp := gin.H{"user": user}
	if GetAuthType(c) == AuthTypeSession {
		resp["loginAt"] = ac.sessionManager.LoginAt(c.Request.Context())
	}
	c.JSON(http.StatusOK, resp)
}

// CSRF returns the token to send in X-CSRF-Token on unsafe requests.
func (ac *AuthController) CSRF(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrfToken": GetCSRFToken(c)})
}

// Token issues a bearer token for the signed-in user.
func (ac *AuthController) Token(c *gin.Context) {
	userID := GetUserID(c)
	token, expiresAt, err := ac.tokens.Issue(userID, GetUsername(c))
	if err != nil {
		ac.logger.Error("Failed to issue token", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ac.logAuth(c, userID, ActionToken, nil)
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}

func (ac *AuthController) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidLogin):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password", "code": "invalid_credentials"})
	case errors.Is(err, ErrAccountLocked):
		c.JSON(http.StatusLocked, gin.H{"error": err.Error(), "code": "account_locked"})
	case errors.Is(err, ErrUserExists), errors.Is(err, ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmailRequired), errors.Is(err, ErrEmailInvalid),
		errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordTooLong), errors.Is(err, ErrUsernameInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ac.logger.Error("Authentication failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (ac *AuthController) logAuth(c *gin.Context, userID, action string, err error) {
	if ac.audit == nil {
		return
	}
	actor := Actor(c)
	if userID != "" {
		actor.UserID = userID
	}
	ac.audit.LogAuth(actor, action, err == nil, err)
}

// Actor describes the caller of c for audit events.
func Actor(c *gin.Context) audit.Actor {
	return audit.Actor{
		UserID:    GetUserID(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: logging.GetRequestID(c),
	}
}
