// Package auth signs users in and tells handlers who is calling.
//
// Browsers authenticate with a session cookie managed by scs and stored in
// SQLite. API clients exchange a session for a JWT at POST /api/auth/token and
// send it as "Authorization: Bearer <token>". Cookie-authenticated unsafe
// requests must carry a CSRF token in X-CSRF-Token.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<base64-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=720h             # Session duration
//	AUTH_TOKEN_EXPIRY=720h                 # Bearer token expiry
//	AUTH_BCRYPT_COST=10                    # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//	AUTH_AUTO_REGISTER=true                # Create accounts on first sign-in
//
// # Usage
//
//	authService := auth.NewService(userRepo, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager, tokens)
//	router.Use(sessionManager.SessionLoadSave(), authMiddleware.Handler())
//	api.GET("/profile", auth.RequireAuth(), profile.Get)
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c) // "" for anonymous callers
package auth
