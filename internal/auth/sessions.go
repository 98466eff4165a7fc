package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/entities"
)

const (
	sessionKeyUserID  = "user_id"
	sessionKeyLoginAt = "login_at"

	sessionCleanupInterval = 30 * time.Minute
)

func init() {
	gob.Register(time.Time{})
}

const sessionSchema = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

// SessionManager stores cookie sessions in the application database.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates the sessions table if needed and returns a
// manager backed by it. sqlDB is the connection underneath GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	if _, err := sqlDB.Exec(sessionSchema); err != nil {
		return nil, err
	}

	lifetime := cfg.SessionLifetime
	if lifetime <= 0 {
		lifetime = 30 * 24 * time.Hour
	}

	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(sqlDB, sessionCleanupInterval)
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2
	sm.Cookie.Name = "session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode

	return &SessionManager{SessionManager: sm}, nil
}

// SignIn binds the session to user under a fresh token.
func (sm *SessionManager) SignIn(ctx context.Context, user *entities.User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, sessionKeyUserID, user.ID)
	sm.Put(ctx, sessionKeyLoginAt, time.Now().UTC())
	return nil
}

// SignOut destroys the session.
func (sm *SessionManager) SignOut(ctx context.Context) error {
	return sm.Destroy(ctx)
}

// UserID returns the signed-in user's ID, or "" for anonymous sessions.
func (sm *SessionManager) UserID(ctx context.Context) string {
	return sm.GetString(ctx, sessionKeyUserID)
}

// LoginAt returns when the session was signed in.
func (sm *SessionManager) LoginAt(ctx context.Context) time.Time {
	return sm.GetTime(ctx, sessionKeyLoginAt)
}

// SessionLoadSave loads the session for every request and writes the cookie
// before the response headers go out. It must run before anything touches
// the session.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &sessionWriter{ResponseWriter: c.Writer}
		w.commit = func() { sm.commit(c, ctx, w.ResponseWriter) }
		c.Writer = w

		c.Next()

		w.flushSession()
	}
}

func (sm *SessionManager) commit(c *gin.Context, ctx context.Context, w http.ResponseWriter) {
	switch sm.Status(ctx) {
	case scs.Modified:
		token, expiry, err := sm.Commit(ctx)
		if err != nil {
			_ = c.Error(err)
			return
		}
		sm.WriteSessionCookie(ctx, w, token, expiry)
	case scs.Destroyed:
		sm.WriteSessionCookie(ctx, w, "", time.Time{})
	}
}

// sessionWriter commits the session the first time the response is written.
type sessionWriter struct {
	gin.ResponseWriter
	commit func()
	once   sync.Once
}

func (w *sessionWriter) flushSession() {
	w.once.Do(w.commit)
}

func (w *sessionWriter) WriteHeader(code int) {
	w.flushSession()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.flushSession()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.flushSession()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.flushSession()
	return w.ResponseWriter.WriteString(s)
}
