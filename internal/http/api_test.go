package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/audit"
	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/config"
	auditrepo "github.com/spellbook-app/spellbook/internal/database/audit"
	"github.com/spellbook-app/spellbook/internal/database/dbtest"
	"github.com/spellbook-app/spellbook/internal/database/favorites"
	"github.com/spellbook-app/spellbook/internal/database/runes"
	"github.com/spellbook-app/spellbook/internal/database/spellbooks"
	"github.com/spellbook-app/spellbook/internal/database/spells"
	"github.com/spellbook-app/spellbook/internal/database/users"
	"github.com/spellbook-app/spellbook/internal/demo"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/search"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// indexChange is one notification received by recordingIndex.
type indexChange struct {
	docType search.DocType
	id      string
}

type recordingIndex struct {
	mu      sync.Mutex
	changes []indexChange
}

func (r *recordingIndex) Changed(docType search.DocType, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, indexChange{docType: docType, id: id})
}

func (r *recordingIndex) seen(docType search.DocType, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.changes {
		if ch.docType == docType && ch.id == id {
			return true
		}
	}
	return false
}

type apiHarness struct {
	t       *testing.T
	db      *gorm.DB
	router  *gin.Engine
	service *auth.Service
	tokens  *auth.TokenService
	audit   *audit.Service
	index   *recordingIndex
}

type harnessOption func(*RouterConfig)

func withSearch(index *search.Index) harnessOption {
	return func(cfg *RouterConfig) { cfg.Search = index }
}

func withDemoMode() harnessOption {
	return func(cfg *RouterConfig) { cfg.DemoMode = true }
}

func newAPIHarness(t *testing.T, opts ...harnessOption) *apiHarness {
	t.Helper()

	db := dbtest.Open(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	authCfg := config.Auth{BcryptCost: 4}
	service := auth.NewService(users.NewRepository(db), authCfg)
	sm, err := auth.NewSessionManager(sqlDB, authCfg)
	require.NoError(t, err)
	tokens := auth.NewTokenService(testSecret, time.Hour)

	auditService := audit.NewService(auditrepo.NewRepository(db), zap.NewNop())
	t.Cleanup(auditService.Wait)

	index := &recordingIndex{}
	cfg := RouterConfig{
		DB:             db,
		Users:          users.NewRepository(db),
		Spells:         spells.NewRepository(db),
		Spellbooks:     spellbooks.NewRepository(db),
		Runes:          runes.NewRepository(db),
		Favorites:      favorites.NewRepository(db),
		AuthService:    service,
		AuthMiddleware: auth.NewMiddleware(service, sm, tokens),
		SessionManager: sm,
		Tokens:         tokens,
		Audit:          auditService,
		Index:          index,
		SiteBaseURL:    "https://spellbook.test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &apiHarness{
		t:       t,
		db:      db,
		router:  NewRouter(cfg),
		service: service,
		tokens:  tokens,
		audit:   auditService,
		index:   index,
	}
}

func (h *apiHarness) user(username string) *entities.User {
	return dbtest.CreateUser(h.t, h.db, username)
}

// do sends a request as user, or anonymously when user is nil. A non-nil
// body that is not already a string is encoded as JSON.
func (h *apiHarness) do(method, path string, body any, user *entities.User) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, _, err := h.tokens.Issue(user.ID, user.Username)
		require.NoError(h.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, w).Error
}

func TestRouter_NoRoute(t *testing.T) {
	h := newAPIHarness(t)

	w := h.do(http.MethodGet, "/api/nope", nil, nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Not found", errorOf(t, w))
}

func TestRouter_SecurityHeaders(t *testing.T) {
	h := newAPIHarness(t)

	w := h.do(http.MethodGet, "/ping", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_StrictTransportSecurity(t *testing.T) {
	plain := newAPIHarness(t)
	secure := newAPIHarness(t, func(cfg *RouterConfig) { cfg.SecureCookies = true })

	for _, tc := range []struct {
		name    string
		harness *apiHarness
		proto   string
		want    bool
	}{
		{"insecure cookies", plain, "https", false},
		{"secure over https", secure, "https", true},
		{"secure over http", secure, "", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tc.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tc.proto)
			}
			w := httptest.NewRecorder()
			tc.harness.router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			if tc.want {
				assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=")
			} else {
				assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
			}
		})
	}
}

func TestRouter_SearchDisabled(t *testing.T) {
	h := newAPIHarness(t)

	w := h.do(http.MethodGet, "/api/search?q=sort", nil, nil)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_DemoMode(t *testing.T) {
	h := newAPIHarness(t, withDemoMode())
	user := h.user("merlin")

	w := h.do(http.MethodPost, "/api/spells", map[string]any{"title": "Blocked", "code": "x", "language": "go"}, user)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, demo.Message, errorOf(t, w))

	w = h.do(http.MethodGet, "/api/spells", nil, user)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodPost, "/api/run", map[string]any{"code": "<p>hi</p>", "language": "html"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
