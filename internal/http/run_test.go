package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/preview"
)

func TestRun(t *testing.T) {
	h := newAPIHarness(t, func(cfg *RouterConfig) {
		cfg.Runner = preview.NewRunner(config.Runner{MaxCodeBytes: 64})
	})

	t.Run("html gets a preview", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/run", map[string]any{"language": "html", "code": "<b>hi</b>"}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decode[preview.Result](t, w)
		assert.Equal(t, preview.StatusSuccess, result.Status)
		assert.True(t, result.HasPreview)
		assert.Equal(t, "<b>hi</b>", result.Preview)
	})

	t.Run("javascript runs in the browser", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/run", map[string]any{"language": "javascript", "code": "1+1"}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[preview.Result](t, w).ClientExecuted)
	})

	t.Run("language is required", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/run", map[string]any{"code": "x"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized code", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/run", map[string]any{"language": "go", "code": strings.Repeat("x", 65)}, nil)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "Code is too large", errorOf(t, w))
	})

	t.Run("oversized body", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/run", map[string]any{"language": "go", "code": strings.Repeat("x", 8192)}, nil)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestAudit(t *testing.T) {
	h := newAPIHarness(t)
	merlin := h.user("merlin")
	other := h.user("nimue")

	w := h.do(http.MethodPost, "/api/spells", map[string]any{"title": "Logged", "code": "x", "language": "go"}, merlin)
	require.Equal(t, http.StatusCreated, w.Code)
	spell := decode[entities.Spell](t, w)
	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/spells/"+spell.ID, nil, merlin).Code)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/spellbooks", map[string]any{"name": "Book"}, merlin).Code)
	h.audit.Wait()

	w = h.do(http.MethodGet, "/api/audit", nil, merlin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[AuditEventsResponse](t, w)
	assert.Equal(t, int64(3), body.TotalEvents)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 1, body.TotalPages)
	assert.NotEmpty(t, body.EventTypes)

	w = h.do(http.MethodGet, "/api/audit?type="+string(entities.AuditEventSpell)+"&limit=1", nil, merlin)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[AuditEventsResponse](t, w)
	assert.Equal(t, int64(2), body.TotalEvents)
	assert.Equal(t, 2, body.TotalPages)
	require.Len(t, body.Events, 1)
	assert.Equal(t, spell.ID, body.Events[0].EntityID)

	w = h.do(http.MethodGet, "/api/audit?entityId="+spell.ID, nil, merlin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode[AuditEventsResponse](t, w).TotalEvents, "create and delete")

	w = h.do(http.MethodGet, "/api/audit", nil, other)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[AuditEventsResponse](t, w).TotalEvents)

	w = h.do(http.MethodGet, "/api/audit", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
