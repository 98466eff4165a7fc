package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/access"
	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", database.ErrNotFound, http.StatusNotFound, "Spell not found"},
		{"wrapped not found", fmt.Errorf("load: %w", database.ErrNotFound), http.StatusNotFound, "Spell not found"},
		{"unauthenticated", access.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", access.ErrForbidden, http.StatusForbidden, "Forbidden"},
		{"validation", &validation.Error{Fields: map[string]string{"title": "is required"}}, http.StatusBadRequest, "Invalid data"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "Failed to fetch spell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/api/spells/x", nil)

			respondDomainError(c, zap.NewNop(), tt.err, "Spell", "Failed to fetch spell")

			assert.Equal(t, tt.wantStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}

func TestBindJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title" validate:"required"`
	}
	v := validation.New()

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/", strings.NewReader("{"))
		c.Request.Header.Set("Content-Type", "application/json")

		var p payload
		assert.False(t, bindJSON(c, v, &p))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request body")
	})

	t.Run("validation details keyed by json name", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		var p payload
		assert.False(t, bindJSON(c, v, &p))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Invalid data","details":{"title":"is required"}}`, w.Body.String())
	})

	t.Run("valid", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"ok"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		var p payload
		assert.True(t, bindJSON(c, v, &p))
		assert.Equal(t, "ok", p.Title)
	})
}

func TestQueryInt(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?limit=15&offset=abc", nil)

	assert.Equal(t, 15, queryInt(c, "limit", 20))
	assert.Equal(t, 0, queryInt(c, "offset", 0))
	assert.Equal(t, 7, queryInt(c, "page", 7))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "cli"}, normalizeTags([]string{" go ", "", "cli", "go"}))
	assert.Equal(t, []string{}, normalizeTags(nil))
}

func TestNullableString(t *testing.T) {
	var body struct {
		SpellbookID nullableString `json:"spellbookId"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.SpellbookID.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"spellbookId":null}`), &body))
	assert.True(t, body.SpellbookID.Set)
	assert.Nil(t, body.SpellbookID.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"spellbookId":"bk-1"}`), &body))
	require.NotNil(t, body.SpellbookID.Value)
	assert.Equal(t, "bk-1", *body.SpellbookID.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"spellbookId":42}`), &body))
}
