package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/access"
	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/validation"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is returned by deletes and other writes with no body.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// MessageResponse is a success response carrying a human readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondUnauthorized sends a 401 Unauthorized response.
func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
}

// respondForbidden sends a 403 Forbidden response.
func respondForbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInvalidData sends a 400 response listing the failing fields.
func respondInvalidData(c *gin.Context, vErr *validation.Error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid data", Details: vErr.Fields})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, logger *zap.Logger, err error, message string) {
	logger.Error(message,
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

// respondError sends an error response with the given status code.
// Use the specific helpers (respondBadRequest, respondNotFound, etc.) when possible.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondDomainError maps repository, access and validation errors to their
// HTTP status. Anything unrecognised is a 500 carrying message.
func respondDomainError(c *gin.Context, logger *zap.Logger, err error, resource, message string) {
	if vErr, ok := validation.AsError(err); ok {
		respondInvalidData(c, vErr)
		return
	}
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondNotFound(c, resource)
	case errors.Is(err, access.ErrUnauthenticated):
		respondUnauthorized(c)
	case errors.Is(err, access.ErrForbidden):
		respondForbidden(c)
	default:
		respondInternalError(c, logger, err, message)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK {"success":true} response.
func respondSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Request Parsing ---

// bindJSON decodes the body into req and validates it. On failure it has
// already responded and returns false.
func bindJSON(c *gin.Context, v *validation.Validator, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return false
	}
	if err := v.Validate(req); err != nil {
		if vErr, ok := validation.AsError(err); ok {
			respondInvalidData(c, vErr)
			return false
		}
		respondBadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// queryInt parses an integer query parameter, returning def when it is
// missing or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// normalizeTags trims tags, drops empty ones and removes duplicates while
// keeping the first occurrence order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// nullableString distinguishes a JSON field that is absent (Set false) from
// one that is explicitly null (Set true, Value nil).
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}
