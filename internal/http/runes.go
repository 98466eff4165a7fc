package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/spellbook-app/spellbook/internal/access"
	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/database/runes"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/id"
	"github.com/spellbook-app/spellbook/internal/preview"
	"github.com/spellbook-app/spellbook/internal/search"
	"github.com/spellbook-app/spellbook/internal/validation"
)

// CreateRuneRequest is the body of POST /api/runes.
type CreateRuneRequest struct {
	Title       string   `json:"title" validate:"max=200"`
	Description string   `json:"description" validate:"max=5000"`
	HTML        string   `json:"html"`
	CSS         string   `json:"css"`
	JavaScript  string   `json:"javascript"`
	IsPublic    *bool    `json:"isPublic"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateRuneRequest is the body of PATCH /api/runes/:id.
type UpdateRuneRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	HTML        *string   `json:"html"`
	CSS         *string   `json:"css"`
	JavaScript  *string   `json:"javascript"`
	IsPublic    *bool     `json:"isPublic"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// RunesController serves /api/runes.
type RunesController struct {
	store     RuneStore
	validator *validation.Validator
	changes   changeRecorder
	logger    *zap.Logger
}

// NewRunesController creates a new runes controller.
func NewRunesController(store RuneStore, index ContentIndex, auditor Auditor, v *validation.Validator, logger *zap.Logger) *RunesController {
	return &RunesController{
		store:     store,
		validator: v,
		changes:   changeRecorder{index: index, audit: auditor},
		logger:    logger,
	}
}

// List returns one user's public runes (userId), every public rune
// (public=true, optional q), or the caller's own runes.
// GET /api/runes
func (rc *RunesController) List(c *gin.Context) {
	var filter runes.ListFilter
	switch {
	case c.Query("userId") != "":
		filter = runes.ListFilter{UserID: c.Query("userId"), PublicOnly: true}
	case c.Query("public") == "true":
		filter = runes.ListFilter{PublicOnly: true, Search: c.Query("q")}
	case auth.IsAuthenticated(c):
		filter = runes.ListFilter{UserID: auth.GetUserID(c)}
	default:
		respondUnauthorized(c)
		return
	}

	list, err := rc.store.List(filter)
	if err != nil {
		respondInternalError(c, rc.logger, err, "Failed to fetch runes")
		return
	}
	if list == nil {
		list = []entities.Rune{}
	}
	c.JSON(http.StatusOK, list)
}

// Create stores a new rune for the caller.
// POST /api/runes
func (rc *RunesController) Create(c *gin.Context) {
	var req CreateRuneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondBadRequest(c, "Title is required")
		return
	}
	if err := rc.validator.Validate(&req); err != nil {
		respondDomainError(c, rc.logger, err, "Rune", "Failed to create rune")
		return
	}

	rn := &entities.Rune{
		ID:          id.MustGenerate(id.PrefixRune),
		Title:       req.Title,
		Description: req.Description,
		HTML:        req.HTML,
		CSS:         req.CSS,
		JavaScript:  req.JavaScript,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		Tags:        normalizeTags(req.Tags),
		UserID:      auth.GetUserID(c),
	}
	if err := rc.store.Create(rn); err != nil {
		respondInternalError(c, rc.logger, err, "Failed to create rune")
		return
	}

	created, err := rc.store.GetByID(rn.ID)
	if err != nil {
		respondInternalError(c, rc.logger, err, "Failed to create rune")
		return
	}
	rc.changes.record(c, search.DocTypeRune, entities.AuditEventRune, "rune_create", rn.ID, "Created rune "+rn.Title)
	respondCreated(c, created)
}

// Get returns a readable rune and counts the view.
// GET /api/runes/:id
func (rc *RunesController) Get(c *gin.Context) {
	rn, ok := rc.loadReadable(c)
	if !ok {
		return
	}

	views, err := rc.store.IncrementViews(rn.ID)
	if err != nil {
		respondDomainError(c, rc.logger, err, "Rune", "Failed to fetch rune")
		return
	}
	rn.Views = views
	c.JSON(http.StatusOK, rn)
}

// Preview renders a readable rune as a standalone HTML document for a
// sandboxed frame. Views are not counted. Routed behind auth.PreviewHeaders.
// GET /api/runes/:id/preview
func (rc *RunesController) Preview(c *gin.Context) {
	rn, ok := rc.loadReadable(c)
	if !ok {
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(preview.BuildRuneDocument(rn.HTML, rn.CSS, rn.JavaScript)))
}

// Update changes only the fields present in the body.
// PATCH /api/runes/:id
func (rc *RunesController) Update(c *gin.Context) {
	rn, ok := rc.loadOwned(c, "Failed to update rune")
	if !ok {
		return
	}

	var req UpdateRuneRequest
	if !bindJSON(c, rc.validator, &req) {
		return
	}

	fields := make(map[string]any)
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.HTML != nil {
		fields["html"] = *req.HTML
	}
	if req.CSS != nil {
		fields["css"] = *req.CSS
	}
	if req.JavaScript != nil {
		fields["javascript"] = *req.JavaScript
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](normalizeTags(*req.Tags))
	}

	updated, err := rc.store.Update(rn.ID, fields)
	if err != nil {
		respondDomainError(c, rc.logger, err, "Rune", "Failed to update rune")
		return
	}
	rc.changes.record(c, search.DocTypeRune, entities.AuditEventRune, "rune_update", rn.ID, "Updated rune "+updated.Title)
	c.JSON(http.StatusOK, updated)
}

// Delete removes an owned rune.
// DELETE /api/runes/:id
func (rc *RunesController) Delete(c *gin.Context) {
	rn, ok := rc.loadOwned(c, "Failed to delete rune")
	if !ok {
		return
	}

	if err := rc.store.Delete(rn.ID); err != nil {
		respondDomainError(c, rc.logger, err, "Rune", "Failed to delete rune")
		return
	}
	rc.changes.record(c, search.DocTypeRune, entities.AuditEventRune, "rune_delete", rn.ID, "Deleted rune "+rn.Title)
	c.JSON(http.StatusOK, MessageResponse{Message: "Rune deleted successfully"})
}

func (rc *RunesController) loadReadable(c *gin.Context) (*entities.Rune, bool) {
	rn, err := rc.store.GetByID(c.Param("id"))
	if err == nil {
		err = access.CanRead(auth.GetUserID(c), rn)
	}
	if err != nil {
		respondDomainError(c, rc.logger, err, "Rune", "Failed to fetch rune")
		return nil, false
	}
	return rn, true
}

func (rc *RunesController) loadOwned(c *gin.Context, failure string) (*entities.Rune, bool) {
	rn, err := rc.store.GetByID(c.Param("id"))
	if err == nil {
		err = access.RequireOwner(auth.GetUserID(c), rn)
	}
	if err != nil {
		respondDomainError(c, rc.logger, err, "Rune", failure)
		return nil, false
	}
	return rn, true
}
