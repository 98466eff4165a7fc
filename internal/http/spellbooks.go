package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/spellbook-app/spellbook/internal/access"
	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/id"
	"github.com/spellbook-app/spellbook/internal/search"
	"github.com/spellbook-app/spellbook/internal/validation"
)

// CreateSpellbookRequest is the body of POST /api/spellbooks.
type CreateSpellbookRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	IsPublic    *bool    `json:"isPublic"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateSpellbookRequest is the body of PATCH and PUT /api/spellbooks/:id.
type UpdateSpellbookRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	IsPublic    *bool     `json:"isPublic"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// SpellbooksController serves /api/spellbooks.
type SpellbooksController struct {
	store     SpellbookStore
	validator *validation.Validator
	changes   changeRecorder
	logger    *zap.Logger
}

// NewSpellbooksController creates a new spellbooks controller.
func NewSpellbooksController(store SpellbookStore, index ContentIndex, auditor Auditor, v *validation.Validator, logger *zap.Logger) *SpellbooksController {
	return &SpellbooksController{
		store:     store,
		validator: v,
		changes:   changeRecorder{index: index, audit: auditor},
		logger:    logger,
	}
}

// List returns the caller's spellbooks with counts and recent spells.
// GET /api/spellbooks?search=
func (bc *SpellbooksController) List(c *gin.Context) {
	books, err := bc.store.ListByUser(auth.GetUserID(c), c.Query("search"))
	if err != nil {
		respondInternalError(c, bc.logger, err, "Failed to fetch spellbooks")
		return
	}
	if books == nil {
		books = []entities.Spellbook{}
	}
	c.JSON(http.StatusOK, books)
}

// Create stores a new spellbook for the caller.
// POST /api/spellbooks
func (bc *SpellbooksController) Create(c *gin.Context) {
	var req CreateSpellbookRequest
	if !bindJSON(c, bc.validator, &req) {
		return
	}

	book := &entities.Spellbook{
		ID:          id.MustGenerate(id.PrefixSpellbook),
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		Tags:        normalizeTags(req.Tags),
		UserID:      auth.GetUserID(c),
	}
	if err := bc.store.Create(book); err != nil {
		respondInternalError(c, bc.logger, err, "Failed to create spellbook")
		return
	}
	bc.changes.record(c, search.DocTypeSpellbook, entities.AuditEventSpellbook, "spellbook_create", book.ID, "Created spellbook "+book.Name)
	respondCreated(c, book)
}

// Get returns a readable spellbook with its spells. Viewers other than the
// owner only see the public spells inside it.
// GET /api/spellbooks/:id
func (bc *SpellbooksController) Get(c *gin.Context) {
	viewerID := auth.GetUserID(c)
	book, err := bc.store.GetByID(c.Param("id"))
	if err == nil {
		err = access.CanRead(viewerID, book)
	}
	if err != nil {
		respondDomainError(c, bc.logger, err, "Spellbook", "Failed to fetch spellbook")
		return
	}

	full, err := bc.store.GetWithSpells(book.ID, !access.IsOwner(viewerID, book))
	if err != nil {
		respondDomainError(c, bc.logger, err, "Spellbook", "Failed to fetch spellbook")
		return
	}
	if full.Spells == nil {
		full.Spells = []entities.Spell{}
	}
	c.JSON(http.StatusOK, full)
}

// Update applies a partial update to an owned spellbook.
// PATCH /api/spellbooks/:id
// PUT /api/spellbooks/:id
func (bc *SpellbooksController) Update(c *gin.Context) {
	book, ok := bc.loadOwned(c, "Failed to update spellbook")
	if !ok {
		return
	}

	var req UpdateSpellbookRequest
	if !bindJSON(c, bc.validator, &req) {
		return
	}

	fields := make(map[string]any)
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](normalizeTags(*req.Tags))
	}

	updated, err := bc.store.Update(book.ID, fields)
	if err != nil {
		respondDomainError(c, bc.logger, err, "Spellbook", "Failed to update spellbook")
		return
	}
	bc.changes.record(c, search.DocTypeSpellbook, entities.AuditEventSpellbook, "spellbook_update", book.ID, "Updated spellbook "+updated.Name)
	c.JSON(http.StatusOK, updated)
}

// Delete removes an owned spellbook. Its spells are detached, not deleted.
// DELETE /api/spellbooks/:id
func (bc *SpellbooksController) Delete(c *gin.Context) {
	book, ok := bc.loadOwned(c, "Failed to delete spellbook")
	if !ok {
		return
	}

	if err := bc.store.Delete(book.ID); err != nil {
		respondDomainError(c, bc.logger, err, "Spellbook", "Failed to delete spellbook")
		return
	}
	bc.changes.record(c, search.DocTypeSpellbook, entities.AuditEventSpellbook, "spellbook_delete", book.ID, "Deleted spellbook "+book.Name)
	respondSuccess(c)
}

func (bc *SpellbooksController) loadOwned(c *gin.Context, failure string) (*entities.Spellbook, bool) {
	book, err := bc.store.GetByID(c.Param("id"))
	if err == nil {
		err = access.RequireOwner(auth.GetUserID(c), book)
	}
	if err != nil {
		respondDomainError(c, bc.logger, err, "Spellbook", failure)
		return nil, false
	}
	return book, true
}
