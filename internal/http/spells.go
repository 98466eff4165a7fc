package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/spellbook-app/spellbook/internal/access"
	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/database/spells"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/id"
	"github.com/spellbook-app/spellbook/internal/search"
	"github.com/spellbook-app/spellbook/internal/utils"
	"github.com/spellbook-app/spellbook/internal/validation"
)

// CreateSpellRequest is the body of POST /api/spells.
type CreateSpellRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Code        string   `json:"code" validate:"required"`
	Language    string   `json:"language" validate:"required,max=50"`
	IsPublic    *bool    `json:"isPublic"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	SpellbookID *string  `json:"spellbookId" validate:"omitempty,max=32"`
}

// UpdateSpellRequest is the body of PATCH /api/spells/:id. Absent fields are
// left unchanged; "spellbookId": null detaches the spell.
type UpdateSpellRequest struct {
	Title       *string        `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string        `json:"description" validate:"omitempty,max=5000"`
	Code        *string        `json:"code" validate:"omitempty,min=1"`
	Language    *string        `json:"language" validate:"omitempty,min=1,max=50"`
	IsPublic    *bool          `json:"isPublic"`
	Tags        *[]string      `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	SpellbookID nullableString `json:"spellbookId"`
}

// SpellsController serves /api/spells.
type SpellsController struct {
	store     SpellStore
	validator *validation.Validator
	changes   changeRecorder
	logger    *zap.Logger
}

// NewSpellsController creates a new spells controller.
func NewSpellsController(store SpellStore, index ContentIndex, auditor Auditor, v *validation.Validator, logger *zap.Logger) *SpellsController {
	return &SpellsController{
		store:     store,
		validator: v,
		changes:   changeRecorder{index: index, audit: auditor},
		logger:    logger,
	}
}

// List returns the caller's spells.
// GET /api/spells?language=&spellbookId=&search=
func (sc *SpellsController) List(c *gin.Context) {
	list, err := sc.store.ListByUser(auth.GetUserID(c), spells.ListFilter{
		Language:    c.Query("language"),
		SpellbookID: c.Query("spellbookId"),
		Search:      c.Query("search"),
	})
	if err != nil {
		respondInternalError(c, sc.logger, err, "Failed to fetch spells")
		return
	}
	if list == nil {
		list = []entities.Spell{}
	}
	c.JSON(http.StatusOK, list)
}

// Create stores a new spell for the caller.
// POST /api/spells
func (sc *SpellsController) Create(c *gin.Context) {
	var req CreateSpellRequest
	if !bindJSON(c, sc.validator, &req) {
		return
	}
	userID := auth.GetUserID(c)

	spellbookID, ok := sc.checkSpellbook(c, req.SpellbookID, userID)
	if !ok {
		return
	}

	spell := &entities.Spell{
		ID:          id.MustGenerate(id.PrefixSpell),
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Language:    req.Language,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		Tags:        normalizeTags(req.Tags),
		UserID:      userID,
		SpellbookID: spellbookID,
	}
	if err := sc.store.Create(spell); err != nil {
		respondInternalError(c, sc.logger, err, "Failed to create spell")
		return
	}

	created, err := sc.store.GetByID(spell.ID)
	if err != nil {
		respondInternalError(c, sc.logger, err, "Failed to create spell")
		return
	}
	sc.changes.record(c, search.DocTypeSpell, entities.AuditEventSpell, "spell_create", spell.ID, "Created spell "+spell.Title)
	respondCreated(c, created)
}

// Get returns a readable spell and counts the view.
// GET /api/spells/:id
func (sc *SpellsController) Get(c *gin.Context) {
	spell, ok := sc.loadReadable(c)
	if !ok {
		return
	}

	views, err := sc.store.IncrementViews(spell.ID)
	if err != nil {
		respondDomainError(c, sc.logger, err, "Spell", "Failed to fetch spell")
		return
	}
	spell.Views = views
	c.JSON(http.StatusOK, spell)
}

// Raw downloads the code of a readable spell without counting a view.
// GET /api/spells/:id/raw
func (sc *SpellsController) Raw(c *gin.Context) {
	spell, ok := sc.loadReadable(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+utils.SpellFilename(spell.Title, spell.Language)+`"`)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(spell.Code))
}

// Update applies a partial update to an owned spell.
// PATCH /api/spells/:id
func (sc *SpellsController) Update(c *gin.Context) {
	spell, ok := sc.loadOwned(c, "Failed to update spell")
	if !ok {
		return
	}

	var req UpdateSpellRequest
	if !bindJSON(c, sc.validator, &req) {
		return
	}

	fields := make(map[string]any)
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Code != nil {
		fields["code"] = *req.Code
	}
	if req.Language != nil {
		fields["language"] = *req.Language
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](normalizeTags(*req.Tags))
	}
	if req.SpellbookID.Set {
		spellbookID, ok := sc.checkSpellbook(c, req.SpellbookID.Value, spell.UserID)
		if !ok {
			return
		}
		fields["spellbook_id"] = spellbookID
	}

	updated, err := sc.store.Update(spell.ID, fields)
	if err != nil {
		respondDomainError(c, sc.logger, err, "Spell", "Failed to update spell")
		return
	}
	sc.changes.record(c, search.DocTypeSpell, entities.AuditEventSpell, "spell_update", spell.ID, "Updated spell "+updated.Title)
	c.JSON(http.StatusOK, updated)
}

// Delete removes an owned spell and its favorites.
// DELETE /api/spells/:id
func (sc *SpellsController) Delete(c *gin.Context) {
	spell, ok := sc.loadOwned(c, "Failed to delete spell")
	if !ok {
		return
	}

	if err := sc.store.Delete(spell.ID); err != nil {
		respondDomainError(c, sc.logger, err, "Spell", "Failed to delete spell")
		return
	}
	sc.changes.record(c, search.DocTypeSpell, entities.AuditEventSpell, "spell_delete", spell.ID, "Deleted spell "+spell.Title)
	respondSuccess(c)
}

// loadReadable fetches :id and enforces the visibility rule.
func (sc *SpellsController) loadReadable(c *gin.Context) (*entities.Spell, bool) {
	spell, err := sc.store.GetByID(c.Param("id"))
	if err == nil {
		err = access.CanRead(auth.GetUserID(c), spell)
	}
	if err != nil {
		respondDomainError(c, sc.logger, err, "Spell", "Failed to fetch spell")
		return nil, false
	}
	return spell, true
}

// loadOwned fetches :id and requires the caller to own it.
func (sc *SpellsController) loadOwned(c *gin.Context, failure string) (*entities.Spell, bool) {
	spell, err := sc.store.GetByID(c.Param("id"))
	if err == nil {
		err = access.RequireOwner(auth.GetUserID(c), spell)
	}
	if err != nil {
		respondDomainError(c, sc.logger, err, "Spell", failure)
		return nil, false
	}
	return spell, true
}

// checkSpellbook resolves an optional spellbook reference. A nil or empty
// value means no spellbook; anything else must be owned by userID.
func (sc *SpellsController) checkSpellbook(c *gin.Context, spellbookID *string, userID string) (*string, bool) {
	if spellbookID == nil || *spellbookID == "" {
		return nil, true
	}
	owned, err := sc.store.OwnedSpellbookExists(*spellbookID, userID)
	if err != nil {
		respondInternalError(c, sc.logger, err, "Failed to check spellbook")
		return nil, false
	}
	if !owned {
		respondBadRequest(c, "Invalid spellbook")
		return nil, false
	}
	return spellbookID, true
}
