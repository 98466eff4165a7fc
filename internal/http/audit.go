package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/auth"
	auditrepo "github.com/spellbook-app/spellbook/internal/database/audit"
	"github.com/spellbook-app/spellbook/internal/entities"
)

// AuditEventsResponse is one page of the caller's audit log.
type AuditEventsResponse struct {
	Events      []entities.AuditEvent `json:"events"`
	Page        int                   `json:"page"`
	Limit       int                   `json:"limit"`
	TotalPages  int                   `json:"totalPages"`
	TotalEvents int64                 `json:"totalEvents"`
	EventTypes  []EventTypeOption     `json:"eventTypes"`
}

// EventTypeOption is a filter choice for the audit log.
type EventTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type AuditController struct {
	events AuditReader
	logger *zap.Logger
}

func NewAuditController(events AuditReader, logger *zap.Logger) *AuditController {
	return &AuditController{events: events, logger: logger}
}

// GetAuditEvents returns the caller's audit events, newest first
// GET /api/audit?page=&limit=&type=&entityId=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	userID := auth.GetUserID(c)
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 25)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	filter := auditrepo.Filter{
		UserID:   userID,
		Type:     entities.AuditEventType(c.Query("type")),
		EntityID: c.Query("entityId"),
	}
	events, total, err := ac.events.ListEvents(filter, limit, (page-1)*limit)
	if err != nil {
		respondInternalError(c, ac.logger, err, "Failed to load audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, AuditEventsResponse{
		Events:      events,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		TotalEvents: total,
		EventTypes:  getEventTypes(),
	})
}

func getEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
		{Value: string(entities.AuditEventSpell), Label: "Spells"},
		{Value: string(entities.AuditEventSpellbook), Label: "Spellbooks"},
		{Value: string(entities.AuditEventRune), Label: "Runes"},
		{Value: string(entities.AuditEventFavorite), Label: "Favorites"},
		{Value: string(entities.AuditEventProfile), Label: "Profile"},
	}
}
