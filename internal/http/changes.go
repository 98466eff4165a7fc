package http

import (
	"github.com/gin-gonic/gin"

	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/search"
)

// changeRecorder fans a successful write out to the search index and the
// audit log. Either side may be nil.
type changeRecorder struct {
	index ContentIndex
	audit Auditor
}

func (r changeRecorder) record(c *gin.Context, docType search.DocType, eventType entities.AuditEventType, action, entityID, description string) {
	if r.index != nil && docType != "" {
		r.index.Changed(docType, entityID)
	}
	if r.audit != nil {
		r.audit.LogChange(auth.Actor(c), eventType, action, entityID, description, nil)
	}
}
