package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

type HealthResponse struct {
	Status          string            `json:"status"`
	Time            string            `json:"time"`
	Version         string            `json:"version,omitempty"`
	Checks          map[string]string `json:"checks"`
	SearchDocuments *uint64           `json:"searchDocuments,omitempty"`
}

// IndexCounter reports the size of the search index.
type IndexCounter interface {
	DocumentCount() (uint64, error)
}

type HealthController struct {
	db      *gorm.DB
	index   IndexCounter
	version string
}

func NewHealthController(db *gorm.DB, index IndexCounter, version string) *HealthController {
	return &HealthController{db: db, index: index, version: version}
}

// Status reports database and search health. Only the database decides the
// status code; a broken index degrades search alone.
func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string, 2),
	}

	resp.Checks["database"] = h.checkDatabase(c.Request.Context())
	if resp.Checks["database"] != "ok" && h.db != nil {
		resp.Status = "unhealthy"
	}

	resp.Checks["search"] = "disabled"
	if h.index != nil {
		if count, err := h.index.DocumentCount(); err != nil {
			resp.Checks["search"] = "error: " + err.Error()
		} else {
			resp.Checks["search"] = "ok"
			resp.SearchDocuments = &count
		}
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (h *HealthController) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return "not configured"
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return "error: " + err.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
