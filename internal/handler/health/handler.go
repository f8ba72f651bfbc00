package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the store and the message broker.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHandler takes named dependencies that must answer Ping for the service
// to be ready. Nil entries are skipped.
func NewHandler(checks map[string]Pinger) *Handler {
	h := &Handler{checks: make(map[string]Pinger, len(checks)), timeout: 2 * time.Second}
	for name, p := range checks {
		if p != nil {
			h.checks[name] = p
		}
	}
	return h
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health/live", h.LivenessCheck)
	r.GET("/health/ready", h.ReadinessCheck)
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	failed := gin.H{}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"checks": failed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
