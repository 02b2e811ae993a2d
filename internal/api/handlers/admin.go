package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/services"
)

// AdminHandler exposes the operator-triggered rebuild path: after a
// snapshot file is replaced, POST /admin/rebuild discards all derived
// state so the next query rebuilds from the new file.
type AdminHandler struct {
	targets []services.Invalidator
	logger  *logrus.Logger
}

func NewAdminHandler(logger *logrus.Logger, targets ...services.Invalidator) *AdminHandler {
	return &AdminHandler{targets: targets, logger: logger}
}

// Rebuild handles POST /admin/rebuild
func (h *AdminHandler) Rebuild(c *gin.Context) {
	for _, t := range h.targets {
		t.Invalidate()
	}
	h.logger.Info("Operator-triggered snapshot rebuild")
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "Derived state invalidated, next query rebuilds"})
}
