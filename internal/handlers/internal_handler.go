package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sprout/internal/services"
)

// InternalHandler exposes operational endpoints for scheduled maintenance.
// These sit behind the internal API key, not user auth; they exist so the
// overdue sweep can be triggered from outside the in-process scheduler.
type InternalHandler struct {
	cycleService services.PayCycleServicer
}

// NewInternalHandler creates a new InternalHandler with the given service.
func NewInternalHandler(cycleService services.PayCycleServicer) *InternalHandler {
	return &InternalHandler{cycleService: cycleService}
}

// MarkOverdueCycles godoc
// @Summary     Roll over overdue cycles
// @Description Closes every active pay cycle whose end date has passed and promotes its draft. Requires the internal API key.
// @Tags        internal
// @Produce     json
// @Param       X-API-Key header string true "Internal API key"
// @Success     200 {object} map[string]interface{}
// @Failure     401 {object} map[string]interface{}
// @Failure     500 {object} map[string]interface{}
// @Router      /internal/cycles/mark-overdue [post]
func (h *InternalHandler) MarkOverdueCycles(c *gin.Context) {
	count, err := h.cycleService.MarkOverdueCycles(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rolled_over": count})
}
