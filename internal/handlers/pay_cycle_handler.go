package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "sprout/internal/errors"
	"sprout/internal/pagination"
	"sprout/internal/services"
)

// PayCycleHandler handles pay cycle lifecycle requests.
type PayCycleHandler struct {
	cycleService services.PayCycleServicer
	auditService services.AuditServicer
}

// NewPayCycleHandler creates a new PayCycleHandler.
func NewPayCycleHandler(cycleService services.PayCycleServicer, auditService services.AuditServicer) *PayCycleHandler {
	return &PayCycleHandler{cycleService: cycleService, auditService: auditService}
}

// GetActiveCycle handles retrieving the household's active cycle.
// @Summary     Get active cycle
// @Description Get the household's currently active pay cycle with its seeds
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.PayCycle "Active cycle"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No active cycle"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/active [get]
func (h *PayCycleHandler) GetActiveCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.GetActiveCycle(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}

// GetDraftCycle handles retrieving the household's draft cycle.
// @Summary     Get draft cycle
// @Description Get the household's draft pay cycle with its seeds
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.PayCycle "Draft cycle"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No draft cycle"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/draft [get]
func (h *PayCycleHandler) GetDraftCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.GetDraftCycle(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}

// GetCycles handles listing the household's cycles.
// @Summary     List cycles
// @Description Get a paginated list of the household's pay cycles, newest first
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.PayCycle] "Paginated cycles"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles [get]
func (h *PayCycleHandler) GetCycles(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.cycleService.ListCycles(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCycle handles retrieving a specific cycle.
// @Summary     Get cycle by ID
// @Description Get a specific pay cycle with its seeds
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Cycle ID"
// @Success     200 {object} models.PayCycle "Cycle details"
// @Failure     400 {object} ErrorResponse "Invalid cycle ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/{id} [get]
func (h *PayCycleHandler) GetCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.GetCycleByID(userID, cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}

// GetCycleSummary handles retrieving a cycle's derived views.
// @Summary     Get cycle summary
// @Description Get a cycle with its transfer breakdown, allocation table, and projected income
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Cycle ID"
// @Success     200 {object} services.CycleSummary "Cycle summary"
// @Failure     400 {object} ErrorResponse "Invalid cycle ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/{id}/summary [get]
func (h *PayCycleHandler) GetCycleSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.cycleService.GetCycleSummary(userID, cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// CreateFirstCycle handles creating the household's initial cycle.
// @Summary     Create first cycle
// @Description Create the household's initial active pay cycle during onboarding
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     201 {object} models.PayCycle "Cycle created"
// @Failure     400 {object} ErrorResponse "Missing cycle configuration"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Active cycle already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/first [post]
func (h *PayCycleHandler) CreateFirstCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.CreateFirstCycle(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_FIRST_CYCLE", "pay_cycle", cycle.ID, c.ClientIP(),
		map[string]interface{}{"start_date": cycle.StartDate, "end_date": cycle.EndDate})

	c.JSON(http.StatusCreated, gin.H{"cycle": cycle})
}

// CreateNextCycle handles creating a draft for the next cycle.
// @Summary     Create next cycle draft
// @Description Create a draft for the cycle after the active one, cloning recurring seeds
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     201 {object} models.PayCycle "Draft created"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No active cycle"
// @Failure     409 {object} ErrorResponse "Draft already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/next [post]
func (h *PayCycleHandler) CreateNextCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	draft, err := h.cycleService.CreateNextCycle(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_NEXT_CYCLE", "pay_cycle", draft.ID, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, gin.H{"cycle": draft})
}

// ResyncDraft handles refreshing the draft from the active cycle.
// @Summary     Resync draft
// @Description Refresh the draft's recurring seeds from the active cycle
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.PayCycle "Resynced draft"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No active or draft cycle"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/draft/resync [post]
func (h *PayCycleHandler) ResyncDraft(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	draft, err := h.cycleService.ResyncDraft(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cycle": draft})
}

// StartNextCycle handles rolling the household onto its next cycle.
// @Summary     Start next cycle
// @Description Complete the active cycle, promote the draft, and create a fresh draft
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.PayCycle "Promoted cycle"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No active or draft cycle"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/start-next [post]
func (h *PayCycleHandler) StartNextCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.StartNextCycle(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "START_NEXT_CYCLE", "pay_cycle", cycle.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}

// CloseCycle handles locking a cycle's budget.
// @Summary     Close cycle
// @Description Lock a cycle's budget against edits
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Cycle ID"
// @Success     200 {object} models.PayCycle "Closed cycle"
// @Failure     400 {object} ErrorResponse "Invalid cycle ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/{id}/close [post]
func (h *PayCycleHandler) CloseCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.CloseCycle(userID, cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CLOSE_CYCLE", "pay_cycle", cycleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}

// UnlockCycle handles reopening a closed cycle's budget.
// @Summary     Unlock cycle
// @Description Reopen a closed cycle's budget for edits
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Cycle ID"
// @Success     200 {object} models.PayCycle "Unlocked cycle"
// @Failure     400 {object} ErrorResponse "Invalid cycle ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/{id}/unlock [post]
func (h *PayCycleHandler) UnlockCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.UnlockCycle(userID, cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UNLOCK_CYCLE", "pay_cycle", cycleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}
