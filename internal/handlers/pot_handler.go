package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "sprout/internal/errors"
	"sprout/internal/models"
	"sprout/internal/pagination"
	"sprout/internal/services"
)

// PotHandler handles savings pot requests.
type PotHandler struct {
	potService   services.PotServicer
	auditService services.AuditServicer
}

// NewPotHandler creates a new PotHandler.
func NewPotHandler(potService services.PotServicer, auditService services.AuditServicer) *PotHandler {
	return &PotHandler{potService: potService, auditService: auditService}
}

// CreatePotRequest represents the request payload for creating a pot.
type CreatePotRequest struct {
	Name       string     `json:"name" binding:"required,min=1,max=100"`
	Target     int64      `json:"target_amount" binding:"required,gt=0"`
	TargetDate *time.Time `json:"target_date"`
}

// UpdatePotRequest represents the request payload for partial pot changes.
type UpdatePotRequest struct {
	Name       *string           `json:"name" binding:"omitempty,min=1,max=100"`
	Target     *int64            `json:"target_amount" binding:"omitempty,gt=0"`
	TargetDate *time.Time        `json:"target_date"`
	Status     *models.PotStatus `json:"status" binding:"omitempty,pot_status"`
}

// ForecastRequest represents the query parameters for a projection.
type ForecastRequest struct {
	PerCycle        int64 `form:"per_cycle" binding:"gte=0"`
	IncludeInterest bool  `form:"include_interest"`
}

// CreatePot handles creating a savings pot.
// @Summary     Create a pot
// @Description Create a savings pot for the household
// @Tags        pots
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePotRequest true "Pot details"
// @Success     201 {object} models.Pot "Pot created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a household member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pots [post]
func (h *PotHandler) CreatePot(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	pot, err := h.potService.CreatePot(userID, req.Name, req.Target, req.TargetDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_POT", "pot", pot.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "target": req.Target})

	c.JSON(http.StatusCreated, gin.H{"pot": pot})
}

// GetPots handles listing the household's pots.
// @Summary     List pots
// @Description Get the household's savings pots with pagination
// @Tags        pots
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number"      default(1)
// @Param       page_size query int false "Items per page"   default(20)
// @Success     200 {object} pagination.PageResponse[models.Pot] "Pots"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a household member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pots [get]
func (h *PotHandler) GetPots(c *gin.Context) {
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

	result, err := h.potService.GetHouseholdPots(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPot handles retrieving a single pot.
// @Summary     Get pot
// @Description Get a single pot by ID
// @Tags        pots
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Pot ID"
// @Success     200 {object} models.Pot "Pot details"
// @Failure     400 {object} ErrorResponse "Invalid pot ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pot not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pots/{id} [get]
func (h *PotHandler) GetPot(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	potID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	pot, err := h.potService.GetPotByID(userID, potID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pot": pot})
}

// UpdatePot handles partial pot changes.
// @Summary     Update pot
// @Description Apply partial changes to a pot
// @Tags        pots
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Pot ID"
// @Param       request body UpdatePotRequest true "Pot changes"
// @Success     200 {object} models.Pot "Updated pot"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pot not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pots/{id} [put]
func (h *PotHandler) UpdatePot(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	potID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	pot, err := h.potService.UpdatePot(userID, potID, req.Name, req.Target, req.TargetDate, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_POT", "pot", potID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"pot": pot})
}

// DeletePot handles removing a pot.
// @Summary     Delete pot
// @Description Delete a pot and detach any seeds linked to it
// @Tags        pots
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Pot ID"
// @Success     200 {object} MessageResponse "Pot deleted"
// @Failure     400 {object} ErrorResponse "Invalid pot ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pot not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pots/{id} [delete]
func (h *PotHandler) DeletePot(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	potID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.potService.DeletePot(userID, potID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_POT", "pot", potID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Pot deleted successfully"})
}

// GetPotForecast handles projecting a pot's balance forward.
// @Summary     Pot forecast
// @Description Project a pot's balance over future cycles at a given per-cycle contribution
// @Tags        pots
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Pot ID"
// @Param       per_cycle query int    false "Contribution per cycle in cents" default(0)
// @Success     200 {object} services.PotForecast "Forecast"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pot not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pots/{id}/forecast [get]
func (h *PotHandler) GetPotForecast(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	potID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	forecast, err := h.potService.Forecast(userID, potID, req.PerCycle, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": forecast})
}
