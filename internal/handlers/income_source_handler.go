package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "sprout/internal/errors"
	"sprout/internal/paycycle"
	"sprout/internal/services"
)

// IncomeSourceHandler handles income source requests.
type IncomeSourceHandler struct {
	incomeService services.IncomeSourceServicer
	auditService  services.AuditServicer
}

// NewIncomeSourceHandler creates a new IncomeSourceHandler.
func NewIncomeSourceHandler(incomeService services.IncomeSourceServicer, auditService services.AuditServicer) *IncomeSourceHandler {
	return &IncomeSourceHandler{incomeService: incomeService, auditService: auditService}
}

// IncomeSourceRequest represents the request payload for creating or updating
// an income source.
type IncomeSourceRequest struct {
	Name          string                 `json:"name" binding:"required,min=1,max=100"`
	Amount        int64                  `json:"amount" binding:"required,gt=0"`
	FrequencyRule paycycle.Rule          `json:"frequency_rule" binding:"required,frequency_rule"`
	DayOfMonth    *int                   `json:"day_of_month" binding:"omitempty,gte=1,lte=31"`
	AnchorDate    *time.Time             `json:"anchor_date"`
	PaymentSource paycycle.PaymentSource `json:"payment_source" binding:"required,payment_source"`
	IsActive      *bool                  `json:"is_active"`
}

func (r IncomeSourceRequest) toInput() services.IncomeSourceInput {
	return services.IncomeSourceInput{
		Name:          r.Name,
		Amount:        r.Amount,
		FrequencyRule: r.FrequencyRule,
		DayOfMonth:    r.DayOfMonth,
		AnchorDate:    r.AnchorDate,
		PaymentSource: r.PaymentSource,
		IsActive:      r.IsActive,
	}
}

// CreateIncomeSource handles creating an income source.
// @Summary     Create an income source
// @Description Create a recurring income source for the household
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body IncomeSourceRequest true "Income source details"
// @Success     201 {object} models.IncomeSource "Income source created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a household member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources [post]
func (h *IncomeSourceHandler) CreateIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	source, err := h.incomeService.CreateSource(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INCOME_SOURCE", "income_source", source.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "amount": req.Amount, "frequency_rule": req.FrequencyRule})

	c.JSON(http.StatusCreated, gin.H{"income_source": source})
}

// GetIncomeSources handles listing the household's income sources.
// @Summary     List income sources
// @Description Get the household's income sources
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.IncomeSource "Income sources"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a household member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources [get]
func (h *IncomeSourceHandler) GetIncomeSources(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sources, err := h.incomeService.GetHouseholdSources(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income_sources": sources})
}

// GetIncomeSource handles retrieving a single income source.
// @Summary     Get income source
// @Description Get a single income source by ID
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income source ID"
// @Success     200 {object} models.IncomeSource "Income source details"
// @Failure     400 {object} ErrorResponse "Invalid income source ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income source not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources/{id} [get]
func (h *IncomeSourceHandler) GetIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sourceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	source, err := h.incomeService.GetSourceByID(userID, sourceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income_source": source})
}

// UpdateIncomeSource handles rewriting an income source.
// @Summary     Update income source
// @Description Update an income source's details
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Income source ID"
// @Param       request body IncomeSourceRequest true "Updated income source details"
// @Success     200 {object} models.IncomeSource "Updated income source"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income source not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources/{id} [put]
func (h *IncomeSourceHandler) UpdateIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sourceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	source, err := h.incomeService.UpdateSource(userID, sourceID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_INCOME_SOURCE", "income_source", sourceID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "amount": req.Amount})

	c.JSON(http.StatusOK, gin.H{"income_source": source})
}

// DeleteIncomeSource handles removing an income source.
// @Summary     Delete income source
// @Description Delete an income source
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income source ID"
// @Success     200 {object} MessageResponse "Income source deleted"
// @Failure     400 {object} ErrorResponse "Invalid income source ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income source not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources/{id} [delete]
func (h *IncomeSourceHandler) DeleteIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sourceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteSource(userID, sourceID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INCOME_SOURCE", "income_source", sourceID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Income source deleted successfully"})
}

// PreviewCycleIncome handles projecting income events for a cycle window.
// @Summary     Preview cycle income
// @Description Expand the household's active income sources over a cycle's window
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Cycle ID"
// @Success     200 {object} paycycle.IncomeProjection "Income projection"
// @Failure     400 {object} ErrorResponse "Invalid cycle ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/{id}/income [get]
func (h *IncomeSourceHandler) PreviewCycleIncome(c *gin.Context) {
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

	projection, err := h.incomeService.PreviewCycleEvents(userID, cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income": projection})
}
