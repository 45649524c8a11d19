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

// RepaymentHandler handles debt repayment requests.
type RepaymentHandler struct {
	repaymentService services.RepaymentServicer
	auditService     services.AuditServicer
}

// NewRepaymentHandler creates a new RepaymentHandler.
func NewRepaymentHandler(repaymentService services.RepaymentServicer, auditService services.AuditServicer) *RepaymentHandler {
	return &RepaymentHandler{repaymentService: repaymentService, auditService: auditService}
}

// CreateRepaymentRequest represents the request payload for creating a repayment.
type CreateRepaymentRequest struct {
	Name         string     `json:"name" binding:"required,min=1,max=100"`
	Balance      int64      `json:"balance" binding:"required,gt=0"`
	InterestRate *float64   `json:"interest_rate" binding:"omitempty,gte=0,lte=100"`
	TargetDate   *time.Time `json:"target_date"`
}

// UpdateRepaymentRequest represents the request payload for partial repayment changes.
type UpdateRepaymentRequest struct {
	Name         *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	Balance      *int64                  `json:"balance" binding:"omitempty,gte=0"`
	InterestRate *float64                `json:"interest_rate" binding:"omitempty,gte=0,lte=100"`
	TargetDate   *time.Time              `json:"target_date"`
	Status       *models.RepaymentStatus `json:"status" binding:"omitempty,repayment_status"`
}

// CreateRepayment handles creating a debt repayment.
// @Summary     Create a repayment
// @Description Create a debt repayment tracker for the household
// @Tags        repayments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRepaymentRequest true "Repayment details"
// @Success     201 {object} models.Repayment "Repayment created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a household member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /repayments [post]
func (h *RepaymentHandler) CreateRepayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	repayment, err := h.repaymentService.CreateRepayment(userID, req.Name, req.Balance, req.InterestRate, req.TargetDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_REPAYMENT", "repayment", repayment.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "balance": req.Balance})

	c.JSON(http.StatusCreated, gin.H{"repayment": repayment})
}

// GetRepayments handles listing the household's repayments.
// @Summary     List repayments
// @Description Get the household's debt repayments with pagination
// @Tags        repayments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number"    default(1)
// @Param       page_size query int false "Items per page" default(20)
// @Success     200 {object} pagination.PageResponse[models.Repayment] "Repayments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a household member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /repayments [get]
func (h *RepaymentHandler) GetRepayments(c *gin.Context) {
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

	result, err := h.repaymentService.GetHouseholdRepayments(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRepayment handles retrieving a single repayment.
// @Summary     Get repayment
// @Description Get a single repayment by ID
// @Tags        repayments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Repayment ID"
// @Success     200 {object} models.Repayment "Repayment details"
// @Failure     400 {object} ErrorResponse "Invalid repayment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Repayment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /repayments/{id} [get]
func (h *RepaymentHandler) GetRepayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	repaymentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	repayment, err := h.repaymentService.GetRepaymentByID(userID, repaymentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"repayment": repayment})
}

// UpdateRepayment handles partial repayment changes.
// @Summary     Update repayment
// @Description Apply partial changes to a repayment; a zero balance marks it paid
// @Tags        repayments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Repayment ID"
// @Param       request body UpdateRepaymentRequest true "Repayment changes"
// @Success     200 {object} models.Repayment "Updated repayment"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Repayment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /repayments/{id} [put]
func (h *RepaymentHandler) UpdateRepayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	repaymentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	repayment, err := h.repaymentService.UpdateRepayment(userID, repaymentID, req.Name, req.Balance, req.InterestRate, req.TargetDate, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_REPAYMENT", "repayment", repaymentID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"repayment": repayment})
}

// DeleteRepayment handles removing a repayment.
// @Summary     Delete repayment
// @Description Delete a repayment and detach any seeds linked to it
// @Tags        repayments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Repayment ID"
// @Success     200 {object} MessageResponse "Repayment deleted"
// @Failure     400 {object} ErrorResponse "Invalid repayment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Repayment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /repayments/{id} [delete]
func (h *RepaymentHandler) DeleteRepayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	repaymentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.repaymentService.DeleteRepayment(userID, repaymentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_REPAYMENT", "repayment", repaymentID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Repayment deleted successfully"})
}

// GetRepaymentForecast handles projecting a repayment's payoff.
// @Summary     Repayment forecast
// @Description Project a debt balance over future cycles at a given per-cycle payment
// @Tags        repayments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id               path  string true  "Repayment ID"
// @Param       per_cycle        query int    false "Payment per cycle in cents" default(0)
// @Param       include_interest query bool   false "Apply the per-cycle interest rate" default(false)
// @Success     200 {object} services.RepaymentForecast "Forecast"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Repayment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /repayments/{id}/forecast [get]
func (h *RepaymentHandler) GetRepaymentForecast(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	repaymentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	forecast, err := h.repaymentService.Forecast(userID, repaymentID, req.PerCycle, req.IncludeInterest, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": forecast})
}
