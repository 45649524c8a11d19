package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "sprout/internal/errors"
	"sprout/internal/models"
	"sprout/internal/paycycle"
	"sprout/internal/services"
)

// HouseholdHandler handles household management requests.
type HouseholdHandler struct {
	householdService services.HouseholdServicer
	auditService     services.AuditServicer
}

// NewHouseholdHandler creates a new HouseholdHandler.
func NewHouseholdHandler(householdService services.HouseholdServicer, auditService services.AuditServicer) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService, auditService: auditService}
}

// CreateHouseholdRequest represents the request payload for creating a household.
type CreateHouseholdRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// JoinHouseholdRequest represents the request payload for joining by invite code.
type JoinHouseholdRequest struct {
	InviteCode string `json:"invite_code" binding:"required,len=8"`
}

// UpdateHouseholdRequest represents the request payload for partial settings changes.
type UpdateHouseholdRequest struct {
	Name          *string        `json:"name" binding:"omitempty,min=1,max=100"`
	PartnerName   *string        `json:"partner_name" binding:"omitempty,max=100"`
	JointRatio    *float64       `json:"joint_ratio" binding:"omitempty,gte=0,lte=1"`
	Currency      *string        `json:"currency" binding:"omitempty,currency_code"`
	TargetNeeds   *int           `json:"target_needs" binding:"omitempty,gte=0,lte=100"`
	TargetWants   *int           `json:"target_wants" binding:"omitempty,gte=0,lte=100"`
	TargetSavings *int           `json:"target_savings" binding:"omitempty,gte=0,lte=100"`
	TargetRepay   *int           `json:"target_repay" binding:"omitempty,gte=0,lte=100"`
	PayCycleType  *paycycle.Rule `json:"pay_cycle_type" binding:"omitempty,pay_cycle_type"`
	PayDay        *int           `json:"pay_day" binding:"omitempty,gte=1,lte=31"`
	AnchorDate    *time.Time     `json:"anchor_date"`
}

func householdPayload(h *models.Household) gin.H {
	return gin.H{
		"household":   h,
		"invite_code": h.InviteCode,
	}
}

// CreateHousehold handles creating a household with the caller as owner.
// @Summary     Create a household
// @Description Create a new household owned by the authenticated user
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateHouseholdRequest true "Household details"
// @Success     201 {object} models.Household "Household created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Already in a household"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households [post]
func (h *HouseholdHandler) CreateHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.CreateHousehold(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_HOUSEHOLD", "household", household.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, householdPayload(household))
}

// JoinHousehold handles joining an existing household by invite code.
// @Summary     Join a household
// @Description Join an existing household using its invite code
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body JoinHouseholdRequest true "Invite code"
// @Success     200 {object} models.Household "Household joined"
// @Failure     400 {object} ErrorResponse "Invalid input or invite code"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Already in a household or household full"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households/join [post]
func (h *HouseholdHandler) JoinHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req JoinHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.JoinHousehold(userID, req.InviteCode)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "JOIN_HOUSEHOLD", "household", household.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// GetHousehold handles retrieving the caller's household.
// @Summary     Get household
// @Description Get the authenticated user's household and its invite code
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Household "Household details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a household member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households/me [get]
func (h *HouseholdHandler) GetHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	household, err := h.householdService.GetUserHousehold(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, householdPayload(household))
}

// UpdateHousehold handles partial household settings changes.
// @Summary     Update household settings
// @Description Apply partial changes to the household's settings
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateHouseholdRequest true "Settings changes"
// @Success     200 {object} models.Household "Updated household"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a household member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households/me [put]
func (h *HouseholdHandler) UpdateHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.UpdateSettings(userID, services.HouseholdUpdate{
		Name:          req.Name,
		PartnerName:   req.PartnerName,
		JointRatio:    req.JointRatio,
		Currency:      req.Currency,
		TargetNeeds:   req.TargetNeeds,
		TargetWants:   req.TargetWants,
		TargetSavings: req.TargetSavings,
		TargetRepay:   req.TargetRepay,
		PayCycleType:  req.PayCycleType,
		PayDay:        req.PayDay,
		AnchorDate:    req.AnchorDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_HOUSEHOLD", "household", household.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"household": household})
}
