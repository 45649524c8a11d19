package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "sprout/internal/errors"
	"sprout/internal/paycycle"
	"sprout/internal/services"
)

// SeedHandler handles seed (planned payment) requests.
type SeedHandler struct {
	seedService  services.SeedServicer
	auditService services.AuditServicer
}

// NewSeedHandler creates a new SeedHandler.
func NewSeedHandler(seedService services.SeedServicer, auditService services.AuditServicer) *SeedHandler {
	return &SeedHandler{seedService: seedService, auditService: auditService}
}

// SeedRequest represents the request payload for creating or updating a seed.
type SeedRequest struct {
	Name             string                 `json:"name" binding:"required,min=1,max=100"`
	Amount           int64                  `json:"amount" binding:"required,gt=0"`
	Type             paycycle.SeedType      `json:"type" binding:"required,seed_type"`
	PaymentSource    paycycle.PaymentSource `json:"payment_source" binding:"required,payment_source"`
	SplitRatio       *float64               `json:"split_ratio" binding:"omitempty,gt=0,lte=1"`
	UsesJointAccount bool                   `json:"uses_joint_account"`
	IsRecurring      bool                   `json:"is_recurring"`
	DueDate          *time.Time             `json:"due_date"`
	LinkedPotID      *string                `json:"linked_pot_id" binding:"omitempty,uuid"`
	LinkedRepayID    *string                `json:"linked_repayment_id" binding:"omitempty,uuid"`
}

// PaidRequest represents the request payload for marking a seed paid or unpaid.
type PaidRequest struct {
	Payer paycycle.Payer `json:"payer" binding:"required,payer"`
}

func (r SeedRequest) toInput() services.SeedInput {
	return services.SeedInput{
		Name:             r.Name,
		Amount:           r.Amount,
		Type:             r.Type,
		PaymentSource:    r.PaymentSource,
		SplitRatio:       r.SplitRatio,
		UsesJointAccount: r.UsesJointAccount,
		IsRecurring:      r.IsRecurring,
		DueDate:          r.DueDate,
		LinkedPotID:      r.LinkedPotID,
		LinkedRepayID:    r.LinkedRepayID,
	}
}

// CreateSeed handles adding a seed to a cycle.
// @Summary     Create a seed
// @Description Add a planned payment to a pay cycle
// @Tags        seeds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true "Cycle ID"
// @Param       request body SeedRequest true "Seed details"
// @Success     201 {object} models.Seed "Seed created"
// @Failure     400 {object} ErrorResponse "Invalid input or due date outside cycle"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     409 {object} ErrorResponse "Cycle locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/{id}/seeds [post]
func (h *SeedHandler) CreateSeed(c *gin.Context) {
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

	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	seed, err := h.seedService.CreateSeed(userID, cycleID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SEED", "seed", seed.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "amount": req.Amount, "type": req.Type})

	c.JSON(http.StatusCreated, gin.H{"seed": seed})
}

// GetCycleSeeds handles listing a cycle's seeds.
// @Summary     List cycle seeds
// @Description Get a cycle's seeds ordered by due date, then name
// @Tags        seeds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Cycle ID"
// @Success     200 {array} models.Seed "Seeds"
// @Failure     400 {object} ErrorResponse "Invalid cycle ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/{id}/seeds [get]
func (h *SeedHandler) GetCycleSeeds(c *gin.Context) {
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

	seeds, err := h.seedService.GetCycleSeeds(userID, cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"seeds": seeds})
}

// UpdateSeed handles rewriting a seed's fields.
// @Summary     Update seed
// @Description Update a seed and recompute its per-payer split
// @Tags        seeds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true "Seed ID"
// @Param       request body SeedRequest true "Updated seed details"
// @Success     200 {object} models.Seed "Updated seed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Seed not found"
// @Failure     409 {object} ErrorResponse "Cycle locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /seeds/{id} [put]
func (h *SeedHandler) UpdateSeed(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	seedID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	seed, err := h.seedService.UpdateSeed(userID, seedID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SEED", "seed", seedID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "amount": req.Amount})

	c.JSON(http.StatusOK, gin.H{"seed": seed})
}

// DeleteSeed handles removing a seed.
// @Summary     Delete seed
// @Description Delete a seed and refresh its cycle's allocations
// @Tags        seeds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Seed ID"
// @Success     200 {object} MessageResponse "Seed deleted"
// @Failure     400 {object} ErrorResponse "Invalid seed ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Seed not found"
// @Failure     409 {object} ErrorResponse "Cycle locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /seeds/{id} [delete]
func (h *SeedHandler) DeleteSeed(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	seedID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.seedService.DeleteSeed(userID, seedID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SEED", "seed", seedID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Seed deleted successfully"})
}

// MarkPaid handles marking a seed (or one payer's half) as paid.
// @Summary     Mark seed paid
// @Description Mark a seed, or one payer's half of a joint seed, as paid
// @Tags        seeds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true "Seed ID"
// @Param       request body PaidRequest true "Payer"
// @Success     200 {object} models.Seed "Updated seed"
// @Failure     400 {object} ErrorResponse "Invalid input or payer"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Seed not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /seeds/{id}/paid [post]
func (h *SeedHandler) MarkPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	seedID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	seed, err := h.seedService.MarkPaid(userID, seedID, req.Payer)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "MARK_SEED_PAID", "seed", seedID, c.ClientIP(),
		map[string]interface{}{"payer": req.Payer})

	c.JSON(http.StatusOK, gin.H{"seed": seed})
}

// UnmarkPaid handles reversing a paid toggle.
// @Summary     Unmark seed paid
// @Description Reverse a paid toggle, including any linked balance movement
// @Tags        seeds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true "Seed ID"
// @Param       request body PaidRequest true "Payer"
// @Success     200 {object} models.Seed "Updated seed"
// @Failure     400 {object} ErrorResponse "Invalid input or payer"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Seed not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /seeds/{id}/paid [delete]
func (h *SeedHandler) UnmarkPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	seedID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	seed, err := h.seedService.UnmarkPaid(userID, seedID, req.Payer)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UNMARK_SEED_PAID", "seed", seedID, c.ClientIP(),
		map[string]interface{}{"payer": req.Payer})

	c.JSON(http.StatusOK, gin.H{"seed": seed})
}
