package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "sprout/internal/errors"
	"sprout/internal/models"
	"sprout/internal/pagination"
	"sprout/internal/paycycle"
)

// repaymentService handles debt repayment tracking.
type repaymentService struct {
	db *gorm.DB
}

// NewRepaymentService creates a new RepaymentServicer.
func NewRepaymentService(db *gorm.DB) RepaymentServicer {
	return &repaymentService{db: db}
}

// CreateRepayment creates a tracked debt for the user's household.
func (s *repaymentService) CreateRepayment(userID, name string, balance int64, interestRate *float64, targetDate *time.Time) (*models.Repayment, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if balance <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "starting balance must be positive")
	}
	if interestRate != nil && *interestRate < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interest rate cannot be negative")
	}

	rep := &models.Repayment{
		HouseholdID:     household.ID,
		Name:            name,
		StartingBalance: balance,
		CurrentBalance:  balance,
		InterestRate:    interestRate,
		TargetDate:      midnightPtr(targetDate),
		Status:          models.RepaymentStatusActive,
	}
	if err := s.db.Create(rep).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rep, nil
}

// GetHouseholdRepayments returns the household's repayments.
func (s *repaymentService) GetHouseholdRepayments(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Repayment], error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.Repayment{}).Where("household_id = ?", household.ID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var reps []models.Repayment
	if err := base.Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&reps).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(reps, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRepaymentByID returns a repayment if it belongs to the user's household.
func (s *repaymentService) GetRepaymentByID(userID, repaymentID string) (*models.Repayment, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	var rep models.Repayment
	if err := s.db.Where("id = ? AND household_id = ?", repaymentID, household.ID).First(&rep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRepaymentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rep, nil
}

// UpdateRepayment applies partial changes to a repayment.
func (s *repaymentService) UpdateRepayment(userID, repaymentID string, name *string, balance *int64, interestRate *float64, targetDate *time.Time, status *models.RepaymentStatus) (*models.Repayment, error) {
	rep, err := s.GetRepaymentByID(userID, repaymentID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = *name
	}
	if balance != nil {
		if *balance < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "balance cannot be negative")
		}
		updates["current_balance"] = *balance
		if *balance == 0 {
			updates["status"] = models.RepaymentStatusPaid
		}
	}
	if interestRate != nil {
		if *interestRate < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interest rate cannot be negative")
		}
		updates["interest_rate"] = *interestRate
	}
	if targetDate != nil {
		updates["target_date"] = paycycle.Midnight(*targetDate)
	}
	if status != nil {
		updates["status"] = *status
	}

	if len(updates) > 0 {
		if err := s.db.Model(rep).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return rep, nil
}

// DeleteRepayment soft-deletes a repayment and detaches any linked seeds.
func (s *repaymentService) DeleteRepayment(userID, repaymentID string) error {
	rep, err := s.GetRepaymentByID(userID, repaymentID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Seed{}).
			Where("linked_repay_id = ?", rep.ID).
			Update("linked_repay_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(rep).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Forecast projects the debt balance at the given per-cycle payment,
// optionally compounding the repayment's interest rate each cycle. The
// closed-form cycle count ignores interest, matching the trajectory when
// interest is off.
func (s *repaymentService) Forecast(userID, repaymentID string, perCycle int64, includeInterest bool, today time.Time) (*RepaymentForecast, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	rep, err := s.GetRepaymentByID(userID, repaymentID)
	if err != nil {
		return nil, err
	}

	cfg, cycleStart := forecastOrigin(s.db, household, today)

	opts := paycycle.RepaymentOptions{IncludeInterest: includeInterest}
	if rep.InterestRate != nil {
		opts.AnnualRatePercent = *rep.InterestRate
	}

	trajectory := paycycle.ProjectRepayment(rep.CurrentBalance, perCycle, cycleStart, cfg, today, opts)
	cycles, reachable := paycycle.CyclesToClearFromAmount(rep.CurrentBalance, perCycle)
	suggested := paycycle.SuggestedRepaymentAmount(rep.CurrentBalance, cycleStart, rep.TargetDate, cfg.Rule, today)

	forecast := &RepaymentForecast{
		Repayment:       *rep,
		Trajectory:      trajectory,
		CyclesToClear:   cycles,
		Reachable:       reachable,
		SuggestedAmount: suggested,
	}
	if reachable && cycles > 0 {
		end := paycycle.EndDateFromCycles(cycleStart, cycles-1, cfg, today)
		forecast.ProjectedEnd = &end
	}
	return forecast, nil
}
