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

// potService handles savings pot management.
type potService struct {
	db *gorm.DB
}

// NewPotService creates a new PotServicer.
func NewPotService(db *gorm.DB) PotServicer {
	return &potService{db: db}
}

// CreatePot creates a savings pot for the user's household.
func (s *potService) CreatePot(userID, name string, target int64, targetDate *time.Time) (*models.Pot, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be positive")
	}

	pot := &models.Pot{
		HouseholdID:  household.ID,
		Name:         name,
		TargetAmount: target,
		TargetDate:   midnightPtr(targetDate),
		Status:       models.PotStatusActive,
	}
	if err := s.db.Create(pot).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pot, nil
}

// GetHouseholdPots returns the household's pots.
func (s *potService) GetHouseholdPots(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Pot], error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.Pot{}).Where("household_id = ?", household.ID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var pots []models.Pot
	if err := base.Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&pots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(pots, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPotByID returns a pot if it belongs to the user's household.
func (s *potService) GetPotByID(userID, potID string) (*models.Pot, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	var pot models.Pot
	if err := s.db.Where("id = ? AND household_id = ?", potID, household.ID).First(&pot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPotNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &pot, nil
}

// UpdatePot applies partial changes to a pot.
func (s *potService) UpdatePot(userID, potID string, name *string, target *int64, targetDate *time.Time, status *models.PotStatus) (*models.Pot, error) {
	pot, err := s.GetPotByID(userID, potID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = *name
	}
	if target != nil {
		if *target <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be positive")
		}
		updates["target_amount"] = *target
	}
	if targetDate != nil {
		updates["target_date"] = paycycle.Midnight(*targetDate)
	}
	if status != nil {
		updates["status"] = *status
	}

	if len(updates) > 0 {
		if err := s.db.Model(pot).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return pot, nil
}

// DeletePot soft-deletes a pot and detaches any seeds linked to it.
func (s *potService) DeletePot(userID, potID string) error {
	pot, err := s.GetPotByID(userID, potID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Seed{}).
			Where("linked_pot_id = ?", pot.ID).
			Update("linked_pot_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(pot).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Forecast projects the pot's balance toward its target at the given
// per-cycle contribution, with the closed-form cycle count and the
// suggested contribution for the pot's target date.
func (s *potService) Forecast(userID, potID string, perCycle int64, today time.Time) (*PotForecast, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	pot, err := s.GetPotByID(userID, potID)
	if err != nil {
		return nil, err
	}

	cfg, cycleStart := forecastOrigin(s.db, household, today)

	trajectory := paycycle.ProjectSavings(
		pot.CurrentAmount, pot.TargetAmount, perCycle, cycleStart, cfg, today, 0)
	cycles, reachable := paycycle.CyclesToGoalFromAmount(pot.CurrentAmount, pot.TargetAmount, perCycle)
	suggested := paycycle.SuggestedSavingsAmount(
		pot.CurrentAmount, pot.TargetAmount, cycleStart, pot.TargetDate, cfg.Rule, today)

	forecast := &PotForecast{
		Pot:             *pot,
		Trajectory:      trajectory,
		CyclesToGoal:    cycles,
		Reachable:       reachable,
		SuggestedAmount: suggested,
	}
	if reachable && cycles > 0 {
		end := paycycle.EndDateFromCycles(cycleStart, cycles-1, cfg, today)
		forecast.ProjectedEnd = &end
	}
	return forecast, nil
}

// forecastOrigin picks the cycle config and start for projections: the
// household's active cycle when one exists, otherwise the cycle containing
// today per the household settings.
func forecastOrigin(db *gorm.DB, household *models.Household, today time.Time) (paycycle.CycleConfig, time.Time) {
	var active models.PayCycle
	err := db.Where("household_id = ? AND status = ?", household.ID, models.CycleStatusActive).
		First(&active).Error
	if err == nil {
		return active.Config(), active.StartDate
	}
	cfg := household.CycleConfig()
	return cfg, paycycle.CycleStartDate(cfg, today)
}
