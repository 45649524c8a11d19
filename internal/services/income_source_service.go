package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "sprout/internal/errors"
	"sprout/internal/models"
	"sprout/internal/paycycle"
)

// incomeSourceService handles recurring income sources.
type incomeSourceService struct {
	db *gorm.DB
}

// NewIncomeSourceService creates a new IncomeSourceServicer.
func NewIncomeSourceService(db *gorm.DB) IncomeSourceServicer {
	return &incomeSourceService{db: db}
}

func validateSourceInput(input IncomeSourceInput) error {
	if input.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	switch input.FrequencyRule {
	case paycycle.RuleSpecificDate:
		if input.DayOfMonth == nil || *input.DayOfMonth < 1 || *input.DayOfMonth > 31 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "day_of_month is required for specific_date sources")
		}
	case paycycle.RuleEvery4Weeks:
		if input.AnchorDate == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "anchor_date is required for every_4_weeks sources")
		}
	case paycycle.RuleLastWorkingDay:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown frequency rule")
	}
	return nil
}

// CreateSource adds an income source to the user's household.
func (s *incomeSourceService) CreateSource(userID string, input IncomeSourceInput) (*models.IncomeSource, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if err := validateSourceInput(input); err != nil {
		return nil, err
	}

	source := &models.IncomeSource{
		HouseholdID:   household.ID,
		Name:          input.Name,
		Amount:        input.Amount,
		FrequencyRule: input.FrequencyRule,
		DayOfMonth:    input.DayOfMonth,
		AnchorDate:    midnightPtr(input.AnchorDate),
		PaymentSource: input.PaymentSource,
		IsActive:      true,
	}
	if input.IsActive != nil {
		source.IsActive = *input.IsActive
	}
	if err := s.db.Create(source).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return source, nil
}

// GetHouseholdSources lists the household's income sources.
func (s *incomeSourceService) GetHouseholdSources(userID string) ([]models.IncomeSource, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	var sources []models.IncomeSource
	if err := s.db.Where("household_id = ?", household.ID).Order("created_at ASC").Find(&sources).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sources, nil
}

// GetSourceByID returns a source if it belongs to the user's household.
func (s *incomeSourceService) GetSourceByID(userID, sourceID string) (*models.IncomeSource, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	var source models.IncomeSource
	if err := s.db.Where("id = ? AND household_id = ?", sourceID, household.ID).First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeSourceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &source, nil
}

// UpdateSource rewrites a source's fields.
func (s *incomeSourceService) UpdateSource(userID, sourceID string, input IncomeSourceInput) (*models.IncomeSource, error) {
	source, err := s.GetSourceByID(userID, sourceID)
	if err != nil {
		return nil, err
	}
	if err := validateSourceInput(input); err != nil {
		return nil, err
	}

	source.Name = input.Name
	source.Amount = input.Amount
	source.FrequencyRule = input.FrequencyRule
	source.DayOfMonth = input.DayOfMonth
	source.AnchorDate = midnightPtr(input.AnchorDate)
	source.PaymentSource = input.PaymentSource
	if input.IsActive != nil {
		source.IsActive = *input.IsActive
	}

	if err := s.db.Save(source).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return source, nil
}

// DeleteSource soft-deletes an income source.
func (s *incomeSourceService) DeleteSource(userID, sourceID string) error {
	source, err := s.GetSourceByID(userID, sourceID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(source).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// PreviewCycleEvents expands the household's income sources over a cycle's
// window without persisting anything.
func (s *incomeSourceService) PreviewCycleEvents(userID, cycleID string) (*paycycle.IncomeProjection, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	var cycle models.PayCycle
	if err := s.db.Where("id = ? AND household_id = ?", cycleID, household.ID).First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCycleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sources, err := s.GetHouseholdSources(userID)
	if err != nil {
		return nil, err
	}

	projection := paycycle.ProjectIncomeForCycle(
		cycle.StartDate, cycle.EndDate, models.EngineSources(sources), household.JointRatio)
	return &projection, nil
}
