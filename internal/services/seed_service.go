package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "sprout/internal/errors"
	"sprout/internal/models"
	"sprout/internal/paycycle"
)

// seedService handles planned payments within a cycle.
type seedService struct {
	db *gorm.DB
}

// NewSeedService creates a new SeedServicer.
func NewSeedService(db *gorm.DB) SeedServicer {
	return &seedService{db: db}
}

// CreateSeed adds a seed to a cycle, computing its per-payer split.
func (s *seedService) CreateSeed(userID, cycleID string, input SeedInput) (*models.Seed, error) {
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
	if cycle.IsLocked() {
		return nil, apperrors.ErrCycleLocked
	}
	if err := validateDueDate(input, &cycle); err != nil {
		return nil, err
	}

	seed := &models.Seed{
		PayCycleID:       cycle.ID,
		HouseholdID:      household.ID,
		Name:             input.Name,
		Amount:           input.Amount,
		Type:             input.Type,
		PaymentSource:    input.PaymentSource,
		SplitRatio:       input.SplitRatio,
		UsesJointAccount: input.UsesJointAccount,
		IsRecurring:      input.IsRecurring,
		DueDate:          midnightPtr(input.DueDate),
		LinkedPotID:      input.LinkedPotID,
		LinkedRepayID:    input.LinkedRepayID,
	}
	seed.AmountMe, seed.AmountPartner = paycycle.SeedSplit(
		input.Amount, input.PaymentSource, input.SplitRatio, household.JointRatio)

	if err := s.validateLinks(household.ID, seed); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(seed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recalcCycle(tx, cycle.ID)
	})
	if err != nil {
		return nil, err
	}
	return seed, nil
}

// GetCycleSeeds lists a cycle's seeds ordered by due date, then name.
func (s *seedService) GetCycleSeeds(userID, cycleID string) ([]models.Seed, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.PayCycle{}).
		Where("id = ? AND household_id = ?", cycleID, household.ID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrCycleNotFound
	}

	var seeds []models.Seed
	if err := s.db.Where("pay_cycle_id = ?", cycleID).
		Order("due_date ASC NULLS LAST, name ASC").
		Find(&seeds).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return seeds, nil
}

// GetSeedByID returns a seed if it belongs to the user's household.
func (s *seedService) GetSeedByID(userID, seedID string) (*models.Seed, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	var seed models.Seed
	if err := s.db.Where("id = ? AND household_id = ?", seedID, household.ID).First(&seed).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSeedNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &seed, nil
}

// UpdateSeed rewrites a seed's fields and recomputes its split.
func (s *seedService) UpdateSeed(userID, seedID string, input SeedInput) (*models.Seed, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	seed, err := s.GetSeedByID(userID, seedID)
	if err != nil {
		return nil, err
	}

	var cycle models.PayCycle
	if err := s.db.Where("id = ?", seed.PayCycleID).First(&cycle).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if cycle.IsLocked() {
		return nil, apperrors.ErrCycleLocked
	}
	if err := validateDueDate(input, &cycle); err != nil {
		return nil, err
	}

	seed.Name = input.Name
	seed.Amount = input.Amount
	seed.Type = input.Type
	seed.PaymentSource = input.PaymentSource
	seed.SplitRatio = input.SplitRatio
	seed.UsesJointAccount = input.UsesJointAccount
	seed.IsRecurring = input.IsRecurring
	seed.DueDate = midnightPtr(input.DueDate)
	seed.LinkedPotID = input.LinkedPotID
	seed.LinkedRepayID = input.LinkedRepayID
	seed.AmountMe, seed.AmountPartner = paycycle.SeedSplit(
		input.Amount, input.PaymentSource, input.SplitRatio, household.JointRatio)

	if err := s.validateLinks(household.ID, seed); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(seed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recalcCycle(tx, cycle.ID)
	})
	if err != nil {
		return nil, err
	}
	return seed, nil
}

// DeleteSeed soft-deletes a seed and refreshes its cycle's allocations.
func (s *seedService) DeleteSeed(userID, seedID string) error {
	seed, err := s.GetSeedByID(userID, seedID)
	if err != nil {
		return err
	}

	var cycle models.PayCycle
	if err := s.db.Where("id = ?", seed.PayCycleID).First(&cycle).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if cycle.IsLocked() {
		return apperrors.ErrCycleLocked
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(seed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recalcCycle(tx, cycle.ID)
	})
}

// MarkPaid marks a seed (or one payer's half of a joint seed) as paid. When
// the seed is linked to a pot or repayment, the payer's share is locked in:
// the pot balance grows or the debt shrinks by that share.
func (s *seedService) MarkPaid(userID, seedID string, payer paycycle.Payer) (*models.Seed, error) {
	return s.setPaid(userID, seedID, payer, true)
}

// UnmarkPaid reverses a paid toggle, including any linked balance movement.
func (s *seedService) UnmarkPaid(userID, seedID string, payer paycycle.Payer) (*models.Seed, error) {
	return s.setPaid(userID, seedID, payer, false)
}

func (s *seedService) setPaid(userID, seedID string, payer paycycle.Payer, paid bool) (*models.Seed, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	seed, err := s.GetSeedByID(userID, seedID)
	if err != nil {
		return nil, err
	}

	joint := seed.PaymentSource == paycycle.SourceJoint && household.IsCouple
	if !joint && payer != paycycle.PayerBoth {
		// Single-payer seeds only toggle as a whole.
		payer = paycycle.PayerBoth
	}
	if joint && payer == paycycle.PayerBoth {
		return nil, apperrors.ErrInvalidPayer
	}

	// Figure out which share actually changes before mutating flags.
	var delta int64
	switch {
	case !joint:
		if seed.IsPaid != paid {
			delta = seed.Amount
		}
		seed.IsPaid = paid
		seed.IsPaidMe = paid
		seed.IsPaidPartner = paid
	case payer == paycycle.PayerMe:
		if seed.IsPaidMe != paid {
			delta = seed.AmountMe
		}
		seed.IsPaidMe = paid
		seed.IsPaid = seed.IsPaidMe && seed.IsPaidPartner
	case payer == paycycle.PayerPartner:
		if seed.IsPaidPartner != paid {
			delta = seed.AmountPartner
		}
		seed.IsPaidPartner = paid
		seed.IsPaid = seed.IsPaidMe && seed.IsPaidPartner
	}

	if !paid {
		delta = -delta
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(seed).Select("is_paid", "is_paid_me", "is_paid_partner").Updates(seed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if delta != 0 {
			if err := s.applyLinkedDelta(tx, seed, delta); err != nil {
				return err
			}
		}
		return recalcCycle(tx, seed.PayCycleID)
	})
	if err != nil {
		return nil, err
	}
	return seed, nil
}

// applyLinkedDelta moves a paid share into the seed's linked pot or repayment.
// A positive delta is money paid; negative reverses it.
func (s *seedService) applyLinkedDelta(tx *gorm.DB, seed *models.Seed, delta int64) error {
	if seed.LinkedPotID != nil {
		var pot models.Pot
		if err := tx.Where("id = ?", *seed.LinkedPotID).First(&pot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPotNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		pot.CurrentAmount += delta
		if pot.CurrentAmount < 0 {
			pot.CurrentAmount = 0
		}
		if pot.CurrentAmount >= pot.TargetAmount {
			pot.Status = models.PotStatusComplete
		} else if pot.Status == models.PotStatusComplete {
			pot.Status = models.PotStatusActive
		}
		if err := tx.Model(&pot).Select("current_amount", "status").Updates(&pot).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if seed.LinkedRepayID != nil {
		var rep models.Repayment
		if err := tx.Where("id = ?", *seed.LinkedRepayID).First(&rep).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrRepaymentNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		rep.CurrentBalance -= delta
		if rep.CurrentBalance < 0 {
			rep.CurrentBalance = 0
		}
		if rep.CurrentBalance == 0 {
			rep.Status = models.RepaymentStatusPaid
		} else if rep.Status == models.RepaymentStatusPaid {
			rep.Status = models.RepaymentStatusActive
		}
		if err := tx.Model(&rep).Select("current_balance", "status").Updates(&rep).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// validateLinks verifies link targets exist in the household and fit the
// seed's category.
func (s *seedService) validateLinks(householdID string, seed *models.Seed) error {
	if seed.LinkedPotID != nil {
		var count int64
		if err := s.db.Model(&models.Pot{}).
			Where("id = ? AND household_id = ?", *seed.LinkedPotID, householdID).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrPotNotFound
		}
	}
	if seed.LinkedRepayID != nil {
		var count int64
		if err := s.db.Model(&models.Repayment{}).
			Where("id = ? AND household_id = ?", *seed.LinkedRepayID, householdID).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrRepaymentNotFound
		}
	}
	return nil
}

func validateDueDate(input SeedInput, cycle *models.PayCycle) error {
	if input.DueDate == nil {
		return nil
	}
	due := paycycle.Midnight(*input.DueDate)
	if due.Before(cycle.StartDate) || due.After(cycle.EndDate) {
		return apperrors.ErrDueDateOutOfCycle
	}
	return nil
}

func midnightPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	m := paycycle.Midnight(*t)
	return &m
}

// recalcCycle reloads a cycle's seeds and persists the allocation snapshot.
func recalcCycle(tx *gorm.DB, cycleID string) error {
	var cycle models.PayCycle
	if err := tx.Preload("Seeds").Where("id = ?", cycleID).First(&cycle).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return recalc(tx, &cycle)
}
