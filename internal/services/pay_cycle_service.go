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

// payCycleService handles the pay cycle lifecycle.
type payCycleService struct {
	db *gorm.DB
}

// NewPayCycleService creates a new PayCycleServicer.
func NewPayCycleService(db *gorm.DB) PayCycleServicer {
	return &payCycleService{db: db}
}

// cycleName labels a cycle by the month its start date falls in. Four-weekly
// cycles get the explicit date range instead since two can share a month.
func cycleName(rule paycycle.Rule, start, end time.Time) string {
	if rule == paycycle.RuleEvery4Weeks {
		return start.Format("2 Jan") + " to " + end.Format("2 Jan 2006")
	}
	return start.Format("January 2006")
}

// GetActiveCycle returns the household's single active cycle.
func (s *payCycleService) GetActiveCycle(userID string) (*models.PayCycle, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.cycleByStatus(household.ID, models.CycleStatusActive, apperrors.ErrNoActiveCycle)
}

// GetDraftCycle returns the household's draft cycle if one exists.
func (s *payCycleService) GetDraftCycle(userID string) (*models.PayCycle, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.cycleByStatus(household.ID, models.CycleStatusDraft, apperrors.ErrNoDraftCycle)
}

func (s *payCycleService) cycleByStatus(householdID string, status models.PayCycleStatus, notFound *apperrors.AppError) (*models.PayCycle, error) {
	var cycle models.PayCycle
	err := s.db.Preload("Seeds").
		Where("household_id = ? AND status = ?", householdID, status).
		First(&cycle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &cycle, nil
}

// ListCycles returns the household's cycles, newest first.
func (s *payCycleService) ListCycles(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.PayCycle], error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.PayCycle{}).Where("household_id = ?", household.ID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cycles []models.PayCycle
	if err := base.Order("start_date DESC").Scopes(pagination.Paginate(page)).Find(&cycles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cycles, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCycleByID returns a cycle with its seeds if it belongs to the user's household.
func (s *payCycleService) GetCycleByID(userID, cycleID string) (*models.PayCycle, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	var cycle models.PayCycle
	err = s.db.Preload("Seeds").
		Where("id = ? AND household_id = ?", cycleID, household.ID).
		First(&cycle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCycleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &cycle, nil
}

// GetCycleSummary returns a cycle with its derived transfer and allocation views.
func (s *payCycleService) GetCycleSummary(userID, cycleID string) (*CycleSummary, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	cycle, err := s.GetCycleByID(userID, cycleID)
	if err != nil {
		return nil, err
	}

	lines := models.SeedLines(cycle.Seeds)

	var sources []models.IncomeSource
	if err := s.db.Where("household_id = ?", household.ID).Find(&sources).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &CycleSummary{
		Cycle:       *cycle,
		Transfers:   paycycle.SummarizeTransfers(lines),
		Allocations: paycycle.SummarizeAllocations(lines),
		Income: paycycle.ProjectIncomeForCycle(
			cycle.StartDate, cycle.EndDate, models.EngineSources(sources), household.JointRatio),
	}, nil
}

// CreateFirstCycle creates the household's initial active cycle during
// onboarding. Fails when the household already has an active cycle or its
// recurrence settings are incomplete.
func (s *payCycleService) CreateFirstCycle(userID string, today time.Time) (*models.PayCycle, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if err := validateCycleConfig(household); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.PayCycle{}).
		Where("household_id = ? AND status = ?", household.ID, models.CycleStatusActive).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrActiveExists
	}

	cfg := household.CycleConfig()
	start := paycycle.CycleStartDate(cfg, today)
	end := paycycle.CycleEndDate(cfg, start)

	cycle, err := s.buildCycle(household, start, end, models.CycleStatusActive)
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(cycle).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cycle, nil
}

// CreateNextCycle creates a draft for the cycle after the active one,
// cloning recurring seeds with their due dates rolled forward.
func (s *payCycleService) CreateNextCycle(userID string, today time.Time) (*models.PayCycle, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	active, err := s.cycleByStatus(household.ID, models.CycleStatusActive, apperrors.ErrNoActiveCycle)
	if err != nil {
		return nil, err
	}

	var drafts int64
	if err := s.db.Model(&models.PayCycle{}).
		Where("household_id = ? AND status = ?", household.ID, models.CycleStatusDraft).
		Count(&drafts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if drafts > 0 {
		return nil, apperrors.ErrDraftExists
	}

	var draft *models.PayCycle
	err = s.db.Transaction(func(tx *gorm.DB) error {
		draft, err = s.buildNextCycle(tx, household, active, models.CycleStatusDraft)
		return err
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// buildNextCycle creates and persists the cycle following prev, cloning
// prev's recurring seeds into it. Runs inside the caller's transaction.
func (s *payCycleService) buildNextCycle(tx *gorm.DB, household *models.Household, prev *models.PayCycle, status models.PayCycleStatus) (*models.PayCycle, error) {
	cfg := prev.Config()
	start, end := paycycle.NextCycleDates(cfg, prev.EndDate)

	next, err := s.buildCycle(household, start, end, status)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(next).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var recurring []models.Seed
	if err := tx.Where("pay_cycle_id = ? AND is_recurring = ?", prev.ID, true).Find(&recurring).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range recurring {
		clone := cloneRecurringSeed(&recurring[i], next)
		if err := tx.Create(clone).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		next.Seeds = append(next.Seeds, *clone)
	}

	if err := recalc(tx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// cloneRecurringSeed copies a recurring seed into the next cycle with paid
// state reset and the due date rolled forward by one cycle.
func cloneRecurringSeed(src *models.Seed, next *models.PayCycle) *models.Seed {
	clone := &models.Seed{
		PayCycleID:       next.ID,
		HouseholdID:      src.HouseholdID,
		Name:             src.Name,
		Amount:           src.Amount,
		Type:             src.Type,
		PaymentSource:    src.PaymentSource,
		SplitRatio:       src.SplitRatio,
		UsesJointAccount: src.UsesJointAccount,
		AmountMe:         src.AmountMe,
		AmountPartner:    src.AmountPartner,
		IsRecurring:      true,
		LinkedPotID:      src.LinkedPotID,
		LinkedRepayID:    src.LinkedRepayID,
	}
	if src.DueDate != nil {
		due := rollDueDate(*src.DueDate, next)
		clone.DueDate = &due
	}
	return clone
}

// rollDueDate shifts a due date into the next cycle's window: 28 days for
// four-weekly cycles, one month otherwise, then clamped to the window.
func rollDueDate(due time.Time, next *models.PayCycle) time.Time {
	var rolled time.Time
	if next.PayCycleType == paycycle.RuleEvery4Weeks {
		rolled = due.AddDate(0, 0, 28)
	} else {
		rolled = due.AddDate(0, 1, 0)
	}
	rolled = paycycle.Midnight(rolled)
	if rolled.Before(next.StartDate) {
		return next.StartDate
	}
	if rolled.After(next.EndDate) {
		return next.EndDate
	}
	return rolled
}

// buildCycle assembles a cycle record with its income snapshot.
func (s *payCycleService) buildCycle(household *models.Household, start, end time.Time, status models.PayCycleStatus) (*models.PayCycle, error) {
	var sources []models.IncomeSource
	if err := s.db.Where("household_id = ?", household.ID).Find(&sources).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	income := paycycle.ProjectIncomeForCycle(start, end, models.EngineSources(sources), household.JointRatio)

	cycle := &models.PayCycle{
		HouseholdID:   household.ID,
		Name:          cycleName(household.PayCycleType, start, end),
		Status:        status,
		StartDate:     start,
		EndDate:       end,
		PayCycleType:  household.PayCycleType,
		PayDay:        household.PayDay,
		TotalIncome:   income.Total,
		MeIncome:      income.MeIncome,
		PartnerIncome: income.PartnerIncome,
	}
	return cycle, nil
}

// ResyncDraft refreshes the draft's recurring seeds from the active cycle.
// Seeds are matched by name and type: matches take the active seed's current
// amount and split, active recurring seeds missing from the draft are added.
// Draft-only seeds are left alone.
func (s *payCycleService) ResyncDraft(userID string) (*models.PayCycle, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	active, err := s.cycleByStatus(household.ID, models.CycleStatusActive, apperrors.ErrNoActiveCycle)
	if err != nil {
		return nil, err
	}
	draft, err := s.cycleByStatus(household.ID, models.CycleStatusDraft, apperrors.ErrNoDraftCycle)
	if err != nil {
		return nil, err
	}

	type key struct {
		name string
		typ  paycycle.SeedType
	}
	draftByKey := make(map[key]*models.Seed, len(draft.Seeds))
	for i := range draft.Seeds {
		d := &draft.Seeds[i]
		draftByKey[key{d.Name, d.Type}] = d
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range active.Seeds {
			src := &active.Seeds[i]
			if !src.IsRecurring {
				continue
			}
			if existing, ok := draftByKey[key{src.Name, src.Type}]; ok {
				updates := map[string]interface{}{
					"amount":             src.Amount,
					"payment_source":     src.PaymentSource,
					"split_ratio":        src.SplitRatio,
					"uses_joint_account": src.UsesJointAccount,
					"amount_me":          src.AmountMe,
					"amount_partner":     src.AmountPartner,
				}
				if err := tx.Model(existing).Updates(updates).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				continue
			}
			clone := cloneRecurringSeed(src, draft)
			if err := tx.Create(clone).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		var seeds []models.Seed
		if err := tx.Where("pay_cycle_id = ?", draft.ID).Find(&seeds).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		draft.Seeds = seeds
		return recalc(tx, draft)
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// StartNextCycle completes the active cycle, promotes the draft to active,
// and creates a fresh draft for the cycle after it.
func (s *payCycleService) StartNextCycle(userID string, today time.Time) (*models.PayCycle, error) {
	household, err := householdForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	active, err := s.cycleByStatus(household.ID, models.CycleStatusActive, apperrors.ErrNoActiveCycle)
	if err != nil {
		return nil, err
	}
	draft, err := s.cycleByStatus(household.ID, models.CycleStatusDraft, apperrors.ErrNoDraftCycle)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(active).Update("status", models.CycleStatusCompleted).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(draft).Update("status", models.CycleStatusActive).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		draft.Status = models.CycleStatusActive
		_, err := s.buildNextCycle(tx, household, draft, models.CycleStatusDraft)
		return err
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// CloseCycle locks a cycle's budget against edits.
func (s *payCycleService) CloseCycle(userID, cycleID string) (*models.PayCycle, error) {
	cycle, err := s.GetCycleByID(userID, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.IsLocked() {
		return cycle, nil
	}
	now := time.Now().UTC()
	if err := s.db.Model(cycle).Update("closed_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	cycle.ClosedAt = &now
	return cycle, nil
}

// UnlockCycle reopens a closed cycle's budget.
func (s *payCycleService) UnlockCycle(userID, cycleID string) (*models.PayCycle, error) {
	cycle, err := s.GetCycleByID(userID, cycleID)
	if err != nil {
		return nil, err
	}
	if !cycle.IsLocked() {
		return cycle, nil
	}
	if err := s.db.Model(cycle).Update("closed_at", nil).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	cycle.ClosedAt = nil
	return cycle, nil
}

// MarkOverdueCycles rolls over every active cycle whose end date has passed:
// the active is completed and the household's draft (or a freshly built
// cycle) becomes the new active. Returns how many households rolled over.
func (s *payCycleService) MarkOverdueCycles(asOf time.Time) (int, error) {
	asOf = paycycle.Midnight(asOf)

	var overdue []models.PayCycle
	if err := s.db.Where("status = ? AND end_date < ?", models.CycleStatusActive, asOf).Find(&overdue).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rolled := 0
	for i := range overdue {
		cycle := &overdue[i]

		var household models.Household
		if err := s.db.Where("id = ?", cycle.HouseholdID).First(&household).Error; err != nil {
			continue
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(cycle).Update("status", models.CycleStatusCompleted).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			var draft models.PayCycle
			err := tx.Where("household_id = ? AND status = ?", cycle.HouseholdID, models.CycleStatusDraft).First(&draft).Error
			if err == nil {
				return tx.Model(&draft).Update("status", models.CycleStatusActive).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			_, err = s.buildNextCycle(tx, &household, cycle, models.CycleStatusActive)
			return err
		})
		if err != nil {
			return rolled, err
		}
		rolled++
	}
	return rolled, nil
}

// RecalculateAllocations recomputes and persists a cycle's allocation columns
// from its current seeds.
func (s *payCycleService) RecalculateAllocations(cycleID string) error {
	var cycle models.PayCycle
	if err := s.db.Preload("Seeds").Where("id = ?", cycleID).First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCycleNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return recalc(s.db, &cycle)
}

// recalc persists the allocation snapshot for a cycle's loaded seeds.
func recalc(tx *gorm.DB, cycle *models.PayCycle) error {
	table := paycycle.SummarizeAllocations(models.SeedLines(cycle.Seeds))
	cycle.SetAllocations(table)
	if err := tx.Model(&models.PayCycle{}).Where("id = ?", cycle.ID).
		Select("total_allocated",
			"alloc_need_me", "alloc_need_partner", "alloc_need_joint",
			"alloc_want_me", "alloc_want_partner", "alloc_want_joint",
			"alloc_savings_me", "alloc_savings_partner", "alloc_savings_joint",
			"alloc_repay_me", "alloc_repay_partner", "alloc_repay_joint",
			"rem_need_me", "rem_need_partner", "rem_need_joint",
			"rem_want_me", "rem_want_partner", "rem_want_joint",
			"rem_savings_me", "rem_savings_partner", "rem_savings_joint",
			"rem_repay_me", "rem_repay_partner", "rem_repay_joint").
		Updates(cycle).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// validateCycleConfig checks the household carries everything its rule needs.
func validateCycleConfig(household *models.Household) error {
	switch household.PayCycleType {
	case paycycle.RuleSpecificDate:
		if household.PayDay == nil || *household.PayDay < 1 || *household.PayDay > 31 {
			return apperrors.ErrMissingCycleCfg
		}
	case paycycle.RuleEvery4Weeks:
		if household.AnchorDate == nil {
			return apperrors.ErrMissingCycleCfg
		}
	case paycycle.RuleLastWorkingDay:
	default:
		return apperrors.ErrMissingCycleCfg
	}
	return nil
}
