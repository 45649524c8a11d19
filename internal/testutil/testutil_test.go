package testutil_test

import (
	"testing"
	"time"

	"sprout/internal/errors"
	"sprout/internal/models"
	"sprout/internal/paycycle"
	"sprout/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "households", "pay_cycles", "seeds", "pots", "repayments", "income_sources", "telegram_links", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have a generated ID")
	}

	household := testutil.CreateTestHousehold(t, db, user)
	if user.HouseholdID == nil || *user.HouseholdID != household.ID {
		t.Fatal("owner should be attached to the household")
	}

	partner := testutil.AddTestPartner(t, db, household)
	if partner.Role != models.RolePartner {
		t.Errorf("expected partner role, got %s", partner.Role)
	}
	if !household.IsCouple {
		t.Error("household should be a couple after a partner joins")
	}

	cycle := testutil.CreateTestCycle(t, db, household,
		time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 22, 0, 0, 0, 0, time.UTC),
		models.CycleStatusActive)
	if cycle.Status != models.CycleStatusActive {
		t.Errorf("expected active cycle, got %s", cycle.Status)
	}

	seed := testutil.CreateTestSeed(t, db, cycle, paycycle.SeedTypeNeed, paycycle.SourceJoint, 10001)
	if seed.AmountMe+seed.AmountPartner != seed.Amount {
		t.Errorf("joint split must conserve: %d + %d != %d", seed.AmountMe, seed.AmountPartner, seed.Amount)
	}

	pot := testutil.CreateTestPot(t, db, household.ID, 120000)
	if pot.Status != models.PotStatusActive {
		t.Errorf("expected active pot, got %s", pot.Status)
	}

	rep := testutil.CreateTestRepayment(t, db, household.ID, 50000)
	if rep.CurrentBalance != 50000 {
		t.Errorf("expected balance 50000, got %d", rep.CurrentBalance)
	}

	src := testutil.CreateTestIncomeSource(t, db, household.ID, 250000, paycycle.SourceMe)
	if !src.IsActive {
		t.Error("expected active income source")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrCycleNotFound, "custom message")
	testutil.AssertAppError(t, err, "CYCLE_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
