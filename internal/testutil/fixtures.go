package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"sprout/internal/models"
	"sprout/internal/paycycle"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHousehold creates a household owned by the given user, with a
// specific-date rule paying on the 25th.
func CreateTestHousehold(t *testing.T, db *gorm.DB, owner *models.User) *models.Household {
	t.Helper()

	payDay := 25
	household := &models.Household{
		Name:          fmt.Sprintf("Test Household %d", nextID()),
		JointRatio:    0.5,
		Currency:      "GBP",
		TargetNeeds:   50,
		TargetWants:   30,
		TargetSavings: 15,
		TargetRepay:   5,
		PayCycleType:  paycycle.RuleSpecificDate,
		PayDay:        &payDay,
		InviteCode:    fmt.Sprintf("TESTCD%02d", nextID()%100),
	}
	if err := db.Create(household).Error; err != nil {
		t.Fatalf("failed to create test household: %v", err)
	}

	if err := db.Model(owner).Updates(map[string]interface{}{
		"household_id": household.ID,
		"role":         models.RoleOwner,
	}).Error; err != nil {
		t.Fatalf("failed to attach owner to household: %v", err)
	}
	owner.HouseholdID = &household.ID
	owner.Role = models.RoleOwner
	return household
}

// AddTestPartner creates a second user and joins them to the household.
func AddTestPartner(t *testing.T, db *gorm.DB, household *models.Household) *models.User {
	t.Helper()

	partner := CreateTestUser(t, db)
	if err := db.Model(partner).Updates(map[string]interface{}{
		"household_id": household.ID,
		"role":         models.RolePartner,
	}).Error; err != nil {
		t.Fatalf("failed to attach partner to household: %v", err)
	}
	if err := db.Model(household).Updates(map[string]interface{}{
		"is_couple":    true,
		"partner_name": partner.FirstName,
	}).Error; err != nil {
		t.Fatalf("failed to flip household to couple: %v", err)
	}
	partner.HouseholdID = &household.ID
	partner.Role = models.RolePartner
	household.IsCouple = true
	return partner
}

// CreateTestCycle creates an active cycle for the household covering the
// given window.
func CreateTestCycle(t *testing.T, db *gorm.DB, household *models.Household, start, end time.Time, status models.PayCycleStatus) *models.PayCycle {
	t.Helper()

	cycle := &models.PayCycle{
		HouseholdID:  household.ID,
		Name:         start.Format("January 2006"),
		Status:       status,
		StartDate:    paycycle.Midnight(start),
		EndDate:      paycycle.Midnight(end),
		PayCycleType: household.PayCycleType,
		PayDay:       household.PayDay,
	}
	if err := db.Create(cycle).Error; err != nil {
		t.Fatalf("failed to create test cycle: %v", err)
	}
	return cycle
}

// CreateTestSeed creates a seed in the given cycle.
func CreateTestSeed(t *testing.T, db *gorm.DB, cycle *models.PayCycle, seedType paycycle.SeedType, source paycycle.PaymentSource, amount int64) *models.Seed {
	t.Helper()

	seed := &models.Seed{
		PayCycleID:    cycle.ID,
		HouseholdID:   cycle.HouseholdID,
		Name:          fmt.Sprintf("Test Seed %d", nextID()),
		Amount:        amount,
		Type:          seedType,
		PaymentSource: source,
	}
	if source == paycycle.SourceJoint {
		seed.AmountMe, seed.AmountPartner = paycycle.SplitJointAmount(amount, 0.5)
	}
	if err := db.Create(seed).Error; err != nil {
		t.Fatalf("failed to create test seed: %v", err)
	}
	return seed
}

// CreateTestPot creates an active pot with the given target.
func CreateTestPot(t *testing.T, db *gorm.DB, householdID string, target int64) *models.Pot {
	t.Helper()

	pot := &models.Pot{
		HouseholdID:  householdID,
		Name:         fmt.Sprintf("Test Pot %d", nextID()),
		TargetAmount: target,
		Status:       models.PotStatusActive,
	}
	if err := db.Create(pot).Error; err != nil {
		t.Fatalf("failed to create test pot: %v", err)
	}
	return pot
}

// CreateTestRepayment creates an active repayment with the given balance.
func CreateTestRepayment(t *testing.T, db *gorm.DB, householdID string, balance int64) *models.Repayment {
	t.Helper()

	rep := &models.Repayment{
		HouseholdID:     householdID,
		Name:            fmt.Sprintf("Test Repayment %d", nextID()),
		StartingBalance: balance,
		CurrentBalance:  balance,
		Status:          models.RepaymentStatusActive,
	}
	if err := db.Create(rep).Error; err != nil {
		t.Fatalf("failed to create test repayment: %v", err)
	}
	return rep
}

// CreateTestIncomeSource creates a monthly income source paid on the 25th.
func CreateTestIncomeSource(t *testing.T, db *gorm.DB, householdID string, amount int64, source paycycle.PaymentSource) *models.IncomeSource {
	t.Helper()

	day := 25
	src := &models.IncomeSource{
		HouseholdID:   householdID,
		Name:          fmt.Sprintf("Test Income %d", nextID()),
		Amount:        amount,
		FrequencyRule: paycycle.RuleSpecificDate,
		DayOfMonth:    &day,
		PaymentSource: source,
		IsActive:      true,
	}
	if err := db.Create(src).Error; err != nil {
		t.Fatalf("failed to create test income source: %v", err)
	}
	return src
}
