package services

import (
	"time"

	"sprout/internal/models"
	"sprout/internal/pagination"
	"sprout/internal/paycycle"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// HouseholdUpdate holds optional household settings changes; nil fields are
// left untouched.
type HouseholdUpdate struct {
	Name          *string
	PartnerName   *string
	JointRatio    *float64
	Currency      *string
	TargetNeeds   *int
	TargetWants   *int
	TargetSavings *int
	TargetRepay   *int
	PayCycleType  *paycycle.Rule
	PayDay        *int
	AnchorDate    *time.Time
}

// HouseholdServicer defines the contract for household management.
type HouseholdServicer interface {
	CreateHousehold(userID, name string) (*models.Household, error)
	JoinHousehold(userID, inviteCode string) (*models.Household, error)
	GetUserHousehold(userID string) (*models.Household, error)
	UpdateSettings(userID string, update HouseholdUpdate) (*models.Household, error)
}

// CycleSummary is a cycle with engine-derived display data.
type CycleSummary struct {
	Cycle       models.PayCycle           `json:"cycle"`
	Transfers   paycycle.TransferSummary  `json:"transfers"`
	Allocations paycycle.AllocationTable  `json:"allocations"`
	Income      paycycle.IncomeProjection `json:"income"`
}

// PayCycleServicer defines the contract for pay cycle lifecycle management.
type PayCycleServicer interface {
	GetActiveCycle(userID string) (*models.PayCycle, error)
	GetDraftCycle(userID string) (*models.PayCycle, error)
	ListCycles(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.PayCycle], error)
	GetCycleByID(userID, cycleID string) (*models.PayCycle, error)
	GetCycleSummary(userID, cycleID string) (*CycleSummary, error)
	CreateFirstCycle(userID string, today time.Time) (*models.PayCycle, error)
	CreateNextCycle(userID string, today time.Time) (*models.PayCycle, error)
	ResyncDraft(userID string) (*models.PayCycle, error)
	StartNextCycle(userID string, today time.Time) (*models.PayCycle, error)
	CloseCycle(userID, cycleID string) (*models.PayCycle, error)
	UnlockCycle(userID, cycleID string) (*models.PayCycle, error)
	MarkOverdueCycles(asOf time.Time) (int, error)
	RecalculateAllocations(cycleID string) error
}

// SeedInput carries the fields for creating or updating a seed.
type SeedInput struct {
	Name             string
	Amount           int64
	Type             paycycle.SeedType
	PaymentSource    paycycle.PaymentSource
	SplitRatio       *float64
	UsesJointAccount bool
	IsRecurring      bool
	DueDate          *time.Time
	LinkedPotID      *string
	LinkedRepayID    *string
}

// SeedServicer defines the contract for seed (planned payment) management.
type SeedServicer interface {
	CreateSeed(userID, cycleID string, input SeedInput) (*models.Seed, error)
	GetCycleSeeds(userID, cycleID string) ([]models.Seed, error)
	GetSeedByID(userID, seedID string) (*models.Seed, error)
	UpdateSeed(userID, seedID string, input SeedInput) (*models.Seed, error)
	DeleteSeed(userID, seedID string) error
	MarkPaid(userID, seedID string, payer paycycle.Payer) (*models.Seed, error)
	UnmarkPaid(userID, seedID string, payer paycycle.Payer) (*models.Seed, error)
}

// PotForecast is the projection payload for a savings pot.
type PotForecast struct {
	Pot             models.Pot                 `json:"pot"`
	Trajectory      []paycycle.ProjectionPoint `json:"trajectory"`
	CyclesToGoal    int                        `json:"cycles_to_goal"`
	Reachable       bool                       `json:"reachable"`
	SuggestedAmount *int64                     `json:"suggested_amount,omitempty"`
	ProjectedEnd    *time.Time                 `json:"projected_end,omitempty"`
}

// PotServicer defines the contract for savings pot management.
type PotServicer interface {
	CreatePot(userID, name string, target int64, targetDate *time.Time) (*models.Pot, error)
	GetHouseholdPots(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Pot], error)
	GetPotByID(userID, potID string) (*models.Pot, error)
	UpdatePot(userID, potID string, name *string, target *int64, targetDate *time.Time, status *models.PotStatus) (*models.Pot, error)
	DeletePot(userID, potID string) error
	Forecast(userID, potID string, perCycle int64, today time.Time) (*PotForecast, error)
}

// RepaymentForecast is the projection payload for a debt.
type RepaymentForecast struct {
	Repayment       models.Repayment           `json:"repayment"`
	Trajectory      []paycycle.ProjectionPoint `json:"trajectory"`
	CyclesToClear   int                        `json:"cycles_to_clear"`
	Reachable       bool                       `json:"reachable"`
	SuggestedAmount *int64                     `json:"suggested_amount,omitempty"`
	ProjectedEnd    *time.Time                 `json:"projected_end,omitempty"`
}

// RepaymentServicer defines the contract for debt repayment management.
type RepaymentServicer interface {
	CreateRepayment(userID, name string, balance int64, interestRate *float64, targetDate *time.Time) (*models.Repayment, error)
	GetHouseholdRepayments(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Repayment], error)
	GetRepaymentByID(userID, repaymentID string) (*models.Repayment, error)
	UpdateRepayment(userID, repaymentID string, name *string, balance *int64, interestRate *float64, targetDate *time.Time, status *models.RepaymentStatus) (*models.Repayment, error)
	DeleteRepayment(userID, repaymentID string) error
	Forecast(userID, repaymentID string, perCycle int64, includeInterest bool, today time.Time) (*RepaymentForecast, error)
}

// IncomeSourceInput carries the fields for creating or updating a source.
type IncomeSourceInput struct {
	Name          string
	Amount        int64
	FrequencyRule paycycle.Rule
	DayOfMonth    *int
	AnchorDate    *time.Time
	PaymentSource paycycle.PaymentSource
	IsActive      *bool
}

// IncomeSourceServicer defines the contract for income source management.
type IncomeSourceServicer interface {
	CreateSource(userID string, input IncomeSourceInput) (*models.IncomeSource, error)
	GetHouseholdSources(userID string) ([]models.IncomeSource, error)
	GetSourceByID(userID, sourceID string) (*models.IncomeSource, error)
	UpdateSource(userID, sourceID string, input IncomeSourceInput) (*models.IncomeSource, error)
	DeleteSource(userID, sourceID string) error
	PreviewCycleEvents(userID, cycleID string) (*paycycle.IncomeProjection, error)
}

// TelegramServicer defines the contract for Telegram account linking.
type TelegramServicer interface {
	GenerateLinkCode(userID string) (string, time.Time, error)
	CompleteLink(code string, telegramUserID, chatID int64, username, firstName string) (*models.TelegramLink, error)
	GetLinkStatus(userID string) (*models.TelegramLink, error)
	Unlink(userID string) error
	ActiveLinksForHousehold(householdID string) ([]models.TelegramLink, error)
	RecordMessage(telegramUserID int64) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
