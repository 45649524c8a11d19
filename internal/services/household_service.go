package services

import (
	"crypto/rand"
	"errors"
	"math/big"

	"gorm.io/gorm"

	apperrors "sprout/internal/errors"
	"sprout/internal/models"
	"sprout/internal/paycycle"
)

const inviteCodeLength = 8

// inviteCodeAlphabet avoids ambiguous characters (0/O, 1/I).
const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// householdService handles household management.
type householdService struct {
	db *gorm.DB
}

// NewHouseholdService creates a new HouseholdServicer.
func NewHouseholdService(db *gorm.DB) HouseholdServicer {
	return &householdService{db: db}
}

func generateInviteCode() (string, error) {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// CreateHousehold creates a household with the user as owner.
func (s *householdService) CreateHousehold(userID, name string) (*models.Household, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.HouseholdID != nil {
		return nil, apperrors.ErrAlreadyInHousehold
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	household := &models.Household{
		Name:          name,
		JointRatio:    0.5,
		Currency:      "GBP",
		TargetNeeds:   50,
		TargetWants:   30,
		TargetSavings: 15,
		TargetRepay:   5,
		PayCycleType:  paycycle.RuleSpecificDate,
		InviteCode:    code,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(household).Error; err != nil {
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"household_id": household.ID,
			"role":         models.RoleOwner,
		}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return household, nil
}

// JoinHousehold adds a user to an existing household by invite code and
// flips the household to couple mode.
func (s *householdService) JoinHousehold(userID, inviteCode string) (*models.Household, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.HouseholdID != nil {
		return nil, apperrors.ErrAlreadyInHousehold
	}

	var household models.Household
	if err := s.db.Where("invite_code = ?", inviteCode).First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidInviteCode
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var members int64
	if err := s.db.Model(&models.User{}).Where("household_id = ?", household.ID).Count(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if members >= 2 {
		return nil, apperrors.ErrHouseholdFull
	}

	partnerName := user.FirstName
	if partnerName == "" {
		partnerName = user.Email
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"household_id": household.ID,
			"role":         models.RolePartner,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&household).Updates(map[string]interface{}{
			"is_couple":    true,
			"partner_name": partnerName,
		}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	household.IsCouple = true
	household.PartnerName = partnerName
	return &household, nil
}

// GetUserHousehold returns the household the user belongs to.
func (s *householdService) GetUserHousehold(userID string) (*models.Household, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.HouseholdID == nil {
		return nil, apperrors.ErrNotHouseholdMember
	}

	var household models.Household
	if err := s.db.Where("id = ?", *user.HouseholdID).First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &household, nil
}

// UpdateSettings applies partial household settings changes.
func (s *householdService) UpdateSettings(userID string, update HouseholdUpdate) (*models.Household, error) {
	household, err := s.GetUserHousehold(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.PartnerName != nil {
		updates["partner_name"] = *update.PartnerName
	}
	if update.JointRatio != nil {
		if *update.JointRatio < 0 || *update.JointRatio > 1 {
			return nil, apperrors.ErrInvalidJointRatio
		}
		updates["joint_ratio"] = *update.JointRatio
	}
	if update.Currency != nil {
		updates["currency"] = *update.Currency
	}
	if update.TargetNeeds != nil {
		updates["target_needs"] = *update.TargetNeeds
	}
	if update.TargetWants != nil {
		updates["target_wants"] = *update.TargetWants
	}
	if update.TargetSavings != nil {
		updates["target_savings"] = *update.TargetSavings
	}
	if update.TargetRepay != nil {
		updates["target_repay"] = *update.TargetRepay
	}
	if update.PayCycleType != nil {
		updates["pay_cycle_type"] = *update.PayCycleType
	}
	if update.PayDay != nil {
		updates["pay_day"] = *update.PayDay
	}
	if update.AnchorDate != nil {
		anchor := paycycle.Midnight(*update.AnchorDate)
		updates["anchor_date"] = anchor
	}

	if len(updates) > 0 {
		if err := s.db.Model(household).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return household, nil
}
