package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "sprout/internal/errors"
	"sprout/internal/models"
)

// householdForUser resolves the caller's household. Every domain service
// scopes its queries through this so one member can never read another
// household's data.
func householdForUser(db *gorm.DB, userID string) (*models.Household, error) {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.HouseholdID == nil {
		return nil, apperrors.ErrNotHouseholdMember
	}

	var household models.Household
	if err := db.Where("id = ?", *user.HouseholdID).First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &household, nil
}
