package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hextras/hextras-api/internal/models"
	"gorm.io/gorm"
)

// GormProfileRepository is a GORM implementation of ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateProfile is returned when creating the profile fails inside the signup transaction.
	ErrCreateProfile = errors.New("profile repository: create profile failed")
	// ErrCreateReferral is returned when recording the referral fails inside the signup transaction.
	ErrCreateReferral = errors.New("profile repository: create referral failed")
)

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

// Create creates a new profile
func (r *GormProfileRepository) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

// CreateWithReferral creates the profile and applies the referral atomically.
// Both sides get the discount flag; the referrer's counter is bumped.
func (r *GormProfileRepository) CreateWithReferral(profile *models.Profile, referrer *models.Profile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if referrer != nil {
			profile.ReferredBy = &referrer.ID
			profile.HasReferralDiscount = true
		}

		if err := tx.Create(profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrCreateProfile, err)
		}

		if referrer == nil {
			return nil
		}

		referral := &models.Referral{
			ID:         uuid.NewString(),
			ReferrerID: referrer.ID,
			ReferredID: profile.ID,
			Code:       referrer.ReferralCode,
		}
		if err := tx.Create(referral).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateReferral, err)
		}

		return tx.Model(&models.Profile{}).
			Where("id = ?", referrer.ID).
			Updates(map[string]interface{}{
				"successful_referrals":  gorm.Expr("successful_referrals + 1"),
				"has_referral_discount": true,
			}).Error
	})
}

// FindByID finds a profile by ID
func (r *GormProfileRepository) FindByID(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByEmail finds a profile by email
func (r *GormProfileRepository) FindByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByReferralCode finds a profile by its referral code
func (r *GormProfileRepository) FindByReferralCode(code string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("referral_code = ?", code).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update persists profile field changes
func (r *GormProfileRepository) Update(profile *models.Profile) error {
	return r.db.Save(profile).Error
}

// ListReferrals lists referrals made by a profile, newest first
func (r *GormProfileRepository) ListReferrals(referrerID string) ([]models.Referral, error) {
	var referrals []models.Referral
	err := r.db.Where("referrer_id = ?", referrerID).
		Preload("Referred").
		Order("created_at DESC").
		Find(&referrals).Error
	return referrals, err
}
