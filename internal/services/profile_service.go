package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hextras/hextras-api/internal/constants"
	"github.com/hextras/hextras-api/internal/models"
	"github.com/hextras/hextras-api/internal/repository"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

// RetryPolicy bounds the profile bootstrap retries. Injected so tests can
// collapse the delay.
type RetryPolicy struct {
	MaxRetries uint64
	Delay      time.Duration
}

// DefaultRetryPolicy absorbs store replication lag right after signup.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: constants.ProfileLoadMaxRetries,
		Delay:      constants.ProfileLoadRetryDelay,
	}
}

// ProfileService handles profile reads and edits.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	retry       RetryPolicy
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profileRepo repository.ProfileRepository, retry RetryPolicy) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		retry:       retry,
	}
}

// GetProfile retrieves a profile by ID without retrying.
func (s *ProfileService) GetProfile(id string) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}

// BootstrapProfile loads the freshly authenticated user's profile,
// retrying a bounded number of times with a fixed delay. The row may not
// be visible yet right after account creation. This is the only read in
// the system that retries; mutations never do.
func (s *ProfileService) BootstrapProfile(id string) (*models.Profile, error) {
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retry.Delay), s.retry.MaxRetries)

	profile, err := backoff.RetryWithData(func() (*models.Profile, error) {
		p, err := s.profileRepo.FindByID(id)
		if err != nil {
			return nil, err
		}
		return p, nil
	}, policy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return profile, nil
}

// UpdateProfileInput represents editable profile fields
type UpdateProfileInput struct {
	FullName *string
	Phone    *string
}

// UpdateProfile edits the caller's own contact fields. Reputation
// aggregates are never writable here.
func (s *ProfileService) UpdateProfile(id string, input UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.GetProfile(id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, ErrFullNameRequired
		}
		profile.FullName = name
	}
	if input.Phone != nil {
		profile.Phone = strings.TrimSpace(*input.Phone)
	}

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

// ListReferrals lists referrals made by the profile, newest first.
func (s *ProfileService) ListReferrals(referrerID string) ([]models.Referral, error) {
	referrals, err := s.profileRepo.ListReferrals(referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return referrals, nil
}
