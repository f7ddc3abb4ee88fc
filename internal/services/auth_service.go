package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hextras/hextras-api/internal/constants"
	"github.com/hextras/hextras-api/internal/models"
	"github.com/hextras/hextras-api/internal/repository"
	"github.com/hextras/hextras-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrEmailRequired        = errors.New("email is required")
	ErrFullNameRequired     = errors.New("full name is required")
	ErrUnknownReferralCode  = errors.New("referral code not recognized")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	profileRepo repository.ProfileRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(profileRepo repository.ProfileRepository) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
	}
}

// SignupInput represents the required information to create a new account.
type SignupInput struct {
	Email        string
	Password     string
	FullName     string
	Phone        string
	ReferralCode string
}

// Signup creates a new profile, applying a referral code when present.
func (s *AuthService) Signup(input SignupInput) (*models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrFullNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.profileRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	var referrer *models.Profile
	if code := strings.TrimSpace(input.ReferralCode); code != "" {
		found, err := s.profileRepo.FindByReferralCode(code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownReferralCode
			}
			return nil, fmt.Errorf("failed to check referral code: %w", err)
		}
		referrer = found
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	referralCode, err := utils.GenerateReferralCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate referral code: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		ReferralCode: referralCode,
	}

	if err := s.profileRepo.CreateWithReferral(profile, referrer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to complete signup: %w", err)
	}

	return profile, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated profile.
func (s *AuthService) Login(input LoginInput) (*models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	profile, err := s.profileRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return profile, nil
}
