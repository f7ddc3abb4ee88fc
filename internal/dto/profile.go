package dto

import (
	"time"

	"github.com/hextras/hextras-api/internal/models"
)

// ProfileDTO represents the caller's own profile in API responses
type ProfileDTO struct {
	ID                  string  `json:"id"`
	Email               string  `json:"email"`
	FullName            string  `json:"full_name"`
	Phone               string  `json:"phone,omitempty"`
	RatingAverage       float64 `json:"rating_average"`
	RatingCount         int     `json:"rating_count"`
	CompletedTasks      int     `json:"completed_tasks"`
	PublishedTasks      int     `json:"published_tasks"`
	Blocked             bool    `json:"blocked"`
	ReferralCode        string  `json:"referral_code"`
	SuccessfulReferrals int     `json:"successful_referrals"`
	HasReferralDiscount bool    `json:"has_referral_discount"`
}

// PublicProfileDTO represents another user's profile: identity and
// reputation only, no contact or referral data.
type PublicProfileDTO struct {
	ID             string  `json:"id"`
	FullName       string  `json:"full_name"`
	RatingAverage  float64 `json:"rating_average"`
	RatingCount    int     `json:"rating_count"`
	CompletedTasks int     `json:"completed_tasks"`
}

// ReferralDTO represents one referral in API responses
type ReferralDTO struct {
	ID        string            `json:"id"`
	Code      string            `json:"code"`
	Referred  *PublicProfileDTO `json:"referred,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// ToProfileDTO converts a Profile model to ProfileDTO
func ToProfileDTO(profile models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:                  profile.ID,
		Email:               profile.Email,
		FullName:            profile.FullName,
		Phone:               profile.Phone,
		RatingAverage:       profile.RatingAverage,
		RatingCount:         profile.RatingCount,
		CompletedTasks:      profile.CompletedTasks,
		PublishedTasks:      profile.PublishedTasks,
		Blocked:             profile.Blocked,
		ReferralCode:        profile.ReferralCode,
		SuccessfulReferrals: profile.SuccessfulReferrals,
		HasReferralDiscount: profile.HasReferralDiscount,
	}
}

// ToPublicProfileDTO converts a Profile model to PublicProfileDTO
func ToPublicProfileDTO(profile models.Profile) PublicProfileDTO {
	return PublicProfileDTO{
		ID:             profile.ID,
		FullName:       profile.FullName,
		RatingAverage:  profile.RatingAverage,
		RatingCount:    profile.RatingCount,
		CompletedTasks: profile.CompletedTasks,
	}
}

// ToReferralDTO converts a Referral model to ReferralDTO
func ToReferralDTO(referral models.Referral) ReferralDTO {
	dto := ReferralDTO{
		ID:        referral.ID,
		Code:      referral.Code,
		CreatedAt: referral.CreatedAt,
	}

	if referral.Referred.ID != "" {
		referred := ToPublicProfileDTO(referral.Referred)
		dto.Referred = &referred
	}

	return dto
}
