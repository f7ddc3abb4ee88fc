package models

import (
	"time"

	"gorm.io/gorm"
)

// NegativeRatingThreshold is the number of no-show reports after which a
// profile is blocked from claiming tasks.
const NegativeRatingThreshold = 3

type Profile struct {
	ID           string `gorm:"type:uuid;primarykey" json:"id"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone        string `gorm:"type:varchar(50)" json:"phone"`

	// Reputation aggregates. Maintained only inside rating/report
	// transactions, never written from request payloads.
	RatingAverage   float64 `gorm:"not null;default:0" json:"rating_average"`
	RatingCount     int     `gorm:"not null;default:0" json:"rating_count"`
	NegativeRatings int     `gorm:"not null;default:0" json:"negative_ratings"`
	CompletedTasks  int     `gorm:"not null;default:0" json:"completed_tasks"`
	PublishedTasks  int     `gorm:"not null;default:0" json:"published_tasks"`
	Blocked         bool    `gorm:"not null;default:false" json:"blocked"`

	ReferralCode        string  `gorm:"type:varchar(20);uniqueIndex;not null" json:"referral_code"`
	ReferredBy          *string `gorm:"type:uuid" json:"referred_by,omitempty"`
	SuccessfulReferrals int     `gorm:"not null;default:0" json:"successful_referrals"`
	HasReferralDiscount bool    `gorm:"not null;default:false" json:"has_referral_discount"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	CreatedTasks  []Task        `gorm:"foreignKey:CreatorID" json:"-"`
	AssignedTasks []Task        `gorm:"foreignKey:AssigneeID" json:"-"`
	Applications  []Application `gorm:"foreignKey:WorkerID" json:"-"`
}
