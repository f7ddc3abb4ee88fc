package models

import "time"

// Referral records that one profile signed up with another's referral code.
type Referral struct {
	ID         string `gorm:"type:uuid;primarykey" json:"id"`
	ReferrerID string `gorm:"type:uuid;not null;index" json:"referrer_id"`
	ReferredID string `gorm:"type:uuid;not null;uniqueIndex" json:"referred_id"`
	Code       string `gorm:"type:varchar(20);not null" json:"code"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Referrer Profile `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	Referred Profile `gorm:"foreignKey:ReferredID" json:"referred,omitempty"`
}
