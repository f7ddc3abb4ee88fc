package models

import "time"

// Rating is an immutable evaluation of the counterpart for a completed
// task. At most one per (task, rater) pair.
type Rating struct {
	ID       string `gorm:"type:uuid;primarykey" json:"id"`
	TaskID   string `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_task_rater" json:"task_id"`
	RaterID  string `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_task_rater" json:"rater_id"`
	TargetID string `gorm:"type:uuid;not null;index" json:"target_id"`
	Stars    int    `gorm:"not null" json:"stars"`
	Comment  string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task   Task    `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Rater  Profile `gorm:"foreignKey:RaterID" json:"rater,omitempty"`
	Target Profile `gorm:"foreignKey:TargetID" json:"target,omitempty"`
}
