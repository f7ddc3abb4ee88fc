package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusRated     TaskStatus = "rated"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// HasAssignee reports whether a status implies a non-null assignee.
// Invariant: Task.AssigneeID is non-nil iff HasAssignee(Task.Status).
func (s TaskStatus) HasAssignee() bool {
	switch s {
	case TaskStatusAssigned, TaskStatusCompleted, TaskStatusRated:
		return true
	}
	return false
}

type Task struct {
	ID          string     `gorm:"type:uuid;primarykey" json:"id"`
	CreatorID   string     `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`

	// Location. LocationName is the free-text label shown on cards;
	// Address is the structured formatted address picked from geocoding.
	LocationName string   `gorm:"type:varchar(255)" json:"location_name"`
	Address      *string  `gorm:"type:varchar(500)" json:"address,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`

	AssigneeID  *string    `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Rated       bool       `gorm:"not null;default:false" json:"rated"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator      Profile       `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee     *Profile      `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Applications []Application `gorm:"foreignKey:TaskID" json:"applications,omitempty"`
}

// EntityKey identifies the task row in the change-feed cache.
func (t Task) EntityKey() string { return t.ID }

// EntityVersion orders change-feed snapshots of the same task.
func (t Task) EntityVersion() time.Time { return t.UpdatedAt }
