package models

import (
	"time"

	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application is a worker's bid on an open task. At most one per
// (task, worker) pair, enforced by the composite unique index.
type Application struct {
	ID        string            `gorm:"type:uuid;primarykey" json:"id"`
	TaskID    string            `gorm:"type:uuid;not null;uniqueIndex:idx_applications_task_worker" json:"task_id"`
	WorkerID  string            `gorm:"type:uuid;not null;uniqueIndex:idx_applications_task_worker" json:"worker_id"`
	Status    ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AppliedAt time.Time         `json:"applied_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Task   Task    `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Worker Profile `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
}
