package models

import "time"

// Report records a creator-reported no-show by the assigned worker. At most
// one per (task, reporter) pair; each report counts against the worker's
// negative-rating threshold.
type Report struct {
	ID         string `gorm:"type:uuid;primarykey" json:"id"`
	TaskID     string `gorm:"type:uuid;not null;uniqueIndex:idx_reports_task_reporter" json:"task_id"`
	ReporterID string `gorm:"type:uuid;not null;uniqueIndex:idx_reports_task_reporter" json:"reporter_id"`
	WorkerID   string `gorm:"type:uuid;not null;index" json:"worker_id"`
	Reason     string `gorm:"type:text;not null" json:"reason"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task     Task    `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Reporter Profile `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Worker   Profile `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
}
