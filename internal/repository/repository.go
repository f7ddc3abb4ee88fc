package repository

import (
	"errors"
	"time"

	"github.com/hextras/hextras-api/internal/models"
)

// ErrPreconditionFailed is returned when a conditional write matched zero
// rows: the row no longer satisfied the predicate at write time. This is
// the signal that a concurrent actor won the race.
var ErrPreconditionFailed = errors.New("repository: conditional write matched no rows")

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	// Create creates a new profile
	Create(profile *models.Profile) error

	// CreateWithReferral creates a profile and, when referrer is non-nil,
	// the referral record plus both discount-flag updates, atomically.
	CreateWithReferral(profile *models.Profile, referrer *models.Profile) error

	// FindByID finds a profile by ID
	FindByID(id string) (*models.Profile, error)

	// FindByEmail finds a profile by email
	FindByEmail(email string) (*models.Profile, error)

	// FindByReferralCode finds a profile by its referral code
	FindByReferralCode(code string) (*models.Profile, error)

	// Update persists profile field changes
	Update(profile *models.Profile) error

	// ListReferrals lists referrals made by a profile, newest first
	ListReferrals(referrerID string) ([]models.Referral, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status        *models.TaskStatus
	CreatorID     *string
	AssigneeID    *string
	WithLocation  bool
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	Page          int
	PageSize      int
}

// TaskRepository defines the interface for task and application data access
type TaskRepository interface {
	// Create creates a new task and increments the creator's
	// published-task counter in the same transaction
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id string, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Claim atomically assigns an open, unassigned task to a worker.
	// Returns ErrPreconditionFailed when the task was already taken.
	Claim(taskID, workerID string, at time.Time) error

	// Complete atomically moves an assigned task to completed on behalf
	// of its creator and increments the assignee's completed-task count.
	// Returns ErrPreconditionFailed when the task is not assigned or the
	// actor is not the creator of the matched row.
	Complete(taskID, creatorID string, at time.Time) error

	// Cancel atomically moves an open task to cancelled.
	Cancel(taskID, creatorID string) error

	// MarkRated flags a task as rated by its creator
	MarkRated(taskID string) error

	// Delete removes a task and its applications
	Delete(id string) error

	// CreateApplication inserts a pending application
	CreateApplication(app *models.Application) error

	// FindApplication finds an application by task and worker
	FindApplication(taskID, workerID string) (*models.Application, error)

	// ListApplications lists applications for a task by status, with
	// worker profiles preloaded, oldest first
	ListApplications(taskID string, status models.ApplicationStatus) ([]models.Application, error)

	// Accept assigns the task to the chosen worker through the same
	// conditional write as Claim, marks that worker's application
	// accepted and every other pending application rejected, atomically.
	Accept(taskID, workerID string, at time.Time) error
}

// FeedbackRepository defines the interface for ratings and reports
type FeedbackRepository interface {
	// CreateRating inserts a rating and folds it into the target's
	// aggregates in the same transaction
	CreateRating(rating *models.Rating) error

	// ListRatingsFor lists ratings received by a profile, newest first
	ListRatingsFor(targetID string) ([]models.Rating, error)

	// CreateReport inserts a no-show report, increments the worker's
	// negative-rating count and blocks the profile once the threshold
	// is crossed, in the same transaction
	CreateReport(report *models.Report) error
}
