package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hextras/hextras-api/internal/constants"
	"github.com/hextras/hextras-api/internal/logger"
	"github.com/hextras/hextras-api/internal/models"
	"github.com/hextras/hextras-api/internal/realtime"
	"github.com/hextras/hextras-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskUnavailable    = errors.New("task is no longer available")
	ErrNotTaskCreator     = errors.New("only the task creator can perform this action")
	ErrOwnTask            = errors.New("creators cannot take their own task")
	ErrProfileBlocked     = errors.New("profile is blocked from taking tasks")
	ErrTitleRequired      = errors.New("title is required")
	ErrTaskNotDeletable   = errors.New("only tasks without an assignee can be deleted")
	ErrAlreadyApplied     = errors.New("worker already applied to this task")
	ErrApplicationMissing = errors.New("application not found")
	ErrAlreadyRated       = errors.New("task already rated by this user")
	ErrAlreadyReported    = errors.New("worker already reported for this task")
	ErrTaskNotCompleted   = errors.New("task must be completed before rating")
	ErrTaskNotAssigned    = errors.New("task has no assigned worker")
	ErrNotParticipant     = errors.New("only the creator or the assignee can rate this task")
	ErrInvalidStars       = errors.New("stars must be between 1 and 5")
)

const taskCollection = "tasks"

// TaskService is the task lifecycle controller: it drives every legal
// state transition of a task and its dependent records. Preconditions are
// checked defensively before any write, but correctness of the assignee
// slot rests on the repository's conditional writes alone.
type TaskService struct {
	taskRepo     repository.TaskRepository
	profileRepo  repository.ProfileRepository
	feedbackRepo repository.FeedbackRepository
	feed         realtime.Publisher
}

// NewTaskService creates a new TaskService. feed may be nil when the
// change feed is disabled.
func NewTaskService(
	taskRepo repository.TaskRepository,
	profileRepo repository.ProfileRepository,
	feedbackRepo repository.FeedbackRepository,
	feed realtime.Publisher,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		profileRepo:  profileRepo,
		feedbackRepo: feedbackRepo,
		feed:         feed,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	CreatorID    string
	Title        string
	Description  string
	LocationName string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	ScheduledAt  *time.Time
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status       *models.TaskStatus
	CreatorID    *string
	AssigneeID   *string
	WithLocation bool
	Page         int
	PageSize     int
}

// RateTaskInput represents input for rating the counterpart of a task
type RateTaskInput struct {
	TaskID  string
	RaterID string
	Stars   int
	Comment string
}

// ReportTaskInput represents input for reporting a worker no-show
type ReportTaskInput struct {
	TaskID     string
	ReporterID string
	Reason     string
}

// CreateTask creates a new open task
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	task := &models.Task{
		ID:           uuid.NewString(),
		CreatorID:    input.CreatorID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Status:       models.TaskStatusOpen,
		LocationName: input.LocationName,
		Address:      input.Address,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		ScheduledAt:  input.ScheduledAt,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created, err := s.taskRepo.FindByID(task.ID, "Creator")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(ctx, realtime.ChangeInsert, created)
	return created, nil
}

// ListTasks returns tasks matching the filters, newest first
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Status:       input.Status,
		CreatorID:    input.CreatorID,
		AssigneeID:   input.AssigneeID,
		WithLocation: input.WithLocation,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// Claim takes an open task for a worker. The precondition is checked
// twice: defensively here against the current row, then atomically by the
// repository's conditional write. Only the second check is authoritative;
// losing the race surfaces as ErrTaskUnavailable, never a generic error.
func (s *TaskService) Claim(ctx context.Context, taskID, workerID string) (*models.Task, error) {
	worker, err := s.profileRepo.FindByID(workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker profile: %w", err)
	}
	if worker.Blocked {
		return nil, ErrProfileBlocked
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.CreatorID == workerID {
		return nil, ErrOwnTask
	}
	if task.Status != models.TaskStatusOpen || task.AssigneeID != nil {
		return nil, ErrTaskUnavailable
	}

	if err := s.taskRepo.Claim(taskID, workerID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, ErrTaskUnavailable
		}
		return nil, fmt.Errorf("failed to claim task: %w", err)
	}

	claimed, err := s.taskRepo.FindByID(taskID, "Creator", "Assignee")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(ctx, realtime.ChangeUpdate, claimed)
	return claimed, nil
}

// Apply records a worker's bid on an open task
func (s *TaskService) Apply(ctx context.Context, taskID, workerID string) (*models.Application, error) {
	worker, err := s.profileRepo.FindByID(workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker profile: %w", err)
	}
	if worker.Blocked {
		return nil, ErrProfileBlocked
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.CreatorID == workerID {
		return nil, ErrOwnTask
	}
	if task.Status != models.TaskStatusOpen {
		return nil, ErrTaskUnavailable
	}

	app := &models.Application{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		WorkerID:  workerID,
		Status:    models.ApplicationStatusPending,
		AppliedAt: time.Now(),
	}

	if err := s.taskRepo.CreateApplication(app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return app, nil
}

// ListApplications returns a task's pending applications for its creator
func (s *TaskService) ListApplications(taskID, actorID string) ([]models.Application, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.CreatorID != actorID {
		return nil, ErrNotTaskCreator
	}

	return s.taskRepo.ListApplications(taskID, models.ApplicationStatusPending)
}

// AcceptApplication resolves an application round. The creator picks an
// applicant; among applicants with the same aggregate rating the tie-break
// prefers more completed tasks. The winner is assigned through the same
// conditional write as Claim, and every other pending application is
// rejected in the same unit of work.
func (s *TaskService) AcceptApplication(ctx context.Context, taskID, actorID, applicationID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.CreatorID != actorID {
		return nil, ErrNotTaskCreator
	}
	if task.Status != models.TaskStatusOpen {
		return nil, ErrTaskUnavailable
	}

	pending, err := s.taskRepo.ListApplications(taskID, models.ApplicationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	var chosen *models.Application
	for i := range pending {
		if pending[i].ID == applicationID {
			chosen = &pending[i]
			break
		}
	}
	if chosen == nil {
		return nil, ErrApplicationMissing
	}

	winner := SelectApplication(pending, *chosen)

	if err := s.taskRepo.Accept(taskID, winner.WorkerID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, ErrTaskUnavailable
		}
		return nil, fmt.Errorf("failed to accept application: %w", err)
	}

	assigned, err := s.taskRepo.FindByID(taskID, "Creator", "Assignee")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(ctx, realtime.ChangeUpdate, assigned)
	return assigned, nil
}

// Complete marks an assigned task completed on behalf of its creator
func (s *TaskService) Complete(ctx context.Context, taskID, actorID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.CreatorID != actorID {
		return nil, ErrNotTaskCreator
	}
	if task.Status != models.TaskStatusAssigned {
		return nil, ErrTaskUnavailable
	}

	if err := s.taskRepo.Complete(taskID, actorID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, ErrTaskUnavailable
		}
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	completed, err := s.taskRepo.FindByID(taskID, "Creator", "Assignee")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(ctx, realtime.ChangeUpdate, completed)
	return completed, nil
}

// Rate records one party's evaluation of the counterpart for a completed
// task. A duplicate (task, rater) pair surfaces as ErrAlreadyRated.
func (s *TaskService) Rate(ctx context.Context, input RateTaskInput) (*models.Rating, error) {
	if input.Stars < constants.MinStars || input.Stars > constants.MaxStars {
		return nil, ErrInvalidStars
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.Status != models.TaskStatusCompleted && task.Status != models.TaskStatusRated {
		return nil, ErrTaskNotCompleted
	}
	if task.AssigneeID == nil {
		return nil, ErrTaskNotAssigned
	}

	var targetID string
	switch input.RaterID {
	case task.CreatorID:
		targetID = *task.AssigneeID
	case *task.AssigneeID:
		targetID = task.CreatorID
	default:
		return nil, ErrNotParticipant
	}

	rating := &models.Rating{
		ID:       uuid.NewString(),
		TaskID:   input.TaskID,
		RaterID:  input.RaterID,
		TargetID: targetID,
		Stars:    input.Stars,
		Comment:  input.Comment,
	}

	if err := s.feedbackRepo.CreateRating(rating); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRated
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	// The creator's rating closes the lifecycle.
	if input.RaterID == task.CreatorID {
		if err := s.taskRepo.MarkRated(input.TaskID); err != nil {
			return nil, fmt.Errorf("failed to mark task rated: %w", err)
		}
		if rated, err := s.taskRepo.FindByID(input.TaskID, "Creator", "Assignee"); err == nil {
			s.publish(ctx, realtime.ChangeUpdate, rated)
		}
	}

	return rating, nil
}

// Report records a worker no-show by the creator of an assigned task
func (s *TaskService) Report(ctx context.Context, input ReportTaskInput) (*models.Report, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, errors.New("reason is required")
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.CreatorID != input.ReporterID {
		return nil, ErrNotTaskCreator
	}
	if task.AssigneeID == nil {
		return nil, ErrTaskNotAssigned
	}

	report := &models.Report{
		ID:         uuid.NewString(),
		TaskID:     input.TaskID,
		ReporterID: input.ReporterID,
		WorkerID:   *task.AssigneeID,
		Reason:     strings.TrimSpace(input.Reason),
	}

	if err := s.feedbackRepo.CreateReport(report); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReported
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return report, nil
}

// Cancel moves an open task to cancelled
func (s *TaskService) Cancel(ctx context.Context, taskID, actorID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.CreatorID != actorID {
		return nil, ErrNotTaskCreator
	}

	if err := s.taskRepo.Cancel(taskID, actorID); err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, ErrTaskUnavailable
		}
		return nil, fmt.Errorf("failed to cancel task: %w", err)
	}

	cancelled, err := s.taskRepo.FindByID(taskID, "Creator")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(ctx, realtime.ChangeUpdate, cancelled)
	return cancelled, nil
}

// DeleteTask removes a task. Creator-only, and only while no assignee
// exists; deletion is irreversible and takes the applications with it.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID string) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if task.CreatorID != actorID {
		return ErrNotTaskCreator
	}
	if task.AssigneeID != nil {
		return ErrTaskNotDeletable
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.publish(ctx, realtime.ChangeDelete, task)
	return nil
}

// publish pushes a task change event to the feed. Feed failures are
// logged, not surfaced: the write already succeeded and the store is the
// source of truth.
func (s *TaskService) publish(ctx context.Context, changeType realtime.ChangeType, task *models.Task) {
	if s.feed == nil {
		return
	}

	event, err := realtime.NewEvent(taskCollection, changeType, task)
	if err != nil {
		logger.Error("failed to encode change event", err)
		return
	}

	if err := s.feed.Publish(ctx, event); err != nil {
		logger.Error("failed to publish change event", err)
	}
}
