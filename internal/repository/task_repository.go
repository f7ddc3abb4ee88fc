package repository

import (
	"time"

	"github.com/hextras/hextras-api/internal/database"
	"github.com/hextras/hextras-api/internal/models"
	"github.com/hextras/hextras-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task and bumps the creator's published counter
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		return tx.Model(&models.Profile{}).
			Where("id = ?", task.CreatorID).
			UpdateColumn("published_tasks", gorm.Expr("published_tasks + 1")).Error
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.CreatorID != nil {
		query = query.Where("tasks.creator_id = ?", *filter.CreatorID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.WithLocation {
		query = query.Scopes(database.WithCoordinates)
	}
	if filter.ScheduledFrom != nil {
		query = query.Where("tasks.scheduled_at >= ?", *filter.ScheduledFrom)
	}
	if filter.ScheduledTo != nil {
		query = query.Where("tasks.scheduled_at < ?", *filter.ScheduledTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Preload("Creator").Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Claim performs the conditional assignment write. The predicate re-checks
// status and assignee at write time; a concurrent winner leaves zero rows
// for the loser to update.
func (r *GormTaskRepository) Claim(taskID, workerID string, at time.Time) error {
	res := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ? AND assignee_id IS NULL", taskID, models.TaskStatusOpen).
		Updates(map[string]interface{}{
			"status":      models.TaskStatusAssigned,
			"assignee_id": workerID,
			"assigned_at": at,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// Complete conditionally moves an assigned task to completed and rewards
// the assignee's completed-task counter.
func (r *GormTaskRepository) Complete(taskID, creatorID string, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND creator_id = ? AND status = ?", taskID, creatorID, models.TaskStatusAssigned).
			Updates(map[string]interface{}{
				"status":       models.TaskStatusCompleted,
				"completed_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPreconditionFailed
		}

		return tx.Model(&models.Profile{}).
			Where("id = (?)", tx.Model(&models.Task{}).Select("assignee_id").Where("id = ?", taskID)).
			UpdateColumn("completed_tasks", gorm.Expr("completed_tasks + 1")).Error
	})
}

// Cancel conditionally moves an open task to cancelled
func (r *GormTaskRepository) Cancel(taskID, creatorID string) error {
	res := r.db.Model(&models.Task{}).
		Where("id = ? AND creator_id = ? AND status = ?", taskID, creatorID, models.TaskStatusOpen).
		Update("status", models.TaskStatusCancelled)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// MarkRated flags a completed task as rated
func (r *GormTaskRepository) MarkRated(taskID string) error {
	return r.db.Model(&models.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status": models.TaskStatusRated,
			"rated":  true,
		}).Error
}

// Delete removes a task together with its applications
func (r *GormTaskRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("task_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, "id = ?", id).Error
	})
}

// CreateApplication inserts a pending application. A duplicate (task,
// worker) pair surfaces as gorm.ErrDuplicatedKey.
func (r *GormTaskRepository) CreateApplication(app *models.Application) error {
	return r.db.Create(app).Error
}

// FindApplication finds an application by task and worker
func (r *GormTaskRepository) FindApplication(taskID, workerID string) (*models.Application, error) {
	var app models.Application
	if err := r.db.Where("task_id = ? AND worker_id = ?", taskID, workerID).
		First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// ListApplications lists a task's applications by status, oldest first
func (r *GormTaskRepository) ListApplications(taskID string, status models.ApplicationStatus) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.Where("task_id = ? AND status = ?", taskID, status).
		Preload("Worker").
		Order("applied_at ASC").
		Find(&apps).Error
	return apps, err
}

// Accept resolves an application round: the task is assigned through the
// same conditional predicate as Claim, the winner's application is marked
// accepted and every other pending application rejected. One transaction,
// so a failed dependent write rolls the assignment back.
func (r *GormTaskRepository) Accept(taskID, workerID string, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ? AND assignee_id IS NULL", taskID, models.TaskStatusOpen).
			Updates(map[string]interface{}{
				"status":      models.TaskStatusAssigned,
				"assignee_id": workerID,
				"assigned_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPreconditionFailed
		}

		if err := tx.Model(&models.Application{}).
			Where("task_id = ? AND worker_id = ?", taskID, workerID).
			Update("status", models.ApplicationStatusAccepted).Error; err != nil {
			return err
		}

		return tx.Model(&models.Application{}).
			Where("task_id = ? AND worker_id <> ? AND status = ?", taskID, workerID, models.ApplicationStatusPending).
			Update("status", models.ApplicationStatusRejected).Error
	})
}
