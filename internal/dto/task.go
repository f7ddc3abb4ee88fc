package dto

import (
	"time"

	"github.com/hextras/hextras-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       models.TaskStatus `json:"status"`
	LocationName string            `json:"location_name"`
	Address      *string           `json:"address,omitempty"`
	Latitude     *float64          `json:"latitude,omitempty"`
	Longitude    *float64          `json:"longitude,omitempty"`
	ScheduledAt  *time.Time        `json:"scheduled_at,omitempty"`
	CreatorID    string            `json:"creator_id"`
	AssigneeID   *string           `json:"assignee_id,omitempty"`
	AssignedAt   *time.Time        `json:"assigned_at,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	Rated        bool              `json:"rated"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Creator      *PublicProfileDTO `json:"creator,omitempty"`
	Assignee     *PublicProfileDTO `json:"assignee,omitempty"`
}

// ApplicationDTO represents an application in API responses
type ApplicationDTO struct {
	ID        string                   `json:"id"`
	TaskID    string                   `json:"task_id"`
	WorkerID  string                   `json:"worker_id"`
	Status    models.ApplicationStatus `json:"status"`
	AppliedAt time.Time                `json:"applied_at"`
	Worker    *PublicProfileDTO        `json:"worker,omitempty"`
}

// RatingDTO represents a rating in API responses
type RatingDTO struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	RaterID   string    `json:"rater_id"`
	TargetID  string    `json:"target_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MapMarkerDTO represents a task as a map marker: coordinates plus the
// label surfaced when the marker is activated.
type MapMarkerDTO struct {
	TaskID       string  `json:"task_id"`
	Title        string  `json:"title"`
	LocationName string  `json:"location_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		LocationName: task.LocationName,
		Address:      task.Address,
		Latitude:     task.Latitude,
		Longitude:    task.Longitude,
		ScheduledAt:  task.ScheduledAt,
		CreatorID:    task.CreatorID,
		AssigneeID:   task.AssigneeID,
		AssignedAt:   task.AssignedAt,
		CompletedAt:  task.CompletedAt,
		Rated:        task.Rated,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != "" {
		creator := ToPublicProfileDTO(task.Creator)
		dto.Creator = &creator
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != "" {
		assignee := ToPublicProfileDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskDTOs converts a slice of Task models
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}

// ToApplicationDTO converts an Application model to ApplicationDTO
func ToApplicationDTO(app models.Application) ApplicationDTO {
	dto := ApplicationDTO{
		ID:        app.ID,
		TaskID:    app.TaskID,
		WorkerID:  app.WorkerID,
		Status:    app.Status,
		AppliedAt: app.AppliedAt,
	}

	if app.Worker.ID != "" {
		worker := ToPublicProfileDTO(app.Worker)
		dto.Worker = &worker
	}

	return dto
}

// ToRatingDTO converts a Rating model to RatingDTO
func ToRatingDTO(rating models.Rating) RatingDTO {
	return RatingDTO{
		ID:        rating.ID,
		TaskID:    rating.TaskID,
		RaterID:   rating.RaterID,
		TargetID:  rating.TargetID,
		Stars:     rating.Stars,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt,
	}
}

// ToMapMarkerDTOs converts coordinate-bearing tasks to map markers
func ToMapMarkerDTOs(tasks []models.Task) []MapMarkerDTO {
	markers := make([]MapMarkerDTO, 0, len(tasks))
	for _, task := range tasks {
		if task.Latitude == nil || task.Longitude == nil {
			continue
		}
		markers = append(markers, MapMarkerDTO{
			TaskID:       task.ID,
			Title:        task.Title,
			LocationName: task.LocationName,
			Latitude:     *task.Latitude,
			Longitude:    *task.Longitude,
		})
	}
	return markers
}
