package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hextras/hextras-api/internal/dto"
	apierrors "github.com/hextras/hextras-api/internal/errors"
	"github.com/hextras/hextras-api/internal/middleware"
	"github.com/hextras/hextras-api/internal/models"
	"github.com/hextras/hextras-api/internal/services"
	"github.com/hextras/hextras-api/internal/utils"
)

// TaskHandler exposes the task lifecycle over HTTP.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns marketplace tasks matching the query filters
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		switch status {
		case models.TaskStatusOpen, models.TaskStatusAssigned,
			models.TaskStatusCompleted, models.TaskStatusRated, models.TaskStatusCancelled:
			input.Status = &status
		default:
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
	}
	if c.Query("mine") == "true" {
		input.CreatorID = &userID
	}
	if c.Query("assigned_to_me") == "true" {
		input.AssigneeID = &userID
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// ListMapMarkers returns open, coordinate-bearing tasks as map markers
func (h *TaskHandler) ListMapMarkers(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	open := models.TaskStatusOpen
	tasks, _, err := h.taskService.ListTasks(services.ListTasksInput{
		Status:       &open,
		WithLocation: true,
	})
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch map markers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"markers": dto.ToMapMarkerDTOs(tasks),
	})
}

// CreateTask creates a new open task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title        string     `json:"title" binding:"required"`
		Description  string     `json:"description"`
		LocationName string     `json:"location_name"`
		Address      *string    `json:"address"`
		Latitude     *float64   `json:"latitude"`
		Longitude    *float64   `json:"longitude"`
		ScheduledAt  *time.Time `json:"scheduled_at"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// Coordinates come as a pair or not at all
	if (req.Latitude == nil) != (req.Longitude == nil) {
		apierrors.BadRequest(c, "Latitude and longitude must be provided together")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		CreatorID:    userID,
		Title:        req.Title,
		Description:  req.Description,
		LocationName: req.LocationName,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ScheduledAt:  req.ScheduledAt,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by the LoadTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// ClaimTask atomically takes an open task for the calling worker
func (h *TaskHandler) ClaimTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	claimed, err := h.taskService.Claim(c.Request.Context(), task.ID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*claimed))
}

// CompleteTask marks an assigned task as completed
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	completed, err := h.taskService.Complete(c.Request.Context(), task.ID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*completed))
}

// CancelTask moves an open task to cancelled
func (h *TaskHandler) CancelTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	cancelled, err := h.taskService.Cancel(c.Request.Context(), task.ID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*cancelled))
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// RateTask records the caller's rating of the counterpart
func (h *TaskHandler) RateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type RateRequest struct {
		Stars   int    `json:"stars" binding:"required"`
		Comment string `json:"comment"`
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	rating, err := h.taskService.Rate(c.Request.Context(), services.RateTaskInput{
		TaskID:  task.ID,
		RaterID: userID,
		Stars:   req.Stars,
		Comment: req.Comment,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRatingDTO(*rating))
}

// ReportTask records a worker no-show report by the creator
func (h *TaskHandler) ReportTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type ReportRequest struct {
		Reason string `json:"reason" binding:"required"`
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	report, err := h.taskService.Report(c.Request.Context(), services.ReportTaskInput{
		TaskID:     task.ID,
		ReporterID: userID,
		Reason:     req.Reason,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      report.ID,
		"message": "Report recorded",
	})
}

// ApplyToTask records the caller's application for an open task
func (h *TaskHandler) ApplyToTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	app, err := h.taskService.Apply(c.Request.Context(), task.ID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToApplicationDTO(*app))
}

// ListApplications returns a task's pending applications to its creator
func (h *TaskHandler) ListApplications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	apps, err := h.taskService.ListApplications(task.ID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	result := make([]dto.ApplicationDTO, len(apps))
	for i, app := range apps {
		result[i] = dto.ToApplicationDTO(app)
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": result,
	})
}

// AcceptApplication assigns the task to the winning applicant
func (h *TaskHandler) AcceptApplication(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	applicationID := c.Param("application_id")
	if applicationID == "" {
		apierrors.BadRequest(c, "Invalid application ID")
		return
	}

	assigned, err := h.taskService.AcceptApplication(c.Request.Context(), task.ID, userID, applicationID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*assigned))
}

// respondTaskError maps lifecycle errors onto the API taxonomy. Races
// lost against a concurrent actor get their own codes so callers can show
// "no longer available" or "already ..." instead of a generic failure.
func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrApplicationMissing):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskUnavailable):
		apierrors.TaskUnavailable(c)
	case errors.Is(err, services.ErrAlreadyApplied),
		errors.Is(err, services.ErrAlreadyRated),
		errors.Is(err, services.ErrAlreadyReported):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrNotTaskCreator),
		errors.Is(err, services.ErrOwnTask),
		errors.Is(err, services.ErrProfileBlocked),
		errors.Is(err, services.ErrNotParticipant):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidStars),
		errors.Is(err, services.ErrTaskNotCompleted),
		errors.Is(err, services.ErrTaskNotAssigned),
		errors.Is(err, services.ErrTaskNotDeletable):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
