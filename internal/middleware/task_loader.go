package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hextras/hextras-api/internal/constants"
	"github.com/hextras/hextras-api/internal/database"
	"github.com/hextras/hextras-api/internal/models"
)

// LoadTask resolves the task referenced by the :id parameter and stores
// it in the request context. Any authenticated user may view marketplace
// tasks; creator-only rules are enforced per operation.
func LoadTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")
		if taskID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
			c.Abort()
			return
		}

		if _, exists := GetUserID(c); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().
			Preload("Creator").
			Preload("Assignee").
			First(&task, "id = ?", taskID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by LoadTask from context
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}

	task, ok := value.(models.Task)
	return task, ok
}
