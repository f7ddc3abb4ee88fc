package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hextras/hextras-api/internal/constants"
	"github.com/hextras/hextras-api/internal/database"
	"github.com/hextras/hextras-api/internal/models"
	"github.com/hextras/hextras-api/internal/repository"
	"github.com/hextras/hextras-api/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.Profile{},
		&models.Task{},
		&models.Application{},
		&models.Rating{},
		&models.Report{},
		&models.Referral{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	// Create handler without a change feed
	taskService := services.NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewProfileRepository(suite.db),
		repository.NewFeedbackRepository(suite.db),
		nil,
	)
	suite.handler = NewTaskHandler(taskService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestProfile(email string) *models.Profile {
	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hashedpassword",
		FullName:     "Test User",
		ReferralCode: "HX-" + uuid.NewString()[:8],
	}
	suite.db.Create(profile)
	return profile
}

func (suite *TaskHandlerTestSuite) createTestTask(title, creatorID string) *models.Task {
	task := &models.Task{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  "Test Description",
		Status:       models.TaskStatusOpen,
		LocationName: "Centro",
		CreatorID:    creatorID,
	}
	suite.db.Create(task)
	return task
}

func (suite *TaskHandlerTestSuite) assignTask(task *models.Task, workerID string) {
	now := time.Now()
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"status":      models.TaskStatusAssigned,
			"assignee_id": workerID,
			"assigned_at": now,
		}).Error)
	task.Status = models.TaskStatusAssigned
	task.AssigneeID = &workerID
	task.AssignedAt = &now
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

// Helper function to set task context (simulates LoadTask middleware)
func (suite *TaskHandlerTestSuite) setTaskContext(c *gin.Context, task models.Task) {
	c.Set(constants.ContextKeyTask, task)
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	user := suite.createTestProfile("test@example.com")
	task := suite.createTestTask("Mow the lawn", user.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "tasks")
	assert.Contains(suite.T(), response, "pagination")

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
	firstTask := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), task.Title, firstTask["title"])
}

// TestListTasks_StatusFilter tests filtering by lifecycle status
func (suite *TaskHandlerTestSuite) TestListTasks_StatusFilter() {
	user := suite.createTestProfile("test@example.com")
	worker := suite.createTestProfile("worker@example.com")
	suite.createTestTask("Open task", user.ID)
	assigned := suite.createTestTask("Assigned task", user.ID)
	suite.assignTask(assigned, worker.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)
	c.Request.URL.RawQuery = "status=assigned"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
	assert.Equal(suite.T(), "Assigned task", tasks[0].(map[string]interface{})["title"])
}

// TestListTasks_InvalidStatus tests an unknown status filter
func (suite *TaskHandlerTestSuite) TestListTasks_InvalidStatus() {
	user := suite.createTestProfile("test@example.com")

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)
	c.Request.URL.RawQuery = "status=bogus"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestProfile("test@example.com")

	body, _ := json.Marshal(map[string]interface{}{
		"title":         "Paint the fence",
		"description":   "White, two coats",
		"location_name": "Centro",
		"latitude":      40.4168,
		"longitude":     -3.7038,
	})

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Paint the fence", response["title"])
	assert.Equal(suite.T(), string(models.TaskStatusOpen), response["status"])
	assert.Nil(suite.T(), response["assignee_id"])
}

// TestCreateTask_CoordinatePairEnforced tests lone-coordinate rejection
func (suite *TaskHandlerTestSuite) TestCreateTask_CoordinatePairEnforced() {
	user := suite.createTestProfile("test@example.com")

	body, _ := json.Marshal(map[string]interface{}{
		"title":    "Paint the fence",
		"latitude": 40.4168,
	})

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTask_MissingTitle tests validation failure
func (suite *TaskHandlerTestSuite) TestCreateTask_MissingTitle() {
	user := suite.createTestProfile("test@example.com")

	body, _ := json.Marshal(map[string]interface{}{"description": "no title"})

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestClaimTask_Success tests a worker taking an open task
func (suite *TaskHandlerTestSuite) TestClaimTask_Success() {
	creator := suite.createTestProfile("creator@example.com")
	worker := suite.createTestProfile("worker@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/claim", nil, worker.ID)
	suite.setTaskContext(c, *task)

	suite.handler.ClaimTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), string(models.TaskStatusAssigned), response["status"])
	assert.Equal(suite.T(), worker.ID, response["assignee_id"])
}

// TestClaimTask_AlreadyTaken tests the lost-race response
func (suite *TaskHandlerTestSuite) TestClaimTask_AlreadyTaken() {
	creator := suite.createTestProfile("creator@example.com")
	first := suite.createTestProfile("first@example.com")
	second := suite.createTestProfile("second@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)
	suite.assignTask(task, first.ID)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/claim", nil, second.ID)
	suite.setTaskContext(c, *task)

	suite.handler.ClaimTask(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "TASK_UNAVAILABLE", response["code"])
}

// TestClaimTask_OwnTask tests creators cannot take their own task
func (suite *TaskHandlerTestSuite) TestClaimTask_OwnTask() {
	creator := suite.createTestProfile("creator@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/claim", nil, creator.ID)
	suite.setTaskContext(c, *task)

	suite.handler.ClaimTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestCompleteTask_Success tests the creator completing an assigned task
func (suite *TaskHandlerTestSuite) TestCompleteTask_Success() {
	creator := suite.createTestProfile("creator@example.com")
	worker := suite.createTestProfile("worker@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)
	suite.assignTask(task, worker.ID)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/complete", nil, creator.ID)
	suite.setTaskContext(c, *task)

	suite.handler.CompleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), string(models.TaskStatusCompleted), response["status"])
}

// TestCompleteTask_NotCreator tests only the creator may complete
func (suite *TaskHandlerTestSuite) TestCompleteTask_NotCreator() {
	creator := suite.createTestProfile("creator@example.com")
	worker := suite.createTestProfile("worker@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)
	suite.assignTask(task, worker.ID)

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/complete", nil, worker.ID)
	suite.setTaskContext(c, *task)

	suite.handler.CompleteTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestDeleteTask_Success tests deleting an unassigned task
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	creator := suite.createTestProfile("creator@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/"+task.ID, nil, creator.ID)
	suite.setTaskContext(c, *task)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestDeleteTask_Assigned tests deletion is refused once assigned
func (suite *TaskHandlerTestSuite) TestDeleteTask_Assigned() {
	creator := suite.createTestProfile("creator@example.com")
	worker := suite.createTestProfile("worker@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)
	suite.assignTask(task, worker.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/"+task.ID, nil, creator.ID)
	suite.setTaskContext(c, *task)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestRateTask_DuplicateConflict tests the duplicate-rating response
func (suite *TaskHandlerTestSuite) TestRateTask_DuplicateConflict() {
	creator := suite.createTestProfile("creator@example.com")
	worker := suite.createTestProfile("worker@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)
	suite.assignTask(task, worker.ID)
	now := time.Now()
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"status":       models.TaskStatusCompleted,
			"completed_at": now,
		}).Error)
	task.Status = models.TaskStatusCompleted

	body, _ := json.Marshal(map[string]interface{}{"stars": 5, "comment": "great"})

	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/ratings", body, creator.ID)
	suite.setTaskContext(c, *task)
	suite.handler.RateTask(c)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	c, w = suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/ratings", body, creator.ID)
	suite.setTaskContext(c, *task)
	suite.handler.RateTask(c)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "ALREADY_EXISTS", response["code"])
}

// TestApplyAndAccept_Flow tests the application round over HTTP
func (suite *TaskHandlerTestSuite) TestApplyAndAccept_Flow() {
	creator := suite.createTestProfile("creator@example.com")
	worker := suite.createTestProfile("worker@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)

	// Worker applies
	c, w := suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/applications", nil, worker.ID)
	suite.setTaskContext(c, *task)
	suite.handler.ApplyToTask(c)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var appResponse map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &appResponse))
	applicationID := appResponse["id"].(string)

	// Applying twice conflicts
	c, w = suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/applications", nil, worker.ID)
	suite.setTaskContext(c, *task)
	suite.handler.ApplyToTask(c)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	// Creator lists applications
	c, w = suite.createAuthContext("GET", "/api/tasks/"+task.ID+"/applications", nil, creator.ID)
	suite.setTaskContext(c, *task)
	suite.handler.ListApplications(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var listResponse map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &listResponse))
	assert.Len(suite.T(), listResponse["applications"], 1)

	// Creator accepts
	c, w = suite.createAuthContext("POST", "/api/tasks/"+task.ID+"/applications/"+applicationID+"/accept", nil, creator.ID)
	suite.setTaskContext(c, *task)
	c.Params = gin.Params{{Key: "application_id", Value: applicationID}}
	suite.handler.AcceptApplication(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var taskResponse map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &taskResponse))
	assert.Equal(suite.T(), string(models.TaskStatusAssigned), taskResponse["status"])
	assert.Equal(suite.T(), worker.ID, taskResponse["assignee_id"])
}

// TestListApplications_NotCreator tests applications stay private
func (suite *TaskHandlerTestSuite) TestListApplications_NotCreator() {
	creator := suite.createTestProfile("creator@example.com")
	worker := suite.createTestProfile("worker@example.com")
	task := suite.createTestTask("Mow the lawn", creator.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/"+task.ID+"/applications", nil, worker.ID)
	suite.setTaskContext(c, *task)

	suite.handler.ListApplications(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
