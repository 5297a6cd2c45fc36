package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/cache"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/internal/services"
	"github.com/taskhub/taskhub/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// In-memory repositories so the full stack (handlers, middleware,
// services, token issuer) runs against httptest without Postgres.

type memUserRepository struct {
	users  map[string]*models.User
	nextID int64
}

func (m *memUserRepository) Insert(_ context.Context, email, passwordHash, role string) (*models.User, error) {
	if _, exists := m.users[email]; exists {
		return nil, repository.ErrEmailTaken
	}
	m.nextID++
	user := &models.User{
		ID:           m.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	m.users[email] = user
	return user, nil
}

func (m *memUserRepository) SelectByEmail(_ context.Context, email string) (*models.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type memTaskRepository struct {
	tasks  map[int64]*models.Task
	nextID int64
	clock  time.Time
}

func (m *memTaskRepository) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memTaskRepository) Insert(_ context.Context, userID int64, title, description, status string) (*models.Task, error) {
	m.nextID++
	now := m.tick()
	task := &models.Task{
		ID:          m.nextID,
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.tasks[task.ID] = task
	return task, nil
}

func (m *memTaskRepository) page(filter func(*models.Task) bool, page, limit int) ([]*models.Task, int64) {
	var all []*models.Task
	for _, task := range m.tasks {
		if filter(task) {
			all = append(all, task)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total
}

func (m *memTaskRepository) SelectPageByOwner(_ context.Context, userID int64, page, limit int) ([]*models.Task, int64, error) {
	tasks, total := m.page(func(t *models.Task) bool { return t.UserID == userID }, page, limit)
	return tasks, total, nil
}

func (m *memTaskRepository) SelectOwned(_ context.Context, taskID, userID int64) (*models.Task, error) {
	task, exists := m.tasks[taskID]
	if !exists || task.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	return task, nil
}

func (m *memTaskRepository) UpdateOwned(_ context.Context, taskID, userID int64, update repository.TaskUpdate) (*models.Task, error) {
	task, exists := m.tasks[taskID]
	if !exists || task.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	task.UpdatedAt = m.tick()
	return task, nil
}

func (m *memTaskRepository) DeleteOwned(_ context.Context, taskID, userID int64) error {
	task, exists := m.tasks[taskID]
	if !exists || task.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(m.tasks, taskID)
	return nil
}

func (m *memTaskRepository) SelectPage(_ context.Context, page, limit int) ([]*models.Task, int64, error) {
	tasks, total := m.page(func(*models.Task) bool { return true }, page, limit)
	return tasks, total, nil
}

func (m *memTaskRepository) SelectAny(_ context.Context, taskID int64) (*models.Task, error) {
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, repository.ErrTaskNotFound
	}
	return task, nil
}

func (m *memTaskRepository) DeleteAny(_ context.Context, taskID int64) error {
	if _, exists := m.tasks[taskID]; !exists {
		return repository.ErrTaskNotFound
	}
	delete(m.tasks, taskID)
	return nil
}

type testEnv struct {
	router *gin.Engine
	tokens *token.Issuer
	users  *memUserRepository
}

// newTestEnv wires the handler over real services and in-memory
// repositories, mirroring the production route table.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	users := &memUserRepository{users: make(map[string]*models.User)}
	tasks := &memTaskRepository{tasks: make(map[int64]*models.Task), clock: time.Now()}

	tokens := token.NewIssuer("taskhub-test", []byte("test-signing-key"), time.Minute)
	listings := cache.NewListing(time.Minute)

	handler := New(
		logger,
		services.NewAuthService(logger, users),
		services.NewTaskService(logger, tasks, listings),
		tokens,
	)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1")

	authRouter := api.Group("/auth")
	authRouter.POST("/register", handler.HandleRegister)
	authRouter.POST("/login", handler.HandleLogin)

	taskRouter := api.Group("/tasks", handler.HandleAuthMiddleware)
	taskRouter.POST("", handler.HandleCreateTask)
	taskRouter.GET("", handler.HandleListTasks)
	taskRouter.GET("/:id", handler.HandleGetTask)
	taskRouter.PUT("/:id", handler.HandleUpdateTask)
	taskRouter.DELETE("/:id", handler.HandleDeleteTask)

	adminRouter := api.Group("/admin",
		handler.HandleAuthMiddleware,
		handler.RequireRole(models.RoleAdmin),
	)
	adminRouter.GET("/tasks", handler.HandleListAllTasks)
	adminRouter.DELETE("/tasks/:id", handler.HandleDeleteAnyTask)

	return &testEnv{
		router: router,
		tokens: tokens,
		users:  users,
	}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

// newRawRequest builds a listing request with an arbitrary
// Authorization header value, for malformed-header cases the regular
// helper can't express.
func newRawRequest(t *testing.T, env *testEnv, authorization string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req, httptest.NewRecorder()
}

func ginTestContext(recorder *httptest.ResponseRecorder, req *http.Request) (*gin.Context, *gin.Engine) {
	c, engine := gin.CreateTestContext(recorder)
	c.Request = req
	return c, engine
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}

// registerAndLogin drives the public endpoints and returns the bearer
// token plus the registered user's id.
func (e *testEnv) registerAndLogin(t *testing.T, email, pass string) (string, int64) {
	t.Helper()

	recorder := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"password": pass,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": pass,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	decoded := decodeJSON(t, recorder)
	tokenString, _ := decoded["token"].(string)
	require.NotEmpty(t, tokenString)

	user, _ := decoded["user"].(map[string]any)
	require.NotNil(t, user)
	return tokenString, int64(user["id"].(float64))
}

// adminToken promotes a registered user to admin directly in the
// store and issues a fresh token carrying the elevated role.
func (e *testEnv) adminToken(t *testing.T, email, pass string) string {
	t.Helper()

	_, userID := e.registerAndLogin(t, email, pass)
	e.users.users[email].Role = models.RoleAdmin

	signed, err := e.tokens.Issue(userID, models.RoleAdmin)
	require.NoError(t, err)
	return signed
}
