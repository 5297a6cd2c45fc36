package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/services"
)

type taskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type taskPageResponse struct {
	Tasks      []taskResponse `json:"tasks"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int64          `json:"total_pages"`
}

func newTaskPageResponse(page *services.TaskPage) taskPageResponse {
	tasks := make([]taskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		tasks = append(tasks, newTaskResponse(task))
	}
	return taskPageResponse{
		Tasks:      tasks,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}
}

// taskIDParam parses the :id path segment. A non-numeric id is
// treated as a missing task, not a client syntax error.
func taskIDParam(c *gin.Context) (int64, bool) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		return 0, false
	}
	return taskID, true
}

func paginationQuery(c *gin.Context) (page, limit int) {
	// Clamping happens in the service; unparseable values fall
	// through as zero and clamp to the defaults there.
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind create task request")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "task created successfully",
		"task":    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	page, limit := paginationQuery(c)
	result, err := h.tasks.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskPageResponse(result))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), taskID, userID)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": newTaskResponse(task)})
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind update task request")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), taskID, userID, services.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "task updated successfully",
		"task":    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	err := h.tasks.Delete(c.Request.Context(), taskID, userID)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted successfully"})
}
