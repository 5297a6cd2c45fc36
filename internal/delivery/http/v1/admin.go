package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlerImpl) HandleListAllTasks(c *gin.Context) {
	page, limit := paginationQuery(c)
	result, err := h.tasks.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskPageResponse(result))
}

func (h *handlerImpl) HandleDeleteAnyTask(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteAny(c.Request.Context(), taskID)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted successfully"})
}
