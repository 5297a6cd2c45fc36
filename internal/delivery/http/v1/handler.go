package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/services"
	"github.com/taskhub/taskhub/internal/token"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleListTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleListAllTasks(c *gin.Context)
	HandleDeleteAnyTask(c *gin.Context)

	HandleAuthMiddleware(c *gin.Context)
	RequireRole(role string) gin.HandlerFunc
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	tokens *token.Issuer
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	tokens *token.Issuer,
) Handler {
	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tasks:  taskService,
		tokens: tokens,
	}
}

// abortServiceError maps a service-layer error onto the response
// envelope. Only this layer translates error kinds into HTTP statuses.
func (h *handlerImpl) abortServiceError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		abort(c, newBadRequestError(vErr.Reason))
	case errors.Is(err, services.ErrEmailTaken):
		abort(c, newBadRequestError(services.ErrEmailTaken.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		abort(c, newUnauthorizedError(services.ErrInvalidCredentials.Error()))
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
	case errors.Is(err, services.ErrStorage):
		// The cause is already logged in the service; clients only
		// see the generic message.
		abort(c, newBadRequestError(services.ErrStorage.Error()))
	default:
		h.logger.Error().
			Err(err).
			Msg("unhandled service error")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
