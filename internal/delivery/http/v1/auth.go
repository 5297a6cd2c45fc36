package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhub/taskhub/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind register request")
		abort(c, newBadRequestError("email and password are required"))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user registered successfully",
		"user":    newUserResponse(user),
	})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind login request")
		abort(c, newBadRequestError("email and password are required"))
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	signed, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to issue token")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": signed,
		"user":  newUserResponse(user),
	})
}
