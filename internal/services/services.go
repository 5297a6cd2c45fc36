package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskhub/taskhub/internal/models"
)

var (
	// ErrInvalidCredentials is returned for a missing user and for a
	// wrong password alike, so login failures never reveal which
	// part was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailTaken   = errors.New("email already registered")
	ErrTaskNotFound = errors.New("task not found")

	// ErrStorage masks unexpected persistence failures; the cause is
	// logged but never surfaced to clients.
	ErrStorage = errors.New("storage error")
)

// ValidationError reports which field failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type AuthService interface {
	// Register creates a user with role "user" and a freshly hashed
	// password. The email is sanitized and lower-cased first; all
	// validation runs before any persistence attempt.
	//
	// It returns a *ValidationError for bad input, ErrEmailTaken for a
	// duplicate email and ErrStorage for persistence failure.
	Register(ctx context.Context, email, password string) (*models.User, error)

	// Login authenticates by email and password. It returns
	// ErrInvalidCredentials whether the user is missing or the
	// password does not match.
	Login(ctx context.Context, email, password string) (*models.User, error)
}

type TaskService interface {
	// Create inserts a task owned by userID. Title and description
	// are sanitized before validation; status defaults to pending.
	Create(ctx context.Context, userID int64, params CreateTaskParams) (*models.Task, error)

	// List returns one page of the user's tasks, newest first. Page
	// and limit are clamped (page to >=1, limit to 1..100, invalid
	// values fall back to 1 and 10) rather than rejected. Pages are
	// served from the listing cache inside its TTL.
	List(ctx context.Context, userID int64, page, limit int) (*TaskPage, error)

	// Get returns the task only when userID owns it; a task owned by
	// someone else comes back as ErrTaskNotFound.
	Get(ctx context.Context, taskID, userID int64) (*models.Task, error)

	// Update merges the supplied fields into an owned task. Each
	// supplied field is sanitized and re-validated.
	Update(ctx context.Context, taskID, userID int64, params UpdateTaskParams) (*models.Task, error)

	// Delete removes an owned task.
	Delete(ctx context.Context, taskID, userID int64) error

	// ListAll pages over every task regardless of owner. Reachable
	// only through admin-gated handlers; the service itself performs
	// no role check.
	ListAll(ctx context.Context, page, limit int) (*TaskPage, error)

	// DeleteAny removes a task without an ownership check.
	DeleteAny(ctx context.Context, taskID int64) error
}

type CreateTaskParams struct {
	Title       string
	Description string
	Status      string
}

// UpdateTaskParams is a partial update; nil fields stay untouched.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *string
}

type TaskPage struct {
	Tasks      []*models.Task
	Total      int64
	Page       int
	Limit      int
	TotalPages int64
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
