package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/cache"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/internal/validation"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type taskServiceImpl struct {
	logger   zerolog.Logger
	tasks    repository.TaskRepository
	listings *cache.Listing
}

func NewTaskService(
	logger zerolog.Logger,
	tasks repository.TaskRepository,
	listings *cache.Listing,
) TaskService {
	return &taskServiceImpl{
		logger:   logger,
		tasks:    tasks,
		listings: listings,
	}
}

// clampPagination silently falls back to sane values instead of
// rejecting bad input.
func clampPagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}

func (s *taskServiceImpl) Create(ctx context.Context, userID int64, params CreateTaskParams) (*models.Task, error) {
	title := validation.Sanitize(params.Title)
	description := validation.Sanitize(params.Description)

	status := params.Status
	if status == "" {
		status = models.StatusPending
	}

	if ok, reason := validation.TaskTitle(title); !ok {
		return nil, newValidationError("title", reason)
	}
	if ok, reason := validation.TaskStatus(status); !ok {
		return nil, newValidationError("status", reason)
	}

	task, err := s.tasks.Insert(ctx, userID, title, description, status)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, storageError(err)
	}

	s.listings.Invalidate(userID)

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", userID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) List(ctx context.Context, userID int64, page, limit int) (*TaskPage, error) {
	page, limit = clampPagination(page, limit)

	if cached, ok := s.listings.Get(userID, page, limit); ok {
		if result, ok := cached.(*TaskPage); ok {
			s.logger.Debug().
				Int64("user_id", userID).
				Int("page", page).
				Msg("served task listing from cache")
			return result, nil
		}
	}

	tasks, total, err := s.tasks.SelectPageByOwner(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks by owner")
		return nil, storageError(err)
	}

	result := &TaskPage{
		Tasks:      tasks,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
	s.listings.Set(userID, page, limit, result)

	return result, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, taskID, userID int64) (*models.Task, error) {
	task, err := s.tasks.SelectOwned(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select owned task")
		return nil, storageError(err)
	}
	return task, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, taskID, userID int64, params UpdateTaskParams) (*models.Task, error) {
	update := repository.TaskUpdate{}

	if params.Title != nil {
		title := validation.Sanitize(*params.Title)
		if ok, reason := validation.TaskTitle(title); !ok {
			return nil, newValidationError("title", reason)
		}
		update.Title = &title
	}
	if params.Description != nil {
		description := validation.Sanitize(*params.Description)
		update.Description = &description
	}
	if params.Status != nil {
		if ok, reason := validation.TaskStatus(*params.Status); !ok {
			return nil, newValidationError("status", reason)
		}
		update.Status = params.Status
	}

	task, err := s.tasks.UpdateOwned(ctx, taskID, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to update task")
		return nil, storageError(err)
	}

	s.listings.Invalidate(userID)

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", userID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, taskID, userID int64) error {
	err := s.tasks.DeleteOwned(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return storageError(err)
	}

	s.listings.Invalidate(userID)

	s.logger.Info().
		Int64("task_id", taskID).
		Int64("user_id", userID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) ListAll(ctx context.Context, page, limit int) (*TaskPage, error) {
	page, limit = clampPagination(page, limit)

	if cached, ok := s.listings.Get(cache.AdminOwner, page, limit); ok {
		if result, ok := cached.(*TaskPage); ok {
			s.logger.Debug().
				Int("page", page).
				Msg("served admin task listing from cache")
			return result, nil
		}
	}

	tasks, total, err := s.tasks.SelectPage(ctx, page, limit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, storageError(err)
	}

	result := &TaskPage{
		Tasks:      tasks,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
	s.listings.Set(cache.AdminOwner, page, limit, result)

	return result, nil
}

func (s *taskServiceImpl) DeleteAny(ctx context.Context, taskID int64) error {
	// Resolve the owner first so their cached listings drop too.
	task, err := s.tasks.SelectAny(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select task")
		return storageError(err)
	}

	err = s.tasks.DeleteAny(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return storageError(err)
	}

	s.listings.Invalidate(task.UserID)

	s.logger.Info().
		Int64("task_id", taskID).
		Int64("owner_id", task.UserID).
		Msg("deleted task as admin")
	return nil
}
