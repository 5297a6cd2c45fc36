package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/models"
)

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
}

// TaskRepository persists tasks. The owner-scoped operations filter on
// user_id in the WHERE clause, so a task owned by someone else is
// indistinguishable from a missing one.
type TaskRepository interface {
	Insert(ctx context.Context, userID int64, title, description, status string) (*models.Task, error)
	SelectPageByOwner(ctx context.Context, userID int64, page, limit int) ([]*models.Task, int64, error)
	SelectOwned(ctx context.Context, taskID, userID int64) (*models.Task, error)
	UpdateOwned(ctx context.Context, taskID, userID int64, update TaskUpdate) (*models.Task, error)
	DeleteOwned(ctx context.Context, taskID, userID int64) error

	SelectPage(ctx context.Context, page, limit int) ([]*models.Task, int64, error)
	SelectAny(ctx context.Context, taskID int64) (*models.Task, error)
	DeleteAny(ctx context.Context, taskID int64) error
}

type taskRepositoryImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTaskRepository(logger zerolog.Logger, pgPool *pgxpool.Pool) TaskRepository {
	return &taskRepositoryImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (r *taskRepositoryImpl) Insert(ctx context.Context, userID int64, title, description, status string) (*models.Task, error) {
	now := time.Now()
	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   status,
                   user_id,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	err := r.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		task.Title,
		task.Description,
		task.Status,
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	r.logger.Debug().
		Int64("task_id", task.ID).
		Int64("user_id", task.UserID).
		Msg("inserted task")

	return task, nil
}

func (r *taskRepositoryImpl) SelectPageByOwner(ctx context.Context, userID int64, page, limit int) ([]*models.Task, int64, error) {
	const countTasksByOwnerQuery = `
SELECT COUNT(*)
FROM tasks
WHERE user_id = $1
`
	var total int64
	err := r.pgPool.QueryRow(ctx, countTasksByOwnerQuery, userID).Scan(&total)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to count tasks by owner")
		return nil, 0, err
	}

	const selectTasksByOwnerQuery = `
SELECT id,
       title,
       description,
       status,
       created_at,
       updated_at
FROM tasks
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`
	rows, err := r.pgPool.Query(
		ctx,
		selectTasksByOwnerQuery,
		userID,
		limit,
		(page-1)*limit,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select tasks by owner")
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, limit)
	for rows.Next() {
		task := &models.Task{UserID: userID}
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, 0, err
	}
	r.logger.Debug().
		Int("count", len(tasks)).
		Int64("total", total).
		Int64("user_id", userID).
		Msg("selected tasks by owner")

	return tasks, total, nil
}

func (r *taskRepositoryImpl) SelectOwned(ctx context.Context, taskID, userID int64) (*models.Task, error) {
	task := &models.Task{
		ID:     taskID,
		UserID: userID,
	}

	const selectOwnedTaskQuery = `
SELECT title,
       description,
       status,
       created_at,
       updated_at
FROM tasks
WHERE id = $1 AND user_id = $2
`
	err := r.pgPool.QueryRow(
		ctx,
		selectOwnedTaskQuery,
		task.ID,
		task.UserID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to select owned task")
		return nil, err
	}
	r.logger.Debug().
		Int64("task_id", task.ID).
		Int64("user_id", task.UserID).
		Msg("selected owned task")

	return task, nil
}

func (r *taskRepositoryImpl) UpdateOwned(ctx context.Context, taskID, userID int64, update TaskUpdate) (*models.Task, error) {
	task := &models.Task{
		ID:        taskID,
		UserID:    userID,
		UpdatedAt: time.Now(),
	}

	const updateOwnedTaskQuery = `
UPDATE tasks
SET title = COALESCE($1, title),
    description = COALESCE($2, description),
    status = COALESCE($3, status),
    updated_at = $4
WHERE id = $5 AND user_id = $6
RETURNING title, description, status, created_at
`
	err := r.pgPool.QueryRow(
		ctx,
		updateOwnedTaskQuery,
		update.Title,
		update.Description,
		update.Status,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Status,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	r.logger.Debug().
		Int64("task_id", task.ID).
		Int64("user_id", task.UserID).
		Msg("updated task")

	return task, nil
}

func (r *taskRepositoryImpl) DeleteOwned(ctx context.Context, taskID, userID int64) error {
	const deleteOwnedTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := r.pgPool.Exec(ctx, deleteOwnedTaskQuery, taskID, userID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	r.logger.Debug().
		Int64("task_id", taskID).
		Int64("user_id", userID).
		Msg("deleted task")

	return nil
}

func (r *taskRepositoryImpl) SelectPage(ctx context.Context, page, limit int) ([]*models.Task, int64, error) {
	const countTasksQuery = `
SELECT COUNT(*)
FROM tasks
`
	var total int64
	err := r.pgPool.QueryRow(ctx, countTasksQuery).Scan(&total)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return nil, 0, err
	}

	const selectTasksQuery = `
SELECT id,
       title,
       description,
       status,
       user_id,
       created_at,
       updated_at
FROM tasks
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`
	rows, err := r.pgPool.Query(
		ctx,
		selectTasksQuery,
		limit,
		(page-1)*limit,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, limit)
	for rows.Next() {
		task := new(models.Task)
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.UserID,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, 0, err
	}
	r.logger.Debug().
		Int("count", len(tasks)).
		Int64("total", total).
		Msg("selected tasks")

	return tasks, total, nil
}

func (r *taskRepositoryImpl) SelectAny(ctx context.Context, taskID int64) (*models.Task, error) {
	task := &models.Task{ID: taskID}

	const selectAnyTaskQuery = `
SELECT title,
       description,
       status,
       user_id,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	err := r.pgPool.QueryRow(
		ctx,
		selectAnyTaskQuery,
		task.ID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Status,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to select task")
		return nil, err
	}

	return task, nil
}

func (r *taskRepositoryImpl) DeleteAny(ctx context.Context, taskID int64) error {
	const deleteAnyTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := r.pgPool.Exec(ctx, deleteAnyTaskQuery, taskID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	r.logger.Debug().
		Int64("task_id", taskID).
		Msg("deleted task")

	return nil
}
