package services

import (
	"context"
	"sort"
	"time"

	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
)

// In-memory repositories backing the service tests. They mirror the
// ownership semantics of the SQL layer: owner-scoped lookups treat a
// foreign task the same as a missing one.

type fakeUserRepository struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*models.User)}
}

func (f *fakeUserRepository) Insert(_ context.Context, email, passwordHash, role string) (*models.User, error) {
	if _, exists := f.users[email]; exists {
		return nil, repository.ErrEmailTaken
	}
	f.nextID++
	user := &models.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	f.users[email] = user
	return user, nil
}

func (f *fakeUserRepository) SelectByEmail(_ context.Context, email string) (*models.User, error) {
	user, exists := f.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeTaskRepository struct {
	tasks  map[int64]*models.Task
	nextID int64
	clock  time.Time
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{
		tasks: make(map[int64]*models.Task),
		clock: time.Now(),
	}
}

// tick keeps created_at strictly increasing so the newest-first
// ordering is deterministic.
func (f *fakeTaskRepository) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeTaskRepository) Insert(_ context.Context, userID int64, title, description, status string) (*models.Task, error) {
	f.nextID++
	now := f.tick()
	task := &models.Task{
		ID:          f.nextID,
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeTaskRepository) sortedDesc(filter func(*models.Task) bool) []*models.Task {
	var out []*models.Task
	for _, task := range f.tasks {
		if filter(task) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func paginate(tasks []*models.Task, page, limit int) []*models.Task {
	offset := (page - 1) * limit
	if offset >= len(tasks) {
		return nil
	}
	end := offset + limit
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[offset:end]
}

func (f *fakeTaskRepository) SelectPageByOwner(_ context.Context, userID int64, page, limit int) ([]*models.Task, int64, error) {
	owned := f.sortedDesc(func(t *models.Task) bool { return t.UserID == userID })
	return paginate(owned, page, limit), int64(len(owned)), nil
}

func (f *fakeTaskRepository) SelectOwned(_ context.Context, taskID, userID int64) (*models.Task, error) {
	task, exists := f.tasks[taskID]
	if !exists || task.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskRepository) UpdateOwned(_ context.Context, taskID, userID int64, update repository.TaskUpdate) (*models.Task, error) {
	task, exists := f.tasks[taskID]
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
	task.UpdatedAt = f.tick()
	return task, nil
}

func (f *fakeTaskRepository) DeleteOwned(_ context.Context, taskID, userID int64) error {
	task, exists := f.tasks[taskID]
	if !exists || task.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, taskID)
	return nil
}

func (f *fakeTaskRepository) SelectPage(_ context.Context, page, limit int) ([]*models.Task, int64, error) {
	all := f.sortedDesc(func(*models.Task) bool { return true })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (f *fakeTaskRepository) SelectAny(_ context.Context, taskID int64) (*models.Task, error) {
	task, exists := f.tasks[taskID]
	if !exists {
		return nil, repository.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskRepository) DeleteAny(_ context.Context, taskID int64) error {
	if _, exists := f.tasks[taskID]; !exists {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, taskID)
	return nil
}
