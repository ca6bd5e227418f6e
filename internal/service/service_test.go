package service_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"taskBoard/internal/repository"
	"taskBoard/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetAll(ctx context.Context, status *task.Status) ([]*task.Task, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Query(ctx context.Context, opts repository.QueryOptions) ([]*task.Task, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) DeleteSoft(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteFull(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) GetDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

func TestMain(m *testing.M) {
	if err := logger.Init(false); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// TestTaskService_HealthCheck тестирует HealthCheck
func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectError: false,
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_CreateTask тестирует создание задачи
func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	due := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name        string
		title       string
		dueDate     *time.Time
		comments    *string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name:  "success - minimal task",
			title: "Test Task",
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
					return t.Title == "Test Task" && t.Status == task.StatusOpen && t.ID != uuid.Nil
				})).Return(nil)
			},
		},
		{
			name:     "success - full task",
			title:    "  Test Task  ",
			dueDate:  &due,
			comments: strPtr("описание"),
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
					// лишние пробелы в заголовке обрезаются
					return t.Title == "Test Task" && t.DueDate != nil && t.Comments != nil
				})).Return(nil)
			},
		},
		{
			name:        "error - empty title",
			title:       "",
			setupMock:   func(m *MockTaskRepository) {},
			expectError: true,
		},
		{
			name:        "error - title too short",
			title:       "x",
			setupMock:   func(m *MockTaskRepository) {},
			expectError: true,
		},
		{
			name:        "error - whitespace only title",
			title:       "   ",
			setupMock:   func(m *MockTaskRepository) {},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			result, err := svc.CreateTask(ctx, tt.title, tt.dueDate, tt.comments)

			if tt.expectError {
				assert.Error(t, err)
				var bizErr *service.BusinessError
				assert.True(t, errors.As(err, &bizErr))
				assert.Equal(t, service.CodeValidation, bizErr.Code)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, result)
				assert.Equal(t, task.StatusOpen, result.Status)
				assert.NotEqual(t, uuid.Nil, result.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_CreateTask_EmptyComments: пустые комментарии
// нормализуются в nil
func TestTaskService_CreateTask_EmptyComments(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(tk *task.Task) bool {
		return tk.Comments == nil
	})).Return(nil)

	svc := service.NewTaskService(mockRepo)
	result, err := svc.CreateTask(context.Background(), "Test Task", nil, strPtr("   "))

	assert.NoError(t, err)
	assert.Nil(t, result.Comments)
	mockRepo.AssertExpectations(t)
}

// TestTaskService_GetTasks тестирует получение списка
func TestTaskService_GetTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("success - no filter", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		tasks := []*task.Task{
			{ID: uuid.New(), Title: "Task 1", Status: task.StatusOpen},
			{ID: uuid.New(), Title: "Task 2", Status: task.StatusClosed},
		}
		mockRepo.On("GetAll", mock.Anything, (*task.Status)(nil)).Return(tasks, nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.GetTasks(ctx, nil)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("success - filter by status", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		open := task.StatusOpen
		tasks := []*task.Task{{ID: uuid.New(), Status: task.StatusOpen}}
		mockRepo.On("GetAll", mock.Anything, &open).Return(tasks, nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.GetTasks(ctx, &open)

		assert.NoError(t, err)
		assert.Len(t, result, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - invalid status", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		bad := task.Status("Fancy")

		svc := service.NewTaskService(mockRepo)
		_, err := svc.GetTasks(ctx, &bad)

		assert.Error(t, err)
		var bizErr *service.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, service.CodeValidation, bizErr.Code)
		mockRepo.AssertExpectations(t)
	})
}

// TestTaskService_GetTaskByID тестирует получение задачи
func TestTaskService_GetTaskByID(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		existing := &task.Task{ID: taskID, Title: "Test Task", Status: task.StatusOpen}
		mockRepo.On("GetByID", mock.Anything, taskID).Return(existing, nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.GetTaskByID(ctx, taskID)

		assert.NoError(t, err)
		assert.Equal(t, taskID, result.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - not found", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(nil, repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.GetTaskByID(ctx, taskID)

		assert.Error(t, err)
		var bizErr *service.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, service.CodeNotFound, bizErr.Code)
		mockRepo.AssertExpectations(t)
	})
}

// TestTaskService_UpdateTask тестирует обновление задачи
func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	t.Run("success - partial update", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		existing := &task.Task{
			ID:     taskID,
			Title:  "Old Title",
			Status: task.StatusOpen,
		}

		mockRepo.On("GetByID", mock.Anything, taskID).Return(existing, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			return t.Title == "New Title" && t.Status == task.StatusInProgress
		})).Return(nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.UpdateTask(ctx, taskID,
			task.WithTitle("New Title"),
			task.WithStatus(task.StatusInProgress),
		)

		assert.NoError(t, err)
		assert.Equal(t, "New Title", result.Title)
		assert.Equal(t, task.StatusInProgress, result.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("success - unset fields keep their values", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		comments := "старый комментарий"
		existing := &task.Task{
			ID:       taskID,
			Title:    "Old Title",
			Comments: &comments,
			Status:   task.StatusOpen,
		}

		mockRepo.On("GetByID", mock.Anything, taskID).Return(existing, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			return t.Title == "Old Title" && t.Comments != nil && *t.Comments == comments
		})).Return(nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.UpdateTask(ctx, taskID, task.WithStatus(task.StatusBlocked))

		assert.NoError(t, err)
		assert.Equal(t, "Old Title", result.Title)
		assert.Equal(t, task.StatusBlocked, result.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - not found", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(nil, repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.UpdateTask(ctx, taskID, task.WithTitle("New Title"))

		assert.Error(t, err)
		var bizErr *service.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, service.CodeNotFound, bizErr.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - invalid status via option", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		existing := &task.Task{ID: taskID, Title: "Test Task", Status: task.StatusOpen}
		mockRepo.On("GetByID", mock.Anything, taskID).Return(existing, nil)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.UpdateTask(ctx, taskID, task.WithStatus(task.Status("Fancy")))

		assert.Error(t, err)
		var bizErr *service.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, service.CodeValidation, bizErr.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - title emptied via option", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		existing := &task.Task{ID: taskID, Title: "Test Task", Status: task.StatusOpen}
		mockRepo.On("GetByID", mock.Anything, taskID).Return(existing, nil)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.UpdateTask(ctx, taskID, task.WithTitle("  "))

		assert.Error(t, err)
		var bizErr *service.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, service.CodeValidation, bizErr.Code)
		mockRepo.AssertExpectations(t)
	})
}

// TestTaskService_DeleteTask тестирует мягкое удаление
func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("DeleteSoft", mock.Anything, taskID).Return(nil)

		svc := service.NewTaskService(mockRepo)
		err := svc.DeleteTask(ctx, taskID)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - not found", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("DeleteSoft", mock.Anything, taskID).Return(repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo)
		err := svc.DeleteTask(ctx, taskID)

		assert.Error(t, err)
		var bizErr *service.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, service.CodeNotFound, bizErr.Code)
		mockRepo.AssertExpectations(t)
	})
}

// TestTaskService_QueryTasks тестирует выборку с фильтром и сортировкой
func TestTaskService_QueryTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("success - defaults applied", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		tasks := []*task.Task{{ID: uuid.New(), Title: "Task 1"}}

		mockRepo.On("Query", mock.Anything, repository.QueryOptions{
			SortBy:    repository.SortByCreatedAt,
			SortOrder: repository.SortOrderDesc,
		}).Return(tasks, nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.QueryTasks(ctx, nil, "", "")

		assert.NoError(t, err)
		assert.Len(t, result, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("success - explicit sort", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		open := task.StatusOpen

		mockRepo.On("Query", mock.Anything, repository.QueryOptions{
			Status:    &open,
			SortBy:    repository.SortByDueDate,
			SortOrder: repository.SortOrderAsc,
		}).Return([]*task.Task{}, nil)

		svc := service.NewTaskService(mockRepo)
		// направление сортировки нечувствительно к регистру
		_, err := svc.QueryTasks(ctx, &open, "due_date", "ASC")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	tests := []struct {
		name      string
		status    *task.Status
		sortBy    string
		sortOrder string
	}{
		{name: "error - invalid sort_by", sortBy: "evil; DROP TABLE tasks"},
		{name: "error - invalid sort_order", sortBy: "title", sortOrder: "sideways"},
		{name: "error - invalid status", status: statusPtr("Fancy")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)

			svc := service.NewTaskService(mockRepo)
			_, err := svc.QueryTasks(ctx, tt.status, tt.sortBy, tt.sortOrder)

			assert.Error(t, err)
			var bizErr *service.BusinessError
			assert.True(t, errors.As(err, &bizErr))
			assert.Equal(t, service.CodeValidation, bizErr.Code)
			mockRepo.AssertExpectations(t)
		})
	}
}

func strPtr(s string) *string {
	return &s
}

func statusPtr(s task.Status) *task.Status {
	return &s
}
