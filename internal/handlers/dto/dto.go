package dto

import (
	"time"

	"taskBoard/internal/models/task"
)

type CreateTaskRequest struct {
	Title    string     `json:"title"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Comments *string    `json:"comments,omitempty"`
}

type UpdateTaskRequest struct {
	Title    *string      `json:"title,omitempty"`
	DueDate  *time.Time   `json:"due_date,omitempty"`
	Comments *string      `json:"comments,omitempty"`
	Status   *task.Status `json:"status,omitempty"`
}

// DeleteTaskResponse - подтверждение мягкого удаления
type DeleteTaskResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}
