package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	DueDate   *time.Time `json:"due_date" db:"due_date"`
	Comments  *string    `json:"comments" db:"comments"`
	Status    Status     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type Status string

const StatusOpen Status = "Open"
const StatusInProgress Status = "In Progress"
const StatusBlocked Status = "Blocked"
const StatusClosed Status = "Closed"
const StatusDeleted Status = "Deleted"

// Statuses перечисляет все допустимые статусы задачи
func Statuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusBlocked, StatusClosed, StatusDeleted}
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusClosed, StatusDeleted:
		return true
	}
	return false
}

// Clone возвращает копию задачи, безопасную для изменения
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	copied := *t
	if t.DueDate != nil {
		due := *t.DueDate
		copied.DueDate = &due
	}
	if t.Comments != nil {
		comments := *t.Comments
		copied.Comments = &comments
	}
	return &copied
}

// CloneList копирует список задач (сами задачи тоже копируются)
func CloneList(tasks []*Task) []*Task {
	if tasks == nil {
		return nil
	}
	copied := make([]*Task, len(tasks))
	for i, t := range tasks {
		copied[i] = t.Clone()
	}
	return copied
}
