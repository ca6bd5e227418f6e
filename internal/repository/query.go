package repository

import (
	"taskBoard/internal/models/task"
)

const SortByCreatedAt = "created_at"
const SortByDueDate = "due_date"
const SortByUpdatedAt = "updated_at"
const SortByTitle = "title"
const SortByStatus = "status"

const SortOrderAsc = "asc"
const SortOrderDesc = "desc"

// QueryOptions - параметры расширенной выборки задач
type QueryOptions struct {
	Status    *task.Status
	SortBy    string
	SortOrder string
}

func ValidSortBy(field string) bool {
	switch field {
	case SortByCreatedAt, SortByDueDate, SortByUpdatedAt, SortByTitle, SortByStatus:
		return true
	}
	return false
}

func ValidSortOrder(order string) bool {
	return order == SortOrderAsc || order == SortOrderDesc
}
