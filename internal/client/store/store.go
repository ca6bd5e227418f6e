// Package store хранит видимый интерфейсу снимок задач и статуса
// запроса. Переходы - чистая функция Reduce над помеченными
// действиями; сам Store не ходит в сеть и ничего не валидирует.
package store

import (
	"sync"

	"taskBoard/internal/models/task"

	"github.com/google/uuid"
)

// State - снимок состояния. Каждый переход строит новый снимок,
// прежний никогда не меняется на месте.
type State struct {
	Tasks   []*task.Task // новые задачи в начале
	Loading bool
	Error   string // пустая строка - ошибки нет
}

type Action interface {
	action()
}

type SetTasks struct{ Tasks []*task.Task }
type AddTask struct{ Task *task.Task }
type UpdateTask struct{ Task *task.Task }
type DeleteTask struct{ ID uuid.UUID }
type SetLoading struct{ Loading bool }
type SetError struct{ Message string }
type ClearError struct{}

func (SetTasks) action()   {}
func (AddTask) action()    {}
func (UpdateTask) action() {}
func (DeleteTask) action() {}
func (SetLoading) action() {}
func (SetError) action()   {}
func (ClearError) action() {}

// Reduce отображает (state, action) -> state без побочных эффектов
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case SetTasks:
		s.Tasks = task.CloneList(act.Tasks)
		s.Loading = false
		s.Error = ""
	case AddTask:
		tasks := make([]*task.Task, 0, len(s.Tasks)+1)
		tasks = append(tasks, act.Task.Clone())
		tasks = append(tasks, task.CloneList(s.Tasks)...)
		s.Tasks = tasks
		s.Loading = false
	case UpdateTask:
		tasks := make([]*task.Task, len(s.Tasks))
		for i, t := range s.Tasks {
			if t.ID == act.Task.ID {
				tasks[i] = act.Task.Clone()
			} else {
				tasks[i] = t.Clone()
			}
		}
		s.Tasks = tasks
	case DeleteTask:
		tasks := make([]*task.Task, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			if t.ID != act.ID {
				tasks = append(tasks, t.Clone())
			}
		}
		s.Tasks = tasks
	case SetLoading:
		s.Loading = act.Loading
	case SetError:
		s.Error = act.Message
		s.Loading = false
	case ClearError:
		s.Error = ""
	}
	return s
}

type Listener func(State)

// Store оборачивает Reduce мьютексом и рассылкой снимков подписчикам
type Store struct {
	mtx       sync.RWMutex
	state     State
	listeners []Listener
}

func New() *Store {
	return &Store{
		state: State{Tasks: []*task.Task{}},
	}
}

func (s *Store) Dispatch(a Action) {
	s.mtx.Lock()
	s.state = Reduce(s.state, a)
	snapshot := s.state
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mtx.Unlock()

	for _, listener := range listeners {
		if listener != nil {
			listener(snapshot)
		}
	}
}

// State возвращает текущий снимок
func (s *Store) State() State {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.state
}

// Subscribe регистрирует подписчика, он будет получать каждый
// новый снимок. Возвращает функцию отписки.
func (s *Store) Subscribe(listener Listener) func() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.listeners = append(s.listeners, listener)
	index := len(s.listeners) - 1

	return func() {
		s.mtx.Lock()
		defer s.mtx.Unlock()
		s.listeners[index] = nil
	}
}
