package client

import (
	"sync"
	"time"

	"taskBoard/internal/models/task"

	"github.com/google/uuid"
)

const DefaultCacheTTL = 30 * time.Second

// taskCache хранит последний подтверждённый сервером список задач.
// Каждая запись живёт не дольше ttl; любая инвалидация или мутация
// увеличивает поколение, и медленная выборка, начатая до этого,
// не сможет записать устаревший результат.
type taskCache struct {
	mtx        sync.Mutex
	tasks      []*task.Task
	populated  bool
	capturedAt time.Time
	ttl        time.Duration
	generation uint64
	now        func() time.Time
}

func newTaskCache(ttl time.Duration) *taskCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &taskCache{
		ttl: ttl,
		now: time.Now,
	}
}

// get возвращает копию списка, если кэш заполнен и не протух
func (c *taskCache) get() ([]*task.Task, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.populated || c.now().Sub(c.capturedAt) >= c.ttl {
		return nil, false
	}
	return task.CloneList(c.tasks), true
}

// snapshot возвращает список даже протухшим - для отката на старые
// данные при недоступном бэкенде
func (c *taskCache) snapshot() ([]*task.Task, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.populated {
		return nil, false
	}
	return task.CloneList(c.tasks), true
}

func (c *taskCache) isValid() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.populated && c.now().Sub(c.capturedAt) < c.ttl
}

// beginFetch фиксирует поколение перед сетевой выборкой
func (c *taskCache) beginFetch() uint64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.generation
}

// put записывает результат выборки, начатой на поколении fetchGen.
// Если кэш с тех пор менялся, результат отбрасывается.
func (c *taskCache) put(tasks []*task.Task, fetchGen uint64) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.generation != fetchGen {
		return false
	}

	c.tasks = task.CloneList(tasks)
	c.populated = true
	c.capturedAt = c.now()
	c.generation++
	return true
}

func (c *taskCache) invalidate() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.tasks = nil
	c.populated = false
	c.generation++
}

// add вставляет задачу в начало списка (новые - первые)
func (c *taskCache) add(t *task.Task) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.populated {
		return
	}
	c.tasks = append([]*task.Task{t.Clone()}, c.tasks...)
	c.generation++
}

// replace заменяет задачу с тем же id, порядок не меняется
func (c *taskCache) replace(t *task.Task) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.populated {
		return
	}
	for i, cached := range c.tasks {
		if cached.ID == t.ID {
			c.tasks[i] = t.Clone()
			break
		}
	}
	c.generation++
}

// remove убирает задачу по id
func (c *taskCache) remove(id uuid.UUID) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.populated {
		return
	}
	filtered := c.tasks[:0]
	for _, cached := range c.tasks {
		if cached.ID != id {
			filtered = append(filtered, cached)
		}
	}
	c.tasks = filtered
	c.generation++
}

// findByID ищет задачу в валидном кэше
func (c *taskCache) findByID(id uuid.UUID) (*task.Task, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.populated || c.now().Sub(c.capturedAt) >= c.ttl {
		return nil, false
	}
	for _, cached := range c.tasks {
		if cached.ID == id {
			return cached.Clone(), true
		}
	}
	return nil, false
}
