package client

import (
	"testing"
	"time"

	"taskBoard/internal/models/task"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheTask(title string) *task.Task {
	now := time.Now()
	return &task.Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    task.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestTaskCache_TTL тестирует протухание по времени
func TestTaskCache_TTL(t *testing.T) {
	current := time.Now()
	cache := newTaskCache(30 * time.Second)
	cache.now = func() time.Time { return current }

	gen := cache.beginFetch()
	require.True(t, cache.put([]*task.Task{cacheTask("a")}, gen))

	_, ok := cache.get()
	assert.True(t, ok, "свежий кэш валиден")
	assert.True(t, cache.isValid())

	// 29 секунд спустя - ещё валиден
	current = current.Add(29 * time.Second)
	_, ok = cache.get()
	assert.True(t, ok)

	// 30 секунд - протух
	current = current.Add(time.Second)
	_, ok = cache.get()
	assert.False(t, ok)
	assert.False(t, cache.isValid())

	// но snapshot для отката всё ещё доступен
	stale, ok := cache.snapshot()
	assert.True(t, ok)
	assert.Len(t, stale, 1)
}

// TestTaskCache_Invalidate тестирует явный сброс
func TestTaskCache_Invalidate(t *testing.T) {
	cache := newTaskCache(time.Minute)

	gen := cache.beginFetch()
	require.True(t, cache.put([]*task.Task{cacheTask("a")}, gen))

	cache.invalidate()

	_, ok := cache.get()
	assert.False(t, ok)
	_, ok = cache.snapshot()
	assert.False(t, ok, "после invalidate отката тоже нет")
}

// TestTaskCache_GenerationRace: медленная выборка, начатая до
// изменения кэша, не может записать устаревший результат
func TestTaskCache_GenerationRace(t *testing.T) {
	cache := newTaskCache(time.Minute)

	gen := cache.beginFetch()
	require.True(t, cache.put([]*task.Task{cacheTask("первая")}, gen))

	// стартует медленная выборка
	slowGen := cache.beginFetch()

	// пока она шла, задача удалена из кэша
	removed := cacheTask("удалённая")
	cache.add(removed)
	cache.remove(removed.ID)

	// медленная выборка вернула список, где задача ещё есть
	committed := cache.put([]*task.Task{cacheTask("первая"), removed}, slowGen)
	assert.False(t, committed, "устаревший результат должен быть отброшен")

	tasks, ok := cache.get()
	require.True(t, ok)
	require.Len(t, tasks, 1)
	assert.Equal(t, "первая", tasks[0].Title)
}

// TestTaskCache_Mutations тестирует add/replace/remove
func TestTaskCache_Mutations(t *testing.T) {
	cache := newTaskCache(time.Minute)

	t1 := cacheTask("первая")
	t2 := cacheTask("вторая")

	gen := cache.beginFetch()
	require.True(t, cache.put([]*task.Task{t1}, gen))

	// add вставляет в начало
	cache.add(t2)
	tasks, ok := cache.get()
	require.True(t, ok)
	require.Len(t, tasks, 2)
	assert.Equal(t, t2.ID, tasks[0].ID)

	// replace сохраняет порядок
	updated := t1.Clone()
	updated.Status = task.StatusClosed
	cache.replace(updated)
	tasks, _ = cache.get()
	assert.Equal(t, t2.ID, tasks[0].ID)
	assert.Equal(t, task.StatusClosed, tasks[1].Status)

	// remove убирает по id
	cache.remove(t2.ID)
	tasks, _ = cache.get()
	require.Len(t, tasks, 1)
	assert.Equal(t, t1.ID, tasks[0].ID)
}

// TestTaskCache_MutationsOnEmpty: пустой кэш мутациями не наполняется
func TestTaskCache_MutationsOnEmpty(t *testing.T) {
	cache := newTaskCache(time.Minute)

	cache.add(cacheTask("a"))
	cache.replace(cacheTask("b"))
	cache.remove(uuid.New())

	_, ok := cache.get()
	assert.False(t, ok, "кэш заполняется только полной выборкой")
}

// TestTaskCache_CopyOnRead: мутация полученного списка не портит кэш
func TestTaskCache_CopyOnRead(t *testing.T) {
	cache := newTaskCache(time.Minute)

	gen := cache.beginFetch()
	require.True(t, cache.put([]*task.Task{cacheTask("оригинал")}, gen))

	tasks, ok := cache.get()
	require.True(t, ok)
	tasks[0].Title = "испорчена"

	again, _ := cache.get()
	assert.Equal(t, "оригинал", again[0].Title)
}
