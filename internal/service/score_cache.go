// score_cache.go — LRU-кэш агрегатов отсутствий с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	scoreCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ag_score_cache_hits_total",
		Help: "Общее количество попаданий в кэш агрегатов отсутствий.",
	})
	scoreCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ag_score_cache_misses_total",
		Help: "Общее количество промахов кэша агрегатов отсутствий.",
	})
)

// ScoreCache — кэш агрегатов отсутствий по сотруднику.
// Запись сотрудника сбрасывается при открытии и изменении его случая.
//
// Расчёт агрегата идёт вне блокировки, поэтому между чтением случаев и
// записью в кэш возможен сброс. Begin фиксирует поколение сотрудника,
// Commit сохраняет агрегат, только если с тех пор сброса не было.
// Поколения хранятся лишь для сотрудников с незавершённым расчётом.
type ScoreCache struct {
	cache *expirable.LRU[string, model.AbsenceStats]

	mu       sync.Mutex
	gen      map[string]uint64
	inflight map[string]int
}

// NewScoreCache создаёт кэш с максимальным размером и TTL.
func NewScoreCache(maxSize int, ttl time.Duration) *ScoreCache {
	return &ScoreCache{
		cache:    expirable.NewLRU[string, model.AbsenceStats](maxSize, nil, ttl),
		gen:      make(map[string]uint64),
		inflight: make(map[string]int),
	}
}

// Get возвращает агрегат сотрудника.
func (c *ScoreCache) Get(employeeID string) (model.AbsenceStats, bool) {
	val, ok := c.cache.Get(employeeID)
	if ok {
		scoreCacheHitsTotal.Inc()
		return val, true
	}
	scoreCacheMissesTotal.Inc()
	return model.AbsenceStats{}, false
}

// Begin вызывается перед расчётом агрегата и возвращает текущее поколение.
// Каждому Begin соответствует ровно один Commit или Abort.
func (c *ScoreCache) Begin(employeeID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[employeeID]++
	return c.gen[employeeID]
}

// Commit сохраняет агрегат, если поколение не изменилось с Begin.
// Возвращает false, если агрегат устарел и отброшен.
func (c *ScoreCache) Commit(stats model.AbsenceStats, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	fresh := c.gen[stats.EmployeeID] == gen
	if fresh {
		c.cache.Add(stats.EmployeeID, stats)
	}
	c.release(stats.EmployeeID)
	return fresh
}

// Abort завершает расчёт без записи (ошибка чтения).
func (c *ScoreCache) Abort(employeeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release(employeeID)
}

// Invalidate удаляет агрегат сотрудника и отменяет запись
// незавершённых расчётов.
func (c *ScoreCache) Invalidate(employeeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[employeeID] > 0 {
		c.gen[employeeID]++
	}
	c.cache.Remove(employeeID)
}

// Len возвращает количество записей.
func (c *ScoreCache) Len() int {
	return c.cache.Len()
}

// release вызывается под c.mu.
func (c *ScoreCache) release(employeeID string) {
	c.inflight[employeeID]--
	if c.inflight[employeeID] <= 0 {
		delete(c.inflight, employeeID)
		delete(c.gen, employeeID)
	}
}
