package service

import (
	"testing"
	"time"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// put сохраняет агрегат без конкурирующих сбросов.
func put(t *testing.T, cache *ScoreCache, stats model.AbsenceStats) {
	t.Helper()
	if !cache.Commit(stats, cache.Begin(stats.EmployeeID)) {
		t.Fatalf("Commit(%s) отклонён без сброса", stats.EmployeeID)
	}
}

// TestScoreCache_GetCommit проверяет базовые операции Get/Begin/Commit.
func TestScoreCache_GetCommit(t *testing.T) {
	cache := NewScoreCache(100, 5*time.Minute)

	if _, ok := cache.Get("emp-1"); ok {
		t.Fatal("ожидался cache miss для нового ключа")
	}

	put(t, cache, model.AbsenceStats{EmployeeID: "emp-1", Occurrences: 3, TotalDays: 7})
	got, ok := cache.Get("emp-1")
	if !ok {
		t.Fatal("ожидался cache hit после Commit")
	}
	if got.Occurrences != 3 || got.TotalDays != 7 {
		t.Errorf("получено %+v", got)
	}
}

// TestScoreCache_Invalidate проверяет сброс записи сотрудника.
func TestScoreCache_Invalidate(t *testing.T) {
	cache := NewScoreCache(100, 5*time.Minute)
	put(t, cache, model.AbsenceStats{EmployeeID: "emp-1"})
	put(t, cache, model.AbsenceStats{EmployeeID: "emp-2"})

	cache.Invalidate("emp-1")

	if _, ok := cache.Get("emp-1"); ok {
		t.Error("ожидался cache miss после Invalidate")
	}
	if _, ok := cache.Get("emp-2"); !ok {
		t.Error("Invalidate не должен затрагивать других сотрудников")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, ожидали 1", cache.Len())
	}
}

// TestScoreCache_TTL проверяет истечение записи.
func TestScoreCache_TTL(t *testing.T) {
	cache := NewScoreCache(100, 50*time.Millisecond)
	put(t, cache, model.AbsenceStats{EmployeeID: "emp-1"})

	time.Sleep(100 * time.Millisecond)

	if _, ok := cache.Get("emp-1"); ok {
		t.Error("ожидался cache miss после истечения TTL")
	}
}

// TestScoreCache_Eviction проверяет вытеснение при превышении размера.
func TestScoreCache_Eviction(t *testing.T) {
	cache := NewScoreCache(2, 5*time.Minute)
	put(t, cache, model.AbsenceStats{EmployeeID: "emp-1"})
	put(t, cache, model.AbsenceStats{EmployeeID: "emp-2"})
	put(t, cache, model.AbsenceStats{EmployeeID: "emp-3"})

	if _, ok := cache.Get("emp-1"); ok {
		t.Error("самая старая запись должна быть вытеснена")
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, ожидали 2", cache.Len())
	}
}

// TestScoreCache_InvalidateDuringCalculation — сброс между Begin и Commit
// отменяет запись устаревшего агрегата.
func TestScoreCache_InvalidateDuringCalculation(t *testing.T) {
	cache := NewScoreCache(100, 5*time.Minute)

	gen := cache.Begin("emp-1")
	cache.Invalidate("emp-1")
	if cache.Commit(model.AbsenceStats{EmployeeID: "emp-1", Occurrences: 1}, gen) {
		t.Error("Commit после Invalidate должен быть отклонён")
	}
	if _, ok := cache.Get("emp-1"); ok {
		t.Error("устаревший агрегат попал в кэш")
	}

	// Следующий расчёт начинается после сброса и сохраняется.
	put(t, cache, model.AbsenceStats{EmployeeID: "emp-1", Occurrences: 2})
	if got, ok := cache.Get("emp-1"); !ok || got.Occurrences != 2 {
		t.Errorf("Get() = (%+v, %v), ожидали 2 случая", got, ok)
	}
}

// TestScoreCache_ConcurrentCalculations — расчёт, начатый после сброса,
// сохраняется, начатый до сброса — нет. Служебное состояние очищается.
func TestScoreCache_ConcurrentCalculations(t *testing.T) {
	cache := NewScoreCache(100, 5*time.Minute)

	stale := cache.Begin("emp-1")
	cache.Invalidate("emp-1")
	fresh := cache.Begin("emp-1")

	if cache.Commit(model.AbsenceStats{EmployeeID: "emp-1", Occurrences: 1}, stale) {
		t.Error("расчёт до сброса не должен сохраняться")
	}
	if !cache.Commit(model.AbsenceStats{EmployeeID: "emp-1", Occurrences: 2}, fresh) {
		t.Error("расчёт после сброса должен сохраняться")
	}
	if got, _ := cache.Get("emp-1"); got.Occurrences != 2 {
		t.Errorf("Occurrences = %d, ожидали 2", got.Occurrences)
	}

	cache.Begin("emp-2")
	cache.Abort("emp-2")

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if len(cache.gen) != 0 || len(cache.inflight) != 0 {
		t.Errorf("служебное состояние не очищено: gen=%v inflight=%v", cache.gen, cache.inflight)
	}
}

// TestScoreCache_InvalidateWithoutCalculation не оставляет поколений.
func TestScoreCache_InvalidateWithoutCalculation(t *testing.T) {
	cache := NewScoreCache(100, 5*time.Minute)
	cache.Invalidate("emp-1")
	put(t, cache, model.AbsenceStats{EmployeeID: "emp-1"})

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if len(cache.gen) != 0 {
		t.Errorf("gen = %v, ожидали пустую карту", cache.gen)
	}
}
