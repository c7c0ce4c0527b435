// Пакет statemachine — декларативный граф переходов состояний.
// Граф — неизменяемая таблица смежности: для каждого состояния
// задано множество допустимых целевых состояний. Граф не хранит
// текущее состояние, он только проверяет и выполняет переход.
package statemachine

import (
	"fmt"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// Graph — проверенная таблица переходов над состояниями S.
type Graph[S comparable] struct {
	initial S
	// order — порядок объявления состояний (для детерминированного вывода)
	order   []S
	targets map[S][]S
	edges   map[S]map[S]struct{}
}

// Edge — пара состояний для объявления графа в порядке следования.
type Edge[S comparable] struct {
	From S
	To   []S
}

// New строит граф и проверяет его:
//   - каждое состояние объявлено ровно один раз (терминальные — с пустым списком);
//   - начальное состояние объявлено;
//   - все целевые состояния объявлены;
//   - нет петель и повторяющихся рёбер.
func New[S comparable](initial S, table []Edge[S]) (*Graph[S], error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: таблица переходов пуста", model.ErrInvalidInput)
	}

	g := &Graph[S]{
		initial: initial,
		targets: make(map[S][]S, len(table)),
		edges:   make(map[S]map[S]struct{}, len(table)),
	}

	for _, e := range table {
		if _, dup := g.edges[e.From]; dup {
			return nil, fmt.Errorf("%w: состояние %v объявлено повторно", model.ErrInvalidInput, e.From)
		}
		g.order = append(g.order, e.From)
		g.edges[e.From] = make(map[S]struct{}, len(e.To))
		g.targets[e.From] = append([]S(nil), e.To...)
	}

	for _, from := range g.order {
		for _, to := range g.targets[from] {
			if to == from {
				return nil, fmt.Errorf("%w: петля %v → %v", model.ErrInvalidInput, from, to)
			}
			if _, known := g.edges[to]; !known {
				return nil, fmt.Errorf("%w: переход %v → %v в необъявленное состояние",
					model.ErrInvalidInput, from, to)
			}
			if _, dup := g.edges[from][to]; dup {
				return nil, fmt.Errorf("%w: повторяющийся переход %v → %v", model.ErrInvalidInput, from, to)
			}
			g.edges[from][to] = struct{}{}
		}
	}

	if _, ok := g.edges[initial]; !ok {
		return nil, fmt.Errorf("%w: начальное состояние %v не объявлено", model.ErrInvalidInput, initial)
	}

	return g, nil
}

// Initial возвращает начальное состояние.
func (g *Graph[S]) Initial() S {
	return g.initial
}

// States возвращает состояния в порядке объявления.
func (g *Graph[S]) States() []S {
	return append([]S(nil), g.order...)
}

// Knows проверяет, объявлено ли состояние.
func (g *Graph[S]) Knows(s S) bool {
	_, ok := g.edges[s]
	return ok
}

// IsTerminal — состояние без исходящих переходов.
func (g *Graph[S]) IsTerminal(s S) bool {
	out, ok := g.edges[s]
	return ok && len(out) == 0
}

// Targets возвращает допустимые целевые состояния в порядке объявления.
func (g *Graph[S]) Targets(from S) []S {
	return append([]S(nil), g.targets[from]...)
}

// CanTransition сообщает, есть ли ребро from → to.
func (g *Graph[S]) CanTransition(from, to S) bool {
	_, ok := g.edges[from][to]
	return ok
}

// Transition проверяет переход и возвращает целевое состояние.
// Неизвестные состояния — ErrInvalidInput, отсутствие ребра — ErrInvalidTransition.
func (g *Graph[S]) Transition(from, to S) (S, error) {
	var zero S
	if !g.Knows(from) {
		return zero, fmt.Errorf("%w: неизвестное текущее состояние %v", model.ErrInvalidInput, from)
	}
	if !g.Knows(to) {
		return zero, fmt.Errorf("%w: неизвестное целевое состояние %v", model.ErrInvalidInput, to)
	}
	if !g.CanTransition(from, to) {
		return zero, fmt.Errorf("%w: %v → %v", model.ErrInvalidTransition, from, to)
	}
	return to, nil
}
