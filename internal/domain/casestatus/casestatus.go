// Пакет casestatus — жизненный цикл случая отсутствия.
// Статусы образуют граф переходов, действия — именованные рёбра графа.
// Контрольные точки предлагают действия, применение выполняет этот пакет.
package casestatus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/domain/statemachine"
)

// Action — действие жизненного цикла: переход из любого статуса From в To.
type Action struct {
	Name model.CaseAction
	From []model.CaseStatus
	To   model.CaseStatus
}

// DefaultTransitions — граф статусов случая по умолчанию.
func DefaultTransitions() []statemachine.Edge[model.CaseStatus] {
	return []statemachine.Edge[model.CaseStatus]{
		{From: model.CaseOpen, To: []model.CaseStatus{model.CaseFitNoteReceived, model.CaseReturnPlanned, model.CaseClosed}},
		{From: model.CaseFitNoteReceived, To: []model.CaseStatus{model.CaseReturnPlanned, model.CaseClosed}},
		{From: model.CaseReturnPlanned, To: []model.CaseStatus{model.CaseClosed}},
		{From: model.CaseClosed},
	}
}

// DefaultActions — действия по умолчанию.
func DefaultActions() []Action {
	return []Action{
		{
			Name: model.ActionReceiveFitNote,
			From: []model.CaseStatus{model.CaseOpen},
			To:   model.CaseFitNoteReceived,
		},
		{
			Name: model.ActionPlanReturn,
			From: []model.CaseStatus{model.CaseOpen, model.CaseFitNoteReceived},
			To:   model.CaseReturnPlanned,
		},
		{
			Name: model.ActionCloseCase,
			From: []model.CaseStatus{model.CaseOpen, model.CaseFitNoteReceived, model.CaseReturnPlanned},
			To:   model.CaseClosed,
		},
	}
}

// Machine — машина статусов случая.
type Machine struct {
	graph   *statemachine.Graph[model.CaseStatus]
	actions map[model.CaseAction]Action
}

// NewMachine строит машину. Каждое ребро каждого действия должно быть в графе,
// имена действий уникальны, начальный статус — первый объявленный.
func NewMachine(table []statemachine.Edge[model.CaseStatus], actions []Action) (*Machine, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: граф статусов случая пуст", model.ErrInvalidInput)
	}
	g, err := statemachine.New(table[0].From, table)
	if err != nil {
		return nil, fmt.Errorf("граф статусов случая: %w", err)
	}

	byName := make(map[model.CaseAction]Action, len(actions))
	for _, a := range actions {
		if strings.TrimSpace(string(a.Name)) == "" {
			return nil, fmt.Errorf("%w: пустое имя действия", model.ErrInvalidInput)
		}
		if _, dup := byName[a.Name]; dup {
			return nil, fmt.Errorf("%w: действие %s объявлено повторно", model.ErrInvalidInput, a.Name)
		}
		if len(a.From) == 0 {
			return nil, fmt.Errorf("%w: действие %s без исходных статусов", model.ErrInvalidInput, a.Name)
		}
		for _, from := range a.From {
			if !g.CanTransition(from, a.To) {
				return nil, fmt.Errorf("%w: действие %s: переход %s → %s отсутствует в графе",
					model.ErrInvalidInput, a.Name, from, a.To)
			}
		}
		a.From = append([]model.CaseStatus(nil), a.From...)
		byName[a.Name] = a
	}

	return &Machine{graph: g, actions: byName}, nil
}

// Initial возвращает статус нового случая.
func (m *Machine) Initial() model.CaseStatus {
	return m.graph.Initial()
}

// Knows проверяет, известно ли действие.
func (m *Machine) Knows(action model.CaseAction) bool {
	_, ok := m.actions[action]
	return ok
}

// IsTerminal — случай закрыт.
func (m *Machine) IsTerminal(status model.CaseStatus) bool {
	return m.graph.IsTerminal(status)
}

// Apply применяет действие к текущему статусу и возвращает новый статус.
// Неизвестное действие или статус — ErrInvalidInput,
// действие недоступно из текущего статуса — ErrInvalidTransition.
func (m *Machine) Apply(current model.CaseStatus, action model.CaseAction) (model.CaseStatus, error) {
	a, ok := m.actions[action]
	if !ok {
		return "", fmt.Errorf("%w: неизвестное действие %q", model.ErrInvalidInput, action)
	}
	if !m.graph.Knows(current) {
		return "", fmt.Errorf("%w: неизвестный статус случая %q", model.ErrInvalidInput, current)
	}
	for _, from := range a.From {
		if from == current {
			return m.graph.Transition(current, a.To)
		}
	}
	return "", fmt.Errorf("%w: действие %s недоступно в статусе %s", model.ErrInvalidTransition, action, current)
}

// Available возвращает действия, доступные из статуса, отсортированные по имени.
func (m *Machine) Available(current model.CaseStatus) []model.CaseAction {
	var result []model.CaseAction
	for name, a := range m.actions {
		for _, from := range a.From {
			if from == current {
				result = append(result, name)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
