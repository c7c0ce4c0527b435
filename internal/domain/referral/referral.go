// Пакет referral — рабочий процесс направления к врачу по охране труда.
// Машина состояний без хранения состояния: проверяет переход и возвращает
// новый статус, сохранение (с compare-and-swap) — задача вызывающего.
package referral

import (
	"fmt"

	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/domain/statemachine"
)

// DefaultTransitions — таблица переходов по умолчанию.
// Закрытие допустимо из любого незавершённого состояния.
func DefaultTransitions() []statemachine.Edge[model.ReferralStatus] {
	return []statemachine.Edge[model.ReferralStatus]{
		{From: model.ReferralSubmitted, To: []model.ReferralStatus{model.ReferralInProgress, model.ReferralClosed}},
		{From: model.ReferralInProgress, To: []model.ReferralStatus{model.ReferralReportReceived, model.ReferralClosed}},
		{From: model.ReferralReportReceived, To: []model.ReferralStatus{model.ReferralClosed}},
		{From: model.ReferralClosed},
	}
}

// Machine — машина состояний направления.
type Machine struct {
	graph *statemachine.Graph[model.ReferralStatus]
}

// NewMachine строит машину по таблице переходов и дополнительно проверяет:
// начальное состояние SUBMITTED, CLOSED объявлен и терминален,
// CLOSED достижим одним переходом из каждого незавершённого состояния.
func NewMachine(table []statemachine.Edge[model.ReferralStatus]) (*Machine, error) {
	g, err := statemachine.New(model.ReferralSubmitted, table)
	if err != nil {
		return nil, fmt.Errorf("таблица переходов направления: %w", err)
	}

	for _, s := range g.States() {
		if _, perr := model.ParseReferralStatus(string(s)); perr != nil {
			return nil, fmt.Errorf("таблица переходов направления: %w", perr)
		}
	}

	if !g.IsTerminal(model.ReferralClosed) {
		return nil, fmt.Errorf("%w: статус %s должен быть объявлен и не иметь исходящих переходов",
			model.ErrInvalidInput, model.ReferralClosed)
	}

	for _, s := range g.States() {
		if s == model.ReferralClosed {
			continue
		}
		if !g.CanTransition(s, model.ReferralClosed) {
			return nil, fmt.Errorf("%w: из статуса %s должно быть доступно закрытие",
				model.ErrInvalidInput, s)
		}
	}

	return &Machine{graph: g}, nil
}

// Initial возвращает статус нового направления.
func (m *Machine) Initial() model.ReferralStatus {
	return m.graph.Initial()
}

// Transition проверяет переход current → target и возвращает target.
func (m *Machine) Transition(current, target model.ReferralStatus) (model.ReferralStatus, error) {
	return m.graph.Transition(current, target)
}

// CanTransition сообщает, допустим ли переход.
func (m *Machine) CanTransition(current, target model.ReferralStatus) bool {
	return m.graph.CanTransition(current, target)
}

// NextStatuses возвращает допустимые целевые статусы.
func (m *Machine) NextStatuses(current model.ReferralStatus) []model.ReferralStatus {
	return m.graph.Targets(current)
}

// IsActive — направление не закрыто.
func (m *Machine) IsActive(status model.ReferralStatus) bool {
	return m.graph.Knows(status) && !m.graph.IsTerminal(status)
}
