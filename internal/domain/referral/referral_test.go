package referral

import (
	"errors"
	"testing"

	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/domain/statemachine"
)

func mustMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := NewMachine(DefaultTransitions())
	if err != nil {
		t.Fatalf("NewMachine() ошибка: %v", err)
	}
	return m
}

var allStatuses = []model.ReferralStatus{
	model.ReferralSubmitted,
	model.ReferralInProgress,
	model.ReferralReportReceived,
	model.ReferralClosed,
}

// TestTransition_AllPairs перебирает все пары (current, target):
// переход успешен тогда и только тогда, когда ребро есть в таблице.
func TestTransition_AllPairs(t *testing.T) {
	m := mustMachine(t)

	allowed := map[model.ReferralStatus]map[model.ReferralStatus]bool{
		model.ReferralSubmitted:      {model.ReferralInProgress: true, model.ReferralClosed: true},
		model.ReferralInProgress:     {model.ReferralReportReceived: true, model.ReferralClosed: true},
		model.ReferralReportReceived: {model.ReferralClosed: true},
		model.ReferralClosed:         {},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got, err := m.Transition(from, to)
			if allowed[from][to] {
				if err != nil || got != to {
					t.Errorf("Transition(%s, %s) = (%s, %v), хотели (%s, nil)", from, to, got, err, to)
				}
				continue
			}
			if !errors.Is(err, model.ErrInvalidTransition) {
				t.Errorf("Transition(%s, %s) ошибка = %v, хотели ErrInvalidTransition", from, to, err)
			}
		}
	}
}

func TestTransition_Scenarios(t *testing.T) {
	m := mustMachine(t)

	if got, err := m.Transition(model.ReferralSubmitted, model.ReferralInProgress); err != nil || got != model.ReferralInProgress {
		t.Errorf("SUBMITTED → IN_PROGRESS = (%s, %v)", got, err)
	}
	if _, err := m.Transition(model.ReferralInProgress, model.ReferralSubmitted); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("IN_PROGRESS → SUBMITTED = %v, хотели ErrInvalidTransition", err)
	}
	if got, err := m.Transition(model.ReferralSubmitted, model.ReferralClosed); err != nil || got != model.ReferralClosed {
		t.Errorf("SUBMITTED → CLOSED = (%s, %v)", got, err)
	}
}

func TestClosed_IsTerminal(t *testing.T) {
	m := mustMachine(t)

	if n := len(m.NextStatuses(model.ReferralClosed)); n != 0 {
		t.Errorf("NextStatuses(CLOSED) вернул %d статусов, хотели 0", n)
	}
	if m.IsActive(model.ReferralClosed) {
		t.Error("IsActive(CLOSED) = true")
	}
	if !m.IsActive(model.ReferralReportReceived) {
		t.Error("IsActive(REPORT_RECEIVED) = false")
	}
	if m.Initial() != model.ReferralSubmitted {
		t.Errorf("Initial() = %s, хотели SUBMITTED", m.Initial())
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	m := mustMachine(t)
	if _, err := m.Transition("ARCHIVED", model.ReferralClosed); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("Transition(ARCHIVED, CLOSED) = %v, хотели ErrInvalidInput", err)
	}
}

func TestNewMachine_RejectsMalformedTables(t *testing.T) {
	tests := []struct {
		name  string
		table []statemachine.Edge[model.ReferralStatus]
	}{
		{
			name: "CLOSED имеет исходящий переход",
			table: []statemachine.Edge[model.ReferralStatus]{
				{From: model.ReferralSubmitted, To: []model.ReferralStatus{model.ReferralClosed}},
				{From: model.ReferralClosed, To: []model.ReferralStatus{model.ReferralSubmitted}},
			},
		},
		{
			name: "из IN_PROGRESS нельзя закрыть",
			table: []statemachine.Edge[model.ReferralStatus]{
				{From: model.ReferralSubmitted, To: []model.ReferralStatus{model.ReferralInProgress, model.ReferralClosed}},
				{From: model.ReferralInProgress},
				{From: model.ReferralClosed},
			},
		},
		{
			name: "CLOSED не объявлен",
			table: []statemachine.Edge[model.ReferralStatus]{
				{From: model.ReferralSubmitted},
			},
		},
		{
			name: "неизвестный статус",
			table: []statemachine.Edge[model.ReferralStatus]{
				{From: model.ReferralSubmitted, To: []model.ReferralStatus{"ON_HOLD", model.ReferralClosed}},
				{From: "ON_HOLD", To: []model.ReferralStatus{model.ReferralClosed}},
				{From: model.ReferralClosed},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMachine(tt.table); !errors.Is(err, model.ErrInvalidInput) {
				t.Errorf("NewMachine() = %v, хотели ErrInvalidInput", err)
			}
		})
	}
}
