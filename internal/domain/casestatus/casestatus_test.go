package casestatus

import (
	"errors"
	"testing"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

func mustMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := NewMachine(DefaultTransitions(), DefaultActions())
	if err != nil {
		t.Fatalf("NewMachine() ошибка: %v", err)
	}
	return m
}

func TestApply(t *testing.T) {
	m := mustMachine(t)

	tests := []struct {
		name    string
		current model.CaseStatus
		action  model.CaseAction
		want    model.CaseStatus
		wantErr error
	}{
		{name: "справка в открытом случае", current: model.CaseOpen, action: model.ActionReceiveFitNote, want: model.CaseFitNoteReceived},
		{name: "план выхода после справки", current: model.CaseFitNoteReceived, action: model.ActionPlanReturn, want: model.CaseReturnPlanned},
		{name: "план выхода сразу", current: model.CaseOpen, action: model.ActionPlanReturn, want: model.CaseReturnPlanned},
		{name: "закрытие после плана", current: model.CaseReturnPlanned, action: model.ActionCloseCase, want: model.CaseClosed},
		{name: "повторная справка", current: model.CaseFitNoteReceived, action: model.ActionReceiveFitNote, wantErr: model.ErrInvalidTransition},
		{name: "действие в закрытом случае", current: model.CaseClosed, action: model.ActionCloseCase, wantErr: model.ErrInvalidTransition},
		{name: "неизвестное действие", current: model.CaseOpen, action: "ESCALATE", wantErr: model.ErrInvalidInput},
		{name: "неизвестный статус", current: "ARCHIVED", action: model.ActionCloseCase, wantErr: model.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Apply(tt.current, tt.action)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Apply(%s, %s) ошибка = %v, хотели %v", tt.current, tt.action, err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Apply(%s, %s) = (%s, %v), хотели %s", tt.current, tt.action, got, err, tt.want)
			}
		})
	}
}

func TestAvailable(t *testing.T) {
	m := mustMachine(t)

	got := m.Available(model.CaseOpen)
	want := []model.CaseAction{model.ActionCloseCase, model.ActionPlanReturn, model.ActionReceiveFitNote}
	if len(got) != len(want) {
		t.Fatalf("Available(OPEN) = %v, хотели %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Available(OPEN)[%d] = %s, хотели %s", i, got[i], want[i])
		}
	}
	if n := len(m.Available(model.CaseClosed)); n != 0 {
		t.Errorf("Available(CLOSED) вернул %d действий, хотели 0", n)
	}
}

func TestNewMachine_ActionOutsideGraph(t *testing.T) {
	actions := append(DefaultActions(), Action{
		Name: "REOPEN",
		From: []model.CaseStatus{model.CaseClosed},
		To:   model.CaseOpen,
	})
	if _, err := NewMachine(DefaultTransitions(), actions); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("NewMachine() = %v, хотели ErrInvalidInput", err)
	}
}

func TestNewMachine_DuplicateAction(t *testing.T) {
	actions := append(DefaultActions(), DefaultActions()[0])
	if _, err := NewMachine(DefaultTransitions(), actions); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("NewMachine() = %v, хотели ErrInvalidInput", err)
	}
}

func TestInitialAndTerminal(t *testing.T) {
	m := mustMachine(t)
	if m.Initial() != model.CaseOpen {
		t.Errorf("Initial() = %s, хотели OPEN", m.Initial())
	}
	if !m.IsTerminal(model.CaseClosed) || m.IsTerminal(model.CaseOpen) {
		t.Error("IsTerminal() вернул неверный результат")
	}
}
