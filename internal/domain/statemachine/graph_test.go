package statemachine

import (
	"errors"
	"testing"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		table   []Edge[string]
	}{
		{name: "пустая таблица", initial: "a", table: nil},
		{
			name:    "петля",
			initial: "a",
			table:   []Edge[string]{{From: "a", To: []string{"a"}}},
		},
		{
			name:    "необъявленная цель",
			initial: "a",
			table:   []Edge[string]{{From: "a", To: []string{"b"}}},
		},
		{
			name:    "повторное объявление",
			initial: "a",
			table:   []Edge[string]{{From: "a", To: nil}, {From: "a", To: nil}},
		},
		{
			name:    "повторяющееся ребро",
			initial: "a",
			table:   []Edge[string]{{From: "a", To: []string{"b", "b"}}, {From: "b"}},
		},
		{
			name:    "необъявленное начальное состояние",
			initial: "z",
			table:   []Edge[string]{{From: "a", To: []string{"b"}}, {From: "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.initial, tt.table); !errors.Is(err, model.ErrInvalidInput) {
				t.Errorf("New() = %v, хотели ErrInvalidInput", err)
			}
		})
	}
}

func TestGraph_Transition(t *testing.T) {
	g, err := New("draft", []Edge[string]{
		{From: "draft", To: []string{"sent", "lost"}},
		{From: "sent", To: []string{"lost"}},
		{From: "lost"},
	})
	if err != nil {
		t.Fatalf("New() ошибка: %v", err)
	}

	if g.Initial() != "draft" {
		t.Errorf("Initial() = %q, хотели draft", g.Initial())
	}
	if !g.IsTerminal("lost") || g.IsTerminal("draft") || g.IsTerminal("unknown") {
		t.Error("IsTerminal() вернул неверный результат")
	}
	if got := g.Targets("draft"); len(got) != 2 || got[0] != "sent" || got[1] != "lost" {
		t.Errorf("Targets(draft) = %v, хотели [sent lost]", got)
	}

	if to, err := g.Transition("draft", "sent"); err != nil || to != "sent" {
		t.Errorf("Transition(draft, sent) = (%q, %v)", to, err)
	}
	if _, err := g.Transition("sent", "draft"); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("Transition(sent, draft) = %v, хотели ErrInvalidTransition", err)
	}
	if _, err := g.Transition("draft", "draft"); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("Transition(draft, draft) = %v, хотели ErrInvalidTransition", err)
	}
	if _, err := g.Transition("nope", "sent"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("Transition(nope, sent) = %v, хотели ErrInvalidInput", err)
	}
	if _, err := g.Transition("draft", "nope"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("Transition(draft, nope) = %v, хотели ErrInvalidInput", err)
	}
}

// TestGraph_TargetsIsCopy проверяет, что изменение результата Targets не меняет граф.
func TestGraph_TargetsIsCopy(t *testing.T) {
	g, err := New("a", []Edge[string]{{From: "a", To: []string{"b"}}, {From: "b"}})
	if err != nil {
		t.Fatalf("New() ошибка: %v", err)
	}
	targets := g.Targets("a")
	targets[0] = "a"
	if !g.CanTransition("a", "b") || g.Targets("a")[0] != "b" {
		t.Error("граф изменился после модификации результата Targets")
	}
}
