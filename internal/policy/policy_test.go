package policy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/absence-governance/internal/domain/bradford"
	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/domain/rbac"
)

func TestDefault_Compiles(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() ошибка: %v", err)
	}
	g, err := p.Compile(rbac.NewEmailAllowList([]string{"root@example.com"}), nil)
	if err != nil {
		t.Fatalf("Compile() ошибка: %v", err)
	}

	if role, ok := g.Roles.HighestRole([]model.Role{model.RoleManager, model.RoleHR}); !ok || role != model.RoleHR {
		t.Errorf("HighestRole() = (%s, %v), хотели hr", role, ok)
	}
	if g.Referrals.Initial() != model.ReferralSubmitted {
		t.Errorf("Referrals.Initial() = %s", g.Referrals.Initial())
	}
	if g.Cases.Initial() != model.CaseOpen {
		t.Errorf("Cases.Initial() = %s", g.Cases.Initial())
	}
	if a, ok := g.Milestones.Catalog().ProposedAction("day_7"); !ok || a != model.ActionReceiveFitNote {
		t.Errorf("ProposedAction(day_7) = (%s, %v)", a, ok)
	}
	if _, ok := g.Milestones.Catalog().ProposedAction("day_1"); ok {
		t.Error("day_1 не должна предлагать действие")
	}
	if tier := g.Scorer.TierFor(bradford.DefaultThresholds.Orange); tier != bradford.TierOrange {
		t.Errorf("TierFor(%d) = %s, хотели orange", bradford.DefaultThresholds.Orange, tier)
	}

	root := model.User{ID: "u", Email: "ROOT@example.com"}
	if err := g.Authorizer.Authorize(root, rbac.CapReferralTransition); err != nil {
		t.Errorf("super-admin получил отказ: %v", err)
	}
	manager := model.User{ID: "m", Roles: []model.Role{model.RoleManager}}
	if err := g.Authorizer.Authorize(manager, rbac.CapReferralTransition); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("manager: Authorize(referral.transition) = %v, хотели ErrUnauthorized", err)
	}
}

func TestCompile_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Policy)
	}{
		{
			name:   "повторное старшинство",
			mutate: func(p *Policy) { p.Roles["hr"] = p.Roles["manager"] },
		},
		{
			name:   "возможность с неизвестной ролью",
			mutate: func(p *Policy) { p.Capabilities["case.open"] = "auditor" },
		},
		{
			name: "закрытие направления недостижимо",
			mutate: func(p *Policy) {
				p.Referral.Transitions[1].To = []string{"REPORT_RECEIVED"}
			},
		},
		{
			name: "петля в графе случая",
			mutate: func(p *Policy) {
				p.Case.Transitions[0].To = append(p.Case.Transitions[0].To, "OPEN")
			},
		},
		{
			name: "действие вне графа",
			mutate: func(p *Policy) {
				p.Case.Actions[0].From = []string{"CLOSED"}
			},
		},
		{
			name:   "точка отображена в неизвестное действие",
			mutate: func(p *Policy) { p.Milestones[0].Proposes = "ESCALATE" },
		},
		{
			name:   "точка с неизвестной возможностью",
			mutate: func(p *Policy) { p.Milestones[0].Capability = "milestone.archive" },
		},
		{
			name:   "пороги не по возрастанию",
			mutate: func(p *Policy) { p.Bradford.Orange = p.Bradford.Red },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Default()
			if err != nil {
				t.Fatalf("Default() ошибка: %v", err)
			}
			tt.mutate(p)
			if _, err := p.Compile(nil, time.Now); !errors.Is(err, model.ErrInvalidInput) {
				t.Errorf("Compile() = %v, хотели ErrInvalidInput", err)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "пустой документ", data: "   \n"},
		{name: "неизвестное поле", data: "roles:\n  hr: 1\nescalation: true\n"},
		{name: "некорректный YAML", data: "roles: [hr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, model.ErrInvalidInput) {
				t.Errorf("Parse() = %v, хотели ErrInvalidInput", err)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	custom := strings.Replace(string(defaultPolicy), "amber: 50", "amber: 60", 1)
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(custom), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() ошибка: %v", err)
	}
	if p.Bradford.Amber != 60 {
		t.Errorf("Bradford.Amber = %d, хотели 60", p.Bradford.Amber)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() несуществующего файла должен вернуть ошибку")
	}
}
