// Пакет policy — загрузка политики управления случаями отсутствия из YAML.
// Политика задаёт таблицу ролей, требования возможностей, графы переходов,
// каталог контрольных точек и пороги риска. Compile строит из неё
// проверенные доменные объекты; любая ошибка таблицы останавливает запуск.
package policy

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bigkaa/absence-governance/internal/domain/bradford"
	"github.com/bigkaa/absence-governance/internal/domain/casestatus"
	"github.com/bigkaa/absence-governance/internal/domain/milestone"
	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/domain/rbac"
	"github.com/bigkaa/absence-governance/internal/domain/referral"
	"github.com/bigkaa/absence-governance/internal/domain/statemachine"
)

//go:embed default.yaml
var defaultPolicy []byte

// Policy — политика в том виде, как она записана в YAML.
type Policy struct {
	Roles        map[string]int      `yaml:"roles"`
	Capabilities map[string]string   `yaml:"capabilities"`
	Referral     ReferralPolicy      `yaml:"referral"`
	Case         CasePolicy          `yaml:"case"`
	Milestones   []MilestonePolicy   `yaml:"milestones"`
	Bradford     bradford.Thresholds `yaml:"bradford"`
}

// Edge — строка таблицы переходов.
type Edge struct {
	From string   `yaml:"from"`
	To   []string `yaml:"to"`
}

// ReferralPolicy — таблица переходов направления.
type ReferralPolicy struct {
	Transitions []Edge `yaml:"transitions"`
}

// CasePolicy — граф статусов и действия случая.
type CasePolicy struct {
	Transitions []Edge         `yaml:"transitions"`
	Actions     []ActionPolicy `yaml:"actions"`
}

// ActionPolicy — именованное действие случая.
type ActionPolicy struct {
	Name string   `yaml:"name"`
	From []string `yaml:"from"`
	To   string   `yaml:"to"`
}

// MilestonePolicy — контрольная точка каталога.
type MilestonePolicy struct {
	Key        string `yaml:"key"`
	Name       string `yaml:"name"`
	OffsetDays int    `yaml:"offset_days"`
	Capability string `yaml:"capability"`
	// Proposes — действие случая, предлагаемое при завершении (опционально)
	Proposes string `yaml:"proposes"`
}

// Default возвращает встроенную политику.
func Default() (*Policy, error) {
	return Parse(defaultPolicy)
}

// Load читает политику из файла. Пустой путь — встроенная политика.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: чтение %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy: %s: %w", path, err)
	}
	return p, nil
}

// Parse разбирает YAML политики. Неизвестные поля — ошибка.
func Parse(data []byte) (*Policy, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: пустая политика", model.ErrInvalidInput)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Policy
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: разбор политики: %v", model.ErrInvalidInput, err)
	}
	return &p, nil
}

// Governance — скомпилированная политика: проверенные доменные компоненты.
type Governance struct {
	Roles      *rbac.RoleTable
	Authorizer *rbac.Authorizer
	Referrals  *referral.Machine
	Cases      *casestatus.Machine
	Milestones *milestone.Engine
	Scorer     *bradford.Scorer
}

// Compile строит доменные компоненты. superAdmin и now могут быть nil.
func (p *Policy) Compile(superAdmin rbac.SuperAdminCheck, now func() time.Time) (*Governance, error) {
	precedence := make(map[model.Role]int, len(p.Roles))
	for name, weight := range p.Roles {
		precedence[model.Role(name)] = weight
	}
	roles, err := rbac.NewRoleTable(precedence)
	if err != nil {
		return nil, fmt.Errorf("roles: %w", err)
	}

	requirements := make(map[rbac.Capability]model.Role, len(p.Capabilities))
	for c, r := range p.Capabilities {
		requirements[rbac.Capability(c)] = model.Role(r)
	}
	authz, err := rbac.NewAuthorizer(roles, requirements, superAdmin)
	if err != nil {
		return nil, fmt.Errorf("capabilities: %w", err)
	}

	referrals, err := referral.NewMachine(edges[model.ReferralStatus](p.Referral.Transitions))
	if err != nil {
		return nil, fmt.Errorf("referral: %w", err)
	}

	actions := make([]casestatus.Action, 0, len(p.Case.Actions))
	for _, a := range p.Case.Actions {
		from := make([]model.CaseStatus, 0, len(a.From))
		for _, s := range a.From {
			from = append(from, model.CaseStatus(s))
		}
		actions = append(actions, casestatus.Action{
			Name: model.CaseAction(a.Name),
			From: from,
			To:   model.CaseStatus(a.To),
		})
	}
	cases, err := casestatus.NewMachine(edges[model.CaseStatus](p.Case.Transitions), actions)
	if err != nil {
		return nil, fmt.Errorf("case: %w", err)
	}

	defs := make([]milestone.Definition, 0, len(p.Milestones))
	proposals := make(map[string]model.CaseAction)
	for _, m := range p.Milestones {
		capability := rbac.Capability(m.Capability)
		if !authz.Knows(capability) {
			return nil, fmt.Errorf("milestones: %w: точка %q требует неизвестную возможность %q",
				model.ErrInvalidInput, m.Key, m.Capability)
		}
		defs = append(defs, milestone.Definition{
			Key:        m.Key,
			Name:       m.Name,
			OffsetDays: m.OffsetDays,
			Capability: capability,
		})
		if m.Proposes != "" {
			proposals[m.Key] = model.CaseAction(m.Proposes)
		}
	}
	catalog, err := milestone.NewCatalog(defs, proposals, cases.Knows)
	if err != nil {
		return nil, fmt.Errorf("milestones: %w", err)
	}

	scorer, err := bradford.NewScorer(p.Bradford)
	if err != nil {
		return nil, fmt.Errorf("bradford: %w", err)
	}

	return &Governance{
		Roles:      roles,
		Authorizer: authz,
		Referrals:  referrals,
		Cases:      cases,
		Milestones: milestone.NewEngine(catalog, authz, now),
		Scorer:     scorer,
	}, nil
}

func edges[S ~string](rows []Edge) []statemachine.Edge[S] {
	result := make([]statemachine.Edge[S], 0, len(rows))
	for _, r := range rows {
		to := make([]S, 0, len(r.To))
		for _, t := range r.To {
			to = append(to, S(t))
		}
		result = append(result, statemachine.Edge[S]{From: S(r.From), To: to})
	}
	return result
}
