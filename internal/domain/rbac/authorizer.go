package rbac

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// Capability — именованное право на действие рабочего процесса
// (например, "referral.transition"). Требования задаются политикой.
type Capability string

// Возможности политики по умолчанию.
const (
	CapCaseOpen           Capability = "case.open"
	CapCaseView           Capability = "case.view"
	CapCaseAction         Capability = "case.action"
	CapReferralOpen       Capability = "referral.open"
	CapReferralTransition Capability = "referral.transition"
	CapMilestoneComplete  Capability = "milestone.complete"
	CapScoreView          Capability = "score.view"
)

// SuperAdminCheck — внедряемая проверка максимальных полномочий по email.
// Вычисляется до разрешения ролей.
type SuperAdminCheck func(email string) bool

// NoSuperAdmins — проверка, не признающая никого super-admin.
func NoSuperAdmins(string) bool { return false }

// NewEmailAllowList строит SuperAdminCheck по списку адресов.
// Сравнение без учёта регистра, пробелы по краям игнорируются.
func NewEmailAllowList(emails []string) SuperAdminCheck {
	set := make(map[string]bool, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = true
		}
	}
	if len(set) == 0 {
		return NoSuperAdmins
	}
	return func(email string) bool {
		return set[strings.ToLower(strings.TrimSpace(email))]
	}
}

// Authorizer — проверка возможностей по старшинству ролей.
// Возможность разрешена, если старшинство эффективной роли
// не ниже минимальной роли, требуемой для возможности.
type Authorizer struct {
	roles        *RoleTable
	requirements map[Capability]model.Role
	superAdmin   SuperAdminCheck
}

// NewAuthorizer создаёт Authorizer. Все требуемые роли должны быть в таблице.
// superAdmin может быть nil — тогда super-admin отсутствуют.
func NewAuthorizer(roles *RoleTable, requirements map[Capability]model.Role, superAdmin SuperAdminCheck) (*Authorizer, error) {
	if roles == nil {
		return nil, fmt.Errorf("%w: таблица ролей не задана", model.ErrInvalidInput)
	}
	req := make(map[Capability]model.Role, len(requirements))
	for c, r := range requirements {
		if strings.TrimSpace(string(c)) == "" {
			return nil, fmt.Errorf("%w: пустое имя возможности", model.ErrInvalidInput)
		}
		if !roles.IsValidRole(r) {
			return nil, fmt.Errorf("%w: возможность %q требует неизвестную роль %q",
				model.ErrInvalidInput, c, r)
		}
		req[c] = r
	}
	if superAdmin == nil {
		superAdmin = NoSuperAdmins
	}
	return &Authorizer{roles: roles, requirements: req, superAdmin: superAdmin}, nil
}

// Roles возвращает таблицу ролей.
func (a *Authorizer) Roles() *RoleTable {
	return a.roles
}

// IsSuperAdmin — изолированная проверка super-admin по email.
func (a *Authorizer) IsSuperAdmin(user model.User) bool {
	return user.Email != "" && a.superAdmin(user.Email)
}

// EffectiveRole возвращает роль пользователя с максимальным старшинством.
func (a *Authorizer) EffectiveRole(user model.User) (model.Role, bool) {
	return a.roles.HighestRole(user.Roles)
}

// Knows проверяет, задано ли требование для возможности.
func (a *Authorizer) Knows(c Capability) bool {
	_, ok := a.requirements[c]
	return ok
}

// Granted возвращает разрешённые пользователю возможности, отсортированные по имени.
func (a *Authorizer) Granted(user model.User) []Capability {
	var result []Capability
	for c := range a.requirements {
		if a.Can(user, c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Can сообщает, разрешена ли возможность пользователю.
func (a *Authorizer) Can(user model.User, c Capability) bool {
	return a.Authorize(user, c) == nil
}

// Authorize возвращает nil, если возможность разрешена, иначе ErrUnauthorized.
// Неизвестная возможность запрещена для всех, включая super-admin.
func (a *Authorizer) Authorize(user model.User, c Capability) error {
	required, ok := a.requirements[c]
	if !ok {
		return fmt.Errorf("%w: возможность %q не настроена", model.ErrUnauthorized, c)
	}

	if a.IsSuperAdmin(user) {
		return nil
	}

	role, ok := a.EffectiveRole(user)
	if !ok {
		return fmt.Errorf("%w: у пользователя нет ролей, требуется %s", model.ErrUnauthorized, required)
	}

	have, _ := a.roles.Precedence(role)
	need, _ := a.roles.Precedence(required)
	if have < need {
		return fmt.Errorf("%w: требуется роль %s или выше, эффективная роль %s",
			model.ErrUnauthorized, required, role)
	}
	return nil
}
