// Пакет rbac — определение эффективной роли пользователя и проверка возможностей.
// Эффективная роль = роль с максимальным старшинством из набора пользователя.
// Таблица старшинства — данные политики, проверяемые при построении.
package rbac

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// RoleTable — таблица старшинства ролей.
// Чем выше вес, тем больше полномочий. Веса уникальны.
type RoleTable struct {
	weight map[model.Role]int
}

// NewRoleTable строит таблицу старшинства и проверяет её:
// таблица не пуста, имена ролей не пустые, веса положительны и уникальны.
func NewRoleTable(precedence map[model.Role]int) (*RoleTable, error) {
	if len(precedence) == 0 {
		return nil, fmt.Errorf("%w: таблица ролей пуста", model.ErrInvalidInput)
	}

	weight := make(map[model.Role]int, len(precedence))
	owner := make(map[int]model.Role, len(precedence))
	for role, w := range precedence {
		if strings.TrimSpace(string(role)) == "" {
			return nil, fmt.Errorf("%w: пустое имя роли", model.ErrInvalidInput)
		}
		if w <= 0 {
			return nil, fmt.Errorf("%w: роль %q: старшинство должно быть положительным, получено %d",
				model.ErrInvalidInput, role, w)
		}
		if other, dup := owner[w]; dup {
			return nil, fmt.Errorf("%w: роли %q и %q имеют одинаковое старшинство %d",
				model.ErrInvalidInput, other, role, w)
		}
		owner[w] = role
		weight[role] = w
	}

	return &RoleTable{weight: weight}, nil
}

// Precedence возвращает старшинство роли.
func (t *RoleTable) Precedence(role model.Role) (int, bool) {
	w, ok := t.weight[role]
	return w, ok
}

// IsValidRole проверяет, есть ли роль в таблице.
func (t *RoleTable) IsValidRole(role model.Role) bool {
	_, ok := t.weight[role]
	return ok
}

// Roles возвращает роли таблицы в порядке убывания старшинства.
func (t *RoleTable) Roles() []model.Role {
	roles := make([]model.Role, 0, len(t.weight))
	for r := range t.weight {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool {
		return t.weight[roles[i]] > t.weight[roles[j]]
	})
	return roles
}

// HighestRole возвращает роль с максимальным старшинством из набора.
// Роли, отсутствующие в таблице, не учитываются.
// Если подходящих ролей нет — возвращает "", false.
func (t *RoleTable) HighestRole(roles []model.Role) (model.Role, bool) {
	var (
		highest model.Role
		best    int
	)
	for _, r := range roles {
		w, ok := t.weight[r]
		if !ok {
			continue
		}
		if w > best {
			highest, best = r, w
		}
	}
	return highest, best > 0
}

// FilterValid оставляет только роли, известные таблице.
// Используется при разборе ролей из IdP.
func (t *RoleTable) FilterValid(raw []string) []model.Role {
	var roles []model.Role
	for _, r := range raw {
		role := model.Role(r)
		if t.IsValidRole(role) {
			roles = append(roles, role)
		}
	}
	return roles
}
