// Пакет milestone — контрольные точки случая отсутствия.
// Каталог описывает контрольные точки шкалы (смещение от открытия случая,
// требуемая возможность) и частичное отображение «точка → действие случая».
// Движок закрывает экземпляры точек и предлагает, но не применяет, действие.
package milestone

import (
	"fmt"
	"strings"
	"time"

	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/domain/rbac"
)

// Definition — описание контрольной точки в каталоге.
type Definition struct {
	// Key — уникальный ключ ("day_7")
	Key string
	// Name — отображаемое имя ("Day 7")
	Name string
	// OffsetDays — смещение срока от открытия случая в днях
	OffsetDays int
	// Capability — возможность, требуемая для завершения или пропуска
	Capability rbac.Capability
}

// Catalog — проверенный каталог контрольных точек.
type Catalog struct {
	defs    []Definition
	byKey   map[string]Definition
	actions map[string]model.CaseAction
}

// NewCatalog строит каталог и проверяет его:
// ключи уникальны и непусты, смещения неотрицательны, возможности заданы;
// каждый ключ отображения есть в каталоге, каждое действие известно knownAction.
func NewCatalog(defs []Definition, actions map[string]model.CaseAction, knownAction func(model.CaseAction) bool) (*Catalog, error) {
	c := &Catalog{
		byKey:   make(map[string]Definition, len(defs)),
		actions: make(map[string]model.CaseAction, len(actions)),
	}

	for _, d := range defs {
		if strings.TrimSpace(d.Key) == "" {
			return nil, fmt.Errorf("%w: пустой ключ контрольной точки", model.ErrInvalidInput)
		}
		if _, dup := c.byKey[d.Key]; dup {
			return nil, fmt.Errorf("%w: контрольная точка %q объявлена повторно", model.ErrInvalidInput, d.Key)
		}
		if d.OffsetDays < 0 {
			return nil, fmt.Errorf("%w: контрольная точка %q: отрицательное смещение %d",
				model.ErrInvalidInput, d.Key, d.OffsetDays)
		}
		if strings.TrimSpace(string(d.Capability)) == "" {
			return nil, fmt.Errorf("%w: контрольная точка %q: не задана возможность", model.ErrInvalidInput, d.Key)
		}
		if d.Name == "" {
			d.Name = d.Key
		}
		c.defs = append(c.defs, d)
		c.byKey[d.Key] = d
	}

	for key, action := range actions {
		if _, ok := c.byKey[key]; !ok {
			return nil, fmt.Errorf("%w: отображение ссылается на неизвестную контрольную точку %q",
				model.ErrInvalidInput, key)
		}
		if knownAction != nil && !knownAction(action) {
			return nil, fmt.Errorf("%w: контрольная точка %q отображена в неизвестное действие %q",
				model.ErrInvalidInput, key, action)
		}
		c.actions[key] = action
	}

	return c, nil
}

// Definitions возвращает описания в порядке объявления.
func (c *Catalog) Definitions() []Definition {
	return append([]Definition(nil), c.defs...)
}

// Definition возвращает описание по ключу.
func (c *Catalog) Definition(key string) (Definition, bool) {
	d, ok := c.byKey[key]
	return d, ok
}

// ProposedAction возвращает действие, связанное с контрольной точкой.
// Для точки без отображения — "", false (это не ошибка).
func (c *Catalog) ProposedAction(key string) (model.CaseAction, bool) {
	a, ok := c.actions[key]
	return a, ok
}

// Schedule создаёт экземпляры всех контрольных точек для нового случая.
// Срок = openedAt + OffsetDays. ID заполняет слой хранения.
func (c *Catalog) Schedule(caseID string, openedAt time.Time) []*model.Milestone {
	result := make([]*model.Milestone, 0, len(c.defs))
	for _, d := range c.defs {
		result = append(result, &model.Milestone{
			CaseID: caseID,
			Key:    d.Key,
			Name:   d.Name,
			DueAt:  openedAt.AddDate(0, 0, d.OffsetDays),
			State:  model.MilestonePending,
		})
	}
	return result
}
