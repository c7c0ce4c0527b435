package milestone

import (
	"fmt"
	"strings"
	"time"

	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/domain/rbac"
)

// Authorizer — проверка возможности субъекта. Реализуется rbac.Authorizer.
type Authorizer interface {
	Authorize(user model.User, c rbac.Capability) error
}

// Result — результат закрытия контрольной точки.
type Result struct {
	// Milestone — новый снимок экземпляра (Version не меняется, её увеличивает хранилище)
	Milestone model.Milestone
	// Previous — состояние до закрытия (условие compare-and-swap)
	Previous model.MilestoneState
	// ProposedAction — предложенное действие случая или nil
	ProposedAction *model.CaseAction
}

// Engine — движок контрольных точек. Не хранит состояние.
type Engine struct {
	catalog *Catalog
	authz   Authorizer
	now     func() time.Time
}

// NewEngine создаёт движок. now может быть nil — тогда time.Now.
func NewEngine(catalog *Catalog, authz Authorizer, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{catalog: catalog, authz: authz, now: now}
}

// Catalog возвращает каталог движка.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Complete завершает контрольную точку.
// Порядок проверок: неизвестная точка (ErrInvalidInput), не PENDING (ErrAlreadyResolved),
// нет возможности (ErrUnauthorized). При успехе состояние COMPLETED и,
// если точка отображена в действие, оно возвращается как предложение.
func (e *Engine) Complete(m model.Milestone, actor model.User, notes string) (Result, error) {
	if err := e.precheck(m, actor); err != nil {
		return Result{}, err
	}

	now := e.now().UTC()
	next := m
	next.State = model.MilestoneCompleted
	next.Notes = strings.TrimSpace(notes)
	next.ResolvedBy = actor.ID
	next.ResolvedAt = &now

	res := Result{Milestone: next, Previous: m.State}
	if action, ok := e.catalog.ProposedAction(m.Key); ok {
		res.ProposedAction = &action
	}
	return res, nil
}

// Skip пропускает контрольную точку. Предусловия как у Complete,
// дополнительно причина после обрезки пробелов должна быть непустой (ErrReasonRequired).
// Пропуск никогда не предлагает действие.
func (e *Engine) Skip(m model.Milestone, actor model.User, reason string) (Result, error) {
	if err := e.precheck(m, actor); err != nil {
		return Result{}, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Result{}, fmt.Errorf("%w: контрольная точка %s", model.ErrReasonRequired, m.Key)
	}

	now := e.now().UTC()
	next := m
	next.State = model.MilestoneSkipped
	next.SkipReason = reason
	next.ResolvedBy = actor.ID
	next.ResolvedAt = &now

	return Result{Milestone: next, Previous: m.State}, nil
}

// IsOverdue — точка не закрыта и её срок прошёл. Вычисляется лениво.
func IsOverdue(m model.Milestone, now time.Time) bool {
	return m.State == model.MilestonePending && now.After(m.DueAt)
}

func (e *Engine) precheck(m model.Milestone, actor model.User) error {
	def, ok := e.catalog.Definition(m.Key)
	if !ok {
		return fmt.Errorf("%w: неизвестная контрольная точка %q", model.ErrInvalidInput, m.Key)
	}
	if m.State.IsTerminal() {
		return fmt.Errorf("%w: %s в состоянии %s", model.ErrAlreadyResolved, m.Key, m.State)
	}
	if m.State != model.MilestonePending {
		return fmt.Errorf("%w: неизвестное состояние контрольной точки %q", model.ErrInvalidInput, m.State)
	}
	return e.authz.Authorize(actor, def.Capability)
}
