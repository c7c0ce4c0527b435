// governance.go — фасад управления случаями отсутствия.
// Проверяет возможности субъекта, выполняет переходы через машины состояний
// и движок контрольных точек, сохраняет результат с compare-and-swap
// и публикует доменное событие. Повторов и «запасных» состояний нет:
// любая ошибка возвращается вызывающему как есть.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/absence-governance/internal/domain/bradford"
	"github.com/bigkaa/absence-governance/internal/domain/casestatus"
	"github.com/bigkaa/absence-governance/internal/domain/milestone"
	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/domain/rbac"
	"github.com/bigkaa/absence-governance/internal/domain/referral"
	"github.com/bigkaa/absence-governance/internal/events"
	"github.com/bigkaa/absence-governance/internal/policy"
	"github.com/bigkaa/absence-governance/internal/repository"
)

// Identity — результат Whoami.
type Identity struct {
	User          model.User
	EffectiveRole model.Role
	HasRole       bool
	SuperAdmin    bool
	Capabilities  []rbac.Capability
}

// OpenCaseInput — параметры открытия случая.
type OpenCaseInput struct {
	OrganisationID string
	EmployeeID     string
	AbsenceType    string
	StartDate      time.Time
	EndDate        *time.Time
	Notes          string
}

// MilestoneView — контрольная точка с вычисленным признаком просрочки.
type MilestoneView struct {
	model.Milestone
	Overdue bool
}

// CaseDetails — случай с контрольными точками, активным направлением
// и доступными действиями.
type CaseDetails struct {
	Case             *model.SicknessCase
	Milestones       []MilestoneView
	ActiveReferral   *model.Referral
	AvailableActions []model.CaseAction
}

// ReferralDetails — направление с допустимыми следующими статусами.
type ReferralDetails struct {
	Referral     *model.Referral
	NextStatuses []model.ReferralStatus
}

// MilestoneOutcome — результат закрытия контрольной точки.
type MilestoneOutcome struct {
	Milestone      MilestoneView
	ProposedAction *model.CaseAction
	// Case — случай после применения предложенного действия (если применялось успешно)
	Case *model.SicknessCase
	// ActionErr — ошибка применения предложенного действия.
	// Контрольная точка при этом остаётся закрытой.
	ActionErr error
}

// EmployeeScore — коэффициент Брэдфорда сотрудника за скользящее окно.
type EmployeeScore struct {
	Stats model.AbsenceStats
	Score bradford.Score
}

// GovernanceService — фасад ядра управления случаями отсутствия.
type GovernanceService struct {
	authz      *rbac.Authorizer
	referrals  *referral.Machine
	cases      *casestatus.Machine
	milestones *milestone.Engine
	scorer     *bradford.Scorer
	store      repository.Store
	publisher  events.Publisher
	cache      *ScoreCache
	windowDays int
	now        func() time.Time
	logger     *slog.Logger
}

// NewGovernanceService создаёт фасад. cache может быть nil — агрегаты
// тогда вычисляются при каждом запросе.
func NewGovernanceService(
	g *policy.Governance,
	store repository.Store,
	publisher events.Publisher,
	cache *ScoreCache,
	windowDays int,
	logger *slog.Logger,
) *GovernanceService {
	return &GovernanceService{
		authz:      g.Authorizer,
		referrals:  g.Referrals,
		cases:      g.Cases,
		milestones: g.Milestones,
		scorer:     g.Scorer,
		store:      store,
		publisher:  publisher,
		cache:      cache,
		windowDays: windowDays,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "governance")),
	}
}

// Authorizer возвращает проверку возможностей (используется HTTP-слоем).
func (s *GovernanceService) Authorizer() *rbac.Authorizer {
	return s.authz
}

// Whoami возвращает эффективную роль и признак super-admin пользователя.
func (s *GovernanceService) Whoami(user model.User) Identity {
	role, ok := s.authz.EffectiveRole(user)
	return Identity{
		User:          user,
		EffectiveRole: role,
		HasRole:       ok,
		SuperAdmin:    s.authz.IsSuperAdmin(user),
		Capabilities:  s.authz.Granted(user),
	}
}

// --- Случаи ---

// OpenCase открывает случай и планирует его контрольные точки.
// Случай и точки сохраняются атомарно.
func (s *GovernanceService) OpenCase(ctx context.Context, actor model.User, in OpenCaseInput) (_ *CaseDetails, err error) {
	defer func() { observe("open_case", err) }()

	if err := s.authz.Authorize(actor, rbac.CapCaseOpen); err != nil {
		return nil, err
	}

	absenceType, err := model.ParseAbsenceType(in.AbsenceType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.OrganisationID) == "" || strings.TrimSpace(in.EmployeeID) == "" {
		return nil, fmt.Errorf("%w: organisation_id и employee_id обязательны", model.ErrInvalidInput)
	}
	if in.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start_date обязателен", model.ErrInvalidInput)
	}
	start := dateOf(in.StartDate)
	var end *time.Time
	if in.EndDate != nil {
		d := dateOf(*in.EndDate)
		if d.Before(start) {
			return nil, fmt.Errorf("%w: end_date раньше start_date", model.ErrInvalidInput)
		}
		end = &d
	}

	now := s.now().UTC()
	c := &model.SicknessCase{
		ID:             uuid.NewString(),
		OrganisationID: strings.TrimSpace(in.OrganisationID),
		EmployeeID:     strings.TrimSpace(in.EmployeeID),
		AbsenceType:    absenceType,
		Status:         s.cases.Initial(),
		StartDate:      start,
		EndDate:        end,
		Notes:          strings.TrimSpace(in.Notes),
		CreatedBy:      actor.ID,
	}
	ms := s.milestones.Catalog().Schedule(c.ID, now)
	for _, m := range ms {
		m.ID = uuid.NewString()
	}

	if err := s.store.CreateCase(ctx, c, ms); err != nil {
		return nil, mapRepoErr(err, "создание случая")
	}
	s.invalidateScore(c.EmployeeID)

	s.logger.Info("Случай открыт",
		slog.String("case_id", c.ID),
		slog.String("employee_id", c.EmployeeID),
		slog.String("actor", actor.ID),
		slog.Int("milestones", len(ms)),
	)
	e := events.New(events.CaseOpened, actor.ID, c.ID, c.ID)
	e.To = string(c.Status)
	e.Attributes = map[string]string{"employee_id": c.EmployeeID, "absence_type": string(c.AbsenceType)}
	s.publish(ctx, e)

	views := make([]MilestoneView, 0, len(ms))
	for _, m := range ms {
		views = append(views, s.view(*m))
	}
	return &CaseDetails{
		Case:             c,
		Milestones:       views,
		AvailableActions: s.cases.Available(c.Status),
	}, nil
}

// GetCase возвращает случай с контрольными точками и активным направлением.
func (s *GovernanceService) GetCase(ctx context.Context, actor model.User, caseID string) (*CaseDetails, error) {
	if err := s.authz.Authorize(actor, rbac.CapCaseView); err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	views, err := s.listMilestones(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	details := &CaseDetails{
		Case:             c,
		Milestones:       views,
		AvailableActions: s.cases.Available(c.Status),
	}
	active, err := s.store.Referrals().GetActiveByCase(ctx, c.ID)
	switch {
	case err == nil:
		details.ActiveReferral = active
	case !errors.Is(err, repository.ErrNotFound):
		return nil, mapRepoErr(err, "активное направление случая %s", c.ID)
	}
	return details, nil
}

// ApplyCaseAction применяет действие жизненного цикла к случаю.
// endDate опционален, но переход в конечный статус требует даты окончания
// (переданной или уже сохранённой) не раньше даты начала.
func (s *GovernanceService) ApplyCaseAction(ctx context.Context, actor model.User, caseID string, action model.CaseAction, endDate *time.Time) (_ *model.SicknessCase, err error) {
	defer func() { observe("apply_case_action", err) }()

	if err := s.authz.Authorize(actor, rbac.CapCaseAction); err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	next, err := s.cases.Apply(c.Status, action)
	if err != nil {
		return nil, err
	}

	if endDate != nil {
		d := dateOf(*endDate)
		c.EndDate = &d
	}
	if c.EndDate != nil && c.EndDate.Before(dateOf(c.StartDate)) {
		return nil, fmt.Errorf("%w: end_date раньше start_date", model.ErrInvalidInput)
	}
	if s.cases.IsTerminal(next) && c.EndDate == nil {
		return nil, fmt.Errorf("%w: для действия %s требуется end_date", model.ErrInvalidInput, action)
	}

	prev := c.Status
	c.Status = next
	if err := s.store.Cases().UpdateStatus(ctx, c, prev); err != nil {
		return nil, mapRepoErr(err, "случай %s", c.ID)
	}
	s.invalidateScore(c.EmployeeID)

	s.logger.Info("Действие случая применено",
		slog.String("case_id", c.ID),
		slog.String("action", string(action)),
		slog.String("from", string(prev)),
		slog.String("to", string(next)),
		slog.String("actor", actor.ID),
	)
	e := events.New(events.CaseTransitioned, actor.ID, c.ID, c.ID)
	e.From, e.To = string(prev), string(next)
	e.Attributes = map[string]string{"action": string(action)}
	s.publish(ctx, e)

	return c, nil
}

// --- Направления ---

// OpenReferral открывает направление к врачу по охране труда.
// У случая может быть только одно незакрытое направление, закрытый случай
// направлений не принимает.
func (s *GovernanceService) OpenReferral(ctx context.Context, actor model.User, caseID, urgency, reason string) (_ *model.Referral, err error) {
	defer func() { observe("open_referral", err) }()

	if err := s.authz.Authorize(actor, rbac.CapReferralOpen); err != nil {
		return nil, err
	}
	u, err := model.ParseReferralUrgency(urgency)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason обязателен", model.ErrInvalidInput)
	}

	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if s.cases.IsTerminal(c.Status) {
		return nil, fmt.Errorf("%w: случай %s в статусе %s", model.ErrInvalidTransition, c.ID, c.Status)
	}

	if active, err := s.store.Referrals().GetActiveByCase(ctx, c.ID); err == nil && s.referrals.IsActive(active.Status) {
		return nil, fmt.Errorf("%w: у случая %s уже есть активное направление %s", ErrConflict, c.ID, active.ID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, mapRepoErr(err, "активное направление случая %s", c.ID)
	}

	ref := &model.Referral{
		ID:        uuid.NewString(),
		CaseID:    c.ID,
		Status:    s.referrals.Initial(),
		Urgency:   u,
		Reason:    reason,
		CreatedBy: actor.ID,
	}
	if err := s.store.Referrals().Create(ctx, ref); err != nil {
		return nil, mapRepoErr(err, "создание направления")
	}

	s.logger.Info("Направление открыто",
		slog.String("referral_id", ref.ID),
		slog.String("case_id", c.ID),
		slog.String("urgency", string(ref.Urgency)),
		slog.String("actor", actor.ID),
	)
	e := events.New(events.ReferralOpened, actor.ID, c.ID, ref.ID)
	e.To = string(ref.Status)
	e.Attributes = map[string]string{"urgency": string(ref.Urgency)}
	s.publish(ctx, e)

	return ref, nil
}

// GetReferral возвращает направление и допустимые следующие статусы.
func (s *GovernanceService) GetReferral(ctx context.Context, actor model.User, referralID string) (*ReferralDetails, error) {
	if err := s.authz.Authorize(actor, rbac.CapCaseView); err != nil {
		return nil, err
	}
	ref, err := s.loadReferral(ctx, referralID)
	if err != nil {
		return nil, err
	}
	return &ReferralDetails{Referral: ref, NextStatuses: s.referrals.NextStatuses(ref.Status)}, nil
}

// NextReferralStatuses возвращает статусы, допустимые из текущего.
func (s *GovernanceService) NextReferralStatuses(current model.ReferralStatus) []model.ReferralStatus {
	return s.referrals.NextStatuses(current)
}

// TransitionReferral переводит направление в целевой статус.
func (s *GovernanceService) TransitionReferral(ctx context.Context, actor model.User, referralID string, target model.ReferralStatus) (_ *model.Referral, err error) {
	defer func() { observe("transition_referral", err) }()

	if err := s.authz.Authorize(actor, rbac.CapReferralTransition); err != nil {
		return nil, err
	}
	ref, err := s.loadReferral(ctx, referralID)
	if err != nil {
		return nil, err
	}

	next, err := s.referrals.Transition(ref.Status, target)
	if err != nil {
		return nil, err
	}

	prev := ref.Status
	ref.Status = next
	if err := s.store.Referrals().UpdateStatus(ctx, ref, prev); err != nil {
		return nil, mapRepoErr(err, "направление %s", ref.ID)
	}

	s.logger.Info("Статус направления изменён",
		slog.String("referral_id", ref.ID),
		slog.String("from", string(prev)),
		slog.String("to", string(next)),
		slog.String("actor", actor.ID),
	)
	e := events.New(events.ReferralTransitioned, actor.ID, ref.CaseID, ref.ID)
	e.From, e.To = string(prev), string(next)
	s.publish(ctx, e)

	return ref, nil
}

// --- Контрольные точки ---

// ListMilestones возвращает контрольные точки случая в порядке сроков.
func (s *GovernanceService) ListMilestones(ctx context.Context, actor model.User, caseID string) ([]MilestoneView, error) {
	if err := s.authz.Authorize(actor, rbac.CapCaseView); err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return s.listMilestones(ctx, c.ID)
}

// CompleteMilestone завершает контрольную точку. Если точка предлагает
// действие случая и applyProposed = true, действие применяется отдельным
// шагом с собственной проверкой возможности. Ошибка этого шага не отменяет
// завершение точки и возвращается в MilestoneOutcome.ActionErr.
func (s *GovernanceService) CompleteMilestone(ctx context.Context, actor model.User, milestoneID, notes string, applyProposed bool) (_ *MilestoneOutcome, err error) {
	defer func() { observe("complete_milestone", err) }()

	m, err := s.loadMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	res, err := s.milestones.Complete(*m, actor, notes)
	if err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, actor, res, events.MilestoneCompleted); err != nil {
		return nil, err
	}

	out := &MilestoneOutcome{Milestone: s.view(res.Milestone), ProposedAction: res.ProposedAction}
	if applyProposed && res.ProposedAction != nil {
		c, actionErr := s.ApplyCaseAction(ctx, actor, res.Milestone.CaseID, *res.ProposedAction, nil)
		if actionErr != nil {
			s.logger.Warn("Предложенное действие не применено",
				slog.String("milestone_id", res.Milestone.ID),
				slog.String("action", string(*res.ProposedAction)),
				slog.String("error", actionErr.Error()),
			)
			out.ActionErr = actionErr
		} else {
			out.Case = c
		}
	}
	return out, nil
}

// SkipMilestone пропускает контрольную точку с обязательной причиной.
func (s *GovernanceService) SkipMilestone(ctx context.Context, actor model.User, milestoneID, reason string) (_ *MilestoneOutcome, err error) {
	defer func() { observe("skip_milestone", err) }()

	m, err := s.loadMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	res, err := s.milestones.Skip(*m, actor, reason)
	if err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, actor, res, events.MilestoneSkipped); err != nil {
		return nil, err
	}
	return &MilestoneOutcome{Milestone: s.view(res.Milestone)}, nil
}

// resolve сохраняет закрытие точки и публикует событие.
func (s *GovernanceService) resolve(ctx context.Context, actor model.User, res milestone.Result, eventType string) error {
	m := res.Milestone
	if err := s.store.Milestones().Resolve(ctx, &m, res.Previous); err != nil {
		return mapRepoErr(err, "контрольная точка %s", m.ID)
	}

	s.logger.Info("Контрольная точка закрыта",
		slog.String("milestone_id", m.ID),
		slog.String("case_id", m.CaseID),
		slog.String("key", m.Key),
		slog.String("state", string(m.State)),
		slog.String("actor", actor.ID),
	)
	e := events.New(eventType, actor.ID, m.CaseID, m.ID)
	e.From, e.To = string(res.Previous), string(m.State)
	e.Attributes = map[string]string{"key": m.Key}
	if res.ProposedAction != nil {
		e.Attributes["proposed_action"] = string(*res.ProposedAction)
	}
	s.publish(ctx, e)
	return nil
}

// --- Коэффициент Брэдфорда ---

// Score вычисляет коэффициент по переданным счётчикам.
func (s *GovernanceService) Score(actor model.User, occurrences, totalDays int) (bradford.Score, error) {
	if err := s.authz.Authorize(actor, rbac.CapScoreView); err != nil {
		return bradford.Score{}, err
	}
	return s.scorer.Score(occurrences, totalDays)
}

// ScoreEmployee агрегирует случаи сотрудника за скользящее окно
// и вычисляет коэффициент. Агрегат кэшируется.
func (s *GovernanceService) ScoreEmployee(ctx context.Context, actor model.User, employeeID string) (*EmployeeScore, error) {
	if err := s.authz.Authorize(actor, rbac.CapScoreView); err != nil {
		return nil, err
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee_id обязателен", model.ErrInvalidInput)
	}

	stats, ok := s.cachedStats(employeeID)
	if !ok {
		var err error
		stats, err = s.aggregateAndCache(ctx, employeeID)
		if err != nil {
			return nil, err
		}
	}

	score, err := s.scorer.Score(stats.Occurrences, stats.TotalDays)
	if err != nil {
		return nil, err
	}
	return &EmployeeScore{Stats: stats, Score: score}, nil
}

// aggregate считает эпизоды отсутствия и календарные дни, попавшие в окно.
// Открытый случай длится до конца окна. Пересекающиеся случаи сливаются
// в один эпизод, общие дни считаются один раз.
func (s *GovernanceService) aggregate(ctx context.Context, employeeID string) (model.AbsenceStats, error) {
	end := dateOf(s.now())
	start := end.AddDate(0, 0, -(s.windowDays - 1))

	cases, err := s.store.Cases().ListByEmployee(ctx, employeeID, start, end)
	if err != nil {
		return model.AbsenceStats{}, mapRepoErr(err, "случаи сотрудника %s", employeeID)
	}

	spells := make([]spell, 0, len(cases))
	for _, c := range cases {
		from := dateOf(c.StartDate)
		if from.Before(start) {
			from = start
		}
		to := end
		if c.EndDate != nil && dateOf(*c.EndDate).Before(end) {
			to = dateOf(*c.EndDate)
		}
		if to.Before(from) {
			continue
		}
		spells = append(spells, spell{from: from, to: to})
	}

	stats := model.AbsenceStats{EmployeeID: employeeID, WindowStart: start, WindowEnd: end}
	for _, sp := range mergeSpells(spells) {
		stats.Occurrences++
		stats.TotalDays += int(sp.to.Sub(sp.from).Hours()/24) + 1
	}
	return stats, nil
}

// spell — эпизод отсутствия, обе даты включительно.
type spell struct {
	from, to time.Time
}

// mergeSpells сливает пересекающиеся эпизоды. Смежные (конец и начало
// в соседние дни) остаются отдельными.
func mergeSpells(spells []spell) []spell {
	if len(spells) == 0 {
		return nil
	}
	sort.Slice(spells, func(i, j int) bool { return spells[i].from.Before(spells[j].from) })

	merged := []spell{spells[0]}
	for _, sp := range spells[1:] {
		last := &merged[len(merged)-1]
		if sp.from.After(last.to) {
			merged = append(merged, sp)
			continue
		}
		if sp.to.After(last.to) {
			last.to = sp.to
		}
	}
	return merged
}

// aggregateAndCache считает агрегат и кладёт его в кэш, если за время
// расчёта случаи сотрудника не менялись.
func (s *GovernanceService) aggregateAndCache(ctx context.Context, employeeID string) (model.AbsenceStats, error) {
	if s.cache == nil {
		return s.aggregate(ctx, employeeID)
	}
	gen := s.cache.Begin(employeeID)
	stats, err := s.aggregate(ctx, employeeID)
	if err != nil {
		s.cache.Abort(employeeID)
		return model.AbsenceStats{}, err
	}
	if !s.cache.Commit(stats, gen) {
		s.logger.Debug("Агрегат устарел во время расчёта, в кэш не записан",
			slog.String("employee_id", employeeID),
		)
	}
	return stats, nil
}

func (s *GovernanceService) cachedStats(employeeID string) (model.AbsenceStats, bool) {
	if s.cache == nil {
		return model.AbsenceStats{}, false
	}
	stats, ok := s.cache.Get(employeeID)
	if !ok || !stats.WindowEnd.Equal(dateOf(s.now())) {
		return model.AbsenceStats{}, false
	}
	return stats, true
}

func (s *GovernanceService) invalidateScore(employeeID string) {
	if s.cache != nil {
		s.cache.Invalidate(employeeID)
	}
}

// --- Вспомогательные ---

func (s *GovernanceService) loadCase(ctx context.Context, id string) (*model.SicknessCase, error) {
	if err := validID(id, "случай"); err != nil {
		return nil, err
	}
	c, err := s.store.Cases().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "случай %s", id)
	}
	return c, nil
}

func (s *GovernanceService) loadReferral(ctx context.Context, id string) (*model.Referral, error) {
	if err := validID(id, "направление"); err != nil {
		return nil, err
	}
	ref, err := s.store.Referrals().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "направление %s", id)
	}
	return ref, nil
}

func (s *GovernanceService) loadMilestone(ctx context.Context, id string) (*model.Milestone, error) {
	if err := validID(id, "контрольная точка"); err != nil {
		return nil, err
	}
	m, err := s.store.Milestones().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "контрольная точка %s", id)
	}
	return m, nil
}

func (s *GovernanceService) listMilestones(ctx context.Context, caseID string) ([]MilestoneView, error) {
	ms, err := s.store.Milestones().ListByCase(ctx, caseID)
	if err != nil {
		return nil, mapRepoErr(err, "контрольные точки случая %s", caseID)
	}
	views := make([]MilestoneView, 0, len(ms))
	for _, m := range ms {
		views = append(views, s.view(*m))
	}
	return views, nil
}

func (s *GovernanceService) view(m model.Milestone) MilestoneView {
	return MilestoneView{Milestone: m, Overdue: milestone.IsOverdue(m, s.now())}
}

func (s *GovernanceService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Не удалось опубликовать событие",
			slog.String("event_id", e.ID),
			slog.String("type", e.Type),
			slog.String("error", err.Error()),
		)
	}
}

// validID — идентификаторы сущностей являются UUID; иное значение
// не может существовать в хранилище.
func validID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s %q", ErrNotFound, what, id)
	}
	return nil
}

// dateOf отбрасывает время суток (UTC).
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
