// dto.go — преобразование моделей ядра в типы контракта.
package handlers

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	apierrors "github.com/bigkaa/absence-governance/internal/api/errors"
	"github.com/bigkaa/absence-governance/internal/api/generated"
	"github.com/bigkaa/absence-governance/internal/domain/bradford"
	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/service"
)

// optString — nil для пустой строки.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDate(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: t}
}

func fromDate(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// toUUID разбирает идентификатор хранилища. Хранилище выдаёт только UUID,
// непарсящийся идентификатор отображается нулевым.
func toUUID(id string) openapi_types.UUID {
	u, _ := uuid.Parse(id)
	return u
}

func toCase(c *model.SicknessCase) generated.Case {
	resp := generated.Case{
		Id:             toUUID(c.ID),
		OrganisationId: c.OrganisationID,
		EmployeeId:     c.EmployeeID,
		AbsenceType:    string(c.AbsenceType),
		Status:         string(c.Status),
		StartDate:      toDate(c.StartDate),
		Notes:          optString(c.Notes),
		CreatedBy:      c.CreatedBy,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
	if c.EndDate != nil {
		end := toDate(*c.EndDate)
		resp.EndDate = &end
	}
	return resp
}

func toMilestone(v service.MilestoneView) generated.Milestone {
	return generated.Milestone{
		Id:         toUUID(v.ID),
		CaseId:     toUUID(v.CaseID),
		Key:        v.Key,
		Name:       v.Name,
		DueAt:      v.DueAt,
		State:      string(v.State),
		Overdue:    v.Overdue,
		Notes:      optString(v.Notes),
		SkipReason: optString(v.SkipReason),
		ResolvedBy: optString(v.ResolvedBy),
		ResolvedAt: v.ResolvedAt,
	}
}

func toMilestones(views []service.MilestoneView) []generated.Milestone {
	items := make([]generated.Milestone, 0, len(views))
	for _, v := range views {
		items = append(items, toMilestone(v))
	}
	return items
}

func toReferral(r *model.Referral, next []model.ReferralStatus) generated.Referral {
	statuses := make([]string, 0, len(next))
	for _, s := range next {
		statuses = append(statuses, string(s))
	}
	return generated.Referral{
		Id:           toUUID(r.ID),
		CaseId:       toUUID(r.CaseID),
		Status:       string(r.Status),
		Urgency:      string(r.Urgency),
		Reason:       r.Reason,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		NextStatuses: statuses,
	}
}

func toCaseDetails(d *service.CaseDetails, next func(model.ReferralStatus) []model.ReferralStatus) generated.CaseDetails {
	actions := make([]string, 0, len(d.AvailableActions))
	for _, a := range d.AvailableActions {
		actions = append(actions, string(a))
	}
	resp := generated.CaseDetails{
		Case:             toCase(d.Case),
		Milestones:       toMilestones(d.Milestones),
		AvailableActions: actions,
	}
	if d.ActiveReferral != nil {
		ref := toReferral(d.ActiveReferral, next(d.ActiveReferral.Status))
		resp.ActiveReferral = &ref
	}
	return resp
}

// toMilestoneOutcome — ошибка применения предложенного действия
// классифицируется так же, как ошибка запроса.
func toMilestoneOutcome(o *service.MilestoneOutcome) generated.MilestoneOutcome {
	resp := generated.MilestoneOutcome{Milestone: toMilestone(o.Milestone)}
	if o.ProposedAction != nil {
		resp.ProposedAction = optString(string(*o.ProposedAction))
	}
	if o.Case != nil {
		c := toCase(o.Case)
		resp.Case = &c
	}
	if o.ActionErr != nil {
		_, code := apierrors.Classify(o.ActionErr)
		resp.ActionError = &generated.ActionError{Code: code, Message: o.ActionErr.Error()}
	}
	return resp
}

func toIdentity(id service.Identity) generated.Identity {
	roles := make([]string, 0, len(id.User.Roles))
	for _, r := range id.User.Roles {
		roles = append(roles, string(r))
	}
	caps := make([]string, 0, len(id.Capabilities))
	for _, c := range id.Capabilities {
		caps = append(caps, string(c))
	}
	resp := generated.Identity{
		Id:           id.User.ID,
		Email:        optString(id.User.Email),
		Roles:        roles,
		SuperAdmin:   id.SuperAdmin,
		Capabilities: caps,
	}
	if id.HasRole {
		resp.EffectiveRole = optString(string(id.EffectiveRole))
	}
	return resp
}

func toBradfordScore(s bradford.Score) generated.BradfordScore {
	return generated.BradfordScore{Value: s.Value, Tier: generated.BradfordScoreTier(s.Tier)}
}

func toEmployeeScore(s *service.EmployeeScore) generated.EmployeeScore {
	return generated.EmployeeScore{
		EmployeeId:  s.Stats.EmployeeID,
		WindowStart: toDate(s.Stats.WindowStart),
		WindowEnd:   toDate(s.Stats.WindowEnd),
		Occurrences: s.Stats.Occurrences,
		TotalDays:   s.Stats.TotalDays,
		Score:       toBradfordScore(s.Score),
	}
}
