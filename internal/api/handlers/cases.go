// cases.go — обработчики случаев отсутствия и контрольных точек.
package handlers

import (
	"net/http"
	"strings"

	apierrors "github.com/bigkaa/absence-governance/internal/api/errors"
	"github.com/bigkaa/absence-governance/internal/api/generated"
	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/service"
)

// GetCurrentUser возвращает субъекта, его эффективную роль и возможности.
// GET /api/v1/me
func (h *APIHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toIdentity(h.gov.Whoami(user)))
}

// OpenCase открывает случай отсутствия.
// POST /api/v1/cases
func (h *APIHandler) OpenCase(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req generated.OpenCaseJSONRequestBody
	if !decodeBody(w, r, &req) {
		return
	}

	details, err := h.gov.OpenCase(r.Context(), user, service.OpenCaseInput{
		OrganisationID: req.OrganisationId,
		EmployeeID:     req.EmployeeId,
		AbsenceType:    req.AbsenceType,
		StartDate:      req.StartDate.Time,
		EndDate:        fromDate(req.EndDate),
		Notes:          derefString(req.Notes),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCaseDetails(details, h.gov.NextReferralStatuses))
}

// GetCase возвращает случай с контрольными точками и активным направлением.
// GET /api/v1/cases/{caseId}
func (h *APIHandler) GetCase(w http.ResponseWriter, r *http.Request, caseID generated.CaseId) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	details, err := h.gov.GetCase(r.Context(), user, caseID.String())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDetails(details, h.gov.NextReferralStatuses))
}

// ApplyCaseAction применяет действие жизненного цикла.
// POST /api/v1/cases/{caseId}/actions
func (h *APIHandler) ApplyCaseAction(w http.ResponseWriter, r *http.Request, caseID generated.CaseId) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req generated.ApplyCaseActionJSONRequestBody
	if !decodeBody(w, r, &req) {
		return
	}

	action := model.CaseAction(strings.ToUpper(strings.TrimSpace(req.Action)))
	if action == "" {
		apierrors.ValidationError(w, "action обязателен")
		return
	}
	c, err := h.gov.ApplyCaseAction(r.Context(), user, caseID.String(), action, fromDate(req.EndDate))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCase(c))
}

// ListMilestones возвращает контрольные точки случая.
// GET /api/v1/cases/{caseId}/milestones
func (h *APIHandler) ListMilestones(w http.ResponseWriter, r *http.Request, caseID generated.CaseId) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	views, err := h.gov.ListMilestones(r.Context(), user, caseID.String())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generated.MilestoneList{Items: toMilestones(views)})
}

// CompleteMilestone завершает контрольную точку.
// POST /api/v1/milestones/{milestoneId}/complete
func (h *APIHandler) CompleteMilestone(w http.ResponseWriter, r *http.Request, milestoneID generated.MilestoneId) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req generated.CompleteMilestoneJSONRequestBody
	if !decodeBody(w, r, &req) {
		return
	}
	apply := req.ApplyProposedAction != nil && *req.ApplyProposedAction
	out, err := h.gov.CompleteMilestone(r.Context(), user, milestoneID.String(), derefString(req.Notes), apply)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMilestoneOutcome(out))
}

// SkipMilestone пропускает контрольную точку.
// POST /api/v1/milestones/{milestoneId}/skip
func (h *APIHandler) SkipMilestone(w http.ResponseWriter, r *http.Request, milestoneID generated.MilestoneId) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req generated.SkipMilestoneJSONRequestBody
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.gov.SkipMilestone(r.Context(), user, milestoneID.String(), derefString(req.Reason))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMilestoneOutcome(out))
}
