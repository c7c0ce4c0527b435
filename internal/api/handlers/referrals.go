package handlers

import (
	"net/http"

	"github.com/bigkaa/absence-governance/internal/api/generated"
	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// OpenReferral открывает направление по случаю.
// POST /api/v1/cases/{caseId}/referrals
func (h *APIHandler) OpenReferral(w http.ResponseWriter, r *http.Request, caseID generated.CaseId) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req generated.OpenReferralJSONRequestBody
	if !decodeBody(w, r, &req) {
		return
	}
	ref, err := h.gov.OpenReferral(r.Context(), user, caseID.String(), derefString(req.Urgency), derefString(req.Reason))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReferral(ref, h.gov.NextReferralStatuses(ref.Status)))
}

// GetReferral возвращает направление.
// GET /api/v1/referrals/{referralId}
func (h *APIHandler) GetReferral(w http.ResponseWriter, r *http.Request, referralID generated.ReferralId) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	d, err := h.gov.GetReferral(r.Context(), user, referralID.String())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReferral(d.Referral, d.NextStatuses))
}

// TransitionReferral переводит направление в новый статус.
// POST /api/v1/referrals/{referralId}/transitions
func (h *APIHandler) TransitionReferral(w http.ResponseWriter, r *http.Request, referralID generated.ReferralId) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req generated.TransitionReferralJSONRequestBody
	if !decodeBody(w, r, &req) {
		return
	}
	target, err := model.ParseReferralStatus(req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	ref, err := h.gov.TransitionReferral(r.Context(), user, referralID.String(), target)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReferral(ref, h.gov.NextReferralStatuses(ref.Status)))
}
