package handlers

import (
	"net/http"

	"github.com/bigkaa/absence-governance/internal/api/generated"
)

// ScoreEmployee возвращает коэффициент Брэдфорда сотрудника за окно.
// GET /api/v1/employees/{employeeId}/bradford
func (h *APIHandler) ScoreEmployee(w http.ResponseWriter, r *http.Request, employeeID generated.EmployeeId) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	res, err := h.gov.ScoreEmployee(r.Context(), user, employeeID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeScore(res))
}

// CalculateBradfordScore вычисляет коэффициент по переданным счётчикам.
// POST /api/v1/bradford/score
func (h *APIHandler) CalculateBradfordScore(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req generated.CalculateBradfordScoreJSONRequestBody
	if !decodeBody(w, r, &req) {
		return
	}
	score, err := h.gov.Score(user, req.Occurrences, req.TotalDays)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBradfordScore(score))
}
