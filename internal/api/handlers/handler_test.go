package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/bigkaa/absence-governance/internal/api/generated"
	"github.com/bigkaa/absence-governance/internal/api/middleware"
	"github.com/bigkaa/absence-governance/internal/api/spec"
	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/domain/rbac"
	"github.com/bigkaa/absence-governance/internal/events"
	"github.com/bigkaa/absence-governance/internal/policy"
	"github.com/bigkaa/absence-governance/internal/repository/memstore"
	"github.com/bigkaa/absence-governance/internal/service"
)

var (
	manager  = &model.User{ID: "manager-1", Roles: []model.Role{model.RoleManager}}
	hr       = &model.User{ID: "hr-1", Roles: []model.Role{model.RoleHR}}
	employee = &model.User{ID: "employee-1", Roles: []model.Role{model.RoleEmployee}}
	nobody   = &model.User{ID: "nobody"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAPI — роутер с обработчиком; субъект запроса задаётся заголовком X-Test-User.
type testAPI struct {
	router http.Handler
	users  map[string]*model.User
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	p, err := policy.Default()
	if err != nil {
		t.Fatalf("policy.Default: %v", err)
	}
	g, err := p.Compile(rbac.NewEmailAllowList(nil), time.Now)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	gov := service.NewGovernanceService(g, memstore.New(time.Now), events.NewLogPublisher(discardLogger()),
		service.NewScoreCache(10, time.Minute), 365, discardLogger())
	h := NewAPIHandler(NewHealthHandler(nil), gov, discardLogger())

	api := &testAPI{users: map[string]*model.User{
		manager.ID:  manager,
		hr.ID:       hr,
		employee.ID: employee,
		nobody.ID:   nobody,
	}}
	doc, err := spec.Load()
	if err != nil {
		t.Fatalf("spec.Load: %v", err)
	}
	validator, err := middleware.RequestValidator(doc)
	if err != nil {
		t.Fatalf("RequestValidator: %v", err)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if u, ok := api.users[req.Header.Get("X-Test-User")]; ok {
				req = req.WithContext(middleware.WithUser(req.Context(), u))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Use(validator)
	generated.HandlerWithOptions(h, generated.ChiServerOptions{BaseRouter: r, ErrorHandlerFunc: ParamError})
	api.router = r
	return api
}

// do выполняет запрос и разбирает JSON-ответ в out (если out != nil).
func (a *testAPI) do(t *testing.T, user *model.User, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("X-Test-User", user.ID)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: ответ не JSON: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code
}

type errorBody = generated.ErrorResponse

func day(d openapi_types.Date) string {
	return d.Format(openapi_types.DateFormat)
}

func (a *testAPI) openCase(t *testing.T, employeeID, start string) generated.CaseDetails {
	t.Helper()
	var resp generated.CaseDetails
	code := a.do(t, manager, http.MethodPost, "/api/v1/cases", map[string]any{
		"organisation_id": "org-1",
		"employee_id":     employeeID,
		"absence_type":    "ILLNESS",
		"start_date":      start,
	}, &resp)
	if code != http.StatusCreated {
		t.Fatalf("POST /cases: статус %d", code)
	}
	return resp
}

func findMilestone(t *testing.T, items []generated.Milestone, key string) generated.Milestone {
	t.Helper()
	for _, m := range items {
		if m.Key == key {
			return m
		}
	}
	t.Fatalf("контрольная точка %s не найдена", key)
	return generated.Milestone{}
}

// --- Тесты ---

func TestGetCurrentUser(t *testing.T) {
	api := newTestAPI(t)

	var resp generated.Identity
	if code := api.do(t, hr, http.MethodGet, "/api/v1/me", nil, &resp); code != http.StatusOK {
		t.Fatalf("статус = %d, ожидали 200", code)
	}
	if resp.Id != "hr-1" || resp.EffectiveRole == nil || *resp.EffectiveRole != "hr" || resp.SuperAdmin {
		t.Errorf("ответ = %+v", resp)
	}

	var none generated.Identity
	api.do(t, nobody, http.MethodGet, "/api/v1/me", nil, &none)
	if none.EffectiveRole != nil || len(none.Capabilities) != 0 {
		t.Errorf("пользователь без ролей: %+v", none)
	}
}

func TestNoUserInContext(t *testing.T) {
	api := newTestAPI(t)

	var body errorBody
	code := api.do(t, nil, http.MethodGet, "/api/v1/me", nil, &body)
	if code != http.StatusUnauthorized || body.Error.Code != "UNAUTHORIZED" {
		t.Errorf("статус = %d, код = %s", code, body.Error.Code)
	}
}

func TestOpenCase(t *testing.T) {
	api := newTestAPI(t)

	resp := api.openCase(t, "emp-1", "2026-04-01")
	if resp.Case.Status != "OPEN" || day(resp.Case.StartDate) != "2026-04-01" || resp.Case.EndDate != nil {
		t.Errorf("case = %+v", resp.Case)
	}
	if len(resp.Milestones) != 5 {
		t.Errorf("контрольных точек %d, ожидали 5", len(resp.Milestones))
	}
	if resp.ActiveReferral != nil {
		t.Errorf("active_referral = %+v, ожидали null", resp.ActiveReferral)
	}
}

func TestOpenCase_Errors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name     string
		user     *model.User
		body     any
		wantCode int
		wantErr  string
	}{
		{
			name:     "нет возможности case.open",
			user:     employee,
			body:     map[string]any{"organisation_id": "o", "employee_id": "e", "absence_type": "ILLNESS", "start_date": "2026-04-01"},
			wantCode: http.StatusForbidden,
			wantErr:  "FORBIDDEN",
		},
		{
			name:     "неверная дата",
			user:     manager,
			body:     map[string]any{"organisation_id": "o", "employee_id": "e", "absence_type": "ILLNESS", "start_date": "01.04.2026"},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "неизвестный тип отсутствия",
			user:     manager,
			body:     map[string]any{"organisation_id": "o", "employee_id": "e", "absence_type": "HOLIDAY", "start_date": "2026-04-01"},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "неизвестное поле",
			user:     manager,
			body:     map[string]any{"employee": "e"},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			code := api.do(t, tt.user, http.MethodPost, "/api/v1/cases", tt.body, &body)
			if code != tt.wantCode || body.Error.Code != tt.wantErr {
				t.Errorf("статус = %d (%s), ожидали %d (%s)", code, body.Error.Code, tt.wantCode, tt.wantErr)
			}
		})
	}
}

func TestGetCase_NotFound(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		id       string
		wantCode int
		wantErr  string
	}{
		{"not-a-uuid", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"6f1c1c8e-0000-4000-8000-000000000000", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		var body errorBody
		code := api.do(t, manager, http.MethodGet, "/api/v1/cases/"+tt.id, nil, &body)
		if code != tt.wantCode || body.Error.Code != tt.wantErr {
			t.Errorf("GET /cases/%s: статус = %d (%s), ожидали %d (%s)", tt.id, code, body.Error.Code, tt.wantCode, tt.wantErr)
		}
	}
}

func TestApplyCaseAction(t *testing.T) {
	api := newTestAPI(t)
	created := api.openCase(t, "emp-1", "2026-04-01")
	path := "/api/v1/cases/" + created.Case.Id.String() + "/actions"

	var c generated.Case
	if code := api.do(t, hr, http.MethodPost, path, map[string]any{"action": "receive_fit_note"}, &c); code != http.StatusOK {
		t.Fatalf("RECEIVE_FIT_NOTE: статус %d", code)
	}
	if c.Status != "FIT_NOTE_RECEIVED" {
		t.Errorf("status = %s", c.Status)
	}

	// Закрытие без даты окончания.
	var body errorBody
	if code := api.do(t, hr, http.MethodPost, path, map[string]any{"action": "CLOSE_CASE"}, &body); code != http.StatusBadRequest {
		t.Errorf("CLOSE_CASE без end_date: статус = %d, ожидали 400", code)
	}

	if code := api.do(t, hr, http.MethodPost, path, map[string]any{"action": "CLOSE_CASE", "end_date": "2026-04-05"}, &c); code != http.StatusOK {
		t.Fatalf("CLOSE_CASE: статус %d", code)
	}
	if c.Status != "CLOSED" || c.EndDate == nil || day(*c.EndDate) != "2026-04-05" {
		t.Errorf("case = %+v", c)
	}

	body = errorBody{}
	code := api.do(t, hr, http.MethodPost, path, map[string]any{"action": "PLAN_RETURN"}, &body)
	if code != http.StatusConflict || body.Error.Code != "INVALID_TRANSITION" {
		t.Errorf("переход из CLOSED: статус = %d (%s)", code, body.Error.Code)
	}
}

// openReferral открывает направление по случаю от имени hr.
func (a *testAPI) openReferral(t *testing.T, caseID string) generated.Referral {
	t.Helper()
	var ref generated.Referral
	code := a.do(t, hr, http.MethodPost, "/api/v1/cases/"+caseID+"/referrals",
		map[string]any{"reason": "повторные отсутствия"}, &ref)
	if code != http.StatusCreated {
		t.Fatalf("POST /referrals: статус %d", code)
	}
	return ref
}

func (a *testAPI) transition(t *testing.T, user *model.User, referralID, status string, out any) int {
	t.Helper()
	return a.do(t, user, http.MethodPost, "/api/v1/referrals/"+referralID+"/transitions",
		map[string]any{"status": status}, out)
}

// TestReferralWorkflow_DirectClose — SUBMITTED → CLOSED разрешён напрямую,
// после закрытия по случаю можно открыть новое направление.
func TestReferralWorkflow_DirectClose(t *testing.T) {
	api := newTestAPI(t)
	created := api.openCase(t, "emp-1", "2026-04-01")
	caseID := created.Case.Id.String()

	ref := api.openReferral(t, caseID)
	if ref.Status != "SUBMITTED" || ref.Urgency != "STANDARD" || len(ref.NextStatuses) != 2 {
		t.Errorf("referral = %+v", ref)
	}

	var body errorBody
	code := api.do(t, hr, http.MethodPost, "/api/v1/cases/"+caseID+"/referrals",
		map[string]any{"reason": "ещё одно"}, &body)
	if code != http.StatusConflict || body.Error.Code != "CONFLICT" {
		t.Errorf("второе активное направление: статус = %d (%s)", code, body.Error.Code)
	}

	var closed generated.Referral
	if code := api.transition(t, hr, ref.Id.String(), "CLOSED", &closed); code != http.StatusOK {
		t.Fatalf("SUBMITTED → CLOSED: статус = %d, ожидали 200", code)
	}
	if closed.Status != "CLOSED" || len(closed.NextStatuses) != 0 {
		t.Errorf("referral = %+v", closed)
	}

	var got generated.Referral
	if code := api.do(t, manager, http.MethodGet, "/api/v1/referrals/"+ref.Id.String(), nil, &got); code != http.StatusOK || got.Status != "CLOSED" {
		t.Errorf("GET /referrals: статус %d, referral = %+v", code, got)
	}

	body = errorBody{}
	if code := api.transition(t, hr, ref.Id.String(), "IN_PROGRESS", &body); code != http.StatusConflict || body.Error.Code != "INVALID_TRANSITION" {
		t.Errorf("переход из CLOSED: статус = %d (%s)", code, body.Error.Code)
	}

	next := api.openReferral(t, caseID)
	if next.Id == ref.Id || next.Status != "SUBMITTED" {
		t.Errorf("новое направление = %+v", next)
	}
}

// TestReferralWorkflow_Linear — полный путь SUBMITTED → IN_PROGRESS →
// REPORT_RECEIVED → CLOSED, возврат назад запрещён.
func TestReferralWorkflow_Linear(t *testing.T) {
	api := newTestAPI(t)
	created := api.openCase(t, "emp-2", "2026-04-01")
	ref := api.openReferral(t, created.Case.Id.String())
	id := ref.Id.String()

	if code := api.transition(t, hr, id, "in_progress", &ref); code != http.StatusOK || ref.Status != "IN_PROGRESS" {
		t.Fatalf("SUBMITTED → IN_PROGRESS: статус %d, referral = %+v", code, ref)
	}

	var body errorBody
	if code := api.transition(t, hr, id, "SUBMITTED", &body); code != http.StatusConflict || body.Error.Code != "INVALID_TRANSITION" {
		t.Errorf("IN_PROGRESS → SUBMITTED: статус = %d (%s), ожидали 409 INVALID_TRANSITION", code, body.Error.Code)
	}

	body = errorBody{}
	if code := api.transition(t, manager, id, "REPORT_RECEIVED", &body); code != http.StatusForbidden || body.Error.Code != "FORBIDDEN" {
		t.Errorf("менеджер без referral.transition: статус = %d (%s), ожидали 403", code, body.Error.Code)
	}

	for _, status := range []string{"REPORT_RECEIVED", "CLOSED"} {
		if code := api.transition(t, hr, id, status, &ref); code != http.StatusOK {
			t.Fatalf("переход в %s: статус %d", status, code)
		}
	}
	if ref.Status != "CLOSED" || len(ref.NextStatuses) != 0 {
		t.Errorf("referral = %+v", ref)
	}
}

func TestMilestones(t *testing.T) {
	api := newTestAPI(t)
	created := api.openCase(t, "emp-1", "2026-04-01")

	var list generated.MilestoneList
	if code := api.do(t, manager, http.MethodGet, "/api/v1/cases/"+created.Case.Id.String()+"/milestones", nil, &list); code != http.StatusOK {
		t.Fatalf("GET /milestones: статус %d", code)
	}
	day7 := findMilestone(t, list.Items, "day_7")
	day3 := findMilestone(t, list.Items, "day_3")

	// Менеджер завершает точку, но применить действие не может.
	var out generated.MilestoneOutcome
	code := api.do(t, manager, http.MethodPost, "/api/v1/milestones/"+day7.Id.String()+"/complete",
		map[string]any{"notes": "звонок", "apply_proposed_action": true}, &out)
	if code != http.StatusOK {
		t.Fatalf("complete: статус %d", code)
	}
	if out.Milestone.State != "COMPLETED" || out.ProposedAction == nil || *out.ProposedAction != "RECEIVE_FIT_NOTE" {
		t.Errorf("outcome = %+v", out)
	}
	if out.ActionError == nil || out.ActionError.Code != "FORBIDDEN" || out.Case != nil {
		t.Errorf("action_error = %+v, case = %+v", out.ActionError, out.Case)
	}

	var body errorBody
	code = api.do(t, manager, http.MethodPost, "/api/v1/milestones/"+day7.Id.String()+"/complete", map[string]any{}, &body)
	if code != http.StatusConflict || body.Error.Code != "ALREADY_RESOLVED" {
		t.Errorf("повторное завершение: статус = %d (%s)", code, body.Error.Code)
	}

	body = errorBody{}
	code = api.do(t, manager, http.MethodPost, "/api/v1/milestones/"+day3.Id.String()+"/skip", map[string]any{"reason": "  "}, &body)
	if code != http.StatusBadRequest || body.Error.Code != "REASON_REQUIRED" {
		t.Errorf("пропуск без причины: статус = %d (%s)", code, body.Error.Code)
	}

	out = generated.MilestoneOutcome{}
	code = api.do(t, manager, http.MethodPost, "/api/v1/milestones/"+day3.Id.String()+"/skip", map[string]any{"reason": "больничный продлён"}, &out)
	if code != http.StatusOK || out.Milestone.State != "SKIPPED" || out.Milestone.SkipReason == nil || *out.Milestone.SkipReason != "больничный продлён" {
		t.Errorf("skip: статус = %d, outcome = %+v", code, out)
	}
}

func TestBradford(t *testing.T) {
	api := newTestAPI(t)

	var score generated.BradfordScore
	code := api.do(t, manager, http.MethodPost, "/api/v1/bradford/score", map[string]any{"occurrences": 3, "total_days": 16}, &score)
	if code != http.StatusOK || score.Value != 144 || score.Tier != generated.Orange {
		t.Errorf("score: статус = %d, %+v", code, score)
	}

	var body errorBody
	code = api.do(t, employee, http.MethodPost, "/api/v1/bradford/score", map[string]any{"occurrences": 1, "total_days": 1}, &body)
	if code != http.StatusForbidden {
		t.Errorf("сотрудник без score.view: статус = %d, ожидали 403", code)
	}

	today := time.Now().UTC()
	api.openCase(t, "emp-7", today.AddDate(0, 0, -2).Format(openapi_types.DateFormat))

	var emp generated.EmployeeScore
	if code := api.do(t, manager, http.MethodGet, "/api/v1/employees/emp-7/bradford", nil, &emp); code != http.StatusOK {
		t.Fatalf("GET /bradford: статус %d", code)
	}
	if emp.Occurrences != 1 || emp.TotalDays != 3 || emp.Score.Value != 3 || day(emp.WindowEnd) != today.Format(openapi_types.DateFormat) {
		t.Errorf("employee score = %+v", emp)
	}
}
