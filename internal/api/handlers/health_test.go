package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticChecker struct {
	status, message string
}

func (c staticChecker) CheckReady() (string, string) { return c.status, c.message }

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"все ok", []string{"ok", "ok"}, "ok"},
		{"одна degraded", []string{"ok", "degraded"}, "degraded"},
		{"fail важнее degraded", []string{"degraded", "fail"}, "fail"},
		{"без проверок", nil, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overallStatus(tt.statuses...); got != tt.want {
				t.Errorf("overallStatus(%v) = %s, ожидали %s", tt.statuses, got, tt.want)
			}
		})
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		checkers   map[string]ReadinessChecker
		wantStatus string
		wantCode   int
	}{
		{
			name:       "все зависимости доступны",
			checkers:   map[string]ReadinessChecker{"postgresql": staticChecker{"ok", ""}, "keycloak": staticChecker{"ok", ""}},
			wantStatus: "ok",
			wantCode:   http.StatusOK,
		},
		{
			name:       "keycloak деградирован",
			checkers:   map[string]ReadinessChecker{"keycloak": staticChecker{"degraded", "HTTP 500"}},
			wantStatus: "degraded",
			wantCode:   http.StatusOK,
		},
		{
			name:       "проверка не инициализирована",
			checkers:   map[string]ReadinessChecker{"postgresql": nil},
			wantStatus: "fail",
			wantCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checkers)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("статус = %d, ожидали %d", rec.Code, tt.wantCode)
			}
			var resp healthReadyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("ответ не JSON: %v", err)
			}
			if resp.Status != tt.wantStatus || resp.Service != serviceName || len(resp.Checks) != len(tt.checkers) {
				t.Errorf("ответ = %+v", resp)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil)
	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	var resp healthLiveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ответ не JSON: %v", err)
	}
	if rec.Code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("статус = %d, ответ = %+v", rec.Code, resp)
	}
}
