package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestRoutePattern(t *testing.T) {
	var got string
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			got = routePattern(r)
		})
	})
	router.Get("/api/v1/cases/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name string
		path string
		want string
	}{
		{"шаблон вместо ID", "/api/v1/cases/0b9c5a44-4a4c-4f43-b1a8-5d1f0a3c8e11", "/api/v1/cases/{id}"},
		{"нет маршрута", "/unknown", "unmatched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = ""
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
			if got != tt.want {
				t.Errorf("routePattern = %q, ожидали %q", got, tt.want)
			}
		})
	}
}
