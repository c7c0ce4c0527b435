package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/service"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"недостаточно прав", model.ErrUnauthorized, http.StatusForbidden, CodeForbidden},
		{"недопустимый переход", fmt.Errorf("направление: %w", model.ErrInvalidTransition), http.StatusConflict, CodeInvalidTransition},
		{"точка уже закрыта", model.ErrAlreadyResolved, http.StatusConflict, CodeAlreadyResolved},
		{"нет причины пропуска", model.ErrReasonRequired, http.StatusBadRequest, CodeReasonRequired},
		{"параллельное изменение", model.ErrConcurrentModification, http.StatusConflict, CodeConcurrentModification},
		{"некорректные данные", model.ErrInvalidInput, http.StatusBadRequest, CodeValidationError},
		{"не найдено", service.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"конфликт", service.ErrConflict, http.StatusConflict, CodeConflict},
		{"прочее", errors.New("connection refused"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Classify(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("Classify() = %d %s, ожидали %d %s", status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestFromError_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, ожидали 500", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("ответ не JSON: %v", err)
	}
	if body.Error.Code != CodeInternalError || body.Error.Message != "Внутренняя ошибка сервера" {
		t.Errorf("тело = %+v", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}
