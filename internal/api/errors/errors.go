// Пакет errors — ответы с ошибками в едином формате:
// {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/service"
)

// Коды ошибок API.
const (
	CodeValidationError        = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeConflict               = "CONFLICT"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeAlreadyResolved        = "ALREADY_RESOLVED"
	CodeReasonRequired         = "REASON_REQUIRED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeInternalError          = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Classify возвращает HTTP-статус и код для ошибки ядра или сервиса.
// Неизвестная ошибка — 500 INTERNAL_ERROR.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict, CodeInvalidTransition
	case errors.Is(err, model.ErrAlreadyResolved):
		return http.StatusConflict, CodeAlreadyResolved
	case errors.Is(err, model.ErrReasonRequired):
		return http.StatusBadRequest, CodeReasonRequired
	case errors.Is(err, model.ErrConcurrentModification):
		return http.StatusConflict, CodeConcurrentModification
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, CodeValidationError
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// FromError записывает ответ для ошибки ядра или сервиса.
// Текст внутренних ошибок наружу не отдаётся.
func FromError(w http.ResponseWriter, err error) {
	status, code := Classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Внутренняя ошибка сервера"
	}
	WriteError(w, status, code, message)
}
