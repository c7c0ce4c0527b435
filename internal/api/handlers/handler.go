// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Извлекает субъекта из контекста и делегирует решения фасаду GovernanceService.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/absence-governance/internal/api/errors"
	"github.com/bigkaa/absence-governance/internal/api/generated"
	"github.com/bigkaa/absence-governance/internal/api/middleware"
	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/service"
)

// maxBodyBytes — ограничение размера тела запроса.
const maxBodyBytes = 1 << 20

var _ generated.ServerInterface = (*APIHandler)(nil)

// APIHandler — основной обработчик API.
type APIHandler struct {
	health *HealthHandler
	gov    *service.GovernanceService
	logger *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(health *HealthHandler, gov *service.GovernanceService, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		health: health,
		gov:    gov,
		logger: logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — проверка liveness.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — проверка readiness.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// ParamError — ErrorHandlerFunc для generated: параметр пути не разобран.
func ParamError(w http.ResponseWriter, _ *http.Request, err error) {
	apierrors.ValidationError(w, err.Error())
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// currentUser возвращает субъекта запроса или пишет 401.
func currentUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		apierrors.Unauthorized(w, "Отсутствует пользователь в контексте")
		return model.User{}, false
	}
	return *user, true
}

// decodeBody разбирает JSON-тело запроса. Неизвестные поля — ошибка.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return false
	}
	return true
}

// writeServiceError записывает ответ для ошибки сервиса.
// Внутренние ошибки логируются.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := apierrors.Classify(err); status == http.StatusInternalServerError {
		h.logger.Error("Ошибка обработки запроса",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	apierrors.FromError(w, err)
}
