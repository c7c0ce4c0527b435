// validation.go — проверка запросов по OpenAPI-контракту (kin-openapi).
// Параметры пути и тело запроса проверяются до вызова обработчика.
// Аутентификацию выполняет JWTAuth, поэтому схема bearerAuth здесь не проверяется.
package middleware

import (
	"errors"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"

	apierrors "github.com/bigkaa/absence-governance/internal/api/errors"
)

// RequestValidator возвращает middleware, отклоняющее запросы, не
// соответствующие контракту, с 400 VALIDATION_ERROR. Пути вне контракта
// пропускаются дальше: ответ 404/405 формирует роутер.
func RequestValidator(doc *openapi3.T) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}
	opts := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				var routeErr *routers.RouteError
				if errors.As(err, &routeErr) {
					next.ServeHTTP(w, r)
					return
				}
				apierrors.ValidationError(w, err.Error())
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    opts,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				apierrors.ValidationError(w, validationMessage(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// validationMessage — причина отказа без дампа схемы.
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.Reason
		if reqErr.Parameter != nil {
			msg = "параметр " + reqErr.Parameter.Name + ": " + msg
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			msg += ": " + schemaErr.Reason
		}
		if msg != "" {
			return "Запрос не соответствует контракту: " + msg
		}
	}
	return "Запрос не соответствует контракту: " + err.Error()
}
