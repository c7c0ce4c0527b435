// errors.go — ошибки сервисного слоя.
// Ошибки доменных правил (model.Err*) возвращаются без перевода.
package service

import (
	"errors"
	"fmt"

	"github.com/bigkaa/absence-governance/internal/repository"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс, второе активное направление).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
)

// mapRepoErr переводит ошибки хранилища в ошибки сервиса.
func mapRepoErr(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %s: %v", ErrConflict, what, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
