// errors.go — виды ошибок ядра управления случаями отсутствия.
// Каждая ошибка ядра оборачивает ровно один из этих видов,
// вызывающий слой различает их через errors.Is.
package model

import "errors"

var (
	// ErrInvalidTransition — целевое состояние недостижимо из текущего.
	ErrInvalidTransition = errors.New("недопустимый переход состояния")
	// ErrAlreadyResolved — контрольная точка уже завершена или пропущена.
	ErrAlreadyResolved = errors.New("контрольная точка уже закрыта")
	// ErrReasonRequired — пропуск контрольной точки без причины.
	ErrReasonRequired = errors.New("требуется причина пропуска")
	// ErrUnauthorized — у субъекта нет требуемой возможности.
	ErrUnauthorized = errors.New("недостаточно прав")
	// ErrConcurrentModification — состояние изменилось после чтения.
	ErrConcurrentModification = errors.New("состояние изменено параллельным запросом")
	// ErrInvalidInput — некорректные входные данные (отрицательные счётчики, неизвестные значения).
	ErrInvalidInput = errors.New("некорректные входные данные")
)
