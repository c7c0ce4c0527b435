package model

import (
	"fmt"
	"strings"
	"time"
)

// AbsenceType — категория отсутствия.
type AbsenceType string

const (
	AbsenceIllness            AbsenceType = "ILLNESS"
	AbsenceInjury             AbsenceType = "INJURY"
	AbsenceMentalHealth       AbsenceType = "MENTAL_HEALTH"
	AbsenceMedicalAppointment AbsenceType = "MEDICAL_APPOINTMENT"
	AbsenceOther              AbsenceType = "OTHER"
)

// ParseAbsenceType разбирает категорию отсутствия (без учёта регистра).
func ParseAbsenceType(s string) (AbsenceType, error) {
	t := AbsenceType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case AbsenceIllness, AbsenceInjury, AbsenceMentalHealth, AbsenceMedicalAppointment, AbsenceOther:
		return t, nil
	}
	return "", fmt.Errorf("%w: неизвестный тип отсутствия %q", ErrInvalidInput, s)
}

// CaseStatus — статус жизненного цикла случая. Набор задаётся политикой.
type CaseStatus string

// Статусы случая политики по умолчанию.
const (
	CaseOpen            CaseStatus = "OPEN"
	CaseFitNoteReceived CaseStatus = "FIT_NOTE_RECEIVED"
	CaseReturnPlanned   CaseStatus = "RETURN_PLANNED"
	CaseClosed          CaseStatus = "CLOSED"
)

// CaseAction — действие жизненного цикла случая (именованный переход).
type CaseAction string

// Действия политики по умолчанию.
const (
	ActionReceiveFitNote CaseAction = "RECEIVE_FIT_NOTE"
	ActionPlanReturn     CaseAction = "PLAN_RETURN"
	ActionCloseCase      CaseAction = "CLOSE_CASE"
)

// SicknessCase — случай отсутствия по болезни.
// Хранится в таблице sickness_cases.
type SicknessCase struct {
	// ID — UUID случая
	ID string
	// OrganisationID — организация-владелец
	OrganisationID string
	// EmployeeID — сотрудник
	EmployeeID string
	// AbsenceType — категория отсутствия
	AbsenceType AbsenceType
	// Status — статус жизненного цикла
	Status CaseStatus
	// StartDate — первый день отсутствия
	StartDate time.Time
	// EndDate — последний день отсутствия (nil, пока сотрудник отсутствует)
	EndDate *time.Time
	// Notes — произвольные заметки
	Notes string
	// CreatedBy — кто открыл случай (sub)
	CreatedBy string
	// CreatedAt — время создания
	CreatedAt time.Time
	// UpdatedAt — время последнего изменения
	UpdatedAt time.Time
	// Version — версия строки для compare-and-swap
	Version int
}

// AbsenceStats — агрегат отсутствий сотрудника за скользящее окно.
type AbsenceStats struct {
	EmployeeID  string
	Occurrences int
	TotalDays   int
	WindowStart time.Time
	WindowEnd   time.Time
}
