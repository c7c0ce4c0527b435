package model

import (
	"fmt"
	"strings"
	"time"
)

// ReferralStatus — статус направления к врачу по охране труда.
type ReferralStatus string

const (
	ReferralSubmitted      ReferralStatus = "SUBMITTED"
	ReferralInProgress     ReferralStatus = "IN_PROGRESS"
	ReferralReportReceived ReferralStatus = "REPORT_RECEIVED"
	ReferralClosed         ReferralStatus = "CLOSED"
)

// ParseReferralStatus разбирает статус направления (без учёта регистра).
func ParseReferralStatus(s string) (ReferralStatus, error) {
	st := ReferralStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case ReferralSubmitted, ReferralInProgress, ReferralReportReceived, ReferralClosed:
		return st, nil
	}
	return "", fmt.Errorf("%w: неизвестный статус направления %q", ErrInvalidInput, s)
}

// ReferralUrgency — срочность направления. Задаётся при создании и не меняется.
type ReferralUrgency string

const (
	UrgencyStandard ReferralUrgency = "STANDARD"
	UrgencyUrgent   ReferralUrgency = "URGENT"
)

// ParseReferralUrgency разбирает срочность. Пустая строка — STANDARD.
func ParseReferralUrgency(s string) (ReferralUrgency, error) {
	if strings.TrimSpace(s) == "" {
		return UrgencyStandard, nil
	}
	u := ReferralUrgency(strings.ToUpper(strings.TrimSpace(s)))
	switch u {
	case UrgencyStandard, UrgencyUrgent:
		return u, nil
	}
	return "", fmt.Errorf("%w: неизвестная срочность %q", ErrInvalidInput, s)
}

// Referral — направление случая отсутствия к врачу по охране труда.
// Хранится в таблице referrals.
type Referral struct {
	// ID — UUID направления
	ID string
	// CaseID — случай отсутствия, к которому относится направление
	CaseID string
	// Status — текущий статус рабочего процесса
	Status ReferralStatus
	// Urgency — срочность (неизменяемая)
	Urgency ReferralUrgency
	// Reason — причина направления
	Reason string
	// CreatedBy — кто открыл направление (sub)
	CreatedBy string
	// CreatedAt — время создания
	CreatedAt time.Time
	// UpdatedAt — время последнего перехода
	UpdatedAt time.Time
	// Version — версия строки для compare-and-swap
	Version int
}
