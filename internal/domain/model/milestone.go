package model

import "time"

// MilestoneState — состояние экземпляра контрольной точки.
type MilestoneState string

const (
	MilestonePending   MilestoneState = "PENDING"
	MilestoneCompleted MilestoneState = "COMPLETED"
	MilestoneSkipped   MilestoneState = "SKIPPED"
)

// IsTerminal — COMPLETED и SKIPPED конечны и взаимоисключающи.
func (s MilestoneState) IsTerminal() bool {
	return s == MilestoneCompleted || s == MilestoneSkipped
}

// Milestone — экземпляр контрольной точки на шкале случая.
// Хранится в таблице milestones.
type Milestone struct {
	// ID — UUID экземпляра
	ID string
	// CaseID — случай отсутствия
	CaseID string
	// Key — ключ определения в каталоге (например, "day_7")
	Key string
	// Name — отображаемое имя ("Day 7")
	Name string
	// DueAt — срок, отсчитанный от открытия случая
	DueAt time.Time
	// State — PENDING, COMPLETED или SKIPPED
	State MilestoneState
	// Notes — заметки при завершении
	Notes string
	// SkipReason — причина пропуска
	SkipReason string
	// ResolvedBy — кто закрыл контрольную точку (sub)
	ResolvedBy string
	// ResolvedAt — когда закрыта
	ResolvedAt *time.Time
	// Version — версия строки для compare-and-swap
	Version int
}
