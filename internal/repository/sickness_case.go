package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// sicknessCaseRepo — реализация SicknessCaseRepository.
type sicknessCaseRepo struct {
	db DBTX
}

// NewSicknessCaseRepository создаёт репозиторий случаев отсутствия.
func NewSicknessCaseRepository(db DBTX) SicknessCaseRepository {
	return &sicknessCaseRepo{db: db}
}

const caseColumns = `id, organisation_id, employee_id, absence_type, status,
	start_date, end_date, notes, created_by, created_at, updated_at, version`

// scanSicknessCase сканирует строку результата в модель SicknessCase.
func scanSicknessCase(row pgx.Row) (*model.SicknessCase, error) {
	c := &model.SicknessCase{}
	err := row.Scan(
		&c.ID, &c.OrganisationID, &c.EmployeeID, &c.AbsenceType, &c.Status,
		&c.StartDate, &c.EndDate, &c.Notes, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.Version,
	)
	return c, err
}

func (r *sicknessCaseRepo) Create(ctx context.Context, c *model.SicknessCase) error {
	query := `
		INSERT INTO sickness_cases (id, organisation_id, employee_id, absence_type, status,
			start_date, end_date, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at, version`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.OrganisationID, c.EmployeeID, c.AbsenceType, c.Status,
		c.StartDate, c.EndDate, c.Notes, c.CreatedBy,
	).Scan(&c.CreatedAt, &c.UpdatedAt, &c.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: случай %s уже существует", ErrConflict, c.ID)
		}
		return fmt.Errorf("ошибка создания случая: %w", err)
	}
	return nil
}

func (r *sicknessCaseRepo) GetByID(ctx context.Context, id string) (*model.SicknessCase, error) {
	query := fmt.Sprintf(`SELECT %s FROM sickness_cases WHERE id = $1`, caseColumns)
	c, err := scanSicknessCase(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения случая: %w", err)
	}
	return c, nil
}

func (r *sicknessCaseRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*model.SicknessCase, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM sickness_cases
		WHERE employee_id = $1
		  AND start_date <= $3
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY start_date`, caseColumns)

	rows, err := r.db.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения случаев сотрудника: %w", err)
	}
	defer rows.Close()

	var result []*model.SicknessCase
	for rows.Next() {
		c, err := scanSicknessCase(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования случая: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *sicknessCaseRepo) UpdateStatus(ctx context.Context, c *model.SicknessCase, expected model.CaseStatus) error {
	query := `
		UPDATE sickness_cases
		SET status = $2, end_date = $3, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND status = $4 AND version = $5
		RETURNING updated_at, version`

	err := r.db.QueryRow(ctx, query, c.ID, c.Status, c.EndDate, expected, c.Version).
		Scan(&c.UpdatedAt, &c.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return casMiss(ctx, r.db, "sickness_cases", c.ID)
		}
		return fmt.Errorf("ошибка обновления статуса случая: %w", err)
	}
	return nil
}
