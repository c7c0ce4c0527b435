package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// milestoneRepo — реализация MilestoneRepository.
type milestoneRepo struct {
	db DBTX
}

// NewMilestoneRepository создаёт репозиторий контрольных точек.
func NewMilestoneRepository(db DBTX) MilestoneRepository {
	return &milestoneRepo{db: db}
}

const milestoneColumns = `id, case_id, key, name, due_at, state, notes,
	skip_reason, resolved_by, resolved_at, version`

func scanMilestone(row pgx.Row) (*model.Milestone, error) {
	m := &model.Milestone{}
	err := row.Scan(
		&m.ID, &m.CaseID, &m.Key, &m.Name, &m.DueAt, &m.State, &m.Notes,
		&m.SkipReason, &m.ResolvedBy, &m.ResolvedAt, &m.Version,
	)
	return m, err
}

func (r *milestoneRepo) CreateBatch(ctx context.Context, ms []*model.Milestone) error {
	query := `
		INSERT INTO milestones (id, case_id, key, name, due_at, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING version`

	for _, m := range ms {
		err := r.db.QueryRow(ctx, query, m.ID, m.CaseID, m.Key, m.Name, m.DueAt, m.State).Scan(&m.Version)
		if err != nil {
			return milestoneInsertErr(m, err)
		}
	}
	return nil
}

func milestoneInsertErr(m *model.Milestone, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: контрольная точка %s случая %s", ErrConflict, m.Key, m.CaseID)
	}
	return fmt.Errorf("ошибка создания контрольной точки %s: %w", m.Key, err)
}

func (r *milestoneRepo) GetByID(ctx context.Context, id string) (*model.Milestone, error) {
	query := fmt.Sprintf(`SELECT %s FROM milestones WHERE id = $1`, milestoneColumns)
	m, err := scanMilestone(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения контрольной точки: %w", err)
	}
	return m, nil
}

func (r *milestoneRepo) ListByCase(ctx context.Context, caseID string) ([]*model.Milestone, error) {
	query := fmt.Sprintf(`SELECT %s FROM milestones WHERE case_id = $1 ORDER BY due_at, key`, milestoneColumns)
	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения контрольных точек: %w", err)
	}
	defer rows.Close()

	var result []*model.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования контрольной точки: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *milestoneRepo) Resolve(ctx context.Context, m *model.Milestone, expected model.MilestoneState) error {
	query := `
		UPDATE milestones
		SET state = $2, notes = $3, skip_reason = $4, resolved_by = $5, resolved_at = $6,
			version = version + 1
		WHERE id = $1 AND state = $7 AND version = $8
		RETURNING version`

	err := r.db.QueryRow(ctx, query,
		m.ID, m.State, m.Notes, m.SkipReason, m.ResolvedBy, m.ResolvedAt,
		expected, m.Version,
	).Scan(&m.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return casMiss(ctx, r.db, "milestones", m.ID)
		}
		return fmt.Errorf("ошибка закрытия контрольной точки: %w", err)
	}
	return nil
}
