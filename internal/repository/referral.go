package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// referralRepo — реализация ReferralRepository.
type referralRepo struct {
	db DBTX
}

// NewReferralRepository создаёт репозиторий направлений.
func NewReferralRepository(db DBTX) ReferralRepository {
	return &referralRepo{db: db}
}

const referralColumns = `id, case_id, status, urgency, reason, created_by, created_at, updated_at, version`

func scanReferral(row pgx.Row) (*model.Referral, error) {
	r := &model.Referral{}
	err := row.Scan(
		&r.ID, &r.CaseID, &r.Status, &r.Urgency, &r.Reason,
		&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt, &r.Version,
	)
	return r, err
}

func (r *referralRepo) Create(ctx context.Context, ref *model.Referral) error {
	query := `
		INSERT INTO referrals (id, case_id, status, urgency, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at, version`

	err := r.db.QueryRow(ctx, query,
		ref.ID, ref.CaseID, ref.Status, ref.Urgency, ref.Reason, ref.CreatedBy,
	).Scan(&ref.CreatedAt, &ref.UpdatedAt, &ref.Version)
	if err != nil {
		// uq_referrals_active_case — у случая уже есть незакрытое направление
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: у случая %s уже есть активное направление", ErrConflict, ref.CaseID)
		}
		return fmt.Errorf("ошибка создания направления: %w", err)
	}
	return nil
}

func (r *referralRepo) GetByID(ctx context.Context, id string) (*model.Referral, error) {
	query := fmt.Sprintf(`SELECT %s FROM referrals WHERE id = $1`, referralColumns)
	ref, err := scanReferral(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения направления: %w", err)
	}
	return ref, nil
}

func (r *referralRepo) GetActiveByCase(ctx context.Context, caseID string) (*model.Referral, error) {
	query := fmt.Sprintf(`SELECT %s FROM referrals WHERE case_id = $1 AND status <> $2`, referralColumns)
	ref, err := scanReferral(r.db.QueryRow(ctx, query, caseID, model.ReferralClosed))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения активного направления: %w", err)
	}
	return ref, nil
}

func (r *referralRepo) UpdateStatus(ctx context.Context, ref *model.Referral, expected model.ReferralStatus) error {
	query := `
		UPDATE referrals
		SET status = $2, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND status = $3 AND version = $4
		RETURNING updated_at, version`

	err := r.db.QueryRow(ctx, query, ref.ID, ref.Status, expected, ref.Version).
		Scan(&ref.UpdatedAt, &ref.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return casMiss(ctx, r.db, "referrals", ref.ID)
		}
		return fmt.Errorf("ошибка обновления статуса направления: %w", err)
	}
	return nil
}
