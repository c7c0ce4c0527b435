// Пакет repository — слой доступа к данным PostgreSQL.
// Все запросы — чистый SQL через pgx, без ORM.
// Изменения состояния выполняются как compare-and-swap по (status, version):
// если строка изменилась с момента чтения, возвращается
// model.ErrConcurrentModification.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт уникальности (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — запись уже существует")
)

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SicknessCaseRepository — хранение случаев отсутствия.
type SicknessCaseRepository interface {
	// Create сохраняет новый случай. Заполняет CreatedAt, UpdatedAt, Version.
	Create(ctx context.Context, c *model.SicknessCase) error
	// GetByID возвращает случай по ID.
	GetByID(ctx context.Context, id string) (*model.SicknessCase, error)
	// ListByEmployee возвращает случаи сотрудника, пересекающие окно [from, to].
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*model.SicknessCase, error)
	// UpdateStatus сохраняет Status и EndDate, если в хранилище всё ещё
	// expected и c.Version. При успехе увеличивает c.Version.
	UpdateStatus(ctx context.Context, c *model.SicknessCase, expected model.CaseStatus) error
}

// ReferralRepository — хранение направлений.
type ReferralRepository interface {
	// Create сохраняет направление. Второе незакрытое направление случая — ErrConflict.
	Create(ctx context.Context, r *model.Referral) error
	// GetByID возвращает направление по ID.
	GetByID(ctx context.Context, id string) (*model.Referral, error)
	// GetActiveByCase возвращает незакрытое направление случая или ErrNotFound.
	GetActiveByCase(ctx context.Context, caseID string) (*model.Referral, error)
	// UpdateStatus — compare-and-swap статуса направления.
	UpdateStatus(ctx context.Context, r *model.Referral, expected model.ReferralStatus) error
}

// MilestoneRepository — хранение контрольных точек.
type MilestoneRepository interface {
	// CreateBatch сохраняет контрольные точки нового случая.
	CreateBatch(ctx context.Context, ms []*model.Milestone) error
	// GetByID возвращает контрольную точку по ID.
	GetByID(ctx context.Context, id string) (*model.Milestone, error)
	// ListByCase возвращает контрольные точки случая по возрастанию срока.
	ListByCase(ctx context.Context, caseID string) ([]*model.Milestone, error)
	// Resolve — compare-and-swap закрытия контрольной точки.
	Resolve(ctx context.Context, m *model.Milestone, expected model.MilestoneState) error
}

// Store — набор репозиториев с атомарным созданием случая.
type Store interface {
	Cases() SicknessCaseRepository
	Referrals() ReferralRepository
	Milestones() MilestoneRepository
	// CreateCase атомарно сохраняет случай и его контрольные точки.
	CreateCase(ctx context.Context, c *model.SicknessCase, ms []*model.Milestone) error
}

// TxRunner позволяет выполнять операции в транзакции.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner создаёт TxRunner для управления транзакциями.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInTx выполняет fn внутри транзакции.
// При ошибке fn — транзакция откатывается.
// При успехе — коммитится.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // откат после коммита — no-op

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// PgStore — Store поверх PostgreSQL.
type PgStore struct {
	tx         *TxRunner
	cases      SicknessCaseRepository
	referrals  ReferralRepository
	milestones MilestoneRepository
}

// NewPgStore создаёт Store поверх пула подключений.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{
		tx:         NewTxRunner(pool),
		cases:      NewSicknessCaseRepository(pool),
		referrals:  NewReferralRepository(pool),
		milestones: NewMilestoneRepository(pool),
	}
}

// Cases возвращает репозиторий случаев.
func (s *PgStore) Cases() SicknessCaseRepository { return s.cases }

// Referrals возвращает репозиторий направлений.
func (s *PgStore) Referrals() ReferralRepository { return s.referrals }

// Milestones возвращает репозиторий контрольных точек.
func (s *PgStore) Milestones() MilestoneRepository { return s.milestones }

// CreateCase сохраняет случай и контрольные точки в одной транзакции.
func (s *PgStore) CreateCase(ctx context.Context, c *model.SicknessCase, ms []*model.Milestone) error {
	return s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		if err := NewSicknessCaseRepository(tx).Create(ctx, c); err != nil {
			return err
		}
		return NewMilestoneRepository(tx).CreateBatch(ctx, ms)
	})
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// casMiss различает причины пустого результата compare-and-swap:
// строки нет — ErrNotFound, иначе её изменили — ErrConcurrentModification.
func casMiss(ctx context.Context, db DBTX, table, id string) error {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("ошибка проверки записи %s: %w", table, err)
	}
	if !exists {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s %s", model.ErrConcurrentModification, table, id)
}
