// Пакет memstore — хранилище в памяти с тем же контрактом compare-and-swap,
// что и PostgreSQL-репозитории. Используется при AG_STORE=memory и в тестах.
// Все значения копируются на входе и выходе: вызывающий не может
// изменить хранимое состояние в обход UpdateStatus/Resolve.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bigkaa/absence-governance/internal/domain/model"
	"github.com/bigkaa/absence-governance/internal/repository"
)

// Store — repository.Store в памяти.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	cases      map[string]model.SicknessCase
	referrals  map[string]model.Referral
	milestones map[string]model.Milestone
}

var _ repository.Store = (*Store)(nil)

// New создаёт пустое хранилище. now может быть nil — тогда time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:        now,
		cases:      make(map[string]model.SicknessCase),
		referrals:  make(map[string]model.Referral),
		milestones: make(map[string]model.Milestone),
	}
}

// Cases возвращает репозиторий случаев.
func (s *Store) Cases() repository.SicknessCaseRepository { return caseRepo{s} }

// Referrals возвращает репозиторий направлений.
func (s *Store) Referrals() repository.ReferralRepository { return referralRepo{s} }

// Milestones возвращает репозиторий контрольных точек.
func (s *Store) Milestones() repository.MilestoneRepository { return milestoneRepo{s} }

// CreateCase атомарно сохраняет случай и его контрольные точки.
func (s *Store) CreateCase(ctx context.Context, c *model.SicknessCase, ms []*model.Milestone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.cases[c.ID]; dup {
		return fmt.Errorf("%w: случай %s уже существует", repository.ErrConflict, c.ID)
	}
	seen := make(map[string]bool, len(ms))
	for _, m := range ms {
		if _, dup := s.milestones[m.ID]; dup || seen[m.Key] {
			return fmt.Errorf("%w: контрольная точка %s случая %s", repository.ErrConflict, m.Key, c.ID)
		}
		seen[m.Key] = true
	}

	s.insertCase(c)
	for _, m := range ms {
		m.Version = 1
		s.milestones[m.ID] = *m
	}
	return nil
}

func (s *Store) insertCase(c *model.SicknessCase) {
	now := s.now().UTC()
	c.CreatedAt, c.UpdatedAt, c.Version = now, now, 1
	stored := *c
	stored.EndDate = copyTime(c.EndDate)
	s.cases[c.ID] = stored
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// --- Случаи ---

type caseRepo struct{ s *Store }

func (r caseRepo) Create(ctx context.Context, c *model.SicknessCase) error {
	return r.s.CreateCase(ctx, c, nil)
}

func (r caseRepo) GetByID(ctx context.Context, id string) (*model.SicknessCase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.EndDate = copyTime(c.EndDate)
	return &c, nil
}

func (r caseRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*model.SicknessCase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*model.SicknessCase
	for _, c := range r.s.cases {
		if c.EmployeeID != employeeID || c.StartDate.After(to) {
			continue
		}
		if c.EndDate != nil && c.EndDate.Before(from) {
			continue
		}
		c.EndDate = copyTime(c.EndDate)
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (r caseRepo) UpdateStatus(ctx context.Context, c *model.SicknessCase, expected model.CaseStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.cases[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected || stored.Version != c.Version {
		return fmt.Errorf("%w: sickness_cases %s", model.ErrConcurrentModification, c.ID)
	}

	stored.Status = c.Status
	stored.EndDate = copyTime(c.EndDate)
	stored.UpdatedAt = r.s.now().UTC()
	stored.Version++
	r.s.cases[c.ID] = stored

	c.UpdatedAt, c.Version = stored.UpdatedAt, stored.Version
	return nil
}

// --- Направления ---

type referralRepo struct{ s *Store }

func (r referralRepo) Create(ctx context.Context, ref *model.Referral) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, dup := r.s.referrals[ref.ID]; dup {
		return fmt.Errorf("%w: направление %s уже существует", repository.ErrConflict, ref.ID)
	}
	if ref.Status != model.ReferralClosed {
		for _, existing := range r.s.referrals {
			if existing.CaseID == ref.CaseID && existing.Status != model.ReferralClosed {
				return fmt.Errorf("%w: у случая %s уже есть активное направление", repository.ErrConflict, ref.CaseID)
			}
		}
	}

	now := r.s.now().UTC()
	ref.CreatedAt, ref.UpdatedAt, ref.Version = now, now, 1
	r.s.referrals[ref.ID] = *ref
	return nil
}

func (r referralRepo) GetByID(ctx context.Context, id string) (*model.Referral, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ref, ok := r.s.referrals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ref, nil
}

func (r referralRepo) GetActiveByCase(ctx context.Context, caseID string) (*model.Referral, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, ref := range r.s.referrals {
		if ref.CaseID == caseID && ref.Status != model.ReferralClosed {
			return &ref, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r referralRepo) UpdateStatus(ctx context.Context, ref *model.Referral, expected model.ReferralStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.referrals[ref.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected || stored.Version != ref.Version {
		return fmt.Errorf("%w: referrals %s", model.ErrConcurrentModification, ref.ID)
	}

	stored.Status = ref.Status
	stored.UpdatedAt = r.s.now().UTC()
	stored.Version++
	r.s.referrals[ref.ID] = stored

	ref.UpdatedAt, ref.Version = stored.UpdatedAt, stored.Version
	return nil
}

// --- Контрольные точки ---

type milestoneRepo struct{ s *Store }

func (r milestoneRepo) CreateBatch(ctx context.Context, ms []*model.Milestone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range ms {
		if _, ok := r.s.cases[m.CaseID]; !ok {
			return fmt.Errorf("контрольная точка %s: случай %s: %w", m.Key, m.CaseID, repository.ErrNotFound)
		}
		for _, existing := range r.s.milestones {
			if existing.ID == m.ID || (existing.CaseID == m.CaseID && existing.Key == m.Key) {
				return fmt.Errorf("%w: контрольная точка %s случая %s", repository.ErrConflict, m.Key, m.CaseID)
			}
		}
	}
	for _, m := range ms {
		m.Version = 1
		r.s.milestones[m.ID] = *m
	}
	return nil
}

func (r milestoneRepo) GetByID(ctx context.Context, id string) (*model.Milestone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.milestones[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.ResolvedAt = copyTime(m.ResolvedAt)
	return &m, nil
}

func (r milestoneRepo) ListByCase(ctx context.Context, caseID string) ([]*model.Milestone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*model.Milestone
	for _, m := range r.s.milestones {
		if m.CaseID != caseID {
			continue
		}
		m.ResolvedAt = copyTime(m.ResolvedAt)
		result = append(result, &m)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueAt.Equal(result[j].DueAt) {
			return result[i].DueAt.Before(result[j].DueAt)
		}
		return result[i].Key < result[j].Key
	})
	return result, nil
}

func (r milestoneRepo) Resolve(ctx context.Context, m *model.Milestone, expected model.MilestoneState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.milestones[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.State != expected || stored.Version != m.Version {
		return fmt.Errorf("%w: milestones %s", model.ErrConcurrentModification, m.ID)
	}

	stored.State = m.State
	stored.Notes = m.Notes
	stored.SkipReason = m.SkipReason
	stored.ResolvedBy = m.ResolvedBy
	stored.ResolvedAt = copyTime(m.ResolvedAt)
	stored.Version++
	r.s.milestones[m.ID] = stored

	m.Version = stored.Version
	return nil
}
