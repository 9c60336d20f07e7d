// Package firtest provides an in-memory FIR repository for tests.
package firtest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/digital-station/platform/internal/fir/domain"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/types"
)

// MemoryRepository is a domain.Repository backed by maps. Close holds the
// lock across decide, matching the row lock of the Postgres store.
type MemoryRepository struct {
	mu        sync.Mutex
	firs      map[types.ID]domain.FIR
	order     []types.ID
	progress  []domain.Progress
	culprits  []domain.Culprit
	snapshots []domain.ClosedFIR
	nextID    int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{firs: make(map[types.ID]domain.FIR)}
}

func (m *MemoryRepository) Save(_ context.Context, f *domain.FIR) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.firs[f.ID]; ok {
		return errors.Conflict("FIR already exists")
	}
	m.firs[f.ID] = *f
	m.order = append(m.order, f.ID)
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id types.ID) (*domain.FIR, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.firs[id]
	if !ok {
		return nil, errors.NotFound("FIR", id.String())
	}
	return &f, nil
}

func (m *MemoryRepository) Close(_ context.Context, id types.ID, decide func(f *domain.FIR) (*domain.ClosedFIR, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.firs[id]
	if !ok {
		return errors.NotFound("FIR", id.String())
	}
	snapshot, err := decide(&f)
	if err != nil {
		return err
	}
	if snapshot != nil {
		for _, s := range m.snapshots {
			if s.FIRID == id {
				return errors.Conflict("FIR already archived")
			}
		}
		m.snapshots = append(m.snapshots, *snapshot)
	}
	m.firs[id] = f
	return nil
}

func (m *MemoryRepository) AppendProgress(_ context.Context, p *domain.Progress, c *domain.Culprit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.firs[p.FIRID]; !ok {
		return errors.NotFound("FIR", p.FIRID.String())
	}
	if c != nil {
		m.nextID++
		c.ID = m.nextID
		m.culprits = append(m.culprits, *c)
		p.CulpritID = &c.ID
	}
	m.nextID++
	p.ID = m.nextID
	m.progress = append(m.progress, *p)
	return nil
}

func (m *MemoryRepository) ListProgress(_ context.Context, firID types.ID) ([]domain.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Progress
	for i := len(m.progress) - 1; i >= 0; i-- {
		if m.progress[i].FIRID == firID {
			out = append(out, m.progress[i])
		}
	}
	return out, nil
}

func (m *MemoryRepository) ListCulprits(_ context.Context, firID types.ID) ([]domain.Culprit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Culprit
	for _, c := range m.culprits {
		if c.FIRID == firID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryRepository) List(_ context.Context, filter domain.ListFilter) ([]domain.FIR, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	contains := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}

	var out []domain.FIR
	for _, id := range m.order {
		f := m.firs[id]
		if filter.StationID != nil && f.StationID != *filter.StationID {
			continue
		}
		if q := filter.Query; q != "" && !contains(f.Fullname, q) && !contains(f.OffenceType, q) && !contains(f.IncidentLocation, q) {
			continue
		}
		if filter.Region != "" && !contains(f.Address, filter.Region) {
			continue
		}
		if filter.ComplainantID != "" && f.ComplainantID() != filter.ComplainantID {
			continue
		}
		for _, s := range m.snapshots {
			if s.FIRID == f.ID {
				f.Snapshotted = true
			}
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SnapshotCount returns how many closure snapshots exist for id.
func (m *MemoryRepository) SnapshotCount(id types.ID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.snapshots {
		if s.FIRID == id {
			n++
		}
	}
	return n
}

// MarkSnapshotted simulates an FIR archived by an earlier close whose status
// flip never landed.
func (m *MemoryRepository) MarkSnapshotted(id types.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.firs[id]
	f.Snapshotted = true
	m.firs[id] = f
	m.snapshots = append(m.snapshots, domain.ClosedFIR{FIRID: id})
}

var _ domain.Repository = (*MemoryRepository)(nil)
