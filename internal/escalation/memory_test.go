package escalation

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/digital-station/platform/internal/shared/errors"
)

// memoryStore mirrors the Postgres upsert: one row per (fir_id, aadhar_no).
type memoryStore struct {
	mu     sync.Mutex
	rows   []Escalation
	now    time.Time
	nextID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (m *memoryStore) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

func (m *memoryStore) Upsert(_ context.Context, e *Escalation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rows {
		if m.rows[i].FIRID == e.FIRID && m.rows[i].AadharNo == e.AadharNo {
			m.rows[i].Reason = e.Reason
			m.rows[i].UpdatedAt = m.tick()
			*e = m.rows[i]
			return false, nil
		}
	}

	m.nextID++
	now := m.tick()
	e.ID = m.nextID
	e.Status = StatusPending
	e.CreatedAt = now
	e.UpdatedAt = now
	m.rows = append(m.rows, *e)
	return true, nil
}

func (m *memoryStore) List(_ context.Context, status *Status) ([]Escalation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Escalation
	for _, e := range m.rows {
		if status == nil || e.Status == *status {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, id int64, status Status) (*Escalation, Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rows {
		if m.rows[i].ID == id {
			previous := m.rows[i].Status
			m.rows[i].Status = status
			m.rows[i].UpdatedAt = m.tick()
			e := m.rows[i]
			return &e, previous, nil
		}
	}
	return nil, "", errors.NotFound("Escalation", strconv.FormatInt(id, 10))
}

var _ Store = (*memoryStore)(nil)
