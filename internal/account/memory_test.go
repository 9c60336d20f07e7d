package account

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/digital-station/platform/internal/shared/errors"
)

type memoryStore struct {
	mu         sync.Mutex
	citizens   map[string]Citizen
	police     []PoliceMember
	government map[int64]GovernmentMember
	seq        int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		citizens:   make(map[string]Citizen),
		government: make(map[int64]GovernmentMember),
	}
}

func (m *memoryStore) next() int64 {
	m.seq++
	return m.seq
}

func (m *memoryStore) CreateCitizen(_ context.Context, c *Citizen) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.citizens[c.AadharNo]; ok {
		return errors.Conflict("Citizen with this Aadhar already exists")
	}
	c.ID = m.next()
	c.CreatedAt = time.Now()
	m.citizens[c.AadharNo] = *c
	return nil
}

func (m *memoryStore) CitizenByAadhar(_ context.Context, aadharNo string) (*Citizen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.citizens[aadharNo]
	if !ok {
		return nil, errors.NotFound("Citizen", aadharNo)
	}
	return &c, nil
}

func (m *memoryStore) CreatePoliceMember(_ context.Context, p *PoliceMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.MemberID = m.next()
	p.CreatedAt = time.Now()
	m.police = append(m.police, *p)
	return nil
}

func (m *memoryStore) PoliceMember(_ context.Context, stationID, memberID int64) (*PoliceMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.police {
		if p.StationID == stationID && p.MemberID == memberID {
			return &p, nil
		}
	}
	return nil, errors.NotFound("Police member", strconv.FormatInt(memberID, 10))
}

func (m *memoryStore) PoliceByStation(_ context.Context, stationID int64) ([]PoliceMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PoliceMember
	for _, p := range m.police {
		if p.StationID == stationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryStore) CreateGovernmentMember(_ context.Context, g *GovernmentMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.government[g.MemberID]; ok {
		return errors.Conflict("Government member already exists")
	}
	g.ID = m.next()
	g.CreatedAt = time.Now()
	m.government[g.MemberID] = *g
	return nil
}

func (m *memoryStore) GovernmentMember(_ context.Context, memberID int64) (*GovernmentMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.government[memberID]
	if !ok {
		return nil, errors.NotFound("Government member", strconv.FormatInt(memberID, 10))
	}
	return &g, nil
}

var _ Store = (*memoryStore)(nil)
