// Package profiletest provides an in-memory profile.Store for tests.
package profiletest

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/troikatech/care-voice/pkg/profile"
)

// MemStore is a concurrency-safe in-memory profile.Store.
type MemStore struct {
	mu      sync.Mutex
	byID    map[string]*profile.Profile
	byPhone map[string]string

	Inserts int
	Updates int

	// FindErr, when set, is returned by every lookup.
	FindErr error
	// BeforeInsert runs right before an insert is applied, outside the lock.
	BeforeInsert func(p *profile.Profile)
}

func NewMemStore() *MemStore {
	return &MemStore{
		byID:    map[string]*profile.Profile{},
		byPhone: map[string]string{},
	}
}

// Seed stores p directly and returns the stored copy.
func (s *MemStore) Seed(p profile.Profile) *profile.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	cp := p
	s.byID[p.ID] = &cp
	s.byPhone[p.PhoneNumber] = p.ID
	return clone(&cp)
}

// Count returns the number of stored profiles.
func (s *MemStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func clone(p *profile.Profile) *profile.Profile {
	cp := *p
	if p.Name != nil {
		name := *p.Name
		cp.Name = &name
	}
	return &cp
}

func (s *MemStore) FindByPhone(ctx context.Context, phone string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	id, ok := s.byPhone[phone]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *MemStore) FindByID(ctx context.Context, id string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	p, ok := s.byID[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return clone(p), nil
}

func (s *MemStore) Insert(ctx context.Context, p *profile.Profile) error {
	if s.BeforeInsert != nil {
		s.BeforeInsert(p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPhone[p.PhoneNumber]; ok {
		return profile.ErrConflict
	}
	p.ID = primitive.NewObjectID().Hex()
	s.byID[p.ID] = clone(p)
	s.byPhone[p.PhoneNumber] = p.ID
	s.Inserts++
	return nil
}

func (s *MemStore) Update(ctx context.Context, p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[p.ID]
	if !ok {
		return profile.ErrNotFound
	}
	cur.Name = p.Name
	cur.Gender = p.Gender
	cur.LanguageCode = p.LanguageCode
	cur.UpdatedAt = p.UpdatedAt
	s.Updates++
	return nil
}

func (s *MemStore) List(ctx context.Context, skip, limit int64) ([]*profile.Profile, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*profile.Profile, 0, len(s.byID))
	for _, p := range s.byID {
		all = append(all, clone(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if skip >= total {
		return []*profile.Profile{}, total, nil
	}
	end := skip + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[skip:end], total, nil
}
