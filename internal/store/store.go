package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"leadrouter/internal/model"
)

// ErrNotFound is returned by lookups that match no stored lead.
var ErrNotFound = errors.New("lead not found")

// LeadStore persists processed leads.
type LeadStore interface {
	AddLead(ctx context.Context, lead model.ProcessedLead) error
	GetLeadByEmail(ctx context.Context, email string) (model.ProcessedLead, error)
	GetLeadByPhone(ctx context.Context, phone string) (model.ProcessedLead, error)
	ListLeads(ctx context.Context) ([]model.ProcessedLead, error)
	Ping(ctx context.Context) error
}

// MemoryStore keeps leads in insertion order for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	leads []model.ProcessedLead
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AddLead(ctx context.Context, lead model.ProcessedLead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return nil
}

// GetLeadByEmail returns the earliest lead whose email matches,
// ignoring case.
func (s *MemoryStore) GetLeadByEmail(ctx context.Context, email string) (model.ProcessedLead, error) {
	email = strings.TrimSpace(email)
	return s.find(func(l model.ProcessedLead) bool {
		return email != "" && strings.EqualFold(l.OriginalLead.Email, email)
	})
}

func (s *MemoryStore) GetLeadByPhone(ctx context.Context, phone string) (model.ProcessedLead, error) {
	phone = strings.TrimSpace(phone)
	return s.find(func(l model.ProcessedLead) bool {
		return phone != "" && l.OriginalLead.Phone == phone
	})
}

func (s *MemoryStore) find(match func(model.ProcessedLead) bool) (model.ProcessedLead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.leads {
		if match(l) {
			return l, nil
		}
	}
	return model.ProcessedLead{}, ErrNotFound
}

func (s *MemoryStore) ListLeads(ctx context.Context) ([]model.ProcessedLead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ProcessedLead, len(s.leads))
	copy(out, s.leads)
	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
