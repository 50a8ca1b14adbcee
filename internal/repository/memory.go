package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/models"
)

// MemoryStore is an in-process Store used in tests and when no
// database is configured. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.Mutex
	nextUser  int64
	users     map[int64]models.User
	profiles  map[int64]models.FinancialProfile
	exchanges map[int64][]models.AdvisoryExchange
	artifacts []models.ModelArtifact
}

// NewMemoryStore initializes an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUser:  1,
		users:     make(map[int64]models.User),
		profiles:  make(map[int64]models.FinancialProfile),
		exchanges: make(map[int64][]models.AdvisoryExchange),
	}
}

// CreateUser creates a new user
func (s *MemoryStore) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return errs.NewValidationError("email")
		}
	}
	user.ID = s.nextUser
	s.nextUser++
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

// FindUserByEmail retrieves a user by email
func (s *MemoryStore) FindUserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

// FindUserByID retrieves a user by id
func (s *MemoryStore) FindUserByID(id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := u
	return &cp, nil
}

// GetProfile retrieves the financial profile for a user
func (s *MemoryStore) GetProfile(userID int64) (*models.FinancialProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return copyProfile(&p), nil
}

// PutProfile inserts or replaces the financial profile for a user
func (s *MemoryStore) PutProfile(p *models.FinancialProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if prev, ok := s.profiles[p.UserID]; ok {
		p.CreatedAt = prev.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.profiles[p.UserID] = *copyProfile(p)
	return nil
}

// AppendExchange appends an advisory exchange to the user's history
func (s *MemoryStore) AppendExchange(e *models.AdvisoryExchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges[e.UserID] = append(s.exchanges[e.UserID], *e)
	return nil
}

// ListExchanges returns the most recent advisory exchanges for a user
func (s *MemoryStore) ListExchanges(userID int64, limit int) ([]models.AdvisoryExchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.exchanges[userID]
	out := make([]models.AdvisoryExchange, len(history))
	copy(out, history)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveModelArtifact persists a new artifact with the next version
func (s *MemoryStore) SaveModelArtifact(a *models.ModelArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Version = len(s.artifacts) + 1
	stored := *a
	stored.Weights = append([]float64(nil), a.Weights...)
	s.artifacts = append(s.artifacts, stored)
	return nil
}

// LatestModelArtifact returns the most recently trained artifact
func (s *MemoryStore) LatestModelArtifact() (*models.ModelArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.artifacts) == 0 {
		return nil, errs.ErrNotFound
	}
	latest := s.artifacts[len(s.artifacts)-1]
	latest.Weights = append([]float64(nil), latest.Weights...)
	return &latest, nil
}

func copyProfile(p *models.FinancialProfile) *models.FinancialProfile {
	cp := *p
	cp.Debts = append([]models.Debt(nil), p.Debts...)
	return &cp
}
