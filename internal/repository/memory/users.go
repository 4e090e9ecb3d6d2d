// Package memory provides in-process repositories for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/repository"
)

// UserStore keeps users in a map guarded by a mutex.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	clock   clock.Clock
}

// NewUserStore returns an empty store.
func NewUserStore(clk clock.Clock) *UserStore {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &UserStore{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
		clock:   clk,
	}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return repository.ErrDuplicate
	}
	now := s.clock.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := cloneUser(user)
	s.byID[user.ID] = stored
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(s.byID[id]), nil
}

func (s *UserStore) GetOwnerByCompanyID(_ context.Context, companyID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.sorted() {
		if user.Role == domain.RoleEventOwner && user.CompanyID == companyID {
			return cloneUser(user), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	return s.update(id, func(u *domain.User) { u.Status = status })
}

func (s *UserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return s.update(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (s *UserStore) SetResetToken(_ context.Context, id, token string, expiry time.Time) error {
	return s.update(id, func(u *domain.User) {
		expiry := expiry.UTC()
		u.ResetToken = &token
		u.ResetTokenExpiry = &expiry
	})
}

func (s *UserStore) ResetPassword(_ context.Context, id, passwordHash string) error {
	return s.update(id, func(u *domain.User) {
		u.PasswordHash = passwordHash
		u.ResetToken = nil
		u.ResetTokenExpiry = nil
	})
}

func (s *UserStore) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0)
	for _, user := range s.sorted() {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.CompanyID != "" && user.CompanyID != filter.CompanyID {
			continue
		}
		users = append(users, *cloneUser(user))
	}
	return users, nil
}

func (s *UserStore) update(id string, mutate func(*domain.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	mutate(user)
	user.UpdatedAt = s.clock.Now()
	return nil
}

// sorted returns users in creation order; callers hold the lock.
func (s *UserStore) sorted() []*domain.User {
	users := make([]*domain.User, 0, len(s.byID))
	for _, user := range s.byID {
		users = append(users, user)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.ResetToken != nil {
		token := *u.ResetToken
		c.ResetToken = &token
	}
	if u.ResetTokenExpiry != nil {
		expiry := *u.ResetTokenExpiry
		c.ResetTokenExpiry = &expiry
	}
	return &c
}

var _ repository.UserRepository = (*UserStore)(nil)
