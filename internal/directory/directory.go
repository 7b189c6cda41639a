// Package directory is the identity directory: it maps institutional
// identifiers to display names and roles, and answers credential checks.
// The rest of the service treats it as a collaborator and never reaches
// for the users table directly, so a future move to an external source
// (the school's sheet export, an LDAP bridge) stays contained here.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/eafc-tic/equiptrack/internal/model"
	"github.com/eafc-tic/equiptrack/internal/repository"
	"github.com/eafc-tic/equiptrack/internal/utils"
)

// ErrInvalidCredentials is returned by Authenticate for both unknown ids
// and wrong passwords, so callers cannot probe which ids exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Cache holds the directory's user listing together with its expiry. It
// is an explicit object passed to the service rather than package state,
// so tests construct their own and nothing survives a restart implicitly.
type Cache struct {
	mu     sync.Mutex
	data   []model.Identity
	expiry time.Time
}

// NewCache returns an empty, already-expired cache.
func NewCache() *Cache { return &Cache{} }

// get returns the cached listing when it is still fresh.
func (c *Cache) get(now time.Time) ([]model.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil || now.After(c.expiry) {
		return nil, false
	}
	return c.data, true
}

// put replaces the cached listing and pushes the expiry forward.
func (c *Cache) put(data []model.Identity, now time.Time, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.expiry = now.Add(ttl)
}

// invalidate drops the cached listing after any directory mutation.
func (c *Cache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.expiry = time.Time{}
}

// Service implements the directory over the users repository.
type Service struct {
	users      *repository.UserRepo
	cache      *Cache
	cacheTTL   time.Duration
	bcryptCost int
	// defaultPassword is applied when an admin creates a user without
	// supplying a credential; the user is expected to change it.
	defaultPassword string
}

// New wires a directory service. The cache is passed by reference so the
// caller decides its lifetime and sharing.
func New(users *repository.UserRepo, cache *Cache, cacheTTL time.Duration, bcryptCost int, defaultPassword string) *Service {
	return &Service{
		users:           users,
		cache:           cache,
		cacheTTL:        cacheTTL,
		bcryptCost:      bcryptCost,
		defaultPassword: defaultPassword,
	}
}

// Authenticate checks an id/credential pair and returns the identity on
// success. The bcrypt comparison runs even though the error is uniform,
// keeping the timing profile of unknown ids and wrong passwords close.
func (s *Service) Authenticate(ctx context.Context, id, credential string) (model.Identity, error) {
	u, err := s.users.GetByID(ctx, id)
	if err == sql.ErrNoRows {
		return model.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Identity{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, credential) {
		return model.Identity{}, ErrInvalidCredentials
	}
	return u.Identity(), nil
}

// Get returns the identity for an id, or sql.ErrNoRows.
func (s *Service) Get(ctx context.Context, id string) (model.Identity, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.Identity{}, err
	}
	return u.Identity(), nil
}

// List returns the directory, admins first then by name. The full listing
// is cached for cacheTTL; forceRefresh bypasses the cache, and a role
// filter is applied to the cached data rather than re-queried.
func (s *Service) List(ctx context.Context, roleFilter *model.Role, forceRefresh bool) ([]model.Identity, error) {
	now := time.Now()
	ids, ok := s.cache.get(now)
	if forceRefresh || !ok {
		users, err := s.users.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		ids = make([]model.Identity, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.Identity())
		}
		s.cache.put(ids, now, s.cacheTTL)
	}
	if roleFilter == nil {
		return ids, nil
	}
	filtered := make([]model.Identity, 0, len(ids))
	for _, id := range ids {
		if id.Role == *roleFilter {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// Create adds a user. An empty password falls back to the configured
// default credential.
func (s *Service) Create(ctx context.Context, id, fullName string, role model.Role, password string) error {
	if password == "" {
		password = s.defaultPassword
	}
	if err := s.users.Create(ctx, id, fullName, role, password, s.bcryptCost); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

// Update changes name, role and optionally the credential of a user.
func (s *Service) Update(ctx context.Context, id, fullName string, role model.Role, newPassword *string) error {
	if err := s.users.Update(ctx, id, fullName, role, newPassword, s.bcryptCost); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

// Delete removes a user; repository.ErrLastAdmin guards the final admin.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}
