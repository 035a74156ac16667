package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/cyberassess-backend/internal/model"
)

// MemoryAdminRepository keeps admins in process memory.
type MemoryAdminRepository struct {
	mu     sync.RWMutex
	admins map[string]model.Admin
}

// NewMemoryAdminRepository creates an empty in-memory admin store.
func NewMemoryAdminRepository() *MemoryAdminRepository {
	return &MemoryAdminRepository{admins: make(map[string]model.Admin)}
}

// GetByID retrieves an admin by ID.
func (r *MemoryAdminRepository) GetByID(_ context.Context, id string) (*model.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

// GetByEmail retrieves an admin by email.
func (r *MemoryAdminRepository) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// Create inserts a new admin, rejecting duplicate emails.
func (r *MemoryAdminRepository) Create(_ context.Context, a *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.admins {
		if existing.Email == a.Email {
			return storeErr("create admin", KindConflict, ErrConflict)
		}
	}
	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt, a.UpdatedAt = now, now
	r.admins[a.ID] = *a
	return nil
}
