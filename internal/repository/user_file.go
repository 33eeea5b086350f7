package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"storyweaver/internal/domain"
)

// Compile-time check to ensure fileUserRepository implements UserRepository
var _ UserRepository = (*fileUserRepository)(nil)

// fileUserRepository keeps credential records in a single JSON file. All
// access is serialized by a mutex; writes go through a temp file rename so a
// crash never leaves a half-written store behind.
type fileUserRepository struct {
	path   string
	mu     sync.Mutex
	users  map[string]domain.User
	logger *zap.Logger
}

// NewFileUserRepository loads (or initializes) the JSON user store at path.
func NewFileUserRepository(path string, logger *zap.Logger) (UserRepository, error) {
	repo := &fileUserRepository{
		path:   path,
		users:  make(map[string]domain.User),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var records []domain.User
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse user store %s: %w", path, err)
		}
		for _, u := range records {
			repo.users[u.Username] = u
		}
		logger.Info("User store loaded", zap.String("path", path), zap.Int("users", len(records)))
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create user store directory: %w", err)
		}
		logger.Info("User store not found, starting empty", zap.String("path", path))
	default:
		return nil, fmt.Errorf("failed to read user store %s: %w", path, err)
	}

	return repo, nil
}

// GetUserByUsername returns the stored record or domain.ErrUserNotFound.
func (r *fileUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := u
	return &out, nil
}

// CreateUser inserts a new record under the store lock. The uniqueness check
// and the insert happen atomically with respect to concurrent registrations.
func (r *fileUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return domain.ErrUserAlreadyExists
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.Username] = *user

	if err := r.persistLocked(); err != nil {
		// Roll back the in-memory insert so a failed write does not leave a
		// record that is not durable.
		delete(r.users, user.Username)
		r.logger.Error("Failed to persist user store", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to persist user store: %w", err)
	}

	r.logger.Info("User record created", zap.String("username", user.Username))
	return nil
}

// persistLocked writes the store to disk. Callers must hold r.mu.
func (r *fileUserRepository) persistLocked() error {
	records := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		records = append(records, u)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user store: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp user store: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace user store: %w", err)
	}
	return nil
}
