// Package repository layers the domain collections on the document store.
// Each operation is a single atomic store read or update; check-then-act
// sequences are always expressed as one mutator.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
	"github.com/palettekit/palette-api/internal/infrastructure/store"
)

const defaultMaxRefreshTokenHashes = 15

// UserRepository persists accounts in the document store.
type UserRepository struct {
	store                 *store.Store
	maxRefreshTokenHashes int
}

func NewUserRepository(st *store.Store, maxRefreshTokenHashes int) *UserRepository {
	if maxRefreshTokenHashes <= 0 {
		maxRefreshTokenHashes = defaultMaxRefreshTokenHashes
	}
	return &UserRepository{store: st, maxRefreshTokenHashes: maxRefreshTokenHashes}
}

// Create inserts a new user. The email uniqueness check runs inside the same
// mutator as the insert, so two concurrent registrations with the same email
// cannot both pass it.
func (r *UserRepository) Create(ctx context.Context, input ports.NewUser) (*domain.User, error) {
	return store.UpdateResult(ctx, r.store, func(doc *store.Document) (*domain.User, error) {
		if doc.UserByEmail(input.Email) != nil {
			return nil, domain.ErrEmailExists
		}

		now := time.Now().UTC()
		user := domain.User{
			ID:                 uuid.NewString(),
			Email:              input.Email,
			Name:               input.Name,
			Role:               input.Role,
			PasswordHash:       input.PasswordHash,
			RefreshTokenHashes: []string{},
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		doc.Users = append(doc.Users, user)
		return &user, nil
	})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	user := doc.UserByEmail(domain.NormalizeEmail(email))
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	user := doc.UserByID(id)
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// AppendRefreshTokenHash records a new session digest, deduplicating and
// keeping only the most recent maxRefreshTokenHashes entries so repeated
// logins cannot grow the set without bound.
func (r *UserRepository) AppendRefreshTokenHash(ctx context.Context, userID, hash string) (*domain.User, error) {
	return r.mutateUser(ctx, userID, func(user *domain.User) {
		hashes := append(user.RefreshTokenHashes, hash)
		user.RefreshTokenHashes = dedupeTail(hashes, r.maxRefreshTokenHashes)
	})
}

// RemoveRefreshTokenHash drops a single session digest (rotation or logout of
// one session).
func (r *UserRepository) RemoveRefreshTokenHash(ctx context.Context, userID, hash string) (*domain.User, error) {
	return r.mutateUser(ctx, userID, func(user *domain.User) {
		kept := user.RefreshTokenHashes[:0]
		for _, h := range user.RefreshTokenHashes {
			if h != hash {
				kept = append(kept, h)
			}
		}
		user.RefreshTokenHashes = kept
	})
}

// ClearRefreshTokenHashes revokes every session (logout-all, password change,
// reuse detection).
func (r *UserRepository) ClearRefreshTokenHashes(ctx context.Context, userID string) (*domain.User, error) {
	return r.mutateUser(ctx, userID, func(user *domain.User) {
		user.RefreshTokenHashes = []string{}
	})
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, newHash string) (*domain.User, error) {
	return r.mutateUser(ctx, userID, func(user *domain.User) {
		user.PasswordHash = newHash
	})
}

// RegisterFailedLoginAttempt increments the failure counter atomically. An
// expired lock is cleared before counting so a stale lockout never inflates
// the next cycle. Reaching MaxAttempts sets LockedUntil and resets the
// counter to zero, starting the next window clean.
func (r *UserRepository) RegisterFailedLoginAttempt(ctx context.Context, userID string, policy domain.LockoutPolicy) (*domain.User, error) {
	return r.mutateUser(ctx, userID, func(user *domain.User) {
		now := time.Now().UTC()
		sec := user.LoginSecurity

		if sec.LockedUntil != nil && !sec.LockedUntil.After(now) {
			sec.FailedAttempts = 0
			sec.LockedUntil = nil
		}

		sec.FailedAttempts++
		sec.LastFailedAt = &now

		if policy.MaxAttempts > 0 && sec.FailedAttempts >= policy.MaxAttempts {
			lockedUntil := now.Add(policy.LockoutWindow)
			sec.LockedUntil = &lockedUntil
			sec.FailedAttempts = 0
		}

		user.LoginSecurity = sec
	})
}

// ClearLoginSecurityState resets failure counters and any lock after a
// successful authentication.
func (r *UserRepository) ClearLoginSecurityState(ctx context.Context, userID string) (*domain.User, error) {
	return r.mutateUser(ctx, userID, func(user *domain.User) {
		user.LoginSecurity = domain.LoginSecurity{}
	})
}

func (r *UserRepository) mutateUser(ctx context.Context, userID string, apply func(user *domain.User)) (*domain.User, error) {
	return store.UpdateResult(ctx, r.store, func(doc *store.Document) (*domain.User, error) {
		user := doc.UserByID(userID)
		if user == nil {
			return nil, domain.ErrUserNotFound
		}
		apply(user)
		user.UpdatedAt = time.Now().UTC()

		// Detach the returned value from the committed draft.
		copied := *user
		copied.RefreshTokenHashes = append([]string(nil), user.RefreshTokenHashes...)
		return &copied, nil
	})
}

// dedupeTail keeps the last occurrence of each hash and at most max entries,
// preferring the most recent.
func dedupeTail(hashes []string, max int) []string {
	seen := make(map[string]struct{}, len(hashes))
	unique := make([]string, 0, len(hashes))
	for i := len(hashes) - 1; i >= 0; i-- {
		if _, dup := seen[hashes[i]]; dup {
			continue
		}
		seen[hashes[i]] = struct{}{}
		unique = append(unique, hashes[i])
	}
	// unique is newest-first; restore chronological order and cap.
	if len(unique) > max {
		unique = unique[:max]
	}
	out := make([]string, 0, len(unique))
	for i := len(unique) - 1; i >= 0; i-- {
		out = append(out, unique[i])
	}
	return out
}
