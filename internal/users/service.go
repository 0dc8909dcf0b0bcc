package users

import (
	"context"
	"errors"
	"fmt"
)

// Service reconciles resolved identities against persisted user records.
type Service struct {
	repo Repository
}

// NewService wires a Service with the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Reconcile maps a resolved identity to a user record, creating one with
// first-login defaults if absent. An existing record is returned unmodified:
// provider hints are sticky from the first login and never overwrite.
//
// Two concurrent first-logins for the same id can both observe "not found"
// and both insert; the store's unique key rejects the loser, which is
// recovered here by a re-read rather than surfaced.
func (s *Service) Reconcile(ctx context.Context, id, provider string, hints ProfileHints) (User, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("reconcile lookup: %w", err)
	}

	if err := s.repo.Insert(ctx, NewUser(id, provider, hints)); err != nil && !errors.Is(err, ErrDuplicateID) {
		return User{}, fmt.Errorf("reconcile insert: %w", err)
	}

	// Re-read by id regardless of who won the insert; some drivers do not
	// return the full inserted document.
	created, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("reconcile re-read: %w", err)
	}
	return created, nil
}
