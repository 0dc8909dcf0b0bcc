package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"gather/internal/users"
)

// Service orchestrates membership lookups and group mutations. Every
// authorization decision re-reads current state; nothing is cached.
type Service struct {
	repo     Repository
	userRepo users.Repository
}

// NewService wires a Service with group and user persistence.
func NewService(repo Repository, userRepo users.Repository) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

// Index computes the dashboard view for a user: the groups they belong to,
// in data.groups order, plus pending invitations addressed to their email.
//
// A group id that no longer resolves (deleted by its owner before membership
// cleanup existed) is dropped rather than surfaced as a gap. Invitations are
// not deduplicated against already-joined groups; an invite row persists
// after the address joins unless explicitly removed.
func (s *Service) Index(ctx context.Context, user users.User) (MembershipIndex, error) {
	index := MembershipIndex{Groups: []Group{}, Notifications: []Notification{}}

	for _, raw := range user.Data.Groups {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			continue
		}
		group, err := s.repo.FindByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return MembershipIndex{}, fmt.Errorf("index groups: %w", err)
		}
		index.Groups = append(index.Groups, group)
	}

	if user.Data.Email != "" {
		invited, err := s.repo.FindByInvitedEmail(ctx, user.Data.Email)
		if err != nil {
			return MembershipIndex{}, fmt.Errorf("index invitations: %w", err)
		}
		for _, group := range invited {
			index.Notifications = append(index.Notifications, Notification{
				ID:    group.ID,
				Name:  group.Data.Name,
				Theme: group.Data.Theme,
			})
		}
	}

	return index, nil
}

// IsMember reports whether the given group id appears in the user's
// confirmed memberships.
func (s *Service) IsMember(user users.User, id primitive.ObjectID) bool {
	hex := id.Hex()
	for _, raw := range user.Data.Groups {
		if raw == hex {
			return true
		}
	}
	return false
}

// Get returns a single group by id.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (Group, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates and persists a new group on behalf of the session user.
// The page-level pre-check is a UX shortcut only; ownership and the
// owned-group cap are re-derived here from the session user.
func (s *Service) Create(ctx context.Context, user users.User, input CreateGroupInput) (Group, error) {
	if input.UserResponsible != user.ID {
		return Group{}, ErrNotResponsible
	}
	if user.OwnsMaxGroups() {
		return Group{}, ErrGroupLimit
	}
	if err := validateCreateInput(input); err != nil {
		return Group{}, err
	}

	theme := input.Theme
	if theme == "" {
		theme = ThemeDefault
	}

	group := Group{
		Data: GroupData{
			Name:            strings.TrimSpace(input.Name),
			Description:     strings.TrimSpace(input.Description),
			Address:         strings.TrimSpace(input.Address),
			Theme:           theme,
			Accounts:        input.Accounts,
			Contact:         input.Contact,
			Emails:          normalizeStrings(input.Emails),
			Members:         []string{user.ID},
			Prayers:         []string{},
			UserResponsible: user.ID,
		},
	}

	created, err := s.repo.Insert(ctx, group)
	if err != nil {
		return Group{}, fmt.Errorf("create group: %w", err)
	}

	if err := s.userRepo.AddGroup(ctx, user.ID, created.ID.Hex()); err != nil {
		// Roll the insert back so a failed membership write does not leave
		// an orphan group no user can reach.
		if delErr := s.repo.Delete(ctx, created.ID); delErr != nil {
			return Group{}, fmt.Errorf("record membership: %w (orphan group %s not rolled back: %v)", err, created.ID.Hex(), delErr)
		}
		return Group{}, fmt.Errorf("record membership: %w", err)
	}

	return created, nil
}

// Delete removes a group after verifying the session user is its
// responsible user. The stored document, not the request payload, is the
// authority on ownership.
func (s *Service) Delete(ctx context.Context, user users.User, id primitive.ObjectID) error {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if group.Data.UserResponsible != user.ID {
		return ErrNotResponsible
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Membership cleanup so the owner's data.groups never dangles.
	if err := s.userRepo.RemoveGroup(ctx, user.ID, id.Hex()); err != nil && !errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("membership cleanup: %w", err)
	}
	return nil
}

func validateCreateInput(input CreateGroupInput) error {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Description) == "" {
		return &ValidationError{Message: "group name and description are required"}
	}
	if strings.TrimSpace(input.Contact.Email) == "" || strings.TrimSpace(input.Contact.Name) == "" {
		return &ValidationError{Message: "group leader name and email are required"}
	}
	if input.Theme != "" && !ValidTheme(input.Theme) {
		return &ValidationError{Message: "unknown theme"}
	}
	return nil
}

func normalizeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
