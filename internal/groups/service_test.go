package groups

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"gather/internal/users"
)

func seedUser(t *testing.T, repo users.Repository, id string, email string, groupIDs ...string) users.User {
	t.Helper()
	user := users.NewUser(id, "google", users.ProfileHints{Name: "Ann", Email: email})
	user.Data.Groups = append(user.Data.Groups, groupIDs...)
	if err := repo.Insert(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedGroup(t *testing.T, repo Repository, name, owner string, emails ...string) Group {
	t.Helper()
	created, err := repo.Insert(context.Background(), Group{
		Data: GroupData{
			Name:            name,
			Description:     "desc",
			Theme:           ThemeDefault,
			Contact:         Contact{Email: "lead@x.com", Name: "Lead"},
			Emails:          emails,
			Members:         []string{owner},
			Prayers:         []string{},
			UserResponsible: owner,
		},
	})
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}
	return created
}

func TestIndexPreservesMembershipOrder(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)

	g1 := seedGroup(t, groupRepo, "alpha", "u1")
	g2 := seedGroup(t, groupRepo, "beta", "u1")
	g3 := seedGroup(t, groupRepo, "gamma", "u1")
	user := seedUser(t, userRepo, "u1", "a@x.com", g3.ID.Hex(), g1.ID.Hex(), g2.ID.Hex())

	index, err := svc.Index(context.Background(), user)
	if err != nil {
		t.Fatalf("Index returned error: %v", err)
	}

	got := make([]string, 0, len(index.Groups))
	for _, g := range index.Groups {
		got = append(got, g.Data.Name)
	}
	want := []string{"gamma", "alpha", "beta"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected membership order %v, got %v", want, got)
	}
}

func TestIndexDropsDanglingGroupReference(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)

	g1 := seedGroup(t, groupRepo, "alpha", "u1")
	gone := primitive.NewObjectID().Hex()
	user := seedUser(t, userRepo, "u1", "a@x.com", gone, g1.ID.Hex())

	index, err := svc.Index(context.Background(), user)
	if err != nil {
		t.Fatalf("Index returned error: %v", err)
	}
	if len(index.Groups) != 1 || index.Groups[0].Data.Name != "alpha" {
		t.Fatalf("expected dangling reference to be dropped, got %+v", index.Groups)
	}
}

func TestIndexNotificationsMatchInvitedEmail(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)

	invited := seedGroup(t, groupRepo, "choir", "owner", "a@x.com")
	seedGroup(t, groupRepo, "other", "owner", "b@y.com")
	user := seedUser(t, userRepo, "u1", "a@x.com")

	index, err := svc.Index(context.Background(), user)
	if err != nil {
		t.Fatalf("Index returned error: %v", err)
	}
	if len(index.Notifications) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(index.Notifications))
	}
	n := index.Notifications[0]
	if n.ID != invited.ID || n.Name != "choir" || n.Theme != ThemeDefault {
		t.Fatalf("unexpected notification projection: %+v", n)
	}
}

func TestIndexDoesNotDeduplicateJoinedInvites(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)

	// The invite row persists even after the invited address joined.
	joined := seedGroup(t, groupRepo, "choir", "owner", "a@x.com")
	user := seedUser(t, userRepo, "u1", "a@x.com", joined.ID.Hex())

	index, err := svc.Index(context.Background(), user)
	if err != nil {
		t.Fatalf("Index returned error: %v", err)
	}
	if len(index.Groups) != 1 || len(index.Notifications) != 1 {
		t.Fatalf("expected joined group to still notify, got groups=%d notifications=%d",
			len(index.Groups), len(index.Notifications))
	}
}

func TestCreateRejectsMismatchedResponsibleUser(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)
	user := seedUser(t, userRepo, "u1", "a@x.com")

	_, err := svc.Create(context.Background(), user, CreateGroupInput{
		Name:            "team",
		Description:     "desc",
		Contact:         Contact{Email: "a@x.com", Name: "Ann"},
		UserResponsible: "someone-else",
	})
	if !errors.Is(err, ErrNotResponsible) {
		t.Fatalf("expected ErrNotResponsible, got %v", err)
	}
}

func TestCreateRejectsUserAtGroupCap(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)
	user := seedUser(t, userRepo, "u1", "a@x.com", "g1", "g2", "g3")

	_, err := svc.Create(context.Background(), user, CreateGroupInput{
		Name:            "team",
		Description:     "desc",
		Contact:         Contact{Email: "a@x.com", Name: "Ann"},
		UserResponsible: "u1",
	})
	if !errors.Is(err, ErrGroupLimit) {
		t.Fatalf("expected ErrGroupLimit, got %v", err)
	}
	stored, err := userRepo.FindByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if len(stored.Data.Groups) != 3 {
		t.Fatalf("expected no insert past the cap, got %v", stored.Data.Groups)
	}
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)
	user := seedUser(t, userRepo, "u1", "a@x.com")

	cases := []CreateGroupInput{
		{Description: "desc", Contact: Contact{Email: "a@x.com", Name: "Ann"}, UserResponsible: "u1"},
		{Name: "team", Contact: Contact{Email: "a@x.com", Name: "Ann"}, UserResponsible: "u1"},
		{Name: "team", Description: "desc", Contact: Contact{Name: "Ann"}, UserResponsible: "u1"},
		{Name: "team", Description: "desc", Contact: Contact{Email: "a@x.com", Name: "Ann"}, Theme: "neon:pink", UserResponsible: "u1"},
	}
	for i, input := range cases {
		if _, err := svc.Create(context.Background(), user, input); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestCreateRecordsOwnershipAndMembership(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)
	user := seedUser(t, userRepo, "u1", "a@x.com")

	created, err := svc.Create(context.Background(), user, CreateGroupInput{
		Name:            "  team  ",
		Description:     "desc",
		Emails:          []string{" friend@x.com ", ""},
		Contact:         Contact{Email: "a@x.com", Name: "Ann"},
		UserResponsible: "u1",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID.IsZero() {
		t.Fatal("expected generated group id")
	}
	if created.Data.Name != "team" {
		t.Fatalf("expected trimmed name, got %q", created.Data.Name)
	}
	if created.Data.UserResponsible != "u1" || !slices.Contains(created.Data.Members, "u1") {
		t.Fatalf("expected creator recorded as owner and member, got %+v", created.Data)
	}
	if !slices.Equal(created.Data.Emails, []string{"friend@x.com"}) {
		t.Fatalf("expected normalized invites, got %v", created.Data.Emails)
	}

	stored, err := userRepo.FindByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if !slices.Contains(stored.Data.Groups, created.ID.Hex()) {
		t.Fatalf("expected membership recorded on user, got %v", stored.Data.Groups)
	}
}

// addGroupFailingRepo fails every membership write while inheriting the
// rest of the in-memory behavior.
type addGroupFailingRepo struct {
	*users.InMemoryRepository
	err error
}

func (r *addGroupFailingRepo) AddGroup(context.Context, string, string) error {
	return r.err
}

func TestCreateRollsBackWhenMembershipWriteFails(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := &addGroupFailingRepo{
		InMemoryRepository: users.NewInMemoryRepository(nil),
		err:                errors.New("write failed"),
	}
	svc := NewService(groupRepo, userRepo)
	user := seedUser(t, userRepo, "u1", "a@x.com")

	_, err := svc.Create(context.Background(), user, CreateGroupInput{
		Name:            "team",
		Description:     "desc",
		Emails:          []string{"friend@x.com"},
		Contact:         Contact{Email: "a@x.com", Name: "Ann"},
		UserResponsible: "u1",
	})
	if err == nil {
		t.Fatal("expected failed membership write to surface")
	}

	orphans, err := groupRepo.FindByInvitedEmail(context.Background(), "friend@x.com")
	if err != nil {
		t.Fatalf("FindByInvitedEmail returned error: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected inserted group rolled back, found %+v", orphans)
	}
}

func TestDeleteRequiresResponsibleUser(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)

	group := seedGroup(t, groupRepo, "team", "owner")
	intruder := seedUser(t, userRepo, "u2", "b@y.com", group.ID.Hex())

	if err := svc.Delete(context.Background(), intruder, group.ID); !errors.Is(err, ErrNotResponsible) {
		t.Fatalf("expected ErrNotResponsible, got %v", err)
	}
	if _, err := groupRepo.FindByID(context.Background(), group.ID); err != nil {
		t.Fatalf("group must survive an unauthorized delete: %v", err)
	}
}

func TestDeleteRemovesGroupAndMembership(t *testing.T) {
	groupRepo := NewInMemoryRepository(nil)
	userRepo := users.NewInMemoryRepository(nil)
	svc := NewService(groupRepo, userRepo)

	group := seedGroup(t, groupRepo, "team", "u1")
	owner := seedUser(t, userRepo, "u1", "a@x.com", group.ID.Hex())

	if err := svc.Delete(context.Background(), owner, group.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := groupRepo.FindByID(context.Background(), group.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected group gone, got %v", err)
	}
	stored, err := userRepo.FindByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if slices.Contains(stored.Data.Groups, group.ID.Hex()) {
		t.Fatalf("expected membership cleanup, got %v", stored.Data.Groups)
	}
}

func TestDeleteMissingGroup(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil), users.NewInMemoryRepository(nil))
	user := users.NewUser("u1", "google", users.ProfileHints{})

	if err := svc.Delete(context.Background(), user, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
