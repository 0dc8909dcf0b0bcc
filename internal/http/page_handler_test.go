package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"gather/internal/groups"
	"gather/internal/users"
)

func seedGroup(t *testing.T, env *testEnv, owner string, emails ...string) groups.Group {
	t.Helper()

	if emails == nil {
		emails = []string{}
	}
	created, err := env.groupRepo.Insert(context.Background(), groups.Group{
		Data: groups.GroupData{
			Name:            "team",
			Description:     "desc",
			Theme:           groups.ThemeDefault,
			Contact:         groups.Contact{Email: "lead@x.com", Name: "Lead"},
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

func TestDashboardRedirectsAnonymousToHome(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/dashboard", nil)

	assertRedirect(t, rec, "/")
}

func TestDashboardRendersMembershipIndex(t *testing.T) {
	env := newTestEnv(t)
	user := users.NewUser("g-42", "google", users.ProfileHints{Name: "Ann", Email: "a@x.com"})
	group := seedGroup(t, env, "g-42")
	user.Data.Groups = []string{group.ID.Hex()}

	seedGroup(t, env, "someone-else", "a@x.com")

	cookie := env.signIn(t, user)
	rec := env.get(t, "/dashboard", cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload struct {
		User struct {
			ID      string `json:"_id"`
			Expires string `json:"expires"`
		} `json:"user"`
		Groups        []groups.Group        `json:"groups"`
		Notifications []groups.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode dashboard payload: %v", err)
	}
	if payload.User.ID != "g-42" || payload.User.Expires == "" {
		t.Fatalf("expected session user with expiry, got %+v", payload.User)
	}
	if len(payload.Groups) != 1 || payload.Groups[0].ID != group.ID {
		t.Fatalf("unexpected groups: %+v", payload.Groups)
	}
	if len(payload.Notifications) != 1 {
		t.Fatalf("expected one notification, got %+v", payload.Notifications)
	}
}

func TestAccountHopsToProfile(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, users.NewUser("g-1", "google", users.ProfileHints{}))

	assertRedirect(t, env.get(t, "/account", cookie), "/account/profile")
	assertRedirect(t, env.get(t, "/account", nil), "/")
}

func TestAccountProfileRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	assertRedirect(t, env.get(t, "/account/profile", nil), "/")

	cookie := env.signIn(t, users.NewUser("g-1", "google", users.ProfileHints{Name: "Ann"}))
	rec := env.get(t, "/account/profile", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestGroupDetailMalformedIDRedirectsWithoutParam(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, users.NewUser("g-1", "google", users.ProfileHints{}))

	rec := env.get(t, "/groups/not-a-hex-id", cookie)

	assertRedirect(t, rec, "/groups/not-found")
}

func TestGroupDetailAnonymousRedirectsHome(t *testing.T) {
	env := newTestEnv(t)
	group := seedGroup(t, env, "someone")

	rec := env.get(t, "/groups/"+group.ID.Hex(), nil)

	assertRedirect(t, rec, "/")
}

func TestGroupDetailNonMemberRedirectsWithID(t *testing.T) {
	env := newTestEnv(t)
	group := seedGroup(t, env, "someone-else")

	// The group exists but is not in the user's memberships; ownership is
	// indistinguishable from nonexistence to the client.
	user := users.NewUser("g-1", "google", users.ProfileHints{})
	cookie := env.signIn(t, user)

	for _, path := range []string{
		"/groups/" + group.ID.Hex(),
		"/groups/" + group.ID.Hex() + "/edit",
		"/groups/" + group.ID.Hex() + "/delete",
	} {
		rec := env.get(t, path, cookie)
		assertRedirect(t, rec, "/groups/not-found?_id="+group.ID.Hex())
	}
}

func TestGroupDetailDanglingMembershipRedirectsWithID(t *testing.T) {
	env := newTestEnv(t)
	gone := primitive.NewObjectID()

	user := users.NewUser("g-1", "google", users.ProfileHints{})
	user.Data.Groups = []string{gone.Hex()}
	cookie := env.signIn(t, user)

	rec := env.get(t, "/groups/"+gone.Hex(), cookie)

	assertRedirect(t, rec, "/groups/not-found?_id="+gone.Hex())
}

func TestGroupDetailRendersForMember(t *testing.T) {
	env := newTestEnv(t)
	group := seedGroup(t, env, "g-1")

	user := users.NewUser("g-1", "google", users.ProfileHints{})
	user.Data.Groups = []string{group.ID.Hex()}
	cookie := env.signIn(t, user)

	rec := env.get(t, "/groups/"+group.ID.Hex(), cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var payload struct {
		Group groups.Group `json:"group"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode group payload: %v", err)
	}
	if payload.Group.ID != group.ID {
		t.Fatalf("expected group %s, got %s", group.ID.Hex(), payload.Group.ID.Hex())
	}
}

func TestGroupsCreateBlocksAtCap(t *testing.T) {
	env := newTestEnv(t)

	user := users.NewUser("g-1", "google", users.ProfileHints{})
	user.Data.Groups = []string{"a", "b", "c"}
	cookie := env.signIn(t, user)

	assertRedirect(t, env.get(t, "/groups/create", cookie), "/groups/create/limit")
}

func TestGroupsCreateRendersBelowCap(t *testing.T) {
	env := newTestEnv(t)

	assertRedirect(t, env.get(t, "/groups/create", nil), "/")

	user := users.NewUser("g-1", "google", users.ProfileHints{})
	user.Data.Groups = []string{"a", "b"}
	cookie := env.signIn(t, user)

	rec := env.get(t, "/groups/create", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestGroupNotFoundEchoesQueryParam(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/groups/not-found?_id=abc123", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	var payload struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.ID != "abc123" {
		t.Fatalf("expected echoed id, got %q", payload.ID)
	}
}
