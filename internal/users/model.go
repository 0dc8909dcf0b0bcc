package users

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a user record cannot be located.
var ErrNotFound = errors.New("user not found")

// ErrDuplicateID is returned by Insert when a record with the same id
// already exists. Reconcile recovers from it by re-reading.
var ErrDuplicateID = errors.New("user id already exists")

// Subscription is the billing tier of an account.
type Subscription string

const (
	SubscriptionFree Subscription = "free"
	SubscriptionPaid Subscription = "paid"
)

// User is a persisted account. The id is derived from the identity
// provider's subject and is immutable once created.
type User struct {
	ID       string   `bson:"_id" json:"_id"`
	Provider string   `bson:"provider" json:"provider"`
	Data     UserData `bson:"data" json:"data"`
}

// UserData holds the mutable profile portion of a user document.
// Groups contains only groups the user is a confirmed member of.
type UserData struct {
	Name                  string       `bson:"name" json:"name"`
	Nickname              string       `bson:"nickname" json:"nickname"`
	Email                 string       `bson:"email" json:"email"`
	Image                 string       `bson:"image" json:"image"`
	Bio                   string       `bson:"bio" json:"bio"`
	Groups                []string     `bson:"groups" json:"groups"`
	Subscription          Subscription `bson:"subscription" json:"subscription"`
	PreferredLanguage     string       `bson:"preferred_language" json:"preferred_language"`
	PreferredShowNickname bool         `bson:"preferred_show_nickname" json:"preferred_show_nickname"`
	PreferredTheme        string       `bson:"preferred_theme" json:"preferred_theme"`
	PreferredViewProfile  string       `bson:"preferred_view_profile" json:"preferred_view_profile"`
}

// ProfileHints are the optional profile fields an identity provider may
// supply alongside an assertion. Absent fields default to empty strings.
type ProfileHints struct {
	Name  string
	Email string
	Image string
}

// NewUser builds a user document with first-login defaults. Hints are only
// consulted here; an existing record is never overwritten by fresh hints.
func NewUser(id, provider string, hints ProfileHints) User {
	return User{
		ID:       id,
		Provider: provider,
		Data: UserData{
			Name:                  hints.Name,
			Nickname:              "",
			Email:                 hints.Email,
			Image:                 hints.Image,
			Bio:                   fmt.Sprintf("Hi, I am %s.", hints.Name),
			Groups:                []string{},
			Subscription:          SubscriptionFree,
			PreferredLanguage:     "en",
			PreferredShowNickname: false,
			PreferredTheme:        "light",
			PreferredViewProfile:  "hidden",
		},
	}
}

// OwnsMaxGroups reports whether the user has reached the owned-group cap.
func (u User) OwnsMaxGroups() bool {
	return len(u.Data.Groups) >= MaxGroupsPerUser
}

// MaxGroupsPerUser caps how many groups a single user may own.
const MaxGroupsPerUser = 3
