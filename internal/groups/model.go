package groups

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a group cannot be located.
var ErrNotFound = errors.New("group not found")

// ErrValidation is returned when input validation fails.
var ErrValidation = errors.New("validation error")

// ErrNotResponsible is returned when a mutation is attempted by someone
// other than the group's responsible user.
var ErrNotResponsible = errors.New("not the responsible user")

// ErrGroupLimit is returned when a user at the owned-group cap tries to
// create another group.
var ErrGroupLimit = errors.New("group limit reached")

// ValidationError wraps a validation message so callers can distinguish
// client errors from internal failures.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Theme is a "tag:variant" presentation tag carried on a group.
type Theme string

const (
	ThemeDefault Theme = "default:default"
	ThemeAdom    Theme = "adom:red"
	ThemeTsahov  Theme = "tsahov:yellow"
	ThemeKahol   Theme = "kahol:blue"
)

// ValidTheme reports whether t is one of the supported themes.
func ValidTheme(t Theme) bool {
	switch t {
	case ThemeDefault, ThemeAdom, ThemeTsahov, ThemeKahol:
		return true
	}
	return false
}

// Group is a persisted team document keyed by a generated ObjectID.
type Group struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Data GroupData          `bson:"data" json:"data"`
}

// GroupData is the document body. Emails holds pending-invite addresses;
// Members holds confirmed member user ids. UserResponsible is the single
// owner, who alone may edit or delete the group.
type GroupData struct {
	Name            string   `bson:"name" json:"name"`
	Description     string   `bson:"description" json:"description"`
	Address         string   `bson:"address" json:"address"`
	Theme           Theme    `bson:"theme" json:"theme"`
	Accounts        Accounts `bson:"accounts" json:"accounts"`
	Contact         Contact  `bson:"contact" json:"contact"`
	Emails          []string `bson:"emails" json:"emails"`
	Members         []string `bson:"members" json:"members"`
	Prayers         []string `bson:"prayers" json:"prayers"`
	UserResponsible string   `bson:"user_responsible" json:"user_responsible"`
}

// Accounts are the group's social handles.
type Accounts struct {
	Instagram string `bson:"instagram" json:"instagram"`
	Kakaotalk string `bson:"kakaotalk" json:"kakaotalk"`
}

// Contact is how to reach the group's leader.
type Contact struct {
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
}

// Notification is the dashboard projection of a pending invitation.
type Notification struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Theme Theme              `json:"theme"`
}

// MembershipIndex is the dashboard view of a user's group world.
type MembershipIndex struct {
	Groups        []Group        `json:"groups"`
	Notifications []Notification `json:"notifications"`
}

// CreateGroupInput is the client-supplied group shape. UserResponsible is
// re-validated against the session server-side before insertion.
type CreateGroupInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Address         string   `json:"address"`
	Theme           Theme    `json:"theme"`
	Accounts        Accounts `json:"accounts"`
	Contact         Contact  `json:"contact"`
	Emails          []string `json:"emails"`
	UserResponsible string   `json:"user_responsible"`
}
