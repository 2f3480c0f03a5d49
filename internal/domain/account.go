package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the canonical, fully-resolved role of a principal.
// Raw account rows carry several possibly-conflicting role signals
// (admin registry membership, is_admin flag, stored role string);
// only the resolver may collapse them into a Role. Downstream code
// must never re-derive role from raw flags.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCoach  Role = "coach"
	RoleClient Role = "client"
)

// Account is the raw stored account row. Rows pre-exist (created by the
// identity provider on signup) and stay inert until an admin sets
// active_until or a role.
type Account struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email       string             `bson:"email" json:"email"`
	FullName    string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Role        string             `bson:"role,omitempty" json:"role,omitempty"` // stored role hint, not authoritative
	IsAdmin     bool               `bson:"isAdmin,omitempty" json:"isAdmin,omitempty"`
	IsBlocked   bool               `bson:"isBlocked,omitempty" json:"isBlocked,omitempty"`
	ActiveUntil *time.Time         `bson:"activeUntil,omitempty" json:"activeUntil,omitempty"` // inclusive calendar date
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Principal is the resolved, role-tagged view of an account. It is derived
// fresh on every resolution and never stored or cached across requests.
type Principal struct {
	ID          primitive.ObjectID `json:"id"`
	Email       string             `json:"email"`
	FullName    string             `json:"fullName,omitempty"`
	Role        Role               `json:"role"`
	IsBlocked   bool               `json:"isBlocked"`
	ActiveUntil *time.Time         `json:"activeUntil,omitempty"`
	Notes       string             `json:"notes,omitempty"`
}

func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p *Principal) IsCoach() bool {
	return p.Role == RoleCoach
}

// IsExpired reports whether a subscription end date has passed.
// A nil date means the account was never activated and counts as expired.
// Comparison is at day granularity: an activeUntil equal to today is NOT
// expired, any strictly earlier calendar day is.
func IsExpired(activeUntil *time.Time, now time.Time) bool {
	if activeUntil == nil {
		return true
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ay, am, ad := activeUntil.UTC().Date()
	until := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	return until.Before(today)
}
