// Package repository defines the persistence contracts of the login bridge.
// Adapters live under internal/store.
package repository

import "time"

// Profile is the locally persisted user record. Fields sourced from provider
// claims follow first-write-wins: a value already present is never
// overwritten by a later login.
type Profile struct {
	Username string // provider subject id, primary key

	Email             string
	FirstName         string
	LastName          string
	Country           string
	City              string
	Zipcode           string
	Organization      string
	Voice             string
	Language          string
	Timezone          string
	PreferredUsername string
	EmployeeNumber    string
	FiscalCode        string
	Department        string
	AuthMethod        string
	Groups            string
	Roles             string
	Keywords          []string
	IsManager         bool

	IsActive    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Department is an allow-list entry keyed by the department claim value.
// At most one entry exists per name.
type Department struct {
	Name      string
	Label     string
	IsAllowed bool
	CreatedAt time.Time
}

// Title returns the display label, falling back to the name.
func (d Department) Title() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// Group is the membership group lazily created for a department.
type Group struct {
	Slug      string // department name
	Title     string
	Access    string // "public_invite" for department groups
	CreatedAt time.Time
}

// GroupRole is the membership role within a group.
type GroupRole string

const (
	RoleMember  GroupRole = "member"
	RoleManager GroupRole = "manager"
)

// GroupMember relates a profile to a group with a role.
type GroupMember struct {
	GroupSlug string
	Username  string
	Role      GroupRole
	JoinedAt  time.Time
}

// MembershipChange describes the group mutation a provisioning run wants
// applied together with the profile save.
type MembershipChange struct {
	GroupSlug  string
	GroupTitle string
	Role       GroupRole
}
