// Package identity defines the resolved record of an authenticated caller.
package identity

import (
	"sort"
	"strings"
)

// Role is one of the closed set of caller roles. Unrecognized values are kept
// verbatim so that scoping can fail closed on them.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleCompanyAdmin Role = "company_admin"
	RolePlanAdmin    Role = "plan_admin"
	RoleAdvisor      Role = "advisor"
	RoleParticipant  Role = "participant"
)

// Known reports whether r is one of the enumerated roles.
func (r Role) Known() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RolePlanAdmin, RoleAdvisor, RoleParticipant:
		return true
	}
	return false
}

// Capabilities checked by the query operations.
const (
	CapViewCompanies    = "view_companies"
	CapViewParticipants = "view_participants"
	CapViewSchema       = "view_schema"
	CapRunQueries       = "run_queries"
)

// Identity is immutable after construction. Fields are only reachable through
// accessors that return copies, so a stored Identity can be shared between
// goroutines without locking.
type Identity struct {
	userID       string
	email        string
	role         Role
	companyIDs   []string
	planIDs      []string
	permissions  []string
	isSuperAdmin bool
}

// Params carries the raw values an Identity is built from.
type Params struct {
	UserID       string
	Email        string
	Role         string
	CompanyIDs   []string
	PlanIDs      []string
	Permissions  []string
	IsSuperAdmin bool
}

// New builds an Identity. Id and permission sets are deduplicated, stripped of
// blanks and sorted.
func New(p Params) Identity {
	return Identity{
		userID:       p.UserID,
		email:        strings.ToLower(strings.TrimSpace(p.Email)),
		role:         Role(strings.TrimSpace(p.Role)),
		companyIDs:   normalizeSet(p.CompanyIDs),
		planIDs:      normalizeSet(p.PlanIDs),
		permissions:  normalizeSet(p.Permissions),
		isSuperAdmin: p.IsSuperAdmin,
	}
}

// UserID returns the user's id in the identity tables.
func (i Identity) UserID() string { return i.userID }

// Email returns the normalized, lowercased email.
func (i Identity) Email() string { return i.email }

// Role returns the caller's role.
func (i Identity) Role() Role { return i.role }

// CompanyIDs returns a copy of the accessible company ids, sorted.
func (i Identity) CompanyIDs() []string { return copySet(i.companyIDs) }

// PlanIDs returns a copy of the accessible plan ids, sorted.
func (i Identity) PlanIDs() []string { return copySet(i.planIDs) }

// Permissions returns a copy of the granted capability names, sorted.
func (i Identity) Permissions() []string { return copySet(i.permissions) }

// IsSuperAdmin reports whether the identity bypasses scoping, either through
// the stored flag or through the super_admin role.
func (i Identity) IsSuperAdmin() bool {
	return i.isSuperAdmin || i.role == RoleSuperAdmin
}

// HasPermission reports whether name was explicitly granted. It does not
// consider the super-admin flag.
func (i Identity) HasPermission(name string) bool {
	return contains(i.permissions, name)
}

// OwnsCompany reports whether id is in the identity's company set.
func (i Identity) OwnsCompany(id string) bool {
	return contains(i.companyIDs, id)
}

// Params returns the values the identity was built from.
func (i Identity) Params() Params {
	return Params{
		UserID:       i.userID,
		Email:        i.email,
		Role:         string(i.role),
		CompanyIDs:   i.CompanyIDs(),
		PlanIDs:      i.PlanIDs(),
		Permissions:  i.Permissions(),
		IsSuperAdmin: i.isSuperAdmin,
	}
}

// IsZero reports whether i is the zero Identity.
func (i Identity) IsZero() bool {
	return i.userID == "" && i.email == "" && i.role == ""
}

func normalizeSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

func copySet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// contains relies on s being sorted.
func contains(s []string, v string) bool {
	i := sort.SearchStrings(s, v)
	return i < len(s) && s[i] == v
}
