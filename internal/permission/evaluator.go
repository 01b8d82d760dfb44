// Package permission maps an identity to capabilities and to the row-level
// visibility boundary applied to every data query. Everything here is pure.
package permission

import (
	"go401-gateway/internal/apperr"
	"go401-gateway/internal/identity"
)

// HasCapability reports whether id may use the named capability. Super admins
// hold every capability; everyone else needs an explicit grant.
func HasCapability(id identity.Identity, name string) bool {
	if id.IsSuperAdmin() {
		return true
	}
	return id.HasPermission(name)
}

// RequireCapability returns a PermissionDeniedError when id lacks name.
func RequireCapability(id identity.Identity, name string) error {
	if !HasCapability(id, name) {
		return apperr.Denied(string(id.Role()), name)
	}
	return nil
}

// VisibilityPredicate derives the row-level restriction for id. Roles that
// are not enumerated get a filter that matches nothing.
func VisibilityPredicate(id identity.Identity) ScopeFilter {
	if id.IsSuperAdmin() {
		return All()
	}

	switch id.Role() {
	case identity.RoleParticipant:
		if id.Email() == "" {
			return None()
		}
		return Eq(FieldParticipantEmail, id.Email())
	case identity.RoleCompanyAdmin, identity.RoleAdvisor:
		return In(FieldCompanyID, id.CompanyIDs())
	case identity.RolePlanAdmin:
		return In(FieldPlanID, id.PlanIDs())
	default:
		return None()
	}
}

// CanAccessCompany reports whether id may target a specific company.
func CanAccessCompany(id identity.Identity, companyID string) bool {
	if id.IsSuperAdmin() {
		return true
	}
	return id.OwnsCompany(companyID)
}

// CanViewCompanyLevel applies the role rule that keeps participants away from
// company-level views, whatever capabilities they were granted.
func CanViewCompanyLevel(id identity.Identity) bool {
	return id.Role() != identity.RoleParticipant
}
