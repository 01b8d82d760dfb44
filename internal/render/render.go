// Package render turns operation results and errors into the text handed back
// to the conversation. Nothing below this layer formats text for humans.
package render

import (
	"errors"
	"fmt"
	"strings"

	"go401-gateway/internal/apperr"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/identity"
	"go401-gateway/internal/secure"
	"go401-gateway/internal/session"
)

const none = "None"

// Authenticated confirms a login.
func Authenticated(id identity.Identity) string {
	var b strings.Builder
	b.WriteString("User authenticated successfully!\n\n")
	fmt.Fprintf(&b, "User: %s\n", id.Email())
	fmt.Fprintf(&b, "Role: %s\n", id.Role())
	fmt.Fprintf(&b, "Companies: %s\n", joinOr(id.CompanyIDs()))
	fmt.Fprintf(&b, "Plans: %s\n", joinOr(id.PlanIDs()))
	fmt.Fprintf(&b, "Permissions: %s\n", joinOr(id.Permissions()))
	fmt.Fprintf(&b, "Super Admin: %t\n\n", id.IsSuperAdmin())
	b.WriteString("You can now access data according to your permissions.")
	return b.String()
}

// LoggedOut confirms a logout.
func LoggedOut() string {
	return "Session ended. Authenticate again to continue."
}

// Permissions summarizes the session identity and its data scope.
func Permissions(s *secure.PermissionSummary) string {
	id := s.Identity

	var b strings.Builder
	b.WriteString("Current User Context:\n\n")
	fmt.Fprintf(&b, "Email: %s\n", id.Email())
	fmt.Fprintf(&b, "Role: %s\n", id.Role())
	fmt.Fprintf(&b, "User ID: %s\n", id.UserID())
	fmt.Fprintf(&b, "Super Admin: %t\n\n", id.IsSuperAdmin())
	fmt.Fprintf(&b, "Company Access: %s\n", joinOr(id.CompanyIDs()))
	fmt.Fprintf(&b, "Plan Access: %s\n\n", joinOr(id.PlanIDs()))

	b.WriteString("Permissions:\n")
	perms := id.Permissions()
	if len(perms) == 0 {
		b.WriteString("• No specific permissions\n")
	}
	for _, p := range perms {
		fmt.Fprintf(&b, "• %s\n", p)
	}

	scope := s.Scope.String()
	if s.Scope.Unrestricted() {
		scope = "Full access (Super Admin)"
	}
	fmt.Fprintf(&b, "\nData Scope: %s", scope)
	return b.String()
}

// CompanyCount reports a scoped count.
func CompanyCount(res *secure.CountResult) string {
	if res.SystemWide {
		return fmt.Sprintf("Total companies in the system: %d", res.Count)
	}
	return fmt.Sprintf("Companies you have access to: %d", res.Count)
}

// Rows renders a bounded list or raw query result.
func Rows(res *secure.RowsResult) string {
	subject := res.Subject
	if subject == "" {
		subject = "rows"
	}

	if res.Empty() {
		if subject == "rows" {
			return "No results found for your query."
		}
		return fmt.Sprintf("No %s found that you have access to.", subject)
	}

	var b strings.Builder
	if subject == "rows" {
		fmt.Fprintf(&b, "Query Results (%d rows):\n\n", len(res.Rows))
	} else {
		fmt.Fprintf(&b, "%s you have access to (%d shown):\n\n", capitalize(subject), len(res.Rows))
	}
	b.WriteString(Table(res.Columns, res.Rows))

	switch {
	case res.Remaining > 0:
		fmt.Fprintf(&b, "\n... and %d more %s", res.Remaining, subject)
	case res.Truncated:
		fmt.Fprintf(&b, "\n... more %s match; only the first %d are shown", subject, res.Limit)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Table lays rows out as a pipe-separated grid with NULL markers.
func Table(columns []string, rows [][]datasource.Cell) string {
	var b strings.Builder
	header := strings.Join(columns, " | ")
	b.WriteString(header)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", len(header)))
	b.WriteByte('\n')

	values := make([]string, 0, len(columns))
	for _, row := range rows {
		values = values[:0]
		for _, c := range row {
			values = append(values, c.String())
		}
		b.WriteString(strings.Join(values, " | "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Error renders err for the conversation. Backend failures carry the store's
// description but never the statement text.
func Error(err error) string {
	var (
		denied  *apperr.PermissionDeniedError
		invalid *apperr.InvalidFilterError
		backend *apperr.BackendError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, apperr.ErrNotAuthenticated):
		return "Error: User not authenticated. Please authenticate first using the authenticate tool."
	case errors.Is(err, apperr.ErrUserNotFound):
		return "Authentication failed. User not found or has no access."
	case errors.Is(err, session.ErrInvalidSession):
		return "Error: a session id is required."
	case errors.As(err, &denied):
		if denied.Resource != "" {
			return fmt.Sprintf("Access denied. Your role '%s' cannot access %s.", denied.Role, denied.Resource)
		}
		return fmt.Sprintf("Access denied. Your role '%s' does not have the '%s' permission.", denied.Role, denied.Capability)
	case errors.As(err, &invalid):
		return "Invalid request: " + invalid.Reason
	case errors.As(err, &backend):
		return "Error querying data: " + describeBackend(backend.Cause)
	default:
		return "Error: " + err.Error()
	}
}

func describeBackend(cause error) string {
	var se *datasource.StoreError
	if errors.As(cause, &se) {
		if se.Timeout() {
			return "the query timed out"
		}
		if se.Err != nil {
			return fmt.Sprintf("%s error: %v", se.Kind, se.Err)
		}
		return fmt.Sprintf("%s error", se.Kind)
	}
	if cause == nil {
		return "unknown failure"
	}
	return cause.Error()
}

func joinOr(values []string) string {
	if len(values) == 0 {
		return none
	}
	return strings.Join(values, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
