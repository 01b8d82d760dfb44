package cmd

import (
	"context"
	"fmt"
	"strings"

	"go401-gateway/internal/datasource"
	"go401-gateway/internal/identity"
	"go401-gateway/internal/render"
	"go401-gateway/internal/secure"
)

// operations is the part of the secure service the shell drives.
type operations interface {
	Authenticate(ctx context.Context, sessionID, email string) (identity.Identity, error)
	Logout(ctx context.Context, sessionID string) error
	CheckPermissions(ctx context.Context, sessionID string) (*secure.PermissionSummary, error)
	CompanyCount(ctx context.Context, sessionID string) (*secure.CountResult, error)
	CompanyList(ctx context.Context, sessionID string) (*secure.RowsResult, error)
	ParticipantList(ctx context.Context, sessionID, companyID string) (*secure.RowsResult, error)
	ListDatasets(ctx context.Context, sessionID string) ([]datasource.DatasetInfo, error)
	DatasetInfo(ctx context.Context, sessionID, datasetID string) (*secure.DatasetSummary, error)
	TableSchema(ctx context.Context, sessionID, datasetID, tableID string) (*datasource.TableInfo, error)
	SearchTables(ctx context.Context, sessionID, datasetID, term string) (*secure.SearchResult, error)
	RawQuery(ctx context.Context, sessionID, query string) (*secure.RowsResult, error)
}

const toolHelp = `Tools:
  auth <email>                 authenticate the session
  logout                       end the session
  perms                        show identity and data scope
  count                        count accessible companies
  companies                    list accessible companies
  participants [company_id]    list accessible participants
  datasets                     list datasets
  dataset <dataset>            describe a dataset
  table <dataset> <table>      show a table schema
  search <dataset> <term>      find tables by name
  query <sql>                  run a read-only query (super admins)
  help                         show this help
  quit                         leave the shell`

// runTool executes one tool line and returns the text to print.
func runTool(ctx context.Context, ops operations, sessionID, line string) string {
	name, rest := splitWord(strings.TrimSpace(line))
	args := strings.Fields(rest)

	usage := func(form string) string { return "Usage: " + form }

	switch strings.ToLower(name) {
	case "", "help":
		return toolHelp
	case "auth":
		if len(args) != 1 {
			return usage("auth <email>")
		}
		id, err := ops.Authenticate(ctx, sessionID, args[0])
		if err != nil {
			return render.Error(err)
		}
		return render.Authenticated(id)
	case "logout":
		if err := ops.Logout(ctx, sessionID); err != nil {
			return render.Error(err)
		}
		return render.LoggedOut()
	case "perms":
		res, err := ops.CheckPermissions(ctx, sessionID)
		if err != nil {
			return render.Error(err)
		}
		return render.Permissions(res)
	case "count":
		res, err := ops.CompanyCount(ctx, sessionID)
		if err != nil {
			return render.Error(err)
		}
		return render.CompanyCount(res)
	case "companies":
		res, err := ops.CompanyList(ctx, sessionID)
		if err != nil {
			return render.Error(err)
		}
		return render.Rows(res)
	case "participants":
		companyID := ""
		if len(args) > 0 {
			companyID = args[0]
		}
		res, err := ops.ParticipantList(ctx, sessionID, companyID)
		if err != nil {
			return render.Error(err)
		}
		return render.Rows(res)
	case "datasets":
		res, err := ops.ListDatasets(ctx, sessionID)
		if err != nil {
			return render.Error(err)
		}
		return render.Datasets(res)
	case "dataset":
		if len(args) != 1 {
			return usage("dataset <dataset>")
		}
		res, err := ops.DatasetInfo(ctx, sessionID, args[0])
		if err != nil {
			return render.Error(err)
		}
		return render.DatasetSummary(res)
	case "table":
		if len(args) != 2 {
			return usage("table <dataset> <table>")
		}
		res, err := ops.TableSchema(ctx, sessionID, args[0], args[1])
		if err != nil {
			return render.Error(err)
		}
		return render.TableSchema(res)
	case "search":
		if len(args) < 2 {
			return usage("search <dataset> <term>")
		}
		res, err := ops.SearchTables(ctx, sessionID, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return render.Error(err)
		}
		return render.Search(res)
	case "query":
		if strings.TrimSpace(rest) == "" {
			return usage("query <sql>")
		}
		res, err := ops.RawQuery(ctx, sessionID, rest)
		if err != nil {
			return render.Error(err)
		}
		return render.Rows(res)
	default:
		return fmt.Sprintf("Unknown tool %q. Type help for the list.", name)
	}
}

func splitWord(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
