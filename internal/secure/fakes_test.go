package secure

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go401-gateway/internal/auth"
	"go401-gateway/internal/clients"
	"go401-gateway/internal/config"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/identity"
	"go401-gateway/internal/session"
)

type fakeStore struct {
	mu      sync.Mutex
	results map[string]*datasource.ResultSet
	errs    map[string]error
	calls   []*datasource.Statement
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		results: make(map[string]*datasource.ResultSet),
		errs:    make(map[string]error),
	}
}

func (f *fakeStore) Query(_ context.Context, stmt *datasource.Statement) (*datasource.ResultSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, stmt)
	if err := f.errs[stmt.Label]; err != nil {
		return nil, err
	}
	if rs, ok := f.results[stmt.Label]; ok {
		return rs, nil
	}
	return &datasource.ResultSet{}, nil
}

func (f *fakeStore) TestConnection(context.Context) error { return nil }
func (f *fakeStore) GetType() datasource.DataSourceType { return datasource.DataSourceBigQuery }
func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeStore) lastCall() *datasource.Statement {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fakeCatalog struct {
	datasets []datasource.DatasetInfo
	tables   map[string][]string
	err      error
}

func (c *fakeCatalog) ListDatasets(context.Context) ([]datasource.DatasetInfo, error) {
	return c.datasets, c.err
}

func (c *fakeCatalog) GetDataset(_ context.Context, datasetID string) (*datasource.DatasetInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	for i := range c.datasets {
		if c.datasets[i].ID == datasetID {
			return &c.datasets[i], nil
		}
	}
	return nil, fmt.Errorf("dataset %s not found", datasetID)
}

func (c *fakeCatalog) ListTables(_ context.Context, datasetID string) ([]string, error) {
	return c.tables[datasetID], c.err
}

func (c *fakeCatalog) GetTable(_ context.Context, datasetID, tableID string) (*datasource.TableInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &datasource.TableInfo{
		DatasetID: datasetID,
		ID:        tableID,
		NumRows:   10,
		NumBytes:  2 * 1024 * 1024,
		Fields:    []datasource.FieldInfo{{Name: "id", Type: "STRING", Mode: "REQUIRED"}},
	}, nil
}

type fakeCost struct {
	gb float64
}

func (c fakeCost) EstimateQueryCost(context.Context, string, string) (*clients.CostEstimate, error) {
	return &clients.CostEstimate{EstimatedGB: c.gb, EstimatedBytes: int64(c.gb * 1024 * 1024 * 1024)}, nil
}

type harness struct {
	svc      *Service
	store    *fakeStore
	catalog  *fakeCatalog
	sessions *session.MemoryStore
}

func newHarness(t *testing.T, cost CostEstimator) *harness {
	t.Helper()

	store := newFakeStore()
	catalog := &fakeCatalog{}
	sessions := session.NewMemoryStore(time.Hour, zap.NewNop())
	tables := config.TablesConfig{
		Users:           "go401_dev_accounts_user",
		UserCompanies:   "go401_dev_user_companies",
		UserPlans:       "go401_dev_user_plans",
		UserPermissions: "go401_dev_user_permissions",
		Permissions:     "go401_dev_permissions",
		Companies:       "go401_dev_companies_company",
		Participants:    "go401_dev_participants_participant",
	}

	authn, err := auth.NewAuthenticator(store, sessions, "dev_dataset", tables, zap.NewNop())
	require.NoError(t, err)

	svc, err := NewService(Deps{
		Authenticator: authn,
		Sessions:      sessions,
		Store:         store,
		Catalog:       catalog,
		Cost:          cost,
	}, Options{
		DatasetID:     "dev_dataset",
		Tables:        tables,
		ListLimit:     50,
		RawQueryMaxGB: 10,
	}, zap.NewNop())
	require.NoError(t, err)

	return &harness{svc: svc, store: store, catalog: catalog, sessions: sessions}
}

func (h *harness) login(t *testing.T, sessionID string, p identity.Params) {
	t.Helper()
	require.NoError(t, h.sessions.Set(context.Background(), sessionID, identity.New(p)))
}

func superAdmin() identity.Params {
	return identity.Params{UserID: "1", Email: "root@acme.com", Role: "super_admin", IsSuperAdmin: true}
}

func companyAdmin(companies ...string) identity.Params {
	return identity.Params{
		UserID:      "2",
		Email:       "ca@acme.com",
		Role:        "company_admin",
		CompanyIDs:  companies,
		Permissions: []string{identity.CapViewCompanies, identity.CapViewParticipants, identity.CapViewSchema},
	}
}

func participant(email string) identity.Params {
	return identity.Params{
		UserID:      "3",
		Email:       email,
		Role:        "participant",
		Permissions: []string{identity.CapViewCompanies, identity.CapViewParticipants},
	}
}

func rows(columns []string, n int) *datasource.ResultSet {
	rs := &datasource.ResultSet{Columns: columns, TotalRows: uint64(n)}
	for i := 0; i < n; i++ {
		row := make([]datasource.Cell, len(columns))
		for j := range columns {
			row[j] = datasource.Cell{Value: fmt.Sprintf("%s-%d", columns[j], i)}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs
}
