package secure

import (
	"fmt"
	"testing"

	"go401-gateway/internal/identity"
	"go401-gateway/internal/permission"
)

func benchmarkIdentity(role string, companies int) identity.Identity {
	ids := make([]string, companies)
	for i := range ids {
		ids[i] = fmt.Sprintf("C%04d", i)
	}
	return identity.New(identity.Params{
		UserID:      "u1",
		Email:       "bench@acme.com",
		Role:        role,
		CompanyIDs:  ids,
		PlanIDs:     []string{"P1", "P2"},
		Permissions: []string{identity.CapViewCompanies, identity.CapViewParticipants},
	})
}

// BenchmarkScopeLowering measures predicate derivation plus SQL lowering for
// the roles the list operations see most.
func BenchmarkScopeLowering(b *testing.B) {
	cases := []struct {
		name    string
		id      identity.Identity
		columns columnMap
	}{
		{"CompanyAdmin_10", benchmarkIdentity("company_admin", 10), companyColumns},
		{"CompanyAdmin_1000", benchmarkIdentity("company_admin", 1000), companyColumns},
		{"PlanAdmin", benchmarkIdentity("plan_admin", 0), participantColumns},
		{"Participant", benchmarkIdentity("participant", 0), participantColumns},
	}

	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				filter := permission.VisibilityPredicate(c.id)
				if _, _, err := lowerScope(filter, c.columns); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkScopeLowering_Parallel(b *testing.B) {
	id := benchmarkIdentity("company_admin", 50)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = lowerScope(permission.VisibilityPredicate(id), companyColumns)
		}
	})
}
