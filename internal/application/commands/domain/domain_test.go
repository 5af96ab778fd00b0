package domain_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/domain"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/dto"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/storage"
	"github.com/Builder-Lawyers/orbiter-backend/internal/testinfra"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var uowFactory *dbs.UOWFactory

func TestMain(m *testing.M) {
	uowFactory = dbs.NewUoWFactory(testinfra.Postgres())
	os.Exit(m.Run())
}

var cfg = domain.Config{
	PlatformDomain: "orbiter.website",
	ZoneName:       "orbiter.website",
	TargetType:     consts.RecordTypeCNAME,
	Recheck:        consts.RecheckNone,
}

type fixture struct {
	hostnames *fakeHostnames
	plans     *fakePlans
	records   *fakeRecords
	mappings  *storage.MappingStore
	add       *domain.AddDomain
	verify    *domain.VerifyDomain
	remove    *domain.RemoveDomain
}

func newFixture(t *testing.T, c domain.Config, verifier fakeVerifier) *fixture {
	t.Helper()
	db, err := storage.OpenBadger(storage.Config{InMemory: true})
	require.NoError(t, err)
	kv := storage.NewBadgerKV(db)
	t.Cleanup(func() {
		_ = kv.Close()
	})
	roles, err := auth.NewRoles()
	require.NoError(t, err)

	f := &fixture{
		hostnames: newFakeHostnames(),
		plans:     &fakePlans{plans: map[uuid.UUID]consts.Plan{}},
		records:   &fakeRecords{},
		mappings:  storage.NewMappingStore(kv.Namespace(storage.NamespaceMappings)),
	}
	f.add = domain.NewAddDomain(c, uowFactory, roles, f.plans, nil, f.mappings, f.hostnames)
	f.verify = domain.NewVerifyDomain(c, uowFactory, roles, f.mappings, f.hostnames, verifier)
	f.remove = domain.NewRemoveDomain(c, uowFactory, roles, f.mappings, f.records, domain.NewTeardown(f.hostnames, f.mappings))
	return f
}

// seedSite commits a site for a paid organization and returns the caller acting for it.
func (f *fixture) seedSite(t *testing.T, orgID uuid.UUID, plan consts.Plan) (*entity.Site, *auth.Identity) {
	t.Helper()
	ctx := context.Background()
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	sub := "s-" + uuid.NewString()[:12]
	site, err := repo.NewSiteRepo(tx).UpsertSite(ctx, entity.Site{
		OrganizationID: orgID,
		Domain:         sub + ".orbiter.website",
		CID:            "bafy-" + sub,
		Source:         "ipfs",
	})
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	require.NoError(t, f.plans.SetPlan(ctx, orgID, plan))
	return site, &auth.Identity{UserID: uuid.New(), OrganizationID: orgID, Role: consts.RoleAdmin, Source: auth.SourceToken}
}

func loadSite(t *testing.T, siteID uuid.UUID) *entity.Site {
	t.Helper()
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()
	site, err := repo.NewSiteRepo(tx).GetSiteByID(context.Background(), siteID)
	require.NoError(t, err)
	return site
}

func (f *fixture) setFlags(t *testing.T, siteID uuid.UUID, verified, sslIssued bool) {
	t.Helper()
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.NewSiteRepo(tx).SetDomainVerification(context.Background(), siteID, verified, sslIssued))
	require.NoError(t, uow.Commit())
}

func newDomain() string {
	return "www." + uuid.NewString()[:8] + "-example.com"
}

func req(d string) dto.CustomDomainRequest {
	return dto.CustomDomainRequest{CustomDomain: d}
}

func TestNormalizeDomain(t *testing.T) {
	got, err := domain.NormalizeDomain("  WWW.Example.COM. ", "orbiter.website")
	require.NoError(t, err)
	require.Equal(t, "www.example.com", got)

	for _, raw := range []string{"", "not a domain", "orbiter.website", "shop.orbiter.website", "-bad-.com"} {
		_, err := domain.NormalizeDomain(raw, "orbiter.website")
		require.ErrorAs(t, err, &errs.ValidationError{}, raw)
	}
}

func TestAddDomainIsIdempotent(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()

	first, err := f.add.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)
	require.Equal(t, &entity.DNSInstructions{RecordType: consts.RecordTypeCNAME, RecordHost: d, RecordValue: "orbiter.website"}, first)

	second, err := f.add.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, f.hostnames.createdCount())

	mapping, err := f.mappings.Get(ctx, d)
	require.NoError(t, err)
	require.True(t, mapping.Complete())
	require.Equal(t, site.ID, mapping.SiteID)
	require.Equal(t, consts.ProvisioningCloudflareSaaS, mapping.Type)

	stored := loadSite(t, site.ID)
	require.Equal(t, d, stored.CustomDomainValue())
	require.Equal(t, consts.StateRequested, entity.DomainState(stored))
}

func TestAddDomainReturnsARecordWhenConfigured(t *testing.T) {
	c := cfg
	c.TargetType = consts.RecordTypeA
	c.ProxyIP = "192.0.2.10"
	f := newFixture(t, c, fakeVerifier{})
	site, identity := f.seedSite(t, uuid.New(), consts.PlanOrbit)
	d := newDomain()

	got, err := f.add.Execute(context.Background(), site.ID, req(d), identity)
	require.NoError(t, err)
	require.Equal(t, consts.RecordTypeA, got.RecordType)
	require.Equal(t, "192.0.2.10", got.RecordValue)
}

func TestAddDomainRejectsFreePlan(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	site, identity := f.seedSite(t, uuid.New(), consts.PlanFree)

	_, err := f.add.Execute(context.Background(), site.ID, req(newDomain()), identity)
	require.ErrorAs(t, err, &errs.EntitlementError{})
	require.Zero(t, f.hostnames.createdCount())
}

func TestAddDomainRejectsForeignSite(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	site, _ := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	_, stranger := f.seedSite(t, uuid.New(), consts.PlanLaunch)

	_, err := f.add.Execute(context.Background(), site.ID, req(newDomain()), stranger)
	require.ErrorAs(t, err, &errs.PermissionsError{})
}

func TestAddDomainRejectsMembers(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	identity.Role = consts.RoleMember

	_, err := f.add.Execute(context.Background(), site.ID, req(newDomain()), identity)
	require.ErrorAs(t, err, &errs.PermissionsError{})
}

func TestAddDomainConflictsAcrossOrganizations(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	owner, ownerID := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	other, otherID := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()

	_, err := f.add.Execute(ctx, owner.ID, req(d), ownerID)
	require.NoError(t, err)

	_, err = f.add.Execute(ctx, other.ID, req(d), otherID)
	require.ErrorAs(t, err, &errs.ConflictError{})
	require.ErrorIs(t, err, errs.ErrDomainConflict)
	require.Equal(t, 1, f.hostnames.createdCount())
	require.False(t, loadSite(t, other.ID).HasCustomDomain())
}

func TestAddDomainOutlivesCallerCancellation(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()
	f.hostnames.entered = make(chan struct{}, 1)
	f.hostnames.gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.add.Execute(ctx, site.ID, req(d), identity)
		done <- err
	}()
	<-f.hostnames.entered
	cancel()
	close(f.hostnames.gate)
	require.NoError(t, <-done)

	mapping, err := f.mappings.Get(context.Background(), d)
	require.NoError(t, err)
	require.NotEmpty(t, mapping.HostnameID)
	require.NotEmpty(t, mapping.WorkerRouteID)
}

func TestAddDomainConflictsWithForeignMapping(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()
	require.NoError(t, f.mappings.Create(ctx, &entity.DomainMapping{Domain: d, SiteID: uuid.New(), OrganizationID: uuid.New()}))

	_, err := f.add.Execute(ctx, site.ID, req(d), identity)
	require.ErrorAs(t, err, &errs.ConflictError{})
	require.Zero(t, f.hostnames.createdCount())
}

func TestAddDomainRejectsSecondDomain(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)

	_, err := f.add.Execute(ctx, site.ID, req(newDomain()), identity)
	require.NoError(t, err)
	_, err = f.add.Execute(ctx, site.ID, req(newDomain()), identity)
	require.ErrorAs(t, err, &errs.ValidationError{})
}

func TestAddDomainResumesIncompleteMapping(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()

	f.hostnames.failRoute = errors.New("route api down")
	_, err := f.add.Execute(ctx, site.ID, req(d), identity)
	require.Error(t, err)

	mapping, err := f.mappings.Get(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, mapping.HostnameID)
	require.Empty(t, mapping.WorkerRouteID)

	f.hostnames.failRoute = nil
	_, err = f.add.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)

	mapping, err = f.mappings.Get(ctx, d)
	require.NoError(t, err)
	require.True(t, mapping.Complete())
	require.Equal(t, 1, f.hostnames.createdCount())
	require.Equal(t, d, loadSite(t, site.ID).CustomDomainValue())
}

func TestConcurrentAddCreatesOneHostname(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.add.Execute(context.Background(), site.ID, req(d), identity)
		}(i)
	}
	wg.Wait()

	for _, err := range results {
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.hostnames.createdCount())
}

func TestVerifyDomainWalksToActive(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()
	_, err := f.add.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)

	got, err := f.verify.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)
	require.Equal(t, &entity.Verification{SSLIssued: true}, got)
	require.Equal(t, consts.StateRequested, entity.DomainState(loadSite(t, site.ID)))

	mapping, err := f.mappings.Get(ctx, d)
	require.NoError(t, err)
	f.hostnames.setSSL(mapping.HostnameID, consts.SSLStatusActive)

	got, err = f.verify.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)
	require.True(t, got.Verified)
	require.True(t, got.IsVerified)
	require.True(t, got.SSLIssued)
	require.Equal(t, consts.StateActive, entity.DomainState(loadSite(t, site.ID)))

	mapping, err = f.mappings.Get(ctx, d)
	require.NoError(t, err)
	require.Equal(t, consts.SSLStatusActive, mapping.SSLStatus)
	require.NotNil(t, mapping.LastChecked)

	// Active domains answer without polling the provider again.
	f.hostnames.setSSL(mapping.HostnameID, consts.SSLStatusFailed)
	got, err = f.verify.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)
	require.True(t, got.Verified)
}

func TestVerifyDomainReportsFailedValidation(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()
	_, err := f.add.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)

	mapping, err := f.mappings.Get(ctx, d)
	require.NoError(t, err)
	f.hostnames.setSSL(mapping.HostnameID, consts.SSLStatusFailed, "CAA record blocks issuance")

	_, err = f.verify.Execute(ctx, site.ID, req(d), identity)
	var sslErr errs.SSLValidationError
	require.ErrorAs(t, err, &sslErr)
	require.Equal(t, []string{"CAA record blocks issuance"}, sslErr.Details)

	mapping, err = f.mappings.Get(ctx, d)
	require.NoError(t, err)
	require.Equal(t, consts.SSLStatusFailed, mapping.SSLStatus)
	require.Equal(t, consts.StateRequested, entity.DomainState(loadSite(t, site.ID)))
}

func TestVerifyDomainRequiresMatchingDomain(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)

	_, err := f.verify.Execute(context.Background(), site.ID, req(newDomain()), identity)
	require.ErrorAs(t, err, &errs.ValidationError{})
}

func TestVerifyDomainWithoutMappingIsStateError(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()
	_, err := f.add.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)
	require.NoError(t, f.mappings.Delete(ctx, d))

	_, err = f.verify.Execute(ctx, site.ID, req(d), identity)
	require.ErrorAs(t, err, &errs.StateError{})
}

func TestVerifyDomainRecheckDemotes(t *testing.T) {
	t.Run("hostname", func(t *testing.T) {
		c := cfg
		c.Recheck = consts.RecheckHostname
		f := newFixture(t, c, fakeVerifier{})
		ctx := context.Background()
		site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
		d := newDomain()
		_, err := f.add.Execute(ctx, site.ID, req(d), identity)
		require.NoError(t, err)
		mapping, err := f.mappings.Get(ctx, d)
		require.NoError(t, err)
		f.hostnames.setSSL(mapping.HostnameID, consts.SSLStatusActive)
		_, err = f.verify.Execute(ctx, site.ID, req(d), identity)
		require.NoError(t, err)

		f.hostnames.setSSL(mapping.HostnameID, consts.SSLStatusPendingDeployment)
		got, err := f.verify.Execute(ctx, site.ID, req(d), identity)
		require.NoError(t, err)
		require.False(t, got.Verified)
		require.True(t, got.IsVerified)
		require.False(t, got.SSLIssued)
		require.Equal(t, consts.StateOwnershipVerified, entity.DomainState(loadSite(t, site.ID)))
	})

	t.Run("dns", func(t *testing.T) {
		c := cfg
		c.Recheck = consts.RecheckDNS
		f := newFixture(t, c, fakeVerifier{owned: false})
		ctx := context.Background()
		site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
		d := newDomain()
		_, err := f.add.Execute(ctx, site.ID, req(d), identity)
		require.NoError(t, err)
		mapping, err := f.mappings.Get(ctx, d)
		require.NoError(t, err)
		f.hostnames.setSSL(mapping.HostnameID, consts.SSLStatusActive)
		_, err = f.verify.Execute(ctx, site.ID, req(d), identity)
		require.NoError(t, err)

		got, err := f.verify.Execute(ctx, site.ID, req(d), identity)
		require.NoError(t, err)
		require.False(t, got.Verified)
		require.False(t, got.IsVerified)
		require.True(t, got.SSLIssued)
		stored := loadSite(t, site.ID)
		require.False(t, stored.DomainOwnershipVerified)
		require.True(t, stored.SSLIssued)

		// the certificate is still active but the domain does not point back yet
		got, err = f.verify.Execute(ctx, site.ID, req(d), identity)
		require.NoError(t, err)
		require.False(t, got.IsVerified)
		require.True(t, got.SSLIssued)
		require.False(t, loadSite(t, site.ID).DomainOwnershipVerified)
	})

	t.Run("dns recovers", func(t *testing.T) {
		c := cfg
		c.Recheck = consts.RecheckDNS
		f := newFixture(t, c, fakeVerifier{owned: true})
		ctx := context.Background()
		site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
		d := newDomain()
		_, err := f.add.Execute(ctx, site.ID, req(d), identity)
		require.NoError(t, err)
		mapping, err := f.mappings.Get(ctx, d)
		require.NoError(t, err)
		f.hostnames.setSSL(mapping.HostnameID, consts.SSLStatusActive)
		f.setFlags(t, site.ID, false, true)

		got, err := f.verify.Execute(ctx, site.ID, req(d), identity)
		require.NoError(t, err)
		require.True(t, got.IsVerified)
		require.Equal(t, consts.StateActive, entity.DomainState(loadSite(t, site.ID)))
	})
}

func TestRemoveDomainTwice(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	site, identity := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()
	_, err := f.add.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)

	require.NoError(t, f.remove.Execute(ctx, site.ID, req(d), identity))
	require.NoError(t, f.remove.Execute(ctx, site.ID, req(d), identity))

	mapping, err := f.mappings.Get(ctx, d)
	require.NoError(t, err)
	require.Nil(t, mapping)
	require.Empty(t, f.hostnames.hostnames)
	require.Empty(t, f.hostnames.routes)
	require.Equal(t, consts.StateNoCustomDomain, entity.DomainState(loadSite(t, site.ID)))
	require.Contains(t, f.records.purged, d)

	// The domain is free again.
	_, err = f.add.Execute(ctx, site.ID, req(d), identity)
	require.NoError(t, err)
}

func TestRemoveDomainRejectsOtherOrganizations(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	owner, ownerID := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	other, otherID := f.seedSite(t, uuid.New(), consts.PlanLaunch)
	d := newDomain()
	_, err := f.add.Execute(ctx, owner.ID, req(d), ownerID)
	require.NoError(t, err)

	err = f.remove.Execute(ctx, other.ID, req(d), otherID)
	require.ErrorAs(t, err, &errs.ValidationError{})
	require.Equal(t, d, loadSite(t, owner.ID).CustomDomainValue())
	require.Equal(t, 1, len(f.hostnames.hostnames))
}

func TestTeardownKeepsMappingWhenProviderFails(t *testing.T) {
	f := newFixture(t, cfg, fakeVerifier{})
	ctx := context.Background()
	d := newDomain()
	mapping := &entity.DomainMapping{Domain: d, HostnameID: "ch-missing", WorkerRouteID: "wr-missing"}
	require.NoError(t, f.mappings.Create(ctx, mapping))

	failing := &failingHostnames{fakeHostnames: f.hostnames}
	report := domain.NewTeardown(failing, f.mappings).Run(ctx, mapping, false)
	require.Len(t, report.Failures, 1)
	require.Error(t, report.Err())

	kept, err := f.mappings.Get(ctx, d)
	require.NoError(t, err)
	require.NotNil(t, kept)

	report = domain.NewTeardown(failing, f.mappings).Run(ctx, mapping, true)
	require.Len(t, report.Failures, 1)
	gone, err := f.mappings.Get(ctx, d)
	require.NoError(t, err)
	require.Nil(t, gone)
}

type failingHostnames struct {
	*fakeHostnames
}

func (f *failingHostnames) DeleteCustomHostname(context.Context, string) error {
	return errors.New("provider unavailable")
}
