package repo_test

import (
	"context"
	"os"
	"testing"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/events"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
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

func newSite(orgID uuid.UUID, sub string) entity.Site {
	return entity.Site{
		OrganizationID: orgID,
		Domain:         sub + ".orbiter.website",
		CID:            "bafy-" + sub,
		Source:         "ipfs",
	}
}

func TestUpsertSiteInsertsThenUpdatesContent(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()
	ctx := context.Background()
	sites := repo.NewSiteRepo(tx)

	created, err := sites.UpsertSite(ctx, newSite(uuid.New(), "upsert"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Nil(t, created.CustomDomain)

	created.CID = "bafy-next"
	updated, err := sites.UpsertSite(ctx, *created)
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "bafy-next", updated.CID)
}

func TestUpsertSiteRejectsTakenSubdomain(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()
	ctx := context.Background()
	sites := repo.NewSiteRepo(tx)

	_, err = sites.UpsertSite(ctx, newSite(uuid.New(), "taken"))
	require.NoError(t, err)

	_, err = sites.UpsertSite(ctx, newSite(uuid.New(), "taken"))
	require.ErrorAs(t, err, &errs.ValidationError{})
}

func TestCustomDomainLifecycle(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()
	ctx := context.Background()
	sites := repo.NewSiteRepo(tx)
	orgID := uuid.New()

	site, err := sites.UpsertSite(ctx, newSite(orgID, "lifecycle"))
	require.NoError(t, err)

	require.NoError(t, sites.SetCustomDomain(ctx, site.ID, "shop.example.com"))
	owners, err := sites.GetSitesByCustomDomain(ctx, "shop.example.com")
	require.NoError(t, err)
	require.Len(t, owners, 1)
	require.Equal(t, site.ID, owners[0].ID)
	require.Equal(t, orgID, owners[0].OrganizationID)

	require.NoError(t, sites.SetDomainVerification(ctx, site.ID, true, true))
	got, err := sites.GetSiteByID(ctx, site.ID)
	require.NoError(t, err)
	require.True(t, got.DomainOwnershipVerified)
	require.True(t, got.SSLIssued)

	require.NoError(t, sites.ClearCustomDomain(ctx, site.ID))
	got, err = sites.GetSiteByID(ctx, site.ID)
	require.NoError(t, err)
	require.Nil(t, got.CustomDomain)
	require.False(t, got.DomainOwnershipVerified)
	require.False(t, got.SSLIssued)
}

func TestSetCustomDomainTakenByAnotherSite(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()
	ctx := context.Background()
	sites := repo.NewSiteRepo(tx)

	first, err := sites.UpsertSite(ctx, newSite(uuid.New(), "first-owner"))
	require.NoError(t, err)
	second, err := sites.UpsertSite(ctx, newSite(uuid.New(), "second-owner"))
	require.NoError(t, err)

	require.NoError(t, sites.SetCustomDomain(ctx, first.ID, "contested.example.com"))
	err = sites.SetCustomDomain(ctx, second.ID, "contested.example.com")
	require.ErrorIs(t, err, errs.ErrDomainConflict)
}

func TestGetSiteByIDMissing(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	_, err = repo.NewSiteRepo(tx).GetSiteByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, errs.ErrSiteNotFound)
}

func TestCountAndDeleteSites(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()
	ctx := context.Background()
	sites := repo.NewSiteRepo(tx)
	orgID := uuid.New()

	a, err := sites.UpsertSite(ctx, newSite(orgID, "count-a"))
	require.NoError(t, err)
	_, err = sites.UpsertSite(ctx, newSite(orgID, "count-b"))
	require.NoError(t, err)

	count, err := sites.CountSitesForOrganization(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, sites.DeleteSite(ctx, a.ID))
	count, err = sites.CountSitesForOrganization(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	bySub, err := sites.GetSiteByDomain(ctx, "count-b.orbiter.website")
	require.NoError(t, err)
	require.Equal(t, orgID, bySub.OrganizationID)
}

func TestInsertEventWritesOutboxRow(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()
	ctx := context.Background()

	event := events.CleanupStepFailed{SiteID: uuid.New(), Step: "delete_platform_record", Target: "gone"}
	require.NoError(t, repo.NewEventRepo(tx).InsertEvent(ctx, event))

	var count int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM orbiter.outbox WHERE event = $1 AND payload->>'target' = $2 AND attempts = 0`,
		event.GetType(), "gone").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMembershipAndKeys(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()
	ctx := context.Background()
	orgID, userID := uuid.New(), uuid.New()
	hash := "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"

	_, err = tx.Exec(ctx, "INSERT INTO orbiter.organizations(id, name) VALUES ($1, 'acme')", orgID)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "INSERT INTO orbiter.members(user_id, organization_id, role) VALUES ($1, $2, 'ADMIN')", userID, orgID)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "INSERT INTO orbiter.keys(key_hash, organization_id, created_by) VALUES ($1, $2, $3)", hash, orgID, userID)
	require.NoError(t, err)

	member, err := repo.NewMemberRepo(tx).GetMembership(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, orgID, member.OrganizationID)
	require.Equal(t, "ADMIN", member.Role)

	key, err := repo.NewKeyRepo(tx).GetKeyByHash(ctx, hash)
	require.NoError(t, err)
	require.Equal(t, orgID, key.OrganizationID)

	_, err = repo.NewKeyRepo(tx).GetKeyByHash(ctx, "missing")
	require.ErrorAs(t, err, &errs.PermissionsError{})

	orgs := repo.NewOrganizationRepo(tx)
	require.NoError(t, orgs.SetStripeCustomer(ctx, orgID, "cus_123"))
	customer, err := orgs.GetStripeCustomer(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, "cus_123", customer)
	found, err := orgs.GetOrganizationByStripeCustomer(ctx, "cus_123")
	require.NoError(t, err)
	require.Equal(t, orgID, found)
}
