package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db"
	shared "github.com/Builder-Lawyers/orbiter-backend/pkg/interfaces"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const siteColumns = `id, organization_id, domain, custom_domain, domain_ownership_verified, ssl_issued,
	cid, site_contract, deployed_by, source, created_at, updated_at`

type SiteRepo struct {
	tx pgx.Tx
}

var _ interfaces.SiteRepo = (*SiteRepo)(nil)

func NewSiteRepo(tx pgx.Tx) *SiteRepo {
	return &SiteRepo{tx: tx}
}

func scanSite(row pgx.Row) (*entity.Site, error) {
	var site db.Site
	err := row.Scan(&site.ID, &site.OrganizationID, &site.Domain, &site.CustomDomain, &site.DomainOwnershipVerified,
		&site.SSLIssued, &site.CID, &site.SiteContract, &site.DeployedBy, &site.Source, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		return nil, err
	}
	mapped := db.MapSiteModelToEntity(site)
	return &mapped, nil
}

func (s *SiteRepo) GetSiteByID(ctx context.Context, siteID uuid.UUID) (*entity.Site, error) {
	site, err := scanSite(s.tx.QueryRow(ctx, "SELECT "+siteColumns+" FROM orbiter.sites WHERE id = $1", siteID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("site %v, %w", siteID, errs.ErrSiteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("err getting site %v, %w", siteID, err)
	}
	return site, nil
}

func (s *SiteRepo) GetSiteByDomain(ctx context.Context, domain string) (*entity.Site, error) {
	site, err := scanSite(s.tx.QueryRow(ctx, "SELECT "+siteColumns+" FROM orbiter.sites WHERE domain = $1", domain))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("site with domain %v, %w", domain, errs.ErrSiteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("err getting site by domain %v, %w", domain, err)
	}
	return site, nil
}

func (s *SiteRepo) GetSitesByCustomDomain(ctx context.Context, customDomain string) ([]entity.Site, error) {
	rows, err := s.tx.Query(ctx, "SELECT "+siteColumns+" FROM orbiter.sites WHERE custom_domain = $1", customDomain)
	if err != nil {
		return nil, fmt.Errorf("err getting owners of %v, %w", customDomain, err)
	}
	defer rows.Close()

	sites := make([]entity.Site, 0)
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *site)
	}
	return sites, rows.Err()
}

func (s *SiteRepo) CountSitesForOrganization(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	err := s.tx.QueryRow(ctx, "SELECT COUNT(*) FROM orbiter.sites WHERE organization_id = $1", orgID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("err counting sites, %w", err)
	}
	return count, nil
}

// UpsertSite inserts the site or refreshes its content pointer. Custom-domain
// columns are left alone on conflict.
func (s *SiteRepo) UpsertSite(ctx context.Context, site entity.Site) (*entity.Site, error) {
	now := time.Now()
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	if site.CreatedAt.IsZero() {
		site.CreatedAt = now
	}
	site.UpdatedAt = now

	query := `INSERT INTO orbiter.sites(id, organization_id, domain, cid, site_contract, deployed_by, source, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET cid = EXCLUDED.cid, site_contract = COALESCE(EXCLUDED.site_contract, orbiter.sites.site_contract),
			deployed_by = EXCLUDED.deployed_by, source = EXCLUDED.source, updated_at = EXCLUDED.updated_at
		RETURNING ` + siteColumns
	upserted, err := scanSite(s.tx.QueryRow(ctx, query, site.ID, site.OrganizationID, site.Domain, site.CID,
		site.SiteContract, site.DeployedBy, site.Source, site.CreatedAt, site.UpdatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, errs.NewValidationError("Subdomain already exists")
		}
		return nil, fmt.Errorf("err upserting site, %w", err)
	}
	return upserted, nil
}

func (s *SiteRepo) SetCustomDomain(ctx context.Context, siteID uuid.UUID, customDomain string) error {
	tag, err := s.tx.Exec(ctx, `UPDATE orbiter.sites SET custom_domain = $1, domain_ownership_verified = false,
		ssl_issued = false, updated_at = $2 WHERE id = $3`, customDomain, time.Now(), siteID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errs.ConflictError{Domain: customDomain}
		}
		return fmt.Errorf("err setting custom domain, %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("site %v, %w", siteID, errs.ErrSiteNotFound)
	}
	return nil
}

func (s *SiteRepo) SetDomainVerification(ctx context.Context, siteID uuid.UUID, verified, sslIssued bool) error {
	_, err := s.tx.Exec(ctx, `UPDATE orbiter.sites SET domain_ownership_verified = $1, ssl_issued = $2, updated_at = $3
		WHERE id = $4`, verified, sslIssued, time.Now(), siteID)
	if err != nil {
		return fmt.Errorf("err updating domain verification, %w", err)
	}
	return nil
}

func (s *SiteRepo) ClearCustomDomain(ctx context.Context, siteID uuid.UUID) error {
	_, err := s.tx.Exec(ctx, `UPDATE orbiter.sites SET custom_domain = NULL, domain_ownership_verified = false,
		ssl_issued = false, updated_at = $1 WHERE id = $2`, time.Now(), siteID)
	if err != nil {
		return fmt.Errorf("err clearing custom domain, %w", err)
	}
	return nil
}

func (s *SiteRepo) DeleteSite(ctx context.Context, siteID uuid.UUID) error {
	_, err := s.tx.Exec(ctx, "DELETE FROM orbiter.sites WHERE id = $1", siteID)
	if err != nil {
		return fmt.Errorf("err deleting site, %w", err)
	}
	return nil
}

type EventRepo struct {
	tx pgx.Tx
}

var _ interfaces.EventRepo = (*EventRepo)(nil)

func NewEventRepo(tx pgx.Tx) *EventRepo {
	return &EventRepo{tx: tx}
}

func (e *EventRepo) InsertEvent(ctx context.Context, event shared.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("err marshalling event payload, %v", err)
	}
	outbox := db.Outbox{
		Event:     event.GetType(),
		Status:    int(consts.NotProcessed),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	_, err = e.tx.Exec(ctx, "INSERT INTO orbiter.outbox (event, status, attempts, payload, created_at) VALUES ($1,$2,$3,$4,$5)",
		outbox.Event, outbox.Status, 0, outbox.Payload, outbox.CreatedAt)
	if err != nil {
		return fmt.Errorf("err inserting a new event, %v", err)
	}

	return nil
}

// MemberRepo resolves organization membership for authenticated users.
type MemberRepo struct {
	tx pgx.Tx
}

func NewMemberRepo(tx pgx.Tx) *MemberRepo {
	return &MemberRepo{tx: tx}
}

// GetMembership returns the first organization the user belongs to.
func (m *MemberRepo) GetMembership(ctx context.Context, userID uuid.UUID) (*db.Member, error) {
	var member db.Member
	err := m.tx.QueryRow(ctx, `SELECT user_id, organization_id, role FROM orbiter.members WHERE user_id = $1
		ORDER BY created_at LIMIT 1`, userID).Scan(&member.UserID, &member.OrganizationID, &member.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.PermissionsError{Err: fmt.Errorf("user %v is not a member of any organization", userID)}
	}
	if err != nil {
		return nil, fmt.Errorf("err getting membership, %w", err)
	}
	return &member, nil
}

type KeyRepo struct {
	tx pgx.Tx
}

func NewKeyRepo(tx pgx.Tx) *KeyRepo {
	return &KeyRepo{tx: tx}
}

func (k *KeyRepo) GetKeyByHash(ctx context.Context, hash string) (*db.Key, error) {
	var key db.Key
	err := k.tx.QueryRow(ctx, "SELECT key_hash, organization_id, created_by FROM orbiter.keys WHERE key_hash = $1", hash).
		Scan(&key.Hash, &key.OrganizationID, &key.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.PermissionsError{Err: fmt.Errorf("unknown api key")}
	}
	if err != nil {
		return nil, fmt.Errorf("err getting api key, %w", err)
	}
	return &key, nil
}

type OrganizationRepo struct {
	tx pgx.Tx
}

func NewOrganizationRepo(tx pgx.Tx) *OrganizationRepo {
	return &OrganizationRepo{tx: tx}
}

func (o *OrganizationRepo) SetStripeCustomer(ctx context.Context, orgID uuid.UUID, customerID string) error {
	_, err := o.tx.Exec(ctx, "UPDATE orbiter.organizations SET stripe_customer_id = $1, updated_at = $2 WHERE id = $3",
		customerID, time.Now(), orgID)
	if err != nil {
		return fmt.Errorf("err setting stripe customer, %w", err)
	}
	return nil
}

func (o *OrganizationRepo) GetStripeCustomer(ctx context.Context, orgID uuid.UUID) (string, error) {
	var customerID *string
	err := o.tx.QueryRow(ctx, "SELECT stripe_customer_id FROM orbiter.organizations WHERE id = $1", orgID).Scan(&customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("err getting stripe customer, %w", err)
	}
	if customerID == nil {
		return "", nil
	}
	return *customerID, nil
}

func (o *OrganizationRepo) GetOrganizationByStripeCustomer(ctx context.Context, customerID string) (uuid.UUID, error) {
	var orgID uuid.UUID
	err := o.tx.QueryRow(ctx, "SELECT id FROM orbiter.organizations WHERE stripe_customer_id = $1", customerID).Scan(&orgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("no organization for customer %s", customerID)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("err getting organization by customer, %w", err)
	}
	return orgID, nil
}
