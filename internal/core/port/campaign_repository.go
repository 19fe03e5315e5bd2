package port

import (
	"context"
	"time"

	"medfund/internal/core/domain"
)

// UpdateFunc mutates a campaign inside an atomic update. Returning an error
// aborts the update and leaves the stored campaign unchanged.
type UpdateFunc func(c *domain.Campaign) error

// CampaignRepository is the campaign store. It is an outbound port in
// hexagonal architecture. Every mutation of a campaign goes through Update,
// which implementations must serialise per campaign id; reads must not block
// writers and may return a slightly stale snapshot.
type CampaignRepository interface {
	// Create stores a new campaign. It returns domain.ErrConflict when the
	// id is already taken.
	Create(ctx context.Context, c domain.Campaign) error
	// Get returns a campaign snapshot or domain.ErrNotFound.
	Get(ctx context.Context, id string) (domain.Campaign, error)
	// Update applies fn to the current campaign under per-campaign mutual
	// exclusion and persists the result atomically, bumping Version.
	Update(ctx context.Context, id string, fn UpdateFunc) (domain.Campaign, error)
	// List returns one page of campaigns matching a normalized filter.
	List(ctx context.Context, filter domain.CampaignFilter) (domain.CampaignPage, error)
	// ListByCreator returns every campaign created by address, newest first.
	ListByCreator(ctx context.Context, address string) ([]domain.Campaign, error)
	// ListByContributor returns every campaign address contributed to.
	ListByContributor(ctx context.Context, address string) ([]domain.Campaign, error)
	// ListDue returns ids of ACTIVE campaigns whose deadline is not after now.
	ListDue(ctx context.Context, now time.Time) ([]string, error)
	// Stats returns platform-wide aggregates.
	Stats(ctx context.Context) (domain.StatsOverview, error)
}
