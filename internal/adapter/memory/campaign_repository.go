package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

// CampaignRepository implements port.CampaignRepository in process. Each
// campaign has its own writer lock, so updates to one campaign never wait on
// another. Readers load the last committed snapshot and never take a writer
// lock.
type CampaignRepository struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	write sync.Mutex
	snap  atomic.Pointer[domain.Campaign]
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{entries: make(map[string]*entry)}
}

func (r *CampaignRepository) Create(ctx context.Context, c domain.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[c.ID]; ok {
		return domain.Conflictf("campaign %s already exists", c.ID)
	}
	c = c.Clone()
	c.Version = 1
	e := &entry{}
	e.snap.Store(&c)
	r.entries[c.ID] = e
	return nil
}

func (r *CampaignRepository) lookup(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.NotFoundf("campaign %s not found", id)
	}
	return e, nil
}

func (r *CampaignRepository) Get(ctx context.Context, id string) (domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}
	e, err := r.lookup(id)
	if err != nil {
		return domain.Campaign{}, err
	}
	return e.snap.Load().Clone(), nil
}

// Update runs fn on a private copy and publishes it only when fn succeeds and
// the context is still live.
func (r *CampaignRepository) Update(ctx context.Context, id string, fn port.UpdateFunc) (domain.Campaign, error) {
	e, err := r.lookup(id)
	if err != nil {
		return domain.Campaign{}, err
	}
	e.write.Lock()
	defer e.write.Unlock()

	if err = ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}
	next := e.snap.Load().Clone()
	if err = fn(&next); err != nil {
		return domain.Campaign{}, err
	}
	if err = ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}
	next.Version++
	committed := next.Clone()
	e.snap.Store(&committed)
	return next, nil
}

// snapshots returns a copy of every committed campaign.
func (r *CampaignRepository) snapshots() []domain.Campaign {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Campaign, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.snap.Load().Clone())
	}
	return out
}

func (r *CampaignRepository) List(ctx context.Context, filter domain.CampaignFilter) (domain.CampaignPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.CampaignPage{}, err
	}
	var matched []domain.Campaign
	for _, c := range r.snapshots() {
		if filter.Match(&c) {
			matched = append(matched, c)
		}
	}
	domain.SortCampaigns(matched, filter.Sort, filter.Desc)

	page := domain.CampaignPage{Campaigns: []domain.Campaign{}, Total: len(matched), Page: filter.Page, Limit: filter.Limit}
	start := filter.Offset()
	if start < 0 || start >= len(matched) {
		return page, nil
	}
	end := min(start+filter.Limit, len(matched))
	page.Campaigns = matched[start:end]
	return page, nil
}

func (r *CampaignRepository) ListByCreator(ctx context.Context, address string) ([]domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []domain.Campaign{}
	for _, c := range r.snapshots() {
		if domain.SameAddress(c.Creator, address) {
			out = append(out, c)
		}
	}
	domain.SortCampaigns(out, domain.SortCreated, true)
	return out, nil
}

func (r *CampaignRepository) ListByContributor(ctx context.Context, address string) ([]domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []domain.Campaign{}
	for _, c := range r.snapshots() {
		if c.HasContributed(address) {
			out = append(out, c)
		}
	}
	domain.SortCampaigns(out, domain.SortCreated, true)
	return out, nil
}

func (r *CampaignRepository) ListDue(ctx context.Context, now time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []string
	for _, c := range r.snapshots() {
		if c.Status == domain.StatusActive && !c.Deadline.After(now) {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *CampaignRepository) Stats(ctx context.Context) (domain.StatsOverview, error) {
	if err := ctx.Err(); err != nil {
		return domain.StatsOverview{}, err
	}
	stats := domain.NewStatsOverview()
	for _, c := range r.snapshots() {
		stats.Add(&c)
	}
	return stats, nil
}
