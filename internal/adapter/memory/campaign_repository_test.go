package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medfund/internal/core/domain"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func campaign(id string, status domain.Status, created time.Time) domain.Campaign {
	return domain.Campaign{
		ID:           id,
		Creator:      "0xCreator",
		Status:       status,
		Category:     domain.CategoryOther,
		GoalAmount:   decimal.RequireFromString("10"),
		RaisedAmount: decimal.Zero,
		Deadline:     now.Add(time.Hour),
		CreatedAt:    created,
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()

	require.NoError(t, repo.Create(ctx, campaign("c1", domain.StatusActive, now)))
	err := repo.Create(ctx, campaign("c1", domain.StatusActive, now))
	require.ErrorIs(t, err, domain.ErrConflict)

	c, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Version)

	_, err = repo.Get(ctx, "c2")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()
	require.NoError(t, repo.Create(ctx, campaign("c1", domain.StatusActive, now)))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "c1", func(c *domain.Campaign) error {
		c.RaisedAmount = decimal.RequireFromString("5")
		c.Contributors = append(c.Contributors, domain.Contribution{Contributor: "a"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = repo.Update(cancelled, "c1", func(c *domain.Campaign) error {
		c.RaisedAmount = decimal.RequireFromString("5")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	c, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.RaisedAmount.IsZero())
	assert.Empty(t, c.Contributors)
	assert.Equal(t, int64(1), c.Version)
}

func TestGetReturnsPrivateCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()
	c := campaign("c1", domain.StatusActive, now)
	c.Documents = []string{"doc"}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	got.Documents[0] = "mutated"

	again, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "doc", again.Documents[0])
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()
	require.NoError(t, repo.Create(ctx, campaign("c1", domain.StatusActive, now)))

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "c1", func(c *domain.Campaign) error {
				c.RaisedAmount = c.RaisedAmount.Add(decimal.NewFromInt(1))
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	// readers never block on writers
	for i := 0; i < n; i++ {
		_, err := repo.Get(ctx, "c1")
		require.NoError(t, err)
	}
	wg.Wait()

	c, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.RaisedAmount.Equal(decimal.NewFromInt(n)))
	assert.Equal(t, int64(n+1), c.Version)
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()
	require.NoError(t, repo.Create(ctx, campaign("b", domain.StatusActive, now)))
	require.NoError(t, repo.Create(ctx, campaign("a", domain.StatusActive, now)))
	late := campaign("c", domain.StatusPendingApproval, now.Add(time.Minute))
	late.Creator = "0xOther"
	late.Contributors = []domain.Contribution{{Contributor: "0xFan", Amount: decimal.NewFromInt(1)}}
	require.NoError(t, repo.Create(ctx, late))

	page, err := repo.List(ctx, domain.CampaignFilter{Sort: domain.SortCreated, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Campaigns, 2)
	assert.Equal(t, "a", page.Campaigns[0].ID)
	assert.Equal(t, "b", page.Campaigns[1].ID)

	page, err = repo.List(ctx, domain.CampaignFilter{Sort: domain.SortCreated, Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Campaigns)
	assert.NotNil(t, page.Campaigns)

	// (page-1)*limit wraps to a negative offset
	page, err = repo.List(ctx, domain.CampaignFilter{Sort: domain.SortCreated, Page: 500000000000000000, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, page.Campaigns)

	mine, err := repo.ListByCreator(ctx, "0xcreator")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	backed, err := repo.ListByContributor(ctx, "0xfan")
	require.NoError(t, err)
	require.Len(t, backed, 1)
	assert.Equal(t, "c", backed[0].ID)

	due, err := repo.ListDue(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, due)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCampaigns)
	assert.Equal(t, 2, stats.ByStatus[domain.StatusActive])
	assert.Equal(t, 1, stats.TotalContributions)
}
