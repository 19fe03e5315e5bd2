package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

func TestCreateCampaignRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("milestones do not sum to goal", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.engine.CreateCampaign(ctx, createInput("c1", "5.0", "1.0", "3.0"))
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("deadline not in the future", func(t *testing.T) {
		f := newFixture(t, Options{})
		in := createInput("c1", "5.0", "5.0")
		in.Deadline = t0
		_, err := f.engine.CreateCampaign(ctx, in)
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("creator without kyc", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.identity.EXPECT().IsKYCVerified(mock.Anything, creator).Return(false, nil).Once()
		_, err := f.engine.CreateCampaign(ctx, createInput("c1", "5.0", "5.0"))
		require.ErrorIs(t, err, domain.ErrAuthorization)
	})

	t.Run("identity service down", func(t *testing.T) {
		f := newFixture(t, Options{})
		boom := errors.New("identity unavailable")
		f.identity.EXPECT().IsKYCVerified(mock.Anything, creator).Return(false, boom).Once()
		_, err := f.engine.CreateCampaign(ctx, createInput("c1", "5.0", "5.0"))
		require.ErrorIs(t, err, boom)
		require.Equal(t, domain.Kind(""), domain.KindOf(err))
	})

	t.Run("duplicate id", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.identity.EXPECT().IsKYCVerified(mock.Anything, creator).Return(true, nil).Twice()
		_, err := f.engine.CreateCampaign(ctx, createInput("c1", "5.0", "5.0"))
		require.NoError(t, err)
		_, err = f.engine.CreateCampaign(ctx, createInput("c1", "5.0", "5.0"))
		require.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestUpdateCampaign(t *testing.T) {
	ctx := context.Background()

	t.Run("creator edits text fields", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.seed(t, createInput("c1", "5.0", "5.0"), nil)

		c, err := f.engine.UpdateCampaign(ctx, "c1", creator, map[string]any{
			"title":     "  Hip surgery ",
			"documents": []any{"sha256:1", "sha256:2"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Hip surgery", c.Title)
		assert.Equal(t, []string{"sha256:1", "sha256:2"}, c.Documents)
	})

	t.Run("field outside allow-list", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.seed(t, createInput("c1", "5.0", "5.0"), nil)
		_, err := f.engine.UpdateCampaign(ctx, "c1", creator, map[string]any{"goalAmount": "9"})
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("campaign with contributors", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.seed(t, createInput("c1", "5.0", "5.0"), func(c *domain.Campaign) { c.ContributorsCount = 1 })
		_, err := f.engine.UpdateCampaign(ctx, "c1", creator, map[string]any{"title": "x"})
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("campaign no longer pending", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.seed(t, createInput("c1", "5.0", "5.0"), active)
		_, err := f.engine.UpdateCampaign(ctx, "c1", creator, map[string]any{"title": "x"})
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("stranger cannot edit", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.seed(t, createInput("c1", "5.0", "5.0"), nil)
		_, err := f.engine.UpdateCampaign(ctx, "c1", alice, map[string]any{"title": "x"})
		require.ErrorIs(t, err, domain.ErrAuthorization)
	})

	t.Run("admin approves through isApproved", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.seed(t, createInput("c1", "5.0", "5.0"), nil)
		f.access.EXPECT().IsAdmin(mock.Anything, admin).Return(true, nil).Once()

		c, err := f.engine.UpdateCampaign(ctx, "c1", admin, map[string]any{"isApproved": true})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, c.Status)
		assert.True(t, c.IsApproved)
	})

	t.Run("status change needs admin", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.seed(t, createInput("c1", "5.0", "5.0"), nil)
		f.access.EXPECT().IsAdmin(mock.Anything, creator).Return(false, nil).Once()
		_, err := f.engine.UpdateCampaign(ctx, "c1", creator, map[string]any{"status": "ACTIVE"})
		require.ErrorIs(t, err, domain.ErrAuthorization)
	})

	t.Run("status outside the state machine", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.seed(t, createInput("c1", "5.0", "5.0"), nil)
		f.access.EXPECT().IsAdmin(mock.Anything, admin).Return(true, nil).Once()
		_, err := f.engine.UpdateCampaign(ctx, "c1", admin, map[string]any{"status": "SUCCESSFUL"})
		require.ErrorIs(t, err, domain.ErrState)

		c, err := f.engine.GetCampaign(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingApproval, c.Status)
	})
}

func TestCancelCampaign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.seed(t, createInput("c1", "5.0", "5.0"), nil)
	f.seed(t, createInput("c2", "5.0", "5.0"), func(c *domain.Campaign) { c.ContributorsCount = 2 })

	_, err := f.engine.CancelCampaign(ctx, "c1", alice)
	require.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = f.engine.CancelCampaign(ctx, "c2", creator)
	require.ErrorIs(t, err, domain.ErrConflict)

	c, err := f.engine.CancelCampaign(ctx, "c1", creator)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, c.Status)

	c, err = f.engine.CancelCampaign(ctx, "c1", creator)
	require.NoError(t, err, "cancelling twice is a no-op")
	assert.Equal(t, domain.StatusCancelled, c.Status)

	_, err = f.engine.CancelCampaign(ctx, "missing", creator)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvaluateGoalReached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.seed(t, createInput("c1", "2.0", "2.0"), func(c *domain.Campaign) {
		active(c)
		c.RaisedAmount = amount("2.5")
	})
	f.seed(t, createInput("c2", "2.0", "2.0"), active)

	c, err := f.engine.EvaluateGoalReached(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccessful, c.Status)
	version := c.Version

	c, err = f.engine.EvaluateGoalReached(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccessful, c.Status)
	assert.Equal(t, version, c.Version, "second evaluation must not write")

	c, err = f.engine.EvaluateGoalReached(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, c.Status)
}

func TestFinalizeCampaign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.seed(t, createInput("funded", "2.0", "2.0"), func(c *domain.Campaign) {
		active(c)
		c.RaisedAmount = amount("2.0")
	})
	f.seed(t, createInput("short", "2.0", "2.0"), active)
	f.seed(t, createInput("pending", "2.0", "2.0"), nil)

	_, err := f.engine.FinalizeCampaign(ctx, "short")
	require.ErrorIs(t, err, domain.ErrState, "deadline has not passed")

	f.clock.Advance(31 * 24 * time.Hour)

	c, err := f.engine.FinalizeCampaign(ctx, "funded")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccessful, c.Status)

	c, err = f.engine.FinalizeCampaign(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, c.Status)

	c, err = f.engine.FinalizeCampaign(ctx, "short")
	require.NoError(t, err, "terminal campaigns are returned unchanged")
	assert.Equal(t, domain.StatusFailed, c.Status)

	_, err = f.engine.FinalizeCampaign(ctx, "pending")
	require.ErrorIs(t, err, domain.ErrState)
}

func TestSweepDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.seed(t, createInput("a", "2.0", "2.0"), active)
	f.seed(t, createInput("b", "2.0", "2.0"), func(c *domain.Campaign) {
		active(c)
		c.RaisedAmount = amount("3.0")
	})
	late := createInput("c", "2.0", "2.0")
	late.Deadline = t0.Add(90 * 24 * time.Hour)
	f.seed(t, late, active)

	n, err := f.engine.SweepDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(31 * 24 * time.Hour)
	n, err = f.engine.SweepDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.engine.SweepDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	page, err := f.engine.ListCampaigns(ctx, domain.CampaignFilter{Status: domain.StatusActive})
	require.NoError(t, err)
	require.Len(t, page.Campaigns, 1)
	assert.Equal(t, "c", page.Campaigns[0].ID)
}

func TestQueriesAndAnalytics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.seed(t, createInput("a", "2.0", "2.0"), active)
	f.clock.Advance(time.Minute)
	f.seed(t, createInput("b", "4.0", "4.0"), nil)

	_, err := f.engine.Contribute(ctx, port.ContributeInput{CampaignID: "a", Contributor: alice, Amount: amount("0.5"), ExternalTxRef: "tx-1"})
	require.NoError(t, err)

	created, err := f.engine.GetUserCreatedCampaigns(ctx, "0xcreator")
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "b", created[0].ID, "newest first")

	stats, err := f.engine.GetStatsOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCampaigns)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusActive])
	assert.True(t, stats.TotalRaised.Equal(amount("0.5")))

	_, err = f.engine.ListCampaigns(ctx, domain.CampaignFilter{Sort: "popularity"})
	require.ErrorIs(t, err, domain.ErrValidation)

	an, err := f.engine.RecordView(ctx, "b")
	require.NoError(t, err)
	assert.EqualValues(t, 1, an.ViewCount)
	an, err = f.engine.RecordShare(ctx, "b")
	require.NoError(t, err)
	assert.EqualValues(t, 1, an.ViewCount)
	assert.EqualValues(t, 1, an.ShareCount)
}
