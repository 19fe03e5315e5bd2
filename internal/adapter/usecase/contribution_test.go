package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

func TestContributeRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.seed(t, createInput("active", "5.0", "5.0"), active)
	f.seed(t, createInput("pending", "5.0", "5.0"), nil)

	cases := []struct {
		name  string
		input port.ContributeInput
		want  error
	}{
		{"zero amount", port.ContributeInput{CampaignID: "active", Contributor: alice, Amount: amount("0"), ExternalTxRef: "tx"}, domain.ErrValidation},
		{"negative amount", port.ContributeInput{CampaignID: "active", Contributor: alice, Amount: amount("-1"), ExternalTxRef: "tx"}, domain.ErrValidation},
		{"missing tx ref", port.ContributeInput{CampaignID: "active", Contributor: alice, Amount: amount("1")}, domain.ErrValidation},
		{"pending campaign", port.ContributeInput{CampaignID: "pending", Contributor: alice, Amount: amount("1"), ExternalTxRef: "tx"}, domain.ErrState},
		{"unknown campaign", port.ContributeInput{CampaignID: "nope", Contributor: alice, Amount: amount("1"), ExternalTxRef: "tx"}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Contribute(ctx, tc.input)
			require.ErrorIs(t, err, tc.want)
		})
	}

	c, err := f.engine.GetCampaign(ctx, "active")
	require.NoError(t, err)
	assert.Empty(t, c.Contributors, "rejected contributions leave no trace")
}

func TestContributeAfterDeadline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.seed(t, createInput("c1", "5.0", "5.0"), active)

	f.clock.Advance(30 * 24 * time.Hour)
	_, err := f.engine.Contribute(ctx, port.ContributeInput{CampaignID: "c1", Contributor: alice, Amount: amount("1"), ExternalTxRef: "tx"})
	require.ErrorIs(t, err, domain.ErrState)
}

func TestContributeAccounting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.seed(t, createInput("c1", "10.0", "10.0"), active)

	for i, in := range []port.ContributeInput{
		{Contributor: alice, Amount: amount("1.0")},
		{Contributor: "0xALICE", Amount: amount("2.0")},
		{Contributor: bob, Amount: amount("3.0")},
	} {
		in.CampaignID = "c1"
		in.ExternalTxRef = fmt.Sprintf("tx-%d", i)
		_, err := f.engine.Contribute(ctx, in)
		require.NoError(t, err)
	}

	c, err := f.engine.GetCampaign(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.ContributorsCount, "addresses compare case-insensitively")
	assert.Len(t, c.Contributors, 3)
	assert.True(t, c.RaisedAmount.Equal(amount("6.0")))
	assert.True(t, c.Analytics.AverageContribution.Equal(amount("2")), "average divides by event count")

	_, err = f.engine.Contribute(ctx, port.ContributeInput{CampaignID: "c1", Contributor: bob, Amount: amount("1"), ExternalTxRef: "tx-2"})
	require.ErrorIs(t, err, domain.ErrConflict)

	total, err := f.engine.GetContributorTotal(ctx, "c1", alice)
	require.NoError(t, err)
	assert.True(t, total.Equal(amount("3.0")))

	history, err := f.engine.GetContributionHistory(ctx, "c1", alice)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "tx-0", history[0].ExternalTxRef)

	history, err = f.engine.GetContributionHistory(ctx, "c1", "0xNobody")
	require.NoError(t, err)
	assert.Empty(t, history)

	mine, err := f.engine.GetUserContributions(ctx, bob)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "c1", mine[0].CampaignID)
	assert.True(t, mine[0].Total.Equal(amount("3.0")))
}

// Concurrent contributions that each cross the goal are all recorded and the
// campaign becomes SUCCESSFUL exactly once.
func TestConcurrentContributionsCrossGoalOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.seed(t, createInput("c1", "5.0", "5.0"), active)

	const n = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := f.engine.Contribute(ctx, port.ContributeInput{
				CampaignID:    "c1",
				Contributor:   fmt.Sprintf("0x%02d", i),
				Amount:        amount("0.5"),
				ExternalTxRef: fmt.Sprintf("tx-%d", i),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			if assert.ErrorIs(t, err, domain.ErrState) {
				rejected++
			}
		}(i)
	}
	wg.Wait()

	c, err := f.engine.GetCampaign(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccessful, c.Status)
	assert.Equal(t, 10, accepted, "contributions stop once the campaign leaves ACTIVE")
	assert.Equal(t, n-10, rejected)
	assert.Len(t, c.Contributors, accepted)
	assert.True(t, c.RaisedAmount.Equal(amount("5.0")))
	assert.Equal(t, accepted, c.ContributorsCount)
}
