package domain

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(cs []Campaign) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestSortCampaignsTieBreak(t *testing.T) {
	d := decimal.RequireFromString
	cs := []Campaign{
		{ID: "c", CreatedAt: now, Deadline: now.Add(2 * time.Hour), GoalAmount: d("4"), RaisedAmount: d("1")},
		{ID: "a", CreatedAt: now, Deadline: now.Add(time.Hour), GoalAmount: d("2"), RaisedAmount: d("1")},
		{ID: "b", CreatedAt: now.Add(time.Minute), Deadline: now.Add(time.Hour), GoalAmount: d("10"), RaisedAmount: d("5")},
	}

	SortCampaigns(cs, SortCreated, false)
	assert.Equal(t, []string{"a", "c", "b"}, ids(cs))

	SortCampaigns(cs, SortCreated, true)
	assert.Equal(t, []string{"b", "a", "c"}, ids(cs), "ties stay id ascending when descending")

	SortCampaigns(cs, SortDeadline, false)
	assert.Equal(t, []string{"a", "b", "c"}, ids(cs))

	SortCampaigns(cs, SortRaised, true)
	assert.Equal(t, []string{"a", "b", "c"}, ids(cs), "0.5 and 0.5 tie, then 0.25")
}

func TestCampaignFilter(t *testing.T) {
	f, err := CampaignFilter{Limit: 1000}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, SortCreated, f.Sort)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.Limit)

	f, err = CampaignFilter{Page: 3, Limit: 10}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 20, f.Offset())

	_, err = CampaignFilter{Page: 500000000000000000}.Normalize()
	require.ErrorIs(t, err, ErrValidation, "offset would overflow")

	f, err = CampaignFilter{Page: math.MaxInt / MaxPageSize, Limit: MaxPageSize}.Normalize()
	require.NoError(t, err)
	assert.Positive(t, f.Offset())

	lo, hi := decimal.RequireFromString("5"), decimal.RequireFromString("1")
	_, err = CampaignFilter{MinGoal: &lo, MaxGoal: &hi}.Normalize()
	require.ErrorIs(t, err, ErrValidation)

	_, err = CampaignFilter{Status: "DONE"}.Normalize()
	require.ErrorIs(t, err, ErrValidation)

	c := &Campaign{Status: StatusActive, Category: CategorySurgery, Creator: "0xAbc", GoalAmount: decimal.RequireFromString("3")}
	assert.True(t, CampaignFilter{Status: StatusActive, Creator: "0xabc", MinGoal: &hi, MaxGoal: &lo}.Match(c))
	assert.False(t, CampaignFilter{Category: CategoryTherapy}.Match(c))
	assert.False(t, CampaignFilter{MinGoal: &lo}.Match(c))
}

func TestEscrowSummary(t *testing.T) {
	d := decimal.RequireFromString
	c := Campaign{
		ID:           "c1",
		RaisedAmount: d("5"),
		Milestones:   []Milestone{{Amount: d("1"), IsReleased: true}, {Amount: d("4")}},
		Contributors: []Contribution{{Amount: d("0.5"), Refunded: true}, {Amount: d("4.5")}},
	}
	s := c.Escrow()
	assert.True(t, s.Released.Equal(d("1")))
	assert.True(t, s.Refunded.Equal(d("0.5")))
	assert.True(t, s.Held.Equal(d("3.5")))
	require.NotNil(t, s.NextMilestone)
	assert.Equal(t, 1, *s.NextMilestone)

	c.Milestones[1].Pending = &ReleaseReservation{Token: "t", ReservedAt: now}
	s = c.Escrow()
	assert.True(t, s.Pending.Equal(d("4")))
	assert.True(t, s.Held.Equal(d("3.5")), "reserved funds are still held")
	assert.Nil(t, s.NextMilestone)
}

func TestStatsOverview(t *testing.T) {
	s := NewStatsOverview()
	s.Add(&Campaign{Status: StatusActive, RaisedAmount: decimal.RequireFromString("2"), Contributors: make([]Contribution, 3), ContributorsCount: 2})
	s.Add(&Campaign{Status: StatusFailed, RaisedAmount: decimal.RequireFromString("1.5")})
	assert.Equal(t, 2, s.TotalCampaigns)
	assert.Equal(t, 1, s.ByStatus[StatusFailed])
	assert.True(t, s.TotalRaised.Equal(decimal.RequireFromString("3.5")))
	assert.Equal(t, 3, s.TotalContributions)
	assert.Equal(t, 2, s.TotalContributors)
}
