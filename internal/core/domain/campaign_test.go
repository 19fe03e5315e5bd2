package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func validInput() CreateCampaignInput {
	return CreateCampaignInput{
		ID:          "c1",
		Creator:     "0xCreator",
		Title:       "Chemotherapy",
		Description: "Six cycles",
		Category:    "treatment",
		GoalAmount:  decimal.RequireFromString("5"),
		Deadline:    now.Add(time.Hour),
		Milestones: []MilestoneInput{
			{Description: "first", Amount: decimal.RequireFromString("1")},
			{Description: "rest", Amount: decimal.RequireFromString("4")},
		},
	}
}

func TestNewCampaign(t *testing.T) {
	c, err := NewCampaign(validInput(), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, c.Status)
	assert.Equal(t, CategoryTreatment, c.Category)
	assert.False(t, c.IsApproved)
	assert.True(t, c.RaisedAmount.IsZero())
	assert.Len(t, c.Milestones, 2)
	assert.NotNil(t, c.Contributors)
	assert.NotNil(t, c.ApprovalVotes)
}

func TestNewCampaignValidation(t *testing.T) {
	cases := map[string]func(in *CreateCampaignInput){
		"missing id":       func(in *CreateCampaignInput) { in.ID = " " },
		"missing creator":  func(in *CreateCampaignInput) { in.Creator = "" },
		"missing title":    func(in *CreateCampaignInput) { in.Title = "" },
		"unknown category": func(in *CreateCampaignInput) { in.Category = "COSMETIC" },
		"zero goal":        func(in *CreateCampaignInput) { in.GoalAmount = decimal.Zero },
		"deadline now":     func(in *CreateCampaignInput) { in.Deadline = now },
		"no milestones":    func(in *CreateCampaignInput) { in.Milestones = nil },
		"negative milestone": func(in *CreateCampaignInput) {
			in.Milestones[0].Amount = decimal.RequireFromString("-1")
		},
		"sum off by more than tolerance": func(in *CreateCampaignInput) {
			in.Milestones[1].Amount = decimal.RequireFromString("4.000000002")
		},
		"empty document": func(in *CreateCampaignInput) { in.Documents = []string{""} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := NewCampaign(in, now)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestNewCampaignAcceptsRoundingWithinTolerance(t *testing.T) {
	in := validInput()
	in.Milestones[1].Amount = decimal.RequireFromString("4.0000000005")
	_, err := NewCampaign(in, now)
	require.NoError(t, err)
}

func TestNormalizeDoesNotTouchCallerSlices(t *testing.T) {
	in := validInput()
	in.Milestones[0].Description = "  first  "
	_, err := NormalizeCreateCampaignInput(in, now)
	require.NoError(t, err)
	assert.Equal(t, "  first  ", in.Milestones[0].Description)
}

func TestTransition(t *testing.T) {
	c := Campaign{ID: "c1", Status: StatusPendingApproval}

	changed, err := c.Transition(StatusActive, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, c.IsApproved)

	changed, err = c.Transition(StatusActive, now)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = c.Transition(StatusCancelled, now)
	require.ErrorIs(t, err, ErrState)

	_, err = c.Transition(StatusSuccessful, now)
	require.NoError(t, err)
	assert.True(t, c.Status.Terminal())
	assert.False(t, c.Status.CanTransition(StatusFailed))
}

func TestApproveRatio(t *testing.T) {
	var c Campaign
	_, ok := c.ApproveRatio()
	assert.False(t, ok)

	c.ApprovalVotes = []Vote{{Voter: "a", Approved: true}, {Voter: "b"}, {Voter: "c", Approved: true}}
	ratio, ok := c.ApproveRatio()
	require.True(t, ok)
	assert.True(t, ratio.GreaterThan(decimal.RequireFromString("0.66")))
	assert.True(t, ratio.LessThan(decimal.RequireFromString("0.67")))
}

func TestCloneIsDeep(t *testing.T) {
	proof := "p"
	c := Campaign{
		Milestones:   []Milestone{{Description: "m", Proof: &proof}},
		Contributors: []Contribution{{Contributor: "a"}},
	}
	cp := c.Clone()
	cp.Milestones[0].Description = "changed"
	*cp.Milestones[0].Proof = "changed"
	cp.Contributors[0].Refunded = true

	assert.Equal(t, "m", c.Milestones[0].Description)
	assert.Equal(t, "p", *c.Milestones[0].Proof)
	assert.False(t, c.Contributors[0].Refunded)
}

func TestErrorKinds(t *testing.T) {
	err := Conflictf("campaign %s exists", "c1")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "campaign c1 exists", err.Error())

	cause := errors.New("timeout")
	wrapped := SettlementFailed("release:c1:0", cause)
	assert.ErrorIs(t, wrapped, ErrSettlement)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, Kind(""), KindOf(cause))
}
