package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

// Demo addresses used by Seed.
const (
	DemoCreator = "0xd3m0c4ea70r0000000000000000000000000001"
	DemoBacker  = "0xd3m0ba4ce40000000000000000000000000002"
)

type demoCampaign struct {
	id           string
	title        string
	category     domain.Category
	goal         string
	milestones   []string
	allOrNothing bool
	status       domain.Status
	raised       []string
	released     int
}

var demoCampaigns = []demoCampaign{
	{id: "demo-pending", title: "Hip replacement", category: domain.CategorySurgery, goal: "12", milestones: []string{"4", "8"}, status: domain.StatusPendingApproval},
	{id: "demo-active", title: "Physiotherapy after stroke", category: domain.CategoryTherapy, goal: "5", milestones: []string{"1", "4"}, status: domain.StatusActive, raised: []string{"1.5", "0.75"}},
	{id: "demo-funded", title: "Insulin for a year", category: domain.CategoryMedication, goal: "3", milestones: []string{"1", "1", "1"}, allOrNothing: true, status: domain.StatusSuccessful, raised: []string{"2", "1"}, released: 1},
	{id: "demo-failed", title: "MRI diagnostics", category: domain.CategoryDiagnostics, goal: "2", milestones: []string{"2"}, allOrNothing: true, status: domain.StatusFailed, raised: []string{"0.5"}},
	{id: "demo-cancelled", title: "Dental implants", category: domain.CategoryOther, goal: "1", milestones: []string{"1"}, status: domain.StatusCancelled},
}

// Seed inserts demo campaigns covering every lifecycle state. Campaigns that
// already exist are left untouched, so Seed can run on every start.
func Seed(ctx context.Context, repo port.CampaignRepository, now time.Time) error {
	for _, d := range demoCampaigns {
		c, err := d.build(now)
		if err != nil {
			return fmt.Errorf("build %s: %w", d.id, err)
		}
		err = repo.Create(ctx, c)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", d.id, err)
		}
	}
	return nil
}

func (d demoCampaign) build(now time.Time) (domain.Campaign, error) {
	in := domain.CreateCampaignInput{
		ID:           d.id,
		Creator:      DemoCreator,
		Title:        d.title,
		Description:  d.title + " (demo campaign)",
		Category:     d.category,
		GoalAmount:   decimal.RequireFromString(d.goal),
		Deadline:     now.AddDate(0, 1, 0),
		AllOrNothing: d.allOrNothing,
	}
	for i, m := range d.milestones {
		in.Milestones = append(in.Milestones, domain.MilestoneInput{
			Description: fmt.Sprintf("Stage %d", i+1),
			Amount:      decimal.RequireFromString(m),
		})
	}
	c, err := domain.NewCampaign(in, now.AddDate(0, 0, -7))
	if err != nil {
		return c, err
	}

	c.Status = d.status
	c.IsApproved = d.status == domain.StatusActive || d.status == domain.StatusSuccessful || d.status == domain.StatusFailed
	if d.status == domain.StatusFailed {
		c.Deadline = now.AddDate(0, 0, -1)
	}
	for i, amount := range d.raised {
		a := decimal.RequireFromString(amount)
		c.Contributors = append(c.Contributors, domain.Contribution{
			Contributor:   DemoBacker,
			Amount:        a,
			Timestamp:     now.Add(-time.Duration(len(d.raised)-i) * time.Hour),
			ExternalTxRef: uuid.NewString(),
		})
		c.RaisedAmount = c.RaisedAmount.Add(a)
	}
	if len(c.Contributors) > 0 {
		c.ContributorsCount = 1
		c.Analytics.AverageContribution = c.RaisedAmount.DivRound(decimal.NewFromInt(int64(len(c.Contributors))), 12)
	}
	for i := 0; i < d.released; i++ {
		at := now.Add(-time.Hour)
		c.Milestones[i].IsReleased = true
		c.Milestones[i].ReleaseDate = &at
		c.Milestones[i].SettlementRef = "demo-" + uuid.NewString()
	}
	return c, nil
}
