package domain

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SortKey selects the ordering of campaign listings.
type SortKey string

const (
	SortCreated  SortKey = "created"
	SortDeadline SortKey = "deadline"
	SortRaised   SortKey = "raised_ratio"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CampaignFilter narrows and orders a campaign listing. Zero values mean "no
// constraint".
type CampaignFilter struct {
	Status   Status
	Category Category
	Creator  string
	MinGoal  *decimal.Decimal
	MaxGoal  *decimal.Decimal
	Sort     SortKey
	Desc     bool
	Page     int
	Limit    int
}

// Normalize fills defaults and rejects unknown enum values.
func (f CampaignFilter) Normalize() (CampaignFilter, error) {
	f.Creator = strings.TrimSpace(f.Creator)
	if f.Status != "" && !f.Status.Valid() {
		return f, Validationf("unknown status %q", f.Status)
	}
	if f.Category != "" && !f.Category.Valid() {
		return f, Validationf("unknown category %q", f.Category)
	}
	switch f.Sort {
	case "":
		f.Sort = SortCreated
	case SortCreated, SortDeadline, SortRaised:
	default:
		return f, Validationf("unknown sort key %q", f.Sort)
	}
	if f.MinGoal != nil && f.MaxGoal != nil && f.MinGoal.GreaterThan(*f.MaxGoal) {
		return f, Validationf("min goal exceeds max goal")
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Page > math.MaxInt/f.Limit {
		return f, Validationf("page %d is out of range", f.Page)
	}
	return f, nil
}

// Offset is the number of matching campaigns skipped before the page.
func (f CampaignFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Match reports whether c satisfies every constraint of f.
func (f CampaignFilter) Match(c *Campaign) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Creator != "" && !SameAddress(c.Creator, f.Creator) {
		return false
	}
	if f.MinGoal != nil && c.GoalAmount.LessThan(*f.MinGoal) {
		return false
	}
	if f.MaxGoal != nil && c.GoalAmount.GreaterThan(*f.MaxGoal) {
		return false
	}
	return true
}

// SortCampaigns orders cs by key. Equal keys fall back to ascending id
// regardless of direction so pages are deterministic.
func SortCampaigns(cs []Campaign, key SortKey, desc bool) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := &cs[i], &cs[j]
		var cmp int
		switch key {
		case SortDeadline:
			cmp = a.Deadline.Compare(b.Deadline)
		case SortRaised:
			cmp = a.RaisedRatio().Cmp(b.RaisedRatio())
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cmp == 0 {
			return a.ID < b.ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// CampaignPage is one page of a listing.
type CampaignPage struct {
	Campaigns []Campaign `json:"campaigns"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}

// UserContribution groups an address's events on one campaign.
type UserContribution struct {
	CampaignID string          `json:"campaignId"`
	Title      string          `json:"title"`
	Status     Status          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Events     []Contribution  `json:"events"`
}

// StatsOverview aggregates platform totals.
type StatsOverview struct {
	TotalCampaigns     int             `json:"totalCampaigns"`
	ByStatus           map[Status]int  `json:"byStatus"`
	TotalRaised        decimal.Decimal `json:"totalRaised"`
	TotalContributions int             `json:"totalContributions"`
	TotalContributors  int             `json:"totalContributors"`
}

func NewStatsOverview() StatsOverview {
	return StatsOverview{ByStatus: map[Status]int{}, TotalRaised: decimal.Zero}
}

// Add folds one campaign into the totals.
func (s *StatsOverview) Add(c *Campaign) {
	s.TotalCampaigns++
	s.ByStatus[c.Status]++
	s.TotalRaised = s.TotalRaised.Add(c.RaisedAmount)
	s.TotalContributions += len(c.Contributors)
	s.TotalContributors += c.ContributorsCount
}

// EscrowSummary describes how much of a campaign's raised funds are still held.
type EscrowSummary struct {
	CampaignID    string          `json:"campaignId"`
	Status        Status          `json:"status"`
	Raised        decimal.Decimal `json:"raised"`
	Released      decimal.Decimal `json:"released"`
	Pending       decimal.Decimal `json:"pending"`
	Refunded      decimal.Decimal `json:"refunded"`
	Held          decimal.Decimal `json:"held"`
	NextMilestone *int            `json:"nextMilestone,omitempty"`
}

// Escrow computes the escrow summary of c.
func (c *Campaign) Escrow() EscrowSummary {
	released := c.ReleasedAmount()
	refunded := c.RefundedAmount()
	s := EscrowSummary{
		CampaignID: c.ID,
		Status:     c.Status,
		Raised:     c.RaisedAmount,
		Released:   released,
		Pending:    c.PendingAmount(),
		Refunded:   refunded,
		Held:       c.RaisedAmount.Sub(released).Sub(refunded),
	}
	for i, m := range c.Milestones {
		if !m.IsReleased && m.Pending == nil {
			idx := i
			s.NextMilestone = &idx
			break
		}
	}
	return s
}
