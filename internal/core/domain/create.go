package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CreateCampaignInput carries the caller-supplied fields of a new campaign.
type CreateCampaignInput struct {
	ID           string           `json:"id"`
	Creator      string           `json:"creator"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Category     Category         `json:"category"`
	GoalAmount   decimal.Decimal  `json:"goalAmount"`
	Deadline     time.Time        `json:"deadline"`
	Documents    []string         `json:"documents"`
	AllOrNothing bool             `json:"allOrNothing"`
	Milestones   []MilestoneInput `json:"milestones"`
}

type MilestoneInput struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewCampaign validates input and builds a campaign in PENDING_APPROVAL.
func NewCampaign(input CreateCampaignInput, now time.Time) (Campaign, error) {
	input, err := NormalizeCreateCampaignInput(input, now)
	if err != nil {
		return Campaign{}, err
	}

	milestones := make([]Milestone, 0, len(input.Milestones))
	for _, m := range input.Milestones {
		milestones = append(milestones, Milestone{Description: m.Description, Amount: m.Amount})
	}
	documents := append([]string{}, input.Documents...)

	now = now.UTC()
	return Campaign{
		ID:                input.ID,
		Creator:           input.Creator,
		Title:             input.Title,
		Description:       input.Description,
		Category:          input.Category,
		GoalAmount:        input.GoalAmount,
		RaisedAmount:      decimal.Zero,
		Deadline:          input.Deadline.UTC(),
		Documents:         documents,
		Status:            StatusPendingApproval,
		IsApproved:        false,
		AllOrNothing:      input.AllOrNothing,
		Milestones:        milestones,
		Contributors:      []Contribution{},
		ContributorsCount: 0,
		ApprovalVotes:     []Vote{},
		Analytics:         Analytics{AverageContribution: decimal.Zero},
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// NormalizeCreateCampaignInput trims text fields and checks every creation
// rule that does not need a collaborator.
func NormalizeCreateCampaignInput(input CreateCampaignInput, now time.Time) (CreateCampaignInput, error) {
	input.ID = strings.TrimSpace(input.ID)
	input.Creator = strings.TrimSpace(input.Creator)
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = Category(strings.ToUpper(strings.TrimSpace(string(input.Category))))
	input.Milestones = append([]MilestoneInput(nil), input.Milestones...)
	input.Documents = append([]string(nil), input.Documents...)

	switch {
	case input.ID == "":
		return input, Validationf("campaign id is required")
	case input.Creator == "":
		return input, Validationf("creator is required")
	case input.Title == "":
		return input, Validationf("title is required")
	case input.Description == "":
		return input, Validationf("description is required")
	case input.Category == "":
		return input, Validationf("category is required")
	case !input.Category.Valid():
		return input, Validationf("unknown category %q", input.Category)
	case !input.GoalAmount.IsPositive():
		return input, Validationf("goal amount must be positive")
	case input.Deadline.IsZero():
		return input, Validationf("deadline is required")
	case !input.Deadline.After(now):
		return input, Validationf("deadline must be in the future")
	case len(input.Milestones) == 0:
		return input, Validationf("at least one milestone is required")
	}

	sum := decimal.Zero
	for i, m := range input.Milestones {
		input.Milestones[i].Description = strings.TrimSpace(m.Description)
		if input.Milestones[i].Description == "" {
			return input, Validationf("milestone %d description is required", i)
		}
		if !m.Amount.IsPositive() {
			return input, Validationf("milestone %d amount must be positive", i)
		}
		sum = sum.Add(m.Amount)
	}
	if sum.Sub(input.GoalAmount).Abs().GreaterThan(AmountTolerance) {
		return input, Validationf("milestone amounts sum to %s, goal is %s", sum, input.GoalAmount)
	}

	for i, d := range input.Documents {
		input.Documents[i] = strings.TrimSpace(d)
		if input.Documents[i] == "" {
			return input, Validationf("document %d reference is empty", i)
		}
	}
	return input, nil
}
