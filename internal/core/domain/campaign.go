package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a campaign.
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusActive          Status = "ACTIVE"
	StatusSuccessful      Status = "SUCCESSFUL"
	StatusFailed          Status = "FAILED"
	StatusCancelled       Status = "CANCELLED"
)

// transitions lists the allowed successor states of every status.
var transitions = map[Status][]Status{
	StatusPendingApproval: {StatusActive, StatusCancelled},
	StatusActive:          {StatusSuccessful, StatusFailed},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusActive, StatusSuccessful, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the state machine has no outgoing transitions from s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether to is a direct successor of s.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Category is the medical purpose of a campaign.
type Category string

const (
	CategorySurgery     Category = "SURGERY"
	CategoryTreatment   Category = "TREATMENT"
	CategoryMedication  Category = "MEDICATION"
	CategoryEmergency   Category = "EMERGENCY"
	CategoryTherapy     Category = "THERAPY"
	CategoryDiagnostics Category = "DIAGNOSTICS"
	CategoryOther       Category = "OTHER"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySurgery, CategoryTreatment, CategoryMedication, CategoryEmergency,
		CategoryTherapy, CategoryDiagnostics, CategoryOther:
		return true
	}
	return false
}

// AmountTolerance bounds the rounding difference accepted when comparing the
// milestone total with the goal.
var AmountTolerance = decimal.New(1, -9)

// Campaign is the aggregate root. Milestones, contributions and votes are
// owned by the campaign and persisted with it in one atomic update.
type Campaign struct {
	ID                string          `json:"id"`
	Creator           string          `json:"creator"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Category          Category        `json:"category"`
	GoalAmount        decimal.Decimal `json:"goalAmount"`
	RaisedAmount      decimal.Decimal `json:"raisedAmount"`
	Deadline          time.Time       `json:"deadline"`
	Documents         []string        `json:"documents"`
	Status            Status          `json:"status"`
	IsApproved        bool            `json:"isApproved"`
	AllOrNothing      bool            `json:"allOrNothing"`
	Milestones        []Milestone     `json:"milestones"`
	Contributors      []Contribution  `json:"contributors"`
	ContributorsCount int             `json:"contributorsCount"`
	ApprovalVotes     []Vote          `json:"approvalVotes"`
	Analytics         Analytics       `json:"analytics"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	// Version increases with every committed update.
	Version int64 `json:"version"`
}

// Milestone is a portion of the goal releasable to the creator.
type Milestone struct {
	Description   string              `json:"description"`
	Amount        decimal.Decimal     `json:"amount"`
	IsReleased    bool                `json:"isReleased"`
	ReleaseDate   *time.Time          `json:"releaseDate,omitempty"`
	Proof         *string             `json:"proof,omitempty"`
	SettlementRef string              `json:"settlementRef,omitempty"`
	// Pending is set while the release transfer is being settled.
	Pending       *ReleaseReservation `json:"pending,omitempty"`
}

// ReleaseReservation earmarks a milestone amount before its transfer is sent.
// Token identifies the release attempt that owns the reservation.
type ReleaseReservation struct {
	Token      string    `json:"token"`
	ReservedAt time.Time `json:"reservedAt"`
}

// Contribution is one accepted contribution event.
type Contribution struct {
	Contributor   string          `json:"contributor"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
	ExternalTxRef string          `json:"externalTxRef"`
	Refunded      bool            `json:"refunded"`
	RefundRef     string          `json:"refundRef,omitempty"`
}

// Vote is a community approval vote.
type Vote struct {
	Voter     string    `json:"voter"`
	Approved  bool      `json:"approved"`
	Timestamp time.Time `json:"timestamp"`
}

type Analytics struct {
	ViewCount           int64           `json:"viewCount"`
	ShareCount          int64           `json:"shareCount"`
	AverageContribution decimal.Decimal `json:"averageContribution"`
}

// SameAddress compares two account addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Transition moves the campaign to status to. It returns false without error
// when the campaign is already in that status, so retried transitions are
// no-ops.
func (c *Campaign) Transition(to Status, at time.Time) (bool, error) {
	if c.Status == to {
		return false, nil
	}
	if !c.Status.CanTransition(to) {
		return false, Statef("campaign %s cannot move from %s to %s", c.ID, c.Status, to)
	}
	c.Status = to
	if to == StatusActive {
		c.IsApproved = true
	}
	c.UpdatedAt = at
	return true, nil
}

// GoalReached reports whether the raised amount covers the goal.
func (c *Campaign) GoalReached() bool {
	return c.RaisedAmount.GreaterThanOrEqual(c.GoalAmount)
}

// HasContributed reports whether address has at least one recorded event.
func (c *Campaign) HasContributed(address string) bool {
	for _, ev := range c.Contributors {
		if SameAddress(ev.Contributor, address) {
			return true
		}
	}
	return false
}

// HasTxRef reports whether a contribution with the external reference exists.
func (c *Campaign) HasTxRef(ref string) bool {
	for _, ev := range c.Contributors {
		if ev.ExternalTxRef == ref {
			return true
		}
	}
	return false
}

// ContributionsOf returns the events recorded for address in order.
func (c *Campaign) ContributionsOf(address string) []Contribution {
	var out []Contribution
	for _, ev := range c.Contributors {
		if SameAddress(ev.Contributor, address) {
			out = append(out, ev)
		}
	}
	return out
}

// ContributedBy sums every event recorded for address, refunded or not.
func (c *Campaign) ContributedBy(address string) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range c.ContributionsOf(address) {
		total = total.Add(ev.Amount)
	}
	return total
}

// VoteOf returns the vote cast by voter, if any.
func (c *Campaign) VoteOf(voter string) (Vote, bool) {
	for _, v := range c.ApprovalVotes {
		if SameAddress(v.Voter, voter) {
			return v, true
		}
	}
	return Vote{}, false
}

// ApproveRatio returns approved/total votes. ok is false when nobody voted.
func (c *Campaign) ApproveRatio() (ratio decimal.Decimal, ok bool) {
	total := len(c.ApprovalVotes)
	if total == 0 {
		return decimal.Zero, false
	}
	approved := 0
	for _, v := range c.ApprovalVotes {
		if v.Approved {
			approved++
		}
	}
	return decimal.NewFromInt(int64(approved)).Div(decimal.NewFromInt(int64(total))), true
}

// ReleasedAmount sums the milestones already released.
func (c *Campaign) ReleasedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, m := range c.Milestones {
		if m.IsReleased {
			total = total.Add(m.Amount)
		}
	}
	return total
}

// PendingAmount sums the milestones reserved for a release in flight.
func (c *Campaign) PendingAmount() decimal.Decimal {
	total := decimal.Zero
	for _, m := range c.Milestones {
		if m.Pending != nil && !m.IsReleased {
			total = total.Add(m.Amount)
		}
	}
	return total
}

// RefundedAmount sums refunded contribution events.
func (c *Campaign) RefundedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, ev := range c.Contributors {
		if ev.Refunded {
			total = total.Add(ev.Amount)
		}
	}
	return total
}

// RaisedRatio is raised/goal, used for sorting listings.
func (c *Campaign) RaisedRatio() decimal.Decimal {
	if !c.GoalAmount.IsPositive() {
		return decimal.Zero
	}
	return c.RaisedAmount.DivRound(c.GoalAmount, 12)
}

// Clone returns a deep copy so stores never share slices with callers.
func (c Campaign) Clone() Campaign {
	out := c
	out.Documents = append([]string(nil), c.Documents...)
	out.Milestones = append([]Milestone(nil), c.Milestones...)
	for i := range out.Milestones {
		if m := c.Milestones[i]; m.ReleaseDate != nil {
			d := *m.ReleaseDate
			out.Milestones[i].ReleaseDate = &d
		}
		if m := c.Milestones[i]; m.Proof != nil {
			p := *m.Proof
			out.Milestones[i].Proof = &p
		}
		if m := c.Milestones[i]; m.Pending != nil {
			r := *m.Pending
			out.Milestones[i].Pending = &r
		}
	}
	out.Contributors = append([]Contribution(nil), c.Contributors...)
	out.ApprovalVotes = append([]Vote(nil), c.ApprovalVotes...)
	return out
}
