package port

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"medfund/internal/core/domain"
)

// LifecycleController owns the campaign state machine and the read side of
// the engine. This interface represents the primary port into the
// application domain for campaign management.
type LifecycleController interface {
	// CreateCampaign validates the input, checks the creator's KYC status and
	// stores the campaign in PENDING_APPROVAL.
	CreateCampaign(ctx context.Context, input domain.CreateCampaignInput) (domain.Campaign, error)

	// UpdateCampaign changes allow-listed fields of a pending campaign that
	// has no contributors. Keys outside the allow-list are a conflict.
	UpdateCampaign(ctx context.Context, id, caller string, fields map[string]any) (domain.Campaign, error)

	// CancelCampaign moves a campaign without contributors to CANCELLED. Only
	// the creator may cancel.
	CancelCampaign(ctx context.Context, id, caller string) (domain.Campaign, error)

	// EvaluateGoalReached moves an ACTIVE campaign whose raised amount covers
	// its goal to SUCCESSFUL. Repeated calls are no-ops.
	EvaluateGoalReached(ctx context.Context, id string) (domain.Campaign, error)

	// FinalizeCampaign resolves an ACTIVE campaign whose deadline passed into
	// SUCCESSFUL or FAILED. Terminal campaigns are returned unchanged.
	FinalizeCampaign(ctx context.Context, id string) (domain.Campaign, error)

	// SweepDue finalizes every ACTIVE campaign past its deadline and returns
	// how many changed state.
	SweepDue(ctx context.Context) (int, error)

	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
	ListCampaigns(ctx context.Context, filter domain.CampaignFilter) (domain.CampaignPage, error)
	GetUserCreatedCampaigns(ctx context.Context, address string) ([]domain.Campaign, error)
	GetStatsOverview(ctx context.Context) (domain.StatsOverview, error)

	// RecordView and RecordShare bump the campaign's analytics counters.
	RecordView(ctx context.Context, id string) (domain.Analytics, error)
	RecordShare(ctx context.Context, id string) (domain.Analytics, error)
}

// ContributeInput describes a contribution already custodied by the
// settlement layer under ExternalTxRef.
type ContributeInput struct {
	CampaignID    string
	Contributor   string
	Amount        decimal.Decimal
	ExternalTxRef string
}

// ContributionLedger records contributions and answers contribution queries.
type ContributionLedger interface {
	// Contribute records a contribution on an ACTIVE campaign before its
	// deadline and evaluates whether the goal has been reached.
	Contribute(ctx context.Context, input ContributeInput) (domain.Campaign, error)

	// GetContributorTotal sums every contribution of address on a campaign.
	GetContributorTotal(ctx context.Context, id, address string) (decimal.Decimal, error)

	// GetContributionHistory lists address's contribution events on a campaign.
	GetContributionHistory(ctx context.Context, id, address string) ([]domain.Contribution, error)

	// GetUserContributions groups address's contributions across campaigns.
	GetUserContributions(ctx context.Context, address string) ([]domain.UserContribution, error)
}

// ApprovalVoting activates pending campaigns by community vote or by an
// administrative override. Both paths are independent and idempotent.
type ApprovalVoting interface {
	VoteForApproval(ctx context.Context, id, voter string, approved bool) (domain.Campaign, error)
	ApproveCampaign(ctx context.Context, id, caller string) (domain.Campaign, error)
}

// ReleaseInput asks for one milestone's funds to be released to the creator.
type ReleaseInput struct {
	CampaignID string
	Index      int
	Caller     string
	Proof      string
}

// MilestoneEscrow releases milestone funds through the settlement layer.
type MilestoneEscrow interface {
	ReleaseMilestone(ctx context.Context, input ReleaseInput) (domain.Campaign, error)
	GetEscrowSummary(ctx context.Context, id string) (domain.EscrowSummary, error)
}

// RefundResult reports a completed refund.
type RefundResult struct {
	CampaignID   string               `json:"campaignId"`
	Contributor  string               `json:"contributor"`
	Amount       decimal.Decimal      `json:"amount"`
	Events       int                  `json:"events"`
	Confirmation TransferConfirmation `json:"confirmation"`
}

// RefundProcessor returns contributions of failed all-or-nothing campaigns.
type RefundProcessor interface {
	RequestRefund(ctx context.Context, id, contributor string) (RefundResult, error)
}

// CampaignEngine is the full inbound surface consumed by transport adapters.
type CampaignEngine interface {
	LifecycleController
	ContributionLedger
	ApprovalVoting
	MilestoneEscrow
	RefundProcessor
}

// DocumentUploader stores supporting documents. The returned reference is
// attached to campaigns through CreateCampaign or UpdateCampaign.
type DocumentUploader interface {
	UploadDocument(ctx context.Context, r io.Reader) (string, error)
}
