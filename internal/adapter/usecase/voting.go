package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

// Voting activates pending campaigns. Community votes and the administrative
// override are two independent triggers of the same transition.
type Voting struct {
	deps
	lifecycle *Lifecycle
	access    port.AccessControl
	threshold decimal.Decimal
	quorum    int
}

// VoteForApproval records the first vote of voter and activates the campaign
// once the quorum is met and the approve ratio reaches the threshold.
func (v *Voting) VoteForApproval(ctx context.Context, id, voter string, approved bool) (domain.Campaign, error) {
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return domain.Campaign{}, domain.Validationf("voter is required")
	}

	var t transition
	c, err := v.repo.Update(ctx, id, func(c *domain.Campaign) error {
		if domain.SameAddress(voter, c.Creator) {
			return domain.Authorizationf("creator cannot vote on campaign %s", c.ID)
		}
		if _, voted := c.VoteOf(voter); voted {
			return domain.Conflictf("%s already voted on campaign %s", voter, c.ID)
		}
		if c.Status != domain.StatusPendingApproval {
			return domain.Statef("campaign %s is %s, voting is closed", c.ID, c.Status)
		}
		now := v.clock.Now().UTC()
		c.ApprovalVotes = append(c.ApprovalVotes, domain.Vote{Voter: voter, Approved: approved, Timestamp: now})
		c.UpdatedAt = now

		if len(c.ApprovalVotes) < v.quorum {
			return nil
		}
		if ratio, ok := c.ApproveRatio(); ok && ratio.GreaterThanOrEqual(v.threshold) {
			return t.apply(c, domain.StatusActive, now)
		}
		return nil
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	v.logger.Info("approval vote recorded",
		slog.String("campaign_id", c.ID),
		slog.String("voter", voter),
		slog.Bool("approved", approved),
		slog.Int("votes", len(c.ApprovalVotes)))
	v.lifecycle.logTransition(c, t)
	return c, nil
}

// ApproveCampaign activates a pending campaign regardless of the vote tally.
// Approving an already active campaign is a no-op.
func (v *Voting) ApproveCampaign(ctx context.Context, id, caller string) (domain.Campaign, error) {
	admin, err := v.access.IsAdmin(ctx, caller)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("check admin %s: %w", caller, err)
	}
	if !admin {
		return domain.Campaign{}, domain.Authorizationf("%s is not an administrator", caller)
	}

	var t transition
	c, err := v.repo.Update(ctx, id, func(c *domain.Campaign) error {
		return t.apply(c, domain.StatusActive, v.clock.Now().UTC())
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	v.lifecycle.logTransition(c, t)
	return c, nil
}
