package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

// Ledger records contributions. Custody of the funds is already handled by
// the settlement layer; the ledger only keeps the reference.
type Ledger struct {
	deps
	lifecycle *Lifecycle
}

// Contribute appends a contribution event and evaluates the goal in the same
// atomic update, so concurrent contributions crossing the goal trigger the
// SUCCESSFUL transition once.
func (l *Ledger) Contribute(ctx context.Context, input port.ContributeInput) (domain.Campaign, error) {
	contributor := strings.TrimSpace(input.Contributor)
	txRef := strings.TrimSpace(input.ExternalTxRef)
	switch {
	case contributor == "":
		return domain.Campaign{}, domain.Validationf("contributor is required")
	case !input.Amount.IsPositive():
		return domain.Campaign{}, domain.Validationf("amount must be positive, got %s", input.Amount)
	case txRef == "":
		return domain.Campaign{}, domain.Validationf("externalTxRef is required")
	}

	var t transition
	c, err := l.repo.Update(ctx, input.CampaignID, func(c *domain.Campaign) error {
		now := l.clock.Now().UTC()
		if c.Status != domain.StatusActive {
			return domain.Statef("campaign %s is %s, contributions need an active campaign", c.ID, c.Status)
		}
		if !now.Before(c.Deadline) {
			return domain.Statef("campaign %s deadline has passed", c.ID)
		}
		if c.HasTxRef(txRef) {
			return domain.Conflictf("transaction %s is already recorded on campaign %s", txRef, c.ID)
		}
		if !c.HasContributed(contributor) {
			c.ContributorsCount++
		}
		c.Contributors = append(c.Contributors, domain.Contribution{
			Contributor:   contributor,
			Amount:        input.Amount,
			Timestamp:     now,
			ExternalTxRef: txRef,
		})
		c.RaisedAmount = c.RaisedAmount.Add(input.Amount)
		// divisor is the number of events, not distinct contributors
		c.Analytics.AverageContribution = c.RaisedAmount.DivRound(decimal.NewFromInt(int64(len(c.Contributors))), 12)
		c.UpdatedAt = now
		return l.lifecycle.applyGoalReached(c, &t, now)
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	l.logger.Info("contribution recorded",
		slog.String("campaign_id", c.ID),
		slog.String("contributor", contributor),
		slog.String("amount", input.Amount.String()),
		slog.String("tx_ref", txRef))
	l.lifecycle.logTransition(c, t)
	return c, nil
}

// GetContributorTotal sums every contribution of address on the campaign,
// refunded events included.
func (l *Ledger) GetContributorTotal(ctx context.Context, id, address string) (decimal.Decimal, error) {
	if strings.TrimSpace(address) == "" {
		return decimal.Zero, domain.Validationf("address is required")
	}
	c, err := l.repo.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return c.ContributedBy(address), nil
}

func (l *Ledger) GetContributionHistory(ctx context.Context, id, address string) ([]domain.Contribution, error) {
	if strings.TrimSpace(address) == "" {
		return nil, domain.Validationf("address is required")
	}
	c, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	history := c.ContributionsOf(address)
	if history == nil {
		history = []domain.Contribution{}
	}
	return history, nil
}

// GetUserContributions groups the address's contributions by campaign,
// newest campaign first.
func (l *Ledger) GetUserContributions(ctx context.Context, address string) ([]domain.UserContribution, error) {
	if strings.TrimSpace(address) == "" {
		return nil, domain.Validationf("address is required")
	}
	campaigns, err := l.repo.ListByContributor(ctx, address)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserContribution, 0, len(campaigns))
	for i := range campaigns {
		c := &campaigns[i]
		out = append(out, domain.UserContribution{
			CampaignID: c.ID,
			Title:      c.Title,
			Status:     c.Status,
			Total:      c.ContributedBy(address),
			Events:     c.ContributionsOf(address),
		})
	}
	return out, nil
}
