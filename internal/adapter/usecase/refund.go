package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

// Refunds returns contributions of failed all-or-nothing campaigns.
type Refunds struct {
	deps
	settler *Settler
}

// refundable returns the sum and count of contributor's unrefunded events.
func refundable(c *domain.Campaign, contributor string) (decimal.Decimal, int, error) {
	if c.Status != domain.StatusFailed || !c.AllOrNothing {
		return decimal.Zero, 0, domain.Statef("campaign %s is %s (all-or-nothing=%t), refunds need a failed all-or-nothing campaign",
			c.ID, c.Status, c.AllOrNothing)
	}
	total, n := decimal.Zero, 0
	for _, ev := range c.Contributors {
		if !ev.Refunded && domain.SameAddress(ev.Contributor, contributor) {
			total = total.Add(ev.Amount)
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, 0, domain.NotFoundf("%s has no unrefunded contributions on campaign %s", contributor, c.ID)
	}
	return total, n, nil
}

// RequestRefund settles every unrefunded contribution of contributor in one
// transfer keyed by campaign and contributor, then marks the events refunded.
func (r *Refunds) RequestRefund(ctx context.Context, id, contributor string) (port.RefundResult, error) {
	contributor = strings.TrimSpace(contributor)
	if contributor == "" {
		return port.RefundResult{}, domain.Validationf("contributor is required")
	}
	c, err := r.repo.Get(ctx, id)
	if err != nil {
		return port.RefundResult{}, err
	}
	amount, events, err := refundable(&c, contributor)
	if err != nil {
		return port.RefundResult{}, err
	}

	conf, err := r.settler.Settle(ctx, port.TransferInstruction{
		IdempotencyKey: RefundKey(c.ID, contributor),
		Kind:           port.TransferRefund,
		CampaignID:     c.ID,
		To:             contributor,
		Amount:         amount,
	})
	if err != nil {
		return port.RefundResult{}, err
	}

	_, err = r.repo.Update(ctx, id, func(c *domain.Campaign) error {
		due, _, err := refundable(c, contributor)
		if err != nil {
			return err
		}
		if !due.Equal(amount) {
			return domain.Conflictf("refund of %s on %s changed from %s to %s during settlement", contributor, c.ID, amount, due)
		}
		for i := range c.Contributors {
			ev := &c.Contributors[i]
			if !ev.Refunded && domain.SameAddress(ev.Contributor, contributor) {
				ev.Refunded = true
				ev.RefundRef = conf.Reference
			}
		}
		c.UpdatedAt = r.clock.Now().UTC()
		return nil
	})
	if err != nil {
		return port.RefundResult{}, err
	}
	r.logger.Info("refund settled",
		slog.String("campaign_id", id),
		slog.String("contributor", contributor),
		slog.String("amount", amount.String()),
		slog.String("settlement_ref", conf.Reference))
	return port.RefundResult{
		CampaignID:   id,
		Contributor:  contributor,
		Amount:       amount,
		Events:       events,
		Confirmation: conf,
	}, nil
}
