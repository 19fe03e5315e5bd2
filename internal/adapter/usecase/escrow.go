package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

// Escrow releases milestone funds to the campaign creator.
type Escrow struct {
	deps
	settler            *Settler
	reservationTimeout time.Duration
}

// checkRelease validates a release of milestone index by caller against c and
// returns the milestone amount. Amounts of other reserved milestones count as
// released. A reservation younger than timeout belongs to a release still in
// flight.
func checkRelease(c *domain.Campaign, index int, caller string, now time.Time, timeout time.Duration) (decimal.Decimal, error) {
	if !domain.SameAddress(caller, c.Creator) {
		return decimal.Zero, domain.Authorizationf("only the creator may release milestones of campaign %s", c.ID)
	}
	if index < 0 || index >= len(c.Milestones) {
		return decimal.Zero, domain.NotFoundf("campaign %s has no milestone %d", c.ID, index)
	}
	m := c.Milestones[index]
	if m.IsReleased {
		return decimal.Zero, domain.Conflictf("milestone %d of campaign %s is already released", index, c.ID)
	}
	if m.Pending != nil && now.Sub(m.Pending.ReservedAt) < timeout {
		return decimal.Zero, domain.Conflictf("release of milestone %d of campaign %s is in progress", index, c.ID)
	}
	if c.AllOrNothing && c.Status != domain.StatusSuccessful {
		return decimal.Zero, domain.Statef("all-or-nothing campaign %s is %s, release needs SUCCESSFUL", c.ID, c.Status)
	}
	switch c.Status {
	case domain.StatusActive, domain.StatusSuccessful, domain.StatusFailed:
	default:
		return decimal.Zero, domain.Statef("campaign %s is %s, nothing to release", c.ID, c.Status)
	}
	committed := c.ReleasedAmount().Add(c.PendingAmount())
	if m.Pending != nil {
		committed = committed.Sub(m.Amount)
	}
	cumulative := committed.Add(m.Amount)
	if cumulative.GreaterThan(c.RaisedAmount) {
		return decimal.Zero, domain.Statef("releasing %s would bring campaign %s to %s, above raised %s",
			m.Amount, c.ID, cumulative, c.RaisedAmount)
	}
	return m.Amount, nil
}

// ReleaseMilestone reserves the milestone, settles it under the
// campaign/milestone idempotency key and then marks it released. The
// reservation counts against the raised amount while the transfer is in
// flight, so concurrent releases can never pay out more than was raised. A
// failed settlement drops the reservation and leaves the milestone
// unreleased.
func (e *Escrow) ReleaseMilestone(ctx context.Context, input port.ReleaseInput) (domain.Campaign, error) {
	token := uuid.NewString()
	var (
		amount decimal.Decimal
		to     string
	)
	_, err := e.repo.Update(ctx, input.CampaignID, func(c *domain.Campaign) error {
		now := e.clock.Now().UTC()
		a, err := checkRelease(c, input.Index, input.Caller, now, e.reservationTimeout)
		if err != nil {
			return err
		}
		if prev := c.Milestones[input.Index].Pending; prev != nil {
			e.logger.Warn("taking over stale milestone reservation",
				slog.String("campaign_id", c.ID),
				slog.Int("index", input.Index),
				slog.Time("reserved_at", prev.ReservedAt))
		}
		c.Milestones[input.Index].Pending = &domain.ReleaseReservation{Token: token, ReservedAt: now}
		c.UpdatedAt = now
		amount, to = a, c.Creator
		return nil
	})
	if err != nil {
		return domain.Campaign{}, err
	}

	key := ReleaseKey(input.CampaignID, input.Index)
	conf, err := e.settler.Settle(ctx, port.TransferInstruction{
		IdempotencyKey: key,
		Kind:           port.TransferRelease,
		CampaignID:     input.CampaignID,
		To:             to,
		Amount:         amount,
	})
	if err != nil {
		e.dropReservation(ctx, input.CampaignID, input.Index, token)
		return domain.Campaign{}, err
	}

	// the transfer is confirmed: record it even if the request was cancelled
	c, err := e.repo.Update(context.WithoutCancel(ctx), input.CampaignID, func(c *domain.Campaign) error {
		now := e.clock.Now().UTC()
		m := &c.Milestones[input.Index]
		if m.IsReleased {
			return domain.Conflictf("milestone %d of campaign %s is already released", input.Index, c.ID)
		}
		if m.Pending == nil {
			// reservation dropped by a failed attempt that shared the key
			if _, err := checkRelease(c, input.Index, input.Caller, now, e.reservationTimeout); err != nil {
				return err
			}
		}
		m.IsReleased = true
		m.Pending = nil
		m.ReleaseDate = &now
		m.SettlementRef = conf.Reference
		if proof := strings.TrimSpace(input.Proof); proof != "" {
			m.Proof = &proof
		}
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		e.logger.Error("settled release not recorded",
			slog.String("campaign_id", input.CampaignID),
			slog.Int("index", input.Index),
			slog.String("idempotency_key", key),
			slog.String("settlement_ref", conf.Reference),
			slog.Any("error", err))
		return domain.Campaign{}, err
	}
	e.logger.Info("milestone released",
		slog.String("campaign_id", c.ID),
		slog.Int("index", input.Index),
		slog.String("amount", amount.String()),
		slog.String("settlement_ref", conf.Reference))
	return c, nil
}

// dropReservation clears the reservation made under token. A reservation
// taken over by another attempt is left alone.
func (e *Escrow) dropReservation(ctx context.Context, id string, index int, token string) {
	_, err := e.repo.Update(context.WithoutCancel(ctx), id, func(c *domain.Campaign) error {
		m := &c.Milestones[index]
		if m.IsReleased || m.Pending == nil || m.Pending.Token != token {
			return nil
		}
		m.Pending = nil
		c.UpdatedAt = e.clock.Now().UTC()
		return nil
	})
	if err != nil {
		e.logger.Error("drop milestone reservation",
			slog.String("campaign_id", id),
			slog.Int("index", index),
			slog.Any("error", err))
	}
}

func (e *Escrow) GetEscrowSummary(ctx context.Context, id string) (domain.EscrowSummary, error) {
	c, err := e.repo.Get(ctx, id)
	if err != nil {
		return domain.EscrowSummary{}, err
	}
	return c.Escrow(), nil
}
