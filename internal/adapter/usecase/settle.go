package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

// RetryPolicy bounds how long a settlement instruction is retried before the
// operation is reported as failed.
type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
}

// Settler sends transfer instructions to the settlement layer and retries
// transient failures with the same idempotency key.
type Settler struct {
	ledger port.SettlementLedger
	pool   string
	policy RetryPolicy
	logger *slog.Logger
}

func NewSettler(ledger port.SettlementLedger, pool string, policy RetryPolicy, logger *slog.Logger) *Settler {
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 100 * time.Millisecond
	}
	return &Settler{ledger: ledger, pool: pool, policy: policy, logger: logger}
}

// ReleaseKey identifies the transfer of one milestone.
func ReleaseKey(campaignID string, index int) string {
	return fmt.Sprintf("release:%s:%d", campaignID, index)
}

// RefundKey identifies the refund of one contributor on one campaign.
func RefundKey(campaignID, contributor string) string {
	return fmt.Sprintf("refund:%s:%s", campaignID, strings.ToLower(strings.TrimSpace(contributor)))
}

// Settle returns only once the settlement layer confirmed instr under its own
// idempotency key. Rejections are not retried; other failures are retried
// until the policy is exhausted.
func (s *Settler) Settle(ctx context.Context, instr port.TransferInstruction) (port.TransferConfirmation, error) {
	instr.From = s.pool
	backoff := retry.WithMaxRetries(s.policy.MaxRetries, retry.NewExponential(s.policy.BaseDelay))

	var (
		conf    port.TransferConfirmation
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		c, err := s.ledger.Transfer(ctx, instr)
		if errors.Is(err, port.ErrTransferRejected) {
			return err
		}
		if err == nil && c.IdempotencyKey != instr.IdempotencyKey {
			err = fmt.Errorf("confirmation for %q does not match instruction", c.IdempotencyKey)
		}
		if err != nil {
			s.logger.Warn("settlement attempt failed",
				slog.String("idempotency_key", instr.IdempotencyKey),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return retry.RetryableError(err)
		}
		conf = c
		return nil
	})
	if err != nil {
		s.logger.Error("settlement failed",
			slog.String("idempotency_key", instr.IdempotencyKey),
			slog.String("campaign_id", instr.CampaignID),
			slog.Int("attempts", attempt),
			slog.Any("error", err))
		return port.TransferConfirmation{}, domain.SettlementFailed(instr.IdempotencyKey, err)
	}
	s.logger.Info("settlement confirmed",
		slog.String("idempotency_key", instr.IdempotencyKey),
		slog.String("reference", conf.Reference),
		slog.String("amount", instr.Amount.String()))
	return conf, nil
}
