package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"medfund/internal/core/port"
)

// SettlementJournal is a sandbox port.SettlementLedger that confirms every
// instruction and records it in the settlement_journal table. It is used when
// no external settlement gateway is configured. A replayed idempotency key
// returns the original confirmation.
type SettlementJournal struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
}

var _ port.SettlementLedger = (*SettlementJournal)(nil)

func NewSettlementJournal(pool *pgxpool.Pool, clock clockwork.Clock) *SettlementJournal {
	return &SettlementJournal{pool: pool, clock: clock}
}

// Transfer records instr once per idempotency key.
func (j *SettlementJournal) Transfer(ctx context.Context, instr port.TransferInstruction) (port.TransferConfirmation, error) {
	conf := port.TransferConfirmation{IdempotencyKey: instr.IdempotencyKey}
	err := j.pool.QueryRow(ctx, `
        INSERT INTO settlement_journal
            (idempotency_key, kind, campaign_id, from_account, to_account, amount, reference, confirmed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (idempotency_key) DO NOTHING
        RETURNING reference, confirmed_at`,
		instr.IdempotencyKey, instr.Kind, instr.CampaignID, instr.From, instr.To, instr.Amount,
		uuid.NewString(), j.clock.Now().UTC()).Scan(&conf.Reference, &conf.ConfirmedAt)
	if err == nil {
		return conf, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return conf, fmt.Errorf("record transfer: %w", err)
	}

	// replay: hand back the original confirmation when the payload matches
	var (
		to        string
		amountStr string
		confirmed time.Time
	)
	err = j.pool.QueryRow(ctx, `
        SELECT to_account, amount::text, reference, confirmed_at
        FROM settlement_journal WHERE idempotency_key = $1`, instr.IdempotencyKey).
		Scan(&to, &amountStr, &conf.Reference, &confirmed)
	if err != nil {
		return conf, fmt.Errorf("load transfer: %w", err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return conf, fmt.Errorf("load transfer amount: %w", err)
	}
	if to != instr.To || !amount.Equal(instr.Amount) {
		return port.TransferConfirmation{}, fmt.Errorf("%w: idempotency key %s reused with a different payload",
			port.ErrTransferRejected, instr.IdempotencyKey)
	}
	conf.ConfirmedAt = confirmed
	return conf, nil
}
