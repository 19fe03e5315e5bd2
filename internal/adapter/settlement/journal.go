package settlement

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"medfund/internal/core/port"
)

// Journal is an in-process sandbox ledger for the memory store. It confirms
// every instruction once and replays the original confirmation for a repeated
// idempotency key.
type Journal struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	entries map[string]journalEntry
}

type journalEntry struct {
	instr port.TransferInstruction
	conf  port.TransferConfirmation
}

var _ port.SettlementLedger = (*Journal)(nil)

func NewJournal(clock clockwork.Clock) *Journal {
	return &Journal{clock: clock, entries: make(map[string]journalEntry)}
}

func (j *Journal) Transfer(ctx context.Context, instr port.TransferInstruction) (port.TransferConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return port.TransferConfirmation{}, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if e, ok := j.entries[instr.IdempotencyKey]; ok {
		if e.instr.To != instr.To || !e.instr.Amount.Equal(instr.Amount) {
			return port.TransferConfirmation{}, fmt.Errorf("%w: idempotency key %s reused with a different payload",
				port.ErrTransferRejected, instr.IdempotencyKey)
		}
		return e.conf, nil
	}
	conf := port.TransferConfirmation{
		IdempotencyKey: instr.IdempotencyKey,
		Reference:      uuid.NewString(),
		ConfirmedAt:    j.clock.Now().UTC(),
	}
	j.entries[instr.IdempotencyKey] = journalEntry{instr: instr, conf: conf}
	return conf, nil
}

// Total sums every confirmed transfer sent to address.
func (j *Journal) Total(address string) decimal.Decimal {
	j.mu.Lock()
	defer j.mu.Unlock()
	total := decimal.Zero
	for _, e := range j.entries {
		if e.instr.To == address {
			total = total.Add(e.instr.Amount)
		}
	}
	return total
}

// Len is the number of distinct transfers recorded.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}
