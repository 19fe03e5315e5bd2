package port

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ErrTransferRejected marks a settlement failure that retrying cannot fix
// (unknown recipient, insufficient pool balance). Other errors are transient.
var ErrTransferRejected = errors.New("transfer rejected")

// TransferKind tells the settlement layer why value moves.
type TransferKind string

const (
	TransferRelease TransferKind = "milestone_release"
	TransferRefund  TransferKind = "refund"
)

// TransferInstruction asks the settlement layer to move Amount from the
// campaign pool to To. Replaying an instruction with the same IdempotencyKey
// must not move value twice.
type TransferInstruction struct {
	IdempotencyKey string          `json:"idempotencyKey"`
	Kind           TransferKind    `json:"kind"`
	CampaignID     string          `json:"campaignId"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	Amount         decimal.Decimal `json:"amount"`
}

// TransferConfirmation is the settlement layer's receipt.
type TransferConfirmation struct {
	IdempotencyKey string    `json:"idempotencyKey"`
	Reference      string    `json:"reference"`
	ConfirmedAt    time.Time `json:"confirmedAt"`
}

// SettlementLedger moves value. It is the system of record for custody.
type SettlementLedger interface {
	Transfer(ctx context.Context, instr TransferInstruction) (TransferConfirmation, error)
}

// IdentityService answers KYC questions about account addresses.
type IdentityService interface {
	IsKYCVerified(ctx context.Context, address string) (bool, error)
}

// AccessControl answers whether an address holds the administrative capability.
type AccessControl interface {
	IsAdmin(ctx context.Context, address string) (bool, error)
}

// DocumentStore keeps uploaded supporting documents and returns an opaque
// content reference. The engine stores references without interpreting them.
type DocumentStore interface {
	Put(ctx context.Context, r io.Reader) (string, error)
}
