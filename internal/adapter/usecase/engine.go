package usecase

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"medfund/internal/core/port"
)

// Options tunes the engine's policies.
type Options struct {
	// ApprovalThreshold is the inclusive approve ratio that activates a
	// pending campaign.
	ApprovalThreshold decimal.Decimal
	// ApprovalQuorum is the number of votes required before the ratio is
	// evaluated. Values below 1 mean 1.
	ApprovalQuorum int
	// SettlementPool is the custody account transfers are sent from.
	SettlementPool string
	Retry          RetryPolicy
	// ReservationTimeout is how long a milestone stays reserved for an
	// unfinished release before another release attempt may take it over.
	ReservationTimeout time.Duration
}

// DefaultReservationTimeout bounds a release attempt that never finished.
const DefaultReservationTimeout = 5 * time.Minute

// DefaultApprovalThreshold is the community approval ratio (60%).
var DefaultApprovalThreshold = decimal.NewFromFloat(0.60)

// Collaborators groups the outbound ports the engine depends on.
type Collaborators struct {
	Repo       port.CampaignRepository
	Identity   port.IdentityService
	Access     port.AccessControl
	Settlement port.SettlementLedger
}

// deps is shared by every component.
type deps struct {
	repo   port.CampaignRepository
	clock  clockwork.Clock
	logger *slog.Logger
}

// Engine wires the five campaign components together and implements
// port.CampaignEngine.
type Engine struct {
	*Lifecycle
	*Ledger
	*Voting
	*Escrow
	*Refunds
}

var _ port.CampaignEngine = (*Engine)(nil)

// NewEngine creates the engine. A nil clock means the wall clock.
func NewEngine(c Collaborators, opts Options, clock clockwork.Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ApprovalThreshold.IsZero() {
		opts.ApprovalThreshold = DefaultApprovalThreshold
	}
	if opts.ApprovalQuorum < 1 {
		opts.ApprovalQuorum = 1
	}
	if opts.ReservationTimeout <= 0 {
		opts.ReservationTimeout = DefaultReservationTimeout
	}

	d := deps{repo: c.Repo, clock: clock, logger: logger}
	settler := NewSettler(c.Settlement, opts.SettlementPool, opts.Retry, logger)
	lifecycle := NewLifecycle(d, c.Identity, c.Access)
	return &Engine{
		Lifecycle: lifecycle,
		Ledger:    &Ledger{deps: d, lifecycle: lifecycle},
		Voting: &Voting{
			deps:      d,
			lifecycle: lifecycle,
			access:    c.Access,
			threshold: opts.ApprovalThreshold,
			quorum:    opts.ApprovalQuorum,
		},
		Escrow:  &Escrow{deps: d, settler: settler, reservationTimeout: opts.ReservationTimeout},
		Refunds: &Refunds{deps: d, settler: settler},
	}
}
