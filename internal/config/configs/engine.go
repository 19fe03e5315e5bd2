package configs

import (
	"time"

	"github.com/shopspring/decimal"
)

// Engine tunes the campaign rules.
type Engine struct {
	// ApprovalThreshold is the inclusive approve ratio that activates a
	// pending campaign.
	ApprovalThreshold decimal.Decimal `env:"APPROVAL_THRESHOLD" envDefault:"0.60"`
	// ApprovalQuorum is the number of votes needed before the ratio counts.
	ApprovalQuorum int `env:"APPROVAL_QUORUM" envDefault:"1"`
	// Admins hold the administrative override capability.
	Admins []string `env:"ADMINS" envSeparator:","`
	// SweepInterval is how often due campaigns are finalized.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	// ReservationTimeout is how long an unfinished milestone release blocks
	// another attempt on the same milestone.
	ReservationTimeout time.Duration `env:"RESERVATION_TIMEOUT" envDefault:"5m"`
}
