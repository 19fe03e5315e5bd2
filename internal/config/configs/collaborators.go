package configs

import "time"

// Settlement configures the ledger that moves funds. An empty URL selects the
// sandbox journal, which confirms every instruction locally.
type Settlement struct {
	URL        string        `env:"URL"`
	Pool       string        `env:"POOL" envDefault:"medfund-escrow-pool"`
	MaxRetries uint64        `env:"MAX_RETRIES" envDefault:"5"`
	BaseDelay  time.Duration `env:"BASE_DELAY" envDefault:"200ms"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Identity configures KYC checks. An empty URL selects the static Verified
// allow-list.
type Identity struct {
	URL      string        `env:"URL"`
	Verified []string      `env:"VERIFIED" envSeparator:","`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// Documents configures the local content-addressed document store.
type Documents struct {
	Dir      string `env:"DIR" envDefault:"./data/documents"`
	MaxBytes int64  `env:"MAX_BYTES" envDefault:"10485760"`
}
