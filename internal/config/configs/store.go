package configs

import "strings"

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Store selects where campaigns live. The memory driver keeps everything in
// process and pairs with the in-memory settlement journal; it is meant for
// local runs and demos.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
	// Seed inserts demo campaigns on startup.
	Seed bool `env:"SEED" envDefault:"false"`
}

// Memory reports whether the in-process store was requested.
func (c Store) Memory() bool {
	return strings.EqualFold(strings.TrimSpace(c.Driver), StoreDriverMemory)
}
