// Package runconfig holds the two pieces of shared run state that
// fits2db.c kept as global mutable variables: option flags (here,
// RunConfig, built once and never mutated) and the serial counter / PRNG
// (here, RunState, mutated once per row and passed by reference).
package runconfig

import (
	"math/rand"

	"github.com/noaodatalab/fits2db/internal/schema"
)

// RunConfig is the immutable set of choices for one invocation, built once
// from CLI flags, an optional config file, and environment fallbacks, then
// passed by value or pointer through FileLoop, RowDriver, and CellEmitter.
type RunConfig struct {
	Table  string
	DBName string

	Format  schema.Format
	Dialect schema.Dialect

	Delimiter byte
	QuoteChar byte
	Quote     schema.QuoteMode
	Strip     bool
	Explode   bool

	Binary   bool
	Bundle   int
	Chunk    int
	Header   bool
	Single   bool
	Create   bool
	Drop     bool
	Truncate bool
	OID      bool
	NoLoad   bool

	Debug   bool
	Verbose bool
	Noop    bool

	AddColumn string
	SidColumn string
	RidColumn string

	ExtNum   int
	ExtName  string
	RowRange string
	Select   string

	Concat bool
	Output string
}

// SchemaOptions projects the subset of RunConfig that schema derivation
// needs into a schema.Options value.
func (rc RunConfig) SchemaOptions() schema.Options {
	return schema.Options{
		Explode:   rc.Explode,
		Quote:     rc.Quote,
		Format:    rc.Format,
		Dialect:   rc.Dialect,
		AddColumn: rc.AddColumn,
		SidColumn: rc.SidColumn,
		RidColumn: rc.RidColumn,
	}
}

// RunState holds the two pieces of state that must be shared and mutated
// across every file and row of one run: the monotonic serial counter
// (never reset within a run) and a single PRNG seeded once at startup.
type RunState struct {
	Serial int64
	Rand   *rand.Rand
}

// NewRunState seeds a RunState's PRNG with the given seed (normally derived
// from wall-clock time by the caller at process start, once).
func NewRunState(seed int64) *RunState {
	return &RunState{Rand: rand.New(rand.NewSource(seed))}
}

// NextSerial returns the next value of the shared serial counter and
// advances it.
func (s *RunState) NextSerial() int64 {
	v := s.Serial
	s.Serial++
	return v
}

// NextRandom returns a uniformly distributed float in [0, 100).
func (s *RunState) NextRandom() float64 {
	return s.Rand.Float64() * 100
}
