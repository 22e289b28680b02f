package model

import "time"

// Shift is a single concrete work interval produced by expanding a shift
// block over a date range. The surrounding application persists these.
type Shift struct {
	Block string // shift block name from config
	Rule  string // name of the rule that produced it, may be empty

	// InstanceKey identifies this occurrence within its block, derived from
	// the block name and start instant.
	InstanceKey string

	Start time.Time
	End   time.Time
}

// Holiday is a named date resolved for one year.
type Holiday struct {
	Name string
	Date time.Time
}
