package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCadence is returned by ParseCadence for unrecognised names.
var ErrUnknownCadence = errors.New("unknown cadence")

// Cadence controls how a rule set is walked across a range.
type Cadence int

const (
	None Cadence = iota
	Daily
	Weekly
	BiWeekly
	Monthly
	Yearly
)

var cadenceNames = [...]string{
	None:     "none",
	Daily:    "daily",
	Weekly:   "weekly",
	BiWeekly: "biweekly",
	Monthly:  "monthly",
	Yearly:   "yearly",
}

func (c Cadence) String() string {
	if c < 0 || int(c) >= len(cadenceNames) {
		return fmt.Sprintf("cadence(%d)", int(c))
	}
	return cadenceNames[c]
}

// ParseCadence accepts the names printed by String; "bi-weekly" and
// "fortnightly" are also understood. An empty string is None.
func ParseCadence(s string) (Cadence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "once":
		return None, nil
	case "daily":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	case "biweekly", "bi-weekly", "fortnightly":
		return BiWeekly, nil
	case "monthly":
		return Monthly, nil
	case "yearly", "annually":
		return Yearly, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownCadence, s)
}
