package roster

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"rostercal/internal/daterange"
	appLog "rostercal/internal/log"
	"rostercal/internal/model"
	"rostercal/internal/scheduler"
)

const (
	defaultMaxShiftsPerBlock = 5000
)

// Block is a named scheduler, i.e. one configured shift block.
type Block struct {
	Name      string
	Scheduler scheduler.Scheduler
}

// ExpandConfig controls how blocks are expanded.
type ExpandConfig struct {
	// Range is the inclusive window shifts are generated in.
	Range daterange.DateRange

	// MaxShiftsPerBlock is a safety cap on the output of a single block. If
	// zero, defaultMaxShiftsPerBlock is used.
	MaxShiftsPerBlock int
}

// ExpandResult wraps the expanded shifts and the blocks that hit the cap.
type ExpandResult struct {
	Shifts          []model.Shift
	TruncatedBlocks []string
}

// Expand runs every block's scheduler over cfg.Range and returns the
// resulting shifts ordered by start (then block order).
func Expand(blocks []Block, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.Range.End.Before(cfg.Range.Start) {
		return result, errors.New("expand: range end is before range start")
	}
	if cfg.MaxShiftsPerBlock <= 0 {
		cfg.MaxShiftsPerBlock = defaultMaxShiftsPerBlock
	}

	shifts := make([]model.Shift, 0)
	for _, b := range blocks {
		matches := b.Scheduler.ExpandMatches(cfg.Range)
		if len(matches) > cfg.MaxShiftsPerBlock {
			matches = matches[:cfg.MaxShiftsPerBlock]
			result.TruncatedBlocks = append(result.TruncatedBlocks, b.Name)
			appLog.Error("expand: truncated shifts for block due to cap",
				errors.New("max shifts reached"),
				"block", b.Name,
				"cap", cfg.MaxShiftsPerBlock,
			)
		}
		for _, m := range matches {
			shifts = append(shifts, makeShift(b, m))
		}
		appLog.Info("block expanded", "block", b.Name, "cadence", b.Scheduler.Cadence, "shifts", len(matches))
	}

	sort.SliceStable(shifts, func(i, j int) bool {
		return shifts[i].Start.Before(shifts[j].Start)
	})
	result.Shifts = shifts
	return result, nil
}

func makeShift(b Block, m scheduler.Match) model.Shift {
	s := model.Shift{
		Block: b.Name,
		Start: m.Range.Start,
		End:   m.Range.End,
	}
	if m.RuleIndex >= 0 && m.RuleIndex < len(b.Scheduler.Rules) {
		s.Rule = b.Scheduler.Rules[m.RuleIndex].Name
	}
	s.InstanceKey = fmt.Sprintf("%s@%s", b.Name, m.Range.Start.Format(time.RFC3339Nano))
	return s
}
