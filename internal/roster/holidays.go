package roster

import (
	"sort"

	appLog "rostercal/internal/log"
	"rostercal/internal/model"
	"rostercal/internal/rule"
)

// ResolveHolidays resolves every rule for each year in [fromYear, toYear],
// ordered by date. A rule whose occurrence does not exist in a given year
// is logged and skipped for that year.
func ResolveHolidays(rules []rule.DateRule, fromYear, toYear int) []model.Holiday {
	if toYear < fromYear {
		return nil
	}
	out := make([]model.Holiday, 0, len(rules)*(toYear-fromYear+1))
	for year := fromYear; year <= toYear; year++ {
		for _, r := range rules {
			d, err := r.ResolveDate(year)
			if err != nil {
				appLog.Error("holiday skipped", err, "holiday", r.Name, "year", year)
				continue
			}
			out = append(out, model.Holiday{Name: r.Name, Date: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
