package pricing

import (
	"sort"
	"strings"
)

// Wildcard is the marker inside a criteria value that matches any context
// attribute. It is compared explicitly instead of expanding into pattern
// matching, so the match predicate stays total.
const Wildcard = "~"

// MatchLines filters the configuration's lines down to those applicable to
// the context, ordered by line number ascending. An empty result means the
// configuration contributes nothing; it is never an error.
func MatchLines(cfg Configuration, lines []Line, pc Context) []Line {
	matched := make([]Line, 0, len(lines))
	for _, line := range lines {
		if lineMatches(cfg, line, pc) {
			matched = append(matched, line)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Number < matched[j].Number })
	return matched
}

func lineMatches(cfg Configuration, line Line, pc Context) bool {
	if line.ConfigurationCode != cfg.Code {
		return false
	}
	if !line.ValidFrom.IsZero() && pc.OrderDate.Before(line.ValidFrom) {
		return false
	}
	if !line.ValidTo.IsZero() && pc.OrderDate.After(line.ValidTo) {
		return false
	}
	for i := 0; i < criteriaSlots; i++ {
		source := cfg.CriteriaSources[i]
		if source == "" {
			continue
		}
		expected := pc.criterionValue(source)
		if expected == "" {
			// Unresolvable mapping: the slot is ignored.
			continue
		}
		if !criterionMatches(line.Criteria[i], expected) {
			return false
		}
	}
	// A zero bound means unbounded on that side.
	if line.MinQty.IsPositive() && pc.Quantity.LessThan(line.MinQty) {
		return false
	}
	if line.MaxQty.IsPositive() && pc.Quantity.GreaterThan(line.MaxQty) {
		return false
	}
	if line.Currency != pc.Currency {
		return false
	}
	return line.UnitOfMeasure == pc.UnitOfMeasure
}

func criterionMatches(value, expected string) bool {
	if strings.Contains(value, Wildcard) {
		return true
	}
	return value == expected
}
