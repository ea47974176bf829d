package pricing

import (
	"testing"
	"time"
)

func matcherContext() Context {
	return Context{
		CustomerCode:     "C001",
		ItemRef:          "ITEM-1",
		Quantity:         dec("10"),
		Currency:         "EUR",
		UnitOfMeasure:    "UN",
		OrderDate:        time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		CustomerCategory: "VIP",
	}
}

func matcherLine(number int) Line {
	return Line{
		ConfigurationCode: "CFG1",
		Number:            number,
		Currency:          "EUR",
		UnitOfMeasure:     "UN",
		Criteria:          [criteriaSlots]string{"ITEM-1", "C001"},
	}
}

func TestMatchLinesOrdersByLineNumber(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "CFG1", CriteriaSources: [criteriaSlots]string{SourceItemRef, SourceCustomerCode}}
	lines := []Line{matcherLine(30), matcherLine(10), matcherLine(20)}

	matched := MatchLines(cfg, lines, matcherContext())
	if len(matched) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matched))
	}
	for i, want := range []int{10, 20, 30} {
		if matched[i].Number != want {
			t.Fatalf("expected line %d at position %d, got %d", want, i, matched[i].Number)
		}
	}
}

func TestMatchLinesCriteria(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "CFG1", CriteriaSources: [criteriaSlots]string{SourceItemRef, SourceCustomerCode}}
	pc := matcherContext()

	other := matcherLine(1)
	other.Criteria[0] = "ITEM-2"
	if got := MatchLines(cfg, []Line{other}, pc); len(got) != 0 {
		t.Fatalf("expected criterion mismatch, got %d matches", len(got))
	}

	wildcard := matcherLine(1)
	wildcard.Criteria[0] = Wildcard
	if got := MatchLines(cfg, []Line{wildcard}, pc); len(got) != 1 {
		t.Fatalf("expected wildcard match, got %d", len(got))
	}
}

func TestMatchLinesIgnoresUnresolvableSlots(t *testing.T) {
	t.Parallel()

	// Slot 2 maps to the sales rep, which this context does not carry.
	cfg := Configuration{Code: "CFG1", CriteriaSources: [criteriaSlots]string{SourceItemRef, SourceCustomerCode, SourceSalesRep}}
	line := matcherLine(1)
	line.Criteria[2] = "REP-42"

	if got := MatchLines(cfg, []Line{line}, matcherContext()); len(got) != 1 {
		t.Fatalf("expected unresolvable slot to be ignored, got %d matches", len(got))
	}
}

func TestMatchLinesValidityWindow(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "CFG1"}
	pc := matcherContext()

	line := matcherLine(1)
	line.ValidFrom = time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if got := MatchLines(cfg, []Line{line}, pc); len(got) != 0 {
		t.Fatalf("expected order before validity to miss")
	}

	line = matcherLine(1)
	line.ValidTo = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if got := MatchLines(cfg, []Line{line}, pc); len(got) != 0 {
		t.Fatalf("expected order after validity to miss")
	}

	// Zero bounds are open-ended.
	line = matcherLine(1)
	if got := MatchLines(cfg, []Line{line}, pc); len(got) != 1 {
		t.Fatalf("expected open validity to match")
	}
}

func TestMatchLinesQuantityBounds(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "CFG1"}
	pc := matcherContext() // quantity 10

	line := matcherLine(1)
	line.MinQty = dec("11")
	if got := MatchLines(cfg, []Line{line}, pc); len(got) != 0 {
		t.Fatalf("expected quantity below minimum to miss")
	}

	line = matcherLine(1)
	line.MaxQty = dec("9")
	if got := MatchLines(cfg, []Line{line}, pc); len(got) != 0 {
		t.Fatalf("expected quantity above maximum to miss")
	}

	// Inclusive bounds and zero-as-unbounded.
	line = matcherLine(1)
	line.MinQty = dec("10")
	line.MaxQty = dec("10")
	if got := MatchLines(cfg, []Line{line}, pc); len(got) != 1 {
		t.Fatalf("expected inclusive bounds to match")
	}
}

func TestMatchLinesCurrencyAndUnit(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "CFG1"}
	pc := matcherContext()

	line := matcherLine(1)
	line.Currency = "USD"
	if got := MatchLines(cfg, []Line{line}, pc); len(got) != 0 {
		t.Fatalf("expected currency mismatch to miss")
	}

	line = matcherLine(1)
	line.UnitOfMeasure = "BOX"
	if got := MatchLines(cfg, []Line{line}, pc); len(got) != 0 {
		t.Fatalf("expected unit mismatch to miss")
	}
}

func TestMatchLinesForeignConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "CFG1"}
	line := matcherLine(1)
	line.ConfigurationCode = "CFG2"
	if got := MatchLines(cfg, []Line{line}, matcherContext()); len(got) != 0 {
		t.Fatalf("expected foreign line to be excluded")
	}
}
