package pricing

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestDeriveBasePriceFixedValue(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "CFG1", PriceMode: PriceModeFixedValue}
	line := Line{Price: dec("19.90")}
	got, err := DeriveBasePrice(context.Background(), &fakeQuerier{}, matcherContext(), line, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("19.90")) {
		t.Fatalf("expected 19.90, got %s", got)
	}
}

func TestDeriveBasePriceCoefficient(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{basePrices: map[string]decimal.Decimal{"ITEM-1": dec("40")}}
	cfg := Configuration{Code: "CFG1", PriceMode: PriceModeCoefficient}
	line := Line{Price: dec("1.5")}

	got, err := DeriveBasePrice(context.Background(), q, matcherContext(), line, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("60")) {
		t.Fatalf("expected 60, got %s", got)
	}

	// Missing master price degrades to zero instead of failing.
	got, err = DeriveBasePrice(context.Background(), &fakeQuerier{}, matcherContext(), line, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero without a master price, got %s", got)
	}
}

func TestDeriveBasePriceFormulaFallsBack(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "CFG1", PriceMode: PriceModeFormula}
	line := Line{Price: dec("7.25")}
	got, err := DeriveBasePrice(context.Background(), &fakeQuerier{}, matcherContext(), line, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("7.25")) {
		t.Fatalf("expected direct value fallback, got %s", got)
	}
}

func TestExtractAdjustments(t *testing.T) {
	t.Parallel()

	structure := map[int]StructureColumn{
		0: {Kind: KindDiscount, ValueKind: ValueCumulativePercent, Basis: BasisPerUnit, Label: "promo"},
		2: {Kind: KindFee, ValueKind: ValueFixedAmount, Basis: BasisPerLine, Label: "freight"},
	}
	line := Line{ConfigurationCode: "CFG1"}
	line.AdjustmentValues[0] = dec("10")
	line.AdjustmentValues[1] = dec("5") // no structure entry, skipped
	line.AdjustmentValues[2] = dec("-3.50")

	adjustments := ExtractAdjustments(line, structure, zerolog.Nop())
	if len(adjustments) != 2 {
		t.Fatalf("expected 2 adjustments, got %d", len(adjustments))
	}
	if adjustments[0].Column != 0 || adjustments[0].Kind != KindDiscount || adjustments[0].Label != "promo" {
		t.Fatalf("unexpected first adjustment %+v", adjustments[0])
	}
	// Sign lives in the kind; the magnitude is always positive.
	if !adjustments[1].Value.Equal(dec("3.50")) {
		t.Fatalf("expected absolute value 3.50, got %s", adjustments[1].Value)
	}
}

func TestExtractAdjustmentsSkipsZeroValues(t *testing.T) {
	t.Parallel()

	structure := map[int]StructureColumn{
		0: {Kind: KindDiscount, ValueKind: ValueCumulativePercent, Basis: BasisPerUnit},
	}
	line := Line{ConfigurationCode: "CFG1"}
	if adjustments := ExtractAdjustments(line, structure, zerolog.Nop()); len(adjustments) != 0 {
		t.Fatalf("expected no adjustments for zero raw values, got %d", len(adjustments))
	}
}
