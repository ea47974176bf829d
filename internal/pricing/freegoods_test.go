package pricing

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func freeGoodsContext(qty string) Context {
	return Context{
		CustomerCode:  "C001",
		ItemRef:       "ITEM-1",
		Quantity:      dec(qty),
		Currency:      "EUR",
		UnitOfMeasure: "UN",
	}
}

func TestFreeItemsSameItemThreshold(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "FG1", FreeMechanism: FreeSameItem, FreeAttribution: AttributionThreshold}
	line := Line{
		Price: dec("10"),
		FreeGoods: FreeGoodsParams{
			QtyThreshold: dec("10"),
			FreeQty:      dec("2"),
		},
	}

	awards := ComputeFreeItems(freeGoodsContext("12"), cfg, line, zerolog.Nop())
	if len(awards) != 1 {
		t.Fatalf("expected one award, got %d", len(awards))
	}
	if awards[0].ItemRef != "ITEM-1" || !awards[0].Quantity.Equal(dec("2")) {
		t.Fatalf("unexpected award %+v", awards[0])
	}
	if awards[0].Mechanism != FreeSameItem {
		t.Fatalf("unexpected mechanism %s", awards[0].Mechanism)
	}

	// Below the threshold nothing is earned.
	if awards := ComputeFreeItems(freeGoodsContext("9"), cfg, line, zerolog.Nop()); len(awards) != 0 {
		t.Fatalf("expected no award below threshold, got %+v", awards)
	}
}

func TestFreeItemsSameItemMultipleBucketsExcess(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "FG2", FreeMechanism: FreeSameItem, FreeAttribution: AttributionMultiple}
	line := Line{
		Price: dec("10"),
		FreeGoods: FreeGoodsParams{
			QtyThreshold: dec("5"),
			QtyBucket:    dec("3"),
			FreeQty:      dec("1"),
		},
	}

	// qty 14: excess 9 over the threshold, 3 buckets of 3, one free each.
	awards := ComputeFreeItems(freeGoodsContext("14"), cfg, line, zerolog.Nop())
	if len(awards) != 1 {
		t.Fatalf("expected one award, got %d", len(awards))
	}
	if !awards[0].Quantity.Equal(dec("3")) {
		t.Fatalf("expected 3 free, got %s", awards[0].Quantity)
	}
}

func TestFreeItemsBucketCountRoundsHalfUp(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "FG3", FreeMechanism: FreeSameItem, FreeAttribution: AttributionMultiple}
	line := Line{
		Price: dec("1"),
		FreeGoods: FreeGoodsParams{
			QtyThreshold: dec("1"),
			QtyBucket:    dec("4"),
			FreeQty:      dec("1"),
		},
	}

	// qty 3: excess 2, 2/4 = 0.5 buckets, rounds half-up to 1.
	awards := ComputeFreeItems(freeGoodsContext("3"), cfg, line, zerolog.Nop())
	if len(awards) != 1 || !awards[0].Quantity.Equal(dec("1")) {
		t.Fatalf("expected a single free unit, got %+v", awards)
	}
}

func TestFreeItemsOtherItemBucketsTotal(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "FG4", FreeMechanism: FreeOtherItem, FreeAttribution: AttributionMultiple}
	line := Line{
		Price: dec("10"),
		FreeGoods: FreeGoodsParams{
			QtyThreshold: dec("5"),
			QtyBucket:    dec("7"),
			FreeItemRef:  "GIFT-1",
			FreeQty:      dec("1"),
		},
	}

	// Other-item rules bucket the whole ordered quantity: 14/7 = 2.
	awards := ComputeFreeItems(freeGoodsContext("14"), cfg, line, zerolog.Nop())
	if len(awards) != 1 {
		t.Fatalf("expected one award, got %d", len(awards))
	}
	if awards[0].ItemRef != "GIFT-1" || !awards[0].Quantity.Equal(dec("2")) {
		t.Fatalf("unexpected award %+v", awards[0])
	}
}

func TestFreeItemsOtherItemRequiresReference(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "FG5", FreeMechanism: FreeOtherItem, FreeAttribution: AttributionThreshold}
	line := Line{
		Price: dec("10"),
		FreeGoods: FreeGoodsParams{
			QtyThreshold: dec("1"),
			FreeQty:      dec("1"),
		},
	}

	if awards := ComputeFreeItems(freeGoodsContext("5"), cfg, line, zerolog.Nop()); len(awards) != 0 {
		t.Fatalf("expected no award without a free item reference, got %+v", awards)
	}
}

func TestFreeItemsAmountThresholdUsesUndiscountedLine(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "FG6", FreeMechanism: FreeSameItem, FreeAttribution: AttributionThreshold}
	line := Line{
		Price: dec("25"),
		FreeGoods: FreeGoodsParams{
			AmountThreshold: dec("100"),
			FreeQty:         dec("1"),
		},
	}

	// 4 x 25 = 100 reaches the amount threshold.
	if awards := ComputeFreeItems(freeGoodsContext("4"), cfg, line, zerolog.Nop()); len(awards) != 1 {
		t.Fatalf("expected award at amount threshold, got %+v", awards)
	}
	if awards := ComputeFreeItems(freeGoodsContext("3"), cfg, line, zerolog.Nop()); len(awards) != 0 {
		t.Fatalf("expected no award below amount threshold, got %+v", awards)
	}
}

func TestFreeItemsOrderTotalFallsBackToLine(t *testing.T) {
	t.Parallel()

	line := Line{
		Price: dec("10"),
		FreeGoods: FreeGoodsParams{
			QtyThreshold: dec("10"),
			FreeQty:      dec("1"),
		},
	}

	// Without a free item reference the context item is awarded.
	cfg := Configuration{Code: "FG7", FreeMechanism: FreeOrderTotal, FreeAttribution: AttributionThreshold}
	awards := ComputeFreeItems(freeGoodsContext("12"), cfg, line, zerolog.Nop())
	if len(awards) != 1 || awards[0].ItemRef != "ITEM-1" {
		t.Fatalf("expected same-item fallback, got %+v", awards)
	}
	if awards[0].Mechanism != FreeOrderTotal {
		t.Fatalf("expected order_total mechanism, got %s", awards[0].Mechanism)
	}

	// With a reference the named item is awarded instead.
	line.FreeGoods.FreeItemRef = "GIFT-9"
	awards = ComputeFreeItems(freeGoodsContext("12"), cfg, line, zerolog.Nop())
	if len(awards) != 1 || awards[0].ItemRef != "GIFT-9" {
		t.Fatalf("expected referenced item, got %+v", awards)
	}
}

func TestFreeItemsZeroBucketAwardsNothing(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "FG8", FreeMechanism: FreeSameItem, FreeAttribution: AttributionMultiple}
	line := Line{
		Price: dec("10"),
		FreeGoods: FreeGoodsParams{
			QtyThreshold: dec("5"),
			FreeQty:      dec("1"),
		},
	}

	if awards := ComputeFreeItems(freeGoodsContext("20"), cfg, line, zerolog.Nop()); len(awards) != 0 {
		t.Fatalf("expected no award with a zero bucket, got %+v", awards)
	}
}

func TestFreeItemsDisabledMechanism(t *testing.T) {
	t.Parallel()

	cfg := Configuration{Code: "FG9", FreeMechanism: FreeNone}
	line := Line{
		Price:     dec("10"),
		FreeGoods: FreeGoodsParams{QtyThreshold: dec("1"), FreeQty: dec("1")},
	}
	if awards := ComputeFreeItems(freeGoodsContext("100"), cfg, line, zerolog.Nop()); awards != nil {
		t.Fatalf("expected nil awards, got %+v", awards)
	}

	cfg = Configuration{Code: "FG10", FreeMechanism: FreeSameItem, FreeAttribution: AttributionThreshold}
	line.FreeGoods.FreeQty = decimal.Zero
	if awards := ComputeFreeItems(freeGoodsContext("100"), cfg, line, zerolog.Nop()); awards != nil {
		t.Fatalf("expected nil awards without a free quantity, got %+v", awards)
	}
}
