package pricing

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ComputeFreeItems evaluates the configuration's free-goods mechanism against
// the matched line and returns the earned awards. A rule that cannot award
// anything (unconfigured thresholds, missing free item reference, zero
// buckets) yields no awards and never an error.
//
// The order_total mechanism is approximated against the current line only; a
// full implementation would take the whole order's lines as context.
func ComputeFreeItems(pc Context, cfg Configuration, line Line, log zerolog.Logger) []FreeItemAward {
	fg := line.FreeGoods
	if cfg.FreeMechanism == FreeNone || !fg.FreeQty.IsPositive() {
		return nil
	}

	// Threshold checks on amount use the line's undiscounted price.
	lineAmount := pc.Quantity.Mul(line.Price)

	var awards []FreeItemAward
	switch cfg.FreeMechanism {
	case FreeSameItem:
		qty := sameItemQty(pc.Quantity, lineAmount, cfg.FreeAttribution, fg, log)
		if qty.IsPositive() {
			awards = append(awards, FreeItemAward{
				ItemRef:       pc.ItemRef,
				Quantity:      qty,
				UnitOfMeasure: pc.UnitOfMeasure,
				Mechanism:     FreeSameItem,
			})
		}

	case FreeOtherItem:
		if fg.FreeItemRef == "" {
			log.Warn().Str("configuration", cfg.Code).Msg("other-item free goods without a free item reference")
			return nil
		}
		qty := otherItemQty(pc.Quantity, lineAmount, cfg.FreeAttribution, fg, log)
		if qty.IsPositive() {
			awards = append(awards, FreeItemAward{
				ItemRef:       fg.FreeItemRef,
				Quantity:      qty,
				UnitOfMeasure: pc.UnitOfMeasure,
				Mechanism:     FreeOtherItem,
			})
		}

	case FreeOrderTotal:
		log.Debug().Str("configuration", cfg.Code).Msg("order-total free goods approximated with the current line")
		var qty decimal.Decimal
		itemRef := pc.ItemRef
		if fg.FreeItemRef != "" {
			itemRef = fg.FreeItemRef
			qty = otherItemQty(pc.Quantity, lineAmount, cfg.FreeAttribution, fg, log)
		} else {
			qty = sameItemQty(pc.Quantity, lineAmount, cfg.FreeAttribution, fg, log)
		}
		if qty.IsPositive() {
			awards = append(awards, FreeItemAward{
				ItemRef:       itemRef,
				Quantity:      qty,
				UnitOfMeasure: pc.UnitOfMeasure,
				Mechanism:     FreeOrderTotal,
			})
		}
	}
	return awards
}

// sameItemQty implements the N-for-M award: multiple attribution divides the
// excess beyond the threshold into buckets.
func sameItemQty(orderedQty, lineAmount decimal.Decimal, attribution FreeAttribution, fg FreeGoodsParams, log zerolog.Logger) decimal.Decimal {
	switch {
	case fg.QtyThreshold.IsPositive():
		if orderedQty.LessThan(fg.QtyThreshold) {
			return decimal.Zero
		}
		return attributedQty(attribution, orderedQty.Sub(fg.QtyThreshold), fg.QtyBucket, fg.FreeQty, log)
	case fg.AmountThreshold.IsPositive():
		if lineAmount.LessThan(fg.AmountThreshold) {
			return decimal.Zero
		}
		return attributedQty(attribution, lineAmount.Sub(fg.AmountThreshold), fg.AmountBucket, fg.FreeQty, log)
	default:
		return decimal.Zero
	}
}

// otherItemQty awards a different item: multiple attribution buckets the
// whole ordered quantity or line amount, not just the excess.
func otherItemQty(orderedQty, lineAmount decimal.Decimal, attribution FreeAttribution, fg FreeGoodsParams, log zerolog.Logger) decimal.Decimal {
	switch {
	case fg.QtyThreshold.IsPositive():
		if orderedQty.LessThan(fg.QtyThreshold) {
			return decimal.Zero
		}
		return attributedQty(attribution, orderedQty, fg.QtyBucket, fg.FreeQty, log)
	case fg.AmountThreshold.IsPositive():
		if lineAmount.LessThan(fg.AmountThreshold) {
			return decimal.Zero
		}
		return attributedQty(attribution, lineAmount, fg.AmountBucket, fg.FreeQty, log)
	default:
		return decimal.Zero
	}
}

func attributedQty(attribution FreeAttribution, basis, bucket, freeQty decimal.Decimal, log zerolog.Logger) decimal.Decimal {
	switch attribution {
	case AttributionThreshold:
		return freeQty
	case AttributionMultiple:
		if !bucket.IsPositive() {
			log.Warn().Msg("multiple attribution without a positive bucket size")
			return decimal.Zero
		}
		buckets := basis.Div(bucket).Round(0)
		return buckets.Mul(freeQty)
	default:
		return decimal.Zero
	}
}
