package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ApplyAdjustments runs the ordered adjustment pass over the base unit price
// and returns the final unit price, clamped to zero and rounded half-up to
// two decimal places.
//
// Cumulative percentages apply to the running value; cascading percentages
// always apply to the original, pre-adjustment value. Per-unit amounts move
// the unit price directly; per-line amounts move the line total and are
// redistributed back to the unit price. The per-document basis is applied
// like per-line: the engine prices one line at a time, so the line total is
// the closest available approximation of the document total.
func ApplyAdjustments(basePrice, quantity decimal.Decimal, adjustments []Adjustment) decimal.Decimal {
	if len(adjustments) == 0 || basePrice.IsZero() {
		return clampRound(basePrice)
	}

	ordered := make([]Adjustment, len(adjustments))
	copy(ordered, adjustments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Column < ordered[j].Column })

	unitPrice := basePrice
	originalUnitPrice := basePrice
	originalLineTotal := basePrice.Mul(quantity)
	lineTotal := originalLineTotal

	for _, adj := range ordered {
		var amount decimal.Decimal
		switch adj.Basis {
		case BasisPerUnit:
			switch adj.ValueKind {
			case ValueFixedAmount:
				amount = adj.Value
			case ValueCumulativePercent:
				amount = unitPrice.Mul(adj.Value).Div(hundred)
			case ValueCascadingPercent:
				amount = originalUnitPrice.Mul(adj.Value).Div(hundred)
			default:
				continue
			}
			if adj.Kind == KindDiscount {
				unitPrice = unitPrice.Sub(amount)
			} else {
				unitPrice = unitPrice.Add(amount)
			}
			lineTotal = unitPrice.Mul(quantity)

		case BasisPerLine, BasisPerDocument:
			switch adj.ValueKind {
			case ValueFixedAmount:
				// Applied once to the whole line, not per unit.
				amount = adj.Value
			case ValueCumulativePercent:
				amount = lineTotal.Mul(adj.Value).Div(hundred)
			case ValueCascadingPercent:
				amount = originalLineTotal.Mul(adj.Value).Div(hundred)
			default:
				continue
			}
			if adj.Kind == KindDiscount {
				lineTotal = lineTotal.Sub(amount)
			} else {
				lineTotal = lineTotal.Add(amount)
			}
			unitPrice = lineTotal.Div(quantity)

		default:
			continue
		}
	}

	return clampRound(unitPrice)
}

func clampRound(unitPrice decimal.Decimal) decimal.Decimal {
	if unitPrice.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return unitPrice.Round(2)
}
