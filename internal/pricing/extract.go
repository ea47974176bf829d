package pricing

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DeriveBasePrice computes the undiscounted unit price a matched line
// asserts. A zero or negative result means the line asserts no price; the
// orchestrator then keeps an earlier configuration's price, if any.
func DeriveBasePrice(ctx context.Context, q Querier, pc Context, line Line, cfg Configuration, log zerolog.Logger) (decimal.Decimal, error) {
	switch cfg.PriceMode {
	case PriceModeFixedValue:
		return line.Price, nil

	case PriceModeCoefficient:
		base, err := q.ItemBasePrice(ctx, pc.ItemRef)
		if err != nil {
			return decimal.Zero, err
		}
		if !base.IsPositive() {
			// Missing master price degrades this configuration's price
			// contribution to zero without aborting the calculation.
			log.Warn().Str("item", pc.ItemRef).Str("configuration", cfg.Code).
				Msg("no master base price for coefficient pricing")
			return decimal.Zero, nil
		}
		return base.Mul(line.Price), nil

	case PriceModeFormula:
		// Formula evaluation is not implemented; fall back to the line's
		// direct value.
		log.Debug().Str("configuration", cfg.Code).Msg("formula price mode, using direct line value")
		return line.Price, nil

	default:
		return decimal.Zero, nil
	}
}

// ExtractAdjustments decodes the line's raw adjustment columns into typed
// adjustments using the resolved structure. Only columns with a non-zero raw
// value and a configured structure entry are emitted; the stored magnitude is
// always positive, the sign lives in the kind.
func ExtractAdjustments(line Line, structure map[int]StructureColumn, log zerolog.Logger) []Adjustment {
	var adjustments []Adjustment
	for i := 0; i < adjustmentColumns; i++ {
		raw := line.AdjustmentValues[i]
		if raw.IsZero() {
			continue
		}
		column, ok := structure[i]
		if !ok || !column.Configured() {
			log.Debug().Int("column", i).Str("configuration", line.ConfigurationCode).
				Msg("adjustment value without structure configuration, skipped")
			continue
		}
		adjustments = append(adjustments, Adjustment{
			Column:    i,
			Value:     raw.Abs(),
			Kind:      column.Kind,
			ValueKind: column.ValueKind,
			Basis:     column.Basis,
			Label:     column.Label,
		})
	}
	return adjustments
}
