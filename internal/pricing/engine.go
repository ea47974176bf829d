package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/pricing-engine/internal/obs"
)

// ConversionHooks post-process a finished result. The default hooks are the
// identity; multi-currency and unit conversion plug in here.
type ConversionHooks interface {
	ConvertCurrency(ctx context.Context, res Result, pc Context) (Result, error)
	ConvertUnit(ctx context.Context, res Result, pc Context) (Result, error)
}

// Engine runs pricing calculations over the read-only reference dataset.
// Calculations are pure and independent; the only shared state is the
// structure resolver cache.
type Engine struct {
	Q          Querier
	Structures *StructureResolver
	Log        zerolog.Logger
	Hooks      ConversionHooks

	// BatchConcurrency caps parallel calculations in CalculateBatch;
	// values below 1 fall back to a serial pass.
	BatchConcurrency int

	// Now supplies the default order date; nil means time.Now.
	Now func() time.Time
}

// Calculate produces the pricing result for one context.
//
// Rules are walked in ascending priority: the first matching line of each
// configuration contributes adjustments and free goods; the first positive
// base price wins; a grouped configuration stops the walk. The accumulated,
// column-ordered adjustments are then applied in a single pass.
func (e *Engine) Calculate(ctx context.Context, pc Context) (Result, error) {
	ctx, span := otel.Tracer("pricing").Start(ctx, "pricing.calculate")
	defer span.End()

	start := time.Now()
	if err := pc.Validate(); err != nil {
		e.observe("invalid", start)
		return Result{}, err
	}
	if pc.OrderDate.IsZero() {
		pc.OrderDate = e.now()
	}

	calcID := uuid.New()
	span.SetAttributes(
		attribute.String("pricing.calculation_id", calcID.String()),
		attribute.String("pricing.item", pc.ItemRef),
	)
	log := e.Log.With().
		Stringer("calculation_id", calcID).
		Str("customer", pc.CustomerCode).
		Str("item", pc.ItemRef).
		Logger()

	res := Result{
		CalculationID:         calcID,
		CommissionCoefficient: decimal.NewFromInt(1),
		Currency:              pc.Currency,
		UnitOfMeasure:         pc.UnitOfMeasure,
	}

	configs, err := e.Q.ActiveConfigurations(ctx)
	if err != nil {
		e.observe("dataset_error", start)
		return Result{}, err
	}

	priceAsserted := false
	for _, cfg := range configs {
		lines, err := e.Q.LinesByConfiguration(ctx, cfg.Code)
		if err != nil {
			e.observe("dataset_error", start)
			return Result{}, err
		}
		matched := MatchLines(cfg, lines, pc)
		if len(matched) == 0 {
			continue
		}
		line := matched[0]
		log.Debug().Str("configuration", cfg.Code).Int("line", line.Number).Msg("pricing line matched")

		price, err := DeriveBasePrice(ctx, e.Q, pc, line, cfg, log)
		if err != nil {
			e.observe("dataset_error", start)
			return Result{}, err
		}
		if !priceAsserted && price.IsPositive() {
			res.BasePrice = price
			res.ConfigurationCode = cfg.Code
			res.StructureCode = cfg.StructureCode
			priceAsserted = true
		}

		structure, err := e.Structures.Resolve(ctx, cfg.StructureCode)
		if err != nil {
			e.observe("dataset_error", start)
			return Result{}, err
		}
		res.Adjustments = append(res.Adjustments, ExtractAdjustments(line, structure, log)...)

		awards := ComputeFreeItems(pc, cfg, line, log)
		for _, award := range awards {
			observeFreeAward(award.Mechanism)
		}
		res.FreeItems = append(res.FreeItems, awards...)

		if !line.CommissionCoeff.IsZero() {
			res.CommissionCoefficient = line.CommissionCoeff
		}

		if cfg.Grouped {
			log.Debug().Str("configuration", cfg.Code).Msg("grouped configuration, stopping rule walk")
			break
		}
	}

	res.UnitPrice = ApplyAdjustments(res.BasePrice, pc.Quantity, res.Adjustments)

	if e.Hooks != nil {
		if res, err = e.Hooks.ConvertCurrency(ctx, res, pc); err != nil {
			e.observe("conversion_error", start)
			return Result{}, err
		}
		if res, err = e.Hooks.ConvertUnit(ctx, res, pc); err != nil {
			e.observe("conversion_error", start)
			return Result{}, err
		}
	}

	outcome := "priced"
	if !priceAsserted {
		outcome = "no_match"
	}
	e.observe(outcome, start)
	log.Info().
		Str("outcome", outcome).
		Stringer("base_price", res.BasePrice).
		Stringer("unit_price", res.UnitPrice).
		Int("adjustments", len(res.Adjustments)).
		Int("free_items", len(res.FreeItems)).
		Msg("pricing calculated")
	return res, nil
}

// CalculateBatch prices independent contexts concurrently. Results keep the
// input order. The first error cancels the remaining work.
func (e *Engine) CalculateBatch(ctx context.Context, contexts []Context) ([]Result, error) {
	results := make([]Result, len(contexts))
	g, ctx := errgroup.WithContext(ctx)
	limit := e.BatchConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, pc := range contexts {
		g.Go(func() error {
			res, err := e.Calculate(ctx, pc)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) observe(outcome string, start time.Time) {
	if obs.PricingCalculationsTotal != nil {
		obs.PricingCalculationsTotal.WithLabelValues(outcome).Inc()
	}
	if obs.PricingCalculationDuration != nil {
		obs.PricingCalculationDuration.WithLabelValues(outcome).Observe(obs.DurationMillis(time.Since(start)))
	}
}

func observeFreeAward(mechanism FreeMechanism) {
	if obs.FreeItemAwardsTotal != nil {
		obs.FreeItemAwardsTotal.WithLabelValues(mechanism.String()).Inc()
	}
}
