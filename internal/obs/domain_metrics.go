package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PricingCalculationsTotal counts pricing calculations by outcome.
	PricingCalculationsTotal *prometheus.CounterVec
	// PricingCalculationDuration records calculation latency in milliseconds.
	PricingCalculationDuration *prometheus.HistogramVec
	// StructureCacheLookups counts price structure cache lookups by result.
	StructureCacheLookups *prometheus.CounterVec
	// FreeItemAwardsTotal counts free goods awards by mechanism.
	FreeItemAwardsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PricingCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Count of pricing calculations by outcome.",
		}, []string{"outcome"})
		PricingCalculationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_ms",
			Help:      "Pricing calculation latency in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"outcome"})
		StructureCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structure_cache_lookups_total",
			Help:      "Count of price structure cache lookups by result.",
		}, []string{"result"})
		FreeItemAwardsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "free_item_awards_total",
			Help:      "Count of free goods awards by mechanism.",
		}, []string{"mechanism"})

		mustRegisterCollector(reg, PricingCalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PricingCalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, PricingCalculationDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				PricingCalculationDuration = v
			}
		})
		mustRegisterCollector(reg, StructureCacheLookups, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				StructureCacheLookups = v
			}
		})
		mustRegisterCollector(reg, FreeItemAwardsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				FreeItemAwardsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
