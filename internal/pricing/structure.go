package pricing

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pricing-engine/internal/obs"
)

// StructureResolver is a read-through cache of decoded price structures. The
// in-process map is the first level; an optional Redis layer is the second.
// Entries are written atomically as whole maps, so concurrent misses for the
// same code at worst perform redundant idempotent work.
type StructureResolver struct {
	q     Querier
	cache *StructureCache
	log   zerolog.Logger

	mu    sync.RWMutex
	local map[string]map[int]StructureColumn
}

// NewStructureResolver constructs a resolver. cache may be nil.
func NewStructureResolver(q Querier, cache *StructureCache, log zerolog.Logger) *StructureResolver {
	return &StructureResolver{
		q:     q,
		cache: cache,
		log:   log,
		local: make(map[string]map[int]StructureColumn),
	}
}

// Resolve returns the decoded column map for a structure code. An empty code
// or an unknown structure resolves to an empty map, never an error.
func (r *StructureResolver) Resolve(ctx context.Context, code string) (map[int]StructureColumn, error) {
	if code == "" {
		return map[int]StructureColumn{}, nil
	}

	r.mu.RLock()
	columns, ok := r.local[code]
	r.mu.RUnlock()
	if ok {
		observeCacheLookup("hit_local")
		return columns, nil
	}

	if cached, found, err := r.cache.Get(ctx, code); err != nil {
		// A degraded shared cache must not fail the calculation.
		r.log.Warn().Err(err).Str("structure", code).Msg("structure cache read failed")
	} else if found {
		observeCacheLookup("hit_shared")
		r.store(code, cached)
		return cached, nil
	}

	observeCacheLookup("miss")
	columns, err := r.q.StructureColumns(ctx, code)
	if err != nil {
		return nil, err
	}
	r.log.Debug().Str("structure", code).Int("columns", len(columns)).Msg("loaded price structure")

	if err := r.cache.Set(ctx, code, columns); err != nil {
		r.log.Warn().Err(err).Str("structure", code).Msg("structure cache write failed")
	}
	r.store(code, columns)
	return columns, nil
}

// Invalidate drops every cached structure. Call it after the reference
// dataset has been refreshed.
func (r *StructureResolver) Invalidate(ctx context.Context) {
	r.mu.Lock()
	codes := make([]string, 0, len(r.local))
	for code := range r.local {
		codes = append(codes, code)
	}
	r.local = make(map[string]map[int]StructureColumn)
	r.mu.Unlock()

	if err := r.cache.Delete(ctx, codes...); err != nil {
		r.log.Warn().Err(err).Msg("structure cache invalidation failed")
	}
}

func (r *StructureResolver) store(code string, columns map[int]StructureColumn) {
	r.mu.Lock()
	r.local[code] = columns
	r.mu.Unlock()
}

func observeCacheLookup(result string) {
	if obs.StructureCacheLookups != nil {
		obs.StructureCacheLookups.WithLabelValues(result).Inc()
	}
}
