package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Querier captures the reference-dataset reads the engine performs. The
// dataset is a point-in-time-consistent, read-only snapshot for the duration
// of a calculation.
type Querier interface {
	ActiveConfigurations(ctx context.Context) ([]Configuration, error)
	LinesByConfiguration(ctx context.Context, code string) ([]Line, error)
	StructureColumns(ctx context.Context, code string) (map[int]StructureColumn, error)
	ItemBasePrice(ctx context.Context, ref string) (decimal.Decimal, error)
}

// DatasetError wraps a reference-dataset access failure. It is the only
// calculation-fatal error class; everything else degrades to zero/empty
// defaults.
type DatasetError struct {
	Op  string
	Err error
}

func (e *DatasetError) Error() string { return fmt.Sprintf("pricing dataset: %s: %v", e.Op, e.Err) }

func (e *DatasetError) Unwrap() error { return e.Err }

// IsDatasetError reports whether err is (or wraps) a dataset access failure.
func IsDatasetError(err error) bool {
	var target *DatasetError
	return errors.As(err, &target)
}

// Store reads the reference dataset from PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store on top of the shared connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const listActiveConfigurationsSQL = `
SELECT code, priority, grouped, price_mode, structure_code,
       criterion_source_1, criterion_source_2, criterion_source_3, criterion_source_4, criterion_source_5,
       free_mechanism, free_attribution
FROM pricing_configurations
WHERE active
ORDER BY priority ASC`

// ActiveConfigurations returns all active pricing rules in ascending priority
// order.
func (s *Store) ActiveConfigurations(ctx context.Context) ([]Configuration, error) {
	rows, err := s.pool.Query(ctx, listActiveConfigurationsSQL)
	if err != nil {
		return nil, &DatasetError{Op: "list configurations", Err: err}
	}
	defer rows.Close()

	var configs []Configuration
	for rows.Next() {
		var cfg Configuration
		dest := []any{&cfg.Code, &cfg.Priority, &cfg.Grouped, &cfg.PriceMode, &cfg.StructureCode}
		for i := range cfg.CriteriaSources {
			dest = append(dest, &cfg.CriteriaSources[i])
		}
		dest = append(dest, &cfg.FreeMechanism, &cfg.FreeAttribution)
		if err := rows.Scan(dest...); err != nil {
			return nil, &DatasetError{Op: "scan configuration", Err: err}
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, &DatasetError{Op: "list configurations", Err: err}
	}
	return configs, nil
}

var listLinesSQL = fmt.Sprintf(`
SELECT configuration_code, line_no, valid_from, valid_to, min_qty, max_qty, currency, uom,
       %s,
       %s,
       price, commission_coeff,
       free_qty_threshold, free_amount_threshold, free_qty_bucket, free_amount_bucket,
       free_item_ref, free_qty
FROM pricing_lines
WHERE configuration_code = $1
ORDER BY line_no ASC`, columnList("criterion_%d", 1, criteriaSlots), columnList("adj_value_%d", 0, adjustmentColumns))

// LinesByConfiguration returns the configuration's pricing lines ordered by
// line number. Date, quantity, currency, and criteria matching happens in
// MatchLines so the predicate stays total and testable.
func (s *Store) LinesByConfiguration(ctx context.Context, code string) ([]Line, error) {
	rows, err := s.pool.Query(ctx, listLinesSQL, code)
	if err != nil {
		return nil, &DatasetError{Op: "list lines", Err: err}
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var line Line
		dest := []any{
			&line.ConfigurationCode, &line.Number, &line.ValidFrom, &line.ValidTo,
			&line.MinQty, &line.MaxQty, &line.Currency, &line.UnitOfMeasure,
		}
		for i := range line.Criteria {
			dest = append(dest, &line.Criteria[i])
		}
		for i := range line.AdjustmentValues {
			dest = append(dest, &line.AdjustmentValues[i])
		}
		dest = append(dest,
			&line.Price, &line.CommissionCoeff,
			&line.FreeGoods.QtyThreshold, &line.FreeGoods.AmountThreshold,
			&line.FreeGoods.QtyBucket, &line.FreeGoods.AmountBucket,
			&line.FreeGoods.FreeItemRef, &line.FreeGoods.FreeQty,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, &DatasetError{Op: "scan line", Err: err}
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, &DatasetError{Op: "list lines", Err: err}
	}
	return lines, nil
}

var getStructureSQL = fmt.Sprintf(`
SELECT %s, %s, %s, %s
FROM price_structures
WHERE code = $1`,
	columnList("kind_%d", 0, adjustmentColumns),
	columnList("value_kind_%d", 0, adjustmentColumns),
	columnList("basis_%d", 0, adjustmentColumns),
	columnList("label_%d", 0, adjustmentColumns))

// StructureColumns loads and decodes the wide structure row for one code. An
// unknown code yields an empty map: no adjustments are possible, but it is
// not an error.
func (s *Store) StructureColumns(ctx context.Context, code string) (map[int]StructureColumn, error) {
	var (
		kinds      [adjustmentColumns]AdjustmentKind
		valueKinds [adjustmentColumns]ValueKind
		bases      [adjustmentColumns]Basis
		labels     [adjustmentColumns]string
	)
	dest := make([]any, 0, 4*adjustmentColumns)
	for i := 0; i < adjustmentColumns; i++ {
		dest = append(dest, &kinds[i])
	}
	for i := 0; i < adjustmentColumns; i++ {
		dest = append(dest, &valueKinds[i])
	}
	for i := 0; i < adjustmentColumns; i++ {
		dest = append(dest, &bases[i])
	}
	for i := 0; i < adjustmentColumns; i++ {
		dest = append(dest, &labels[i])
	}

	err := s.pool.QueryRow(ctx, getStructureSQL, code).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return map[int]StructureColumn{}, nil
	}
	if err != nil {
		return nil, &DatasetError{Op: "get structure", Err: err}
	}

	columns := make(map[int]StructureColumn, adjustmentColumns)
	for i := 0; i < adjustmentColumns; i++ {
		column := StructureColumn{Kind: kinds[i], ValueKind: valueKinds[i], Basis: bases[i], Label: labels[i]}
		if column.Configured() {
			columns[i] = column
		}
	}
	return columns, nil
}

const itemBasePriceSQL = `SELECT base_price FROM items WHERE ref = $1`

// ItemBasePrice returns the item master's base price, or zero when the item
// is unknown. Coefficient pricing degrades on zero instead of failing.
func (s *Store) ItemBasePrice(ctx context.Context, ref string) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := s.pool.QueryRow(ctx, itemBasePriceSQL, ref).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, &DatasetError{Op: "get item base price", Err: err}
	}
	return price, nil
}

// columnList expands a repeated column group ("adj_value_0, adj_value_1, ...").
func columnList(format string, start, count int) string {
	parts := make([]string, 0, count)
	for i := start; i < start+count; i++ {
		parts = append(parts, fmt.Sprintf(format, i))
	}
	return strings.Join(parts, ", ")
}
