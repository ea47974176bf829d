package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentKind states whether an adjustment column increases or decreases the price.
type AdjustmentKind int16

const (
	KindNone AdjustmentKind = iota
	KindFee
	KindDiscount
)

// ValueKind states how an adjustment value is interpreted.
type ValueKind int16

const (
	ValueNone ValueKind = iota
	ValueFixedAmount
	ValueCumulativePercent
	ValueCascadingPercent
)

// Basis states the quantity an adjustment amount is computed against.
type Basis int16

const (
	BasisNone Basis = iota
	BasisPerUnit
	BasisPerLine
	BasisPerDocument
)

// PriceMode selects how a pricing line derives its base price.
type PriceMode int16

const (
	PriceModeCoefficient PriceMode = 1
	PriceModeFixedValue  PriceMode = 2
	PriceModeFormula     PriceMode = 3
)

// FreeMechanism selects which item a free-goods rule awards.
type FreeMechanism int16

const (
	FreeNone FreeMechanism = iota
	FreeSameItem
	FreeOtherItem
	FreeOrderTotal
)

// FreeAttribution states whether an award triggers once at a threshold or per bucket beyond it.
type FreeAttribution int16

const (
	AttributionNone FreeAttribution = iota
	AttributionThreshold
	AttributionMultiple
)

func (k AdjustmentKind) String() string {
	switch k {
	case KindFee:
		return "fee"
	case KindDiscount:
		return "discount"
	default:
		return "none"
	}
}

func (v ValueKind) String() string {
	switch v {
	case ValueFixedAmount:
		return "fixed_amount"
	case ValueCumulativePercent:
		return "cumulative_percentage"
	case ValueCascadingPercent:
		return "cascading_percentage"
	default:
		return "none"
	}
}

func (b Basis) String() string {
	switch b {
	case BasisPerUnit:
		return "per_unit"
	case BasisPerLine:
		return "per_line"
	case BasisPerDocument:
		return "per_document"
	default:
		return "none"
	}
}

func (m FreeMechanism) String() string {
	switch m {
	case FreeSameItem:
		return "same_item"
	case FreeOtherItem:
		return "other_item"
	case FreeOrderTotal:
		return "order_total"
	default:
		return "none"
	}
}

func (a FreeAttribution) String() string {
	switch a {
	case AttributionThreshold:
		return "threshold"
	case AttributionMultiple:
		return "multiple"
	default:
		return "none"
	}
}

// StructureColumn is the decoded interpretation of one adjustment column
// (0-8) of a price structure. A column missing from the resolved map is not
// configured and its raw values are ignored.
type StructureColumn struct {
	Kind      AdjustmentKind `json:"kind"`
	ValueKind ValueKind      `json:"value_kind"`
	Basis     Basis          `json:"basis"`
	Label     string         `json:"label"`
}

// Configured reports whether all three flags carry a usable value.
func (c StructureColumn) Configured() bool {
	return c.Kind != KindNone && c.ValueKind != ValueNone && c.Basis != BasisNone
}

// criteriaSlots is the number of configurable criteria per pricing rule.
const criteriaSlots = 5

// adjustmentColumns is the number of raw adjustment values per pricing line.
const adjustmentColumns = 9

// Configuration is one pricing rule header. Rules are evaluated in ascending
// priority order; a grouped rule stops the evaluation once it matched.
type Configuration struct {
	Code            string
	Priority        int
	Grouped         bool
	PriceMode       PriceMode
	StructureCode   string
	CriteriaSources [criteriaSlots]string
	FreeMechanism   FreeMechanism
	FreeAttribution FreeAttribution
}

// FreeGoodsParams are the line-level knobs of a free-goods rule.
type FreeGoodsParams struct {
	QtyThreshold    decimal.Decimal
	AmountThreshold decimal.Decimal
	QtyBucket       decimal.Decimal
	AmountBucket    decimal.Decimal
	FreeItemRef     string
	FreeQty         decimal.Decimal
}

// Line is one pricing line owned by a configuration. Lines are matched in
// ascending line-number order; the first match wins within a configuration.
type Line struct {
	ConfigurationCode string
	Number            int
	ValidFrom         time.Time
	ValidTo           time.Time
	MinQty            decimal.Decimal
	MaxQty            decimal.Decimal
	Currency          string
	UnitOfMeasure     string
	Criteria          [criteriaSlots]string
	Price             decimal.Decimal
	AdjustmentValues  [adjustmentColumns]decimal.Decimal
	CommissionCoeff   decimal.Decimal
	FreeGoods         FreeGoodsParams
}

// Adjustment is a decoded, typed fee or discount extracted from a pricing
// line. Adjustments are applied strictly in ascending column order.
type Adjustment struct {
	Column    int             `json:"column"`
	Value     decimal.Decimal `json:"value"`
	Kind      AdjustmentKind  `json:"kind"`
	ValueKind ValueKind       `json:"value_kind"`
	Basis     Basis           `json:"basis"`
	Label     string          `json:"label"`
}

// FreeItemAward is one earned gratuity.
type FreeItemAward struct {
	ItemRef       string          `json:"item_ref"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	Mechanism     FreeMechanism   `json:"mechanism"`
}

// Result is the full outcome of one pricing calculation.
type Result struct {
	CalculationID         uuid.UUID       `json:"calculation_id"`
	BasePrice             decimal.Decimal `json:"base_price"`
	UnitPrice             decimal.Decimal `json:"unit_price"`
	Adjustments           []Adjustment    `json:"adjustments"`
	FreeItems             []FreeItemAward `json:"free_items"`
	CommissionCoefficient decimal.Decimal `json:"commission_coefficient"`
	Currency              string          `json:"currency"`
	UnitOfMeasure         string          `json:"unit_of_measure"`
	ConfigurationCode     string          `json:"configuration_code"`
	StructureCode         string          `json:"structure_code"`
}

// MarshalText renders the kind for JSON payloads and log fields.
func (k AdjustmentKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses the textual kind form.
func (k *AdjustmentKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "fee":
		*k = KindFee
	case "discount":
		*k = KindDiscount
	case "none":
		*k = KindNone
	default:
		return fmt.Errorf("unknown adjustment kind %q", b)
	}
	return nil
}

func (v ValueKind) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *ValueKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "fixed_amount":
		*v = ValueFixedAmount
	case "cumulative_percentage":
		*v = ValueCumulativePercent
	case "cascading_percentage":
		*v = ValueCascadingPercent
	case "none":
		*v = ValueNone
	default:
		return fmt.Errorf("unknown value kind %q", b)
	}
	return nil
}

func (b Basis) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Basis) UnmarshalText(text []byte) error {
	switch string(text) {
	case "per_unit":
		*b = BasisPerUnit
	case "per_line":
		*b = BasisPerLine
	case "per_document":
		*b = BasisPerDocument
	case "none":
		*b = BasisNone
	default:
		return fmt.Errorf("unknown basis %q", text)
	}
	return nil
}

func (m FreeMechanism) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *FreeMechanism) UnmarshalText(b []byte) error {
	switch string(b) {
	case "same_item":
		*m = FreeSameItem
	case "other_item":
		*m = FreeOtherItem
	case "order_total":
		*m = FreeOrderTotal
	case "none":
		*m = FreeNone
	default:
		return fmt.Errorf("unknown free mechanism %q", b)
	}
	return nil
}
