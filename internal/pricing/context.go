package pricing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidContext marks contexts rejected at the construction boundary,
// before the pricing algorithm runs.
var ErrInvalidContext = errors.New("pricing: invalid context")

// Context carries everything one pricing calculation needs. It is immutable
// for the duration of the calculation.
type Context struct {
	CustomerCode     string
	ItemRef          string
	Quantity         decimal.Decimal
	Currency         string
	UnitOfMeasure    string
	OrderDate        time.Time
	Site             string
	SalesRep         string
	CustomerCategory string
	ItemCategory     string
}

// Validate rejects invalid numeric and missing identifying inputs. Matching
// gaps are never errors, but a context that cannot be priced at all is.
func (c Context) Validate() error {
	if strings.TrimSpace(c.CustomerCode) == "" {
		return fmt.Errorf("%w: customer code is required", ErrInvalidContext)
	}
	if strings.TrimSpace(c.ItemRef) == "" {
		return fmt.Errorf("%w: item reference is required", ErrInvalidContext)
	}
	if strings.TrimSpace(c.Currency) == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidContext)
	}
	if strings.TrimSpace(c.UnitOfMeasure) == "" {
		return fmt.Errorf("%w: unit of measure is required", ErrInvalidContext)
	}
	if !c.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidContext, c.Quantity)
	}
	return nil
}

// Criterion sources a configuration can map a criteria slot to. Unknown
// sources resolve to the empty string and the slot is ignored during
// matching.
const (
	SourceItemRef          = "item.ref"
	SourceItemCategory     = "item.category"
	SourceCustomerCode     = "customer.code"
	SourceCustomerCategory = "customer.category"
	SourceCustomerSite     = "customer.site"
	SourceSalesRep         = "customer.sales_rep"
	SourceLineCurrency     = "line.currency"
	SourceLineUOM          = "line.uom"
)

// criterionValue resolves a configured criterion source against the context.
func (c Context) criterionValue(source string) string {
	switch source {
	case SourceItemRef:
		return c.ItemRef
	case SourceItemCategory:
		return c.ItemCategory
	case SourceCustomerCode:
		return c.CustomerCode
	case SourceCustomerCategory:
		return c.CustomerCategory
	case SourceCustomerSite:
		return c.Site
	case SourceSalesRep:
		return c.SalesRep
	case SourceLineCurrency:
		return c.Currency
	case SourceLineUOM:
		return c.UnitOfMeasure
	default:
		return ""
	}
}
