// Package finance holds the pure arithmetic behind campaign financials.
// Every function is side-effect free, takes and returns arbitrary-precision
// decimals, and never rounds: precision is applied by the calculation
// engine, not here.
package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// divisionScale is the fractional-digit budget for division results. Set
// explicitly per call instead of mutating the package-global
// decimal.DivisionPrecision.
const divisionScale = 28

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)

	// DefaultTolerance is the amount-comparison tolerance: one cent.
	DefaultTolerance = decimal.RequireFromString("0.01")
)

// Plan carries the two numeric fields the aggregate formulas read from an
// execution plan. PlannedUnits is optional; absent units are skipped.
type Plan struct {
	Budget       decimal.Decimal
	PlannedUnits *decimal.Decimal
}

// MarginPercentage computes (revenue - cost) / revenue * 100.
// Zero revenue resolves to 0 by business rule, not an error.
func MarginPercentage(revenue, cost decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return revenue.Sub(cost).DivRound(revenue, divisionScale).Mul(hundred)
}

// MarginAmount computes revenue - cost.
func MarginAmount(revenue, cost decimal.Decimal) decimal.Decimal {
	return revenue.Sub(cost)
}

// ActualUnitCost computes spend / units. Zero units resolves to 0 by
// business rule, not an error.
func ActualUnitCost(spend, units decimal.Decimal) decimal.Decimal {
	if units.IsZero() {
		return decimal.Zero
	}
	return spend.DivRound(units, divisionScale)
}

// ProfitAmount computes revenue - cost.
func ProfitAmount(revenue, cost decimal.Decimal) decimal.Decimal {
	return revenue.Sub(cost)
}

// MarkupAmount computes cost * (markupRate / 100), markupRate being a
// percentage (15 means 15%).
func MarkupAmount(cost, markupRate decimal.Decimal) decimal.Decimal {
	return cost.Mul(markupRate.DivRound(hundred, divisionScale))
}

// AggregatePlanCost sums plan budgets at full precision. Empty input sums
// to 0.
func AggregatePlanCost(plans []Plan) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plans {
		total = total.Add(p.Budget)
	}
	return total
}

// AggregatePlanUnits sums the planned units that are present, skipping
// plans without them. Empty or all-absent input sums to 0.
func AggregatePlanUnits(plans []Plan) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plans {
		if p.PlannedUnits == nil {
			continue
		}
		total = total.Add(*p.PlannedUnits)
	}
	return total
}

// UnitPriceLabel returns the pricing label for a unit type, and whether the
// price is quoted per thousand units (CPM).
func UnitPriceLabel(unitType string) (label string, perThousand bool) {
	switch strings.ToLower(unitType) {
	case "impressions":
		return "CPM", true
	case "clicks":
		return "CPC", false
	case "views":
		return "CPV", false
	case "conversions":
		return "CPA", false
	case "engagements":
		return "CPE", false
	default:
		return "Cost", false
	}
}

// FormatUnitPrice renders a unit price with its pricing label, two decimal
// dollars. Impressions are quoted per thousand, so the price is multiplied
// by 1000 before formatting. Display-only; callers needing contextual
// precision go through the engine instead.
func FormatUnitPrice(price decimal.Decimal, unitType string) string {
	label, perThousand := UnitPriceLabel(unitType)
	if perThousand {
		price = price.Mul(thousand)
	}
	return "$" + price.StringFixed(2) + " " + label
}

// CompareAmounts reports whether expected and actual agree within
// tolerance. Omitted tolerance defaults to one cent.
func CompareAmounts(expected, actual decimal.Decimal, tolerance ...decimal.Decimal) bool {
	tol := DefaultTolerance
	if len(tolerance) > 0 {
		tol = tolerance[0]
	}
	return expected.Sub(actual).Abs().LessThanOrEqual(tol)
}
