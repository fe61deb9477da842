package calc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/brkthru/bravo-1-sub003/internal/core/finance"
)

// Method names a calculation. The set of methods is closed: every method
// has a typed operation struct below, and each version's formula set
// dispatches on the operation type, so a misspelled method cannot compile.
// The string form exists for formula-text lookup, rule files and callers
// that receive method names from the outside (CLI, stored metadata).
type Method string

const (
	MethodMarginPercentage   Method = "marginPercentage"
	MethodMarginAmount       Method = "marginAmount"
	MethodActualUnitCost     Method = "actualUnitCost"
	MethodProfitAmount       Method = "profitAmount"
	MethodMarkupAmount       Method = "markupAmount"
	MethodAggregatePlanCost  Method = "aggregatePlanCost"
	MethodAggregatePlanUnits Method = "aggregatePlanUnits"
)

// Op is a calculation request: one typed payload per method.
type Op interface {
	CalcMethod() Method
}

// MarginPercentage requests (revenue - cost) / revenue * 100.
type MarginPercentage struct {
	Revenue decimal.Decimal
	Cost    decimal.Decimal
}

func (MarginPercentage) CalcMethod() Method { return MethodMarginPercentage }

// MarginAmount requests revenue - cost.
type MarginAmount struct {
	Revenue decimal.Decimal
	Cost    decimal.Decimal
}

func (MarginAmount) CalcMethod() Method { return MethodMarginAmount }

// ActualUnitCost requests spend / units.
type ActualUnitCost struct {
	Spend decimal.Decimal
	Units decimal.Decimal
}

func (ActualUnitCost) CalcMethod() Method { return MethodActualUnitCost }

// ProfitAmount requests revenue - cost.
type ProfitAmount struct {
	Revenue decimal.Decimal
	Cost    decimal.Decimal
}

func (ProfitAmount) CalcMethod() Method { return MethodProfitAmount }

// MarkupAmount requests cost * (markupRate / 100).
type MarkupAmount struct {
	Cost       decimal.Decimal
	MarkupRate decimal.Decimal
}

func (MarkupAmount) CalcMethod() Method { return MethodMarkupAmount }

// AggregatePlanCost requests the full-precision sum of plan budgets.
type AggregatePlanCost struct {
	Plans []finance.Plan
}

func (AggregatePlanCost) CalcMethod() Method { return MethodAggregatePlanCost }

// AggregatePlanUnits requests the sum of present planned units.
type AggregatePlanUnits struct {
	Plans []finance.Plan
}

func (AggregatePlanUnits) CalcMethod() Method { return MethodAggregatePlanUnits }

// OpForMethod builds an operation from a method name and positional decimal
// arguments, for callers that receive both from the outside (the CLI, batch
// jobs keyed by stored metadata). Aggregate methods read each argument as
// one plan's budget or unit count. Unknown names return NotFoundError.
func OpForMethod(method Method, args []decimal.Decimal) (Op, error) {
	two := func() (decimal.Decimal, decimal.Decimal, error) {
		if len(args) != 2 {
			return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("method %q takes 2 arguments, got %d", method, len(args))
		}
		return args[0], args[1], nil
	}

	switch method {
	case MethodMarginPercentage:
		revenue, cost, err := two()
		if err != nil {
			return nil, err
		}
		return MarginPercentage{Revenue: revenue, Cost: cost}, nil
	case MethodMarginAmount:
		revenue, cost, err := two()
		if err != nil {
			return nil, err
		}
		return MarginAmount{Revenue: revenue, Cost: cost}, nil
	case MethodActualUnitCost:
		spend, units, err := two()
		if err != nil {
			return nil, err
		}
		return ActualUnitCost{Spend: spend, Units: units}, nil
	case MethodProfitAmount:
		revenue, cost, err := two()
		if err != nil {
			return nil, err
		}
		return ProfitAmount{Revenue: revenue, Cost: cost}, nil
	case MethodMarkupAmount:
		cost, rate, err := two()
		if err != nil {
			return nil, err
		}
		return MarkupAmount{Cost: cost, MarkupRate: rate}, nil
	case MethodAggregatePlanCost:
		plans := make([]finance.Plan, len(args))
		for i, a := range args {
			plans[i] = finance.Plan{Budget: a}
		}
		return AggregatePlanCost{Plans: plans}, nil
	case MethodAggregatePlanUnits:
		plans := make([]finance.Plan, len(args))
		for i := range args {
			u := args[i]
			plans[i] = finance.Plan{PlannedUnits: &u}
		}
		return AggregatePlanUnits{Plans: plans}, nil
	default:
		return nil, methodNotFound(method)
	}
}
