package calc

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brkthru/bravo-1-sub003/internal/core/finance"
	"github.com/brkthru/bravo-1-sub003/internal/core/precision"
)

// Service wraps the engine for the two common call sites: rendering unit
// costs for display and producing storage-ready payloads.
type Service struct {
	engine *Engine
}

// NewService creates a service over the given engine.
func NewService(engine *Engine) *Service {
	return &Service{engine: engine}
}

// DisplayValue is a display-ready unit cost.
type DisplayValue struct {
	Display            string          `json:"display"`
	Value              decimal.Decimal `json:"value"` // full precision
	FormattedValue     decimal.Decimal `json:"formattedValue"`
	AppliedRule        string          `json:"appliedRule"`
	CalculationVersion string          `json:"calculationVersion"`
	CalculationID      string          `json:"calculationId"`
	CalculatedAt       time.Time       `json:"calculatedAt"`
}

// StorageValue is a storage-ready calculation: the fixed-point 6-decimal
// value plus its canonical string and the audit metadata to persist
// alongside it.
type StorageValue struct {
	Value              *precision.StorageDecimal `json:"value"`
	String             string                    `json:"string"`
	CalculationVersion string                    `json:"calculationVersion"`
	CalculationID      string                    `json:"calculationId"`
	CalculatedAt       time.Time                 `json:"calculatedAt"`
}

// inferProductType derives the pricing product type from a unit type, used
// as rounding-rule context when the caller does not know it.
func inferProductType(unitType string) string {
	switch strings.ToLower(unitType) {
	case "views":
		return "cpv"
	case "clicks":
		return "cpc"
	case "impressions":
		return "cpm"
	default:
		return "unknown"
	}
}

// FormatUnitCost computes spend/units under the platform and unit-type
// context and renders it for display. YouTube views get the sub-cent
// "$X.XXX CPV" treatment; every other combination formats at the
// engine-resolved precision with the unit's pricing label (impressions
// quoted per thousand).
func (s *Service) FormatUnitCost(spend, units decimal.Decimal, platform, unitType string) (*DisplayValue, error) {
	ctx := Context{
		Platform:    platform,
		UnitType:    unitType,
		ProductType: inferProductType(unitType),
	}

	result, err := s.engine.Calculate(ActualUnitCost{Spend: spend, Units: units}, WithContext(ctx))
	if err != nil {
		return nil, err
	}
	formatted, err := s.engine.WithPrecision(result, UseDisplay, nil)
	if err != nil {
		return nil, err
	}

	var display string
	if strings.EqualFold(platform, "youtube") && strings.EqualFold(unitType, "views") {
		display = "$" + formatted.FormattedValue.StringFixed(3) + " CPV"
	} else {
		label, perThousand := finance.UnitPriceLabel(unitType)
		amount := result.Value
		if perThousand {
			amount = amount.Mul(decimal.NewFromInt(1000))
		}
		display = "$" + amount.Round(formatted.Precision).StringFixed(formatted.Precision) + " " + label
	}

	return &DisplayValue{
		Display:            display,
		Value:              result.Value,
		FormattedValue:     formatted.FormattedValue,
		AppliedRule:        formatted.AppliedRule,
		CalculationVersion: result.CalculationVersion,
		CalculationID:      result.CalculationID,
		CalculatedAt:       result.CalculatedAt,
	}, nil
}

// CalculateForStorage evaluates op and formats it at storage precision,
// returning the fixed-point decimal and its 6-decimal string alongside the
// calculation metadata.
func (s *Service) CalculateForStorage(op Op, opts ...CalcOption) (*StorageValue, error) {
	result, err := s.engine.Calculate(op, opts...)
	if err != nil {
		return nil, err
	}
	formatted, err := s.engine.WithPrecision(result, UseStorage, nil)
	if err != nil {
		return nil, err
	}
	stored, err := precision.ToStorageForm(formatted.FormattedValue)
	if err != nil {
		return nil, err
	}

	return &StorageValue{
		Value:              stored,
		String:             stored.String(),
		CalculationVersion: result.CalculationVersion,
		CalculationID:      result.CalculationID,
		CalculatedAt:       result.CalculatedAt,
	}, nil
}
