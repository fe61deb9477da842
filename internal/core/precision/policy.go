package precision

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Mode names a rounding strategy.
type Mode string

const (
	ModeHalfUp   Mode = "half-up"
	ModeHalfEven Mode = "half-even"
	ModeDown     Mode = "down"
	ModeUp       Mode = "up"
)

// rounders maps each mode onto the shopspring rounding primitive that
// implements it. Adding a mode is one entry here plus a constant above.
var rounders = map[Mode]func(d decimal.Decimal, places int32) decimal.Decimal{
	ModeHalfUp:   decimal.Decimal.Round,
	ModeHalfEven: decimal.Decimal.RoundBank,
	ModeDown:     decimal.Decimal.RoundDown,
	ModeUp:       decimal.Decimal.RoundUp,
}

// ParseMode validates a mode string from config or rule files.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if _, ok := rounders[m]; !ok {
		return "", fmt.Errorf("unsupported rounding mode %q", s)
	}
	return m, nil
}

// Policy is a named rounding policy: a fixed number of fractional digits
// plus the mode used to get there.
type Policy struct {
	Name   string `json:"name"`
	Places int32  `json:"places"`
	Mode   Mode   `json:"mode"`
}

// Apply rounds d to the policy's precision. Applying the same policy twice
// is a no-op the second time.
func (p Policy) Apply(d decimal.Decimal) decimal.Decimal {
	round, ok := rounders[p.Mode]
	if !ok {
		round = decimal.Decimal.Round
	}
	return round(d, p.Places)
}

// Built-in policy names. Storage always carries 6 fractional digits; the
// rest are display conventions for dollars, sub-cent unit costs, unit
// costs, percentages, and CPMs.
const (
	PolicyStorage        = "storage"
	PolicyDisplayDollars = "display-dollars"
	PolicyDisplaySubcent = "display-subcent"
	PolicyUnitCost       = "unit-cost"
	PolicyPercentage     = "percentage"
	PolicyCPM            = "cpm"
)

// StoragePlaces is the fixed fractional-digit budget of the storage form.
const StoragePlaces int32 = 6

var policies = map[string]Policy{
	PolicyStorage:        {Name: PolicyStorage, Places: StoragePlaces, Mode: ModeHalfUp},
	PolicyDisplayDollars: {Name: PolicyDisplayDollars, Places: 2, Mode: ModeHalfUp},
	PolicyDisplaySubcent: {Name: PolicyDisplaySubcent, Places: 3, Mode: ModeHalfUp},
	PolicyUnitCost:       {Name: PolicyUnitCost, Places: 4, Mode: ModeHalfUp},
	PolicyPercentage:     {Name: PolicyPercentage, Places: 2, Mode: ModeHalfUp},
	PolicyCPM:            {Name: PolicyCPM, Places: 2, Mode: ModeHalfUp},
}

// ErrUnknownPolicy is returned when a policy name is not registered.
var ErrUnknownPolicy = errors.New("unknown rounding policy")

// PolicyByName returns the built-in policy registered under name.
func PolicyByName(name string) (Policy, error) {
	p, ok := policies[name]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return p, nil
}

// ApplyRounding rounds value using the named built-in policy.
func ApplyRounding(value decimal.Decimal, policyName string) (decimal.Decimal, error) {
	p, err := PolicyByName(policyName)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return p.Apply(value), nil
}
