package calc

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brkthru/bravo-1-sub003/internal/core/finance"
	"github.com/brkthru/bravo-1-sub003/internal/core/precision"
)

// Use names the intended use of a formatted value; each use has a default
// rounding policy on every version.
type Use string

const (
	UseStorage Use = "storage"
	UseDisplay Use = "display"
	UseAPI     Use = "api"
)

// ParseUse validates a use string from config or the CLI.
func ParseUse(s string) (Use, error) {
	switch Use(strings.ToLower(s)) {
	case UseStorage:
		return UseStorage, nil
	case UseDisplay:
		return UseDisplay, nil
	case UseAPI:
		return UseAPI, nil
	}
	return "", &NotFoundError{Kind: "intended use", Name: s}
}

// Context is the media context a calculation ran under. Contextual rounding
// rules match against it; callers that omit it fall back to the per-use
// default policy.
type Context struct {
	Platform    string `json:"platform,omitempty"`
	UnitType    string `json:"unitType,omitempty"`
	ProductType string `json:"productType,omitempty"`
}

// Matcher is a declarative context condition: each non-empty field must
// equal the context's field (case-insensitive); empty fields are wildcards.
// Declarative rather than a predicate func so rules round-trip through
// version definition files.
type Matcher struct {
	Platform    string `yaml:"platform"`
	UnitType    string `yaml:"unit_type"`
	ProductType string `yaml:"product_type"`
}

// Matches reports whether ctx satisfies the condition.
func (m Matcher) Matches(ctx Context) bool {
	return fieldMatches(m.Platform, ctx.Platform) &&
		fieldMatches(m.UnitType, ctx.UnitType) &&
		fieldMatches(m.ProductType, ctx.ProductType)
}

func fieldMatches(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}

// ContextRule binds a context condition to a rounding policy. Rules are
// evaluated in list order; the first match wins.
type ContextRule struct {
	Name   string
	Match  Matcher
	Policy precision.Policy
}

// FormulaSet evaluates a typed operation to a full-precision value. One
// implementation exists per generation of the formula code; versions pin
// the set they were registered with so historical calculations stay
// reproducible.
type FormulaSet interface {
	Evaluate(op Op) (decimal.Decimal, error)
}

// Version is an immutable, dated snapshot of the formula set plus its
// rounding rules. Registered once at startup and never edited; changes ship
// as a new version.
type Version struct {
	Version       string
	EffectiveDate time.Time
	Deprecated    *time.Time
	Description   string

	// Formulas maps each method to its human-readable formula text,
	// attached to results for audit display.
	Formulas map[Method]string

	// Rules are the contextual rounding rules, in evaluation order.
	Rules []ContextRule

	// Defaults maps each intended use to a built-in policy name.
	Defaults map[Use]string

	// Fingerprint is the sha256 of the definition file for versions loaded
	// from disk; empty for the built-in version.
	Fingerprint string

	Set FormulaSet
}

// resolvePolicy picks the rounding policy for a result context and intended
// use: first contextual rule match wins, else the per-use default.
// appliedRule is the matched rule's name, or "default".
func (v *Version) resolvePolicy(ctx *Context, use Use) (policy precision.Policy, appliedRule string, err error) {
	if ctx != nil {
		for _, rule := range v.Rules {
			if rule.Match.Matches(*ctx) {
				return rule.Policy, rule.Name, nil
			}
		}
	}
	name, ok := v.Defaults[use]
	if !ok {
		return precision.Policy{}, "", &NotFoundError{Kind: "intended use", Name: string(use)}
	}
	policy, err = precision.PolicyByName(name)
	if err != nil {
		return precision.Policy{}, "", err
	}
	return policy, AppliedRuleDefault, nil
}

// baseFormulas is the current generation of the formula code. The switch is
// exhaustive over the Op union; an operation type this generation does not
// know resolves to NotFoundError.
type baseFormulas struct{}

func (baseFormulas) Evaluate(op Op) (decimal.Decimal, error) {
	switch o := op.(type) {
	case MarginPercentage:
		return finance.MarginPercentage(o.Revenue, o.Cost), nil
	case MarginAmount:
		return finance.MarginAmount(o.Revenue, o.Cost), nil
	case ActualUnitCost:
		return finance.ActualUnitCost(o.Spend, o.Units), nil
	case ProfitAmount:
		return finance.ProfitAmount(o.Revenue, o.Cost), nil
	case MarkupAmount:
		return finance.MarkupAmount(o.Cost, o.MarkupRate), nil
	case AggregatePlanCost:
		return finance.AggregatePlanCost(o.Plans), nil
	case AggregatePlanUnits:
		return finance.AggregatePlanUnits(o.Plans), nil
	default:
		return decimal.Decimal{}, methodNotFound(op.CalcMethod())
	}
}

// baseFormulaTexts returns the audit formula text for every method the base
// formula set implements. Copied per version so versions stay independent.
func baseFormulaTexts() map[Method]string {
	return map[Method]string{
		MethodMarginPercentage:   "(revenue - cost) / revenue * 100",
		MethodMarginAmount:       "revenue - cost",
		MethodActualUnitCost:     "spend / units",
		MethodProfitAmount:       "revenue - cost",
		MethodMarkupAmount:       "cost * (markupRate / 100)",
		MethodAggregatePlanCost:  "sum(plan.budget)",
		MethodAggregatePlanUnits: "sum(plan.plannedUnits)",
	}
}

func defaultPolicyNames() map[Use]string {
	return map[Use]string{
		UseStorage: precision.PolicyStorage,
		UseDisplay: precision.PolicyDisplayDollars,
		UseAPI:     precision.PolicyDisplayDollars,
	}
}

// NewVersion100 builds the built-in "1.0.0" calculation version: the base
// formula set, the YouTube sub-cent CPV rule, the Facebook video 4-place
// rule, and dollar/storage defaults.
func NewVersion100() *Version {
	return &Version{
		Version:       "1.0.0",
		EffectiveDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Description:   "Initial campaign financial formula set",
		Formulas:      baseFormulaTexts(),
		Rules: []ContextRule{
			{
				Name:   "youtube_cpv_subcent",
				Match:  Matcher{Platform: "youtube", UnitType: "views"},
				Policy: mustPolicy(precision.PolicyDisplaySubcent),
			},
			{
				Name:   "facebook_video_4dp",
				Match:  Matcher{Platform: "facebook", ProductType: "video"},
				Policy: precision.Policy{Name: "facebook_video_4dp", Places: 4, Mode: precision.ModeHalfUp},
			},
		},
		Defaults: defaultPolicyNames(),
		Set:      baseFormulas{},
	}
}

func mustPolicy(name string) precision.Policy {
	p, err := precision.PolicyByName(name)
	if err != nil {
		panic(err)
	}
	return p
}
