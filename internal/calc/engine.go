package calc

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brkthru/bravo-1-sub003/internal/core/precision"
)

// AppliedRule values for the two non-contextual outcomes of precision
// resolution; contextual matches carry the rule's own name instead.
const (
	AppliedRuleOverride = "override"
	AppliedRuleDefault  = "default"
)

// Result is the immutable outcome of one calculation: the full-precision
// value plus the audit metadata needed to reproduce it later.
type Result struct {
	Value              decimal.Decimal `json:"value"`
	CalculationVersion string          `json:"calculationVersion"`
	CalculationID      string          `json:"calculationId"`
	CalculatedAt       time.Time       `json:"calculatedAt"`
	Formula            string          `json:"formula,omitempty"`
	Context            *Context        `json:"context,omitempty"`
}

// FormattedResult is a Result with a rounding policy applied. The embedded
// Result keeps its full-precision value and original context untouched.
type FormattedResult struct {
	Result
	FormattedValue decimal.Decimal   `json:"formattedValue"`
	Precision      int32             `json:"precision"`
	Use            Use               `json:"context"`
	AppliedRule    string            `json:"appliedRule"`
	OverridePolicy *precision.Policy `json:"overridePolicy,omitempty"`
}

// Engine is the single entry point for versioned calculation plus precision
// application. Stateless per call given the registry; safe for concurrent
// use once the registry is populated.
type Engine struct {
	registry *Registry

	// injectable for deterministic tests
	now   func() time.Time
	newID func() string
}

// NewEngine creates an engine over the given version registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

type calcOptions struct {
	version string
	ctx     *Context
}

// CalcOption tunes a single Calculate call.
type CalcOption func(*calcOptions)

// WithVersion pins the calculation to a specific registered version instead
// of the current one.
func WithVersion(version string) CalcOption {
	return func(o *calcOptions) { o.version = version }
}

// WithContext attaches the media context the calculation ran under, making
// the result eligible for contextual rounding rules.
func WithContext(ctx Context) CalcOption {
	return func(o *calcOptions) { o.ctx = &ctx }
}

// Calculate evaluates op under the current (or pinned) version and wraps
// the full-precision value with version, timestamp, formula text and a
// fresh calculation ID. Unregistered versions or methods return
// NotFoundError.
func (e *Engine) Calculate(op Op, opts ...CalcOption) (*Result, error) {
	var o calcOptions
	for _, opt := range opts {
		opt(&o)
	}

	version, err := e.registry.Get(o.version)
	if err != nil {
		return nil, err
	}

	value, err := version.Set.Evaluate(op)
	if err != nil {
		return nil, err
	}

	return &Result{
		Value:              value,
		CalculationVersion: version.Version,
		CalculationID:      e.newID(),
		CalculatedAt:       e.now(),
		Formula:            version.Formulas[op.CalcMethod()],
		Context:            o.ctx,
	}, nil
}

// WithPrecision applies a rounding policy to a result for an intended use.
// Precedence: an explicit override always wins; else the first contextual
// rule of the result's version matching the result's context; else the
// version's per-use default. Rules are resolved against the version
// recorded on the result, so historical results format the way they did
// when calculated.
func (e *Engine) WithPrecision(result *Result, use Use, override *precision.Policy) (*FormattedResult, error) {
	version, err := e.registry.Get(result.CalculationVersion)
	if err != nil {
		return nil, err
	}

	var policy precision.Policy
	var appliedRule string
	if override != nil {
		policy = *override
		appliedRule = AppliedRuleOverride
	} else {
		policy, appliedRule, err = version.resolvePolicy(result.Context, use)
		if err != nil {
			return nil, err
		}
	}

	return &FormattedResult{
		Result:         *result,
		FormattedValue: policy.Apply(result.Value),
		Precision:      policy.Places,
		Use:            use,
		AppliedRule:    appliedRule,
		OverridePolicy: override,
	}, nil
}

// GetVersion returns the requested version; empty string resolves to the
// current one.
func (e *Engine) GetVersion(version string) (*Version, error) {
	return e.registry.Get(version)
}
