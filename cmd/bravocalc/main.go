// Command bravocalc evaluates a named financial calculation from the
// command line and prints the raw and formatted values as JSON decimal
// strings. It is the in-process analog of the calculation calls the API
// handlers and import jobs make.
//
// Example:
//
//	bravocalc -method actualUnitCost -args 100,4321 \
//	    -platform youtube -unit-type views -use display
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brkthru/bravo-1-sub003/internal/calc"
	"github.com/brkthru/bravo-1-sub003/internal/core/config"
	"github.com/brkthru/bravo-1-sub003/internal/core/precision"
)

type output struct {
	Method             string    `json:"method"`
	Value              string    `json:"value"`
	FormattedValue     string    `json:"formattedValue"`
	Precision          int32     `json:"precision"`
	Use                string    `json:"use"`
	AppliedRule        string    `json:"appliedRule"`
	Formula            string    `json:"formula,omitempty"`
	CalculationVersion string    `json:"calculationVersion"`
	CalculationID      string    `json:"calculationId"`
	CalculatedAt       time.Time `json:"calculatedAt"`
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	method := flag.String("method", "", "Calculation method name (e.g. marginPercentage)")
	args := flag.String("args", "", "Comma-separated decimal arguments")
	platform := flag.String("platform", "", "Context: platform (e.g. youtube)")
	unitType := flag.String("unit-type", "", "Context: unit type (e.g. views)")
	productType := flag.String("product-type", "", "Context: product type (e.g. video)")
	use := flag.String("use", "display", "Intended use: storage, display or api")
	version := flag.String("version", "", "Pin a calculation version (default: current)")
	policy := flag.String("policy", "", "Override rounding policy by name")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *method == "" {
		slog.Error("Missing required -method flag")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	registry := calc.NewDefaultRegistry()
	for _, v := range cfg.VersionLoading.Versions {
		if err := registry.Register(v); err != nil {
			slog.Error("Failed to register calculation version", "version", v.Version, "error", err)
			os.Exit(1)
		}
	}
	if err := registry.SetCurrent(cfg.Calculation.DefaultVersion); err != nil {
		slog.Error("Configured default version is not registered",
			"version", cfg.Calculation.DefaultVersion,
			"registered", registry.Versions(),
			"error", err,
		)
		os.Exit(1)
	}

	decimals, err := parseArgs(*args)
	if err != nil {
		slog.Error("Invalid -args", "error", err)
		os.Exit(2)
	}

	op, err := calc.OpForMethod(calc.Method(*method), decimals)
	if err != nil {
		slog.Error("Cannot build calculation", "method", *method, "error", err)
		os.Exit(2)
	}

	intendedUse, err := calc.ParseUse(*use)
	if err != nil {
		slog.Error("Invalid -use", "use", *use, "error", err)
		os.Exit(2)
	}

	var override *precision.Policy
	if *policy != "" {
		p, err := precision.PolicyByName(*policy)
		if err != nil {
			slog.Error("Invalid -policy", "policy", *policy, "error", err)
			os.Exit(2)
		}
		override = &p
	}

	var opts []calc.CalcOption
	if *version != "" {
		opts = append(opts, calc.WithVersion(*version))
	}
	if *platform != "" || *unitType != "" || *productType != "" {
		opts = append(opts, calc.WithContext(calc.Context{
			Platform:    *platform,
			UnitType:    *unitType,
			ProductType: *productType,
		}))
	}

	engine := calc.NewEngine(registry)
	result, err := engine.Calculate(op, opts...)
	if err != nil {
		slog.Error("Calculation failed", "method", *method, "error", err)
		os.Exit(1)
	}
	formatted, err := engine.WithPrecision(result, intendedUse, override)
	if err != nil {
		slog.Error("Precision formatting failed", "method", *method, "error", err)
		os.Exit(1)
	}

	out := output{
		Method:             *method,
		Value:              result.Value.String(),
		FormattedValue:     formatted.FormattedValue.StringFixed(formatted.Precision),
		Precision:          formatted.Precision,
		Use:                string(formatted.Use),
		AppliedRule:        formatted.AppliedRule,
		Formula:            result.Formula,
		CalculationVersion: result.CalculationVersion,
		CalculationID:      result.CalculationID,
		CalculatedAt:       result.CalculatedAt,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		slog.Error("Failed to encode output", "error", err)
		os.Exit(1)
	}
}

// parseArgs splits a comma-separated decimal list, rejecting anything that
// is not a finite decimal.
func parseArgs(s string) ([]decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		d, err := precision.ToArbitraryPrecision(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}
