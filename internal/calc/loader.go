package calc

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brkthru/bravo-1-sub003/internal/core/precision"
)

// Version definition files let operators ship a new rounding-rule set or
// formula-text revision without a code change. Each *.yaml file in the
// versions directory defines exactly one version; formula evaluation always
// binds to the current formula code. Files are loaded once at startup and
// fingerprinted for staleness detection — no hot reload.

const dateLayout = "2006-01-02"

// rawVersion is the on-disk YAML shape of a version definition.
type rawVersion struct {
	Version       string            `yaml:"version"`
	EffectiveDate string            `yaml:"effective_date"`
	Deprecated    string            `yaml:"deprecated"`
	Description   string            `yaml:"description"`
	Formulas      map[string]string `yaml:"formulas"`
	RoundingRules []rawRule         `yaml:"rounding_rules"`
	Defaults      map[string]string `yaml:"defaults"`
}

// rawRule names either a built-in policy or an inline places+mode pair.
type rawRule struct {
	Name   string  `yaml:"name"`
	Match  Matcher `yaml:"match"`
	Policy string  `yaml:"policy"`
	Places *int32  `yaml:"places"`
	Mode   string  `yaml:"mode"`
}

// LoadVersionsFromDir parses every version definition in dir. A missing
// directory is valid (zero versions configured). Returns an error if any
// file is malformed, names an unknown policy or mode, or duplicates a
// version string.
func LoadVersionsFromDir(dir string) ([]*Version, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("calculation versions dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("calculation versions path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading calculation versions dir: %w", err)
	}

	seen := make(map[string]string) // version -> file
	var versions []*Version
	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading version file %s: %w", path, err)
		}

		var raw rawVersion
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing version file %s: %w", path, err)
		}
		if raw.Version == "" {
			continue // skip empty / comment-only files
		}

		if prev, dup := seen[raw.Version]; dup {
			return nil, fmt.Errorf("version %q defined in both %s and %s", raw.Version, prev, path)
		}
		seen[raw.Version] = path

		v, err := buildVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("version file %s: %w", path, err)
		}
		v.Fingerprint = fmt.Sprintf("%x", sha256.Sum256(data))
		versions = append(versions, v)
	}
	return versions, nil
}

func buildVersion(raw rawVersion) (*Version, error) {
	v := &Version{
		Version:     raw.Version,
		Description: raw.Description,
		Formulas:    baseFormulaTexts(),
		Defaults:    defaultPolicyNames(),
		Set:         baseFormulas{},
	}

	if raw.EffectiveDate != "" {
		t, err := time.Parse(dateLayout, raw.EffectiveDate)
		if err != nil {
			return nil, fmt.Errorf("invalid effective_date %q: %w", raw.EffectiveDate, err)
		}
		v.EffectiveDate = t
	}
	if raw.Deprecated != "" {
		t, err := time.Parse(dateLayout, raw.Deprecated)
		if err != nil {
			return nil, fmt.Errorf("invalid deprecated date %q: %w", raw.Deprecated, err)
		}
		v.Deprecated = &t
	}

	// Formula texts overlay the base set; the method must exist in code.
	for name, text := range raw.Formulas {
		m := Method(name)
		if _, ok := v.Formulas[m]; !ok {
			return nil, methodNotFound(m)
		}
		v.Formulas[m] = text
	}

	for _, rr := range raw.RoundingRules {
		if rr.Name == "" {
			return nil, fmt.Errorf("rounding rule must be named")
		}
		policy, err := rulePolicy(rr)
		if err != nil {
			return nil, fmt.Errorf("rounding rule %q: %w", rr.Name, err)
		}
		v.Rules = append(v.Rules, ContextRule{Name: rr.Name, Match: rr.Match, Policy: policy})
	}

	for use, policyName := range raw.Defaults {
		u, err := ParseUse(use)
		if err != nil {
			return nil, err
		}
		if _, err := precision.PolicyByName(policyName); err != nil {
			return nil, err
		}
		v.Defaults[u] = policyName
	}

	return v, nil
}

func rulePolicy(rr rawRule) (precision.Policy, error) {
	if rr.Policy != "" {
		if rr.Places != nil || rr.Mode != "" {
			return precision.Policy{}, fmt.Errorf("set either policy or places+mode, not both")
		}
		return precision.PolicyByName(rr.Policy)
	}
	if rr.Places == nil {
		return precision.Policy{}, fmt.Errorf("needs a policy name or places")
	}
	mode := precision.ModeHalfUp
	if rr.Mode != "" {
		m, err := precision.ParseMode(rr.Mode)
		if err != nil {
			return precision.Policy{}, err
		}
		mode = m
	}
	return precision.Policy{Name: rr.Name, Places: *rr.Places, Mode: mode}, nil
}
