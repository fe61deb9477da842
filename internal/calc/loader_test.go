package calc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeVersionFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadVersionsFromDir(t *testing.T) {
	dir := t.TempDir()
	writeVersionFile(t, dir, "v1_1_0.yaml", `
version: "1.1.0"
effective_date: "2025-06-01"
description: "Adds TikTok sub-cent rounding"
formulas:
  markupAmount: "cost * markupRate / 100"
rounding_rules:
  - name: tiktok_cpv_subcent
    match:
      platform: tiktok
      unit_type: views
    policy: display-subcent
  - name: snapchat_story_4dp
    match:
      platform: snapchat
      product_type: story
    places: 4
    mode: half-up
defaults:
  api: percentage
`)
	writeVersionFile(t, dir, "notes.txt", "ignored")
	writeVersionFile(t, dir, "empty.yaml", "# placeholder\n")

	versions, err := LoadVersionsFromDir(dir)
	require.NoError(t, err)
	require.Len(t, versions, 1)

	v := versions[0]
	require.Equal(t, "1.1.0", v.Version)
	require.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), v.EffectiveDate)
	require.Nil(t, v.Deprecated)
	require.NotEmpty(t, v.Fingerprint)

	// Overlaid formula text, base text for the rest.
	require.Equal(t, "cost * markupRate / 100", v.Formulas[MethodMarkupAmount])
	require.Equal(t, "spend / units", v.Formulas[MethodActualUnitCost])

	require.Len(t, v.Rules, 2)
	require.Equal(t, "tiktok_cpv_subcent", v.Rules[0].Name)
	require.Equal(t, int32(3), v.Rules[0].Policy.Places)
	require.Equal(t, "snapchat_story_4dp", v.Rules[1].Name)
	require.Equal(t, int32(4), v.Rules[1].Policy.Places)

	// api default overridden, the others untouched.
	require.Equal(t, "percentage", v.Defaults[UseAPI])
	require.Equal(t, "storage", v.Defaults[UseStorage])
	require.Equal(t, "display-dollars", v.Defaults[UseDisplay])

	require.True(t, v.Rules[0].Match.Matches(Context{Platform: "tiktok", UnitType: "views"}))
	require.False(t, v.Rules[0].Match.Matches(Context{Platform: "tiktok", UnitType: "clicks"}))
}

func TestLoadVersionsMissingDir(t *testing.T) {
	versions, err := LoadVersionsFromDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Empty(t, versions)
}

func TestLoadVersionsLoadedVersionEvaluates(t *testing.T) {
	dir := t.TempDir()
	writeVersionFile(t, dir, "v2.yaml", "version: \"2.0.0\"\n")

	versions, err := LoadVersionsFromDir(dir)
	require.NoError(t, err)
	require.Len(t, versions, 1)

	reg := NewDefaultRegistry()
	require.NoError(t, reg.Register(versions[0]))

	e := NewEngine(reg)
	result, err := e.Calculate(MarginAmount{Revenue: dec("10"), Cost: dec("4")}, WithVersion("2.0.0"))
	require.NoError(t, err)
	require.True(t, dec("6").Equal(result.Value))
	require.Equal(t, "2.0.0", result.CalculationVersion)
}

func TestLoadVersionsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown policy",
			content: "version: \"3.0.0\"\nrounding_rules:\n  - name: r\n    policy: mystery\n",
			wantErr: "unknown rounding policy",
		},
		{
			name:    "unknown mode",
			content: "version: \"3.0.0\"\nrounding_rules:\n  - name: r\n    places: 4\n    mode: sideways\n",
			wantErr: "unsupported rounding mode",
		},
		{
			name:    "policy and places together",
			content: "version: \"3.0.0\"\nrounding_rules:\n  - name: r\n    policy: storage\n    places: 4\n",
			wantErr: "not both",
		},
		{
			name:    "rule without policy or places",
			content: "version: \"3.0.0\"\nrounding_rules:\n  - name: r\n",
			wantErr: "needs a policy name or places",
		},
		{
			name:    "unnamed rule",
			content: "version: \"3.0.0\"\nrounding_rules:\n  - policy: storage\n",
			wantErr: "must be named",
		},
		{
			name:    "bad effective date",
			content: "version: \"3.0.0\"\neffective_date: \"June 1st\"\n",
			wantErr: "invalid effective_date",
		},
		{
			name:    "unknown formula method",
			content: "version: \"3.0.0\"\nformulas:\n  doesNotExist: \"x\"\n",
			wantErr: "doesNotExist",
		},
		{
			name:    "unknown default use",
			content: "version: \"3.0.0\"\ndefaults:\n  printing: storage\n",
			wantErr: "printing",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeVersionFile(t, dir, "v.yaml", tc.content)
			_, err := LoadVersionsFromDir(dir)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadVersionsDuplicate(t *testing.T) {
	dir := t.TempDir()
	writeVersionFile(t, dir, "a.yaml", "version: \"2.0.0\"\n")
	writeVersionFile(t, dir, "b.yaml", "version: \"2.0.0\"\n")

	_, err := LoadVersionsFromDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "2.0.0")
}
