package calc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := NewDefaultRegistry()

	v, err := reg.Get("")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", v.Version)

	v, err = reg.Get(CurrentVersion)
	require.NoError(t, err)
	require.Equal(t, "1.0.0", v.Version)

	v, err = reg.Get("1.0.0")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", v.Version)
	require.Len(t, v.Rules, 2)
	require.Equal(t, "youtube_cpv_subcent", v.Rules[0].Name)
	require.Equal(t, "facebook_video_4dp", v.Rules[1].Name)
}

func TestRegistryUnknownVersion(t *testing.T) {
	reg := NewDefaultRegistry()

	_, err := reg.Get("9.9.9")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Contains(t, err.Error(), "9.9.9")
	require.Equal(t, "calculation version", nf.Kind)
}

func TestRegistryDuplicateVersion(t *testing.T) {
	reg := NewDefaultRegistry()
	err := reg.Register(NewVersion100())
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
}

func TestRegistryMultipleVersions(t *testing.T) {
	reg := NewDefaultRegistry()

	v2 := NewVersion100()
	v2.Version = "2.0.0"
	v2.Rules = nil // 2.0.0 drops the contextual rules
	require.NoError(t, reg.Register(v2))

	require.Equal(t, []string{"1.0.0", "2.0.0"}, reg.Versions())

	// 1.0.0 stays current until switched explicitly.
	cur, err := reg.Get("")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", cur.Version)

	require.NoError(t, reg.SetCurrent("2.0.0"))
	cur, err = reg.Get("")
	require.NoError(t, err)
	require.Equal(t, "2.0.0", cur.Version)

	// Older version stays reproducible by name.
	old, err := reg.Get("1.0.0")
	require.NoError(t, err)
	require.Len(t, old.Rules, 2)

	require.Error(t, reg.SetCurrent("3.0.0"))
}

func TestRegisterRejectsInvalidVersions(t *testing.T) {
	reg := NewRegistry()
	require.Error(t, reg.Register(nil))
	require.Error(t, reg.Register(&Version{}))
	require.Error(t, reg.Register(&Version{Version: "1.0.0"})) // no formula set
}
