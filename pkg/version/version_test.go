package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withBuildInfo swaps the toolchain build info for the test.
func withBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestVersion_FollowsSemverOrDev(t *testing.T) {
	// Given: the version package is imported

	// When: accessing Version

	// Then: it is "dev" for development builds or semver when injected
	if Version == "dev" {
		return
	}
	semverRegex := regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	require.True(t, semverRegex.MatchString(Version), "Version should follow semver format, got: %s", Version)
}

func TestString_ReturnsFormattedString(t *testing.T) {
	withBuildInfo(t, nil, false)

	str := String()

	assert.Equal(t, "fzsearch dev (commit: unknown, built: unknown, go: "+runtime.Version()+")", str)
}

func TestShort_ReturnsVersion(t *testing.T) {
	withBuildInfo(t, nil, false)

	assert.Equal(t, Version, Short())
}

func TestGetInfo_ReturnsPlatform(t *testing.T) {
	withBuildInfo(t, nil, false)

	info := GetInfo()

	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Equal(t, GoVersion, info.GoVersion)
}

func TestGetInfo_FallsBackToBuildInfo(t *testing.T) {
	// Given: no ldflags and a toolchain-recorded module version and revision
	withBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}, true)

	// When
	info := GetInfo()

	// Then
	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, "0123456", info.Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", info.Date)
}

func TestGetInfo_IgnoresDevelBuildInfo(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)

	assert.Equal(t, "dev", GetInfo().Version)
}

func TestGetInfo_LdflagsWin(t *testing.T) {
	orig := Version
	Version = "0.3.0"
	t.Cleanup(func() { Version = orig })
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "v9.9.9"}}, true)

	assert.Equal(t, "0.3.0", GetInfo().Version)
}

func TestBuildInfo_JSON(t *testing.T) {
	withBuildInfo(t, nil, false)

	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"version", "commit", "date", "go_version", "os", "arch"} {
		assert.Contains(t, decoded, key)
	}
}
