package statsline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfx-infra/dcctest/types"
)

func testConfig() *types.RunConfig {
	return &types.RunConfig{
		Target:  "/jobs/show/tests/mayapy",
		Context: "mayapy",
		ContextCatalog: types.Catalog{
			"mayapy": {Executable: "/usr/autodesk/maya/bin/mayapy", Version: "2024"},
		},
		FailFast:        true,
		Limit:           5,
		TestFilePattern: "test*.py",
		OutputFolder:    "/jobs/show/tests/.output",
		Cwd:             "/jobs/show/tests",
		Stats:           &types.RunStats{FilesRun: 3, TestsRun: 17, Errors: 1},
	}
}

func TestHandoffRoundTrip(t *testing.T) {
	original := testConfig()

	serialized, err := EncodeHandoff(original)
	require.NoError(t, err)

	decoded, err := DecodeHandoff(serialized)
	require.NoError(t, err)

	assert.Equal(t, original.Target, decoded.Target)
	assert.Equal(t, original.Context, decoded.Context)
	assert.Equal(t, original.ContextCatalog, decoded.ContextCatalog)
	assert.Equal(t, original.Limit, decoded.Limit)
	assert.True(t, decoded.FailFast)

	// The counters the parent had accumulated travel with the handoff.
	require.NotNil(t, decoded.Stats)
	assert.Equal(t, 3, decoded.Stats.FilesRun)
	assert.Equal(t, 17, decoded.Stats.TestsRun)
	assert.Equal(t, 1, decoded.Stats.Errors)
}

func TestDecodeHandoffForcesSubprocess(t *testing.T) {
	cfg := testConfig()
	cfg.IsSubprocess = false

	serialized, err := EncodeHandoff(cfg)
	require.NoError(t, err)

	decoded, err := DecodeHandoff(serialized)
	require.NoError(t, err)
	assert.True(t, decoded.IsSubprocess)
}

func TestDecodeHandoffRejectsUnknownVersion(t *testing.T) {
	serialized := fmt.Sprintf(`{"v":%d,"config":{}}`, handoffVersion+1)

	_, err := DecodeHandoff(serialized)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestDecodeHandoffRejectsGarbage(t *testing.T) {
	_, err := DecodeHandoff("{not json")
	require.Error(t, err)
}

func TestHandoffFromEnv(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		cfg, ok, err := HandoffFromEnv()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, cfg)
	})

	t.Run("present", func(t *testing.T) {
		serialized, err := EncodeHandoff(testConfig())
		require.NoError(t, err)
		t.Setenv(EnvVar, serialized)

		cfg, ok, err := HandoffFromEnv()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "mayapy", cfg.Context)
		assert.True(t, cfg.IsSubprocess)
	})

	t.Run("corrupt", func(t *testing.T) {
		t.Setenv(EnvVar, "###")

		_, ok, err := HandoffFromEnv()
		assert.True(t, ok)
		require.Error(t, err)
	})
}
