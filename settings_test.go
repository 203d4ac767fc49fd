package tabgen

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tabgen/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSettings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen")
	defer teardown()
	//
	s, err := DecodeSettings(map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	s, err = DecodeSettings(map[string]interface{}{
		"element-size": "4",
		"compression":  "CTB",
		"no-optimise":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, blob.U32, s.ElementSize)
	assert.Equal(t, blob.CTB, s.Compression)
	assert.False(t, s.Optimise)
}

func TestDecodeSettingsErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen")
	defer teardown()
	//
	s, err := DecodeSettings(map[string]interface{}{"element-size": 3})
	assert.Error(t, err)
	assert.Equal(t, DefaultSettings(), s)
	s, err = DecodeSettings(map[string]interface{}{"element-size": 4, "compression": "zip"})
	assert.Error(t, err)
	assert.Equal(t, blob.U32, s.ElementSize)
	assert.Equal(t, blob.Auto, s.Compression)
	_, err = DecodeSettings(map[string]interface{}{"colour": "blue"})
	assert.Error(t, err)
}

func TestCollector(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen")
	defer teardown()
	//
	c := &Collector{}
	Warnf(c, At(3, 4), "symbol %s unreachable", "B")
	Errorf(c, Location{}, "conflict")
	assert.Equal(t, 1, c.ErrorCount())
	assert.Equal(t, 1, c.WarningCount())
	assert.True(t, c.Contains("unreachable"))
	assert.Error(t, c.Err())
	Errorf(nil, At(1, 1), "ignored")
}

func TestSettingsFromEmptyConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen")
	defer teardown()
	//
	s, err := SettingsFromConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}
