package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	SetConfigPath(path)
	t.Cleanup(func() {
		Set(DefaultConfig())
	})
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	useTempConfig(t)

	require.NoError(t, Load())
	assert.Equal(t, DefaultConfig(), Get())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	useTempConfig(t)

	cfg := DefaultConfig()
	cfg.KeyColor = "#123456"
	cfg.Opacity = 0.5
	cfg.TypingMode = ModeDirect
	cfg.Language = "de"
	require.NoError(t, SaveConfig(cfg))

	Set(DefaultConfig())
	require.NoError(t, Load())
	assert.Equal(t, cfg, Get())
}

func TestLoadSanitizesInvalidValues(t *testing.T) {
	path := useTempConfig(t)

	raw := `{
		"backgroundColor": "not-a-color",
		"keyColor": "#282838",
		"opacity": 3.5,
		"fontSize": -2,
		"typingMode": "telepathy"
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	require.NoError(t, Load())
	cfg := Get()
	def := DefaultConfig()

	assert.Equal(t, def.BackgroundColor, cfg.BackgroundColor)
	assert.Equal(t, "#282838", cfg.KeyColor, "valid values survive")
	assert.Equal(t, def.Opacity, cfg.Opacity)
	assert.Equal(t, def.FontSize, cfg.FontSize)
	assert.Equal(t, def.TypingMode, cfg.TypingMode)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := useTempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))
	assert.Error(t, Load())
}

func TestUpdatePersists(t *testing.T) {
	useTempConfig(t)

	require.NoError(t, Update(func(c *Config) {
		c.AlwaysOnTop = false
	}))

	require.NoError(t, Load())
	assert.False(t, Get().AlwaysOnTop)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#4157FF")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x41, G: 0x57, B: 0xFF, A: 0xFF}, c)

	for _, bad := range []string{"", "#FFF", "4157FF", "#41575G", "#4157FF00"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestMustColorFallsBackToBlack(t *testing.T) {
	assert.Equal(t, color.NRGBA{A: 0xFF}, MustColor("garbage"))
}
