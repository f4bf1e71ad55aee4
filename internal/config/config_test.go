package config

import (
	"os"
	"path/filepath"
	"testing"

	"etherplot/plot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "etherplot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100.0, cfg.Camera.PixelsPerUnit)
	assert.Equal(t, 30.0, cfg.Camera.MaxScale)
	assert.Equal(t, 5, cfg.Grid.MajorEvery)
	assert.Equal(t, plot.DefaultLoadLimit, cfg.Store.LoadLimit)
	assert.Equal(t, []string{"x^2", "x^3", "x^4"}, cfg.Plots)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
window:
  width: 1024
camera:
  max_scale: 10
theme:
  background: "#000000"
store:
  driver: bolt
  path: plots.db
plots:
  - sin(x)
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height, "unset keys keep their default")
	assert.Equal(t, 10.0, cfg.Camera.MaxScale)
	assert.Equal(t, plot.Color{}, cfg.Theme.Background)
	assert.Equal(t, Default().Theme.Axes, cfg.Theme.Axes)
	assert.Equal(t, DriverBolt, cfg.Store.Driver)
	assert.Equal(t, []string{"sin(x)"}, cfg.Plots)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load("", []string{
		"window.tps=30",
		"curve.slope_threshold=2.5e3",
		"store.driver=redis",
		"store.redis.db=2",
		"theme.text=#ff0000",
		"plots=x,x^2",
	})
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Window.TPS)
	assert.Equal(t, 2500.0, cfg.Curve.SlopeThreshold)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "127.0.0.1:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, plot.Color{R: 255}, cfg.Theme.Text)
	assert.Equal(t, []string{"x", "x^2"}, cfg.Plots)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		overrides []string
	}{
		{name: "unknown key", body: "windw:\n  width: 3\n"},
		{name: "bad number", overrides: []string{"window.width=wide"}},
		{name: "bad color", overrides: []string{"theme.axes=#zzz"}},
		{name: "not key=value", overrides: []string{"window.width"}},
		{name: "scalar as section", overrides: []string{"plots.x=1", "plots.x.y=2"}},
		{name: "zero width", overrides: []string{"window.width=0"}},
		{name: "max scale below one", overrides: []string{"camera.max_scale=0.5"}},
		{name: "unknown driver", overrides: []string{"store.driver=sqlite"}},
		{name: "bolt without path", overrides: []string{"store.driver=bolt", "store.path="}},
		{name: "bad level", overrides: []string{"log.level=loud"}},
		{name: "bad format", overrides: []string{"log.format=xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.body != "" {
				path = writeFile(t, tt.body)
			}
			_, err := Load(path, tt.overrides)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSet_CreatesSections(t *testing.T) {
	raw := map[string]any{}
	require.NoError(t, Set(raw, "a.b.c=1"))
	require.NoError(t, Set(raw, "a.d= x "))
	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": "1"},
			"d": " x ",
		},
	}, raw)
}
