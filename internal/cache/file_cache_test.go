package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composite(t *testing.T) *imagery.MultibandImage {
	t.Helper()
	grid := raster.NewGrid(3, 2, [6]float64{76.5, 0.0003, 0, 12.4, 0, -0.0003})
	lst, err := raster.FromValues(grid, []float64{31.5, -9999, 33.25, 30, 29.75, 35}, -9999)
	require.NoError(t, err)
	img, err := imagery.NewMultibandImage("composite", "LANDSAT/LC08/C02/T1_L2",
		time.Date(2021, 12, 30, 5, 10, 0, 0, time.UTC), 0,
		map[string]*raster.Raster{"LST": lst, "NDVI": raster.Fill(grid, 0.4)})
	require.NoError(t, err)
	return img
}

func TestCompositeRoundTrip(t *testing.T) {
	c := NewFileCacheAt[*imagery.MultibandImage](t.TempDir())
	key := c.GenerateKey("landsat8", "median", []string{"NDVI", "LST"})
	in := composite(t)

	require.NoError(t, c.Set(key, in))
	out, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, in.Bands, out.Bands)
	assert.True(t, in.Date.Equal(out.Date))
	assert.Equal(t, in.ID, out.ID)
}

func TestGetMiss(t *testing.T) {
	c := NewFileCacheAt[*imagery.MultibandImage](t.TempDir())
	_, ok := c.Get(c.GenerateKey("nothing"))
	assert.False(t, ok)
}

func TestCorruptedEntryIsRejected(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCacheAt[*imagery.MultibandImage](dir)
	key := c.GenerateKey("run")
	require.NoError(t, c.Set(key, composite(t)))

	path := filepath.Join(dir, key+".json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry Entry[*imagery.MultibandImage]
	require.NoError(t, json.Unmarshal(raw, &entry))
	entry.Data.Bands["NDVI"].Data[0] = 0.9
	raw, err = json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0644))

	_, err = c.Load(key)
	assert.ErrorIs(t, err, ErrCorrupted)
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestGenerateKey(t *testing.T) {
	c := NewFileCacheAt[int](t.TempDir())
	assert.Equal(t, c.GenerateKey("a", 1, 0.5), c.GenerateKey("a", 1, 0.5))
	assert.NotEqual(t, c.GenerateKey("a", 1), c.GenerateKey("a", 2))
	assert.Len(t, c.GenerateKey(), 40)
}

func TestSetLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCacheAt[[]float64](dir)
	require.NoError(t, c.Set("k", []float64{1, 2}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.json", entries[0].Name())
}

func TestCompositeKeepsCollectionFacts(t *testing.T) {
	var c Cache[*Composite] = NewFileCacheAt[*Composite](t.TempDir())
	key := c.GenerateKey("landsat8", "skip")
	in := &Composite{Image: composite(t), Images: 3, Skipped: []string{"LC08_20210201"}}

	require.NoError(t, c.Set(key, in))
	out, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, 3, out.Images)
	assert.Equal(t, []string{"LC08_20210201"}, out.Skipped)
	assert.Equal(t, in.Image.Bands, out.Image.Bands)
}
