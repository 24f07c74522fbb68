package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/correlation"
	"github.com/forest-guardian/urban-heat-island/internal/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	id, err := s.CreateRun(ctx, Run{
		Name:   "mysore-2021",
		Sensor: "landsat8",
		Region: "mysore",
		Start:  time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
		Images: 14,
	})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	smp := &sample.Sample{
		Columns: []string{"NDVI", "LST"},
		Rows: []sample.Row{
			{X: 4, Y: 9, Lon: 76.61, Lat: 12.31, Values: []float64{0.42, 31.2}},
			{X: 1, Y: 2, Lon: 76.58, Lat: 12.33, Values: []float64{-0.05, 36.9}},
		},
	}
	require.NoError(t, s.SaveSample(ctx, id, smp))

	loaded, err := s.LoadSample(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, smp, loaded)

	res := correlation.Result{X: "NDVI", Y: "LST", N: 2, R: -1, R2: 1}
	require.NoError(t, s.SaveCorrelation(ctx, id, res))
	results, err := s.Correlations(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []correlation.Result{res}, results)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 14, runs[0].Images)
	assert.Equal(t, 2021, runs[0].End.Year())
}

func TestSampleRequiresRun(t *testing.T) {
	s := openStore(t)
	err := s.SaveSample(context.Background(), "missing", &sample.Sample{
		Columns: []string{"NDVI"},
		Rows:    []sample.Row{{Values: []float64{0.1}}},
	})
	assert.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.CreateRun(context.Background(), Run{ID: "fixed", Name: "a", Sensor: "landsat8", Region: "r"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Runs(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
