package eventio

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/cluster3d/internal/cluster3d"
	"github.com/banshee-data/cluster3d/internal/drift"
	"github.com/banshee-data/cluster3d/internal/hits"
	"github.com/banshee-data/cluster3d/internal/monitoring"
)

const sampleEvent = `{
  "event_id": "run7-evt12",
  "drift": [
    {"plane": "X", "x": 0, "y": -25, "dir_x": 0, "dir_y": 2, "time_ns": 5000,
     "time_rms_ns": 200, "time_unc_ns": 50, "charge_pe": 100, "charge_unc_pe": 10,
     "rms_x_mm": 1.5, "rms_y_mm": 1.5},
    {"plane": "Q", "x": 1, "y": 1, "dir_x": 1, "dir_y": 0, "time_ns": 10}
  ],
  "pmt": [{"time_ns": 0}, {"time_ns": 900}]
}`

func TestReadEvent(t *testing.T) {
	e, err := ReadEvent(strings.NewReader(sampleEvent))
	require.NoError(t, err)
	assert.Equal(t, "run7-evt12", e.EventID)

	wires, pmts := e.Selections()
	require.Equal(t, 2, wires.Len())
	assert.Equal(t, 2, pmts.Len())
	assert.Equal(t, "drift", wires.Name)
	assert.Equal(t, "pmt", pmts.Name)

	h := wires.Hits[0]
	assert.Equal(t, hits.PlaneX, h.Plane)
	assert.Equal(t, r2.Vec{X: 0, Y: 1}, h.WireDir, "direction is normalised")
	assert.Equal(t, 100.0, h.Charge)
	assert.Equal(t, hits.PlaneUnknown, wires.Hits[1].Plane)
	assert.Equal(t, 900.0, pmts.Hits[1].Time)
}

func TestReadEvent_RejectsUnknownFields(t *testing.T) {
	_, err := ReadEvent(strings.NewReader(`{"event_id": "a", "wires": []}`))
	assert.Error(t, err)
}

func TestEventRoundTrip(t *testing.T) {
	e, err := ReadEvent(strings.NewReader(sampleEvent))
	require.NoError(t, err)
	wires, pmts := e.Selections()

	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, NewEvent(e.EventID, wires, pmts)))
	back, err := ReadEvent(&buf)
	require.NoError(t, err)

	w2, p2 := back.Selections()
	assert.Equal(t, wires.Hits, w2.Hits)
	assert.Equal(t, pmts.Hits, p2.Hits)
	// Unknown planes are written without a plane letter.
	assert.Empty(t, back.Drift[1].Plane)
}

func TestLoadEvent(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "event.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleEvent), 0o644))
	e, err := LoadEvent(path)
	require.NoError(t, err)
	assert.Len(t, e.Drift, 2)

	bad := filepath.Join(dir, "event.txt")
	require.NoError(t, os.WriteFile(bad, []byte(sampleEvent), 0o644))
	_, err = LoadEvent(bad)
	assert.ErrorContains(t, err, ".json")

	_, err = LoadEvent(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestWriteResult(t *testing.T) {
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(original) })

	// One deposit at (0, 10) seen on all three planes.
	p := r2.Vec{X: 0, Y: 10}
	var wires []hits.Hit1D
	for _, w := range []struct {
		plane hits.Plane
		dir   r2.Vec
	}{
		{hits.PlaneX, r2.Vec{X: 0, Y: 1}},
		{hits.PlaneV, r2.Vec{X: 0.8660254037844387, Y: 0.5}},
		{hits.PlaneU, r2.Vec{X: -0.8660254037844387, Y: 0.5}},
	} {
		wires = append(wires, hits.Hit1D{
			Plane:             w.plane,
			Position:          r2.Sub(p, r2.Scale(20, w.dir)),
			WireDir:           w.dir,
			Time:              4000,
			TimeRMS:           200,
			TimeUncertainty:   50,
			Charge:            60,
			ChargeUncertainty: 8,
		})
	}

	m, err := drift.NewConstantVelocity(drift.DefaultVelocity)
	require.NoError(t, err)
	c, err := cluster3d.NewClusterer(cluster3d.DefaultParams(), m)
	require.NoError(t, err)
	res, err := c.Process(context.Background(),
		hits.NewSelection("drift", wires...),
		hits.NewSelection("pmt", hits.Hit1D{Time: 0}))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, "evt", res))

	var out ResultFile
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "evt", out.EventID)
	assert.Equal(t, "clustered", out.Cluster)
	require.Len(t, out.Hits, 1)
	assert.Equal(t, [3]int{0, 1, 2}, out.Hits[0].Constituents)
	assert.InDelta(t, 0.0, out.Hits[0].X, 1e-9)
	assert.InDelta(t, 10.0, out.Hits[0].Y, 1e-9)
	assert.InDelta(t, 60.0, out.EDeposit, 1e-9)
	assert.Equal(t, []int{0, 1, 2}, out.Used)
	assert.Equal(t, []int{}, out.Unused)
	require.Len(t, out.Planes, 3)
	assert.Equal(t, "V", out.Planes[1].Plane)
}
