// Package eventio reads event files holding the drift and trigger hits of one
// event, and writes reconstructed 3D hits back out as JSON.
//
// Lengths are in mm, times in ns and charges in pe, matching the internal
// unit system, so values are copied through unchanged.
package eventio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/cluster3d/internal/cluster3d"
	"github.com/banshee-data/cluster3d/internal/hits"
)

// MaxEventFileSize bounds the size of an event file accepted by LoadEvent.
const MaxEventFileSize = 64 * 1024 * 1024

// HitRecord is the file form of a hits.Hit1D. DirX and DirY give the
// direction along the wire.
type HitRecord struct {
	Plane             string  `json:"plane,omitempty"`
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	DirX              float64 `json:"dir_x"`
	DirY              float64 `json:"dir_y"`
	Time              float64 `json:"time_ns"`
	TimeRMS           float64 `json:"time_rms_ns"`
	TimeUncertainty   float64 `json:"time_unc_ns"`
	Charge            float64 `json:"charge_pe"`
	ChargeUncertainty float64 `json:"charge_unc_pe"`
	RMSX              float64 `json:"rms_x_mm"`
	RMSY              float64 `json:"rms_y_mm"`
	RMSZ              float64 `json:"rms_z_mm,omitempty"`
}

// Event is one event file.
type Event struct {
	EventID string      `json:"event_id"`
	Drift   []HitRecord `json:"drift"`
	PMT     []HitRecord `json:"pmt"`
}

// ToHit converts the record. The wire direction is normalised; a zero
// direction is kept as is and later rejected as a parallel crossing.
func (r HitRecord) ToHit() hits.Hit1D {
	dir := r2.Vec{X: r.DirX, Y: r.DirY}
	if n := r2.Norm(dir); n > 0 {
		dir = r2.Scale(1/n, dir)
	}
	return hits.Hit1D{
		Plane:             hits.ParsePlane(r.Plane),
		Position:          r2.Vec{X: r.X, Y: r.Y},
		WireDir:           dir,
		Time:              r.Time,
		TimeRMS:           r.TimeRMS,
		TimeUncertainty:   r.TimeUncertainty,
		Charge:            r.Charge,
		ChargeUncertainty: r.ChargeUncertainty,
		RMS:               r3.Vec{X: r.RMSX, Y: r.RMSY, Z: r.RMSZ},
	}
}

// FromHit converts a hit to its file form.
func FromHit(h hits.Hit1D) HitRecord {
	rec := HitRecord{
		X:                 h.Position.X,
		Y:                 h.Position.Y,
		DirX:              h.WireDir.X,
		DirY:              h.WireDir.Y,
		Time:              h.Time,
		TimeRMS:           h.TimeRMS,
		TimeUncertainty:   h.TimeUncertainty,
		Charge:            h.Charge,
		ChargeUncertainty: h.ChargeUncertainty,
		RMSX:              h.RMS.X,
		RMSY:              h.RMS.Y,
		RMSZ:              h.RMS.Z,
	}
	if h.Plane.Valid() {
		rec.Plane = h.Plane.String()
	}
	return rec
}

// Selections returns the drift hits and the trigger hits as named
// selections ready for cluster3d.Clusterer.Process.
func (e *Event) Selections() (wires, pmts *hits.Selection) {
	wires = hits.NewSelection("drift", convert(e.Drift)...)
	pmts = hits.NewSelection("pmt", convert(e.PMT)...)
	return wires, pmts
}

func convert(recs []HitRecord) []hits.Hit1D {
	out := make([]hits.Hit1D, len(recs))
	for i, r := range recs {
		out[i] = r.ToHit()
	}
	return out
}

// NewEvent builds an Event from hit selections. Either selection may be nil.
func NewEvent(id string, wires, pmts *hits.Selection) *Event {
	e := &Event{EventID: id, Drift: []HitRecord{}, PMT: []HitRecord{}}
	if wires != nil {
		for _, h := range wires.Hits {
			e.Drift = append(e.Drift, FromHit(h))
		}
	}
	if pmts != nil {
		for _, h := range pmts.Hits {
			e.PMT = append(e.PMT, FromHit(h))
		}
	}
	return e
}

// ReadEvent decodes an event. Unknown fields are rejected.
func ReadEvent(r io.Reader) (*Event, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var e Event
	if err := dec.Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &e, nil
}

// WriteEvent encodes e as indented JSON.
func WriteEvent(w io.Writer, e *Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

// LoadEvent reads an event file from disk.
func LoadEvent(path string) (*Event, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("event file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat event file: %w", err)
	}
	if info.Size() > MaxEventFileSize {
		return nil, fmt.Errorf("event file too large: %d bytes (max %d)", info.Size(), MaxEventFileSize)
	}
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	defer f.Close()
	return ReadEvent(f)
}

// Hit3DRecord is the file form of a cluster3d.Hit3D.
type Hit3DRecord struct {
	X                 float64    `json:"x"`
	Y                 float64    `json:"y"`
	Z                 float64    `json:"z"`
	Time              float64    `json:"time_ns"`
	TimeUncertainty   float64    `json:"time_unc_ns"`
	TimeRMS           float64    `json:"time_rms_ns"`
	DriftTime         float64    `json:"drift_time_ns"`
	Charge            float64    `json:"charge_pe"`
	ChargeUncertainty float64    `json:"charge_unc_pe"`
	RMS               [3]float64 `json:"rms_mm"`
	Uncertainty       [3]float64 `json:"unc_mm"`
	// Constituents are the X, V and U drift hit indexes in the event file.
	Constituents [3]int `json:"constituents"`
}

// PlaneSummary is the file form of cluster3d.PlaneStats.
type PlaneSummary struct {
	Plane string  `json:"plane"`
	Hits  int     `json:"hits"`
	Mean  float64 `json:"mean_pe"`
	RMS   float64 `json:"rms_pe"`
	Total float64 `json:"total_pe"`
}

// ResultFile is the JSON written for one reconstructed event.
type ResultFile struct {
	EventID    string         `json:"event_id"`
	TimeZero   float64        `json:"time_zero_ns"`
	Cluster    string         `json:"cluster"`
	EDeposit   float64        `json:"edeposit_pe"`
	Energy     float64        `json:"energy_mev"`
	Candidates int            `json:"candidates"`
	Trials     int            `json:"trials"`
	Invalid    int            `json:"invalid_hits"`
	Used       []int          `json:"used"`
	Unused     []int          `json:"unused"`
	Planes     []PlaneSummary `json:"planes"`
	Hits       []Hit3DRecord  `json:"hits"`
}

// NewResultFile converts a clusterer result.
func NewResultFile(eventID string, res *cluster3d.Result) *ResultFile {
	out := &ResultFile{
		EventID:    eventID,
		TimeZero:   res.TimeZero,
		Candidates: res.Candidates,
		Trials:     res.Stats.Trials,
		Invalid:    res.Invalid,
		Used:       indexes(res.Used),
		Unused:     indexes(res.Unused),
		Hits:       []Hit3DRecord{},
	}
	if res.Final != nil {
		out.Cluster = res.Final.Name
		out.EDeposit = res.Final.EDeposit
		out.Energy = res.Final.Energy
	}
	for _, ps := range res.Planes {
		out.Planes = append(out.Planes, PlaneSummary{
			Plane: ps.Plane.String(),
			Hits:  ps.Hits,
			Mean:  ps.Mean,
			RMS:   ps.RMS,
			Total: ps.Total,
		})
	}
	for _, h := range res.Hits() {
		out.Hits = append(out.Hits, Hit3DRecord{
			X:                 h.Position.X,
			Y:                 h.Position.Y,
			Z:                 h.Position.Z,
			Time:              h.Time,
			TimeUncertainty:   h.TimeUncertainty,
			TimeRMS:           h.TimeRMS,
			DriftTime:         h.DriftTime,
			Charge:            h.Charge,
			ChargeUncertainty: h.ChargeUncertainty,
			RMS:               [3]float64{h.RMS.X, h.RMS.Y, h.RMS.Z},
			Uncertainty:       [3]float64{h.Uncertainty.X, h.Uncertainty.Y, h.Uncertainty.Z},
			Constituents:      [3]int{int(h.Constituents[0]), int(h.Constituents[1]), int(h.Constituents[2])},
		})
	}
	return out
}

func indexes(s *hits.IndexSet) []int {
	out := []int{}
	if s == nil {
		return out
	}
	for _, idx := range s.Indexes() {
		out = append(out, int(idx))
	}
	return out
}

// WriteResult encodes the result of one event as indented JSON.
func WriteResult(w io.Writer, eventID string, res *cluster3d.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewResultFile(eventID, res)); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
