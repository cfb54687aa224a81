package cluster3d

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/cluster3d/internal/drift"
	"github.com/banshee-data/cluster3d/internal/hits"
	"github.com/banshee-data/cluster3d/internal/monitoring"
	"github.com/banshee-data/cluster3d/internal/units"
)

// ErrNoWireHits is returned when Process is called without wire hits.
var ErrNoWireHits = errors.New("no input wire hits")

// Clusterer turns the wire hits of one event into 3D hits. It holds no
// per-event state, so one Clusterer may process events one after another.
type Clusterer struct {
	params Params
	drift  drift.Model
	log    *monitoring.Logger
	hitLog *monitoring.Logger
}

// NewClusterer creates a Clusterer with validated parameters.
func NewClusterer(p Params, m drift.Model) (*Clusterer, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cluster3d params: %w", err)
	}
	if m == nil {
		return nil, errors.New("drift model is required")
	}
	return &Clusterer{
		params: p,
		drift:  m,
		log:    monitoring.Named("Cluster"),
		hitLog: monitoring.Named("Hit"),
	}, nil
}

// Params returns the clusterer parameters.
func (c *Clusterer) Params() Params { return c.params }

// Process runs the full reconstruction for one event: time zero, plane
// split, triplet matching, fusion, charge sharing and the charge cut.
// wires holds the drift (wire) hits and pmts the trigger hits. The inputs
// are not modified.
func (c *Clusterer) Process(ctx context.Context, wires, pmts *hits.Selection) (*Result, error) {
	if wires == nil {
		monitoring.Errorf("No input hits")
		return nil, ErrNoWireHits
	}
	if pmts.Len() < 1 {
		monitoring.Errorf("No PMT hits provided so time zero cannot be found")
		return nil, ErrNoTimeZero
	}

	t0, err := TimeZero(pmts.Hits)
	if err != nil {
		return nil, err
	}

	arena := hits.NewArena(wires.Hits)
	split := SplitPlanes(arena)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	monitoring.IncreaseIndentation()
	c.log.Logf("X Hits: %d V Hits: %d U Hits: %d  t0: %s",
		len(split.X), len(split.V), len(split.U), units.AsString(t0, units.Time))
	monitoring.DecreaseIndentation()

	matcher := NewMatcher(c.params, c.drift)
	triplets, stats := matcher.Match(arena, split)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fuser := NewFuser(c.params, c.drift)
	hits3d := make([]Hit3D, 0, len(triplets))
	for _, tr := range triplets {
		h := fuser.Fuse(arena, tr, t0)
		if c.hitLog.Enabled(monitoring.LevelVerbose) {
			x, v, u := arena.Hit(tr.X), arena.Hit(tr.V), arena.Hit(tr.U)
			c.hitLog.Verbosef("X: %s   V: %s   U: %s",
				units.AsStringWithError(x.Charge, x.ChargeUncertainty, units.Charge),
				units.AsStringWithError(v.Charge, v.ChargeUncertainty, units.Charge),
				units.AsStringWithError(u.Charge, u.ChargeUncertainty, units.Charge))
		}
		hits3d = append(hits3d, h)
	}
	c.log.Logf("Number of 3D Hits: %d (%d trials, window %s)",
		len(hits3d), stats.Trials, units.AsString(stats.MaxDeltaT, units.Time))

	var shares *ChargeShare
	if c.params.ShareCharge {
		shares = ShareCharge(arena, hits3d)
	}

	final, used, unused := assemble(c.params, arena, hits3d)

	res := &Result{
		TimeZero:   t0,
		Arena:      arena,
		Final:      final,
		Used:       used,
		Unused:     unused,
		Shares:     shares,
		Invalid:    split.Invalid,
		Stats:      stats,
		Candidates: len(hits3d),
		Planes: [3]PlaneStats{
			planeStats(arena, hits.PlaneX, split.X),
			planeStats(arena, hits.PlaneV, split.V),
			planeStats(arena, hits.PlaneU, split.U),
		},
	}

	for _, ps := range res.Planes {
		c.log.Infof("Mean %v Hit Charge %s", ps.Plane, units.AsStringWithError(ps.Mean, ps.RMS, units.Charge))
		c.log.Infof("Total %v Hit Charge %s", ps.Plane, units.AsString(ps.Total, units.Charge))
	}
	c.log.Logf("Total hit charge: %s is %s from %d hits",
		units.AsString(final.EDeposit, units.Charge),
		units.AsString(final.Energy, units.Energy),
		len(final.Hits))

	return res, nil
}
