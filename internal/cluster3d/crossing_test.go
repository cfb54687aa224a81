package cluster3d

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/cluster3d/internal/hits"
)

func TestCrossingXY(t *testing.T) {
	points := []r2.Vec{{X: 0, Y: 0}, {X: 12.5, Y: -3}, {X: -400, Y: 220}}
	pairs := [][2]hits.Plane{
		{hits.PlaneX, hits.PlaneV},
		{hits.PlaneX, hits.PlaneU},
		{hits.PlaneV, hits.PlaneU},
	}
	for _, p := range points {
		for _, pair := range pairs {
			h1 := wireHit(pair[0], p, 0, 1)
			h2 := wireHit(pair[1], p, 0, 1)
			got, err := CrossingXY(&h1, &h2)
			if err != nil {
				t.Fatalf("CrossingXY(%v, %v) at %v: %v", pair[0], pair[1], p, err)
			}
			if !floatEquals(got.X, p.X, 1e-9) || !floatEquals(got.Y, p.Y, 1e-9) {
				t.Errorf("CrossingXY(%v, %v) = %v, want %v", pair[0], pair[1], got, p)
			}
		}
	}
}

func TestCrossingXY_Unnormalised(t *testing.T) {
	h1 := hits.Hit1D{Position: r2.Vec{X: 3, Y: 0}, WireDir: r2.Vec{X: 0, Y: 5}}
	h2 := hits.Hit1D{Position: r2.Vec{X: 0, Y: 4}, WireDir: r2.Vec{X: 0.1, Y: 0}}
	got, err := CrossingXY(&h1, &h2)
	if err != nil {
		t.Fatal(err)
	}
	if !floatEquals(got.X, 3, 1e-12) || !floatEquals(got.Y, 4, 1e-12) {
		t.Errorf("CrossingXY = %v, want (3, 4)", got)
	}
}

func TestCrossingXY_Parallel(t *testing.T) {
	a := wireHit(hits.PlaneX, r2.Vec{X: 0}, 0, 1)
	b := wireHit(hits.PlaneX, r2.Vec{X: 3}, 0, 1)
	b.Plane = hits.PlaneV
	if _, err := CrossingXY(&a, &b); !errors.Is(err, ErrParallelWires) {
		t.Errorf("parallel wires error = %v, want ErrParallelWires", err)
	}

	// Collinear wires are parallel too.
	c := a
	if _, err := CrossingXY(&a, &c); !errors.Is(err, ErrParallelWires) {
		t.Errorf("collinear wires error = %v, want ErrParallelWires", err)
	}

	z := hits.Hit1D{Position: r2.Vec{X: 1}}
	if _, err := CrossingXY(&a, &z); !errors.Is(err, ErrParallelWires) {
		t.Errorf("zero direction error = %v, want ErrParallelWires", err)
	}
}
