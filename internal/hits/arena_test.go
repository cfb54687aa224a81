package hits

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestArena_Stable(t *testing.T) {
	src := []Hit1D{
		{Plane: PlaneX, Time: 10, Position: r2.Vec{X: 1}},
		{Plane: PlaneV, Time: 20},
		{Plane: PlaneU, Time: 30},
	}
	a := NewArena(src)

	// Mutating the source must not leak into the arena.
	src[0].Time = 999

	if a.Len() != 3 {
		t.Fatalf("Len = %d, want 3", a.Len())
	}
	if got := a.Hit(0).Time; got != 10 {
		t.Errorf("Hit(0).Time = %v, want 10", got)
	}
	idx := a.Indexes()
	for i, h := range idx {
		if int(h) != i {
			t.Errorf("Indexes()[%d] = %d", i, h)
		}
	}
}

func TestIndexSet(t *testing.T) {
	s := NewIndexSet("unused")
	for _, i := range []HitIndex{4, 1, 3, 1, 2} {
		s.Add(i)
	}
	if s.Len() != 4 {
		t.Fatalf("Len = %d, want 4", s.Len())
	}

	want := []HitIndex{4, 1, 3, 2}
	got := s.Indexes()
	if len(got) != len(want) {
		t.Fatalf("Indexes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Indexes()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if s.Contains(7) {
		t.Error("Contains(7) = true")
	}
	if !s.Contains(2) {
		t.Error("Contains(2) = false")
	}

	// Indexes returns a copy.
	got[0] = 99
	if s.Indexes()[0] != 4 {
		t.Error("Indexes() exposed internal storage")
	}
}

func TestPlane(t *testing.T) {
	tests := []struct {
		in    string
		plane Plane
		valid bool
	}{
		{"X", PlaneX, true},
		{"b", PlaneV, true},
		{"U", PlaneU, true},
		{"Z", PlaneUnknown, false},
	}
	for _, tt := range tests {
		p := ParsePlane(tt.in)
		if p != tt.plane {
			t.Errorf("ParsePlane(%q) = %v, want %v", tt.in, p, tt.plane)
		}
		if p.Valid() != tt.valid {
			t.Errorf("%v.Valid() = %v, want %v", p, p.Valid(), tt.valid)
		}
	}
	if PlaneV.String() != "V" {
		t.Errorf("PlaneV.String() = %q", PlaneV.String())
	}

	var nilSel *Selection
	if nilSel.Len() != 0 {
		t.Error("nil selection Len != 0")
	}
}
