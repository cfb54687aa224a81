package cluster3d

import (
	"errors"
	"sort"

	"github.com/banshee-data/cluster3d/internal/hits"
	"github.com/banshee-data/cluster3d/internal/units"
)

// ErrNoTimeZero is returned when there are no trigger hits to find the
// event time zero from.
var ErrNoTimeZero = errors.New("no PMT hits provided so time zero cannot be found")

// TimeZeroWindow is the width of the trigger coincidence window.
const TimeZeroWindow = 2 * units.Microsecond

// TimeZero returns the start of the densest TimeZeroWindow of trigger hit
// times. A window starting at t holds every time in [t, t+TimeZeroWindow].
// The earliest window wins a tie.
func TimeZero(pmts []hits.Hit1D) (float64, error) {
	if len(pmts) == 0 {
		return 0, ErrNoTimeZero
	}

	times := make([]float64, len(pmts))
	for i := range pmts {
		times[i] = pmts[i].Time
	}
	sort.Float64s(times)

	t0 := times[0]
	maxHits := 0
	end := 0
	for start, t := range times {
		if end < start {
			end = start
		}
		for end < len(times) && times[end]-t <= TimeZeroWindow {
			end++
		}
		if n := end - start; n > maxHits {
			maxHits = n
			t0 = t
		}
	}
	return t0, nil
}
