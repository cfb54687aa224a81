// Package report renders diagnostic views of reconstructed 3D hits: PNG
// projections through gonum/plot and an interactive HTML page through
// go-echarts.
package report

import (
	"fmt"
	"image/color"
	"math"
)

// viridis is the colour ramp used for charge in both renderers.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

func parseHex(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// chargeColor maps q in [0, max] onto the ramp, interpolating between stops.
func chargeColor(q, max float64) color.RGBA {
	if max <= 0 || math.IsNaN(q) {
		return parseHex(viridis[0])
	}
	f := math.Min(math.Max(q/max, 0), 1) * float64(len(viridis)-1)
	i := int(math.Floor(f))
	if i >= len(viridis)-1 {
		return parseHex(viridis[len(viridis)-1])
	}
	lo, hi := parseHex(viridis[i]), parseHex(viridis[i+1])
	t := f - float64(i)
	mix := func(a, b uint8) uint8 { return uint8(math.Round(float64(a) + t*(float64(b)-float64(a)))) }
	return color.RGBA{R: mix(lo.R, hi.R), G: mix(lo.G, hi.G), B: mix(lo.B, hi.B), A: 255}
}
