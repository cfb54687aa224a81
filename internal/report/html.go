package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/cluster3d/internal/cluster3d"
)

// AssetsHost is where the rendered page loads the echarts scripts from.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

func newProjectionChart(title string, proj Projection, res *cluster3d.Result) *charts.Scatter {
	hs := res.Hits()
	data := make([]opts.ScatterData, 0, len(hs))
	maxQ := 0.0
	for _, h := range hs {
		a, b := proj.coords(h)
		data = append(data, opts.ScatterData{Value: []interface{}{a, b, h.Charge}})
		maxQ = math.Max(maxQ, h.Charge)
	}
	if maxQ == 0 {
		maxQ = 1
	}

	xName, yName := proj.labels()
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "700px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s %s", title, proj), Subtitle: fmt.Sprintf("hits=%d t0=%.1f ns", len(hs), res.TimeZero)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxQ),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("hits", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}

// WriteHTML renders the XY and XZ projections of res' 3D hits, coloured by
// charge, as one HTML page.
func WriteHTML(w io.Writer, title string, res *cluster3d.Result) error {
	page := components.NewPage()
	page.SetAssetsHost(AssetsHost)
	page.AddCharts(
		newProjectionChart(title, ProjectionXY, res),
		newProjectionChart(title, ProjectionXZ, res),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
