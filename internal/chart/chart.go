// Package chart renders series, rankings and correlations as PNG images
// with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/forecast"
	"github.com/soltixdb/datahub/internal/analytics/ranking"
)

// ErrEmpty is returned when there is nothing to draw
var ErrEmpty = errors.New("nothing to plot")

// Default image sizes
var (
	SeriesSize  = Size{Width: 10 * vg.Inch, Height: 5 * vg.Inch}
	RankingSize = Size{Width: 16 * vg.Inch, Height: 7 * vg.Inch}
	ScatterSize = Size{Width: 8 * vg.Inch, Height: 8 * vg.Inch}
)

// Size is an image size
type Size struct {
	Width  vg.Length
	Height vg.Length
}

var (
	historyColor  = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	forecastColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bandColor     = color.RGBA{R: 70, G: 130, B: 180, A: 60}
	pointColor    = color.RGBA{R: 139, G: 0, B: 0, A: 255}

	clusterColors = map[ranking.Cluster]color.RGBA{
		ranking.HighPerformer:   {R: 0, G: 100, B: 0, A: 255},
		ranking.MediumPerformer: {R: 173, G: 255, B: 47, A: 255},
		ranking.LowPerformer:    {R: 255, G: 165, B: 0, A: 255},
		ranking.Critical:        {R: 255, G: 0, B: 0, A: 255},
	}
	clusterOrder = []ranking.Cluster{ranking.HighPerformer, ranking.MediumPerformer, ranking.LowPerformer, ranking.Critical}
)

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

func render(w io.Writer, p *plot.Plot, size Size) error {
	wt, err := p.WriterTo(size.Width, size.Height, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

// SeriesPNG draws a yearly series and, when points are given, the forecast
// continuing from its last value with the prediction interval shaded
func SeriesPNG(w io.Writer, title, unit string, series analytics.Series, points []forecast.ForecastPoint) error {
	if series.Len() == 0 {
		return ErrEmpty
	}

	p := newPlot(title, "Tahun", unit)

	history := make(plotter.XYs, series.Len())
	for i, yv := range series {
		history[i] = plotter.XY{X: float64(yv.Year), Y: yv.Value}
	}
	line, marks, err := plotter.NewLinePoints(history)
	if err != nil {
		return err
	}
	line.Color = historyColor
	line.Width = vg.Points(2)
	marks.GlyphStyle.Color = historyColor
	marks.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, marks)
	p.Legend.Add("Aktual", line)

	if len(points) > 0 {
		last, _ := series.Last()
		projected := plotter.XYs{{X: float64(last.Year), Y: last.Value}}
		band := plotter.XYs{{X: float64(last.Year), Y: last.Value}}
		for _, fp := range points {
			projected = append(projected, plotter.XY{X: float64(fp.Year), Y: fp.Value})
			band = append(band, plotter.XY{X: float64(fp.Year), Y: fp.Upper})
		}
		for i := len(points) - 1; i >= 0; i-- {
			band = append(band, plotter.XY{X: float64(points[i].Year), Y: points[i].Lower})
		}

		poly, err := plotter.NewPolygon(band)
		if err != nil {
			return err
		}
		poly.Color = bandColor
		poly.LineStyle.Width = 0
		p.Add(poly)
		p.Legend.Add("Interval 95%", poly)

		fl, err := plotter.NewLine(projected)
		if err != nil {
			return err
		}
		fl.Color = forecastColor
		fl.Width = vg.Points(2)
		fl.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(fl)
		p.Legend.Add("Proyeksi", fl)
	}

	p.Legend.Top = true
	p.X.Tick.Marker = yearTicks{}
	return render(w, p, SeriesSize)
}

// yearTicks labels every whole year without decimals
type yearTicks struct{}

func (yearTicks) Ticks(lo, hi float64) []plot.Tick {
	var ticks []plot.Tick
	step := 1
	if hi-lo > 20 {
		step = 5
	}
	for y := int(lo); float64(y) <= hi; y++ {
		if float64(y) < lo {
			continue
		}
		label := ""
		if y%step == 0 {
			label = fmt.Sprint(y)
		}
		ticks = append(ticks, plot.Tick{Value: float64(y), Label: label})
	}
	return ticks
}

// RankingPNG draws the ranking scores as bars coloured by cluster, best
// first
func RankingPNG(w io.Writer, title string, ranked []ranking.Ranked) error {
	if len(ranked) == 0 {
		return ErrEmpty
	}

	p := newPlot(title, "", "Skor")
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Group
	}

	for _, cluster := range clusterOrder {
		values := make(plotter.Values, len(ranked))
		found := false
		for i, r := range ranked {
			if r.Cluster == cluster {
				values[i] = r.Score
				found = true
			}
		}
		if !found {
			continue
		}
		bars, err := plotter.NewBarChart(values, vg.Points(14))
		if err != nil {
			return err
		}
		bars.Color = clusterColors[cluster]
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		p.Legend.Add(string(cluster), bars)
	}

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 1.2
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
	p.Legend.Top = true
	return render(w, p, RankingSize)
}

// ScatterPNG draws paired values with their least squares line
func ScatterPNG(w io.Writer, title, xName, yName string, x, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return ErrEmpty
	}

	p := newPlot(title, xName, yName)
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = pointColor
	scatter.GlyphStyle.Radius = vg.Points(4)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)

	if len(x) >= 2 && stat.Variance(x, nil) > 0 {
		alpha, beta := stat.LinearRegression(x, y, nil, false)
		fit := plotter.NewFunction(func(v float64) float64 { return alpha + beta*v })
		fit.Color = color.RGBA{A: 255}
		fit.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(fit)
		p.Legend.Add(fmt.Sprintf("y = %.3f + %.3fx", alpha, beta), fit)
	}
	return render(w, p, ScatterSize)
}
