// Package render draws the run figures: the regression-vs-kriging comparison
// map, the variogram fit and the north-south cross-section. Files are written
// atomically so a failed render leaves no partial artifact.
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/zerotwo/dwd-krige/internal/dataset"
	"github.com/zerotwo/dwd-krige/internal/geostat"
	"github.com/zerotwo/dwd-krige/internal/grid"
)

// fieldGrid adapts a row-major grid field to plotter.GridXYZ.
type fieldGrid struct {
	g    *grid.Grid
	vals []float64
}

func (f fieldGrid) Dims() (c, r int)   { return len(f.g.Lons), len(f.g.Lats) }
func (f fieldGrid) Z(c, r int) float64 { return f.vals[f.g.Index(r, c)] }
func (f fieldGrid) X(c int) float64    { return f.g.Lons[c] }
func (f fieldGrid) Y(r int) float64    { return f.g.Lats[r] }

// Comparison renders the three-panel figure: station observations, the
// universal-kriging field and the plain regression trend, all on one color
// scale with the border polyline overlaid.
func Comparison(obs []dataset.Observation, g *grid.Grid, field *geostat.FieldEstimate, trendVals []float64, border [][2]float64, path string) error {
	if len(field.Values) != g.Len() || len(trendVals) != g.Len() {
		return fmt.Errorf("render: field length %d / trend length %d do not match grid size %d",
			len(field.Values), len(trendVals), g.Len())
	}
	if len(obs) == 0 {
		return fmt.Errorf("render: no observations")
	}

	vmin, vmax := valueRange(obs, field.Values, trendVals)
	cm := moreland.SmoothBlueRed()
	cm.SetMin(vmin)
	cm.SetMax(vmax)

	scatterPlot, err := observationPanel(obs, g, border, cm.At, "Station observations")
	if err != nil {
		return err
	}
	ukPlot, err := fieldPanel(fieldGrid{g, field.Values}, border, cm.Palette(64), vmin, vmax,
		"Universal kriging, north-south drift")
	if err != nil {
		return err
	}
	trendPlot, err := fieldPanel(fieldGrid{g, trendVals}, border, cm.Palette(64), vmin, vmax,
		"Regression trend")
	if err != nil {
		return err
	}

	img := vgimg.New(32*vg.Centimeter, 13*vg.Centimeter)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: 3,
		PadX: 4 * vg.Millimeter,
		PadY: 4 * vg.Millimeter,
	}
	panels := [][]*plot.Plot{{scatterPlot, ukPlot, trendPlot}}
	canvases := plot.Align(panels, tiles, dc)
	for i, p := range panels[0] {
		p.Draw(canvases[0][i])
	}

	return writePNG(img, path)
}

// Variogram renders the empirical variogram and the fitted spherical model.
func Variogram(ev geostat.EmpiricalVariogram, model geostat.Spherical, path string) error {
	if len(ev.Centers) == 0 {
		return fmt.Errorf("render: empty variogram")
	}

	p := plot.New()
	p.Title.Text = "Variogram fit"
	p.X.Label.Text = "great circle distance / km"
	p.Y.Label.Text = "semivariance"

	pts := make(plotter.XYs, len(ev.Centers))
	for i := range ev.Centers {
		pts[i].X = ev.Centers[i]
		pts[i].Y = ev.Gammas[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("render: variogram scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2.5)

	curve := plotter.NewFunction(model.Gamma)
	curve.Color = color.RGBA{R: 0xd6, G: 0x3c, B: 0x2a, A: 0xff}
	curve.Width = vg.Points(1.5)

	p.Add(scatter, curve)
	p.Legend.Add("empirical", scatter)
	p.Legend.Add(model.String(), curve)
	p.Legend.Top = true
	p.X.Min = 0
	p.X.Max = ev.Centers[len(ev.Centers)-1] * 1.05
	p.Y.Min = 0

	img := vgimg.New(16*vg.Centimeter, 12*vg.Centimeter)
	p.Draw(draw.New(img))
	return writePNG(img, path)
}

// CrossSection renders the north-south profile at the grid column nearest to
// lon: observation scatter, the kriged profile, the kriging drift and the
// regression trend.
func CrossSection(obs []dataset.Observation, g *grid.Grid, field *geostat.FieldEstimate, trend geostat.TrendModel, lon float64, path string) error {
	if len(field.Values) != g.Len() || len(field.Mean) != g.Len() {
		return fmt.Errorf("render: field length does not match grid size")
	}

	col := g.NearestLon(lon)

	p := plot.New()
	p.Title.Text = "North-south cross-section"
	p.X.Label.Text = "Latitude / °"
	p.Y.Label.Text = "T / °C"

	pts := make(plotter.XYs, len(obs))
	for i, o := range obs {
		pts[i].X = o.Lat
		pts[i].Y = o.Temp
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("render: cross-section scatter: %w", err)
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}
	scatter.GlyphStyle.Radius = vg.Points(1.5)

	profile := make(plotter.XYs, len(g.Lats))
	drift := make(plotter.XYs, len(g.Lats))
	reg := make(plotter.XYs, len(g.Lats))
	for i, lat := range g.Lats {
		idx := g.Index(i, col)
		profile[i] = plotter.XY{X: lat, Y: field.Values[idx]}
		drift[i] = plotter.XY{X: lat, Y: field.Mean[idx]}
		reg[i] = plotter.XY{X: lat, Y: trend.Eval(lat)}
	}

	profileLine, err := plotter.NewLine(profile)
	if err != nil {
		return fmt.Errorf("render: profile line: %w", err)
	}
	profileLine.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

	driftLine, err := plotter.NewLine(drift)
	if err != nil {
		return fmt.Errorf("render: drift line: %w", err)
	}
	driftLine.Color = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}

	regLine, err := plotter.NewLine(reg)
	if err != nil {
		return fmt.Errorf("render: regression line: %w", err)
	}
	regLine.Color = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	regLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(scatter, profileLine, driftLine, regLine)
	p.Legend.Add("observations", scatter)
	p.Legend.Add(fmt.Sprintf("kriged temperature at %.0f° lon", g.Lons[col]), profileLine)
	p.Legend.Add("universal kriging drift", driftLine)
	p.Legend.Add("regression trend", regLine)
	p.Legend.Top = true

	img := vgimg.New(16*vg.Centimeter, 12*vg.Centimeter)
	p.Draw(draw.New(img))
	return writePNG(img, path)
}

func observationPanel(obs []dataset.Observation, g *grid.Grid, border [][2]float64, colorAt func(float64) (color.Color, error), title string) (*plot.Plot, error) {
	p := newMapPanel(g, title)

	pts := make(plotter.XYs, len(obs))
	for i, o := range obs {
		pts[i].X = o.Lon
		pts[i].Y = o.Lat
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("render: observation scatter: %w", err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, err := colorAt(obs[i].Temp)
		if err != nil {
			c = color.Black
		}
		return draw.GlyphStyle{Color: c, Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
	}
	p.Add(scatter)

	if err := addBorder(p, border); err != nil {
		return nil, err
	}
	return p, nil
}

func fieldPanel(data fieldGrid, border [][2]float64, pal palette.Palette, vmin, vmax float64, title string) (*plot.Plot, error) {
	p := newMapPanel(data.g, title)

	hm := plotter.NewHeatMap(data, pal)
	hm.Min = vmin
	hm.Max = vmax
	p.Add(hm)

	if err := addBorder(p, border); err != nil {
		return nil, err
	}
	return p, nil
}

func newMapPanel(g *grid.Grid, title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude / °"
	p.Y.Label.Text = "Latitude / °"
	p.X.Min = g.Lons[0]
	p.X.Max = g.Lons[len(g.Lons)-1]
	p.Y.Min = g.Lats[0]
	p.Y.Max = g.Lats[len(g.Lats)-1]
	return p
}

func addBorder(p *plot.Plot, border [][2]float64) error {
	if len(border) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(border))
	for i, pt := range border {
		xys[i].X = pt[0]
		xys[i].Y = pt[1]
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("render: border line: %w", err)
	}
	line.Color = color.Black
	p.Add(line)
	return nil
}

// valueRange returns the min/max across observations and field values, the
// shared color scale of the comparison panels.
func valueRange(obs []dataset.Observation, fields ...[]float64) (vmin, vmax float64) {
	vmin = math.Inf(1)
	vmax = math.Inf(-1)
	for _, o := range obs {
		vmin = math.Min(vmin, o.Temp)
		vmax = math.Max(vmax, o.Temp)
	}
	for _, f := range fields {
		for _, v := range f {
			vmin = math.Min(vmin, v)
			vmax = math.Max(vmax, v)
		}
	}
	if vmin == vmax {
		vmin--
		vmax++
	}
	return vmin, vmax
}

// writePNG writes the canvas via a temp file and renames it into place.
func writePNG(img *vgimg.Canvas, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
