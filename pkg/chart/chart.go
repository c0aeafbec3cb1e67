package chart

import (
	"encoding/xml"
	"f1strategybot/pkg/simulator"
	"f1strategybot/pkg/tyres"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/llgcode/draw2d/draw2dsvg"
	"github.com/pkg/errors"
)

const (
	Width  = 800
	Height = 400
	margin = 40
)

var (
	ErrNoLapTrace = errors.New("result has no lap trace")

	colorBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorAxis       = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colorGrid       = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	colorPit        = color.RGBA{0xff, 0x00, 0x00, 0xff}
)

// frame maps laps and pace values to canvas coordinates.
type frame struct {
	width, height float64
	laps          int
	minPace       float64
	maxPace       float64
}

func newFrame(r simulator.Result, width, height float64) frame {
	minPace := math.Inf(1)
	maxPace := math.Inf(-1)
	for _, lap := range r.Laps {
		minPace = math.Min(minPace, lap.Pace)
		maxPace = math.Max(maxPace, lap.Pace)
	}
	pad := (maxPace - minPace) * 0.2
	if pad == 0 {
		pad = 0.05
	}
	laps := r.TotalLaps
	if laps < 2 {
		laps = 2
	}
	return frame{
		width:   width,
		height:  height,
		laps:    laps,
		minPace: minPace - pad,
		maxPace: maxPace + pad,
	}
}

func (f frame) x(lap float64) float64 {
	return margin + (lap-1)/float64(f.laps-1)*(f.width-2*margin)
}

func (f frame) y(pace float64) float64 {
	return f.height - margin - (pace-f.minPace)/(f.maxPace-f.minPace)*(f.height-2*margin)
}

// PNG draws the pace of every lap, coloured per compound, with dashed lines on
// pit laps.
func PNG(w io.Writer, r simulator.Result, table tyres.Table) error {
	if len(r.Laps) == 0 {
		return ErrNoLapTrace
	}
	dest := image.NewRGBA(image.Rect(0, 0, Width, Height))
	gc := draw2dimg.NewGraphicContext(dest)
	draw(gc, r, table, Width, Height)
	return errors.Wrap(png.Encode(w, dest), "encoding png")
}

func SVG(w io.Writer, r simulator.Result, table tyres.Table) error {
	if len(r.Laps) == 0 {
		return ErrNoLapTrace
	}
	dest := draw2dsvg.NewSvg()
	gc := draw2dsvg.NewGraphicContext(dest)
	draw(gc, r, table, Width, Height)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	return errors.Wrap(enc.Encode(dest), "encoding svg")
}

func draw(gc draw2d.GraphicContext, r simulator.Result, table tyres.Table, width, height float64) {
	f := newFrame(r, width, height)

	gc.Save()
	gc.SetFillColor(colorBackground)
	draw2dkit.Rectangle(gc, 0, 0, width, height)
	gc.Fill()
	gc.Restore()

	drawAxes(gc, f)
	for _, lap := range r.PitLaps {
		drawPit(gc, f, lap)
	}
	drawPace(gc, f, r, table)

	if r.Exhausted {
		gc.Save()
		gc.SetStrokeColor(colorPit)
		gc.SetLineWidth(3)
		last := r.Laps[len(r.Laps)-1]
		draw2dkit.Circle(gc, f.x(float64(r.ExhaustedAtLap)), f.y(last.Pace), 6)
		gc.Stroke()
		gc.Restore()
	}
}

func drawAxes(gc draw2d.GraphicContext, f frame) {
	gc.Save()
	gc.SetStrokeColor(colorGrid)
	gc.SetLineWidth(1)
	for lap := 10; lap <= f.laps; lap += 10 {
		gc.MoveTo(f.x(float64(lap)), margin)
		gc.LineTo(f.x(float64(lap)), f.height-margin)
	}
	gc.Stroke()

	gc.SetStrokeColor(colorAxis)
	gc.SetLineWidth(2)
	gc.MoveTo(margin, margin)
	gc.LineTo(margin, f.height-margin)
	gc.LineTo(f.width-margin, f.height-margin)
	gc.Stroke()
	gc.Restore()
}

func drawPit(gc draw2d.GraphicContext, f frame, lap int) {
	gc.Save()
	gc.SetStrokeColor(colorPit)
	gc.SetLineWidth(2)
	gc.SetLineDash([]float64{8, 6}, 0)
	gc.MoveTo(f.x(float64(lap)), margin)
	gc.LineTo(f.x(float64(lap)), f.height-margin)
	gc.Stroke()
	gc.Restore()
}

func drawPace(gc draw2d.GraphicContext, f frame, r simulator.Result, table tyres.Table) {
	for _, run := range r.Stints() {
		spec, _ := table.Lookup(run.Compound)
		stroke := spec.Color
		if stroke.A == 0 {
			stroke = colorAxis
		}
		gc.Save()
		gc.SetStrokeColor(stroke)
		gc.SetLineWidth(4)
		for _, lap := range r.Laps[run.FirstLap-1 : run.LastLap] {
			x, y := f.x(float64(lap.Number)), f.y(lap.Pace)
			if lap.Number == run.FirstLap {
				gc.MoveTo(x, y)
				// single lap stints still get a visible dash
				if run.FirstLap == run.LastLap {
					gc.LineTo(x+2, y)
				}
				continue
			}
			gc.LineTo(x, y)
		}
		gc.Stroke()
		gc.Restore()
	}
}
