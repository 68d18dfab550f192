package plan

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ElementColor defines fill and stroke colors for one element kind.
type ElementColor struct {
	Fill   color.NRGBA
	Stroke color.NRGBA
}

// DefaultElementColors returns the per-kind color table.
func DefaultElementColors() map[ElementKind]ElementColor {
	return map[ElementKind]ElementColor{
		KindRoom: {
			Fill:   color.NRGBA{176, 196, 222, 160}, // Light steel blue
			Stroke: color.NRGBA{25, 25, 112, 255},   // Midnight blue
		},
		KindArea: {
			Fill:   color.NRGBA{144, 238, 144, 120}, // Light green
			Stroke: color.NRGBA{0, 100, 0, 255},     // Dark green
		},
		KindOpening: {
			Fill:   color.NRGBA{255, 228, 181, 200}, // Moccasin
			Stroke: color.NRGBA{184, 134, 11, 255},  // Dark goldenrod
		},
		KindShaft: {
			Fill:   color.NRGBA{211, 211, 211, 200}, // Light gray
			Stroke: color.NRGBA{105, 105, 105, 255}, // Dim gray
		},
	}
}

// nrgbaToRGBA converts color.NRGBA to premultiplied color.RGBA, which the
// canvas library expects.
func nrgbaToRGBA(c color.NRGBA) color.RGBA {
	if c.A == 0 {
		return color.RGBA{0, 0, 0, 0}
	}
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	alpha32 := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R) * alpha32) / 255),
		G: uint8((uint32(c.G) * alpha32) / 255),
		B: uint8((uint32(c.B) * alpha32) / 255),
		A: c.A,
	}
}

// PlanRenderer renders plan elements as vector graphics. World
// coordinates are in meters; the canvas is sized in millimeters with
// Scale canvas units per meter.
type PlanRenderer struct {
	Elements    []Element
	Colors      map[ElementKind]ElementColor
	Scale       float64
	Padding     float64 // world units
	StrokeWidth float64 // canvas units
	GridSpacing float64 // world units, 0 disables
	Labels      bool
	Resolution  canvas.Resolution

	// Invalid marks element IDs to outline in red.
	Invalid map[string]bool

	// Adjacencies are drawn as dashed centroid-to-centroid links.
	Adjacencies []AdjacencyRelationship
}

// NewPlanRenderer creates a renderer with defaults from the render
// configuration. A nil config uses DefaultConfig.
func NewPlanRenderer(elements []Element, config *RenderConfig) *PlanRenderer {
	rc := DefaultConfig().Render
	if config != nil {
		rc = *config
	}
	if rc.Scale <= 0 {
		rc.Scale = 50
	}
	if rc.DPI <= 0 {
		rc.DPI = 150
	}
	return &PlanRenderer{
		Elements:    elements,
		Colors:      DefaultElementColors(),
		Scale:       rc.Scale,
		Padding:     rc.Padding,
		StrokeWidth: rc.StrokeWidth,
		GridSpacing: rc.GridSpacing,
		Labels:      rc.Labels,
		Resolution:  canvas.DPI(rc.DPI),
	}
}

// canvasRenderer is the subset of the canvas renderers shared by the SVG
// and rasterizer backends.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// worldBounds returns the union of all element bounds. Empty plans get a
// unit square so the output is never degenerate.
func (r *PlanRenderer) worldBounds() Bounds {
	var out Bounds
	have := false
	for i := range r.Elements {
		b, ok := BoundsOf(r.Elements[i].Outer)
		if !ok {
			continue
		}
		if !have {
			out = b
			have = true
		} else {
			out = out.Union(b)
		}
	}
	if !have {
		return Bounds{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}
	}
	return out
}

func (r *PlanRenderer) canvasSize(b Bounds) (width, height float64) {
	width = (b.Width() + 2*r.Padding) * r.Scale
	height = (b.Height() + 2*r.Padding) * r.Scale
	return width, height
}

// RenderToSVG writes the plan as an SVG document.
func (r *PlanRenderer) RenderToSVG(w io.Writer) error {
	b := r.worldBounds()
	width, height := r.canvasSize(b)

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, b, width, height)
	return svgRenderer.Close()
}

// RenderToPNG rasterizes the plan and writes a PNG. Element labels are
// drawn directly onto the raster after vector rendering.
func (r *PlanRenderer) RenderToPNG(w io.Writer) error {
	b := r.worldBounds()
	width, height := r.canvasSize(b)

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, b, width, height)

	if r.Labels {
		r.drawLabels(rast, b, height)
	}

	return png.Encode(w, rast)
}

// toCanvas maps a world point into canvas coordinates.
func (r *PlanRenderer) toCanvas(b Bounds, p Point) (float64, float64) {
	cx := (p.X - b.MinX + r.Padding) * r.Scale
	cy := (p.Y - b.MinY + r.Padding) * r.Scale
	return cx, cy
}

func (r *PlanRenderer) renderToCanvas(renderer canvasRenderer, b Bounds, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	if r.GridSpacing > 0 {
		r.renderGrid(renderer, b)
	}

	// Areas first so rooms and openings layer on top.
	order := []ElementKind{KindArea, KindRoom, KindShaft, KindOpening}
	for _, kind := range order {
		for i := range r.Elements {
			el := &r.Elements[i]
			if el.Kind != kind {
				continue
			}
			r.renderElement(renderer, b, el)
		}
	}

	r.renderAdjacencies(renderer, b)
}

// renderAdjacencies links related element centroids with dashed lines.
func (r *PlanRenderer) renderAdjacencies(renderer canvasRenderer, b Bounds) {
	if len(r.Adjacencies) == 0 {
		return
	}

	centroids := make(map[string]Point, len(r.Elements))
	for i := range r.Elements {
		if c, ok := Centroid(r.Elements[i].Outer); ok {
			centroids[r.Elements[i].ID] = c
		}
	}

	linkStyle := canvas.DefaultStyle
	linkStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	linkStyle.Stroke = canvas.Paint{Color: nrgbaToRGBA(color.NRGBA{178, 34, 34, 200})}
	linkStyle.StrokeWidth = r.StrokeWidth
	linkStyle.Dashes = []float64{4.0, 4.0}

	for _, rel := range r.Adjacencies {
		c1, ok1 := centroids[rel.Element1ID]
		c2, ok2 := centroids[rel.Element2ID]
		if !ok1 || !ok2 {
			continue
		}
		link := &canvas.Path{}
		x1, y1 := r.toCanvas(b, c1)
		x2, y2 := r.toCanvas(b, c2)
		link.MoveTo(x1, y1)
		link.LineTo(x2, y2)
		renderer.RenderPath(link, linkStyle, canvas.Identity)
	}
}

func (r *PlanRenderer) renderElement(renderer canvasRenderer, b Bounds, el *Element) {
	ec, ok := r.Colors[el.Kind]
	if !ok {
		ec = ElementColor{
			Fill:   color.NRGBA{200, 200, 200, 120},
			Stroke: color.NRGBA{0, 0, 0, 255},
		}
	}

	style := canvas.DefaultStyle
	style.Fill = canvas.Paint{Color: nrgbaToRGBA(ec.Fill)}
	style.Stroke = canvas.Paint{Color: nrgbaToRGBA(ec.Stroke)}
	style.StrokeWidth = r.StrokeWidth
	if r.Invalid[el.ID] {
		style.Stroke = canvas.Paint{Color: nrgbaToRGBA(color.NRGBA{220, 20, 60, 255})}
		style.StrokeWidth = r.StrokeWidth * 2
	}

	path := r.ringPath(b, el.Outer)
	if path == nil {
		return
	}
	for _, inner := range el.Inner {
		if hole := r.ringPath(b, inner); hole != nil {
			path = path.Append(hole)
		}
	}
	renderer.RenderPath(path, style, canvas.Identity)
}

func (r *PlanRenderer) ringPath(b Bounds, ring Ring) *canvas.Path {
	pts := openRing(ring)
	if len(pts) < 3 {
		return nil
	}
	path := &canvas.Path{}
	for i, p := range pts {
		cx, cy := r.toCanvas(b, p)
		if i == 0 {
			path.MoveTo(cx, cy)
		} else {
			path.LineTo(cx, cy)
		}
	}
	path.Close()
	return path
}

func (r *PlanRenderer) renderGrid(renderer canvasRenderer, b Bounds) {
	gridStyle := canvas.DefaultStyle
	gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
	gridStyle.StrokeWidth = 0.5
	gridStyle.Dashes = []float64{2.0, 2.0}

	minX, maxX := b.MinX-r.Padding, b.MaxX+r.Padding
	minY, maxY := b.MinY-r.Padding, b.MaxY+r.Padding

	for x := math.Ceil(minX/r.GridSpacing) * r.GridSpacing; x <= maxX; x += r.GridSpacing {
		gridPath := &canvas.Path{}
		x1, y1 := r.toCanvas(b, Point{X: x, Y: minY})
		x2, y2 := r.toCanvas(b, Point{X: x, Y: maxY})
		gridPath.MoveTo(x1, y1)
		gridPath.LineTo(x2, y2)
		renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
	}

	for y := math.Ceil(minY/r.GridSpacing) * r.GridSpacing; y <= maxY; y += r.GridSpacing {
		gridPath := &canvas.Path{}
		x1, y1 := r.toCanvas(b, Point{X: minX, Y: y})
		x2, y2 := r.toCanvas(b, Point{X: maxX, Y: y})
		gridPath.MoveTo(x1, y1)
		gridPath.LineTo(x2, y2)
		renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
	}
}

// drawLabels writes element IDs at their centroids onto the rasterized
// image. The raster's y axis points down while the canvas's points up,
// hence the flip against the canvas height.
func (r *PlanRenderer) drawLabels(rast *rasterizer.Rasterizer, b Bounds, canvasHeight float64) {
	dpmm := r.Resolution.DPMM()
	for i := range r.Elements {
		el := &r.Elements[i]
		c, ok := Centroid(el.Outer)
		if !ok {
			continue
		}
		cx, cy := r.toCanvas(b, c)
		px := int(cx * dpmm)
		py := int((canvasHeight - cy) * dpmm)
		drawText(rast, px, py, el.ID, color.RGBA{0, 0, 0, 255})
	}
}

// drawText renders text onto an image at the given pixel position.
func drawText(dst *rasterizer.Rasterizer, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
