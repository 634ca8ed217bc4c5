// Package diag renders an opt-in raster diagnostic per batch: observer
// origins, each ray extended to the image bounds, the min/max
// uncertainty-bound rays, the point estimate with its error circle, the
// feasible polygon, and the ground truth when known. This draws directly
// onto an image.RGBA with the standard library rather than a plotting
// dependency, since rasterization is simple enough here to not warrant one.
package diag

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

var (
	colorBackground = color.RGBA{20, 20, 24, 255}
	colorObserver   = color.RGBA{255, 255, 255, 255}
	colorRay        = color.RGBA{80, 160, 255, 120}
	colorWedge      = color.RGBA{255, 200, 60, 90}
	colorEstimate   = color.RGBA{255, 60, 60, 255}
	colorRegion     = color.RGBA{60, 220, 120, 160}
	colorGroundTruth = color.RGBA{255, 255, 0, 255}
)

// Frame describes the world-to-pixel mapping for one rendered image.
type Frame struct {
	Width, Height int
	// Center is the world point mapped to the image center.
	Center vec2.Point
	// BlocksPerPixel controls zoom: larger values show more world per pixel.
	BlocksPerPixel float64
}

// DefaultFrame returns a frame centered on center, sized to comfortably
// contain a feasible region of the given radius.
func DefaultFrame(center vec2.Point, radius float64) Frame {
	if radius <= 0 || math.IsInf(radius, 1) {
		radius = 200
	}
	return Frame{
		Width:          800,
		Height:         800,
		Center:         center,
		BlocksPerPixel: (radius*2.5 + 20) / 800,
	}
}

func (f Frame) project(p vec2.Point) (int, int) {
	dx := (p.X - f.Center.X) / f.BlocksPerPixel
	dz := (p.Z - f.Center.Z) / f.BlocksPerPixel
	return f.Width/2 + int(dx), f.Height/2 - int(dz)
}

// Render draws est (with its wedges, already computed alongside it by the
// caller) onto a new image and returns it.
func Render(frame Frame, est obs.EventEstimate, wedges []ray.Wedge, groundTruth *vec2.Point) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	fillBackground(img, colorBackground)

	for _, w := range wedges {
		drawWedgeRays(img, frame, w)
	}
	for _, o := range est.Contributing {
		x, y := frame.project(o.ObserverPos)
		drawDisc(img, x, y, 4, colorObserver)
	}
	if len(est.FeasibleRegion) > 0 {
		drawPolygonOutline(img, frame, est.FeasibleRegion, colorRegion)
	}
	if !math.IsInf(est.ErrorRadius, 1) && est.ErrorRadius > 0 {
		drawCircleOutline(img, frame, vec2.Point{X: est.X, Z: est.Z}, est.ErrorRadius, colorEstimate)
	}
	ex, ey := frame.project(vec2.Point{X: est.X, Z: est.Z})
	drawDisc(img, ex, ey, 5, colorEstimate)

	if groundTruth != nil {
		gx, gy := frame.project(*groundTruth)
		drawCross(img, gx, gy, 6, colorGroundTruth)
	}
	return img
}

// WriteFile renders est and saves it as a PNG at dir/filename, creating dir
// if needed. The caller chooses filename; the orchestrator builds it from
// the server label and the batch's FirstObservedAt.
func WriteFile(dir, filename string, frame Frame, est obs.EventEstimate, wedges []ray.Wedge, groundTruth *vec2.Point) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	img := Render(frame, est, wedges, groundTruth)
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func fillBackground(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawDisc(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setIfInBounds(img, cx+dx, cy+dy, c)
			}
		}
	}
}

func drawCross(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	for d := -size; d <= size; d++ {
		setIfInBounds(img, cx+d, cy+d, c)
		setIfInBounds(img, cx+d, cy-d, c)
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	x, y := x0, y0
	for {
		setIfInBounds(img, x, y, c)
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func drawPolygonOutline(img *image.RGBA, frame Frame, poly []vec2.Point, c color.RGBA) {
	for i := range poly {
		x0, y0 := frame.project(poly[i])
		x1, y1 := frame.project(poly[(i+1)%len(poly)])
		drawLine(img, x0, y0, x1, y1, c)
	}
}

func drawCircleOutline(img *image.RGBA, frame Frame, center vec2.Point, radius float64, c color.RGBA) {
	const segments = 64
	var prevX, prevY int
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / segments
		p := vec2.Point{X: center.X + radius*math.Cos(theta), Z: center.Z + radius*math.Sin(theta)}
		x, y := frame.project(p)
		if i > 0 {
			drawLine(img, prevX, prevY, x, y, c)
		}
		prevX, prevY = x, y
	}
}

// drawWedgeRays extends the wedge's two bounding rays (min/max angle) to the
// frame's edge, per spec's "both uncertainty-bound rays."
func drawWedgeRays(img *image.RGBA, frame Frame, w ray.Wedge) {
	farDist := frame.BlocksPerPixel * float64(frame.Width)
	project := func(theta float64) (int, int) {
		far := vec2.Point{
			X: w.ObserverPos.X + farDist*math.Cos(theta),
			Z: w.ObserverPos.Z + farDist*math.Sin(theta),
		}
		return frame.project(far)
	}
	x0, y0 := frame.project(w.ObserverPos)

	x1, y1 := project(w.ThetaMin)
	drawLine(img, x0, y0, x1, y1, colorWedge)
	x2, y2 := project(w.ThetaMax)
	drawLine(img, x0, y0, x2, y2, colorWedge)

	thetaMid := (w.ThetaMin + w.ThetaMax) * 0.5
	xm, ym := project(thetaMid)
	drawLine(img, x0, y0, xm, ym, colorRay)
}

func setIfInBounds(img *image.RGBA, x, y int, c color.RGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	img.SetRGBA(x, y, c)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	if n > 0 {
		return 1
	}
	return 0
}
