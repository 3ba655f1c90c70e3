package game

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/camera"
	"github.com/golangdaddy/turbotrails/pkg/physics"
	"github.com/golangdaddy/turbotrails/pkg/road"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// road edges are drawn in pieces so the part behind the camera can be dropped
const edgeStep = 5.0

var (
	edgeColor     = color.RGBA{230, 230, 230, 255}
	dashColor     = color.RGBA{255, 220, 80, 255}
	seamColor     = color.RGBA{90, 90, 110, 255}
	obstacleColor = color.RGBA{255, 120, 40, 255}
	bikeColor     = color.RGBA{220, 20, 20, 255}
	riderColor    = color.RGBA{240, 200, 150, 255}
	hintColor     = color.RGBA{200, 200, 200, 255}
)

// wireframe projects world lines onto the screen with the camera transform.
type wireframe struct {
	dst    *ebiten.Image
	cam    camera.Transform
	width  int
	height int
}

func newWireframe(dst *ebiten.Image, cam camera.Transform) wireframe {
	b := dst.Bounds()
	return wireframe{dst: dst, cam: cam, width: b.Dx(), height: b.Dy()}
}

func (w wireframe) line(a, b mgl64.Vec3, clr color.Color, thickness float32) {
	x0, y0, ok0 := w.cam.Project(a, w.width, w.height)
	x1, y1, ok1 := w.cam.Project(b, w.width, w.height)
	if !ok0 || !ok1 {
		return
	}
	vector.StrokeLine(w.dst, float32(x0), float32(y0), float32(x1), float32(y1), thickness, clr, true)
}

func (w wireframe) box(b physics.Box, clr color.Color) {
	c := b.Corners()
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		w.line(c[i], c[j], clr, 1.5)
		w.line(c[i+4], c[j+4], clr, 1.5)
		w.line(c[i], c[i+4], clr, 1.5)
	}
}

// track draws every segment between from and to along Y.
func (w wireframe) track(t *road.Track, from, to float64) {
	for _, seg := range t.Segments() {
		if seg.EndY < from || seg.StartY > to {
			continue
		}
		half := seg.Ground.Box.Half.X()
		top := seg.Ground.Box.Top()
		start := math.Max(seg.StartY, from)
		end := math.Min(seg.EndY, to)

		w.line(mgl64.Vec3{seg.CenterX - half, seg.StartY, top}, mgl64.Vec3{seg.CenterX + half, seg.StartY, top}, seamColor, 1)

		for y := start; y < end; y += edgeStep {
			next := math.Min(y+edgeStep, end)
			w.line(mgl64.Vec3{seg.CenterX - half, y, top}, mgl64.Vec3{seg.CenterX - half, next, top}, edgeColor, 2)
			w.line(mgl64.Vec3{seg.CenterX + half, y, top}, mgl64.Vec3{seg.CenterX + half, next, top}, edgeColor, 2)

			// dashed centre line
			if int(math.Floor(y/edgeStep))%2 == 0 {
				w.line(mgl64.Vec3{seg.CenterX, y, top}, mgl64.Vec3{seg.CenterX, next, top}, dashColor, 1)
			}
		}

		for _, o := range seg.Obstacles {
			w.box(o.Box, obstacleColor)
		}
	}
}

// sprite draws img centred on p, scaled to span the given world width.
func (w wireframe) sprite(img *ebiten.Image, p mgl64.Vec3, worldWidth float64) {
	cx, cy, ok := w.cam.Project(p, w.width, w.height)
	if !ok {
		return
	}
	rx, _, ok := w.cam.Project(p.Add(mgl64.Vec3{worldWidth / 2, 0, 0}), w.width, w.height)
	if !ok {
		return
	}
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	scale := 2 * math.Abs(rx-cx) / float64(max(1, iw))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(iw)/2, -float64(ih)/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(cx, cy)
	op.Filter = ebiten.FilterLinear
	w.dst.DrawImage(img, op)
}
