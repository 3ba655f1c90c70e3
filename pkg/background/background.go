package background

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
)

// Generator paints the horizon panorama drawn behind the track.
type Generator struct {
	Width  int
	Height int
	// Horizon is the row where the sky meets the hills, from the top.
	Horizon int
}

// NewGenerator creates a generator for a width x height backdrop.
func NewGenerator(width, height int) *Generator {
	return &Generator{
		Width:   width,
		Height:  height,
		Horizon: height / 2,
	}
}

var (
	skyTop    = color.RGBA{40, 70, 140, 255}
	skyBottom = color.RGBA{170, 200, 235, 255}
	grass     = color.RGBA{30, 100, 30, 255}
)

// Skyline paints the backdrop into a plain RGBA image. The same seed always
// gives the same picture.
func (g *Generator) Skyline(seed int64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	rng := rand.New(rand.NewSource(seed))

	for y := 0; y < g.Height; y++ {
		c := grass
		if y < g.Horizon {
			c = lerp(skyTop, skyBottom, float64(y)/float64(max(1, g.Horizon)))
		}
		for x := 0; x < g.Width; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	g.drawHills(img, rng)

	// treeline along the horizon
	for x := 0; x < g.Width; x += 4 + rng.Intn(10) {
		if rng.Float64() < 0.3 {
			g.drawTree(img, x, g.Horizon, rng)
		} else {
			g.drawBush(img, x, g.Horizon, rng)
		}
	}

	return img
}

// Image uploads the skyline to the GPU.
func (g *Generator) Image(seed int64) *ebiten.Image {
	return ebiten.NewImageFromImage(g.Skyline(seed))
}

func (g *Generator) drawHills(img *image.RGBA, rng *rand.Rand) {
	phase := rng.Float64() * 2 * math.Pi
	amp := float64(g.Height) / 12
	hill := color.RGBA{50, 90, 70, 255}

	for x := 0; x < g.Width; x++ {
		fx := float64(x) / float64(max(1, g.Width))
		top := g.Horizon - int(amp*(1+0.6*math.Sin(fx*7+phase)+0.4*math.Sin(fx*17+2*phase))/2)
		for y := top; y < g.Horizon; y++ {
			g.set(img, x, y, hill)
		}
	}
}

func (g *Generator) drawTree(img *image.RGBA, x, y int, rng *rand.Rand) {
	height := 12 + rng.Intn(14)
	width := 6 + rng.Intn(6)
	leaves := color.RGBA{
		uint8(20 + rng.Intn(30)),
		uint8(70 + rng.Intn(50)),
		uint8(20 + rng.Intn(30)),
		255,
	}

	for ty := 0; ty < height/4; ty++ {
		g.set(img, x, y-ty, color.RGBA{60, 40, 20, 255})
	}
	for ly := 0; ly < height; ly++ {
		rowW := width * (height - ly) / height
		for lx := -rowW / 2; lx <= rowW/2; lx++ {
			g.set(img, x+lx, y-height/4-ly, leaves)
		}
	}
}

func (g *Generator) drawBush(img *image.RGBA, x, y int, rng *rand.Rand) {
	radius := 2 + rng.Intn(5)
	c := color.RGBA{
		uint8(40 + rng.Intn(40)),
		uint8(90 + rng.Intn(50)),
		uint8(40 + rng.Intn(40)),
		255,
	}
	for dy := -radius; dy <= 0; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				g.set(img, x+dx, y+dy, c)
			}
		}
	}
}

func (g *Generator) set(img *image.RGBA, x, y int, c color.RGBA) {
	if x >= 0 && x < g.Width && y >= 0 && y < g.Height {
		img.SetRGBA(x, y, c)
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(p, q uint8) uint8 { return uint8(float64(p) + (float64(q)-float64(p))*t) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}
