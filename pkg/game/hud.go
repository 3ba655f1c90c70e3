package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/golangdaddy/turbotrails/pkg/models"
	"github.com/golangdaddy/turbotrails/pkg/ui"
	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var face = text.NewGoXFace(bitmapfont.Face)

// drawSpeedometer draws the speed panel in the top-left corner.
func drawSpeedometer(screen *ebiten.Image, speedKmh, maxKmh float64) {
	x, y := 20.0, 20.0
	width, height := 180.0, 120.0

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(width), float32(height), color.RGBA{20, 20, 30, 200}, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(width), float32(height), 2, color.RGBA{100, 100, 120, 255}, false)

	ratio := 0.0
	if maxKmh > 0 {
		ratio = math.Min(speedKmh/maxKmh, 1)
	}

	speedText := fmt.Sprintf("%.0f", speedKmh)
	textScale := 3.0
	op := &text.DrawOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(x+width/2-text.Advance(speedText, face)*textScale/2, y+20)
	op.ColorScale.ScaleWithColor(gaugeColor(ratio))
	text.Draw(screen, speedText, face, op)

	ui.DrawText(screen, "KM/H", x+width/2, y+85, 24, color.RGBA{200, 200, 200, 255})

	drawSpeedGauge(screen, x+10, y+height-25, width-20, 15, ratio)
}

// drawSpeedGauge draws a horizontal bar filled to ratio.
func drawSpeedGauge(screen *ebiten.Image, x, y, width, height, ratio float64) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(width), float32(height), color.RGBA{40, 40, 40, 255}, false)
	if filled := width * ratio; filled > 0 {
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(filled), float32(height), gaugeColor(ratio), false)
	}
	vector.StrokeRect(screen, float32(x), float32(y), float32(width), float32(height), 1, color.RGBA{150, 150, 150, 255}, false)
}

// gaugeColor goes green, yellow, red as ratio rises.
func gaugeColor(ratio float64) color.RGBA {
	if ratio < 0.5 {
		return color.RGBA{uint8(100 + ratio/0.5*155), 255, 100, 255}
	}
	r := (ratio - 0.5) / 0.5
	return color.RGBA{255, uint8(255 - r*155), uint8(100 - r*100), 255}
}

// drawScoreboard draws distance, score and the rest in the top-right corner.
func drawScoreboard(screen *ebiten.Image, st models.SessionStats, profileKey string) {
	w := float64(screen.Bounds().Dx())
	lines := []string{
		fmt.Sprintf("DIST  %.2f km", st.Distance/1000),
		fmt.Sprintf("SCORE %d", st.Score),
		fmt.Sprintf("LIVES %d", st.Lives),
		fmt.Sprintf("NITRO %d", st.NitroCount),
		fmt.Sprintf("TOKENS %d", st.TokensEarned),
		"BIKE  " + profileKey,
	}

	x, y := w-220, 20.0
	vector.DrawFilledRect(screen, float32(x), float32(y), 200, float32(len(lines)*22+16), color.RGBA{20, 20, 30, 200}, false)
	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+12, y+8+float64(i*22))
		op.ColorScale.ScaleWithColor(color.White)
		text.Draw(screen, l, face, op)
	}
}

// drawBanner draws a big centred message over a dimmed screen.
func drawBanner(screen *ebiten.Image, title, hint string) {
	b := screen.Bounds()
	vector.DrawFilledRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()), color.RGBA{0, 0, 0, 120}, false)
	ui.DrawText(screen, title, float64(b.Dx())/2, float64(b.Dy())/2-30, 64, color.RGBA{255, 200, 50, 255})
	if hint != "" {
		ui.DrawText(screen, hint, float64(b.Dx())/2, float64(b.Dy())/2+40, 20, color.RGBA{200, 200, 200, 255})
	}
}
