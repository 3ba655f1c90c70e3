package ui

import (
	"image/color"

	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	face = text.NewGoXFace(bitmapfont.Face)

	panelColor     = color.RGBA{40, 40, 60, 255}
	highlightColor = color.RGBA{60, 100, 140, 255}
	borderColor    = color.RGBA{80, 80, 100, 255}
	gold           = color.RGBA{255, 200, 50, 255}
	dim            = color.RGBA{150, 150, 150, 255}
)

// drawButton draws a bordered box with a centred label.
func drawButton(screen *ebiten.Image, label string, x, y, width, height float64, bg, fg color.Color) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(width), float32(height), bg, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(width), float32(height), 2, borderColor, false)

	// bitmap font glyphs are 16px tall
	op := &text.DrawOptions{}
	op.GeoM.Translate(x+width/2-text.Advance(label, face)/2, y+height/2-8)
	op.ColorScale.ScaleWithColor(fg)
	text.Draw(screen, label, face, op)
}

// drawText draws str centred on (centerX, centerY) at the given pixel size.
func drawText(screen *ebiten.Image, str string, centerX, centerY, size float64, clr color.Color) {
	scale := size / 16.0
	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(centerX-text.Advance(str, face)*scale/2, centerY-8*scale)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, face, op)
}

// DrawText is drawText for other packages' overlays.
func DrawText(screen *ebiten.Image, str string, centerX, centerY, size float64, clr color.Color) {
	drawText(screen, str, centerX, centerY, size, clr)
}

