package ui

import (
	"fmt"
	"image/color"

	"github.com/golangdaddy/turbotrails/pkg/assets"
	"github.com/golangdaddy/turbotrails/pkg/models/profile"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// BikeOption is one card in the garage.
type BikeOption struct {
	Profile   profile.Profile
	ModelPath string
	Thumbnail *ebiten.Image
}

// GarageScreen lets the player pick a bike profile.
type GarageScreen struct {
	options       []BikeOption
	selectedIndex int
	onSelect      func(key string)
	onBack        func()

	initialized bool
}

// NewGarageScreen lists every profile in the table, slowest first,
// with the card for current preselected.
func NewGarageScreen(profiles profile.Table, bikeDir, current string, onSelect func(key string), onBack func()) *GarageScreen {
	gs := &GarageScreen{onSelect: onSelect, onBack: onBack}
	for i, key := range profiles.Keys() {
		p, _ := profiles.Lookup(key)
		gs.options = append(gs.options, BikeOption{
			Profile:   p,
			ModelPath: assets.ModelPath(bikeDir, key),
		})
		if key == current {
			gs.selectedIndex = i
		}
	}
	return gs
}

// Selected returns the highlighted profile key.
func (gs *GarageScreen) Selected() string {
	if len(gs.options) == 0 {
		return ""
	}
	return gs.options[gs.selectedIndex].Profile.Key
}

// Move shifts the highlight by delta, wrapping around.
func (gs *GarageScreen) Move(delta int) {
	n := len(gs.options)
	if n == 0 {
		return
	}
	gs.selectedIndex = ((gs.selectedIndex+delta)%n + n) % n
}

// Update handles navigation and selection.
func (gs *GarageScreen) Update() error {
	if !gs.initialized {
		for i := range gs.options {
			// a missing model just shows the placeholder card
			if img, _, err := ebitenutil.NewImageFromFile(gs.options[i].ModelPath); err == nil {
				gs.options[i].Thumbnail = img
			}
		}
		gs.initialized = true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		gs.Move(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		gs.Move(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && gs.onBack != nil {
		gs.onBack()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && gs.onSelect != nil && len(gs.options) > 0 {
		gs.onSelect(gs.Selected())
	}
	return nil
}

// Draw renders one card per profile.
func (gs *GarageScreen) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 40, 255})
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	drawText(screen, "CHOOSE YOUR BIKE", float64(w)/2, 60, 48, color.White)

	cellW, cellH := 200.0, 260.0
	startX := float64(w)/2 - cellW*float64(len(gs.options))/2
	y := 150.0

	for i, opt := range gs.options {
		x := startX + float64(i)*cellW
		bg, fg := color.Color(panelColor), color.Color(color.White)
		if i == gs.selectedIndex {
			bg, fg = highlightColor, color.RGBA{255, 255, 0, 255}
		}
		vector.DrawFilledRect(screen, float32(x+10), float32(y), float32(cellW-20), float32(cellH), bg, false)
		vector.StrokeRect(screen, float32(x+10), float32(y), float32(cellW-20), float32(cellH), 2, borderColor, false)

		if opt.Thumbnail != nil {
			op := &ebiten.DrawImageOptions{}
			bw, bh := opt.Thumbnail.Bounds().Dx(), opt.Thumbnail.Bounds().Dy()
			scale := 100 / float64(max(bw, bh, 1))
			op.GeoM.Scale(scale, scale)
			op.GeoM.Translate(x+cellW/2-float64(bw)*scale/2, y+20)
			screen.DrawImage(opt.Thumbnail, op)
		} else {
			// placeholder bike: a box with the rider on top
			vector.DrawFilledRect(screen, float32(x+cellW/2-20), float32(y+60), 40, 60, color.RGBA{220, 20, 20, 255}, false)
			vector.DrawFilledCircle(screen, float32(x+cellW/2), float32(y+45), 12, color.RGBA{240, 200, 150, 255}, false)
		}

		p := opt.Profile
		drawText(screen, p.Key, x+cellW/2, y+150, 24, fg)
		drawText(screen, fmt.Sprintf("%.0f km/h", p.MaxSpeedKmh), x+cellW/2, y+185, 16, dim)
		drawText(screen, fmt.Sprintf("thrust %.0f+%.0f", p.BaseThrust, p.BoostThrust), x+cellW/2, y+210, 16, dim)
	}

	drawText(screen, "ARROWS to Select   ENTER to Ride   ESC Back", float64(w)/2, float64(h)-50, 24, color.RGBA{200, 200, 200, 255})
}
