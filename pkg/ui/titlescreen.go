package ui

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// TitleScreen is the first screen shown.
type TitleScreen struct {
	startTime      time.Time
	backdrop       *ebiten.Image
	onStartPressed func()
}

// NewTitleScreen creates a title screen. backdrop may be nil.
func NewTitleScreen(backdrop *ebiten.Image, onStartPressed func()) *TitleScreen {
	return &TitleScreen{
		startTime:      time.Now(),
		backdrop:       backdrop,
		onStartPressed: onStartPressed,
	}
}

// Update starts the game on Enter, Space or a click.
func (ts *TitleScreen) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
		inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if ts.onStartPressed != nil {
			ts.onStartPressed()
		}
	}
	return nil
}

// Draw renders the title screen.
func (ts *TitleScreen) Draw(screen *ebiten.Image) {
	width, height := screen.Bounds().Dx(), screen.Bounds().Dy()
	screen.Fill(color.RGBA{15, 20, 35, 255})
	if ts.backdrop != nil {
		op := &ebiten.DrawImageOptions{}
		op.ColorScale.Scale(0.5, 0.5, 0.5, 1)
		screen.DrawImage(ts.backdrop, op)
	}

	elapsed := time.Since(ts.startTime).Seconds()
	centerX := float64(width) / 2
	centerY := float64(height) / 3

	// pulse between 1.0 and 1.1
	titleText := "TURBO TRAILS"
	titleScale := 6.0 * (1.0 + 0.1*math.Sin(elapsed*2.0))
	titleOp := &text.DrawOptions{}
	titleOp.GeoM.Scale(titleScale, titleScale)
	titleOp.GeoM.Translate(centerX-text.Advance(titleText, face)*titleScale/2, centerY-8)
	brightness := math.Min(1.0, 1.0+0.2*math.Sin(elapsed*1.5))
	titleOp.ColorScale.ScaleWithColor(color.RGBA{
		uint8(255 * brightness),
		uint8(200 * brightness),
		uint8(50 * brightness),
		255,
	})
	text.Draw(screen, titleText, face, titleOp)

	drawText(screen, "Arcade Bike Racing", centerX, centerY+100, 32, color.RGBA{180, 180, 200, 255})

	// blink every half second
	if int(elapsed*2)%2 == 0 {
		drawText(screen, "Press ENTER or SPACE to Start", centerX, float64(height)-100, 24, color.RGBA{150, 200, 255, 255})
	}

	lineColor := color.RGBA{50, 60, 80, 100}
	for _, y := range []float32{float32(height) / 6, float32(height) * 5 / 6} {
		vector.StrokeLine(screen, 0, y, float32(width), y, 2, lineColor, false)
	}
}
