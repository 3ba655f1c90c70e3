package ui

import (
	"fmt"
	"image/color"

	"github.com/golangdaddy/turbotrails/pkg/models"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// GameOverScreen shows the final result and offers another ride.
type GameOverScreen struct {
	selectedOption int // 0 = ride again, 1 = title
	result         models.SessionEnd
	onRestart      func()
	onTitle        func()
}

// NewGameOverScreen creates the screen for a finished session.
func NewGameOverScreen(result models.SessionEnd, onRestart, onTitle func()) *GameOverScreen {
	return &GameOverScreen{
		result:    result,
		onRestart: onRestart,
		onTitle:   onTitle,
	}
}

// Update handles the menu. Esc always goes back to the title.
func (gs *GameOverScreen) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		gs.selectedOption = 1 - gs.selectedOption
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		gs.choose(1)
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		gs.choose(gs.selectedOption)
	}
	return nil
}

func (gs *GameOverScreen) choose(option int) {
	if option == 0 {
		if gs.onRestart != nil {
			gs.onRestart()
		}
		return
	}
	if gs.onTitle != nil {
		gs.onTitle()
	}
}

// Draw renders the result and the two options.
func (gs *GameOverScreen) Draw(screen *ebiten.Image) {
	width, height := screen.Bounds().Dx(), screen.Bounds().Dy()
	screen.Fill(color.RGBA{20, 20, 30, 255})

	centerX := float64(width) / 2
	drawText(screen, "GAME OVER", centerX, float64(height)/6, 96, gold)
	drawText(screen, fmt.Sprintf("Score %d   Distance %.2f km   Bike %s",
		gs.result.Score, gs.result.DistanceKm(), gs.result.Profile), centerX, float64(height)/3, 24, color.White)

	buttonWidth, buttonHeight := 300.0, 50.0
	buttonX := centerX - buttonWidth/2
	optionY := float64(height) / 2

	for i, label := range []string{"Ride Again", "Back to Title"} {
		bg, fg := color.Color(panelColor), color.Color(color.White)
		if gs.selectedOption == i {
			bg, fg = highlightColor, color.RGBA{200, 240, 255, 255}
		}
		drawButton(screen, label, buttonX, optionY+float64(i)*80, buttonWidth, buttonHeight, bg, fg)
	}

	drawText(screen, "Arrow Keys: Navigate | Enter: Select | Esc: Title", centerX, float64(height)-50, 20, dim)
}
