package game

import (
	"time"

	"github.com/golangdaddy/turbotrails/pkg/assets"
	"github.com/golangdaddy/turbotrails/pkg/background"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/golangdaddy/turbotrails/pkg/models"
	"github.com/golangdaddy/turbotrails/pkg/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

const (
	screenWidth  = 1024
	screenHeight = 600
)

// Screen represents a UI screen interface
type Screen interface {
	Update() error
	Draw(screen *ebiten.Image)
}

// Options configures a Game.
type Options struct {
	Settings config.Settings
	Logger   zerolog.Logger
	// Resolver loads bike models; nil uses sprites from Settings.Assets.BikeDir.
	Resolver assets.Resolver
}

// Game implements the ebiten.Game interface and manages the overall game state
type Game struct {
	settings      config.Settings
	log           zerolog.Logger
	resolver      assets.Resolver
	backdrop      *ebiten.Image
	profileKey    string
	currentScreen Screen
}

// NewGame creates a game that starts on the title screen.
func NewGame(opts Options) *Game {
	g := &Game{
		settings:   opts.Settings,
		log:        opts.Logger,
		resolver:   opts.Resolver,
		profileKey: opts.Settings.Session.StartProfile,
	}
	if g.resolver == nil {
		g.resolver = SpriteResolver{Height: 1}
	}
	g.showTitle()
	return g
}

func (g *Game) Update() error {
	if g.currentScreen != nil {
		return g.currentScreen.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.currentScreen != nil {
		g.currentScreen.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func (g *Game) background() *ebiten.Image {
	if g.backdrop == nil {
		seed := g.settings.Track.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		g.backdrop = background.NewGenerator(screenWidth, screenHeight).Image(seed)
	}
	return g.backdrop
}

func (g *Game) showTitle() {
	g.currentScreen = ui.NewTitleScreen(g.background(), g.showGarage)
}

func (g *Game) showGarage() {
	g.currentScreen = ui.NewGarageScreen(g.settings.Profiles, g.settings.Assets.BikeDir, g.profileKey, func(key string) {
		g.profileKey = key
		g.startGameplay()
	}, g.showTitle)
}

func (g *Game) startGameplay() {
	gs, err := NewGameplayScreen(g.settings, g.profileKey, g.resolver, g.background(), g.log, g.showGameOver, g.showTitle)
	if err != nil {
		g.log.Error().Err(err).Str("profile", g.profileKey).Msg("could not start ride")
		g.showTitle()
		return
	}
	g.log.Info().Str("profile", g.profileKey).Msg("ride started")
	g.currentScreen = gs
}

func (g *Game) showGameOver(result models.SessionEnd) {
	g.log.Info().
		Str("session", result.SessionID).
		Int("score", result.Score).
		Float64("distanceKm", result.DistanceKm()).
		Msg("ride over")
	g.currentScreen = ui.NewGameOverScreen(result, g.startGameplay, g.showTitle)
}
