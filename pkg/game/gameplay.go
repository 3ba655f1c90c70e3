package game

import (
	"context"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/assets"
	"github.com/golangdaddy/turbotrails/pkg/camera"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/golangdaddy/turbotrails/pkg/models"
	"github.com/golangdaddy/turbotrails/pkg/models/profile"
	"github.com/golangdaddy/turbotrails/pkg/session"
	"github.com/golangdaddy/turbotrails/pkg/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
)

// how much road is drawn around the bike
const (
	drawBehind = 30.0
	drawAhead  = 400.0
)

// GameplayScreen runs one session and draws it.
type GameplayScreen struct {
	session  *session.Session
	backdrop *ebiten.Image
	log      zerolog.Logger

	profiles      profile.Table
	width, height int
	stats         models.SessionStats
	ended         *models.SessionEnd

	onGameEnd func(models.SessionEnd)
	onQuit    func()
}

// NewGameplayScreen starts a session on the given profile.
func NewGameplayScreen(settings config.Settings, profileKey string, resolver assets.Resolver, backdrop *ebiten.Image,
	logger zerolog.Logger, onGameEnd func(models.SessionEnd), onQuit func()) (*GameplayScreen, error) {
	gs := &GameplayScreen{
		backdrop:  backdrop,
		profiles:  settings.Profiles,
		log:       logger,
		width:     screenWidth,
		height:    screenHeight,
		onGameEnd: onGameEnd,
		onQuit:    onQuit,
	}

	settings.Session.StartProfile = profileKey
	s, err := session.New(session.Config{
		Settings: settings,
		Logger:   logger,
		Input:    Keyboard{},
		Viewport: gs,
		Resolver: resolver,
		Stats:    session.StatsFunc(func(st models.SessionStats) { gs.stats = st }),
		End:      session.EndFunc(func(e models.SessionEnd) { gs.ended = &e }),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start ride: %w", err)
	}
	if err := s.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to start ride: %w", err)
	}
	gs.session = s
	return gs, nil
}

// Size reports the last drawn screen size to the camera.
func (gs *GameplayScreen) Size() (int, int) { return gs.width, gs.height }

// Update advances the session by one tick.
func (gs *GameplayScreen) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		gs.session.Dispose()
		if gs.onQuit != nil {
			gs.onQuit()
		}
		return nil
	}

	gs.session.Tick()

	if gs.ended != nil {
		gs.session.Dispose()
		if gs.onGameEnd != nil {
			gs.onGameEnd(*gs.ended)
		}
	}
	return nil
}

// Draw renders the backdrop, the wireframe world and the HUD.
func (gs *GameplayScreen) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	gs.width, gs.height = b.Dx(), b.Dy()

	screen.Fill(color.RGBA{135, 206, 235, 255})
	if gs.backdrop != nil {
		screen.DrawImage(gs.backdrop, nil)
	}

	s := gs.session
	if s.Track() == nil {
		return
	}
	w := newWireframe(screen, s.Camera())

	bike := s.Vehicle()
	w.track(s.Track(), bike.Position.Y()-drawBehind, bike.Position.Y()+drawAhead)

	box := s.VehicleBox()
	if s.CameraMode() == camera.ThirdPerson {
		if img, ok := meshImage(s.Mesh()); ok {
			w.sprite(img, box.Center.Add(mgl64.Vec3{0, 0, box.Half.Z()}), 2*box.Half.X())
		} else {
			w.box(box, bikeColor)
		}
	}

	if r := s.Rider(); r.Present && (r.Ejected || s.CameraMode() == camera.ThirdPerson) {
		w.box(r.Box, riderColor)
	}

	drawSpeedometer(screen, gs.stats.Speed, gs.profiles[bike.ProfileKey].MaxSpeedKmh)
	drawScoreboard(screen, gs.stats, bike.ProfileKey)
	ui.DrawText(screen, "C: "+s.CameraMode().String()+"   P: pause   ESC: quit", float64(gs.width)/2, float64(gs.height)-20, 16, hintColor)

	switch {
	case gs.stats.Paused:
		drawBanner(screen, "PAUSED", "P to resume   ESC to quit")
	case gs.stats.Ragdoll:
		drawBanner(screen, "CRASHED!", fmt.Sprintf("%d lives left", gs.stats.Lives))
	}
}

func meshImage(m *assets.Mesh) (*ebiten.Image, bool) {
	if m == nil {
		return nil, false
	}
	img, ok := m.Handle.(*ebiten.Image)
	return img, ok
}
