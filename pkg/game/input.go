package game

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/assets"
	"github.com/golangdaddy/turbotrails/pkg/models"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Keyboard reads the held controls. Edges are detected by the session.
type Keyboard struct{}

// Poll returns the keys held right now.
func (Keyboard) Poll() models.Input {
	return models.Input{
		Accelerate:   anyPressed(ebiten.KeyW, ebiten.KeyArrowUp),
		Brake:        anyPressed(ebiten.KeyS, ebiten.KeyArrowDown),
		Left:         anyPressed(ebiten.KeyA, ebiten.KeyArrowLeft),
		Right:        anyPressed(ebiten.KeyD, ebiten.KeyArrowRight),
		Nitro:        anyPressed(ebiten.KeyShiftLeft, ebiten.KeyShiftRight),
		Handbrake:    anyPressed(ebiten.KeySpace),
		PauseToggle:  anyPressed(ebiten.KeyP),
		CameraToggle: anyPressed(ebiten.KeyC),
	}
}

func anyPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

// SpriteResolver loads bike models as top-down sprites.
type SpriteResolver struct {
	// PixelsPerMetre converts sprite size to model size.
	PixelsPerMetre float64
	// Height is the model height, which a sprite cannot tell.
	Height float64
}

// LoadMesh opens the sprite at path.
func (r SpriteResolver) LoadMesh(ctx context.Context, path string) (*assets.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sprite: %w", err)
	}
	if err := ctx.Err(); err != nil {
		img.Deallocate()
		return nil, err
	}

	ppm := r.PixelsPerMetre
	if ppm <= 0 {
		ppm = 32
	}
	b := img.Bounds()
	return &assets.Mesh{
		Path: path,
		Size: mgl64.Vec3{float64(b.Dx()) / ppm, float64(b.Dy()) / ppm, r.Height},
		// sprites are drawn with the rider on
		HasRider: false,
		Handle:   img,
	}, nil
}

// Release frees the sprite's GPU memory.
func (SpriteResolver) Release(m *assets.Mesh) {
	if img, ok := m.Handle.(*ebiten.Image); ok {
		img.Deallocate()
	}
}
