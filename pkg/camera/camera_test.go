package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCamera() *Controller {
	return NewController(config.Defaults().Camera, FixedViewport{Width: 1024, Height: 600})
}

func TestUpdate_ThirdPersonFollowsBehind(t *testing.T) {
	c := newCamera()
	bike := mgl64.Vec3{2, 100, 0.5}

	tr := c.Update(&bike)
	assert.Equal(t, ThirdPerson, c.Mode())
	assert.Equal(t, mgl64.Vec3{2, 85, 8.5}, tr.Eye)
	assert.Equal(t, bike, tr.Target)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, tr.Up)
}

func TestToggle_FirstPersonAndBack(t *testing.T) {
	c := newCamera()
	bike := mgl64.Vec3{0, 100, 0.5}

	assert.Equal(t, FirstPerson, c.Toggle())

	// the switch is visible on the next update only
	assert.Equal(t, mgl64.Vec3{0, -15, 8}, c.Current().Eye)

	tr := c.Update(&bike)
	assert.Equal(t, mgl64.Vec3{0, 101, 2.5}, tr.Eye)
	assert.Equal(t, mgl64.Vec3{0, 110, 2.5}, tr.Target)

	assert.Equal(t, ThirdPerson, c.Toggle())
	tr = c.Update(&bike)
	assert.Equal(t, mgl64.Vec3{0, 85, 8.5}, tr.Eye)
}

func TestUpdate_NoVehicleUsesDefaultView(t *testing.T) {
	c := newCamera()
	c.Toggle()

	tr := c.Update(nil)
	assert.Equal(t, mgl64.Vec3{0, -15, 8}, tr.Eye)
	assert.Equal(t, mgl64.Vec3{0, 10, 1}, tr.Target)
}

func TestProject_TargetLandsMidScreen(t *testing.T) {
	c := newCamera()
	bike := mgl64.Vec3{0, 40, 0.5}
	tr := c.Update(&bike)

	x, y, ok := tr.Project(bike, 1024, 600)
	require.True(t, ok)
	assert.InDelta(t, 512, x, 1e-6)
	assert.InDelta(t, 300, y, 1e-6)

	// further ahead on the road is higher on screen
	_, yFar, ok := tr.Project(mgl64.Vec3{0, 200, 0}, 1024, 600)
	require.True(t, ok)
	assert.Less(t, yFar, y)

	// right of the bike is right on screen
	xRight, _, ok := tr.Project(mgl64.Vec3{5, 40, 0.5}, 1024, 600)
	require.True(t, ok)
	assert.Greater(t, xRight, x)

	_, _, ok = tr.Project(mgl64.Vec3{0, 0, 8}, 1024, 600)
	assert.False(t, ok, "behind the camera")
}

func TestProjection_UsesViewportAspect(t *testing.T) {
	wide := NewController(config.Defaults().Camera, FixedViewport{Width: 1600, Height: 800})
	square := NewController(config.Defaults().Camera, FixedViewport{Width: 800, Height: 800})
	broken := NewController(config.Defaults().Camera, FixedViewport{})

	bike := mgl64.Vec3{}
	pw := wide.Update(&bike).Projection
	ps := square.Update(&bike).Projection
	assert.InDelta(t, ps.At(0, 0)/2, pw.At(0, 0), 1e-12)

	pb := broken.Update(&bike).Projection
	assert.False(t, pb.At(0, 0) != pb.At(0, 0), "zero-sized viewport must not produce NaN")
}
