package assets

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a loaded vehicle model.
type Mesh struct {
	Path        string
	Size        mgl64.Vec3 // full extents: width, length, height
	HasRider    bool
	Placeholder bool
	Handle      any // renderer-owned data, e.g. a sprite
}

// HalfExtents returns the collision half extents for the mesh,
// never thinner than a bike.
func (m *Mesh) HalfExtents() mgl64.Vec3 {
	return mgl64.Vec3{
		max(0.5, m.Size.X()/2),
		max(1.5, m.Size.Y()/2),
		max(0.5, m.Size.Z()/2),
	}
}

// Placeholder is the box bike used until, or instead of, a real model.
func Placeholder() *Mesh {
	return &Mesh{
		Path:        "placeholder",
		Size:        mgl64.Vec3{2, 4, 1},
		HasRider:    true,
		Placeholder: true,
	}
}

// Resolver fetches meshes. It may block and is called off the simulation goroutine.
type Resolver interface {
	LoadMesh(ctx context.Context, path string) (*Mesh, error)
}

// Releaser is implemented by resolvers whose meshes hold resources.
type Releaser interface {
	Release(m *Mesh)
}

// ModelPath returns where the model for a profile lives.
func ModelPath(dir, profileKey string) string {
	return path.Join(dir, profileKey+".png")
}

// Result is one finished load.
type Result struct {
	Request uint64
	Path    string
	Mesh    *Mesh
	Err     error
}

// Loader runs loads in the background and hands results back to the tick.
// Only the newest request's result is ever applied.
type Loader struct {
	resolver Resolver
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	latest  uint64
	pending []Result
	closed  bool
	wg      sync.WaitGroup
}

// NewLoader creates a loader bound to ctx.
func NewLoader(ctx context.Context, resolver Resolver) *Loader {
	ctx, cancel := context.WithCancel(ctx)
	return &Loader{
		resolver: resolver,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Request starts loading p and returns its request number.
// Any older request still in flight is superseded.
func (l *Loader) Request(p string) uint64 {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0
	}
	l.latest++
	id := l.latest
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		mesh, err := l.resolver.LoadMesh(l.ctx, p)
		if err == nil && mesh == nil {
			err = fmt.Errorf("resolver returned no mesh for %s", p)
		}
		if err != nil {
			l.discard(mesh)
			mesh = nil
			err = fmt.Errorf("failed to load mesh %s: %w", p, err)
		}

		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			l.discard(mesh)
			return
		}
		l.pending = append(l.pending, Result{Request: id, Path: p, Mesh: mesh, Err: err})
		l.mu.Unlock()
	}()
	return id
}

// Latest returns the newest request number.
func (l *Loader) Latest() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

// Drain applies every finished result that is still current and returns how many were applied.
// Superseded results are released back to the resolver.
func (l *Loader) Drain(apply func(Result)) int {
	l.mu.Lock()
	done := l.pending
	l.pending = nil
	latest := l.latest
	l.mu.Unlock()

	applied := 0
	for _, res := range done {
		if res.Request == latest {
			apply(res)
			applied++
			continue
		}
		l.discard(res.Mesh)
	}
	return applied
}

// Close cancels in-flight loads and releases finished ones nobody drained.
// Loads that finish later are released as they arrive.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	left := l.pending
	l.pending = nil
	l.mu.Unlock()

	l.cancel()
	for _, res := range left {
		l.discard(res.Mesh)
	}
}

// Wait blocks until every started load has delivered or given up.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) discard(m *Mesh) {
	if m == nil || m.Placeholder {
		return
	}
	if r, ok := l.resolver.(Releaser); ok {
		r.Release(m)
	}
}
