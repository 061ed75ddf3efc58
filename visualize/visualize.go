// Package visualize extracts a surface point cloud from an implicit
// GeoTree for display: adaptive octree/quadtree box-subdivision, pruned by
// the SDF's 1-Lipschitz bound and refined by a bounded LRU
// corner-evaluation cache, with each retained leaf's sample projected onto
// the zero level set by Newton steps.
//
// A cell is pruned the moment its center value exceeds its own
// circumscribing radius: no zero crossing can occur inside, by the
// Lipschitz-1 guarantee every GeoTree node upholds. A leaf cell is kept
// only if its corner values straddle zero.
package visualize

import (
	"math"

	"github.com/nanocad-org/structkit/geotree"
)

// Options tunes the subdivision/refinement trade-off.
type Options struct {
	MaxDepth         int
	MinCellSize      float64
	NewtonIterations int
	NewtonTolerance  float64
	CacheCapacity    int
}

// DefaultOptions returns a reasonable starting point for interactive
// preview-quality extraction.
func DefaultOptions() Options {
	return Options{
		MaxDepth:         8,
		MinCellSize:      0.01,
		NewtonIterations: 8,
		NewtonTolerance:  1e-6,
		CacheCapacity:    4096,
	}
}

// SurfacePoint3D is one extracted sample of the implicit surface: a
// position on (or very near) the zero level set and the unit SDF gradient
// there, ready for a renderer to shade.
type SurfacePoint3D struct {
	Position geotree.Vec3
	Normal   geotree.Vec3
}

// SurfacePoint2D is the 2D analogue of SurfacePoint3D.
type SurfacePoint2D struct {
	Position geotree.Vec2
	Normal   geotree.Vec2
}

// Bounds3 is an axis-aligned 3D box.
type Bounds3 struct{ Min, Max geotree.Vec3 }

func (b Bounds3) center() geotree.Vec3 {
	return geotree.Vec3{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2, Z: (b.Min.Z + b.Max.Z) / 2}
}

func (b Bounds3) diagonalHalf() float64 {
	dx, dy, dz := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y, b.Max.Z-b.Min.Z
	return 0.5 * sqrt(dx*dx+dy*dy+dz*dz)
}

func (b Bounds3) maxExtent() float64 {
	dx, dy, dz := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y, b.Max.Z-b.Min.Z
	return maxf(dx, maxf(dy, dz))
}

func (b Bounds3) corners() [8]geotree.Vec3 {
	return [8]geotree.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

func (b Bounds3) octants() [8]Bounds3 {
	mid := b.center()
	return [8]Bounds3{
		{Min: geotree.Vec3{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}, Max: mid},
		{Min: geotree.Vec3{X: mid.X, Y: b.Min.Y, Z: b.Min.Z}, Max: geotree.Vec3{X: b.Max.X, Y: mid.Y, Z: mid.Z}},
		{Min: geotree.Vec3{X: b.Min.X, Y: mid.Y, Z: b.Min.Z}, Max: geotree.Vec3{X: mid.X, Y: b.Max.Y, Z: mid.Z}},
		{Min: geotree.Vec3{X: mid.X, Y: mid.Y, Z: b.Min.Z}, Max: geotree.Vec3{X: b.Max.X, Y: b.Max.Y, Z: mid.Z}},
		{Min: geotree.Vec3{X: b.Min.X, Y: b.Min.Y, Z: mid.Z}, Max: geotree.Vec3{X: mid.X, Y: mid.Y, Z: b.Max.Z}},
		{Min: geotree.Vec3{X: mid.X, Y: b.Min.Y, Z: mid.Z}, Max: geotree.Vec3{X: b.Max.X, Y: mid.Y, Z: b.Max.Z}},
		{Min: geotree.Vec3{X: b.Min.X, Y: mid.Y, Z: mid.Z}, Max: geotree.Vec3{X: mid.X, Y: b.Max.Y, Z: b.Max.Z}},
		{Min: mid, Max: geotree.Vec3{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z}},
	}
}

// ExtractSurfacePoints3D walks n's implicit surface inside bounds,
// returning one approximately-on-surface {position, normal} sample per
// retained leaf cell.
func ExtractSurfacePoints3D(n *geotree.Node, bounds Bounds3, opts Options) []SurfacePoint3D {
	cache := newCornerCache(opts.CacheCapacity)
	var out []SurfacePoint3D
	subdivide3D(n, bounds, 0, cache, opts, &out)
	return out
}

func subdivide3D(n *geotree.Node, b Bounds3, depth int, cache *cornerCache, opts Options, out *[]SurfacePoint3D) {
	center := b.center()
	radius := b.diagonalHalf()
	centerVal := n.Sdf3D(center)
	if abs(centerVal) > radius {
		return // 1-Lipschitz bound rules out any crossing inside this cell
	}

	size := b.maxExtent()
	if depth >= opts.MaxDepth || size <= opts.MinCellSize {
		if !cellMayContainSurface3D(n, b, cache) {
			return
		}
		p, normal := projectOntoSurface3D(n, center, opts.NewtonIterations, opts.NewtonTolerance)
		*out = append(*out, SurfacePoint3D{Position: p, Normal: normal})
		return
	}
	for _, child := range b.octants() {
		subdivide3D(n, child, depth+1, cache, opts, out)
	}
}

func cellMayContainSurface3D(n *geotree.Node, b Bounds3, cache *cornerCache) bool {
	corners := b.corners()
	minV, maxV := sampleCorner3D(n, corners[0], cache), sampleCorner3D(n, corners[0], cache)
	for _, c := range corners {
		v := sampleCorner3D(n, c, cache)
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV <= 0 && maxV >= 0
}

func sampleCorner3D(n *geotree.Node, p geotree.Vec3, cache *cornerCache) float64 {
	key := cornerKey{x: quantize(p.X), y: quantize(p.Y), z: quantize(p.Z)}
	if v, ok := cache.get(key); ok {
		return v
	}
	v := n.Sdf3D(p)
	cache.put(key, v)
	return v
}

// Bounds2 is an axis-aligned 2D box.
type Bounds2 struct{ Min, Max geotree.Vec2 }

func (b Bounds2) center() geotree.Vec2 {
	return geotree.Vec2{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

func (b Bounds2) diagonalHalf() float64 {
	dx, dy := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	return 0.5 * sqrt(dx*dx+dy*dy)
}

func (b Bounds2) maxExtent() float64 {
	dx, dy := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	return maxf(dx, dy)
}

func (b Bounds2) corners() [4]geotree.Vec2 {
	return [4]geotree.Vec2{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Min.X, Y: b.Max.Y},
		{X: b.Max.X, Y: b.Max.Y},
	}
}

func (b Bounds2) quadrants() [4]Bounds2 {
	mid := b.center()
	return [4]Bounds2{
		{Min: b.Min, Max: mid},
		{Min: geotree.Vec2{X: mid.X, Y: b.Min.Y}, Max: geotree.Vec2{X: b.Max.X, Y: mid.Y}},
		{Min: geotree.Vec2{X: b.Min.X, Y: mid.Y}, Max: geotree.Vec2{X: mid.X, Y: b.Max.Y}},
		{Min: mid, Max: b.Max},
	}
}

// ExtractSurfacePoints2D is the 2D analogue of ExtractSurfacePoints3D.
func ExtractSurfacePoints2D(n *geotree.Node, bounds Bounds2, opts Options) []SurfacePoint2D {
	cache := newCornerCache(opts.CacheCapacity)
	var out []SurfacePoint2D
	subdivide2D(n, bounds, 0, cache, opts, &out)
	return out
}

func subdivide2D(n *geotree.Node, b Bounds2, depth int, cache *cornerCache, opts Options, out *[]SurfacePoint2D) {
	center := b.center()
	radius := b.diagonalHalf()
	centerVal := n.Sdf2D(center)
	if abs(centerVal) > radius {
		return
	}

	size := b.maxExtent()
	if depth >= opts.MaxDepth || size <= opts.MinCellSize {
		if !cellMayContainSurface2D(n, b, cache) {
			return
		}
		p, normal := projectOntoSurface2D(n, center, opts.NewtonIterations, opts.NewtonTolerance)
		*out = append(*out, SurfacePoint2D{Position: p, Normal: normal})
		return
	}
	for _, child := range b.quadrants() {
		subdivide2D(n, child, depth+1, cache, opts, out)
	}
}

func cellMayContainSurface2D(n *geotree.Node, b Bounds2, cache *cornerCache) bool {
	corners := b.corners()
	minV, maxV := sampleCorner2D(n, corners[0], cache), sampleCorner2D(n, corners[0], cache)
	for _, c := range corners {
		v := sampleCorner2D(n, c, cache)
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV <= 0 && maxV >= 0
}

func sampleCorner2D(n *geotree.Node, p geotree.Vec2, cache *cornerCache) float64 {
	key := cornerKey{x: quantize(p.X), y: quantize(p.Y), z: 0}
	if v, ok := cache.get(key); ok {
		return v
	}
	v := n.Sdf2D(p)
	cache.put(key, v)
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func sqrt(x float64) float64 { return math.Sqrt(x) }
