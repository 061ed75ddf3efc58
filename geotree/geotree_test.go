package geotree_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nanocad-org/structkit/geotree"
)

func TestSphere_Sdf3D(t *testing.T) {
	s := geotree.NewSphere(geotree.Vec3{}, 2)
	assert.InDelta(t, -2, s.Sdf3D(geotree.Vec3{}), 1e-9)
	assert.InDelta(t, 98, s.Sdf3D(geotree.Vec3{X: 100}), 1e-9)
}

func TestDifference3D_SphereFromCuboid(t *testing.T) {
	base := geotree.NewRectCuboid(geotree.Vec3{X: -5, Y: -5, Z: -5}, geotree.Vec3{X: 10, Y: 10, Z: 10})
	sub := geotree.NewSphere(geotree.Vec3{}, 3)
	diff := geotree.NewDifference3D(base, sub)

	assert.InDelta(t, 3, diff.Sdf3D(geotree.Vec3{}), 1e-9)
	assert.Less(t, diff.Sdf3D(geotree.Vec3{X: 4}), 0.0)
}

func TestUnion_Associativity(t *testing.T) {
	a := geotree.NewSphere(geotree.Vec3{X: -5}, 1)
	b := geotree.NewSphere(geotree.Vec3{}, 1)
	c := geotree.NewSphere(geotree.Vec3{X: 5}, 1)

	nested := geotree.NewUnion3D(a, geotree.NewUnion3D(b, c))
	flat := geotree.NewUnion3D(a, b, c)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		p := randomPoint(rng, 10)
		assert.InDelta(t, flat.Sdf3D(p), nested.Sdf3D(p), 1e-9)
	}
}

func TestLipschitz_Property(t *testing.T) {
	shape := geotree.NewDifference3D(
		geotree.NewRectCuboid(geotree.Vec3{X: -10, Y: -10, Z: -10}, geotree.Vec3{X: 20, Y: 20, Z: 20}),
		geotree.NewSphere(geotree.Vec3{}, 5),
	)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		p := randomPoint(rng, 100)
		q := randomPoint(rng, 100)
		lhs := math.Abs(shape.Sdf3D(p) - shape.Sdf3D(q))
		rhs := p.DistanceTo(q) * (1 + 1e-6)
		assert.LessOrEqual(t, lhs, rhs)
	}
}

func TestScalarEqualsBatch(t *testing.T) {
	shape := geotree.NewUnion3D(
		geotree.NewSphere(geotree.Vec3{X: 1}, 2),
		geotree.NewSphere(geotree.Vec3{X: -1}, 2),
	)
	rng := rand.New(rand.NewSource(7))
	var pts [geotree.BatchSize]geotree.Vec3
	for i := range pts {
		pts[i] = randomPoint(rng, 20)
	}
	var batchOut [geotree.BatchSize]float64
	shape.Sdf3DBatch(&pts, &batchOut)

	for i := range pts {
		assert.Equal(t, shape.Sdf3D(pts[i]), batchOut[i])
	}
}

func TestBatchedEvaluator_SingleVsMultiThreaded(t *testing.T) {
	shape := geotree.NewUnion3D(
		geotree.NewSphere(geotree.Vec3{X: 1}, 2),
		geotree.NewSphere(geotree.Vec3{X: -1}, 2),
	)
	rng := rand.New(rand.NewSource(99))

	const n = geotree.MultiThreadThreshold + 500
	pts := make([]geotree.Vec3, n)
	for i := range pts {
		pts[i] = randomPoint(rng, 20)
	}

	single := geotree.NewBatchedImplicitEvaluator(shape)
	for _, p := range pts {
		single.AddPoint(p)
	}
	singleResults := single.Flush()

	multi := geotree.NewBatchedImplicitEvaluator(shape, geotree.WithMultiThreaded(true), geotree.WithWorkerCount(4))
	for _, p := range pts {
		multi.AddPoint(p)
	}
	multiResults := multi.Flush()

	assert.Equal(t, singleResults, multiResults)
}

func randomPoint(rng *rand.Rand, scale float64) geotree.Vec3 {
	return geotree.Vec3{
		X: (rng.Float64()*2 - 1) * scale,
		Y: (rng.Float64()*2 - 1) * scale,
		Z: (rng.Float64()*2 - 1) * scale,
	}
}
