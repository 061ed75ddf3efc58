package geotree

import "math"

// Sdf3DBatch fills out[i] = Sdf3D(points[i]) for every i, in a fixed
// batch of BatchSize points (the caller pads any unused tail).
//
// Contract:
//   - len(points) == len(out) == BatchSize.
//   - Semantics are bit-identical to calling Sdf3D once per point; the
//     batched path exists to give vectorizing implementations a single
//     recursion entry point, but this tree walks per-operator and folds
//     pointwise, matching the scalar recursion exactly.
//
// Complexity: O(BatchSize * size of subtree rooted at n).
func (n *Node) Sdf3DBatch(points *[BatchSize]Vec3, out *[BatchSize]float64) {
	switch n.Kind {
	case KindHalfSpace:
		for i := range points {
			out[i] = points[i].sub(n.HalfSpaceConst).dot(n.HalfSpaceNormal)
		}
	case KindSphere:
		for i := range points {
			out[i] = points[i].sub(n.SphereCenter).length() - n.SphereRadius
		}
	case KindExtrude:
		for i := range points {
			out[i] = sdfExtrude(n, points[i])
		}
	case KindTransform:
		var local [BatchSize]Vec3
		for i := range points {
			local[i] = n.xformInverse.Apply(points[i])
		}
		n.XformShape.Sdf3DBatch(&local, out)
	case KindUnion3D, KindIntersection3D:
		foldBoolBatch3D(n, points, out)
	case KindDifference3D:
		var baseOut, subOut [BatchSize]float64
		n.DiffBase.Sdf3DBatch(points, &baseOut)
		n.DiffSub.Sdf3DBatch(points, &subOut)
		for i := range points {
			out[i] = maxF(baseOut[i], -subOut[i])
		}
	default:
		for i := range points {
			out[i] = n.Sdf3D(points[i])
		}
	}
}

// Sdf2DBatch is the 2D analogue of Sdf3DBatch.
func (n *Node) Sdf2DBatch(points *[BatchSize]Vec2, out *[BatchSize]float64) {
	switch n.Kind {
	case KindHalfPlane, KindCircle, KindPolygon, KindRect:
		for i := range points {
			out[i] = n.Sdf2D(points[i])
		}
	case KindTransform:
		var local [BatchSize]Vec2
		for i := range points {
			p3 := n.xformInverse.Apply(Vec3{X: points[i].X, Y: points[i].Y})
			local[i] = Vec2{X: p3.X, Y: p3.Y}
		}
		n.XformShape.Sdf2DBatch(&local, out)
	case KindUnion2D, KindIntersection2D:
		foldBoolBatch2D(n, points, out)
	case KindDifference2D:
		var baseOut, subOut [BatchSize]float64
		n.DiffBase.Sdf2DBatch(points, &baseOut)
		n.DiffSub.Sdf2DBatch(points, &subOut)
		for i := range points {
			out[i] = maxF(baseOut[i], -subOut[i])
		}
	default:
		for i := range points {
			out[i] = n.Sdf2D(points[i])
		}
	}
}

func foldBoolBatch3D(n *Node, points *[BatchSize]Vec3, out *[BatchSize]float64) {
	pick := minF
	init := infPos
	if n.Kind == KindIntersection3D {
		pick = maxF
		init = infNeg
	}
	for i := range out {
		out[i] = init()
	}
	var childOut [BatchSize]float64
	for _, shape := range n.Shapes {
		shape.Sdf3DBatch(points, &childOut)
		for i := range out {
			out[i] = pick(out[i], childOut[i])
		}
	}
}

func foldBoolBatch2D(n *Node, points *[BatchSize]Vec2, out *[BatchSize]float64) {
	pick := minF
	init := infPos
	if n.Kind == KindIntersection2D {
		pick = maxF
		init = infNeg
	}
	for i := range out {
		out[i] = init()
	}
	var childOut [BatchSize]float64
	for _, shape := range n.Shapes {
		shape.Sdf2DBatch(points, &childOut)
		for i := range out {
			out[i] = pick(out[i], childOut[i])
		}
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func infPos() float64 { return math.Inf(1) }
func infNeg() float64 { return math.Inf(-1) }
