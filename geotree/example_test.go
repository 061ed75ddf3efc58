package geotree_test

import (
	"fmt"

	"github.com/nanocad-org/structkit/geotree"
)

// ExampleNode_Sdf3D demonstrates a sphere cut from a cuboid, mirroring the
// "single sphere" and "difference" walkthroughs: negative inside, positive
// outside, with the cut producing the sub-sphere's complement.
func ExampleNode_Sdf3D() {
	base := geotree.NewRectCuboid(geotree.Vec3{X: -5, Y: -5, Z: -5}, geotree.Vec3{X: 10, Y: 10, Z: 10})
	sub := geotree.NewSphere(geotree.Vec3{}, 3)
	shape := geotree.NewDifference3D(base, sub)

	fmt.Printf("%.0f\n", shape.Sdf3D(geotree.Vec3{}))
	fmt.Println(shape.Sdf3D(geotree.Vec3{X: 4}) < 0)
	// Output:
	// 3
	// true
}
