package dtype_test

import (
	"fmt"

	"github.com/nanocad-org/structkit/dtype"
)

// ExampleNetworkResult_ToDisplayString demonstrates the short subtitle form
// used by a node's display string.
func ExampleNetworkResult_ToDisplayString() {
	r := dtype.FloatResult(3.25)
	fmt.Println(r.ToDisplayString())
	// Output:
	// 3.25
}

// ExampleNetworkResult_PropagateError shows a required-input Error result
// propagating unchanged.
func ExampleNetworkResult_PropagateError() {
	err := dtype.ErrorResult("missing required input")
	propagated, ok := err.PropagateError()
	fmt.Println(ok, propagated.ErrMessage)
	// Output:
	// true missing required input
}
