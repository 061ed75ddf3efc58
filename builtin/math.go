package builtin

import (
	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/evaluator"
	"github.com/nanocad-org/structkit/network"
)

// binaryFloat gathers two required Float inputs for the arithmetic nodes.
func binaryFloat(args []dtype.NetworkResult, op string) (a, b float64, errResult dtype.NetworkResult, failed bool) {
	av, ok := evaluator.RequiredInput(args, 0, "a").ExtractFloat()
	if !ok {
		return 0, 0, dtype.ErrorResult("%s: a must be a Float", op), true
	}
	bv, ok := evaluator.RequiredInput(args, 1, "b").ExtractFloat()
	if !ok {
		return 0, 0, dtype.ErrorResult("%s: b must be a Float", op), true
	}
	return av, bv, dtype.NetworkResult{}, false
}

type addData struct{ baseData }

func (addData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	a, b, errResult, failed := binaryFloat(args, "add")
	if failed {
		return errResult
	}
	return dtype.FloatResult(a + b)
}

type multiplyData struct{ baseData }

func (multiplyData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	a, b, errResult, failed := binaryFloat(args, "multiply")
	if failed {
		return errResult
	}
	return dtype.FloatResult(a * b)
}

func mathEntries() map[string]catalogEntry {
	floatT := dtype.Leaf(dtype.KindFloat)
	binary := func(name string) network.NodeType {
		return network.NodeType{Name: name, InputName: []string{"a", "b"}, InputType: []dtype.DataType{floatT, floatT}, Output: floatT}
	}
	return map[string]catalogEntry{
		"add": {
			nodeType: binary("add"),
			newData:  func() network.NodeData { return &addData{} },
		},
		"multiply": {
			nodeType: binary("multiply"),
			newData:  func() network.NodeData { return &multiplyData{} },
		},
	}
}
