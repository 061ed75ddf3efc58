package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/network"
	"github.com/nanocad-org/structkit/validate"
)

type stubParam struct {
	name string
	sort int
	ty   dtype.DataType
}

func (p *stubParam) CalculateCustomNodeType() (dtype.DataType, bool) { return p.ty, true }
func (p *stubParam) Eval(args []dtype.NetworkResult) dtype.NetworkResult { return dtype.None() }
func (p *stubParam) GetSubtitle() string { return p.name }
func (p *stubParam) GetTextProperties() map[string]string { return nil }
func (p *stubParam) SetTextProperties(map[string]string) {}
func (p *stubParam) ParamName() string { return p.name }
func (p *stubParam) ParamSortOrder() int { return p.sort }

func paramTypeOf(pd network.ParameterNodeData) dtype.DataType {
	ty, _ := pd.CalculateCustomNodeType()
	return ty
}

func TestValidateSynthesizesSortedParameterList(t *testing.T) {
	n := network.NewNodeNetwork()
	n.AddNode("parameter", network.Position{}, 0, &stubParam{name: "b", sort: 1, ty: dtype.Leaf(dtype.KindInt)})
	n.AddNode("parameter", network.Position{}, 0, &stubParam{name: "a", sort: 0, ty: dtype.Leaf(dtype.KindFloat)})

	result := validate.Validate(n, paramTypeOf)
	require.True(t, result.Valid)
	require.Len(t, result.Parameters, 2)
	assert.Equal(t, "a", result.Parameters[0].Name)
	assert.Equal(t, "b", result.Parameters[1].Name)
}

func TestValidateRejectsDuplicateParamName(t *testing.T) {
	n := network.NewNodeNetwork()
	n.AddNode("parameter", network.Position{}, 0, &stubParam{name: "x", sort: 0, ty: dtype.Leaf(dtype.KindInt)})
	n.AddNode("parameter", network.Position{}, 0, &stubParam{name: "x", sort: 1, ty: dtype.Leaf(dtype.KindInt)})

	result := validate.Validate(n, paramTypeOf)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
}

func TestValidateRejectsDuplicateSortOrder(t *testing.T) {
	n := network.NewNodeNetwork()
	n.AddNode("parameter", network.Position{}, 0, &stubParam{name: "x", sort: 0, ty: dtype.Leaf(dtype.KindInt)})
	n.AddNode("parameter", network.Position{}, 0, &stubParam{name: "y", sort: 0, ty: dtype.Leaf(dtype.KindInt)})

	result := validate.Validate(n, paramTypeOf)
	assert.False(t, result.Valid)
}

func TestInterfaceChanged(t *testing.T) {
	a := []validate.Parameter{{Name: "x", DataType: dtype.Leaf(dtype.KindInt)}}
	b := []validate.Parameter{{Name: "x", DataType: dtype.Leaf(dtype.KindInt)}}
	c := []validate.Parameter{{Name: "x", DataType: dtype.Leaf(dtype.KindFloat)}}

	assert.False(t, validate.InterfaceChanged(a, b))
	assert.True(t, validate.InterfaceChanged(a, c))
	assert.True(t, validate.InterfaceChanged(a, nil))
}
