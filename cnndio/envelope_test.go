package cnndio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/cnndio"
	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/network"
)

type stubData struct{ props map[string]string }

func (d *stubData) CalculateCustomNodeType() (dtype.DataType, bool) { return dtype.DataType{}, false }
func (d *stubData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	return dtype.NetworkResult{}
}
func (d *stubData) GetSubtitle() string { return "" }
func (d *stubData) GetTextProperties() map[string]string {
	return d.props
}
func (d *stubData) SetTextProperties(props map[string]string) { d.props = props }

func catalog() map[string]network.NodeType {
	floatT := dtype.Leaf(dtype.KindFloat)
	return map[string]network.NodeType{
		"literal": {Name: "literal", Output: floatT},
		"add": {
			Name:      "add",
			InputName: []string{"a", "b"},
			InputType: []dtype.DataType{floatT, floatT},
			Output:    floatT,
		},
	}
}

func resolve(cat map[string]network.NodeType) cnndio.Resolver {
	return func(name string) (network.NodeType, bool) {
		t, ok := cat[name]
		return t, ok
	}
}

func newData() cnndio.NewNodeData {
	return func(typeName string) (network.NodeData, error) {
		return &stubData{}, nil
	}
}

func TestEncodeDecodeEnvelopeRoundTrips(t *testing.T) {
	cat := catalog()
	r := resolve(cat)

	n := network.NewNodeNetwork(network.WithTypeResolver(r))
	a := n.AddNode("literal", network.Position{X: 1, Y: 2}, 0, &stubData{props: map[string]string{"value": "3.14"}})
	b := n.AddNode("literal", network.Position{}, 0, &stubData{props: map[string]string{"value": "2.0"}})
	sum := n.AddNode("add", network.Position{}, 2, &stubData{})
	require.NoError(t, n.Connect(a, 0, sum, 0))
	require.NoError(t, n.Connect(b, 0, sum, 1))
	require.NoError(t, n.SetReturnNode(sum))
	require.NoError(t, n.SetDisplay(sum, true))

	env, err := cnndio.EncodeEnvelope(map[string]*network.NodeNetwork{"main": n}, r)
	require.NoError(t, err)

	raw, err := cnndio.Marshal(env)
	require.NoError(t, err)

	parsedEnv, err := cnndio.Unmarshal(raw)
	require.NoError(t, err)

	decoded, err := cnndio.DecodeEnvelope(parsedEnv, r, newData())
	require.NoError(t, err)

	main, ok := decoded["main"]
	require.True(t, ok)

	returnID, ok := main.ReturnNode()
	require.True(t, ok)
	assert.Equal(t, sum, returnID)

	node, ok := main.Node(returnID)
	require.True(t, ok)
	assert.Equal(t, "add", node.TypeName)
	assert.Len(t, node.Inputs[0].Wires(), 1)
	assert.Len(t, node.Inputs[1].Wires(), 1)
	assert.Contains(t, main.DisplayedNodeIDs(), sum)

	litNode, ok := main.Node(a)
	require.True(t, ok)
	lit := litNode.Data.(*stubData)
	assert.Equal(t, "3.14", lit.props["value"])
}

func TestRelativizeAndAbsolutizePath(t *testing.T) {
	base := "/home/user/project"
	rel := cnndio.RelativizePath(base, "/home/user/project/imports/cell.xyz")
	assert.Equal(t, "imports/cell.xyz", rel)
	abs := cnndio.AbsolutizePath(base, rel)
	assert.Equal(t, "/home/user/project/imports/cell.xyz", abs)
}
