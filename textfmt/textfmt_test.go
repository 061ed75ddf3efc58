package textfmt_test

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/network"
	"github.com/nanocad-org/structkit/textfmt"
)

// literalFloatData is a zero-input node whose sole property is its own
// Float value, formatted with an explicit decimal point per the
// float/int disambiguation rule of the text format.
type literalFloatData struct{ value float64 }

func (d *literalFloatData) CalculateCustomNodeType() (dtype.DataType, bool) { return dtype.DataType{}, false }
func (d *literalFloatData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	return dtype.FloatResult(d.value)
}
func (d *literalFloatData) GetSubtitle() string { return strconv.FormatFloat(d.value, 'f', -1, 64) }
func (d *literalFloatData) GetTextProperties() map[string]string {
	return map[string]string{"value": formatFloat(d.value)}
}
func (d *literalFloatData) SetTextProperties(props map[string]string) {
	if raw, ok := props["value"]; ok {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			d.value = f
		}
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}

// addData has two Float input pins and no properties of its own.
type addData struct{}

func (d *addData) CalculateCustomNodeType() (dtype.DataType, bool) { return dtype.DataType{}, false }
func (d *addData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	a, _ := args[0].ExtractFloat()
	b, _ := args[1].ExtractFloat()
	return dtype.FloatResult(a + b)
}
func (d *addData) GetSubtitle() string { return "add" }
func (d *addData) GetTextProperties() map[string]string { return nil }
func (d *addData) SetTextProperties(map[string]string) {}

func typeCatalog() map[string]network.NodeType {
	floatT := dtype.Leaf(dtype.KindFloat)
	return map[string]network.NodeType{
		"literal_float": {Name: "literal_float", Output: floatT},
		"add": {
			Name:      "add",
			InputName: []string{"a", "b"},
			InputType: []dtype.DataType{floatT, floatT},
			Output:    floatT,
		},
	}
}

func resolverFor(cat map[string]network.NodeType) textfmt.Resolver {
	return func(name string) (network.NodeType, bool) {
		t, ok := cat[name]
		return t, ok
	}
}

func newDataFor() textfmt.NewNodeData {
	return func(typeName string) (network.NodeData, error) {
		switch typeName {
		case "literal_float":
			return &literalFloatData{}, nil
		case "add":
			return &addData{}, nil
		default:
			return nil, fmt.Errorf("unknown type %q", typeName)
		}
	}
}

func TestSerializeThenParseRoundTrips(t *testing.T) {
	cat := typeCatalog()
	resolve := resolverFor(cat)

	n := network.NewNodeNetwork(network.WithTypeResolver(resolve))
	a := n.AddNode("literal_float", network.Position{}, 0, &literalFloatData{value: 3.14})
	b := n.AddNode("literal_float", network.Position{}, 0, &literalFloatData{value: 2})
	sum := n.AddNode("add", network.Position{}, 2, &addData{})
	require.NoError(t, n.Connect(a, 0, sum, 0))
	require.NoError(t, n.Connect(b, 0, sum, 1))
	require.NoError(t, n.SetReturnNode(sum))

	text, err := textfmt.Serialize(n, resolve)
	require.NoError(t, err)
	assert.Contains(t, text, "value: 3.14")
	assert.Contains(t, text, "value: 2.0")
	assert.Contains(t, text, "a: a")
	assert.Contains(t, text, "b: b")
	assert.Contains(t, text, "output c")

	parsed, err := textfmt.Parse(text, resolve, newDataFor())
	require.NoError(t, err)

	returnID, ok := parsed.ReturnNode()
	require.True(t, ok)
	node, ok := parsed.Node(returnID)
	require.True(t, ok)
	assert.Equal(t, "add", node.TypeName)
	assert.Len(t, node.Inputs[0].Wires(), 1)
	assert.Len(t, node.Inputs[1].Wires(), 1)

	srcNode, ok := parsed.Node(node.Inputs[0].Wires()[0].SrcID)
	require.True(t, ok)
	lit := srcNode.Data.(*literalFloatData)
	assert.InDelta(t, 3.14, lit.value, 1e-9)
}

func TestParseRejectsUnknownType(t *testing.T) {
	cat := typeCatalog()
	resolve := resolverFor(cat)
	_, err := textfmt.Parse(`a = mystery {}`, resolve, newDataFor())
	assert.ErrorIs(t, err, textfmt.ErrSyntax)
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	cat := typeCatalog()
	resolve := resolverFor(cat)
	text := "# a standalone constant\na = literal_float { value: 1.0 }\n\noutput a\n"
	n, err := textfmt.Parse(text, resolve, newDataFor())
	require.NoError(t, err)
	id, ok := n.ReturnNode()
	require.True(t, ok)
	node, _ := n.Node(id)
	assert.Equal(t, "literal_float", node.TypeName)
}
