package builtin_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/builtin"
	"github.com/nanocad-org/structkit/evaluator"
	"github.com/nanocad-org/structkit/geotree"
	"github.com/nanocad-org/structkit/network"
	"github.com/nanocad-org/structkit/registry"
	"github.com/nanocad-org/structkit/textfmt"
	"github.com/nanocad-org/structkit/unitcell"
)

func newRegistry() *registry.NodeTypeRegistry {
	reg := registry.NewNodeTypeRegistry(nil)
	builtin.RegisterAll(reg)
	return reg
}

func resolverFor(reg *registry.NodeTypeRegistry) func(string) (network.NodeType, bool) {
	return func(name string) (network.NodeType, bool) {
		t, err := reg.Resolve(name, nil)
		return t, err == nil
	}
}

func newData(t *testing.T, typeName string) network.NodeData {
	t.Helper()
	d, err := builtin.NewNodeData(typeName)
	require.NoError(t, err)
	return d
}

func fstr(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// vec3Node adds a vec3_value literal node holding v.
func vec3Node(t *testing.T, n *network.NodeNetwork, v unitcell.Vec3) uint64 {
	t.Helper()
	data := newData(t, "vec3_value")
	data.SetTextProperties(map[string]string{"value": fstr(v.X) + "," + fstr(v.Y) + "," + fstr(v.Z)})
	return n.AddNode("vec3_value", network.Position{}, 0, data)
}

// floatNode adds a float_value literal node holding v.
func floatNode(t *testing.T, n *network.NodeNetwork, v float64) uint64 {
	t.Helper()
	data := newData(t, "float_value")
	data.SetTextProperties(map[string]string{"value": fstr(v)})
	return n.AddNode("float_value", network.Position{}, 0, data)
}

// TestSphereEvaluation covers the single-sphere end-to-end scenario:
// a sphere node wired from vec3/float literals evaluates to a Geometry3D
// whose SDF is negative at the center by exactly -radius.
func TestSphereEvaluation(t *testing.T) {
	reg := newRegistry()
	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))

	center := vec3Node(t, n, unitcell.Vec3{})
	radius := floatNode(t, n, 2)
	sphere := n.AddNode("sphere", network.Position{}, 2, newData(t, "sphere"))
	require.NoError(t, n.Connect(center, 0, sphere, 0))
	require.NoError(t, n.Connect(radius, 0, sphere, 1))

	ctx := evaluator.NewContext()
	result := evaluator.Evaluate(evaluator.RootStack(n), sphere, reg, ctx)
	require.False(t, result.IsError(), result.ErrMessage)

	g, ok := result.ExtractGeometry3D()
	require.True(t, ok)
	assert.InDelta(t, -2, g.Root.Sdf3D(geotree.Vec3{}), 1e-9)
	assert.InDelta(t, 98, g.Root.Sdf3D(geotree.Vec3{X: 100}), 1e-9)
}

// TestDifferenceEvaluation covers the boolean-difference scenario: a
// cuboid minus a sphere is positive inside the subtracted sphere and
// negative in the rest of the cuboid.
func TestDifferenceEvaluation(t *testing.T) {
	reg := newRegistry()
	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))

	cuboidCenter := vec3Node(t, n, unitcell.Vec3{})
	cuboidSize := vec3Node(t, n, unitcell.Vec3{X: 10, Y: 10, Z: 10})
	cuboid := n.AddNode("cuboid", network.Position{}, 2, newData(t, "cuboid"))
	require.NoError(t, n.Connect(cuboidCenter, 0, cuboid, 0))
	require.NoError(t, n.Connect(cuboidSize, 0, cuboid, 1))

	sphereCenter := vec3Node(t, n, unitcell.Vec3{})
	sphereRadius := floatNode(t, n, 3)
	sphere := n.AddNode("sphere", network.Position{}, 2, newData(t, "sphere"))
	require.NoError(t, n.Connect(sphereCenter, 0, sphere, 0))
	require.NoError(t, n.Connect(sphereRadius, 0, sphere, 1))

	diffNode := n.AddNode("diff", network.Position{}, 2, newData(t, "diff"))
	require.NoError(t, n.Connect(cuboid, 0, diffNode, 0))
	require.NoError(t, n.Connect(sphere, 0, diffNode, 1))

	ctx := evaluator.NewContext()
	result := evaluator.Evaluate(evaluator.RootStack(n), diffNode, reg, ctx)
	require.False(t, result.IsError(), result.ErrMessage)

	g, ok := result.ExtractGeometry3D()
	require.True(t, ok)
	assert.InDelta(t, 3, g.Root.Sdf3D(geotree.Vec3{}), 1e-9)
	assert.Less(t, g.Root.Sdf3D(geotree.Vec3{X: 4}), 0.0)
}

// TestMissingRequiredInputPropagates covers error propagation through the
// graph: a diff node with an unwired base pin evaluates to an Error
// naming the missing input, and that error propagates unchanged through a
// downstream consumer.
func TestMissingRequiredInputPropagates(t *testing.T) {
	reg := newRegistry()
	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))

	sphereCenter := vec3Node(t, n, unitcell.Vec3{})
	sphereRadius := floatNode(t, n, 1)
	sphere := n.AddNode("sphere", network.Position{}, 2, newData(t, "sphere"))
	require.NoError(t, n.Connect(sphereCenter, 0, sphere, 0))
	require.NoError(t, n.Connect(sphereRadius, 0, sphere, 1))

	diffNode := n.AddNode("diff", network.Position{}, 2, newData(t, "diff"))
	require.NoError(t, n.Connect(sphere, 0, diffNode, 1))

	negateNode := n.AddNode("negate", network.Position{}, 1, newData(t, "negate"))
	require.NoError(t, n.Connect(diffNode, 0, negateNode, 0))

	ctx := evaluator.NewContext()
	result := evaluator.Evaluate(evaluator.RootStack(n), negateNode, reg, ctx)
	require.True(t, result.IsError())
	assert.Contains(t, result.ErrMessage, "base")
	assert.Contains(t, ctx.NodeErrors, diffNode)
}

// TestRegisterAllCoversResolveAndNewNodeData checks every catalog entry
// round-trips through both Resolve and NewNodeData, the two lookup paths
// textfmt/cnndio rely on when decoding a saved design.
func TestRegisterAllCoversResolveAndNewNodeData(t *testing.T) {
	reg := newRegistry()
	for _, name := range []string{
		"bool_value", "int_value", "float_value", "string_value",
		"vec2_value", "vec3_value", "ivec2_value", "ivec3_value",
		"parameter", "cuboid", "sphere", "half_space", "union",
		"intersect", "diff", "negate", "geo_transform",
		"circle", "half_plane", "polygon", "rect", "extrude",
		"union_2d", "intersect_2d", "diff_2d", "negate_2d",
		"motif_node", "crystal_fill", "geo_to_atomic", "atom_edit", "edit_atomic",
		"unit_cell", "drawing_plane", "closure", "call", "map",
		"add", "multiply",
	} {
		typ, err := reg.Resolve(name, nil)
		require.NoError(t, err, "resolve %s", name)
		assert.Equal(t, name, typ.Name, "node type name for %s", name)

		data, err := builtin.NewNodeData(name)
		require.NoError(t, err, "new node data %s", name)
		require.NotNil(t, data)
	}
}

func TestNewNodeDataUnknownType(t *testing.T) {
	_, err := builtin.NewNodeData("not_a_real_type")
	require.Error(t, err)
}

// TestTextRoundTripThroughBuiltinCatalog exercises the text-format
// round-trip against the real built-in catalog: a float literal
// wired into a sphere's radius pin must serialize and re-parse back to a
// structurally equivalent network, and the reconstructed network must
// evaluate to the same geometry.
func TestTextRoundTripThroughBuiltinCatalog(t *testing.T) {
	reg := newRegistry()
	resolve := textfmt.Resolver(resolverFor(reg))

	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))
	center := vec3Node(t, n, unitcell.Vec3{})
	radius := floatNode(t, n, 3.14)
	sphere := n.AddNode("sphere", network.Position{}, 2, newData(t, "sphere"))
	require.NoError(t, n.Connect(center, 0, sphere, 0))
	require.NoError(t, n.Connect(radius, 0, sphere, 1))
	require.NoError(t, n.SetReturnNode(sphere))

	src, err := textfmt.Serialize(n, resolve)
	require.NoError(t, err)

	parsed, err := textfmt.Parse(src, resolve, builtin.NewNodeData)
	require.NoError(t, err)

	returnID, ok := parsed.ReturnNode()
	require.True(t, ok)

	ctx := evaluator.NewContext()
	result := evaluator.Evaluate(evaluator.RootStack(parsed), returnID, reg, ctx)
	require.False(t, result.IsError(), result.ErrMessage)
	g, ok := result.ExtractGeometry3D()
	require.True(t, ok)
	assert.InDelta(t, -3.14, g.Root.Sdf3D(geotree.Vec3{}), 1e-9)

	src2, err := textfmt.Serialize(parsed, resolve)
	require.NoError(t, err)
	assert.Equal(t, src, src2)
}

// TestSphereInLatticeFrame mirrors the lattice-authored sphere scenario: a
// sphere whose unit_cell pin carries the cubic diamond cell places its
// radius in lattice units, so the emitted GeoTree sphere's world radius is
// radius times the lattice constant.
func TestSphereInLatticeFrame(t *testing.T) {
	reg := newRegistry()
	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))

	center := vec3Node(t, n, unitcell.Vec3{})
	radius := floatNode(t, n, 2)
	cell := n.AddNode("unit_cell", network.Position{}, 0, newData(t, "unit_cell"))
	sphere := n.AddNode("sphere", network.Position{}, 3, newData(t, "sphere"))
	require.NoError(t, n.Connect(center, 0, sphere, 0))
	require.NoError(t, n.Connect(radius, 0, sphere, 1))
	require.NoError(t, n.Connect(cell, 0, sphere, 2))

	result := evaluator.Evaluate(evaluator.RootStack(n), sphere, reg, evaluator.NewContext())
	require.False(t, result.IsError(), result.ErrMessage)

	g, ok := result.ExtractGeometry3D()
	require.True(t, ok)
	const diamondA = 3.567
	assert.InDelta(t, -2*diamondA, g.Root.Sdf3D(geotree.Vec3{}), 1e-9)
	assert.InDelta(t, 100-2*diamondA, g.Root.Sdf3D(geotree.Vec3{X: 100}), 1e-9)
	la, lb, lc := g.UnitCell.Lengths()
	assert.InDelta(t, diamondA, la, 1e-9)
	assert.InDelta(t, diamondA, lb, 1e-9)
	assert.InDelta(t, diamondA, lc, 1e-9)
}

// TestUnionRejectsUnitCellMismatch wires one lattice-framed sphere and one
// identity-framed sphere into the same union: the boolean op must refuse
// to combine geometries authored in incompatible unit cells.
func TestUnionRejectsUnitCellMismatch(t *testing.T) {
	reg := newRegistry()
	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))

	mkSphere := func(withCell bool) uint64 {
		center := vec3Node(t, n, unitcell.Vec3{})
		radius := floatNode(t, n, 1)
		sphere := n.AddNode("sphere", network.Position{}, 3, newData(t, "sphere"))
		require.NoError(t, n.Connect(center, 0, sphere, 0))
		require.NoError(t, n.Connect(radius, 0, sphere, 1))
		if withCell {
			cell := n.AddNode("unit_cell", network.Position{}, 0, newData(t, "unit_cell"))
			require.NoError(t, n.Connect(cell, 0, sphere, 2))
		}
		return sphere
	}

	unionNode := n.AddNode("union", network.Position{}, 1, newData(t, "union"))
	require.NoError(t, n.Connect(mkSphere(true), 0, unionNode, 0))
	require.NoError(t, n.Connect(mkSphere(false), 0, unionNode, 0))

	result := evaluator.Evaluate(evaluator.RootStack(n), unionNode, reg, evaluator.NewContext())
	require.True(t, result.IsError())
	assert.Contains(t, result.ErrMessage, "unit cell mismatch")
}

// TestUnionCombinesMultipleWires checks the multi-wire Array pin path:
// two compatible spheres wired into one shapes pin union by pointwise min.
func TestUnionCombinesMultipleWires(t *testing.T) {
	reg := newRegistry()
	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))

	mkSphere := func(cx float64) uint64 {
		center := vec3Node(t, n, unitcell.Vec3{X: cx})
		radius := floatNode(t, n, 1)
		sphere := n.AddNode("sphere", network.Position{}, 3, newData(t, "sphere"))
		require.NoError(t, n.Connect(center, 0, sphere, 0))
		require.NoError(t, n.Connect(radius, 0, sphere, 1))
		return sphere
	}

	unionNode := n.AddNode("union", network.Position{}, 1, newData(t, "union"))
	require.NoError(t, n.Connect(mkSphere(0), 0, unionNode, 0))
	require.NoError(t, n.Connect(mkSphere(5), 0, unionNode, 0))

	result := evaluator.Evaluate(evaluator.RootStack(n), unionNode, reg, evaluator.NewContext())
	require.False(t, result.IsError(), result.ErrMessage)
	g, ok := result.ExtractGeometry3D()
	require.True(t, ok)
	assert.InDelta(t, -1, g.Root.Sdf3D(geotree.Vec3{}), 1e-9)
	assert.InDelta(t, -1, g.Root.Sdf3D(geotree.Vec3{X: 5}), 1e-9)
	assert.InDelta(t, 1.5, g.Root.Sdf3D(geotree.Vec3{X: 2.5}), 1e-9)
}

// TestDrawingPlaneNode builds a (0,0,1) plane in the default cell and
// checks the in-plane basis is perpendicular to the Miller index.
func TestDrawingPlaneNode(t *testing.T) {
	reg := newRegistry()
	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))

	cell := n.AddNode("unit_cell", network.Position{}, 0, newData(t, "unit_cell"))
	millerData := newData(t, "ivec3_value")
	millerData.SetTextProperties(map[string]string{"value": "0,0,1"})
	miller := n.AddNode("ivec3_value", network.Position{}, 0, millerData)
	plane := n.AddNode("drawing_plane", network.Position{}, 3, newData(t, "drawing_plane"))
	require.NoError(t, n.Connect(cell, 0, plane, 0))
	require.NoError(t, n.Connect(miller, 0, plane, 1))

	result := evaluator.Evaluate(evaluator.RootStack(n), plane, reg, evaluator.NewContext())
	require.False(t, result.IsError(), result.ErrMessage)

	dp := result.DrawPlane
	require.NotNil(t, dp)
	assert.Zero(t, dp.UAxis.Dot(dp.MillerIndex))
	assert.Zero(t, dp.VAxis.Dot(dp.MillerIndex))
}

// registerDoubler registers a user subnetwork "double_it" (parameter x ->
// multiply by 2) used by the closure tests.
func registerDoubler(t *testing.T, reg *registry.NodeTypeRegistry) {
	t.Helper()
	sub := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))
	paramData := newData(t, "parameter")
	paramData.SetTextProperties(map[string]string{"name": "x", "sort_order": "0", "type": "Float"})
	param := sub.AddNode("parameter", network.Position{}, 0, paramData)
	two := floatNode(t, sub, 2)
	mul := sub.AddNode("multiply", network.Position{}, 2, newData(t, "multiply"))
	require.NoError(t, sub.Connect(param, 0, mul, 0))
	require.NoError(t, sub.Connect(two, 0, mul, 1))
	require.NoError(t, sub.SetReturnNode(mul))
	reg.RegisterNetwork("double_it", sub)
}

// TestClosureCallAppliesSubnetwork lifts a subnetwork into a closure and
// applies it through a call node: parameter nodes inside the applied
// subnetwork read their values from the call's bound arguments.
func TestClosureCallAppliesSubnetwork(t *testing.T) {
	reg := newRegistry()
	registerDoubler(t, reg)

	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))
	closureData := newData(t, "closure")
	closureData.SetTextProperties(map[string]string{"network": "double_it"})
	closure := n.AddNode("closure", network.Position{}, 0, closureData)
	arg := floatNode(t, n, 21)
	callNode := n.AddNode("call", network.Position{}, 2, newData(t, "call"))
	require.NoError(t, n.Connect(closure, 0, callNode, 0))
	require.NoError(t, n.Connect(arg, 0, callNode, 1))

	result := evaluator.Evaluate(evaluator.RootStack(n), callNode, reg, evaluator.NewContext())
	require.False(t, result.IsError(), result.ErrMessage)
	v, ok := result.ExtractFloat()
	require.True(t, ok)
	assert.Equal(t, 42.0, v)
}

// TestMapAppliesClosurePerElement maps the doubling closure over three
// literals, expecting an element-wise doubled Array in wiring order.
func TestMapAppliesClosurePerElement(t *testing.T) {
	reg := newRegistry()
	registerDoubler(t, reg)

	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))
	closureData := newData(t, "closure")
	closureData.SetTextProperties(map[string]string{"network": "double_it"})
	closure := n.AddNode("closure", network.Position{}, 0, closureData)

	mapNode := n.AddNode("map", network.Position{}, 2, newData(t, "map"))
	require.NoError(t, n.Connect(closure, 0, mapNode, 0))
	for _, v := range []float64{1, 2.5, -3} {
		require.NoError(t, n.Connect(floatNode(t, n, v), 0, mapNode, 1))
	}

	result := evaluator.Evaluate(evaluator.RootStack(n), mapNode, reg, evaluator.NewContext())
	require.False(t, result.IsError(), result.ErrMessage)
	elems, ok := result.ExtractArray()
	require.True(t, ok)
	require.Len(t, elems, 3)
	for i, want := range []float64{2, 5, -6} {
		v, ok := elems[i].ExtractFloat()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
}

// ivec3Node adds an ivec3_value literal node holding (x,y,z).
func ivec3Node(t *testing.T, n *network.NodeNetwork, x, y, z int64) uint64 {
	t.Helper()
	data := newData(t, "ivec3_value")
	data.SetTextProperties(map[string]string{
		"value": strconv.FormatInt(x, 10) + "," + strconv.FormatInt(y, 10) + "," + strconv.FormatInt(z, 10),
	})
	return n.AddNode("ivec3_value", network.Position{}, 0, data)
}

// TestCrystalFillAndAtomEditPipeline runs the full lattice pipeline
// through the node graph: a lattice-framed sphere region filled with the
// diamond motif over a 5x5x5 cell scan (every candidate site lands inside,
// so the count is exactly cells x sites), then an atom-edit node whose
// diff overlay adds one atom.
func TestCrystalFillAndAtomEditPipeline(t *testing.T) {
	reg := newRegistry()
	n := network.NewNodeNetwork(network.WithTypeResolver(resolverFor(reg)))

	cellNode := n.AddNode("unit_cell", network.Position{}, 0, newData(t, "unit_cell"))

	center := vec3Node(t, n, unitcell.Vec3{})
	radius := floatNode(t, n, 2)
	sphere := n.AddNode("sphere", network.Position{}, 3, newData(t, "sphere"))
	require.NoError(t, n.Connect(center, 0, sphere, 0))
	require.NoError(t, n.Connect(radius, 0, sphere, 1))
	require.NoError(t, n.Connect(cellNode, 0, sphere, 2))

	motifNode := n.AddNode("motif_node", network.Position{}, 0, newData(t, "motif_node"))
	cellMin := ivec3Node(t, n, -2, -2, -2)
	cellMax := ivec3Node(t, n, 2, 2, 2)

	fill := n.AddNode("crystal_fill", network.Position{}, 7, newData(t, "crystal_fill"))
	require.NoError(t, n.Connect(sphere, 0, fill, 0))
	require.NoError(t, n.Connect(cellNode, 0, fill, 1))
	require.NoError(t, n.Connect(motifNode, 0, fill, 2))
	require.NoError(t, n.Connect(cellMin, 0, fill, 3))
	require.NoError(t, n.Connect(cellMax, 0, fill, 4))

	fillResult := evaluator.Evaluate(evaluator.RootStack(n), fill, reg, evaluator.NewContext())
	require.False(t, fillResult.IsError(), fillResult.ErrMessage)
	filled, ok := fillResult.ExtractAtomic()
	require.True(t, ok)
	assert.Equal(t, 5*5*5*8, filled.NumAtoms())

	editData := newData(t, "atom_edit")
	editData.SetTextProperties(map[string]string{"added_atoms": "7,0.5,0.5,0.5"})
	edit := n.AddNode("atom_edit", network.Position{}, 1, editData)
	require.NoError(t, n.Connect(fill, 0, edit, 0))

	editResult := evaluator.Evaluate(evaluator.RootStack(n), edit, reg, evaluator.NewContext())
	require.False(t, editResult.IsError(), editResult.ErrMessage)
	edited, ok := editResult.ExtractAtomic()
	require.True(t, ok)
	assert.Equal(t, filled.NumAtoms()+1, edited.NumAtoms())
}
