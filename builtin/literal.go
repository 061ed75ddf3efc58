package builtin

import (
	"strconv"
	"strings"

	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/network"
	"github.com/nanocad-org/structkit/unitcell"
)

// formatFloat renders v with an explicit decimal point (the literal-value
// text convention "1" parses as an Int, "1.0" as a Float", so a Float
// literal's serialized text must never come out looking like an integer).
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v
}

type boolLiteralData struct {
	baseData
	Value bool
}

func (d *boolLiteralData) Eval([]dtype.NetworkResult) dtype.NetworkResult { return dtype.BoolResult(d.Value) }
func (d *boolLiteralData) GetSubtitle() string { return strconv.FormatBool(d.Value) }
func (d *boolLiteralData) GetTextProperties() map[string]string {
	return map[string]string{"value": strconv.FormatBool(d.Value)}
}
func (d *boolLiteralData) SetTextProperties(p map[string]string) {
	d.Value, _ = strconv.ParseBool(p["value"])
}

type intLiteralData struct {
	baseData
	Value int64
}

func (d *intLiteralData) Eval([]dtype.NetworkResult) dtype.NetworkResult { return dtype.IntResult(d.Value) }
func (d *intLiteralData) GetSubtitle() string { return strconv.FormatInt(d.Value, 10) }
func (d *intLiteralData) GetTextProperties() map[string]string {
	return map[string]string{"value": strconv.FormatInt(d.Value, 10)}
}
func (d *intLiteralData) SetTextProperties(p map[string]string) { d.Value = parseInt(p["value"]) }

type floatLiteralData struct {
	baseData
	Value float64
}

func (d *floatLiteralData) Eval([]dtype.NetworkResult) dtype.NetworkResult {
	return dtype.FloatResult(d.Value)
}
func (d *floatLiteralData) GetSubtitle() string { return formatFloat(d.Value) }
func (d *floatLiteralData) GetTextProperties() map[string]string {
	return map[string]string{"value": formatFloat(d.Value)}
}
func (d *floatLiteralData) SetTextProperties(p map[string]string) { d.Value = parseFloat(p["value"]) }

type stringLiteralData struct {
	baseData
	Value string
}

func (d *stringLiteralData) Eval([]dtype.NetworkResult) dtype.NetworkResult {
	return dtype.StringResult(d.Value)
}
func (d *stringLiteralData) GetSubtitle() string { return d.Value }
func (d *stringLiteralData) GetTextProperties() map[string]string {
	return map[string]string{"value": strconv.Quote(d.Value)}
}
func (d *stringLiteralData) SetTextProperties(p map[string]string) {
	if v, err := strconv.Unquote(p["value"]); err == nil {
		d.Value = v
	} else {
		d.Value = p["value"]
	}
}

type vec2LiteralData struct {
	baseData
	Value unitcell.Vec2
}

func (d *vec2LiteralData) Eval([]dtype.NetworkResult) dtype.NetworkResult { return dtype.Vec2Result(d.Value) }
func (d *vec2LiteralData) GetTextProperties() map[string]string {
	return map[string]string{"value": "(" + formatFloat(d.Value.X) + "," + formatFloat(d.Value.Y) + ")"}
}
func (d *vec2LiteralData) SetTextProperties(p map[string]string) {
	parts := strings.Split(strings.Trim(p["value"], "() "), ",")
	if len(parts) == 2 {
		d.Value = unitcell.Vec2{X: parseFloat(parts[0]), Y: parseFloat(parts[1])}
	}
}

type vec3LiteralData struct {
	baseData
	Value unitcell.Vec3
}

func (d *vec3LiteralData) Eval([]dtype.NetworkResult) dtype.NetworkResult { return dtype.Vec3Result(d.Value) }
func (d *vec3LiteralData) GetTextProperties() map[string]string {
	return map[string]string{
		"value": "(" + formatFloat(d.Value.X) + "," + formatFloat(d.Value.Y) + "," + formatFloat(d.Value.Z) + ")",
	}
}
func (d *vec3LiteralData) SetTextProperties(p map[string]string) {
	parts := strings.Split(strings.Trim(p["value"], "() "), ",")
	if len(parts) == 3 {
		d.Value = unitcell.Vec3{X: parseFloat(parts[0]), Y: parseFloat(parts[1]), Z: parseFloat(parts[2])}
	}
}

type ivec2LiteralData struct {
	baseData
	Value unitcell.IVec2
}

func (d *ivec2LiteralData) Eval([]dtype.NetworkResult) dtype.NetworkResult {
	return dtype.IVec2Result(d.Value)
}
func (d *ivec2LiteralData) GetTextProperties() map[string]string {
	return map[string]string{
		"value": "(" + strconv.FormatInt(d.Value.X, 10) + "," + strconv.FormatInt(d.Value.Y, 10) + ")",
	}
}
func (d *ivec2LiteralData) SetTextProperties(p map[string]string) {
	parts := strings.Split(strings.Trim(p["value"], "() "), ",")
	if len(parts) == 2 {
		d.Value = unitcell.IVec2{X: parseInt(parts[0]), Y: parseInt(parts[1])}
	}
}

type ivec3LiteralData struct {
	baseData
	Value unitcell.IVec3
}

func (d *ivec3LiteralData) Eval([]dtype.NetworkResult) dtype.NetworkResult {
	return dtype.IVec3Result(d.Value)
}
func (d *ivec3LiteralData) GetTextProperties() map[string]string {
	return map[string]string{
		"value": "(" + strconv.FormatInt(d.Value.X, 10) + "," + strconv.FormatInt(d.Value.Y, 10) + "," + strconv.FormatInt(d.Value.Z, 10) + ")",
	}
}
func (d *ivec3LiteralData) SetTextProperties(p map[string]string) {
	parts := strings.Split(strings.Trim(p["value"], "() "), ",")
	if len(parts) == 3 {
		d.Value = unitcell.IVec3{X: parseInt(parts[0]), Y: parseInt(parts[1]), Z: parseInt(parts[2])}
	}
}

func literalEntries() map[string]catalogEntry {
	leaf := func(k dtype.Kind) network.NodeType { return network.NodeType{Output: dtype.Leaf(k)} }
	return map[string]catalogEntry{
		"bool_value": {
			nodeType: withName("bool_value", leaf(dtype.KindBool)),
			newData:  func() network.NodeData { return &boolLiteralData{} },
		},
		"int_value": {
			nodeType: withName("int_value", leaf(dtype.KindInt)),
			newData:  func() network.NodeData { return &intLiteralData{} },
		},
		"float_value": {
			nodeType: withName("float_value", leaf(dtype.KindFloat)),
			newData:  func() network.NodeData { return &floatLiteralData{} },
		},
		"string_value": {
			nodeType: withName("string_value", leaf(dtype.KindString)),
			newData:  func() network.NodeData { return &stringLiteralData{} },
		},
		"vec2_value": {
			nodeType: withName("vec2_value", leaf(dtype.KindVec2)),
			newData:  func() network.NodeData { return &vec2LiteralData{} },
		},
		"vec3_value": {
			nodeType: withName("vec3_value", leaf(dtype.KindVec3)),
			newData:  func() network.NodeData { return &vec3LiteralData{} },
		},
		"ivec2_value": {
			nodeType: withName("ivec2_value", leaf(dtype.KindIVec2)),
			newData:  func() network.NodeData { return &ivec2LiteralData{} },
		},
		"ivec3_value": {
			nodeType: withName("ivec3_value", leaf(dtype.KindIVec3)),
			newData:  func() network.NodeData { return &ivec3LiteralData{} },
		},
	}
}

func withName(name string, t network.NodeType) network.NodeType {
	t.Name = name
	return t
}
