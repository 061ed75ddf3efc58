package builtin

import (
	"strconv"
	"strings"

	"github.com/nanocad-org/structkit/atomic"
	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/evaluator"
	"github.com/nanocad-org/structkit/motif"
	"github.com/nanocad-org/structkit/network"
)

// motifData exposes one of the three ready-made crystal motifs
// (motif.Diamond/Zincblende/Graphene) selected by its "preset" text
// property; authoring an arbitrary custom basis is done with
// motif.Builder directly rather than through the node graph.
type motifData struct {
	baseData
	Preset string
}

func (d *motifData) resolvedPreset() string {
	if d.Preset == "" {
		return "diamond"
	}
	return d.Preset
}

func (d *motifData) Eval([]dtype.NetworkResult) dtype.NetworkResult {
	switch d.resolvedPreset() {
	case "diamond":
		return dtype.MotifResult(motif.Diamond())
	case "zincblende":
		return dtype.MotifResult(motif.Zincblende())
	case "graphene":
		return dtype.MotifResult(motif.Graphene())
	default:
		return dtype.ErrorResult("motif_node: unknown preset %q", d.Preset)
	}
}
func (d *motifData) GetSubtitle() string { return d.resolvedPreset() }
func (d *motifData) GetTextProperties() map[string]string {
	return map[string]string{"preset": d.resolvedPreset()}
}
func (d *motifData) SetTextProperties(p map[string]string) { d.Preset = p["preset"] }

type crystalFillData struct{ baseData }

func (crystalFillData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	geometry, ok := evaluator.RequiredInput(args, 0, "geometry").ExtractGeometry3D()
	if !ok {
		return dtype.ErrorResult("crystal_fill: geometry must be a Geometry3D")
	}
	cell, ok := evaluator.RequiredInput(args, 1, "unit_cell").ExtractUnitCell()
	if !ok {
		return dtype.ErrorResult("crystal_fill: unit_cell must be a UnitCell")
	}
	m, ok := evaluator.RequiredInput(args, 2, "motif").ExtractMotif()
	if !ok {
		return dtype.ErrorResult("crystal_fill: motif must be a Motif")
	}
	cellMin, ok := evaluator.RequiredInput(args, 3, "cell_min").ExtractIVec3()
	if !ok {
		return dtype.ErrorResult("crystal_fill: cell_min must be an IVec3")
	}
	cellMax, ok := evaluator.RequiredInput(args, 4, "cell_max").ExtractIVec3()
	if !ok {
		return dtype.ErrorResult("crystal_fill: cell_max must be an IVec3")
	}
	cutSdf, _ := evaluator.OrDefault(args, 5, dtype.FloatResult(0)).ExtractFloat()
	passivate, _ := evaluator.OrDefault(args, 6, dtype.BoolResult(false)).ExtractBool()

	out, err := motif.Fill(geometry.Root, *cell, m,
		motif.WithCellRange(motif.CellRange{
			MinX: cellMin.X, MinY: cellMin.Y, MinZ: cellMin.Z,
			MaxX: cellMax.X, MaxY: cellMax.Y, MaxZ: cellMax.Z,
		}),
		motif.WithCutSdfValue(cutSdf),
		motif.WithPassivation(passivate),
	)
	if err != nil {
		return dtype.ErrorResult("crystal_fill: %s", err.Error())
	}
	return dtype.AtomicResult(out)
}

// atomEditData wraps an atomic.AtomEditData overlay: it composes its diff
// against whatever upstream atomic.Structure re-evaluates to, retaining
// the last composition's provenance map for UI consumption via
// network.CacheProvider.
type atomEditData struct {
	baseData
	overlay    *atomic.AtomEditData
	lastCache  *atomic.EvalCache
	outputDiff bool
}

func (d *atomEditData) ensureOverlay() *atomic.AtomEditData {
	if d.overlay == nil {
		d.overlay = atomic.NewAtomEditData()
	}
	return d.overlay
}

func (d *atomEditData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	base, ok := evaluator.RequiredInput(args, 0, "base").ExtractAtomic()
	if !ok {
		return dtype.ErrorResult("atom_edit: base must be an Atomic")
	}
	overlay := d.ensureOverlay()
	cache := overlay.Compose(base)
	d.lastCache = cache
	if d.outputDiff {
		return dtype.AtomicResult(overlay.Diff)
	}
	return dtype.AtomicResult(cache.Output)
}

// EvalCache implements network.CacheProvider.
func (d *atomEditData) EvalCache() any {
	if d.lastCache == nil {
		return nil
	}
	return d.lastCache
}

func (d *atomEditData) GetTextProperties() map[string]string {
	overlay := d.ensureOverlay()
	props := map[string]string{
		"tolerance":          formatFloat(overlay.Tolerance),
		"output_diff":        strconv.FormatBool(d.outputDiff),
		"include_base_bonds": strconv.FormatBool(overlay.IncludeBaseBondsInDiff),
		"added_atoms":        encodeAddedAtoms(overlay.Diff),
	}
	return props
}

func (d *atomEditData) SetTextProperties(p map[string]string) {
	overlay := d.ensureOverlay()
	overlay.Tolerance = parseFloat(p["tolerance"])
	if overlay.Tolerance == 0 {
		overlay.Tolerance = atomic.DefaultTolerance
	}
	d.outputDiff, _ = strconv.ParseBool(p["output_diff"])
	overlay.IncludeBaseBondsInDiff, _ = strconv.ParseBool(p["include_base_bonds"])
	decodeAddedAtoms(overlay.Diff, p["added_atoms"])
}

// encodeAddedAtoms/decodeAddedAtoms persist the diff overlay's own added
// atoms as "atomicNumber,x,y,z" records separated by ";", the only part of
// an AtomEditData overlay that is meaningful to save without a live
// editing session (bond-tool clicks and anchor moves are runtime-only).
func encodeAddedAtoms(diff *atomic.Structure) string {
	if diff == nil {
		return ""
	}
	var parts []string
	for _, a := range diff.LiveAtoms() {
		if _, anchored := diff.AnchorPositions[a.ID]; anchored {
			continue
		}
		parts = append(parts, strconv.FormatInt(int64(a.AtomicNumber), 10)+","+
			formatFloat(a.Position.X)+","+formatFloat(a.Position.Y)+","+formatFloat(a.Position.Z))
	}
	return strings.Join(parts, ";")
}

func decodeAddedAtoms(diff *atomic.Structure, s string) {
	if s == "" {
		return
	}
	for _, rec := range strings.Split(s, ";") {
		fields := strings.Split(rec, ",")
		if len(fields) != 4 {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 16)
		if err != nil {
			continue
		}
		diff.AddAtom(int16(n), atomic.Vec3{
			X: parseFloat(fields[1]), Y: parseFloat(fields[2]), Z: parseFloat(fields[3]),
		})
	}
}

func crystalEntries() map[string]catalogEntry {
	motifT := dtype.Leaf(dtype.KindMotif)
	geometry3D := dtype.Leaf(dtype.KindGeometry3D)
	unitCellT := dtype.Leaf(dtype.KindUnitCell)
	ivec3 := dtype.Leaf(dtype.KindIVec3)
	floatT := dtype.Leaf(dtype.KindFloat)
	boolT := dtype.Leaf(dtype.KindBool)
	atomicT := dtype.Leaf(dtype.KindAtomic)

	fillType := network.NodeType{
		InputName: []string{"geometry", "unit_cell", "motif", "cell_min", "cell_max", "cut_sdf_value", "passivate"},
		InputType: []dtype.DataType{geometry3D, unitCellT, motifT, ivec3, ivec3, floatT, boolT},
		Output:    atomicT,
	}
	editType := network.NodeType{InputName: []string{"base"}, InputType: []dtype.DataType{atomicT}, Output: atomicT}

	return map[string]catalogEntry{
		"motif_node": {
			nodeType: withName("motif_node", network.NodeType{Output: motifT}),
			newData:  func() network.NodeData { return &motifData{} },
		},
		"crystal_fill": {
			nodeType: withName("crystal_fill", fillType),
			newData:  func() network.NodeData { return &crystalFillData{} },
		},
		"geo_to_atomic": {
			nodeType: withName("geo_to_atomic", fillType),
			newData:  func() network.NodeData { return &crystalFillData{} },
		},
		"atom_edit": {
			nodeType: withName("atom_edit", editType),
			newData:  func() network.NodeData { return &atomEditData{} },
		},
		"edit_atomic": {
			nodeType: withName("edit_atomic", editType),
			newData:  func() network.NodeData { return &atomEditData{} },
		},
	}
}
