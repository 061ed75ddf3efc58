package geotree

import "github.com/nanocad-org/structkit/unitcell"

// Summary3D bundles a 3D GeoTree root with the lattice frame it was
// authored in and a convenience pose for gadgets (GeometrySummary).
type Summary3D struct {
	UnitCell      unitcell.UnitCell
	FrameTransform Xform
	Root           *Node
}

// Summary2D is the 2D analogue of Summary3D (GeometrySummary2D).
type Summary2D struct {
	UnitCell       unitcell.UnitCell
	FrameTransform Xform
	Root           *Node
}
