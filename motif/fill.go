package motif

import (
	"errors"
	"fmt"
	"math"

	"github.com/nanocad-org/structkit/atomic"
	"github.com/nanocad-org/structkit/geotree"
	"github.com/nanocad-org/structkit/unitcell"
)

// ErrNoAtomsPlaced indicates the cut-SDF threshold produced zero atoms.
var ErrNoAtomsPlaced = errors.New("motif: cut SDF produces no atoms")

// FillOptions configures CrystalFill.
type FillOptions struct {
	// CutSdfValue is the slack threshold (>= 0 is typical; default 0)
	// against which a candidate site's raw SDF value is compared:
	// sdf > CutSdfValue means "outside, skip".
	CutSdfValue float64

	// ParameterBindings overrides the motif's own parameter defaults.
	ParameterBindings map[string]int16

	// CellRange bounds the (i,j,k) motif-cell coordinates scanned; callers
	// derive this from the region's lattice-space bounding box.
	CellRange CellRange

	// Passivate enables the optional hydrogen-passivation subpass; off by
	// default, since valence capping is a modeling choice, not part of
	// placement itself.
	Passivate bool
}

// CellRange is an inclusive integer bounding box over motif-cell
// coordinates.
type CellRange struct {
	MinX, MinY, MinZ int64
	MaxX, MaxY, MaxZ int64
}

// FillOption configures a FillOptions value.
type FillOption func(*FillOptions)

// WithCutSdfValue overrides the cut-SDF slack threshold.
func WithCutSdfValue(v float64) FillOption {
	return func(o *FillOptions) { o.CutSdfValue = v }
}

// WithParameterBindings overrides the motif's parameter defaults.
func WithParameterBindings(bindings map[string]int16) FillOption {
	return func(o *FillOptions) { o.ParameterBindings = bindings }
}

// WithCellRange sets the scanned motif-cell coordinate range.
func WithCellRange(r CellRange) FillOption {
	return func(o *FillOptions) { o.CellRange = r }
}

// WithPassivation enables the hydrogen-passivation subpass.
func WithPassivation(enabled bool) FillOption {
	return func(o *FillOptions) { o.Passivate = enabled }
}

func defaultFillOptions() FillOptions {
	return FillOptions{CutSdfValue: 0}
}

// Fill places m into the 3D region described by root (evaluated in
// fractional lattice units, i.e. world points are divided by the unit
// cell's characteristic length before sampling root) and cell, emitting
// an atomic.Structure.
//
// Algorithm:
//  1. For each integer motif-cell coordinate c=(i,j,k) in opts.CellRange:
//     a. For each site s, compute world position p = cell·(c+s.Position).
//     b. Evaluate root.Sdf3D(p / latticeLength); if > opts.CutSdfValue,
//        skip.
//     c. Resolve the site's atomic number against the effective
//        parameter binding.
//     d. Add the atom; record (c,k) -> atom id in the tracker.
//  2. Bonds: for each placed atom, walk BondsBySite1Index, resolve the
//     neighbor address, and add a bond if the neighbor was placed too.
//  3. Optional hydrogen passivation (opts.Passivate).
//
// Errors:
//   - ErrNoAtomsPlaced if the loop emits zero atoms.
//   - a parameter-binding error if any site references an unresolved
//     parameter name.
func Fill(root *geotree.Node, cell unitcell.UnitCell, m *Motif, opts ...FillOption) (*atomic.Structure, error) {
	o := defaultFillOptions()
	for _, opt := range opts {
		opt(&o)
	}
	effective := m.EffectiveParameterElementValues(o.ParameterBindings)

	la, _, _ := cell.Lengths()
	latticeLength := la
	if latticeLength < 1e-12 {
		latticeLength = 1
	}

	out := atomic.NewStructure(false)
	out.Tracker = atomic.NewPlacedAtomTracker()

	var sumPos atomic.Vec3
	placed := 0

	for i := o.CellRange.MinX; i <= o.CellRange.MaxX; i++ {
		for j := o.CellRange.MinY; j <= o.CellRange.MaxY; j++ {
			for k := o.CellRange.MinZ; k <= o.CellRange.MaxZ; k++ {
				c := unitcell.IVec3{X: i, Y: j, Z: k}
				for siteIdx, site := range m.Sites {
					frac := unitcell.Vec3{
						X: float64(i) + site.Position.X,
						Y: float64(j) + site.Position.Y,
						Z: float64(k) + site.Position.Z,
					}
					worldPos := cell.DVec3LatticeToReal(frac)
					sdfQuery := geotree.Vec3{X: worldPos.X / latticeLength, Y: worldPos.Y / latticeLength, Z: worldPos.Z / latticeLength}
					if root.Sdf3D(sdfQuery) > o.CutSdfValue {
						continue
					}

					atomicNumber, rerr := m.ResolveAtomicNumber(site, effective)
					if rerr != nil {
						return nil, fmt.Errorf("motif: Fill: %w", rerr)
					}

					id := out.AddAtom(atomicNumber, atomic.Vec3{X: worldPos.X, Y: worldPos.Y, Z: worldPos.Z})
					out.Tracker.Record(atomic.CellSite{CellX: i, CellY: j, CellZ: k, SiteIndex: siteIdx}, id)
					sumPos = sumPos.Add(atomic.Vec3{X: worldPos.X, Y: worldPos.Y, Z: worldPos.Z})
					placed++
					_ = c
				}
			}
		}
	}

	if placed == 0 {
		return nil, ErrNoAtomsPlaced
	}

	placeBonds(out, m)
	if o.Passivate {
		passivate(out, m, o.CellRange)
	}

	centroid := sumPos.ScaleDiv(float64(placed))
	out.FrameTransform = atomic.FrameTransform{Translation: centroid, Rotation: atomic.IdentityFrame().Rotation}

	return out, nil
}

// placeBonds walks each placed atom's site-1 bond list and adds a bond for
// every neighbor address that was also placed; bonds referencing pruned
// atoms are silently dropped.
func placeBonds(out *atomic.Structure, m *Motif) {
	// Re-derive the (cell,site) addresses from the tracker to avoid a
	// second structure-wide scan keyed by atom id.
	for addr, atomID := range out.Tracker.Addresses() {
		siteIdx := addr.SiteIndex
		for _, bondIdx := range m.BondsBySite1Index[siteIdx] {
			b := m.Bonds[bondIdx]
			neighborCell := atomic.CellSite{
				CellX:     addr.CellX + b.Site2.RelativeCell.X,
				CellY:     addr.CellY + b.Site2.RelativeCell.Y,
				CellZ:     addr.CellZ + b.Site2.RelativeCell.Z,
				SiteIndex: b.Site2.SiteIndex,
			}
			neighborID, ok := out.Tracker.Lookup(neighborCell)
			if !ok {
				continue
			}
			_ = out.AddBondChecked(atomID, neighborID, b.Multiplicity)
		}
	}
}

// passivate adds a hydrogen atom along the missing-bond direction for
// every placed atom whose expected bonds (checked via both
// BondsBySite1Index and BondsBySite2Index) are incomplete due to region
// clipping. Off by default (see FillOptions.Passivate); an opt-in hook
// rather than a uniform postprocess.
const hydrogenBondFraction = 0.3

func passivate(out *atomic.Structure, m *Motif, _ CellRange) {
	for addr, atomID := range out.Tracker.Addresses() {
		siteIdx := addr.SiteIndex
		missing := missingBondDirections(out, m, addr, siteIdx)
		for _, dir := range missing {
			atomPos, err := out.Atom(atomID)
			if err != nil {
				continue
			}
			hPos := atomPos.Position.Add(dir.Scale(hydrogenBondFraction))
			hID := out.AddAtom(1, hPos)
			_ = out.AddBondChecked(atomID, hID, 1)
		}
	}
}

// missingBondDirections returns, for the atom placed at addr, the
// direction vectors of every motif bond (by site1 or site2 adjacency) that
// should exist but whose neighbor was not placed (clipped by the region).
func missingBondDirections(out *atomic.Structure, m *Motif, addr atomic.CellSite, siteIdx int) []atomic.Vec3 {
	var dirs []atomic.Vec3
	selfAtom, err := out.Atom(mustLookup(out, addr))
	if err != nil {
		return nil
	}

	for _, bondIdx := range m.BondsBySite1Index[siteIdx] {
		b := m.Bonds[bondIdx]
		neighborAddr := atomic.CellSite{
			CellX:     addr.CellX + b.Site2.RelativeCell.X,
			CellY:     addr.CellY + b.Site2.RelativeCell.Y,
			CellZ:     addr.CellZ + b.Site2.RelativeCell.Z,
			SiteIndex: b.Site2.SiteIndex,
		}
		if _, ok := out.Tracker.Lookup(neighborAddr); ok {
			continue
		}
		dirs = append(dirs, expectedDirection(m, siteIdx, b.Site2.SiteIndex, b.Site2.RelativeCell, selfAtom.Position))
	}
	for _, bondIdx := range m.BondsBySite2Index[siteIdx] {
		b := m.Bonds[bondIdx]
		neighborAddr := atomic.CellSite{
			CellX:     addr.CellX - b.Site1.RelativeCell.X,
			CellY:     addr.CellY - b.Site1.RelativeCell.Y,
			CellZ:     addr.CellZ - b.Site1.RelativeCell.Z,
			SiteIndex: b.Site1.SiteIndex,
		}
		if _, ok := out.Tracker.Lookup(neighborAddr); ok {
			continue
		}
		dirs = append(dirs, expectedDirection(m, siteIdx, b.Site1.SiteIndex, RelativeCell{
			X: -b.Site1.RelativeCell.X, Y: -b.Site1.RelativeCell.Y, Z: -b.Site1.RelativeCell.Z,
		}, selfAtom.Position))
	}
	return dirs
}

// expectedDirection returns a unit-ish direction estimate from a site to
// its bonded neighbor in fractional-coordinate space, used only to aim the
// passivating hydrogen (exact bond length is not required of a valence
// cap).
func expectedDirection(m *Motif, fromSite, toSite int, rel RelativeCell, _ atomic.Vec3) atomic.Vec3 {
	from := m.Sites[fromSite].Position
	to := m.Sites[toSite].Position
	d := atomic.Vec3{
		X: (to.X + float64(rel.X)) - from.X,
		Y: (to.Y + float64(rel.Y)) - from.Y,
		Z: (to.Z + float64(rel.Z)) - from.Z,
	}
	l := math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
	if l < 1e-9 {
		return atomic.Vec3{Z: 1}
	}
	return atomic.Vec3{X: d.X / l, Y: d.Y / l, Z: d.Z / l}
}

func mustLookup(out *atomic.Structure, addr atomic.CellSite) uint32 {
	id, _ := out.Tracker.Lookup(addr)
	return id
}
