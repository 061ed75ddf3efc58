// Package motif implements the crystallographic Motif type (a
// parameterized basis of sites and bonds in fractional lattice
// coordinates) and the CrystalFill placement engine that clips a motif
// into a GeoTree-bounded region, emitting an atomic.Structure.
//
// Bonds reference sites via (site_index, relative_cell) pairs, not raw
// atom ids, so a single motif bond expands to one concrete bond per
// placed cell. BuildMotif composes named Constructor steps into a
// finished motif; Diamond, Zincblende, and Graphene are ready-made
// presets built the same way.
package motif

import "fmt"

// ParameterElement is a named, defaultable atomic-number parameter a motif
// exposes (referenced by Site.AtomicNumber < 0).
type ParameterElement struct {
	Name                string
	DefaultAtomicNumber int16
}

// FracVec3 is a fractional lattice-coordinate position.
type FracVec3 struct{ X, Y, Z float64 }

// Site is one basis atom of a motif. AtomicNumber >= 0 names a concrete
// element; AtomicNumber < 0 references Motif.Parameters[-AtomicNumber-1]
// (i.e. -1 is parameter[0]).
type Site struct {
	AtomicNumber int16
	Position     FracVec3
}

// RelativeCell is an integer motif-cell offset.
type RelativeCell struct{ X, Y, Z int64 }

// SiteSpecifier addresses a site within some relative cell from a bond's
// own reference cell.
type SiteSpecifier struct {
	SiteIndex    int
	RelativeCell RelativeCell
}

// MotifBond connects two sites, each possibly in a different relative
// cell, with an integer bond multiplicity (1=single, 2=double, ...).
type MotifBond struct {
	Site1, Site2 SiteSpecifier
	Multiplicity int
}

// Motif is a parameterized basis of sites and bonds in fractional
// unit-cell coordinates, plus precomputed bond-adjacency indices.
type Motif struct {
	Parameters []ParameterElement
	Sites      []Site
	Bonds      []MotifBond

	// BondsBySite1Index[k] lists indices into Bonds where Site1.SiteIndex
	// == k; BondsBySite2Index is the symmetric index for Site2. Both are
	// derived from Bonds by Rebuild/NewMotif, never hand-populated.
	BondsBySite1Index [][]int
	BondsBySite2Index [][]int
}

// NewMotif constructs a Motif from parameters, sites, and bonds, deriving
// the bond-adjacency indices.
func NewMotif(parameters []ParameterElement, sites []Site, bonds []MotifBond) *Motif {
	m := &Motif{Parameters: parameters, Sites: sites, Bonds: bonds}
	m.Rebuild()
	return m
}

// Rebuild recomputes BondsBySite1Index/BondsBySite2Index from Bonds. Call
// after mutating Bonds directly.
func (m *Motif) Rebuild() {
	m.BondsBySite1Index = make([][]int, len(m.Sites))
	m.BondsBySite2Index = make([][]int, len(m.Sites))
	for i, b := range m.Bonds {
		m.BondsBySite1Index[b.Site1.SiteIndex] = append(m.BondsBySite1Index[b.Site1.SiteIndex], i)
		m.BondsBySite2Index[b.Site2.SiteIndex] = append(m.BondsBySite2Index[b.Site2.SiteIndex], i)
	}
}

// EffectiveParameterElementValues returns a complete map of parameter name
// -> atomic number, filling in each parameter's default for any name not
// present in overrides.
func (m *Motif) EffectiveParameterElementValues(overrides map[string]int16) map[string]int16 {
	out := make(map[string]int16, len(m.Parameters))
	for _, p := range m.Parameters {
		if v, ok := overrides[p.Name]; ok {
			out[p.Name] = v
		} else {
			out[p.Name] = p.DefaultAtomicNumber
		}
	}
	return out
}

// ResolveAtomicNumber resolves a site's possibly-parameterized atomic
// number against an effective parameter binding.
//
// Errors: returns an error if the site references a parameter index
// outside Parameters' bounds, or a parameter whose name has no effective
// value (should not happen given EffectiveParameterElementValues, but
// guarded since a caller may pass a partial map directly).
func (m *Motif) ResolveAtomicNumber(site Site, effective map[string]int16) (int16, error) {
	if site.AtomicNumber >= 0 {
		return site.AtomicNumber, nil
	}
	idx := int(-site.AtomicNumber) - 1
	if idx < 0 || idx >= len(m.Parameters) {
		return 0, fmt.Errorf("motif: site references out-of-range parameter %d", site.AtomicNumber)
	}
	name := m.Parameters[idx].Name
	v, ok := effective[name]
	if !ok {
		return 0, fmt.Errorf("motif: no effective value bound for parameter %q", name)
	}
	return v, nil
}

// IsStructurallyEqual reports whether m and o have identical parameters,
// sites, and bonds (the precomputed adjacency indices are derived, so they
// are not compared).
func (m *Motif) IsStructurallyEqual(o *Motif) bool {
	if len(m.Parameters) != len(o.Parameters) || len(m.Sites) != len(o.Sites) || len(m.Bonds) != len(o.Bonds) {
		return false
	}
	for i := range m.Parameters {
		if m.Parameters[i] != o.Parameters[i] {
			return false
		}
	}
	for i := range m.Sites {
		if m.Sites[i] != o.Sites[i] {
			return false
		}
	}
	for i := range m.Bonds {
		if m.Bonds[i] != o.Bonds[i] {
			return false
		}
	}
	return true
}
