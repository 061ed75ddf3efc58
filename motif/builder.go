package motif

import "fmt"

// builderState accumulates sites and bonds while a Motif is under
// construction. Constructors append to it in call order; BuildMotif turns
// the finished state into a Motif, deriving the bond-adjacency indices
// via Rebuild once everything is added.
type builderState struct {
	parameters []ParameterElement
	sites      []Site
	bonds      []MotifBond
}

// Constructor applies one deterministic step of motif construction (adding
// a site, or a bond between two already-declared sites) to a builderState:
// a uniform function type that isolates topology-building logic behind
// BuildMotif's single orchestrator.
type Constructor func(*builderState) error

// BuildMotif resolves parameters and applies cons in order, returning the
// finished Motif. Any constructor error is wrapped with "BuildMotif: %w"
// and returned immediately; no partial result is returned on error.
func BuildMotif(parameters []ParameterElement, cons ...Constructor) (*Motif, error) {
	st := &builderState{parameters: parameters}
	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("motif: BuildMotif: nil constructor at index %d", i)
		}
		if err := fn(st); err != nil {
			return nil, fmt.Errorf("motif: BuildMotif: %w", err)
		}
	}
	return NewMotif(st.parameters, st.sites, st.bonds), nil
}

// AddSite returns a Constructor that appends one basis site at pos with the
// given atomic number (or a negative parameter reference), returning its
// site index via the provided out pointer so later AddBond constructors can
// address it without guessing index order.
func AddSite(atomicNumber int16, pos FracVec3, out *int) Constructor {
	return func(st *builderState) error {
		idx := len(st.sites)
		st.sites = append(st.sites, Site{AtomicNumber: atomicNumber, Position: pos})
		if out != nil {
			*out = idx
		}
		return nil
	}
}

// AddBond returns a Constructor that appends one motif bond between two
// site specifiers declared by earlier AddSite constructors.
func AddBond(site1, site2 SiteSpecifier, multiplicity int) Constructor {
	return func(st *builderState) error {
		if site1.SiteIndex < 0 || site1.SiteIndex >= len(st.sites) {
			return fmt.Errorf("motif: AddBond: site1 index %d out of range", site1.SiteIndex)
		}
		if site2.SiteIndex < 0 || site2.SiteIndex >= len(st.sites) {
			return fmt.Errorf("motif: AddBond: site2 index %d out of range", site2.SiteIndex)
		}
		st.bonds = append(st.bonds, MotifBond{Site1: site1, Site2: site2, Multiplicity: multiplicity})
		return nil
	}
}

// diamondFCCSites holds the conventional diamond-cubic cell's two
// interpenetrating FCC sublattices: four "A" sites at the FCC positions
// and four "B" sites offset by (1/4,1/4,1/4), eight sites per cell.
var diamondFCCSites = struct {
	a, b [4]FracVec3
}{
	a: [4]FracVec3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.5, Y: 0.5, Z: 0},
		{X: 0.5, Y: 0, Z: 0.5},
		{X: 0, Y: 0.5, Z: 0.5},
	},
	b: [4]FracVec3{
		{X: 0.25, Y: 0.25, Z: 0.25},
		{X: 0.75, Y: 0.75, Z: 0.25},
		{X: 0.75, Y: 0.25, Z: 0.75},
		{X: 0.25, Y: 0.75, Z: 0.75},
	},
}

// diamondBonds lists the sixteen bonds of the conventional cell: each B
// site's four tetrahedral neighbors among the A sites, with the relative
// cell of the A endpoint. A-site indices are 0..3, B-site indices 4..7.
var diamondBonds = [16]struct {
	bSite, aSite int
	rc           RelativeCell
}{
	{4, 0, RelativeCell{}},
	{4, 1, RelativeCell{}},
	{4, 2, RelativeCell{}},
	{4, 3, RelativeCell{}},
	{5, 1, RelativeCell{}},
	{5, 2, RelativeCell{Y: 1}},
	{5, 3, RelativeCell{X: 1}},
	{5, 0, RelativeCell{X: 1, Y: 1}},
	{6, 2, RelativeCell{}},
	{6, 1, RelativeCell{Z: 1}},
	{6, 0, RelativeCell{X: 1, Z: 1}},
	{6, 3, RelativeCell{X: 1}},
	{7, 3, RelativeCell{}},
	{7, 0, RelativeCell{Y: 1, Z: 1}},
	{7, 1, RelativeCell{Z: 1}},
	{7, 2, RelativeCell{Y: 1}},
}

// diamondTopology composes the conventional-cell constructors with the A
// and B sublattices carrying the given atomic numbers (or negative
// parameter references).
func diamondTopology(aNumber, bNumber int16) []Constructor {
	var cons []Constructor
	for _, pos := range diamondFCCSites.a {
		cons = append(cons, AddSite(aNumber, pos, nil))
	}
	for _, pos := range diamondFCCSites.b {
		cons = append(cons, AddSite(bNumber, pos, nil))
	}
	for _, bond := range diamondBonds {
		cons = append(cons, AddBond(
			SiteSpecifier{SiteIndex: bond.bSite},
			SiteSpecifier{SiteIndex: bond.aSite, RelativeCell: bond.rc},
			1,
		))
	}
	return cons
}

// Diamond returns the diamond-cubic motif: the full conventional cell of
// eight carbon sites (two interpenetrating FCC sublattices, the second
// offset by (1/4,1/4,1/4)), each site tetrahedrally bonded to its four
// nearest neighbors. The basis and the sixteen (relative_cell,
// site_index) bond records are the standard diamond-cubic
// conventional-cell description.
func Diamond() *Motif {
	m, err := BuildMotif(nil, diamondTopology(6, 6)...)
	if err != nil {
		panic(err) // construction is static and always well-formed
	}
	return m
}

// Zincblende returns the diamond-cubic topology with the two sublattices
// carrying distinct, parameterized elements (defaulting to gallium and
// arsenic), generalizing Diamond the way zincblende generalizes diamond
// cubic in real crystallography.
func Zincblende() *Motif {
	m, err := BuildMotif(
		[]ParameterElement{
			{Name: "cation", DefaultAtomicNumber: 31}, // gallium
			{Name: "anion", DefaultAtomicNumber: 33},  // arsenic
		},
		diamondTopology(-1, -2)...,
	)
	if err != nil {
		panic(err)
	}
	return m
}

// Graphene returns the planar honeycomb motif: two carbon sites per cell
// (basis at (0,0,0) and (1/3,2/3,0) of a hexagonal cell), each bonded to its
// three in-plane neighbors.
func Graphene() *Motif {
	var a, b int
	cons := []Constructor{
		AddSite(6, FracVec3{X: 0, Y: 0, Z: 0}, &a),
		AddSite(6, FracVec3{X: 1.0 / 3.0, Y: 2.0 / 3.0, Z: 0}, &b),
		func(st *builderState) error {
			return AddBond(SiteSpecifier{SiteIndex: a}, SiteSpecifier{SiteIndex: b}, 1)(st)
		},
		func(st *builderState) error {
			return AddBond(
				SiteSpecifier{SiteIndex: a},
				SiteSpecifier{SiteIndex: b, RelativeCell: RelativeCell{X: -1, Y: -1}},
				1,
			)(st)
		},
		func(st *builderState) error {
			return AddBond(
				SiteSpecifier{SiteIndex: a},
				SiteSpecifier{SiteIndex: b, RelativeCell: RelativeCell{Y: -1}},
				1,
			)(st)
		},
	}
	m, err := BuildMotif(nil, cons...)
	if err != nil {
		panic(err)
	}
	return m
}
