package cnndio

import "strings"

// UnknownAtomicNumber is the sentinel used when an XYZ/PDB element symbol
// cannot be resolved to a known atomic number (atomic numbers themselves
// start at 1, so 0 is never a collision).
const UnknownAtomicNumber = 0

// symbolToNumber covers the elements the crystal-fill motifs and
// atom-edit scenarios in this kernel actually exercise. ReadPDB maps any
// other symbol to UnknownAtomicNumber rather than failing the whole
// import; ReadXYZ rejects an unknown symbol with ErrUnknownElement.
var symbolToNumber = map[string]int16{
	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8,
	"F": 9, "Ne": 10, "Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "Ar": 18, "K": 19, "Ca": 20, "Fe": 26, "Cu": 29,
	"Zn": 30, "Br": 35, "I": 53,
}

var numberToSymbol = func() map[int16]string {
	m := make(map[int16]string, len(symbolToNumber))
	for sym, num := range symbolToNumber {
		m[num] = sym
	}
	return m
}()

// AtomicNumberForSymbol resolves a chemical symbol (case-normalized:
// first letter upper, rest lower) to its atomic number, or
// UnknownAtomicNumber if unrecognized.
func AtomicNumberForSymbol(symbol string) int16 {
	if n, ok := symbolToNumber[normalizeSymbol(symbol)]; ok {
		return n
	}
	return UnknownAtomicNumber
}

// SymbolForAtomicNumber is the inverse of AtomicNumberForSymbol; unknown
// numbers render as "unknown" rather than a blank field so a written XYZ
// file never has an empty leading column.
func SymbolForAtomicNumber(n int16) string {
	if sym, ok := numberToSymbol[n]; ok {
		return sym
	}
	return "unknown"
}

func normalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
