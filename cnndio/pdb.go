package cnndio

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/nanocad-org/structkit/atomic"
)

// ReadPDB imports only ATOM/HETATM coordinate records from a Protein Data
// Bank file; every other record type (headers, connectivity, secondary
// structure) is out of scope for this kernel's atomic-structure model and
// is skipped rather than rejected, since real-world PDB files routinely
// carry records no CAD-style consumer needs.
//
// The element symbol is read from the fixed columns 77-78 when present;
// otherwise it is derived from the atom-name field (columns 13-16),
// stripping leading digits. An element this table doesn't recognize
// becomes UnknownAtomicNumber rather than aborting the whole import — a
// single exotic or heavy-element atom should not prevent loading the rest
// of the structure.
func ReadPDB(r io.Reader) (*atomic.Structure, error) {
	s := atomic.NewStructure(false)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}
		record := strings.TrimRight(line[:6], " ")
		if record != "ATOM" && record != "HETATM" {
			continue
		}
		line = padTo(line, 78)

		x, errX := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
		z, errZ := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
		if errX != nil || errY != nil || errZ != nil {
			continue
		}

		symbol := strings.TrimSpace(line[76:78])
		if symbol == "" {
			symbol = elementFromAtomName(line[12:16])
		}
		s.AddAtom(AtomicNumberForSymbol(symbol), atomic.Vec3{X: x, Y: y, Z: z})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func padTo(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// elementFromAtomName strips whitespace and leading digits (PDB atom
// names like " 1HB1" or "CA  " prefix a remoteness digit before the
// element letters).
func elementFromAtomName(field string) string {
	trimmed := strings.TrimSpace(field)
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	rest := trimmed[i:]
	if rest == "" {
		return ""
	}
	if len(rest) >= 2 {
		twoLetter := rest[:2]
		if _, ok := symbolToNumber[normalizeSymbol(twoLetter)]; ok {
			return twoLetter
		}
	}
	return rest[:1]
}
