// Package cnndio implements the external persistence surfaces the node
// network's import/export nodes rely on: the .cnnd JSON project envelope,
// the plain-text XYZ atom-list format, and a minimal PDB importer.
package cnndio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nanocad-org/structkit/atomic"
)

// ErrUnknownElement indicates an XYZ line names a symbol not in the
// element table.
var ErrUnknownElement = errors.New("cnndio: unknown element symbol")

// ErrMalformedXYZ indicates the input does not match the XYZ grammar
// (atom count header, optional comment line, N whitespace-separated
// "symbol x y z" lines).
var ErrMalformedXYZ = errors.New("cnndio: malformed XYZ input")

// WriteXYZ renders s in the standard XYZ format: an atom-count line, a
// comment line, then one "symbol  x  y  z" line per atom with coordinates
// fixed at 6 decimal places.
func WriteXYZ(w io.Writer, s *atomic.Structure, comment string) error {
	atoms := s.LiveAtoms()
	if _, err := fmt.Fprintf(w, "%d\n%s\n", len(atoms), comment); err != nil {
		return err
	}
	for _, a := range atoms {
		symbol := SymbolForAtomicNumber(a.AtomicNumber)
		if _, err := fmt.Fprintf(w, "%-3s %12.6f %12.6f %12.6f\n", symbol, a.Position.X, a.Position.Y, a.Position.Z); err != nil {
			return err
		}
	}
	return nil
}

// ReadXYZ parses the XYZ format into a fresh Structure. Whitespace
// between fields is normalized (any run of spaces/tabs is one
// separator), and an unrecognized element symbol is rejected outright
// rather than silently imported as "unknown" — a malformed coordinate
// file should fail loudly, unlike a PDB's noisier per-atom element
// column (see ReadPDB).
func ReadXYZ(r io.Reader) (*atomic.Structure, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, fmt.Errorf("cnndio: ReadXYZ: missing atom-count line: %w", ErrMalformedXYZ)
	}
	count, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("cnndio: ReadXYZ: invalid atom-count line: %w", ErrMalformedXYZ)
	}

	if !scanner.Scan() {
		return nil, fmt.Errorf("cnndio: ReadXYZ: missing comment line: %w", ErrMalformedXYZ)
	}

	s := atomic.NewStructure(false)
	for i := 0; i < count; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("cnndio: ReadXYZ: expected %d atom lines, got %d: %w", count, i, ErrMalformedXYZ)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("cnndio: ReadXYZ: line %d: %w", i+3, ErrMalformedXYZ)
		}
		num := AtomicNumberForSymbol(fields[0])
		if num == UnknownAtomicNumber {
			return nil, fmt.Errorf("cnndio: ReadXYZ: line %d: symbol %q: %w", i+3, fields[0], ErrUnknownElement)
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		z, errZ := strconv.ParseFloat(fields[3], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, fmt.Errorf("cnndio: ReadXYZ: line %d: bad coordinate: %w", i+3, ErrMalformedXYZ)
		}
		s.AddAtom(num, atomic.Vec3{X: x, Y: y, Z: z})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cnndio: ReadXYZ: %w", err)
	}
	return s, nil
}
