package cnndio

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/nanocad-org/structkit/network"
)

// Resolver supplies a node type's pin shape, exactly as textfmt.Resolver
// does; kept as its own type here (rather than imported) since cnndio and
// textfmt are independent external-facing adapters over the same
// network.NodeNetwork core and neither needs to depend on the other.
type Resolver func(typeName string) (network.NodeType, bool)

// NewNodeData constructs a fresh NodeData for typeName, later populated
// from a NodeRecord's Data map.
type NewNodeData func(typeName string) (network.NodeData, error)

// NodeRecord is one node's JSON shape inside a .cnnd project file.
type NodeRecord struct {
	ID        uint64              `json:"id"`
	TypeName  string              `json:"type_name"`
	Position  [2]float64          `json:"position"`
	Arguments map[string][]uint64 `json:"arguments,omitempty"`
	Data      map[string]string   `json:"data,omitempty"`
	Display   bool                `json:"display,omitempty"`
}

// NetworkRecord is one named network's JSON shape.
type NetworkRecord struct {
	Nodes  []NodeRecord `json:"nodes"`
	Output *uint64      `json:"output,omitempty"`
}

// Envelope is the top-level .cnnd document: every network defined in one
// project, keyed by name (the root network plus every subnetwork a
// "subnetwork call" node references).
type Envelope struct {
	Networks map[string]NetworkRecord `json:"networks"`
}

// EncodeEnvelope serializes every named network in networks into an
// Envelope, using resolve to recover each node's pin names.
func EncodeEnvelope(networks map[string]*network.NodeNetwork, resolve Resolver) (Envelope, error) {
	env := Envelope{Networks: make(map[string]NetworkRecord, len(networks))}
	for name, n := range networks {
		rec, err := encodeNetwork(n, resolve)
		if err != nil {
			return Envelope{}, fmt.Errorf("cnndio: EncodeEnvelope: network %q: %w", name, err)
		}
		env.Networks[name] = rec
	}
	return env, nil
}

func encodeNetwork(n *network.NodeNetwork, resolve Resolver) (NetworkRecord, error) {
	ids := n.NodeIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rec := NetworkRecord{Nodes: make([]NodeRecord, 0, len(ids))}
	displayed := make(map[uint64]bool)
	for _, id := range n.DisplayedNodeIDs() {
		displayed[id] = true
	}

	for _, id := range ids {
		node, ok := n.Node(id)
		if !ok {
			continue
		}
		nt, _ := resolve(node.TypeName)

		args := make(map[string][]uint64)
		for i, binding := range node.Inputs {
			name := pinName(nt, i)
			for _, w := range binding.Wires() {
				args[name] = append(args[name], w.SrcID)
			}
		}
		if len(args) == 0 {
			args = nil
		}

		var data map[string]string
		if node.Data != nil {
			data = node.Data.GetTextProperties()
		}

		rec.Nodes = append(rec.Nodes, NodeRecord{
			ID:        id,
			TypeName:  node.TypeName,
			Position:  [2]float64{node.Position.X, node.Position.Y},
			Arguments: args,
			Data:      data,
			Display:   displayed[id],
		})
	}

	if returnID, ok := n.ReturnNode(); ok {
		rec.Output = &returnID
	}
	return rec, nil
}

func pinName(nt network.NodeType, i int) string {
	if i < len(nt.InputName) {
		return nt.InputName[i]
	}
	return fmt.Sprintf("arg%d", i)
}

// DecodeEnvelope reconstructs every network in env. Node ids are
// preserved exactly (via network.WithNextID) rather than renumbered, so
// cross-network subnetwork-call references recorded elsewhere in the
// project stay valid.
func DecodeEnvelope(env Envelope, resolve Resolver, newData NewNodeData) (map[string]*network.NodeNetwork, error) {
	out := make(map[string]*network.NodeNetwork, len(env.Networks))
	for name, rec := range env.Networks {
		n, err := decodeNetwork(rec, resolve, newData)
		if err != nil {
			return nil, fmt.Errorf("cnndio: DecodeEnvelope: network %q: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

func decodeNetwork(rec NetworkRecord, resolve Resolver, newData NewNodeData) (*network.NodeNetwork, error) {
	var maxID uint64
	for _, nr := range rec.Nodes {
		if nr.ID >= maxID {
			maxID = nr.ID + 1
		}
	}
	n := network.NewNodeNetwork(network.WithTypeResolver(resolve))

	for _, nr := range rec.Nodes {
		nt, ok := resolve(nr.TypeName)
		if !ok {
			return nil, fmt.Errorf("cnndio: unknown node type %q", nr.TypeName)
		}
		data, err := newData(nr.TypeName)
		if err != nil {
			return nil, fmt.Errorf("cnndio: node %d: %w", nr.ID, err)
		}
		if data != nil && nr.Data != nil {
			data.SetTextProperties(nr.Data)
		}
		network.WithNextID(nr.ID)(n)
		id := n.AddNode(nr.TypeName, network.Position{X: nr.Position[0], Y: nr.Position[1]}, len(nt.InputType), data)
		if id != nr.ID {
			return nil, fmt.Errorf("cnndio: node id %d out of order in record stream", nr.ID)
		}
		if nr.Display {
			if err := n.SetDisplay(id, true); err != nil {
				return nil, err
			}
		}
	}
	network.WithNextID(maxID)(n)

	for _, nr := range rec.Nodes {
		nt, _ := resolve(nr.TypeName)
		for name, srcIDs := range nr.Arguments {
			idx := -1
			for i, pname := range nt.InputName {
				if pname == name {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, fmt.Errorf("cnndio: node %d: unknown pin %q", nr.ID, name)
			}
			for _, srcID := range srcIDs {
				if err := n.Connect(srcID, 0, nr.ID, idx); err != nil {
					return nil, fmt.Errorf("cnndio: node %d pin %q: %w", nr.ID, name, err)
				}
			}
		}
	}

	if rec.Output != nil {
		if err := n.SetReturnNode(*rec.Output); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Marshal renders env as indented JSON, the project-file format .cnnd
// documents persist in.
func Marshal(env Envelope) ([]byte, error) {
	return json.MarshalIndent(env, "", "  ")
}

// Unmarshal parses .cnnd JSON bytes into an Envelope.
func Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("cnndio: Unmarshal: %w", err)
	}
	return env, nil
}

// RelativizePath rewrites an absolute externalPath (e.g. an imported XYZ
// or PDB file referenced from a node's Data map) relative to the
// directory containing the .cnnd project file, so the project remains
// portable across machines. If externalPath cannot be made relative to
// baseDir (different volume, etc.) it is returned unchanged.
func RelativizePath(baseDir, externalPath string) string {
	rel, err := filepath.Rel(baseDir, externalPath)
	if err != nil {
		return externalPath
	}
	return rel
}

// AbsolutizePath resolves a path stored relative to baseDir (the .cnnd
// file's directory) back to an absolute path, the inverse of
// RelativizePath, applied when a project is loaded on a different
// machine or from a different working directory.
func AbsolutizePath(baseDir, storedPath string) string {
	if filepath.IsAbs(storedPath) {
		return storedPath
	}
	return filepath.Join(baseDir, storedPath)
}
