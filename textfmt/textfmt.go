// Package textfmt implements the round-trip textual network format: a
// human-readable two-way view over a NodeNetwork, used by external agents
// to query and edit a design without touching the binary .cnnd envelope.
//
// Grammar:
//
//	<network> ::= (<comment-line>|<decl>|<output>)*
//	<decl>    ::= IDENT "=" IDENT "{" (<key> ":" <value> ("," <key> ":" <value>)*)? "}"
//	<output>  ::= "output" IDENT
//
// textfmt treats every wired input pin structurally (one "name: label"
// entry per wire, the key repeated for a multi-wire Array(T) pin) and
// every other NodeData property opaquely: NodeData.GetTextProperties/
// SetTextProperties own the literal-value text (including the explicit
// decimal point on floats, triple-quoting on multi-line strings, and the
// "@name" closure-reference form) so that re-emitting a property's raw
// text reproduces it exactly, keeping parse(serialize(n)) structurally
// equal to n.
package textfmt

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nanocad-org/structkit/network"
)

// ErrSyntax indicates the input text does not match the grammar.
var ErrSyntax = errors.New("textfmt: syntax error")

// Resolver supplies the arity and input-pin names textfmt needs to place
// wires at the right pin index. registry.NodeTypeRegistry.Resolve has a
// different signature (a synthesize callback in, an error out), so a
// caller wraps it: call Resolve and report err == nil as the bool.
type Resolver func(typeName string) (network.NodeType, bool)

// NewNodeData constructs a fresh, default-valued NodeData instance for
// typeName, later populated by SetTextProperties.
type NewNodeData func(typeName string) (network.NodeData, error)

// Serialize renders n as textfmt source. Node labels are synthesized
// (base-26 letters, assigned in topological order, sources first) since a
// Node carries no persistent external name of its own.
func Serialize(n *network.NodeNetwork, resolve Resolver) (string, error) {
	order, err := n.TopologicalSort()
	if err != nil {
		return "", fmt.Errorf("textfmt: Serialize: %w", err)
	}

	label := make(map[uint64]string, len(order))
	for i, id := range order {
		label[id] = synthesizeLabel(i)
	}

	var b strings.Builder
	for _, id := range order {
		node, ok := n.Node(id)
		if !ok {
			continue
		}
		nt, _ := resolve(node.TypeName)

		fmt.Fprintf(&b, "%s = %s {", label[id], node.TypeName)

		var entries []string
		usedKeys := make(map[string]bool)
		for i, binding := range node.Inputs {
			name := pinName(nt, i)
			usedKeys[name] = true
			for _, w := range binding.Wires() {
				entries = append(entries, fmt.Sprintf("%s: %s", name, label[w.SrcID]))
			}
		}

		if node.Data != nil {
			props := node.Data.GetTextProperties()
			keys := make([]string, 0, len(props))
			for k := range props {
				if usedKeys[k] {
					continue
				}
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				entries = append(entries, fmt.Sprintf("%s: %s", k, props[k]))
			}
		}

		b.WriteString(strings.Join(entries, ", "))
		b.WriteString("}\n")
	}

	if returnID, ok := n.ReturnNode(); ok {
		fmt.Fprintf(&b, "output %s\n", label[returnID])
	}

	return b.String(), nil
}

func pinName(nt network.NodeType, i int) string {
	if i < len(nt.InputName) {
		return nt.InputName[i]
	}
	return fmt.Sprintf("arg%d", i)
}

// synthesizeLabel maps 0,1,2,...,25,26,27,... to a,b,...,z,aa,ab,... .
func synthesizeLabel(i int) string {
	if i < 0 {
		return "x"
	}
	var out []byte
	n := i
	for {
		out = append([]byte{byte('a' + n%26)}, out...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(out)
}

// decl is one parsed "label = typeName { ... }" declaration.
type decl struct {
	label    string
	typeName string
	entries  []declEntry
}

type declEntry struct {
	key       string
	text      string
	bareIdent bool
}

// Parse parses text, constructing one network.NodeNetwork node per decl
// via newData, wiring pins whose value resolves to another decl's label,
// and routing every other key/value pair through NodeData.SetTextProperties.
func Parse(text string, resolve Resolver, newData NewNodeData) (*network.NodeNetwork, error) {
	p := &parser{src: []rune(text)}
	decls, outputLabel, hasOutput, err := p.parseNetwork()
	if err != nil {
		return nil, err
	}

	labels := make(map[string]bool, len(decls))
	for _, d := range decls {
		labels[d.label] = true
	}

	n := network.NewNodeNetwork(network.WithTypeResolver(resolve))
	ids := make(map[string]uint64, len(decls))

	for _, d := range decls {
		nt, ok := resolve(d.typeName)
		if !ok {
			return nil, fmt.Errorf("textfmt: Parse: unknown node type %q: %w", d.typeName, ErrSyntax)
		}
		data, err := newData(d.typeName)
		if err != nil {
			return nil, fmt.Errorf("textfmt: Parse: node %q: %w", d.label, err)
		}
		id := n.AddNode(d.typeName, network.Position{}, len(nt.InputType), data)
		ids[d.label] = id
	}

	for _, d := range decls {
		dstID := ids[d.label]
		nt, _ := resolve(d.typeName)
		props := make(map[string]string)

		for _, e := range d.entries {
			if e.bareIdent && labels[e.text] {
				idx := pinIndex(nt, e.key)
				if idx < 0 {
					return nil, fmt.Errorf("textfmt: Parse: node %q: unknown pin %q: %w", d.label, e.key, ErrSyntax)
				}
				srcID := ids[e.text]
				if err := n.Connect(srcID, 0, dstID, idx); err != nil {
					return nil, fmt.Errorf("textfmt: Parse: node %q pin %q: %w", d.label, e.key, err)
				}
				continue
			}
			props[e.key] = e.text
		}

		node, _ := n.Node(dstID)
		if node.Data != nil {
			node.Data.SetTextProperties(props)
		}
	}

	if hasOutput {
		id, ok := ids[outputLabel]
		if !ok {
			return nil, fmt.Errorf("textfmt: Parse: output references unknown label %q: %w", outputLabel, ErrSyntax)
		}
		if err := n.SetReturnNode(id); err != nil {
			return nil, fmt.Errorf("textfmt: Parse: %w", err)
		}
	}

	return n, nil
}

func pinIndex(nt network.NodeType, name string) int {
	for i, n := range nt.InputName {
		if n == name {
			return i
		}
	}
	return -1
}
