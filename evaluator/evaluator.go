// Package evaluator implements the demand-driven, single-threaded,
// synchronous walk over a network stack that turns a node reference into a
// dtype.NetworkResult.
//
// Evaluation is one Go call per node visit; subnetwork instantiation
// pushes a frame, and parameter nodes climb exactly one frame to reach
// their caller's pins. Very deep graphs could exceed the host call stack;
// converting to an explicit work-stack (post-order traversal preserving
// the frame semantics) is the known follow-up if that ever bites.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/network"
	"github.com/nanocad-org/structkit/registry"
)

// ErrParameterOutsideCall indicates a parameter node was evaluated at
// stack depth 1 (no parent frame to climb into).
var ErrParameterOutsideCall = errors.New("evaluator: parameter node evaluated outside a subnetwork call")

// ErrNoReturnNode indicates a subnetwork was instantiated but has no
// return node set.
var ErrNoReturnNode = errors.New("evaluator: subnetwork has no return node")

// StackElement is one frame of the evaluator's subnetwork-call stack.
//
// Exactly one of two parameter-resolution modes applies per frame: when
// BoundArgs is nil, a parameter node climbs to the parent frame and
// evaluates the caller node's corresponding input pin; when BoundArgs is
// non-nil (a closure application), the parameter node reads its value
// directly from BoundArgs by sorted parameter index.
type StackElement struct {
	Network      *network.NodeNetwork
	CallerNodeID uint64
	BoundArgs    []dtype.NetworkResult
}

// RootStack constructs a single-frame stack for evaluating network n
// directly (not as a subnetwork instantiation).
func RootStack(n *network.NodeNetwork) []StackElement {
	return []StackElement{{Network: n}}
}

// Context carries the evaluator's two optional, evaluation-semantics-free
// caches: per-node errors for UI surfacing, and a UI-selected node's
// retained evaluation cache (populated only for root-level, stack-depth-1
// evaluations, never by nested subnetwork frames).
type Context struct {
	NodeErrors map[uint64]error

	HasSelectedNode       bool
	SelectedNodeID        uint64
	SelectedNodeEvalCache any
}

// NewContext constructs an empty evaluation context.
func NewContext() *Context {
	return &Context{NodeErrors: make(map[uint64]error)}
}

// SelectNode marks id as the node whose evaluation cache (if any) should be
// retained in SelectedNodeEvalCache.
func (c *Context) SelectNode(id uint64) {
	c.HasSelectedNode = true
	c.SelectedNodeID = id
}

func (c *Context) recordError(nodeID uint64, r dtype.NetworkResult) {
	if c.NodeErrors == nil {
		c.NodeErrors = make(map[uint64]error)
	}
	c.NodeErrors[nodeID] = fmt.Errorf("%s", r.ErrMessage)
}

// Evaluate computes nodeID's result in the network at the top of stack,
// dispatching parameter-node frame-climbing, closure capture, subnetwork
// recursion, and ordinary NodeData.Eval.
//
// Determinism: for a fixed network/registry state, two calls with
// identical arguments return structurally identical results (no hidden
// mutable state is consulted besides ctx.NodeErrors/SelectedNodeEvalCache,
// which are write-only side channels, not inputs).
func Evaluate(stack []StackElement, nodeID uint64, reg *registry.NodeTypeRegistry, ctx *Context) dtype.NetworkResult {
	if ctx == nil {
		ctx = NewContext()
	}
	frame := stack[len(stack)-1]
	node, ok := frame.Network.Node(nodeID)
	if !ok {
		return dtype.ErrorResult("evaluator: node %d not found", nodeID)
	}

	if pd, isParam := node.Data.(network.ParameterNodeData); isParam {
		result := evalParameterNode(stack, nodeID, pd, reg, ctx)
		if result.IsError() {
			ctx.recordError(nodeID, result)
		}
		return result
	}

	if cd, isClosure := node.Data.(network.ClosureNodeData); isClosure {
		result := evalClosureNode(stack, cd, reg, ctx)
		if result.IsError() {
			ctx.recordError(nodeID, result)
		}
		return result
	}

	var result dtype.NetworkResult
	if subnet, isSubnet := reg.Network(node.TypeName); isSubnet {
		result = evalSubnetwork(stack, node, subnet, reg, ctx)
	} else {
		result = evalBuiltin(stack, frame, node, reg, ctx)
	}

	if result.IsError() {
		ctx.recordError(nodeID, result)
	}
	if len(stack) == 1 && ctx.HasSelectedNode && ctx.SelectedNodeID == nodeID {
		if provider, ok := node.Data.(network.CacheProvider); ok {
			ctx.SelectedNodeEvalCache = provider.EvalCache()
		}
	}
	return result
}

// evalParameterNode resolves a parameter node's value: from the frame's
// bound closure arguments when present, else by climbing one stack frame
// and evaluating the caller node's input pin at this parameter's sorted
// position among its network's other parameter nodes.
func evalParameterNode(stack []StackElement, nodeID uint64, pd network.ParameterNodeData, reg *registry.NodeTypeRegistry, ctx *Context) dtype.NetworkResult {
	here := stack[len(stack)-1]

	idx, ok := parameterIndex(here.Network, nodeID)
	if !ok {
		return dtype.ErrorResult("evaluator: parameter %q not found in its own network", pd.ParamName())
	}

	if here.BoundArgs != nil {
		if idx >= len(here.BoundArgs) {
			return dtype.ErrorResult("evaluator: closure call bound %d arguments, parameter %q wants index %d", len(here.BoundArgs), pd.ParamName(), idx)
		}
		return here.BoundArgs[idx]
	}

	if len(stack) < 2 {
		return dtype.ErrorResult("%s", ErrParameterOutsideCall.Error())
	}
	parent := stack[len(stack)-2]

	callerNode, ok := parent.Network.Node(here.CallerNodeID)
	if !ok {
		return dtype.ErrorResult("evaluator: caller node %d not found", here.CallerNodeID)
	}
	if idx >= len(callerNode.Inputs) {
		return dtype.None()
	}
	wires := callerNode.Inputs[idx].Wires()
	if len(wires) == 0 {
		return dtype.None()
	}
	parentStack := stack[:len(stack)-1]
	return Evaluate(parentStack, wires[0].SrcID, reg, ctx)
}

// parameterIndex returns the target node's rank, ascending by
// ParamSortOrder, among every parameter node in n.
func parameterIndex(n *network.NodeNetwork, targetID uint64) (int, bool) {
	type entry struct {
		id        uint64
		sortOrder int
	}
	var entries []entry
	for _, id := range n.NodeIDs() {
		node, ok := n.Node(id)
		if !ok {
			continue
		}
		other, isParam := node.Data.(network.ParameterNodeData)
		if !isParam {
			continue
		}
		entries = append(entries, entry{id: id, sortOrder: other.ParamSortOrder()})
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].sortOrder > entries[j].sortOrder; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
	for i, e := range entries {
		if e.id == targetID {
			return i, true
		}
	}
	return 0, false
}

// evalSubnetwork pushes {subnet, this node's id} and evaluates subnet's
// return node.
func evalSubnetwork(stack []StackElement, node *network.Node, subnet *network.NodeNetwork, reg *registry.NodeTypeRegistry, ctx *Context) dtype.NetworkResult {
	returnID, ok := subnet.ReturnNode()
	if !ok {
		return dtype.ErrorResult("%s: %q", ErrNoReturnNode.Error(), node.TypeName)
	}
	newStack := make([]StackElement, len(stack)+1)
	copy(newStack, stack)
	newStack[len(stack)] = StackElement{Network: subnet, CallerNodeID: node.ID}
	return Evaluate(newStack, returnID, reg, ctx)
}

// evalClosureNode lifts the subnetwork named by cd into a first-class
// Closure value. The returned closure captures the current stack, registry,
// and context by value; applying it pushes a frame whose BoundArgs carry
// the call's arguments (so parameter nodes read them positionally instead
// of climbing to a caller's pins) and evaluates the subnetwork's return
// node — the "captured lazily, evaluated when call is applied" contract.
func evalClosureNode(stack []StackElement, cd network.ClosureNodeData, reg *registry.NodeTypeRegistry, ctx *Context) dtype.NetworkResult {
	name := cd.ClosureNetworkName()
	subnet, ok := reg.Network(name)
	if !ok {
		return dtype.ErrorResult("evaluator: closure references unknown network %q", name)
	}
	returnID, ok := subnet.ReturnNode()
	if !ok {
		return dtype.ErrorResult("%s: %q", ErrNoReturnNode.Error(), name)
	}

	captured := make([]StackElement, len(stack))
	copy(captured, stack)

	return dtype.ClosureResult(func(args []dtype.NetworkResult) dtype.NetworkResult {
		if args == nil {
			args = []dtype.NetworkResult{}
		}
		callStack := make([]StackElement, len(captured)+1)
		copy(callStack, captured)
		callStack[len(captured)] = StackElement{Network: subnet, BoundArgs: args}
		return Evaluate(callStack, returnID, reg, ctx)
	})
}

// evalBuiltin gathers node's arguments (per PinBinding, array-wrapping
// multi-wire pins) and dispatches to node.Data.Eval.
func evalBuiltin(stack []StackElement, frame StackElement, node *network.Node, reg *registry.NodeTypeRegistry, ctx *Context) dtype.NetworkResult {
	nodeType, _ := reg.Resolve(node.TypeName, nil)

	args := make([]dtype.NetworkResult, len(node.Inputs))
	for i := range node.Inputs {
		wires := node.Inputs[i].Wires()
		isArray := i < len(nodeType.InputType) && nodeType.InputType[i].Kind == dtype.KindArray

		if isArray {
			elemKind := dtype.KindNone
			if nodeType.InputType[i].Elem != nil {
				elemKind = nodeType.InputType[i].Elem.Kind
			}
			elems := make([]dtype.NetworkResult, 0, len(wires))
			for _, w := range wires {
				v := Evaluate(stack, w.SrcID, reg, ctx)
				if v.IsError() {
					return v
				}
				elems = append(elems, v)
			}
			args[i] = dtype.ArrayResult(elemKind, elems)
			continue
		}

		if len(wires) == 0 {
			args[i] = dtype.None()
			continue
		}
		v := Evaluate(stack, wires[0].SrcID, reg, ctx)
		if v.IsError() {
			return v
		}
		args[i] = v
	}

	return node.Data.Eval(args)
}

// RequiredInput returns args[i] if it is not KindNone, else a
// dtype.ErrorResult("missing input: name"). Callable directly by
// NodeData.Eval implementations since args are already gathered before
// Eval runs.
func RequiredInput(args []dtype.NetworkResult, i int, name string) dtype.NetworkResult {
	if i >= len(args) || args[i].Kind == dtype.KindNone {
		return dtype.ErrorResult("missing input: %s", name)
	}
	return args[i]
}

// OrDefault returns args[i] if it is not KindNone, else def.
func OrDefault(args []dtype.NetworkResult, i int, def dtype.NetworkResult) dtype.NetworkResult {
	if i >= len(args) || args[i].Kind == dtype.KindNone {
		return def
	}
	return args[i]
}
