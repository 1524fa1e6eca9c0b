package tsp

import (
	"strconv"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// memberKind is the closed set of variants a member name can resolve to.
type memberKind int

const (
	memberUnresolved memberKind = iota
	memberFunction
	memberProperty
	memberConstant
	memberGroup
	memberIndexed
)

// Node is a lazily materialized proxy for one position in the remote command
// namespace. Member access is classified against the instrument's CommandSet
// and dispatched as a query, a write, or the creation of a child proxy.
//
// Sub-groups, function proxies, and indexed-list proxies are created once per
// (node, name) pair and cached; repeated access returns the same instance.
// Scalar attribute reads are never cached, every Get issues a fresh query
// because the remote value may change between accesses.
//
// Nodes hold a non-owning reference to the root Instrument for command
// delegation; their lifetime is the lifetime of the instrument handle.
type Node struct {
	inst *Instrument
	path CommandPath

	groups *xsync.MapOf[string, *Node]
	funcs  *xsync.MapOf[string, *RemoteFunction]
	lists  *xsync.MapOf[string, *IndexedList]
}

func newNode(inst *Instrument, path CommandPath) *Node {
	return &Node{
		inst:   inst,
		path:   path,
		groups: xsync.NewMapOf[string, *Node](),
		funcs:  xsync.NewMapOf[string, *RemoteFunction](),
		lists:  xsync.NewMapOf[string, *IndexedList](),
	}
}

// Path returns the command path this node proxies.
func (n *Node) Path() CommandPath { return n.path }

// classify resolves a member name against the classification tables. The
// indexed set is consulted first for attribute names, since an indexed
// attribute is list-addressable only at specific positions in the tree.
func (n *Node) classify(name string) memberKind {
	cs := n.inst.cfg.commands
	switch {
	case cs.IsFunction(name):
		return memberFunction
	case cs.IsProperty(name), cs.IsConstant(name):
		if cs.IsIndexed(n.path.Child(name).normalized()) {
			return memberIndexed
		}
		if cs.IsConstant(name) {
			return memberConstant
		}
		return memberProperty
	case cs.IsGroup(name):
		return memberGroup
	default:
		return memberUnresolved
	}
}

// Group resolves a sub-group member, e.g. "measure" under "smua". The child
// node is created on first access and cached.
func (n *Node) Group(name string) (*Node, error) {
	if child, ok := n.groups.Load(name); ok {
		return child, nil
	}

	switch n.classify(name) {
	case memberGroup:
		child, _ := n.groups.LoadOrCompute(name, func() *Node {
			return newNode(n.inst, n.path.Child(name))
		})
		return child, nil
	case memberUnresolved:
		return nil, &UnresolvedMemberError{Path: n.path.Child(name).String()}
	default:
		return nil, ErrNotGroup
	}
}

// Index returns the element of this group at the given bracketed index, e.g.
// trigger.blender[2]. Elements are cached under their bracket key.
func (n *Node) Index(i int) *Node {
	key := "[" + strconv.Itoa(i) + "]"
	child, _ := n.groups.LoadOrCompute(key, func() *Node {
		return newNode(n.inst, n.path.Index(i))
	})
	return child
}

// Get reads a scalar attribute (property or constant). The read always goes
// to the instrument; attribute values are never cached.
func (n *Node) Get(name string) (Value, error) {
	switch n.classify(name) {
	case memberProperty, memberConstant:
		return n.inst.Query(n.path.Child(name).String())
	case memberUnresolved:
		return Value{}, &UnresolvedMemberError{Path: n.path.Child(name).String()}
	default:
		return Value{}, ErrNotAttribute
	}
}

// Set writes a scalar property. Writing a constant fails with ErrReadOnly
// before any instrument traffic.
func (n *Node) Set(name string, value any) error {
	switch n.classify(name) {
	case memberProperty:
		return n.inst.Write(n.path.Child(name).String() + " = " + encodeArg(value))
	case memberConstant:
		return ErrReadOnly
	case memberUnresolved:
		return &UnresolvedMemberError{Path: n.path.Child(name).String()}
	default:
		return ErrNotAttribute
	}
}

// Function resolves a callable member. The function proxy is created on
// first access and cached.
func (n *Node) Function(name string) (*RemoteFunction, error) {
	if fn, ok := n.funcs.Load(name); ok {
		return fn, nil
	}

	switch n.classify(name) {
	case memberFunction:
		fn, _ := n.funcs.LoadOrCompute(name, func() *RemoteFunction {
			return &RemoteFunction{inst: n.inst, path: n.path.Child(name)}
		})
		return fn, nil
	case memberUnresolved:
		return nil, &UnresolvedMemberError{Path: n.path.Child(name).String()}
	default:
		return nil, ErrNotFunction
	}
}

// Call resolves and invokes a callable member in one step.
func (n *Node) Call(name string, args ...any) (Value, error) {
	fn, err := n.Function(name)
	if err != nil {
		return Value{}, err
	}
	return fn.Call(args...)
}

// List resolves an indexed attribute member, e.g. "stimulus" under
// trigger.blender[2]. The list proxy is created on first access and cached.
func (n *Node) List(name string) (*IndexedList, error) {
	if list, ok := n.lists.Load(name); ok {
		return list, nil
	}

	switch n.classify(name) {
	case memberIndexed:
		list, _ := n.lists.LoadOrCompute(name, func() *IndexedList {
			return &IndexedList{inst: n.inst, path: n.path.Child(name)}
		})
		return list, nil
	case memberUnresolved:
		return nil, &UnresolvedMemberError{Path: n.path.Child(name).String()}
	default:
		return nil, ErrNotIndexed
	}
}

// RemoteFunction proxies a remote callable. The remote protocol does not
// reliably return values from bare calls: a call that produces nothing
// blocks the query layer until timeout. Invocation is therefore split into a
// write that stores the result in a transient remote variable and a query
// that reads the variable back.
type RemoteFunction struct {
	inst *Instrument
	path CommandPath
}

// Path returns the command path of the callable.
func (f *RemoteFunction) Path() CommandPath { return f.path }

// Call invokes the remote function with positionally serialized arguments.
func (f *RemoteFunction) Call(args ...any) (Value, error) {
	encoded := make([]string, len(args))
	for i, arg := range args {
		encoded[i] = encodeArg(arg)
	}

	stmt := "result = " + f.path.String() + "(" + strings.Join(encoded, ", ") + ")"
	if err := f.inst.Write(stmt); err != nil {
		return Value{}, err
	}

	return f.inst.Query("result")
}

// IndexedList proxies an element-addressable remote attribute list such as
// trigger.blender[2].stimulus.
type IndexedList struct {
	inst *Instrument
	path CommandPath
}

// Path returns the command path of the list.
func (l *IndexedList) Path() CommandPath { return l.path }

// Get reads the element at index i.
func (l *IndexedList) Get(i int) (Value, error) {
	return l.inst.Query(l.path.Index(i).String())
}

// Set writes the element at index i.
func (l *IndexedList) Set(i int, value any) error {
	return l.inst.Write(l.path.Index(i).String() + " = " + encodeArg(value))
}

