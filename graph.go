// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipestat

import (
	"github.com/db47h/pipestat/ir"
	"github.com/pkg/errors"
)

// ErrMalformedGraph is the cause of all graph construction errors: missing
// operands, broken register pairing or a combinational cycle.
var ErrMalformedGraph = errors.New("malformed graph")

// NodeKind classifies the primitive nodes of a pipeline graph.
type NodeKind int

// Node kinds.
const (
	Combinational NodeKind = iota
	InputPort
	OutputPort
	RegisterRead
	RegisterWrite
)

var kindNames = [...]string{
	Combinational: "combinational",
	InputPort:     "input port",
	OutputPort:    "output port",
	RegisterRead:  "register read",
	RegisterWrite: "register write",
}

func (k NodeKind) String() string {
	if 0 <= int(k) && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// A Node is a primitive operation or boundary marker in a pipeline graph.
//
// Operands are the node's data dependencies in order; Users is the derived
// reverse adjacency. Input ports and register reads have no operands: they
// are the sources of the graph.
type Node struct {
	Name     string
	Kind     NodeKind
	Op       string // operation name, e.g. "add", "input_port"
	Width    int    // result bit width; 0 for unit-typed nodes
	Operands []*Node
	Users    []*Node
}

// A Register is a named flip-flop group binding one register write and one
// register read node. The pairing is deliberately not a graph edge, so
// physical feedback loops stay acyclic in the dependency graph.
type Register struct {
	Name  string
	Width int

	write *Node
	read  *Node
}

// Write returns the register's write node.
func (r *Register) Write() *Node { return r.write }

// Read returns the register's read node.
func (r *Register) Read() *Node { return r.read }

// A Graph is an immutable dependency graph of a single block.
type Graph struct {
	Name      string
	Nodes     []*Node
	Registers []*Register

	byName map[string]*Node
}

// Node returns the node with the given name, or nil.
func (g *Graph) Node(name string) *Node {
	return g.byName[name]
}

// FlopBits returns the total number of flip-flop bits in the graph: the sum
// of the declared bit widths of all registers, used or not.
func (g *Graph) FlopBits() int64 {
	var n int64
	for _, r := range g.Registers {
		n += int64(r.Width)
	}
	return n
}

func opKind(op string) NodeKind {
	switch op {
	case "input_port":
		return InputPort
	case "output_port":
		return OutputPort
	case "register_read":
		return RegisterRead
	case "register_write":
		return RegisterWrite
	}
	return Combinational
}

// NewGraph builds a pipeline graph from a parsed block description.
//
// It fails with an error caused by ErrMalformedGraph if an operand
// reference cannot be resolved, if a register write has other than exactly
// one operand, if a register is not bound to exactly one write and one read
// node, or if the operand subgraph contains a cycle. A cycle indicates an
// upstream bug in whatever produced the block description, never a timing
// condition, but all downstream metrics rely on acyclicity so it is checked
// here rather than discovered by a non-terminating traversal.
func NewGraph(b *ir.Block) (*Graph, error) {
	g := &Graph{
		Name:   b.Name,
		byName: make(map[string]*Node, len(b.Nodes)),
	}

	regs := make(map[string]*Register, len(b.Registers))
	for _, rd := range b.Registers {
		if rd.Width <= 0 {
			return nil, errors.Wrapf(ErrMalformedGraph, "register %s: bit width must be positive", rd.Name)
		}
		if regs[rd.Name] != nil {
			return nil, errors.Wrapf(ErrMalformedGraph, "register %s declared twice", rd.Name)
		}
		r := &Register{Name: rd.Name, Width: rd.Width}
		regs[rd.Name] = r
		g.Registers = append(g.Registers, r)
	}

	// first pass: create nodes and bind register sides
	for _, nd := range b.Nodes {
		n := &Node{Name: nd.Name, Kind: opKind(nd.Op), Op: nd.Op, Width: nd.Width}
		if g.byName[n.Name] != nil {
			return nil, errors.Wrapf(ErrMalformedGraph, "node %s defined twice", n.Name)
		}
		switch n.Kind {
		case RegisterWrite:
			r, err := boundRegister(regs, nd)
			if err != nil {
				return nil, err
			}
			if r.write != nil {
				return nil, errors.Wrapf(ErrMalformedGraph, "register %s written twice", r.Name)
			}
			r.write = n
		case RegisterRead:
			r, err := boundRegister(regs, nd)
			if err != nil {
				return nil, err
			}
			if r.read != nil {
				return nil, errors.Wrapf(ErrMalformedGraph, "register %s read twice", r.Name)
			}
			r.read = n
			if n.Width == 0 {
				n.Width = r.Width
			}
		}
		g.byName[n.Name] = n
		g.Nodes = append(g.Nodes, n)
	}

	// second pass: resolve operands. References may point forward, so this
	// cannot be merged with node creation.
	for _, nd := range b.Nodes {
		n := g.byName[nd.Name]
		for _, name := range nd.Operands {
			o := g.byName[name]
			if o == nil {
				return nil, errors.Wrapf(ErrMalformedGraph, "node %s: operand %s is missing", n.Name, name)
			}
			n.Operands = append(n.Operands, o)
			o.Users = append(o.Users, n)
		}
		switch n.Kind {
		case RegisterWrite:
			if len(n.Operands) != 1 {
				return nil, errors.Wrapf(ErrMalformedGraph, "register write %s: want one operand, got %d", n.Name, len(n.Operands))
			}
		case RegisterRead, InputPort:
			if len(n.Operands) != 0 {
				return nil, errors.Wrapf(ErrMalformedGraph, "%s %s cannot have operands", n.Kind, n.Name)
			}
		}
	}

	for _, r := range g.Registers {
		switch {
		case r.write == nil:
			return nil, errors.Wrapf(ErrMalformedGraph, "register %s has no write node", r.Name)
		case r.read == nil:
			return nil, errors.Wrapf(ErrMalformedGraph, "register %s has no read node", r.Name)
		}
	}

	if err := checkAcyclic(g.Nodes); err != nil {
		return nil, err
	}
	return g, nil
}

func boundRegister(regs map[string]*Register, nd ir.Node) (*Register, error) {
	name := nd.Attrs["register"]
	if name == "" {
		return nil, errors.Wrapf(ErrMalformedGraph, "node %s: missing register attribute", nd.Name)
	}
	r := regs[name]
	if r == nil {
		return nil, errors.Wrapf(ErrMalformedGraph, "node %s: register %s not declared", nd.Name, name)
	}
	return r, nil
}

// checkAcyclic runs a three-color depth first search over the operand
// edges. Operand edges never cross a register boundary (register reads have
// no operands), so this covers exactly the combinational-reachability
// subgraph.
func checkAcyclic(nodes []*Node) error {
	const (
		white = iota
		grey
		black
	)
	state := make(map[*Node]int, len(nodes))
	var visit func(n *Node) error
	visit = func(n *Node) error {
		switch state[n] {
		case grey:
			return errors.Wrapf(ErrMalformedGraph, "combinational cycle through node %s", n.Name)
		case black:
			return nil
		}
		state[n] = grey
		for _, o := range n.Operands {
			if err := visit(o); err != nil {
				return err
			}
		}
		state[n] = black
		return nil
	}
	for _, n := range nodes {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}
