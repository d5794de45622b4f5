// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipestat

// A DelaySet holds the worst-case propagation delays for the three path
// categories, in whatever unit the delay model returns.
type DelaySet struct {
	RegToReg    int64
	InputToReg  int64
	RegToOutput int64
}

// Metrics is the result of analyzing one block. Delays is nil when no delay
// model was supplied.
type Metrics struct {
	FlopBits    int64
	Feedthrough bool
	Delays      *DelaySet
}

// Analyze computes the metrics of g. The graph is read-only for the whole
// analysis and the result is deterministic: calling Analyze twice on the
// same graph and model yields identical metrics.
//
// Passing a nil model disables the delay metrics but not the structural
// ones.
func Analyze(g *Graph, model DelayModel) Metrics {
	m := Metrics{
		FlopBits:    g.FlopBits(),
		Feedthrough: hasFeedthrough(g),
	}
	if model != nil {
		m.Delays = &DelaySet{
			RegToReg:    maxPathDelay(g, RegisterRead, RegisterWrite, model),
			InputToReg:  maxPathDelay(g, InputPort, RegisterWrite, model),
			RegToOutput: maxPathDelay(g, RegisterRead, OutputPort, model),
		}
	}
	return m
}

// hasFeedthrough reports whether some output port is reachable from some
// input port over user edges without crossing a register write. A register
// write is an opaque sink here: the traversal never continues past it, and
// the paired register read is a fresh source, not a continuation.
func hasFeedthrough(g *Graph) bool {
	seen := make(map[*Node]bool, len(g.Nodes))
	var stack []*Node
	for _, n := range g.Nodes {
		if n.Kind == InputPort {
			seen[n] = true
			stack = append(stack, n)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Kind == OutputPort {
			return true
		}
		if n.Kind == RegisterWrite {
			continue
		}
		for _, u := range n.Users {
			if !seen[u] {
				seen[u] = true
				stack = append(stack, u)
			}
		}
	}
	return false
}

// noPath marks nodes that no eligible source reaches.
const noPath = int64(-1)

// maxPathDelay returns the longest delay-weighted path from any node of
// kind src to any node of kind sink, or 0 when no such path exists. The
// memo is scoped to this one category: the set of eligible sources differs
// per call and sharing across categories is not worth verifying.
//
// A register write is a terminal sink: pathDelay values it at noPath, so
// when it is the queried sink its delay is taken from its single operand
// here instead.
func maxPathDelay(g *Graph, src, sink NodeKind, model DelayModel) int64 {
	memo := make(map[*Node]int64, len(g.Nodes))
	var max int64
	for _, n := range g.Nodes {
		if n.Kind != sink {
			continue
		}
		d := noPath
		switch {
		case n.Kind == RegisterWrite && len(n.Operands) == 1:
			d = pathDelay(n.Operands[0], src, model, memo)
		case n.Kind != RegisterWrite:
			d = pathDelay(n, src, model, memo)
		}
		if d > max {
			max = d
		}
	}
	return max
}

// pathDelay returns the longest delay-weighted path ending at n, where a
// path may originate at a node of kind src or at a true source of the
// graph (an operand-less combinational node, e.g. a literal). Input ports
// and register reads of the other source kind terminate the path as
// invalid: they are boundaries, never pass-throughs. A register write is
// an opaque sink no matter who consumes it: accumulated delay never
// crosses it. Only combinational nodes contribute their own cost.
func pathDelay(n *Node, src NodeKind, model DelayModel, memo map[*Node]int64) int64 {
	if d, ok := memo[n]; ok {
		return d
	}
	var d int64
	switch {
	case n.Kind == RegisterWrite:
		d = noPath
	case n.Kind == InputPort || n.Kind == RegisterRead:
		if n.Kind != src {
			d = noPath
		}
	case len(n.Operands) == 0:
		if n.Kind == Combinational {
			d = model.Cost(n)
		}
	default:
		d = noPath
		for _, o := range n.Operands {
			if od := pathDelay(o, src, model, memo); od > d {
				d = od
			}
		}
		if d != noPath && n.Kind == Combinational {
			d += model.Cost(n)
		}
	}
	memo[n] = d
	return d
}
