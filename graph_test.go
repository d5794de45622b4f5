package pipestat_test

import (
	"strings"
	"testing"

	"github.com/db47h/pipestat"
	"github.com/db47h/pipestat/ir"
	"github.com/pkg/errors"
)

func parseGraph(t *testing.T, src string) *pipestat.Graph {
	t.Helper()
	blk, err := ir.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	g, err := pipestat.NewGraph(blk)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewGraph(t *testing.T) {
	g := parseGraph(t, simpleBlock)

	if len(g.Nodes) != 12 {
		t.Errorf("expected 12 nodes, got %d", len(g.Nodes))
	}
	if len(g.Registers) != 3 {
		t.Errorf("expected 3 registers, got %d", len(g.Registers))
	}
	if n := g.FlopBits(); n != 96 {
		t.Errorf("expected 96 flop bits, got %d", n)
	}

	sum := g.Node("sum")
	if sum == nil {
		t.Fatal("node sum not found")
	}
	if sum.Kind != pipestat.Combinational || sum.Op != "add" || sum.Width != 32 {
		t.Errorf("unexpected sum node: kind %v, op %q, width %d", sum.Kind, sum.Op, sum.Width)
	}
	if len(sum.Operands) != 2 || sum.Operands[0].Name != "a_q" || sum.Operands[1].Name != "b_q" {
		t.Errorf("unexpected sum operands: %v", sum.Operands)
	}

	a := g.Node("a")
	if a.Kind != pipestat.InputPort {
		t.Errorf("expected input port, got %v", a.Kind)
	}
	if len(a.Users) != 1 || a.Users[0].Name != "a_d" {
		t.Errorf("unexpected users of a: %v", a.Users)
	}

	for _, r := range g.Registers {
		if r.Write() == nil || r.Read() == nil {
			t.Errorf("register %s not fully bound", r.Name)
			continue
		}
		if r.Write().Kind != pipestat.RegisterWrite || r.Read().Kind != pipestat.RegisterRead {
			t.Errorf("register %s bound to wrong node kinds", r.Name)
		}
	}
}

func TestNewGraph_malformed(t *testing.T) {
	td := []struct {
		name string
		src  string
		want string
	}{
		{"missing operand", `
block b(o: bits[8]) {
  o: () = output_port(ghost, name=o)
}`, "operand ghost is missing"},
		{"write operand count", `
block b(a: bits[8], c: bits[8]) {
  reg r(bits[8])
  a: bits[8] = input_port(name=a)
  c: bits[8] = input_port(name=c)
  w: () = register_write(a, c, register=r)
  q: bits[8] = register_read(register=r)
}`, "want one operand"},
		{"read with operand", `
block b(a: bits[8]) {
  reg r(bits[8])
  a: bits[8] = input_port(name=a)
  w: () = register_write(a, register=r)
  q: bits[8] = register_read(a, register=r)
}`, "cannot have operands"},
		{"no read node", `
block b(a: bits[8]) {
  reg r(bits[8])
  a: bits[8] = input_port(name=a)
  w: () = register_write(a, register=r)
}`, "has no read node"},
		{"no write node", `
block b(o: bits[8]) {
  reg r(bits[8])
  q: bits[8] = register_read(register=r)
  o: () = output_port(q, name=o)
}`, "has no write node"},
		{"written twice", `
block b(a: bits[8]) {
  reg r(bits[8])
  a: bits[8] = input_port(name=a)
  w1: () = register_write(a, register=r)
  w2: () = register_write(a, register=r)
  q: bits[8] = register_read(register=r)
}`, "written twice"},
		{"missing register attribute", `
block b(a: bits[8]) {
  a: bits[8] = input_port(name=a)
  w: () = register_write(a)
}`, "missing register attribute"},
		{"undeclared register", `
block b(a: bits[8]) {
  a: bits[8] = input_port(name=a)
  w: () = register_write(a, register=ghost)
}`, "register ghost not declared"},
		{"zero width register", `
block b(a: bits[8]) {
  reg r(bits[0])
  a: bits[8] = input_port(name=a)
  w: () = register_write(a, register=r)
  q: bits[0] = register_read(register=r)
}`, "bit width must be positive"},
		{"duplicate node", `
block b(a: bits[8]) {
  a: bits[8] = input_port(name=a)
  x: bits[8] = not(a)
  x: bits[8] = not(a)
}`, "defined twice"},
		{"combinational cycle", `
block b(o: bits[8]) {
  x: bits[8] = not(y)
  y: bits[8] = not(x)
  o: () = output_port(x, name=o)
}`, "combinational cycle"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			blk, err := ir.Parse(strings.NewReader(d.src))
			if err != nil {
				t.Fatal(err)
			}
			_, err = pipestat.NewGraph(blk)
			if err == nil {
				t.Fatal("expected construction to fail")
			}
			if errors.Cause(err) != pipestat.ErrMalformedGraph {
				t.Errorf("expected ErrMalformedGraph cause, got %v", err)
			}
			if !strings.Contains(err.Error(), d.want) {
				t.Errorf("expected error containing %q, got %q", d.want, err)
			}
		})
	}
}

func TestNodeKind_String(t *testing.T) {
	td := []struct {
		kind pipestat.NodeKind
		want string
	}{
		{pipestat.Combinational, "combinational"},
		{pipestat.RegisterWrite, "register write"},
		{pipestat.NodeKind(-1), "unknown"},
		{pipestat.NodeKind(42), "unknown"},
	}
	for _, d := range td {
		if s := d.kind.String(); s != d.want {
			t.Errorf("expected %q, got %q", d.want, s)
		}
	}
}

// A physical feedback loop through a register must build fine: the
// write/read pairing is a side table, not a graph edge.
func TestNewGraph_registerFeedback(t *testing.T) {
	g := parseGraph(t, `
block counter(o: bits[8]) {
  reg count(bits[8])
  q: bits[8] = register_read(register=count)
  one: bits[8] = literal(value=1)
  next: bits[8] = add(q, one)
  w: () = register_write(next, register=count)
  o: () = output_port(q, name=o)
}`)
	if n := g.FlopBits(); n != 8 {
		t.Errorf("expected 8 flop bits, got %d", n)
	}
	if w, q := g.Node("w"), g.Node("q"); len(q.Operands) != 0 || len(w.Users) != 0 {
		t.Error("register sides must not be connected by graph edges")
	}
}
