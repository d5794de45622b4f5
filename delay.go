// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipestat

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownDelayModel is the cause of NewDelayModel errors for
// unregistered model names.
var ErrUnknownDelayModel = errors.New("unknown delay model")

// A DelayModel maps a node to a non-negative propagation delay in
// picoseconds. Implementations must be side-effect free: the longest-path
// computation assumes costs are stable and never negative.
//
// Boundary nodes (ports and register sides) are structural, not
// combinational; models are expected to cost them at 0.
type DelayModel interface {
	Name() string
	Cost(n *Node) int64
}

var (
	modelsMu sync.Mutex
	models   = map[string]func() DelayModel{
		"unit": func() DelayModel { return unitModel{} },
	}
)

// RegisterDelayModel makes a delay model constructor available to
// NewDelayModel under the given name, replacing any previous registration.
func RegisterDelayModel(name string, f func() DelayModel) {
	modelsMu.Lock()
	models[name] = f
	modelsMu.Unlock()
}

// NewDelayModel returns a new instance of the delay model registered under
// the given name. The "unit" model is always available.
func NewDelayModel(name string) (DelayModel, error) {
	modelsMu.Lock()
	f := models[name]
	modelsMu.Unlock()
	if f == nil {
		return nil, errors.Wrapf(ErrUnknownDelayModel, "%q", name)
	}
	return f(), nil
}

// unitModel charges one unit per combinational node and nothing for
// structural nodes.
type unitModel struct{}

func (unitModel) Name() string { return "unit" }

func (unitModel) Cost(n *Node) int64 {
	if n.Kind == Combinational {
		return 1
	}
	return 0
}

// An opDelay is the cost entry for one operation: base + per_bit * width.
type opDelay struct {
	Base   int64 `yaml:"base"`
	PerBit int64 `yaml:"per_bit"`
}

func (d opDelay) validate(op string) error {
	if d.Base < 0 || d.PerBit < 0 {
		return errors.Errorf("delay table: %s: negative cost", op)
	}
	return nil
}

func (d opDelay) cost(width int) int64 {
	return d.Base + d.PerBit*int64(width)
}

type tableFile struct {
	Name    string             `yaml:"name"`
	Default opDelay            `yaml:"default"`
	Ops     map[string]opDelay `yaml:"ops"`
}

// A TableModel is a delay model backed by per-operation cost entries, with
// a default entry for operations not listed. Structural nodes cost 0.
type TableModel struct {
	name string
	def  opDelay
	ops  map[string]opDelay
}

// LoadTable reads a YAML delay table:
//
//	name: sky130
//	default: {base: 20}
//	ops:
//	  add: {base: 10, per_bit: 2}
//	  not: {base: 5}
//
// All costs must be non-negative.
func LoadTable(r io.Reader) (*TableModel, error) {
	var tf tableFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil {
		return nil, errors.Wrap(err, "decode delay table")
	}
	if tf.Name == "" {
		return nil, errors.New("delay table: missing model name")
	}
	if err := tf.Default.validate("default"); err != nil {
		return nil, err
	}
	for op, d := range tf.Ops {
		if err := d.validate(op); err != nil {
			return nil, err
		}
	}
	return &TableModel{name: tf.Name, def: tf.Default, ops: tf.Ops}, nil
}

// Name returns the name declared in the table file.
func (t *TableModel) Name() string { return t.name }

// Cost implements DelayModel.
func (t *TableModel) Cost(n *Node) int64 {
	if n.Kind != Combinational {
		return 0
	}
	d, ok := t.ops[n.Op]
	if !ok {
		d = t.def
	}
	return d.cost(n.Width)
}
