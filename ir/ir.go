// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package ir defines the parsed form of the textual block intermediate
// representation and its parser. The structures here are plain data; all
// semantic validation happens when a pipestat.Graph is built from a Block.
package ir

// A Block is a parsed block description.
type Block struct {
	Package   string
	Name      string
	Top       bool
	Ports     []Port
	Registers []Register
	Nodes     []Node
}

// A Port is a signal declared in the block signature.
type Port struct {
	Name  string
	Clock bool
	Width int // 0 for clock ports
}

// A Register is a named flip-flop group declaration.
type Register struct {
	Name  string
	Width int
}

// A Node is a single operation statement of the block body.
// Positional operands reference other nodes by name; keyword arguments
// (register=..., name=...) are kept as attributes.
type Node struct {
	Name     string
	Op       string
	Width    int // 0 for nodes of unit type ()
	Operands []string
	Attrs    map[string]string
}
