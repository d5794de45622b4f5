// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package pipestat computes structural and timing metrics for synthesized
pipelined blocks.

A block is given as a dependency graph of primitive nodes: input and output
ports, register boundaries and combinational operations. The analyzer reports
the total flip-flop bit count, whether any output is combinationally
reachable from an input without crossing a register (a feedthrough path),
and, when a delay model is supplied, the worst-case propagation delay for
the reg-to-reg, input-to-reg and reg-to-output path categories.

The write and read sides of a register are never connected by a graph edge:
the pairing lives in a side table on the Register. This keeps the dependency
graph acyclic even when the physical design contains feedback loops, which
is what makes the longest-path computation terminate.

The textual intermediate representation is parsed by the ir package; this
package consumes only the structured form.
*/
package pipestat
