// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pipestat

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// WriteReport renders m as the tool's canonical line-oriented report:
//
//	Flop count: 96
//	Has feedthrough path: false
//	Max reg-to-reg delay: 1ps
//	Max input-to-reg delay: 0ps
//	Max reg-to-output delay: 2ps
//	Lines of Verilog: 7
//
// The three delay lines are omitted entirely when the metrics carry no
// delays. The "ps" suffix is fixed; the analyzer itself is unit-agnostic
// and reports whatever scalar the delay model produced.
func WriteReport(w io.Writer, m Metrics, verilogLines int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Flop count: %d\n", m.FlopBits)
	fmt.Fprintf(&b, "Has feedthrough path: %t\n", m.Feedthrough)
	if d := m.Delays; d != nil {
		fmt.Fprintf(&b, "Max reg-to-reg delay: %dps\n", d.RegToReg)
		fmt.Fprintf(&b, "Max input-to-reg delay: %dps\n", d.InputToReg)
		fmt.Fprintf(&b, "Max reg-to-output delay: %dps\n", d.RegToOutput)
	}
	fmt.Fprintf(&b, "Lines of Verilog: %d\n", verilogLines)
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write report")
}

// CountLines returns the number of lines in an externally rendered text,
// with split-on-newline semantics: a trailing newline starts a final empty
// line, so "a\nb\n" counts as 3.
func CountLines(s string) int {
	return strings.Count(s, "\n") + 1
}
