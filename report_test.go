package pipestat_test

import (
	"strings"
	"testing"

	"github.com/db47h/pipestat"
)

const sampleVerilog = `module main(
  input wire [31:0] x,
  output wire [31:0] out
);
  assign out = x;
endmodule
`

func TestWriteReport(t *testing.T) {
	m := pipestat.Metrics{
		FlopBits:    96,
		Feedthrough: false,
		Delays:      &pipestat.DelaySet{RegToReg: 1, InputToReg: 0, RegToOutput: 2},
	}
	var b strings.Builder
	if err := pipestat.WriteReport(&b, m, pipestat.CountLines(sampleVerilog)); err != nil {
		t.Fatal(err)
	}
	want := `Flop count: 96
Has feedthrough path: false
Max reg-to-reg delay: 1ps
Max input-to-reg delay: 0ps
Max reg-to-output delay: 2ps
Lines of Verilog: 7
`
	if b.String() != want {
		t.Errorf("expected report:\n%s\ngot:\n%s", want, b.String())
	}
}

func TestWriteReport_noDelays(t *testing.T) {
	m := pipestat.Metrics{FlopBits: 96, Feedthrough: true}
	var b strings.Builder
	if err := pipestat.WriteReport(&b, m, 7); err != nil {
		t.Fatal(err)
	}
	want := `Flop count: 96
Has feedthrough path: true
Lines of Verilog: 7
`
	if b.String() != want {
		t.Errorf("expected report:\n%s\ngot:\n%s", want, b.String())
	}
	if strings.Contains(b.String(), "delay") {
		t.Error("report without a delay model must not contain delay lines")
	}
}

func TestCountLines(t *testing.T) {
	td := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 1},
		{"no trailing newline", "a", 1},
		{"trailing newline", "a\n", 2},
		{"two lines", "a\nb", 2},
		{"verilog sample", sampleVerilog, 7},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			if n := pipestat.CountLines(d.in); n != d.want {
				t.Errorf("expected %d lines, got %d", d.want, n)
			}
		})
	}
}
