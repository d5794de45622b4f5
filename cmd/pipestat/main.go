// Command pipestat reads a textual block description and a rendered
// Verilog file and prints structural and timing metrics for the block.
//
//	pipestat -delay_model=unit block.ir block.v
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/db47h/pipestat"
	"github.com/db47h/pipestat/ir"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("pipestat: ")

	modelName := flag.String("delay_model", "", "delay model `name` (e.g. \"unit\")")
	tablePath := flag.String("delay_table", "", "YAML delay table `file` (overrides -delay_model)")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	blk, err := ir.Parse(f)
	f.Close()
	if err != nil {
		log.Fatal(err)
	}
	g, err := pipestat.NewGraph(blk)
	if err != nil {
		log.Fatal(err)
	}

	model, err := delayModel(*modelName, *tablePath)
	if err != nil {
		log.Fatal(err)
	}

	verilog, err := os.ReadFile(flag.Arg(1))
	if err != nil {
		log.Fatal(err)
	}

	m := pipestat.Analyze(g, model)
	if err := pipestat.WriteReport(os.Stdout, m, pipestat.CountLines(string(verilog))); err != nil {
		log.Fatal(err)
	}
}

// delayModel resolves the requested delay model. With neither flag set it
// returns nil: the report then carries structural metrics only.
func delayModel(name, tablePath string) (pipestat.DelayModel, error) {
	if tablePath != "" {
		f, err := os.Open(tablePath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return pipestat.LoadTable(f)
	}
	if name != "" {
		return pipestat.NewDelayModel(name)
	}
	return nil, nil
}

func usage() {
	fmt.Fprintln(flag.CommandLine.Output(), "usage: pipestat [flags] IR_FILE VERILOG_FILE")
	flag.PrintDefaults()
}
