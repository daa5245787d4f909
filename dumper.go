package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jcorbin/opstack/internal/mem"
)

type vmDumper struct {
	vm  *VM
	out io.Writer

	withProgram bool
}

func (dump vmDumper) dump() {
	vm := dump.vm
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  pc: %v/%v\n", vm.pc, len(vm.prog))
	fmt.Fprintf(dump.out, "  stack: %v\n", vm.stack)
	if lim := vm.store.Limit; lim != 0 {
		fmt.Fprintf(dump.out, "  cells: %v/%v\n", vm.store.Used(), lim)
	} else {
		fmt.Fprintf(dump.out, "  cells: %v\n", vm.store.Used())
	}

	if dump.withProgram {
		dump.dumpProgram()
	}
	dump.dumpScalars()
	dump.dumpArrays()
}

func (dump vmDumper) render(title string, tw table.Writer) {
	fmt.Fprintf(dump.out, "# %v\n", title)
	io.WriteString(dump.out, tw.Render())
	io.WriteString(dump.out, "\n")
}

func (dump vmDumper) dumpProgram() {
	vm := dump.vm
	targets := make(map[int][]string, len(vm.labels))
	for name, at := range vm.labels {
		targets[at] = append(targets[at], name)
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"", "@", "Instruction", "Code"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	for at, in := range vm.prog {
		mark := ""
		if at == vm.pc {
			mark = ">"
		}
		tw.AppendRow(table.Row{mark, at, in.String(), in.Code})
	}
	if vm.pc >= len(vm.prog) {
		tw.AppendFooter(table.Row{">", len(vm.prog), "", ""})
	}
	dump.render("Program", tw)
}

func (dump vmDumper) dumpScalars() {
	names := dump.vm.store.ScalarNames()
	if len(names) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Name", "Kind", "Value"})
	for _, name := range names {
		val := dump.vm.store.Load(name)
		tw.AppendRow(table.Row{name, val.Kind, val})
	}
	dump.render("Scalars", tw)
}

func (dump vmDumper) dumpArrays() {
	store := &dump.vm.store
	vectors, matrices := store.VectorNames(), store.MatrixNames()
	if len(vectors)+len(matrices) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Name", "Shape", "Cells"})
	for _, name := range vectors {
		vec := store.Vector(name)
		tw.AppendRow(table.Row{name, fmt.Sprintf("[%v]", len(vec)), formatCells(vec)})
	}
	for _, name := range matrices {
		m := store.Matrix(name)
		shape := fmt.Sprintf("[%v][%v]", m.Rows(), m.Cols())
		for i := 0; i < m.Rows(); i++ {
			tw.AppendRow(table.Row{fmt.Sprintf("%v[%v]", name, i), shape, formatCells(m.Row(i))})
		}
	}
	dump.render("Arrays", tw)
}

func formatCells(vals []mem.Value) string {
	var sb strings.Builder
	for i, val := range vals {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(val.String())
	}
	return sb.String()
}
