package dispatcher

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vk/spadequery/internal/graph"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// list renders the binding environment as a name/expression table.
func (d *Dispatcher) list() error {
	entries := d.sess.Env().Entries()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, e.Expression})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Graph", "Expression").
		Rows(rows...)
	_, err := fmt.Fprintln(d.out, t.Render())
	return err
}

// printGraph writes every vertex and then every edge of g, one annotation
// per line. keys restricts the annotations shown; empty means all.
func printGraph(w io.Writer, g graph.Graph, keys []string) {
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	section := func(annotations map[string]string) {
		for _, k := range graph.SortedKeys(annotations) {
			if len(wanted) == 0 || wanted[k] {
				fmt.Fprintf(w, "\t%s : %s\n", k, annotations[k])
			}
		}
		fmt.Fprintln(w)
	}

	vertices := g.Vertices()
	fmt.Fprintf(w, "Total Vertices : %d\n\n", len(vertices))
	for _, v := range vertices {
		section(v.Annotations)
	}
	edges := g.Edges()
	fmt.Fprintf(w, "\n\nTotal Edges : %d\n\n", len(edges))
	for _, e := range edges {
		section(e.Annotations)
	}
}
