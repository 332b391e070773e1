package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

var vertexStyles = map[string]string{
	"Process":  `shape="box" fillcolor="LightBlue"`,
	"Artifact": `shape="ellipse" fillcolor="khaki"`,
	"Agent":    `shape="octagon" fillcolor="rosybrown1"`,
}

var edgeColors = map[string]string{
	"Used":            "green",
	"WasGeneratedBy":  "red",
	"WasTriggeredBy":  "blue",
	"WasControlledBy": "purple",
	"WasDerivedFrom":  "orange",
}

// Export writes the graph to path in Graphviz DOT format.
func (m *Memory) Export(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteDOT(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteDOT renders g as a Graphviz digraph.
func WriteDOT(w io.Writer, g Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph spade_provenance {")
	fmt.Fprintln(bw, `graph [rankdir = "RL"];`)
	fmt.Fprintln(bw, `node [fontname="Helvetica" fontsize="8" style="filled" margin="0.0,0.0"];`)
	fmt.Fprintln(bw, `edge [fontname="Helvetica" fontsize="8"];`)
	for _, v := range g.Vertices() {
		style, ok := vertexStyles[v.Annotation("type")]
		if !ok {
			style = `shape="ellipse" fillcolor="white"`
		}
		fmt.Fprintf(bw, "%q [label=\"%s\" %s];\n", v.ID(), dotLabel(v.Annotations), style)
	}
	for _, e := range g.Edges() {
		color, ok := edgeColors[e.Annotation("type")]
		if !ok {
			color = "black"
		}
		fmt.Fprintf(bw, "%q -> %q [label=\"%s\" color=%q];\n", e.Child, e.Parent, dotLabel(e.Annotations), color)
	}
	fmt.Fprintln(bw, "}")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write DOT output: %w", err)
	}
	return nil
}

func dotLabel(annotations map[string]string) string {
	lines := make([]string, 0, len(annotations))
	for _, k := range SortedKeys(annotations) {
		lines = append(lines, k+":"+annotations[k])
	}
	label := strings.Join(lines, "\n")
	label = strings.ReplaceAll(label, `\`, `\\`)
	label = strings.ReplaceAll(label, `"`, `\"`)
	return strings.ReplaceAll(label, "\n", `\n`)
}
