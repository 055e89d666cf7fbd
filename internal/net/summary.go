package net

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Summary writes a per-layer overview of the network architecture to w.
func (n *Network) Summary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Layer (type)\tInput\tOutput\tParam #")
	fmt.Fprintln(tw, strings.Repeat("=", 48))

	for i, l := range n.layers {
		in, out := "-", "-"
		if !l.Kind().IsActivation() {
			in = fmt.Sprint(l.InSize())
			out = fmt.Sprint(l.OutSize())
		}
		fmt.Fprintf(tw, "%s_%d\t%s\t%s\t%d\n", l.Kind(), i, in, out, l.NumParams())
	}

	fmt.Fprintln(tw, strings.Repeat("=", 48))
	fmt.Fprintf(tw, "Total params: %d\n", n.NumParams())
	return tw.Flush()
}
