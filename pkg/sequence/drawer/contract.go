// Package drawer renders a declared sequence as a DOT digraph: one vertex
// per step, one edge per adjacent pair labelled with the fields that chain
// across the link. Edge colours grade from blue to red with the number of
// chained fields, so heavily coupled links stand out.
package drawer

import "io"

// Drawer renders a sequence topology.
type Drawer interface {
	Draw(w io.Writer) error
}
